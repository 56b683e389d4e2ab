package validemail

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/KMK-ONLINE/valid-email/check"
	"github.com/KMK-ONLINE/valid-email/internal/disposable"
	"github.com/KMK-ONLINE/valid-email/internal/dnscache"
	"github.com/KMK-ONLINE/valid-email/internal/dnsclient"
	"github.com/KMK-ONLINE/valid-email/internal/parse"
	"github.com/KMK-ONLINE/valid-email/types"
)

// checker is the internal interface for all validation levels.
// Every check/ package type implements this.
type checker interface {
	Check(ctx context.Context, email parse.Email) (types.CheckResult, error)
}

// Validator validates addresses against the levels selected per call.
// Instantiate with the New() function and configure it with the With*
// methods before sharing it; a configured Validator is safe for
// concurrent use.
type Validator struct {
	cfg      Config
	base     types.Resolver // supplied by WithResolver; nil means derive from cfg
	resolver types.Resolver
	registry *disposable.Registry
	log      zerolog.Logger
	err      error // configuration error, returned on every operation
}

// New creates a Validator with DefaultConfig, the embedded disposable
// domain list and a silent logger.
func New() *Validator {
	v := &Validator{
		cfg:      DefaultConfig(),
		registry: disposable.Default(),
		log:      zerolog.Nop(),
	}
	v.configure()
	return v
}

// WithConfig replaces the Validator defaults.
func (v *Validator) WithConfig(cfg Config) *Validator {
	if err := cfg.validate(); err != nil {
		v.err = err
		return v
	}
	v.cfg = cfg
	if cfg.DisposableDomainsFile != "" {
		r, err := disposable.LoadFile(cfg.DisposableDomainsFile)
		if err != nil {
			v.err = fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			return v
		}
		v.registry = r
	}
	v.configure()
	return v
}

// WithResolver makes the MX level use r instead of the nameservers from
// Config or /etc/resolv.conf.
func (v *Validator) WithResolver(r Resolver) *Validator {
	if r == nil {
		v.err = fmt.Errorf("%w: nil resolver", ErrInvalidConfig)
		return v
	}
	v.base = r
	v.configure()
	return v
}

// WithDisposableDomains replaces the disposable domain list.
func (v *Validator) WithDisposableDomains(domains []string) *Validator {
	v.registry = disposable.New(domains)
	return v
}

// WithLogger sets the logger used by the MX level and the DNS cache.
func (v *Validator) WithLogger(log zerolog.Logger) *Validator {
	v.log = log
	v.configure()
	return v
}

// configure derives the effective resolver from the current settings.
func (v *Validator) configure() {
	r := v.base
	if r == nil {
		r = newResolver(v.cfg, v.log)
	}
	if v.cfg.MXCacheTTL > 0 {
		r = dnscache.New(r, v.cfg.MXCacheTTL, max(v.cfg.DNSTimeout, dnscache.DefaultLookupTimeout), v.log)
	}
	v.resolver = r
}

// newResolver prefers explicit nameservers, then /etc/resolv.conf, then the
// Go standard resolver.
func newResolver(cfg Config, log zerolog.Logger) types.Resolver {
	if len(cfg.Nameservers) > 0 {
		c, err := dnsclient.New(dnsclient.Config{Nameservers: cfg.Nameservers, Timeout: cfg.DNSTimeout})
		if err == nil {
			return c
		}
		log.Warn().Err(err).Msg("configured nameservers unusable, using system resolver")
		return dnsclient.NewSystem()
	}
	c, err := dnsclient.FromResolvConf(dnsclient.DefaultResolvConf)
	if err != nil {
		log.Debug().Err(err).Msg("no resolv.conf, using system resolver")
		return dnsclient.NewSystem()
	}
	return c
}

// Validate runs the levels selected by opts on email.
// The pipeline short-circuits: if a level fails, subsequent levels are skipped.
// A malformed address is reported as an invalid Result, not as an error;
// errors are configuration problems or DNS failures other than timeouts.
func (v *Validator) Validate(ctx context.Context, email string, opts Options) (Result, error) {
	if v.err != nil {
		return Result{}, v.err
	}

	result := Result{Email: email}
	if email == "" {
		result.Checks = []CheckResult{{Level: LevelSyntax, Passed: false, Details: "empty address"}}
		return result, nil
	}

	parsed, err := parse.Parse(email)
	if err != nil {
		var perr *parse.Error
		if !errors.As(err, &perr) {
			return Result{}, fmt.Errorf("parse %q: %w", email, err)
		}
		result.Checks = []CheckResult{{Level: LevelSyntax, Passed: false, Details: "invalid email syntax: " + perr.Reason}}
		return result, nil
	}

	for _, c := range v.pipeline(opts) {
		cr, err := c.Check(ctx, parsed)
		if err != nil {
			return Result{}, fmt.Errorf("validating %q: %w", email, err)
		}
		result.Checks = append(result.Checks, cr)

		if !cr.Passed {
			return result, nil // short-circuit
		}
	}

	result.Valid = true
	return result, nil
}

// Valid reports whether email passes every level selected by opts.
func (v *Validator) Valid(ctx context.Context, email string, opts Options) (bool, error) {
	res, err := v.Validate(ctx, email, opts)
	if err != nil {
		return false, err
	}
	return res.Valid, nil
}

// pipeline returns the checkers for opts. MX takes precedence over Domain.
func (v *Validator) pipeline(opts Options) []checker {
	checkers := []checker{check.NewSyntaxChecker()}
	switch {
	case opts.MX:
		checkers = append(checkers, v.mxChecker(MXOptions{
			Fallback:           opts.MXFallback,
			Timeout:            opts.MXTimeout,
			TimeoutReturnValue: opts.MXTimeoutReturnValue,
		}))
	case opts.Domain:
		checkers = append(checkers, check.NewDomainChecker())
	}
	if opts.BanDisposable {
		checkers = append(checkers, check.NewDisposableChecker(v.registry))
	}
	return checkers
}

func (v *Validator) mxChecker(o MXOptions) *check.MXChecker {
	cfg := check.MXConfig{
		Timeout:            v.cfg.DNSTimeout,
		FallbackToA:        o.Fallback,
		TimeoutReturnValue: v.cfg.DNSTimeoutReturnValue,
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if o.TimeoutReturnValue != nil {
		cfg.TimeoutReturnValue = *o.TimeoutReturnValue
	}
	return check.NewMXChecker(cfg, v.resolver, v.log)
}

// MXValid reports whether the domain of email publishes a usable mail
// exchanger. It does not check the local part. A lookup that times out
// yields the configured timeout return value.
func (v *Validator) MXValid(ctx context.Context, email string, opts ...MXOptions) (bool, error) {
	if v.err != nil {
		return false, v.err
	}
	var o MXOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	parsed, err := parse.Parse(email)
	if err != nil || !parsed.HasDomain() {
		return false, nil
	}

	cr, err := v.mxChecker(o).Check(ctx, parsed)
	if err != nil {
		return false, err
	}
	return cr.Passed, nil
}

// MXValidWithFallback is MXValid with A record fallback enabled.
func (v *Validator) MXValidWithFallback(ctx context.Context, email string, opts ...MXOptions) (bool, error) {
	var o MXOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	o.Fallback = true
	return v.MXValid(ctx, email, o)
}

// DomainValid reports whether the domain of email is a well-formed host
// name. The local part is not checked.
func (v *Validator) DomainValid(email string) bool {
	parsed, err := parse.Parse(email)
	if err != nil {
		return false
	}
	return check.ValidDomainName(parsed.Domain)
}

// BanDisposableEmail reports whether email has a domain that is not on
// the disposable domain list.
func (v *Validator) BanDisposableEmail(email string) bool {
	parsed, err := parse.Parse(email)
	if err != nil || !parsed.HasDomain() {
		return false
	}
	return len(v.registry.Match(parsed.Domain)) == 0
}

// MatchedDisposableDomain returns the disposable list entries that domain
// equals or falls under, in list order.
func (v *Validator) MatchedDisposableDomain(domain string) []string {
	return v.registry.Match(domain)
}

// ValidateMany validates multiple emails concurrently with the same opts.
// The result order matches the input slice order.
// Emails are sorted by domain internally so that lookups for one domain
// run close together and hit the DNS cache when it is enabled.
func (v *Validator) ValidateMany(ctx context.Context, emails []string, opts Options, conc ...ConcurrencyOptions) ([]Result, error) {
	if v.err != nil {
		return nil, v.err
	}

	workers := 5
	if len(conc) > 0 && conc[0].Workers > 0 {
		workers = conc[0].Workers
	}

	results := make([]Result, len(emails))
	type job struct {
		idx    int
		email  string
		domain string
	}

	// Build and sort jobs by domain for cache locality
	jobSlice := make([]job, len(emails))
	for i, e := range emails {
		domain := ""
		if atIdx := strings.LastIndex(e, "@"); atIdx >= 0 {
			domain = strings.ToLower(e[atIdx+1:])
		}
		jobSlice[i] = job{idx: i, email: e, domain: domain}
	}
	sort.SliceStable(jobSlice, func(i, j int) bool {
		return jobSlice[i].domain < jobSlice[j].domain
	})

	// Feed sorted jobs into bounded channel
	bufSize := len(emails)
	if bufSize > 1000 {
		bufSize = 1000
	}
	jobs := make(chan job, bufSize)
	go func() {
		for _, j := range jobSlice {
			jobs <- j
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res, err := v.Validate(ctx, j.email, opts)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					results[j.idx] = Result{Email: j.email}
					continue
				}
				results[j.idx] = res
			}
		}()
	}

	wg.Wait()
	return results, firstErr
}
