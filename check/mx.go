package check

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/KMK-ONLINE/valid-email/internal/parse"
	"github.com/KMK-ONLINE/valid-email/types"
)

// MXConfig is the MX checker configuration.
type MXConfig struct {
	Timeout time.Duration
	// FallbackToA also queries A records; they count only when the domain
	// publishes no MX records at all.
	FallbackToA bool
	// TimeoutReturnValue is reported as Passed when the lookup times out.
	TimeoutReturnValue bool
}

// MXChecker verifies that the domain publishes a usable mail exchanger.
// It performs one lookup per record type per call and never retries.
type MXChecker struct {
	cfg      MXConfig
	resolver types.Resolver
	log      zerolog.Logger
}

func NewMXChecker(cfg MXConfig, resolver types.Resolver, log zerolog.Logger) *MXChecker {
	return &MXChecker{cfg: cfg, resolver: resolver, log: log}
}

// Check looks up the domain's MX records. Timeouts resolve to
// MXConfig.TimeoutReturnValue; other resolver failures are returned as
// errors.
func (c *MXChecker) Check(ctx context.Context, email parse.Email) (types.CheckResult, error) {
	level := types.LevelMX

	if !email.HasDomain() {
		return types.CheckResult{Level: level, Passed: false, Details: "skipped: no domain"}, nil
	}

	log := c.log.With().Str("domain", email.Domain).Logger()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	sess, err := c.resolver.Open(ctx)
	if err != nil {
		if isTimeout(ctx, err) {
			return c.timedOut(log), nil
		}
		return types.CheckResult{}, fmt.Errorf("open resolver session: %w", err)
	}
	defer func() {
		if cErr := sess.Close(); cErr != nil {
			log.Warn().Err(cErr).Msg("closing resolver session")
		}
	}()

	mxRecords, err := sess.LookupMX(ctx, email.Domain)
	if err != nil {
		if isTimeout(ctx, err) {
			return c.timedOut(log), nil
		}
		return types.CheckResult{}, fmt.Errorf("MX lookup for %s: %w", email.Domain, err)
	}

	var addrs []net.IP
	if c.cfg.FallbackToA {
		addrs, err = sess.LookupA(ctx, email.Domain)
		if err != nil {
			if isTimeout(ctx, err) {
				return c.timedOut(log), nil
			}
			return types.CheckResult{}, fmt.Errorf("A lookup for %s: %w", email.Domain, err)
		}
	}

	log.Debug().Int("mx_records", len(mxRecords)).Int("a_records", len(addrs)).Msg("lookup complete")

	if len(mxRecords) == 0 {
		if len(addrs) > 0 {
			return types.CheckResult{
				Level:   level,
				Passed:  true,
				Details: "no MX record, but A record found (fallback)",
				MXHost:  addrs[0].String(),
			}, nil
		}
		return types.CheckResult{Level: level, Passed: false, Details: "no MX records found"}, nil
	}

	sort.SliceStable(mxRecords, func(i, j int) bool {
		return mxRecords[i].Pref < mxRecords[j].Pref
	})

	// A null MX (RFC 7505) has the root "." as its exchange.
	primaryMX := strings.TrimSuffix(mxRecords[0].Host, ".")
	if primaryMX == "" {
		return types.CheckResult{Level: level, Passed: false, Details: "domain does not accept mail (null MX)"}, nil
	}
	return types.CheckResult{
		Level:   level,
		Passed:  true,
		Details: fmt.Sprintf("%d MX record(s) found", len(mxRecords)),
		MXHost:  primaryMX,
	}, nil
}

func (c *MXChecker) timedOut(log zerolog.Logger) types.CheckResult {
	log.Warn().
		Dur("timeout", c.cfg.Timeout).
		Bool("return_value", c.cfg.TimeoutReturnValue).
		Msg("MX lookup timed out")
	return types.CheckResult{
		Level:    types.LevelMX,
		Passed:   c.cfg.TimeoutReturnValue,
		Details:  fmt.Sprintf("MX lookup timed out after %s", c.cfg.Timeout),
		TimedOut: true,
	}
}

// isTimeout reports whether err was caused by the lookup deadline rather
// than by the caller cancelling ctx.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
