package validemail

import (
	"fmt"
	"time"
)

// Config holds the process-wide defaults of a Validator.
type Config struct {
	// DNSTimeout bounds each MX check. Default: 2s
	DNSTimeout time.Duration `mapstructure:"dns_timeout"`
	// DNSTimeoutReturnValue is the verdict reported when an MX check times
	// out. Default: false
	DNSTimeoutReturnValue bool `mapstructure:"dns_timeout_return_value"`
	// Nameservers overrides the nameservers from /etc/resolv.conf.
	Nameservers []string `mapstructure:"nameservers"`
	// DisposableDomainsFile replaces the embedded disposable domain list.
	// One domain per line; blank lines and '#' comments are ignored.
	DisposableDomainsFile string `mapstructure:"disposable_domains_file"`
	// MXCacheTTL enables an in-memory cache of DNS answers when positive.
	// Concurrent calls for one domain share a single lookup, bounded by the
	// larger of DNSTimeout and 5s; each call still gives up at its own
	// timeout. Default: 0 (disabled)
	MXCacheTTL time.Duration `mapstructure:"mx_cache_ttl"`
}

// DefaultConfig returns the defaults used by New.
func DefaultConfig() Config {
	return Config{
		DNSTimeout:            2 * time.Second,
		DNSTimeoutReturnValue: false,
	}
}

func (c Config) validate() error {
	if c.DNSTimeout <= 0 {
		return fmt.Errorf("%w: DNSTimeout must be positive, got %s", ErrInvalidConfig, c.DNSTimeout)
	}
	if c.MXCacheTTL < 0 {
		return fmt.Errorf("%w: MXCacheTTL must not be negative, got %s", ErrInvalidConfig, c.MXCacheTTL)
	}
	return nil
}

// Options selects the levels run by Validate and Valid. The zero value
// checks syntax only.
type Options struct {
	// MX requires a usable mail exchanger. When set, Domain is ignored.
	MX bool
	// Domain requires the domain to be a well-formed host name.
	Domain bool
	// MXFallback accepts A records when the domain has no MX records.
	MXFallback bool
	// MXTimeout overrides Config.DNSTimeout for this call.
	MXTimeout time.Duration
	// MXTimeoutReturnValue overrides Config.DNSTimeoutReturnValue.
	MXTimeoutReturnValue *bool
	// BanDisposable rejects domains on the disposable domain list.
	BanDisposable bool
}

// MXOptions configures MXValid.
type MXOptions struct {
	Fallback           bool
	Timeout            time.Duration
	TimeoutReturnValue *bool
}

// ConcurrencyOptions configures concurrent processing for ValidateMany.
type ConcurrencyOptions struct {
	// Workers is the number of concurrent goroutines. Default: 5
	Workers int
}

// Bool returns a pointer to b, for the optional *bool fields.
func Bool(b bool) *bool {
	return &b
}
