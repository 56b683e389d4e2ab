package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	validemail "github.com/KMK-ONLINE/valid-email"
	"github.com/KMK-ONLINE/valid-email/internal/config"
	"github.com/KMK-ONLINE/valid-email/internal/logger"
)

const validemailDesc = "Validate email addresses by syntax, domain, MX records " +
	"and disposable domain lists"
const validemailDescLong = validemailDesc + `

Addresses are taken from the arguments, or one per line from standard input
when no arguments are given. Each result is written to standard output as a
JSON object. The exit status is 1 when any address is invalid.

Examples:
  validemail user@example.com
  validemail --mx --fallback --ban-disposable user@example.com
  validemail --domain < addresses.txt

Settings are read from validemail.yaml (or --config) and VALIDEMAIL_*
environment variables; flags take precedence.`

// ErrInvalidAddresses is returned when at least one address failed.
var ErrInvalidAddresses = errors.New("one or more addresses are invalid")

const (
	FlagConfig        = "config"
	FlagMX            = "mx"
	FlagDomain        = "domain"
	FlagFallback      = "fallback"
	FlagBanDisposable = "ban-disposable"
	FlagTimeout       = "timeout"
	FlagTimeoutResult = "timeout-result"
	FlagNameserver    = "nameserver"
	FlagWorkers       = "workers"
	FlagLogLevel      = "log-level"
	FlagLogFormat     = "log-format"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "validemail [flags] [ADDRESS...]",
		Version: "v0.1.0",
		Short:   validemailDesc,
		Long:    validemailDescLong,
		RunE:    runValidate,
	}

	f := cmd.Flags()
	f.StringP(FlagConfig, "c", "", "path to a YAML config file")
	f.Bool(FlagMX, false, "require a usable MX record (takes precedence over --domain)")
	f.Bool(FlagDomain, false, "require a well-formed host name")
	f.Bool(FlagFallback, false, "accept A records when no MX record exists")
	f.Bool(FlagBanDisposable, false, "reject disposable email domains")
	f.Duration(FlagTimeout, 0, "MX lookup timeout (default from config: 2s)")
	f.Bool(FlagTimeoutResult, false, "verdict reported when an MX lookup times out")
	f.StringSlice(FlagNameserver, nil, "nameserver to query, repeatable (default from /etc/resolv.conf)")
	f.Int(FlagWorkers, 5, "number of concurrent validations")
	f.String(FlagLogLevel, "", "log level: debug, info, warn, error (default from config: info)")
	f.String(FlagLogFormat, "", "log format: json or console (default from config: json)")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.Load(getStringFlag(cmd, FlagConfig))
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	log := logger.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	ctx := logger.WithCorrelationID(cmd.Context(), logger.NewCorrelationID())
	log = logger.WithContext(ctx, log)

	emails := args
	if len(emails) == 0 {
		if emails, err = readAddresses(cmd.InOrStdin()); err != nil {
			return fmt.Errorf("read addresses: %w", err)
		}
	}
	log.Debug().Int("count", len(emails)).Msg("validating addresses")

	v := validemail.New().WithLogger(log).WithConfig(cfg.Config)
	workers, _ := cmd.Flags().GetInt(FlagWorkers)
	results, err := v.ValidateMany(ctx, emails, buildOptions(cmd), validemail.ConcurrencyOptions{Workers: workers})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	invalid := 0
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		if r.TimedOut() {
			log.Warn().Str("email", r.Email).Bool("valid", r.Valid).Msg("MX lookup timed out, using configured verdict")
		}
		if f, failed := r.Failure(); failed {
			log.Debug().Str("email", r.Email).Str("level", f.Level).Str("details", f.Details).Msg("address rejected")
			invalid++
		}
	}

	if invalid > 0 {
		log.Info().Int("invalid", invalid).Int("total", len(results)).Msg("validation finished")
		return ErrInvalidAddresses
	}
	return nil
}

// applyFlags lets explicitly set flags override the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed(FlagTimeout) {
		cfg.DNSTimeout, _ = f.GetDuration(FlagTimeout)
	}
	if f.Changed(FlagNameserver) {
		cfg.Nameservers, _ = f.GetStringSlice(FlagNameserver)
	}
	if f.Changed(FlagLogLevel) {
		cfg.Logging.Level = getStringFlag(cmd, FlagLogLevel)
	}
	if f.Changed(FlagLogFormat) {
		cfg.Logging.Format = getStringFlag(cmd, FlagLogFormat)
	}
}

func buildOptions(cmd *cobra.Command) validemail.Options {
	f := cmd.Flags()
	var opts validemail.Options
	opts.MX, _ = f.GetBool(FlagMX)
	opts.Domain, _ = f.GetBool(FlagDomain)
	opts.MXFallback, _ = f.GetBool(FlagFallback)
	opts.BanDisposable, _ = f.GetBool(FlagBanDisposable)
	if f.Changed(FlagTimeoutResult) {
		b, _ := f.GetBool(FlagTimeoutResult)
		opts.MXTimeoutReturnValue = validemail.Bool(b)
	}
	return opts
}

// readAddresses returns the non-blank lines of r.
func readAddresses(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

func getStringFlag(cmd *cobra.Command, flagName string) (value string) {
	if f := cmd.Flag(flagName); f != nil {
		value = f.Value.String()
	}
	return
}

func Execute() error {
	return newRootCommand().Execute()
}
