// Package config loads validemail settings from an optional YAML file and
// VALIDEMAIL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	validemail "github.com/KMK-ONLINE/valid-email"
)

// EnvPrefix is prepended to every environment variable override.
// For example, VALIDEMAIL_DNS_TIMEOUT overrides dns_timeout and
// VALIDEMAIL_LOGGING_LEVEL overrides logging.level.
const EnvPrefix = "VALIDEMAIL"

// Config holds all application configuration.
type Config struct {
	validemail.Config `mapstructure:",squash"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from path, or from "validemail.yaml" in the
// working directory when path is empty. A missing default file is not an
// error; a missing explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := validemail.DefaultConfig()
	v.SetDefault("dns_timeout", def.DNSTimeout)
	v.SetDefault("dns_timeout_return_value", def.DNSTimeoutReturnValue)
	v.SetDefault("nameservers", []string{})
	v.SetDefault("disposable_domains_file", "")
	v.SetDefault("mx_cache_ttl", def.MXCacheTTL)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("validemail")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
