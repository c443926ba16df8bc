package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FranksOps/indexnow/pkg/indexnow"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. INDEXNOW_KEY.
const EnvPrefix = "INDEXNOW"

// Config stores all configuration for the indexnow command.
type Config struct {
	Host         string        `mapstructure:"host"`
	Key          string        `mapstructure:"key"`
	KeyLocation  string        `mapstructure:"key_location"`
	SearchEngine string        `mapstructure:"search_engine"`
	HostHeader   string        `mapstructure:"host_header"`
	UserAgent    string        `mapstructure:"user_agent"`
	Timeout      time.Duration `mapstructure:"timeout"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFormat    string        `mapstructure:"log_format"`
	Output       string        `mapstructure:"output"`
	MetricsFile  string        `mapstructure:"metrics_file"`
}

// SetDefaults registers every key so environment variables are seen by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "")
	v.SetDefault("key", "")
	v.SetDefault("key_location", "")
	v.SetDefault("search_engine", indexnow.DefaultSearchEngine)
	v.SetDefault("host_header", "")
	v.SetDefault("user_agent", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("output", "text")
	v.SetDefault("metrics_file", "")
}

// Load reads configuration from the optional config file, INDEXNOW_*
// environment variables and whatever flags were bound to v.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings a submission needs.
func (c *Config) Validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, errors.New("host must not be empty (--host or INDEXNOW_HOST)"))
	}
	if c.Key == "" {
		errs = append(errs, errors.New("key must not be empty (--key or INDEXNOW_KEY)"))
	}
	if c.SearchEngine == "" {
		errs = append(errs, errors.New("search_engine must not be empty"))
	}
	if c.Output != "text" && c.Output != "json" {
		errs = append(errs, fmt.Errorf("output must be text or json, got %q", c.Output))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
