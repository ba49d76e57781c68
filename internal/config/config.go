package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/stockdash/stockdash/internal/core"
)

type Config struct {
	Server     ServerConfig    `mapstructure:"server"`
	Ledger     LedgerConfig    `mapstructure:"ledger"`
	Archive    ArchiveConfig   `mapstructure:"archive"`
	Collector  CollectorConfig `mapstructure:"collector"`
	Backtest   BacktestConfig  `mapstructure:"backtest"`
	Indicators IndicatorConfig `mapstructure:"indicators"`
	Metrics    MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LedgerConfig selects the trade store backend.
type LedgerConfig struct {
	Driver string `mapstructure:"driver"` // "memory" or "postgres"
	DSN    string `mapstructure:"dsn"`
}

// ArchiveConfig controls backtest-result archiving.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type CollectorConfig struct {
	DefaultPeriod   string `mapstructure:"default_period"`
	DefaultInterval string `mapstructure:"default_interval"`
}

type BacktestConfig struct {
	FastWindow int `mapstructure:"fast_window"`
	SlowWindow int `mapstructure:"slow_window"`
}

type IndicatorConfig struct {
	SMAWindow int `mapstructure:"sma_window"`
	EMAWindow int `mapstructure:"ema_window"`
	RSIPeriod int `mapstructure:"rsi_period"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Ledger: LedgerConfig{
			Driver: "memory",
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    "data/archive",
		},
		Collector: CollectorConfig{
			DefaultPeriod:   "6mo",
			DefaultInterval: "1d",
		},
		Backtest: BacktestConfig{
			FastWindow: 20,
			SlowWindow: 50,
		},
		Indicators: IndicatorConfig{
			SMAWindow: 20,
			EMAWindow: 20,
			RSIPeriod: 14,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Ledger.Driver {
	case "memory":
	case "postgres":
		if c.Ledger.DSN == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("ledger dsn required when driver is postgres"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown ledger driver %q", c.Ledger.Driver))
	}

	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive path required for localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 bucket required when archive type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type %q", c.Archive.Type))
		}
	}

	if c.Backtest.FastWindow < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("backtest fast_window must be positive, got %d", c.Backtest.FastWindow))
	}
	if c.Backtest.FastWindow >= c.Backtest.SlowWindow {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("backtest fast_window %d must be smaller than slow_window %d",
				c.Backtest.FastWindow, c.Backtest.SlowWindow))
	}

	if c.Indicators.SMAWindow < 1 || c.Indicators.EMAWindow < 1 || c.Indicators.RSIPeriod < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("indicator windows must be positive"))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("metrics path must start with /, got %q", c.Metrics.Path))
	}

	return nil
}
