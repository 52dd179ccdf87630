// Package config loads host settings from defaults, an optional config file,
// ICICLES_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/led-icicles/icicles-serial/host/link"
	"github.com/led-icicles/icicles-serial/host/serial"
)

// EnvPrefix prefixes every environment variable, e.g. ICICLES_DEVICE
const EnvPrefix = "ICICLES"

// Keys
const (
	KeyDevice      = "device"
	KeyBaud        = "baud"
	KeyReadTimeout = "read_timeout"
	KeyPingEvery   = "ping_every"
	KeyPixels      = "pixels"
	KeyLogLevel    = "log_level"
	KeyLogFormat   = "log_format"
	KeyMetricsAddr = "metrics_addr"
)

type Config struct {
	Device      string        `mapstructure:"device"`
	Baud        int           `mapstructure:"baud"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	PingEvery   time.Duration `mapstructure:"ping_every"`
	Pixels      int           `mapstructure:"pixels"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDevice, "/dev/ttyUSB0")
	v.SetDefault(KeyBaud, serial.DefaultBaud)
	v.SetDefault(KeyReadTimeout, 100*time.Millisecond)
	v.SetDefault(KeyPingEvery, link.DefaultPingEvery)
	v.SetDefault(KeyPixels, 0)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyMetricsAddr, "")
}

// Load reads the configuration. path may be empty, in which case only
// defaults, environment and bound flags are used.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges
func (c *Config) Validate() error {
	var errs []error
	if c.Device == "" {
		errs = append(errs, errors.New("device must be set"))
	}
	if c.Baud <= 0 {
		errs = append(errs, fmt.Errorf("baud must be positive, got %d", c.Baud))
	}
	if c.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("read_timeout must be positive, got %v", c.ReadTimeout))
	}
	if c.Pixels < 0 {
		errs = append(errs, fmt.Errorf("pixels must not be negative, got %d", c.Pixels))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SerialConfig returns the serial port settings
func (c *Config) SerialConfig() *serial.Config {
	return &serial.Config{
		Device:      c.Device,
		Baud:        c.Baud,
		ReadTimeout: c.ReadTimeout,
	}
}

// StartOptions returns the keepalive settings
func (c *Config) StartOptions() link.StartOptions {
	return link.StartOptions{PingEvery: c.PingEvery}
}

// NewLogger builds a logger writing to w with the configured level and format
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log_level %q", s)
	}
	return level, nil
}
