// Package config loads CLI configuration from defaults, a YAML file,
// environment variables, and flags, in ascending precedence.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all CLI configuration options.
type Config struct {
	Database       string `koanf:"database"`
	Location       string `koanf:"location"`
	Port           int    `koanf:"port"`
	HTML           bool   `koanf:"html"`
	Watch          bool   `koanf:"watch"`
	TimeoutSeconds int    `koanf:"timeout"`
	Verbose        bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultDatabase = "slab.db"
	DefaultPort     = 8008
	DefaultTimeout  = 5 // seconds
)

// Timeout returns the configured engine busy timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// findConfigFile finds the config file to use.
// Priority: explicit path > slab.yaml > slab.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("slab.yaml"); err == nil {
		return "slab.yaml"
	}
	if _, err := os.Stat("slab.yml"); err == nil {
		return "slab.yml"
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"database": DefaultDatabase,
		"location": "",
		"port":     DefaultPort,
		"html":     false,
		"watch":    false,
		"timeout":  DefaultTimeout,
		"verbose":  false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load config file
	if configFile := findConfigFile(cfgFile); configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	// 3. Load environment variables (SLAB_ prefix)
	// Transform: SLAB_DATABASE -> database
	if err := k.Load(env.Provider("SLAB_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "SLAB_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

type configKey struct{}
type loggerKey struct{}

// IntoContext stores the config in the context.
func IntoContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from the context, falling back to the
// defaults when none was stored.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		Database:       DefaultDatabase,
		Port:           DefaultPort,
		TimeoutSeconds: DefaultTimeout,
	}
}

// WithLogger stores the logger in the context.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFrom retrieves the logger from the context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
