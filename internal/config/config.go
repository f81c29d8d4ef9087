package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/basketloom-cli/internal/basket"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Analysis defaults
	Separator         string `mapstructure:"separator" yaml:"separator"`
	MinProducts       int    `mapstructure:"min_products" yaml:"min_products"`
	MinSupportPercent int    `mapstructure:"min_support_percent" yaml:"min_support_percent"`
	TopTriplets       int    `mapstructure:"top_triplets" yaml:"top_triplets"`
	MaxItems          int    `mapstructure:"max_items_per_transaction" yaml:"max_items_per_transaction"`
	// Presentation caps
	DisplayLimit  int `mapstructure:"display_limit" yaml:"display_limit"`
	NetworkTopN   int `mapstructure:"network_top_n" yaml:"network_top_n"`
	FrequencyTopN int `mapstructure:"frequency_top_n" yaml:"frequency_top_n"`

	// Archive of past analyses
	ArchiveBackend string `mapstructure:"archive_backend" yaml:"archive_backend"`
	ArchivePath    string `mapstructure:"archive_path" yaml:"archive_path"`

	// HTTP server
	ServerAddr        string   `mapstructure:"server_addr" yaml:"server_addr"`
	ServerEnvironment string   `mapstructure:"server_environment" yaml:"server_environment"`
	AllowedOrigins    []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	RateLimitPerSec   float64  `mapstructure:"rate_limit_per_sec" yaml:"rate_limit_per_sec"`
	RateLimitBurst    int      `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
	RequestTimeoutSec int      `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`
	ParseCacheSize    int      `mapstructure:"parse_cache_size" yaml:"parse_cache_size"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Archive backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendNone   = "none"
)

// Dir returns ~/.basketloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".basketloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.basketloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := basket.DefaultConfig()
	v.SetDefault("separator", d.Separator)
	v.SetDefault("min_products", d.MinItems)
	v.SetDefault("min_support_percent", d.MinSupportPercent)
	v.SetDefault("top_triplets", d.TopTriplets)
	v.SetDefault("max_items_per_transaction", d.MaxItems)
	r := basket.DefaultReportOptions()
	v.SetDefault("display_limit", r.DisplayLimit)
	v.SetDefault("network_top_n", r.NetworkTopN)
	v.SetDefault("frequency_top_n", r.FrequencyTopN)
	v.SetDefault("archive_backend", BackendSQLite)
	v.SetDefault("archive_path", "")
	// Server defaults
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("server_environment", "development")
	v.SetDefault("allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("rate_limit_per_sec", 10.0)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("request_timeout_sec", 30)
	v.SetDefault("parse_cache_size", 128)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("BASKETLOOM")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// no config file: env and defaults only
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.resolvePaths(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}

// resolvePaths fills archive_path and expands a leading ~.
func (c *Global) resolvePaths() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if c.ArchivePath == "" {
		switch c.ArchiveBackend {
		case BackendFile:
			c.ArchivePath = filepath.Join(dir, "archive")
		default:
			c.ArchivePath = filepath.Join(dir, "archive.db")
		}
	}
	if strings.HasPrefix(c.ArchivePath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		p := strings.TrimPrefix(c.ArchivePath, "~")
		p = strings.TrimPrefix(p, string(os.PathSeparator))
		c.ArchivePath = filepath.Join(home, strings.TrimPrefix(p, "/"))
	}
	c.ArchivePath = filepath.Clean(c.ArchivePath)
	return nil
}

// Validate checks settings that are not covered by basket.Config.Validate.
func (c *Global) Validate() error {
	switch c.ArchiveBackend {
	case BackendSQLite, BackendFile, BackendNone:
	default:
		return fmt.Errorf("archive_backend must be '%s', '%s' or '%s', got: %s", BackendSQLite, BackendFile, BackendNone, c.ArchiveBackend)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be 'text' or 'json', got: %s", c.LogFormat)
	}
	if c.RateLimitPerSec < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	return nil
}

// AnalysisConfig projects the defaults into an immutable basket.Config.
func (c *Global) AnalysisConfig() basket.Config {
	return basket.Config{
		Separator:         c.Separator,
		MinItems:          c.MinProducts,
		MinSupportPercent: c.MinSupportPercent,
		TopTriplets:       c.TopTriplets,
		MaxItems:          c.MaxItems,
	}
}

// ReportOptions projects the presentation caps.
func (c *Global) ReportOptions() basket.ReportOptions {
	return basket.ReportOptions{
		DisplayLimit:  c.DisplayLimit,
		FrequencyTopN: c.FrequencyTopN,
		NetworkTopN:   c.NetworkTopN,
	}
}

// RequestTimeout returns the per-request deadline for the server.
func (c *Global) RequestTimeout() time.Duration {
	if c.RequestTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSec) * time.Second
}
