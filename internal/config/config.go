package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Mosaic configuration
type Config struct {
	Source    SourceConfig    `mapstructure:"source"`
	Aggregate AggregateConfig `mapstructure:"aggregate"`
	TUI       TUIConfig       `mapstructure:"tui"`
	Serve     ServeConfig     `mapstructure:"serve"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// SourceConfig controls where the five feed sources read from
type SourceConfig struct {
	// Mode selects the transport: "simulated" serves the built-in payloads
	// in-process, "http" fetches BaseURL/<category> (default: "simulated")
	Mode string `mapstructure:"mode"`
	// BaseURL is the endpoint prefix used in http mode
	BaseURL string `mapstructure:"base_url"`
	// TimeoutMs bounds a single source request in milliseconds (0 = no timeout)
	TimeoutMs int `mapstructure:"timeout_ms"`
	// FixturesFile is an optional YAML file overriding the built-in payloads.
	// Supports ~ for home directory expansion.
	FixturesFile string `mapstructure:"fixtures_file"`
}

// Timeout returns the request timeout as a time.Duration (0 means none)
func (c *SourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// AggregateConfig controls how source failures propagate
type AggregateConfig struct {
	// Policy is "isolated" (a failed source becomes an empty section) or
	// "fail_fast" (any failure fails the whole fetch) (default: "isolated")
	Policy string `mapstructure:"policy"`
	// Fallback lists glob patterns of categories that fall back to an empty
	// section even under fail_fast, e.g. ["ads", "st*"]
	Fallback []string `mapstructure:"fallback"`
	// FaultRate is the probability (0..1) of a simulated network error under
	// fail_fast (default: 0)
	FaultRate float64 `mapstructure:"fault_rate"`
	// FaultTiming is "before_launch" or "after_launch" (default: "before_launch")
	FaultTiming string `mapstructure:"fault_timing"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// Theme is the color theme for the TUI (default: "default")
	// Options: "default", "monokai", "dracula", "nord"
	Theme string `mapstructure:"theme"`
	// ToastSeconds is how long a transient message stays visible (default: 3)
	ToastSeconds int `mapstructure:"toast_seconds"`
	// Locale selects the message catalog: "en" or "zh" (default: "en")
	Locale string `mapstructure:"locale"`
}

// ToastDuration returns the toast lifetime as a time.Duration
func (c *TUIConfig) ToastDuration() time.Duration {
	return time.Duration(c.ToastSeconds) * time.Second
}

// ServeConfig controls the demo feed server
type ServeConfig struct {
	// Addr is the listen address (default: "127.0.0.1:8787")
	Addr string `mapstructure:"addr"`
	// MinDelayMs and MaxDelayMs override the per-category response delay
	// range when both are set (default: 0, use per-category ranges)
	MinDelayMs int `mapstructure:"min_delay_ms"`
	MaxDelayMs int `mapstructure:"max_delay_ms"`
	// FaultRate is the probability (0..1) of answering 503
	FaultRate float64 `mapstructure:"fault_rate"`
	// Watch reloads the fixtures file when it changes (default: false)
	Watch bool `mapstructure:"watch"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether file logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 5)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 2)
	MaxBackups int `mapstructure:"max_backups"`
	// Dir is the log directory. Empty means the state directory.
	// Supports ~ for home directory expansion.
	Dir string `mapstructure:"dir"`
}

// TelemetryConfig controls OpenTelemetry tracing
type TelemetryConfig struct {
	// OTLPEndpoint is the OTLP/HTTP collector endpoint. Empty disables export.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	// ServiceName is the resource service name (default: "mosaic")
	ServiceName string `mapstructure:"service_name"`
}

// ResolveDir returns the log directory, defaulting to StateDir and
// expanding a leading ~.
func (c *LoggingConfig) ResolveDir() string {
	if c.Dir == "" {
		return StateDir()
	}
	return expandHome(c.Dir)
}

// ResolveFixturesFile returns FixturesFile with a leading ~ expanded.
func (c *SourceConfig) ResolveFixturesFile() string {
	return expandHome(c.FixturesFile)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Mode:      "simulated",
			BaseURL:   "http://127.0.0.1:8787",
			TimeoutMs: 5000,
		},
		Aggregate: AggregateConfig{
			Policy:      "isolated",
			Fallback:    []string{},
			FaultRate:   0,
			FaultTiming: "before_launch",
		},
		TUI: TUIConfig{
			Theme:        "default",
			ToastSeconds: 3,
			Locale:       "en",
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8787",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 2,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "mosaic",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("source.mode", defaults.Source.Mode)
	viper.SetDefault("source.base_url", defaults.Source.BaseURL)
	viper.SetDefault("source.timeout_ms", defaults.Source.TimeoutMs)
	viper.SetDefault("source.fixtures_file", defaults.Source.FixturesFile)

	viper.SetDefault("aggregate.policy", defaults.Aggregate.Policy)
	viper.SetDefault("aggregate.fallback", defaults.Aggregate.Fallback)
	viper.SetDefault("aggregate.fault_rate", defaults.Aggregate.FaultRate)
	viper.SetDefault("aggregate.fault_timing", defaults.Aggregate.FaultTiming)

	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.toast_seconds", defaults.TUI.ToastSeconds)
	viper.SetDefault("tui.locale", defaults.TUI.Locale)

	viper.SetDefault("serve.addr", defaults.Serve.Addr)
	viper.SetDefault("serve.min_delay_ms", defaults.Serve.MinDelayMs)
	viper.SetDefault("serve.max_delay_ms", defaults.Serve.MaxDelayMs)
	viper.SetDefault("serve.fault_rate", defaults.Serve.FaultRate)
	viper.SetDefault("serve.watch", defaults.Serve.Watch)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	viper.SetDefault("telemetry.otlp_endpoint", defaults.Telemetry.OTLPEndpoint)
	viper.SetDefault("telemetry.service_name", defaults.Telemetry.ServiceName)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mosaic")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mosaic"
	}
	return filepath.Join(home, ".config", "mosaic")
}

// ThemesDir returns the directory holding custom YAML themes
func ThemesDir() string {
	return filepath.Join(ConfigDir(), "themes")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir returns the directory for logs and other runtime state
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "mosaic")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mosaic"
	}
	return filepath.Join(home, ".local", "state", "mosaic")
}
