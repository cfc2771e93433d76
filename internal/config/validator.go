package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "aggregate.fault_rate")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidSourceModes returns the list of valid source.mode values
func ValidSourceModes() []string {
	return []string{"simulated", "http"}
}

// ValidPolicies returns the list of valid aggregate.policy values
func ValidPolicies() []string {
	return []string{"isolated", "fail_fast"}
}

// ValidFaultTimings returns the list of valid aggregate.fault_timing values
func ValidFaultTimings() []string {
	return []string{"before_launch", "after_launch"}
}

// ValidThemes returns the built-in theme names. These must match the themes
// registered in tui/styles (kept separately to avoid an import cycle).
// A custom theme is also accepted when ThemesDir holds <name>.yaml.
func ValidThemes() []string {
	return []string{"default", "monokai", "dracula", "nord"}
}

func customThemeExists(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return false
	}
	info, err := os.Stat(filepath.Join(ThemesDir(), name+".yaml"))
	return err == nil && !info.IsDir()
}

// ValidLocales returns the supported message locales
func ValidLocales() []string {
	return []string{"en", "zh"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateSource()...)
	errors = append(errors, c.validateAggregate()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateServe()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func oneOf(field string, value string, valid []string) []ValidationError {
	if value == "" || slices.Contains(valid, value) {
		return nil
	}
	return []ValidationError{{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(valid, ", ")),
	}}
}

func probability(field string, value float64) []ValidationError {
	if value >= 0 && value <= 1 {
		return nil
	}
	return []ValidationError{{
		Field:   field,
		Value:   value,
		Message: "must be between 0 and 1",
	}}
}

// validateSource validates the SourceConfig
func (c *Config) validateSource() []ValidationError {
	errors := oneOf("source.mode", c.Source.Mode, ValidSourceModes())

	if c.Source.Mode == "http" {
		u, err := url.Parse(c.Source.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "source.base_url",
				Value:   c.Source.BaseURL,
				Message: "must be an absolute http(s) URL in http mode",
			})
		}
	}

	if c.Source.TimeoutMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "source.timeout_ms",
			Value:   c.Source.TimeoutMs,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateAggregate validates the AggregateConfig
func (c *Config) validateAggregate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, oneOf("aggregate.policy", c.Aggregate.Policy, ValidPolicies())...)
	errors = append(errors, oneOf("aggregate.fault_timing", c.Aggregate.FaultTiming, ValidFaultTimings())...)
	errors = append(errors, probability("aggregate.fault_rate", c.Aggregate.FaultRate)...)

	for i, pattern := range c.Aggregate.Fallback {
		if _, err := glob.Compile(pattern); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("aggregate.fallback[%d]", i),
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if !customThemeExists(c.TUI.Theme) {
		errors = append(errors, oneOf("tui.theme", c.TUI.Theme, ValidThemes())...)
	}
	errors = append(errors, oneOf("tui.locale", c.TUI.Locale, ValidLocales())...)

	const maxToastSeconds = 60
	if c.TUI.ToastSeconds < 0 || c.TUI.ToastSeconds > maxToastSeconds {
		errors = append(errors, ValidationError{
			Field:   "tui.toast_seconds",
			Value:   c.TUI.ToastSeconds,
			Message: fmt.Sprintf("must be between 0 and %d", maxToastSeconds),
		})
	}

	return errors
}

// validateServe validates the ServeConfig
func (c *Config) validateServe() []ValidationError {
	var errors []ValidationError

	if c.Serve.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Serve.Addr); err != nil {
			errors = append(errors, ValidationError{
				Field:   "serve.addr",
				Value:   c.Serve.Addr,
				Message: "must be host:port",
			})
		}
	}

	if c.Serve.MinDelayMs < 0 || c.Serve.MaxDelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "serve.min_delay_ms",
			Value:   fmt.Sprintf("%d..%d", c.Serve.MinDelayMs, c.Serve.MaxDelayMs),
			Message: "delays must be non-negative",
		})
	} else if c.Serve.MaxDelayMs < c.Serve.MinDelayMs {
		errors = append(errors, ValidationError{
			Field:   "serve.max_delay_ms",
			Value:   c.Serve.MaxDelayMs,
			Message: fmt.Sprintf("must be at least serve.min_delay_ms (%d)", c.Serve.MinDelayMs),
		})
	}

	errors = append(errors, probability("serve.fault_rate", c.Serve.FaultRate)...)

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	errors = append(errors, oneOf("logging.level", c.Logging.Level, ValidLogLevels())...)

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
