package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/mosaic/internal/config"
	"github.com/Iron-Ham/mosaic/internal/tui/styles"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View Mosaic configuration",
	Long: `View Mosaic configuration.

Without arguments, displays the current configuration.
Use subcommands to create a config file or locate it.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/mosaic/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n\n")
	}

	if _, err := config.Load(); err != nil {
		fmt.Fprintf(out, "Warning: %v\n\n", err)
	}

	settings := viper.AllSettings()
	delete(settings, "config")
	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

const configTemplate = `# Mosaic Configuration

# Where the five feed sources read from
source:
  # simulated: built-in payloads served in-process; http: GET base_url/<category>
  mode: simulated
  base_url: http://127.0.0.1:8787
  # Per-source request timeout in milliseconds (0 = none)
  timeout_ms: 5000
  # Optional YAML file overriding the built-in payloads
  fixtures_file: ""

# How source failures propagate
aggregate:
  # isolated: a failed source becomes an empty section
  # fail_fast: any failure fails the whole fetch
  policy: isolated
  # Glob patterns of sources that still fall back under fail_fast
  fallback: []
  # Probability (0..1) of a simulated network error under fail_fast
  fault_rate: 0
  # before_launch or after_launch
  fault_timing: before_launch

# Terminal screen
tui:
  # Built-in: default, monokai, dracula, nord (or a file in the themes dir)
  theme: default
  toast_seconds: 3
  # en or zh
  locale: en

# Demo feed server (mosaic serve)
serve:
  addr: 127.0.0.1:8787
  # Uniform response delay range; 0/0 keeps the per-category defaults
  min_delay_ms: 0
  max_delay_ms: 0
  fault_rate: 0
  watch: false

logging:
  enabled: true
  # debug, info, warn, error
  level: info
  max_size_mb: 5
  max_backups: 2
  # Empty means ~/.local/state/mosaic
  dir: ""

telemetry:
  # OTLP/HTTP collector endpoint; empty disables tracing
  otlp_endpoint: ""
  service_name: mosaic
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(configTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize Mosaic's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintf(out, "\nCustom themes: %s (built-in: %v)\n", config.ThemesDir(), styles.BuiltinThemes())
	fmt.Fprintln(out, "\nEnvironment variables: MOSAIC_* (e.g., MOSAIC_AGGREGATE_POLICY)")
	return nil
}
