// Package cmd implements the mosaic command line.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/mosaic/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "mosaic",
	Short: "Concurrent multi-source list aggregator",
	Long: `Mosaic fetches five independent feed sections (banners, articles,
users, stats and ads) concurrently, merges them into one ordered list and
shows it in an interactive terminal screen.

A failed source either becomes an empty section (isolated policy) or fails
the whole fetch (fail_fast policy).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/mosaic/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("MOSAIC")
	// Replace dots with underscores for nested keys in env vars
	// e.g., MOSAIC_AGGREGATE_POLICY for aggregate.policy
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
