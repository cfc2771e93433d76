package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/mosaic/internal/errors"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the composite list once and print it",
	Long: `Fetch every source once, compose the list and print it to stdout.

Examples:
  mosaic fetch
  mosaic fetch --json
  mosaic fetch --policy fail_fast --fault-rate 0.5`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().Bool("json", false, "print the list as JSON")
	fetchCmd.Flags().String("policy", "", "failure policy: isolated or fail_fast")
	fetchCmd.Flags().Float64("fault-rate", 0, "probability of a simulated network error under fail_fast")
	fetchCmd.Flags().StringSlice("fallback", nil, "glob patterns of sources that fall back to an empty section")
	_ = viper.BindPFlag("aggregate.policy", fetchCmd.Flags().Lookup("policy"))
	_ = viper.BindPFlag("aggregate.fault_rate", fetchCmd.Flags().Lookup("fault-rate"))
	_ = viper.BindPFlag("aggregate.fallback", fetchCmd.Flags().Lookup("fallback"))
}

func runFetch(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	agg, err := e.aggregator(e.cfg.Aggregate)
	if err != nil {
		return err
	}

	list, err := agg.FetchAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch failed: %s", errors.Reason(err))
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), list)
	}
	return writeText(cmd.OutOrStdout(), list)
}
