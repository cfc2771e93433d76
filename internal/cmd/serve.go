package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/mosaic/internal/feedserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo feeds over HTTP",
	Long: `Serve GET /banners, /articles, /users, /stats and /ads with the demo
payloads after a simulated delay. Point source.base_url at this server and
set source.mode to http to fetch over the network.

Examples:
  mosaic serve
  mosaic serve --addr 127.0.0.1:9000 --fault-rate 0.2
  mosaic serve --fixtures feeds.yaml --watch`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address")
	serveCmd.Flags().Float64("fault-rate", 0, "probability of answering 503")
	serveCmd.Flags().Bool("watch", false, "reload the fixtures file when it changes")
	serveCmd.Flags().String("fixtures", "", "YAML file overriding the demo payloads")
	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("serve.fault_rate", serveCmd.Flags().Lookup("fault-rate"))
	_ = viper.BindPFlag("serve.watch", serveCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("source.fixtures_file", serveCmd.Flags().Lookup("fixtures"))
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	var opts []feedserver.Option
	opts = append(opts, feedserver.WithLogger(e.logger))
	if path := e.cfg.Source.ResolveFixturesFile(); path != "" {
		opts = append(opts, feedserver.WithFixturesFile(path))
	}

	srv, err := feedserver.New(e.cfg.Serve, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Serving %v on http://%s\n", feedserver.Paths(), e.cfg.Serve.Addr)
	return srv.ListenAndServe(ctx)
}
