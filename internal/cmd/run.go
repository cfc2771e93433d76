package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/mosaic/internal/event"
	"github.com/Iron-Ham/mosaic/internal/store"
	"github.com/Iron-Ham/mosaic/internal/tui"
	"github.com/Iron-Ham/mosaic/internal/tui/styles"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the interactive list screen",
	Long: `Open the interactive list screen. The list loads on start; press r to
refresh, enter to open a row and q to quit.

When stdout is not a terminal (or with --headless) the list is loaded once
and printed as text instead.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("headless", false, "load once and print instead of opening the screen")
}

func runRun(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	agg, err := e.aggregator(e.cfg.Aggregate)
	if err != nil {
		return err
	}

	st := store.New(agg,
		store.WithBus(e.bus),
		store.WithLogger(e.logger),
		store.WithMessages(e.tr),
	)
	if err := st.Start(cmd.Context()); err != nil {
		return err
	}
	defer st.Stop()

	headless, _ := cmd.Flags().GetBool("headless")
	if headless || !term.IsTerminal(int(os.Stdout.Fd())) {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runHeadless(ctx, cmd.OutOrStdout(), st, e.bus)
	}

	palette, err := styles.PaletteFor(e.cfg.TUI.Theme)
	if err != nil {
		e.logger.Warn("falling back to the default theme", "error", err)
		palette = styles.Default()
	}
	app := tui.New(st, e.bus,
		tui.WithLogger(e.logger),
		tui.WithModelOptions(
			tui.WithTranslator(e.tr),
			tui.WithStyles(styles.New(palette)),
			tui.WithToastDuration(e.cfg.TUI.ToastDuration()),
			tui.WithModelLogger(e.logger),
		),
	)
	return app.Run(cmd.Context())
}

// runHeadless loads the list once and prints it. Notifications are printed
// as they arrive.
func runHeadless(ctx context.Context, out io.Writer, st *store.Store, bus *event.Bus) error {
	id := bus.Subscribe(event.TypeShowMessage, func(ev event.Event) {
		if sm, ok := ev.(event.ShowMessageEvent); ok {
			fmt.Fprintln(out, "! "+sm.Message)
		}
	})
	defer bus.Unsubscribe(id)

	states, cancel := st.Watch()
	defer cancel()

	if err := st.Dispatch(store.Load{}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-states:
			if !ok {
				return nil
			}
			switch s.Phase() {
			case store.PhaseError:
				return fmt.Errorf("load failed: %s", s.ErrorMessage)
			case store.PhaseLoaded:
				return writeText(out, s.Items)
			}
		}
	}
}
