package tui

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/mosaic/internal/event"
	"github.com/Iron-Ham/mosaic/internal/logging"
	"github.com/Iron-Ham/mosaic/internal/store"
	"github.com/Iron-Ham/mosaic/internal/tui/msg"
)

// App wraps the Bubbletea program and connects it to the store and bus.
type App struct {
	store  *store.Store
	bus    *event.Bus
	model  Model
	logger *logging.Logger

	programOpts []tea.ProgramOption
}

// Option configures an App.
type Option func(*App)

// WithModelOptions configures the screen model.
func WithModelOptions(opts ...ModelOption) Option {
	return func(a *App) { a.model = NewModel(a.store, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithProgramOptions adds Bubbletea program options (input, output,
// renderer) after the defaults.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(a *App) { a.programOpts = append(a.programOpts, opts...) }
}

// New creates a TUI application for st. Notifications are read from bus.
func New(st *store.Store, bus *event.Bus, opts ...Option) *App {
	a := &App{
		store:  st,
		bus:    bus,
		model:  NewModel(st),
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.WithComponent("tui")
	return a
}

// Run starts the TUI and blocks until the user quits, a signal arrives or
// ctx is cancelled. The store must already be started.
func (a *App) Run(ctx context.Context) error {
	opts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, a.programOpts...)
	program := tea.NewProgram(a.model, opts...)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sigDone := make(chan struct{})
	defer close(sigDone)
	go func() {
		select {
		case sig := <-sigChan:
			a.logger.Info("received signal", "signal", sig.String())
			program.Quit()
		case <-sigDone:
		}
	}()

	// Forward store snapshots
	states, cancelWatch := a.store.Watch()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for st := range states {
			program.Send(msg.StateMsg{State: st})
		}
	}()

	var subs []string
	if a.bus != nil {
		subs = append(subs,
			a.bus.Subscribe(event.TypeShowMessage, func(e event.Event) {
				if sm, ok := e.(event.ShowMessageEvent); ok {
					program.Send(msg.ToastMsg{Text: sm.Message})
				}
			}),
			a.bus.Subscribe(event.TypeSourceFailed, func(e event.Event) {
				if sf, ok := e.(event.SourceFailedEvent); ok {
					a.logger.Debug("section fell back to empty", "source", sf.Category, "reason", sf.Reason)
				}
			}),
		)
	}

	_, err := program.Run()

	for _, id := range subs {
		a.bus.Unsubscribe(id)
	}
	cancelWatch()
	wg.Wait()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
