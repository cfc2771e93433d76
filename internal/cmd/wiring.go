package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Iron-Ham/mosaic/internal/aggregate"
	"github.com/Iron-Ham/mosaic/internal/config"
	"github.com/Iron-Ham/mosaic/internal/event"
	"github.com/Iron-Ham/mosaic/internal/i18n"
	"github.com/Iron-Ham/mosaic/internal/logging"
	"github.com/Iron-Ham/mosaic/internal/source"
	"github.com/Iron-Ham/mosaic/internal/telemetry"
)

// env holds what every command shares: configuration, logger, bus,
// translator and the tracing shutdown hook.
type env struct {
	cfg    *config.Config
	logger *logging.Logger
	bus    *event.Bus
	tr     *i18n.Translator

	shutdownTelemetry telemetry.Shutdown
}

// newEnv loads the configuration and sets up logging and tracing.
func newEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.NopLogger()
	if cfg.Logging.Enabled {
		rotation := logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		}
		logger, err = logging.New(cfg.Logging.ResolveDir(), cfg.Logging.Level, rotation)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
	}
	logger = logger.WithSession(uuid.NewString())

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}

	return &env{
		cfg:               cfg,
		logger:            logger,
		bus:               event.NewBus(event.WithLogger(logger)),
		tr:                i18n.New(cfg.TUI.Locale),
		shutdownTelemetry: shutdown,
	}, nil
}

// Close flushes spans and closes the log file.
func (e *env) Close() {
	if e.shutdownTelemetry != nil {
		if err := e.shutdownTelemetry(context.Background()); err != nil {
			e.logger.Warn("flush traces", "error", err)
		}
	}
	_ = e.logger.Close()
}

// transport builds the configured source transport and its base URL.
func (e *env) transport() (source.Transport, string, error) {
	switch e.cfg.Source.Mode {
	case "http":
		return source.NewHTTPTransport(e.cfg.Source.Timeout()), e.cfg.Source.BaseURL, nil
	default:
		var opts []source.SimulatedOption
		if path := e.cfg.Source.ResolveFixturesFile(); path != "" {
			f, err := source.LoadFixtures(path)
			if err != nil {
				return nil, "", err
			}
			opts = append(opts, source.WithFixtures(f))
		}
		return source.NewSimulatedTransport(opts...), source.SimulatedBaseURL, nil
	}
}

// aggregator builds the Aggregator from the aggregate config section.
func (e *env) aggregator(agg config.AggregateConfig) (*aggregate.Aggregator, error) {
	policy, err := aggregate.ParsePolicy(agg.Policy)
	if err != nil {
		return nil, err
	}
	timing, err := aggregate.ParseFaultTiming(agg.FaultTiming)
	if err != nil {
		return nil, err
	}

	t, baseURL, err := e.transport()
	if err != nil {
		return nil, err
	}

	return aggregate.New(source.NewFetchers(t, baseURL, e.cfg.Source.Timeout()),
		aggregate.WithPolicy(policy),
		aggregate.WithFallback(agg.Fallback...),
		aggregate.WithFaultInjector(aggregate.NewFaultInjector(agg.FaultRate, nil), timing),
		aggregate.WithLabels(e.tr.Labels()),
		aggregate.WithBus(e.bus),
		aggregate.WithLogger(e.logger),
	)
}
