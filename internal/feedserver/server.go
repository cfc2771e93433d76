// Package feedserver serves the demo feed payloads over HTTP so the http
// source mode has something to talk to.
package feedserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Iron-Ham/mosaic/internal/aggregate"
	"github.com/Iron-Ham/mosaic/internal/config"
	mosaicerrors "github.com/Iron-Ham/mosaic/internal/errors"
	"github.com/Iron-Ham/mosaic/internal/feed"
	"github.com/Iron-Ham/mosaic/internal/logging"
	"github.com/Iron-Ham/mosaic/internal/source"
)

// RequestIDHeader carries the per-request identifier in responses.
const RequestIDHeader = "X-Request-Id"

const shutdownTimeout = 5 * time.Second

// Server answers GET /{category} with that category's fixture payload after
// a simulated delay.
type Server struct {
	addr         string
	fixturesFile string
	watch        bool

	payloads *source.SimulatedTransport
	fault    *aggregate.FaultInjector
	logger   *logging.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFixturesFile serves the payloads of a YAML fixtures file, reloading it
// on change when the server config enables watching.
func WithFixturesFile(path string) Option {
	return func(s *Server) { s.fixturesFile = path }
}

// WithFaultInjector overrides the injector built from the config fault rate.
func WithFaultInjector(f *aggregate.FaultInjector) Option {
	return func(s *Server) { s.fault = f }
}

// New creates a Server from cfg. A zero delay window keeps the per-category
// defaults; otherwise every category uses [MinDelayMs, MaxDelayMs].
func New(cfg config.ServeConfig, opts ...Option) (*Server, error) {
	s := &Server{
		addr:   cfg.Addr,
		watch:  cfg.Watch,
		fault:  aggregate.NewFaultInjector(cfg.FaultRate, nil),
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("feedserver")

	simOpts := []source.SimulatedOption{source.WithDelays(delays(cfg))}
	if s.fixturesFile != "" {
		f, err := source.LoadFixtures(s.fixturesFile)
		if err != nil {
			return nil, err
		}
		simOpts = append(simOpts, source.WithFixtures(f))
	}
	s.payloads = source.NewSimulatedTransport(simOpts...)
	return s, nil
}

func delays(cfg config.ServeConfig) map[feed.Category]source.DelayRange {
	if cfg.MinDelayMs == 0 && cfg.MaxDelayMs == 0 {
		return source.DefaultDelays()
	}
	r := source.DelayRange{
		Min: time.Duration(cfg.MinDelayMs) * time.Millisecond,
		Max: time.Duration(cfg.MaxDelayMs) * time.Millisecond,
	}
	out := make(map[feed.Category]source.DelayRange, len(feed.Categories()))
	for _, c := range feed.Categories() {
		out[c] = r
	}
	return out
}

// Handler returns the instrumented HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{category}", s.handleCategory)
	return otelhttp.NewHandler(s.withRequestID(mux), "feedserver")
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request served",
			"request_id", id,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	c, err := feed.ParseCategory(r.PathValue("category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	body, err := s.payloads.Get(r.Context(), source.SimulatedBaseURL+"/"+string(c))
	if err != nil {
		// The client went away; nobody reads the response.
		if r.Context().Err() != nil {
			return
		}
		s.logger.Error("payload failed", "category", string(c), "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if s.fault.Fire() {
		s.logger.Info("injecting fault", "category", string(c))
		http.Error(w, mosaicerrors.ErrInjectedFault.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// ListenAndServe listens on the configured address and serves until ctx
// ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends, then shuts down gracefully. When
// watching is enabled the fixtures file is reloaded on change for the
// lifetime of the call.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.watch && s.fixturesFile != "" {
		w, err := source.NewFixtureWatcher(s.fixturesFile, s.payloads.SetFixtures, s.logger)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("watch fixtures: %w", err)
		}
		w.Start()
		defer w.Stop()
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Paths returns the request paths the server answers, in section order.
func Paths() []string {
	out := make([]string, 0, len(feed.Categories()))
	for _, c := range feed.Categories() {
		out = append(out, "/"+string(c))
	}
	return out
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
