package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Iron-Ham/mosaic/internal/errors"
	"github.com/Iron-Ham/mosaic/internal/event"
	"github.com/Iron-Ham/mosaic/internal/feed"
	"github.com/Iron-Ham/mosaic/internal/logging"
	"github.com/Iron-Ham/mosaic/internal/util"
)

// queueSize bounds the command queue. Dispatch blocks while it is full.
const queueSize = 64

// Fetcher produces a complete composite list. *aggregate.Aggregator
// satisfies it.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]feed.Entry, error)
}

// Messages renders the user-visible text of transient notifications.
type Messages interface {
	Clicked(label string) string
	RefreshFailed(reason string) string
	UnknownError() string
}

type englishMessages struct{}

func (englishMessages) Clicked(label string) string        { return "clicked: " + label }
func (englishMessages) RefreshFailed(reason string) string { return "refresh failed: " + reason }
func (englishMessages) UnknownError() string               { return "unknown error" }

// fetchResult is the completion message of one fetch goroutine.
type fetchResult struct {
	generation uint64
	items      []feed.Entry
	err        error
}

// Store is the single writer of the LoadState cell.
type Store struct {
	fetcher  Fetcher
	bus      *event.Bus
	logger   *logging.Logger
	messages Messages

	state    *Cell[LoadState]
	commands chan Command
	results  chan fetchResult

	mu       sync.Mutex
	sendMu   sync.RWMutex
	started  bool
	stopped  atomic.Bool
	stopOnce sync.Once
	done     chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// Owned by the loop goroutine.
	generation     uint64
	cancelInFlight context.CancelFunc
}

// Option configures a Store.
type Option func(*Store)

// WithBus sets the bus for ShowMessageEvent. Without a bus messages are
// dropped.
func WithBus(bus *event.Bus) Option {
	return func(s *Store) { s.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMessages sets the message templates (default English).
func WithMessages(m Messages) Option {
	return func(s *Store) {
		if m != nil {
			s.messages = m
		}
	}
}

// New creates a Store in the Idle state. Call Start to begin processing.
func New(f Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher:  f,
		logger:   logging.NopLogger(),
		messages: englishMessages{},
		state:    NewCell(LoadState{}),
		commands: make(chan Command, queueSize),
		results:  make(chan fetchResult),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("store")
	return s
}

// Start launches the command loop. Commands dispatched earlier are
// processed in order. Cancelling ctx has the same effect on in-flight work
// as Stop, but Stop must still be called to release watchers.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped.Load() {
		return errors.ErrStoreStopped
	}
	if s.started {
		return errors.ErrStoreRunning
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// Stop cancels any in-flight fetch, waits for every goroutine the store
// started and closes watcher channels. Safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped.Store(true)
		close(s.done)
		// Dispatch calls that raced the close finish before the loop stops.
		s.sendMu.Lock()
		if s.cancel != nil {
			s.cancel()
		}
		s.sendMu.Unlock()
		s.mu.Unlock()

		s.wg.Wait()
		s.state.Close()
		s.logger.Debug("store stopped")
	})
}

// Dispatch enqueues cmd. It returns errors.ErrStoreStopped once Stop has
// been called.
func (s *Store) Dispatch(cmd Command) error {
	if cmd == nil {
		return errors.NewValidationError("nil command")
	}
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()

	select {
	case <-s.done:
		return errors.ErrStoreStopped
	default:
	}
	select {
	case s.commands <- cmd:
		return nil
	case <-s.done:
		return errors.ErrStoreStopped
	}
}

// State returns the current snapshot.
func (s *Store) State() LoadState {
	return s.state.Load()
}

// Watch streams snapshots, starting with the current one. Intermediate
// values may be skipped by a slow reader; the latest is never lost.
func (s *Store) Watch() (<-chan LoadState, func()) {
	return s.state.Watch()
}

func (s *Store) loop(ctx context.Context) {
	defer s.wg.Done()
	defer func() {
		if s.cancelInFlight != nil {
			s.cancelInFlight()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.commands:
			s.handle(ctx, cmd)
		case r := <-s.results:
			s.complete(r)
		}
	}
}

func (s *Store) handle(ctx context.Context, cmd Command) {
	switch c := cmd.(type) {
	case Load:
		cur := s.state.Load()
		if len(cur.Items) > 0 || s.cancelInFlight != nil {
			s.logger.Debug("load ignored", "items", len(cur.Items), "in_flight", s.cancelInFlight != nil)
			return
		}
		s.startFetch(ctx, "load")
	case Refresh:
		s.startFetch(ctx, "refresh")
	case ItemClicked:
		label := c.Label
		if label == "" {
			label = c.ID
		}
		s.logger.Debug("item clicked", "id", c.ID, "label", util.TruncateString(label, 64))
		s.publish(s.messages.Clicked(label))
	default:
		s.logger.Warn("unknown command", "type", fmt.Sprintf("%T", cmd))
	}
}

func (s *Store) startFetch(ctx context.Context, reason string) {
	if s.cancelInFlight != nil {
		s.cancelInFlight()
		s.logger.Debug("superseding in-flight fetch", "generation", s.generation)
	}
	s.generation++
	gen := s.generation

	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancelInFlight = cancel

	cur := s.state.Load()
	s.state.Set(LoadState{IsLoading: true, Items: cur.Items})
	s.logger.Debug("fetch started", "trigger", reason, "generation", gen)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		items, err := s.fetcher.FetchAll(fetchCtx)
		select {
		case s.results <- fetchResult{generation: gen, items: items, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (s *Store) complete(r fetchResult) {
	if r.generation != s.generation {
		s.logger.Debug("discarding stale result", "generation", r.generation, "current", s.generation)
		return
	}
	s.cancelInFlight()
	s.cancelInFlight = nil

	cur := s.state.Load()
	if r.err == nil {
		s.state.Set(LoadState{Items: r.items})
		s.logger.Debug("fetch succeeded", "generation", r.generation, "entries", len(r.items))
		return
	}

	reason := errors.Reason(r.err)
	if reason == "" {
		reason = s.messages.UnknownError()
	}

	if len(cur.Items) > 0 {
		s.logFailure("refresh failed", r.err, "generation", r.generation)
		s.state.Set(LoadState{Items: cur.Items})
		s.publish(s.messages.RefreshFailed(reason))
		return
	}

	s.logFailure("load failed", r.err, "generation", r.generation)
	s.state.Set(LoadState{ErrorMessage: reason})
}

// logFailure logs a failed fetch at the level matching the error's severity.
func (s *Store) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err, "retryable", errors.IsRetryable(err))
	switch errors.GetSeverity(err) {
	case errors.SeverityCritical, errors.SeverityError:
		s.logger.Error(msg, args...)
	case errors.SeverityWarning:
		s.logger.Warn(msg, args...)
	default:
		s.logger.Info(msg, args...)
	}
}

func (s *Store) publish(msg string) {
	if s.bus != nil {
		s.bus.Publish(event.NewShowMessageEvent(msg))
	}
}
