// Package aggregate fans a fetch out to every source concurrently and merges
// the results into one ordered composite list.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/gobwas/glob"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Iron-Ham/mosaic/internal/errors"
	"github.com/Iron-Ham/mosaic/internal/event"
	"github.com/Iron-Ham/mosaic/internal/feed"
	"github.com/Iron-Ham/mosaic/internal/logging"
	"github.com/Iron-Ham/mosaic/internal/source"
)

const instrumentationName = "github.com/Iron-Ham/mosaic/internal/aggregate"

// Aggregator runs one fetcher per category concurrently and composes their
// results. It holds no per-call state and is safe for concurrent use.
type Aggregator struct {
	fetchers []source.Fetcher

	policy   Policy
	fallback []glob.Glob
	patterns []string
	fault    *FaultInjector
	timing   FaultTiming
	labels   feed.Labels

	bus    *event.Bus
	logger *logging.Logger
	tracer trace.Tracer
}

// Option configures an Aggregator.
type Option func(*Aggregator) error

// WithPolicy sets the isolation policy (default Isolated).
func WithPolicy(p Policy) Option {
	return func(a *Aggregator) error {
		a.policy = p
		return nil
	}
}

// WithFallback makes sources whose category matches any of the glob
// patterns fall back to an empty section under FailFast. "*" matches every
// source, which makes FailFast behave like Isolated.
func WithFallback(patterns ...string) Option {
	return func(a *Aggregator) error {
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				return fmt.Errorf("fallback pattern %q: %w", p, err)
			}
			a.fallback = append(a.fallback, g)
			a.patterns = append(a.patterns, p)
		}
		return nil
	}
}

// WithFaultInjector enables synthetic failures under FailFast.
func WithFaultInjector(f *FaultInjector, timing FaultTiming) Option {
	return func(a *Aggregator) error {
		a.fault = f
		a.timing = timing
		return nil
	}
}

// WithLabels sets the header titles and footer hint.
func WithLabels(l feed.Labels) Option {
	return func(a *Aggregator) error {
		a.labels = l
		return nil
	}
}

// WithBus publishes SourceFailedEvent and FetchCompletedEvent on bus.
func WithBus(bus *event.Bus) Option {
	return func(a *Aggregator) error {
		a.bus = bus
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Aggregator) error {
		if l != nil {
			a.logger = l
		}
		return nil
	}
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *Aggregator) error {
		if tp != nil {
			a.tracer = tp.Tracer(instrumentationName)
		}
		return nil
	}
}

// New creates an Aggregator. fetchers must contain exactly one Fetcher per
// category; they are reordered into section order.
func New(fetchers []source.Fetcher, opts ...Option) (*Aggregator, error) {
	byCategory := make(map[feed.Category]source.Fetcher, len(fetchers))
	for _, f := range fetchers {
		if _, dup := byCategory[f.Category()]; dup {
			return nil, fmt.Errorf("duplicate fetcher for %s", f.Category())
		}
		byCategory[f.Category()] = f
	}

	a := &Aggregator{
		labels: feed.DefaultLabels(),
		logger: logging.NopLogger(),
		tracer: otel.Tracer(instrumentationName),
	}
	for _, c := range feed.Categories() {
		f, ok := byCategory[c]
		if !ok {
			return nil, fmt.Errorf("missing fetcher for %s", c)
		}
		a.fetchers = append(a.fetchers, f)
	}
	if len(byCategory) != len(a.fetchers) {
		return nil, errors.Wrap(errors.ErrUnknownCategory, "unexpected fetcher")
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.logger = a.logger.WithComponent("aggregate")
	return a, nil
}

// Policy returns the configured policy.
func (a *Aggregator) Policy() Policy { return a.policy }

// FetchAll runs every source concurrently and returns the composite list.
//
// Under Isolated the call fails only with the caller's context error. Under
// FailFast the first failure cancels the remaining sources and is returned
// as an *errors.AggregateError naming the source.
func (a *Aggregator) FetchAll(ctx context.Context) ([]feed.Entry, error) {
	ctx, span := a.tracer.Start(ctx, "aggregate.FetchAll", trace.WithAttributes(
		attribute.String("aggregate.policy", a.policy.String()),
		attribute.StringSlice("aggregate.fallback", a.patterns),
	))
	defer span.End()

	start := time.Now()
	list, err := a.fetchAll(ctx)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errors.Reason(err))
		a.logger.Debug("aggregate fetch failed", "duration_ms", elapsed.Milliseconds(), "error", err)
	} else {
		span.SetAttributes(attribute.Int("aggregate.entries", len(list)))
		a.logger.Debug("aggregate fetch completed", "duration_ms", elapsed.Milliseconds(), "entries", len(list))
	}
	a.publish(event.NewFetchCompletedEvent(elapsed, len(list), err))
	return list, err
}

func (a *Aggregator) fetchAll(parent context.Context) ([]feed.Entry, error) {
	failFast := a.policy == FailFast && !a.allFallBack()
	if failFast && a.timing == BeforeLaunch && a.fault.Fire() {
		return nil, errors.NewAggregateError("", errors.ErrInjectedFault)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	p := pool.New().WithContext(ctx).WithFirstError()
	if failFast {
		p = p.WithCancelOnError()
	}

	// Each goroutine writes only its own slot.
	results := make([][]feed.Entry, len(a.fetchers))
	for i, f := range a.fetchers {
		p.Go(func(ctx context.Context) error {
			entries, err := a.fetchOne(ctx, f)
			if err != nil {
				return err
			}
			results[i] = entries
			return nil
		})
	}

	injected := failFast && a.timing == AfterLaunch && a.fault.Fire()
	if injected {
		cancel()
	}
	err := p.Wait()

	if parentErr := parent.Err(); parentErr != nil {
		return nil, parentErr
	}
	if injected {
		return nil, errors.NewAggregateError("", errors.ErrInjectedFault)
	}
	if err != nil {
		return nil, err
	}

	sections := make(map[feed.Category][]feed.Entry, len(a.fetchers))
	for i, f := range a.fetchers {
		sections[f.Category()] = results[i]
	}
	list := feed.Compose(sections, a.labels)

	if verr := feed.Validate(list); verr != nil {
		if failFast {
			return nil, errors.NewAggregateError("", verr)
		}
		a.logger.Warn("dropping duplicate entries", "error", verr)
		list = dedupe(list)
	}
	return list, nil
}

// fetchOne runs a single source in its own span. A failure is returned as an
// AggregateError unless the source falls back, in which case the failure is
// reported and an empty section is returned.
func (a *Aggregator) fetchOne(ctx context.Context, f source.Fetcher) ([]feed.Entry, error) {
	category := f.Category()
	ctx, span := a.tracer.Start(ctx, "source.Fetch", trace.WithAttributes(
		attribute.String("source.category", string(category)),
	))
	defer span.End()

	entries, err := f.Fetch(ctx)
	if err == nil {
		err = checkKinds(category, entries)
	}
	if err == nil {
		span.SetAttributes(attribute.Int("source.entries", len(entries)))
		return entries, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		span.SetStatus(codes.Error, "canceled")
		return nil, ctxErr
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, errors.Reason(err))

	if !a.fallsBack(category) {
		return nil, errors.NewAggregateError(string(category), err)
	}

	span.SetAttributes(attribute.Bool("source.fallback", true))
	args := []any{"source", string(category), "error", err, "retryable", errors.IsRetryable(err)}
	if errors.IsSourceError(err) {
		a.logger.Warn("source failed, using empty section", args...)
	} else {
		a.logger.Error("source failed unexpectedly, using empty section", args...)
	}
	a.publish(event.NewSourceFailedEvent(string(category), errors.Reason(err)))
	return nil, nil
}

func (a *Aggregator) fallsBack(c feed.Category) bool {
	if a.policy == Isolated {
		return true
	}
	for _, g := range a.fallback {
		if g.Match(string(c)) {
			return true
		}
	}
	return false
}

// allFallBack reports whether every source falls back, in which case the
// call cannot fail and FailFast degrades to Isolated.
func (a *Aggregator) allFallBack() bool {
	for _, f := range a.fetchers {
		if !a.fallsBack(f.Category()) {
			return false
		}
	}
	return true
}

func (a *Aggregator) publish(e event.Event) {
	if a.bus != nil {
		a.bus.Publish(e)
	}
}

func checkKinds(c feed.Category, entries []feed.Entry) error {
	want := c.ItemKind()
	for _, e := range entries {
		if e.Kind() != want {
			return errors.NewFormatError(string(c),
				fmt.Sprintf("%s entry %q in %s section", e.Kind(), e.EntryID(), c), nil)
		}
	}
	return nil
}

// dedupe keeps the first entry for every identifier.
func dedupe(list []feed.Entry) []feed.Entry {
	seen := make(map[string]struct{}, len(list))
	out := list[:0:0]
	for _, e := range list {
		if _, dup := seen[e.EntryID()]; dup {
			continue
		}
		seen[e.EntryID()] = struct{}{}
		out = append(out, e)
	}
	return out
}
