package source

import (
	"context"
	"math/rand/v2"
	"net/url"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Iron-Ham/mosaic/internal/feed"
)

// SimulatedBaseURL is the base URL fetchers use with a SimulatedTransport.
const SimulatedBaseURL = "sim://local"

// SimulatedTransport serves Fixtures in-process. Each Get waits a random
// delay within the category's DelayRange, or until ctx is done.
type SimulatedTransport struct {
	fixtures atomic.Pointer[Fixtures]
	delays   map[feed.Category]DelayRange

	mu       sync.Mutex
	rng      *rand.Rand
	failures map[feed.Category]error
}

// SimulatedOption configures a SimulatedTransport.
type SimulatedOption func(*SimulatedTransport)

// WithFixtures sets the initial payloads.
func WithFixtures(f *Fixtures) SimulatedOption {
	return func(t *SimulatedTransport) {
		if f != nil {
			t.fixtures.Store(f)
		}
	}
}

// WithDelays replaces the latency windows. Categories missing from d
// respond immediately.
func WithDelays(d map[feed.Category]DelayRange) SimulatedOption {
	return func(t *SimulatedTransport) { t.delays = d }
}

// WithRand sets the random source used for delays.
func WithRand(r *rand.Rand) SimulatedOption {
	return func(t *SimulatedTransport) {
		if r != nil {
			t.rng = r
		}
	}
}

// NewSimulatedTransport creates a SimulatedTransport serving DefaultFixtures
// with DefaultDelays unless overridden.
func NewSimulatedTransport(opts ...SimulatedOption) *SimulatedTransport {
	t := &SimulatedTransport{
		delays:   DefaultDelays(),
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6d6f73616963)),
		failures: make(map[feed.Category]error),
	}
	t.fixtures.Store(DefaultFixtures())
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetFixtures swaps the served payloads. Requests already past their delay
// keep the payloads they read.
func (t *SimulatedTransport) SetFixtures(f *Fixtures) {
	if f != nil {
		t.fixtures.Store(f)
	}
}

// Fail makes every later Get for c return err after its delay. A nil err
// clears the failure.
func (t *SimulatedTransport) Fail(c feed.Category, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err == nil {
		delete(t.failures, c)
		return
	}
	t.failures[c] = err
}

// Get implements Transport. The category is the last path element of rawURL.
func (t *SimulatedTransport) Get(ctx context.Context, rawURL string) ([]byte, error) {
	c, err := categoryFromURL(rawURL)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(t.delay(c))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	t.mu.Lock()
	failure := t.failures[c]
	t.mu.Unlock()
	if failure != nil {
		return nil, failure
	}

	return t.fixtures.Load().Payload(c)
}

func (t *SimulatedTransport) delay(c feed.Category) time.Duration {
	r, ok := t.delays[c]
	if !ok || r.Max <= 0 {
		return 0
	}
	span := r.Max - r.Min
	if span <= 0 {
		return r.Min
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return r.Min + time.Duration(t.rng.Int64N(int64(span)))
}

func categoryFromURL(rawURL string) (feed.Category, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return feed.ParseCategory(path.Base(u.Path))
}
