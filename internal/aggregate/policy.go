package aggregate

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// Policy selects how a failing source affects the whole fetch.
type Policy int

const (
	// Isolated replaces a failed source with an empty section. FetchAll
	// fails only when the caller cancels.
	Isolated Policy = iota
	// FailFast aborts the fetch on the first failure and cancels every
	// source still in flight.
	FailFast
)

func (p Policy) String() string {
	switch p {
	case Isolated:
		return "isolated"
	case FailFast:
		return "fail_fast"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a config value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "isolated":
		return Isolated, nil
	case "fail_fast", "fail-fast":
		return FailFast, nil
	default:
		return 0, fmt.Errorf("unknown aggregate policy %q", s)
	}
}

// FaultTiming selects when the fault injector is consulted under FailFast.
type FaultTiming int

const (
	// BeforeLaunch checks for a fault before any source is started.
	BeforeLaunch FaultTiming = iota
	// AfterLaunch starts every source, then checks for a fault before
	// awaiting them; an injected fault cancels the sources in flight.
	AfterLaunch
)

func (t FaultTiming) String() string {
	if t == AfterLaunch {
		return "after_launch"
	}
	return "before_launch"
}

// ParseFaultTiming converts a config value to a FaultTiming.
func ParseFaultTiming(s string) (FaultTiming, error) {
	switch s {
	case "", "before_launch":
		return BeforeLaunch, nil
	case "after_launch":
		return AfterLaunch, nil
	default:
		return 0, fmt.Errorf("unknown fault timing %q", s)
	}
}

// FaultInjector simulates a network failure with a fixed probability.
// A nil *FaultInjector never fires.
type FaultInjector struct {
	rate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFaultInjector creates an injector firing with probability rate
// (clamped to [0, 1]). A nil rng seeds one from the clock.
func NewFaultInjector(rate float64, rng *rand.Rand) *FaultInjector {
	rate = min(max(rate, 0), 1)
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x666175))
	}
	return &FaultInjector{rate: rate, rng: rng}
}

// Rate returns the configured probability.
func (f *FaultInjector) Rate() float64 {
	if f == nil {
		return 0
	}
	return f.rate
}

// Fire reports whether this call should fail.
func (f *FaultInjector) Fire() bool {
	if f == nil || f.rate <= 0 {
		return false
	}
	if f.rate >= 1 {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.Float64() < f.rate
}
