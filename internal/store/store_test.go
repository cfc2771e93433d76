package store

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Iron-Ham/mosaic/internal/aggregate"
	mosaicerrors "github.com/Iron-Ham/mosaic/internal/errors"
	"github.com/Iron-Ham/mosaic/internal/event"
	"github.com/Iron-Ham/mosaic/internal/feed"
	"github.com/Iron-Ham/mosaic/internal/logging"
	"github.com/Iron-Ham/mosaic/internal/source"
)

// fakeFetcher answers each FetchAll call with fn(ctx, n) where n counts
// calls from 1.
type fakeFetcher struct {
	calls atomic.Int32
	fn    func(ctx context.Context, n int32) ([]feed.Entry, error)
}

func (f *fakeFetcher) FetchAll(ctx context.Context) ([]feed.Entry, error) {
	return f.fn(ctx, f.calls.Add(1))
}

func listOf(ids ...string) []feed.Entry {
	out := make([]feed.Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, feed.Banner{ID: id, Title: id})
	}
	return out
}

func succeed(ids ...string) func(context.Context, int32) ([]feed.Entry, error) {
	return func(context.Context, int32) ([]feed.Entry, error) { return listOf(ids...), nil }
}

// messages records ShowMessageEvent text.
type messages struct {
	mu   sync.Mutex
	msgs []string
}

func (m *messages) subscribe(bus *event.Bus) {
	bus.Subscribe(event.TypeShowMessage, func(e event.Event) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.msgs = append(m.msgs, e.(event.ShowMessageEvent).Message)
	})
}

func (m *messages) get() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.msgs...)
}

// waitForMessage blocks until want has been published and returns every
// message seen so far.
func waitForMessage(t *testing.T, m *messages, want string) []string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		got := m.get()
		if slices.Contains(got, want) {
			return got
		}
		if time.Now().After(deadline) {
			t.Fatalf("message %q never published; got %v", want, got)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startStore(t *testing.T, f Fetcher, opts ...Option) (*Store, *messages) {
	t.Helper()
	bus := event.NewBus()
	msgs := &messages{}
	msgs.subscribe(bus)

	s := New(f, append([]Option{WithBus(bus)}, opts...)...)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(s.Stop)
	return s, msgs
}

// waitFor blocks until a snapshot satisfying pred is observed.
func waitFor(t *testing.T, s *Store, pred func(LoadState) bool) LoadState {
	t.Helper()
	ch, cancel := s.Watch()
	defer cancel()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				t.Fatal("watch channel closed")
			}
			if pred(st) {
				return st
			}
		case <-timeout:
			t.Fatalf("timed out waiting for state; last = %+v", s.State())
		}
	}
}

func settled(st LoadState) bool { return !st.IsLoading && (len(st.Items) > 0 || st.HasError()) }

func dispatch(t *testing.T, s *Store, cmd Command) {
	t.Helper()
	if err := s.Dispatch(cmd); err != nil {
		t.Fatalf("Dispatch(%T) error = %v", cmd, err)
	}
}

func TestStore_InitialStateIsIdle(t *testing.T) {
	s := New(&fakeFetcher{fn: succeed("a")})
	st := s.State()
	if st.Phase() != PhaseIdle || st.IsLoading || len(st.Items) != 0 || st.HasError() {
		t.Errorf("initial state = %+v", st)
	}
}

func TestStore_LoadScenarioWithSimulatedSources(t *testing.T) {
	agg, err := aggregate.New(source.NewFetchers(source.NewSimulatedTransport(), source.SimulatedBaseURL, 0))
	if err != nil {
		t.Fatalf("aggregate.New() error = %v", err)
	}
	s, msgs := startStore(t, agg)

	dispatch(t, s, Load{})
	st := waitFor(t, s, settled)

	// five headers, thirteen items and the footer
	if len(st.Items) != 19 {
		t.Errorf("len(Items) = %d, want 19", len(st.Items))
	}
	if st.IsLoading || st.HasError() {
		t.Errorf("state = loading %v, error %q", st.IsLoading, st.ErrorMessage)
	}
	if feed.CountKind(st.Items, feed.KindSectionHeader) != 5 || feed.CountKind(st.Items, feed.KindFooter) != 1 {
		t.Error("list should have 5 headers and 1 footer")
	}
	if len(msgs.get()) != 0 {
		t.Errorf("unexpected messages %v", msgs.get())
	}
}

func TestStore_LoadSetsLoadingAndKeepsItems(t *testing.T) {
	release := make(chan struct{})
	f := &fakeFetcher{fn: func(_ context.Context, n int32) ([]feed.Entry, error) {
		if n == 2 {
			<-release
		}
		return listOf("a"), nil
	}}
	s, _ := startStore(t, f)

	dispatch(t, s, Load{})
	waitFor(t, s, settled)

	dispatch(t, s, Refresh{})
	st := waitFor(t, s, func(st LoadState) bool { return st.IsLoading })
	if len(st.Items) != 1 || st.HasError() {
		t.Errorf("loading state = %+v, want items kept and no error", st)
	}
	if st.Phase() != PhaseLoading {
		t.Errorf("Phase() = %v, want loading", st.Phase())
	}
	close(release)
	waitFor(t, s, func(st LoadState) bool { return !st.IsLoading })
}

func TestStore_LoadIsIdempotent(t *testing.T) {
	f := &fakeFetcher{fn: succeed("a", "b")}
	s, msgs := startStore(t, f)

	dispatch(t, s, Load{})
	waitFor(t, s, settled)

	for i := 0; i < 3; i++ {
		dispatch(t, s, Load{})
	}
	// A click is processed after the loads; its message marks that the
	// queue has drained.
	dispatch(t, s, ItemClicked{ID: "a", Label: "a"})
	waitForMessage(t, msgs, "clicked: a")

	if got := f.calls.Load(); got != 1 {
		t.Errorf("FetchAll calls = %d, want 1", got)
	}
}

func TestStore_LoadWhileLoadingIsIgnored(t *testing.T) {
	release := make(chan struct{})
	f := &fakeFetcher{fn: func(context.Context, int32) ([]feed.Entry, error) {
		<-release
		return listOf("a"), nil
	}}
	s, _ := startStore(t, f)

	dispatch(t, s, Load{})
	dispatch(t, s, Load{})
	waitFor(t, s, func(st LoadState) bool { return st.IsLoading })
	close(release)
	waitFor(t, s, settled)

	if got := f.calls.Load(); got != 1 {
		t.Errorf("FetchAll calls = %d, want 1", got)
	}
}

func TestStore_RefreshAlwaysFetches(t *testing.T) {
	f := &fakeFetcher{fn: func(_ context.Context, n int32) ([]feed.Entry, error) {
		if n == 1 {
			return listOf("first"), nil
		}
		return listOf("second"), nil
	}}
	s, _ := startStore(t, f)

	dispatch(t, s, Load{})
	waitFor(t, s, settled)
	dispatch(t, s, Refresh{})
	st := waitFor(t, s, func(st LoadState) bool { return len(st.Items) == 1 && st.Items[0].EntryID() == "second" })

	if st.IsLoading {
		t.Error("IsLoading should be false after refresh")
	}
	if got := f.calls.Load(); got != 2 {
		t.Errorf("FetchAll calls = %d, want 2", got)
	}
}

func TestStore_FirstLoadFailure(t *testing.T) {
	f := &fakeFetcher{fn: func(context.Context, int32) ([]feed.Entry, error) {
		return nil, mosaicerrors.NewAggregateError("", mosaicerrors.ErrInjectedFault)
	}}
	s, msgs := startStore(t, f)

	dispatch(t, s, Load{})
	st := waitFor(t, s, settled)

	if st.ErrorMessage != "simulated network error" {
		t.Errorf("ErrorMessage = %q", st.ErrorMessage)
	}
	if len(st.Items) != 0 || st.Phase() != PhaseError {
		t.Errorf("state = %+v, want empty error state", st)
	}

	dispatch(t, s, ItemClicked{ID: "x", Label: "marker"})
	waitForMessage(t, msgs, "clicked: marker")
	if got := msgs.get(); len(got) != 1 {
		t.Errorf("messages = %v, want only the click marker", got)
	}
}

func TestStore_FailureLogLevelFollowsSeverity(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
	}{
		{"aggregate error", mosaicerrors.NewAggregateError("", mosaicerrors.ErrInjectedFault), `"level":"ERROR"`},
		{"validation error", mosaicerrors.NewValidationError("duplicate id"), `"level":"WARN"`},
		{"plain error", errors.New("boom"), `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs syncBuffer
			logger := logging.NewWithWriter(&logs, logging.LevelDebug)
			f := &fakeFetcher{fn: func(context.Context, int32) ([]feed.Entry, error) {
				return nil, tt.err
			}}
			s, _ := startStore(t, f, WithLogger(logger))

			dispatch(t, s, Load{})
			waitFor(t, s, settled)

			var line string
			for _, l := range strings.Split(logs.String(), "\n") {
				if strings.Contains(l, `"msg":"load failed"`) {
					line = l
				}
			}
			if line == "" {
				t.Fatalf("no load failed entry in logs:\n%s", logs.String())
			}
			if !strings.Contains(line, tt.wantLevel) {
				t.Errorf("log line = %s, want %s", line, tt.wantLevel)
			}
		})
	}
}

func TestStore_RefreshFailureKeepsItems(t *testing.T) {
	f := &fakeFetcher{fn: func(_ context.Context, n int32) ([]feed.Entry, error) {
		if n == 1 {
			return listOf("a", "b"), nil
		}
		return nil, mosaicerrors.NewAggregateError("stats", mosaicerrors.NewStatusError("http://feeds/stats", 503))
	}}
	s, msgs := startStore(t, f)

	dispatch(t, s, Load{})
	waitFor(t, s, settled)
	dispatch(t, s, Refresh{})

	got := waitForMessage(t, msgs, "refresh failed: unexpected status 503 Service Unavailable")
	if len(got) != 1 {
		t.Errorf("messages = %v, want exactly one", got)
	}

	st := waitFor(t, s, func(st LoadState) bool { return !st.IsLoading })
	if len(st.Items) != 2 || st.HasError() {
		t.Errorf("state = %+v, want items kept and no error", st)
	}
}

func TestStore_FailFastKeepsItems(t *testing.T) {
	sim := source.NewSimulatedTransport(source.WithDelays(nil))
	agg, err := aggregate.New(source.NewFetchers(sim, source.SimulatedBaseURL, 0), aggregate.WithPolicy(aggregate.FailFast))
	if err != nil {
		t.Fatal(err)
	}
	s, msgs := startStore(t, agg)

	dispatch(t, s, Load{})
	before := waitFor(t, s, settled)

	sim.Fail(feed.CategoryUsers, errors.New("connection reset"))
	dispatch(t, s, Refresh{})
	waitForMessage(t, msgs, "refresh failed: connection reset")

	after := waitFor(t, s, func(st LoadState) bool { return !st.IsLoading })
	if len(after.Items) != len(before.Items) || after.Items[0] != before.Items[0] {
		t.Error("items changed after a fail-fast refresh failure")
	}
}

func TestStore_SupersededRefreshIsDiscarded(t *testing.T) {
	var logs syncBuffer
	logger := logging.NewWithWriter(&logs, logging.LevelDebug)

	releaseFirst := make(chan struct{})
	firstCanceled := make(chan bool, 1)
	f := &fakeFetcher{fn: func(ctx context.Context, n int32) ([]feed.Entry, error) {
		if n == 1 {
			<-releaseFirst
			firstCanceled <- ctx.Err() != nil
			// Ignore cancellation and return a result anyway.
			return listOf("stale"), nil
		}
		return listOf("fresh"), nil
	}}
	s, _ := startStore(t, f, WithLogger(logger))

	dispatch(t, s, Refresh{})
	waitFor(t, s, func(st LoadState) bool { return st.IsLoading })
	dispatch(t, s, Refresh{})
	waitFor(t, s, func(st LoadState) bool { return len(st.Items) == 1 && st.Items[0].EntryID() == "fresh" })

	close(releaseFirst)
	if !<-firstCanceled {
		t.Error("superseded fetch context should be cancelled")
	}

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(logs.String(), "discarding stale result") {
		if time.Now().After(deadline) {
			t.Fatal("stale result was never discarded")
		}
		time.Sleep(5 * time.Millisecond)
	}

	st := s.State()
	if len(st.Items) != 1 || st.Items[0].EntryID() != "fresh" || st.IsLoading {
		t.Errorf("state = %+v, want only the later refresh", st)
	}
}

func TestStore_ItemClicked(t *testing.T) {
	f := &fakeFetcher{fn: succeed("banner-1")}
	s, msgs := startStore(t, f)

	dispatch(t, s, Load{})
	before := waitFor(t, s, settled)

	dispatch(t, s, ItemClicked{ID: "banner-1", Label: "Kotlin MVI"})
	got := waitForMessage(t, msgs, "clicked: Kotlin MVI")

	if len(got) != 1 {
		t.Errorf("messages = %v, want exactly one", got)
	}
	after := s.State()
	if after.IsLoading != before.IsLoading || len(after.Items) != len(before.Items) || after.ErrorMessage != before.ErrorMessage {
		t.Errorf("state changed on click: %+v -> %+v", before, after)
	}
	if f.calls.Load() != 1 {
		t.Errorf("click should not fetch, calls = %d", f.calls.Load())
	}
}

func TestStore_ItemClickedWithoutSubscriberIsDropped(t *testing.T) {
	bus := event.NewBus()
	s := New(&fakeFetcher{fn: succeed("a")}, WithBus(bus))
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	dispatch(t, s, ItemClicked{ID: "a", Label: "early"})
	dispatch(t, s, Load{})
	waitFor(t, s, settled)

	late := &messages{}
	late.subscribe(bus)
	if len(late.get()) != 0 {
		t.Errorf("late subscriber got %v", late.get())
	}
}

func TestStore_LocalizedMessages(t *testing.T) {
	s, msgs := startStore(t, &fakeFetcher{fn: succeed("a")}, WithMessages(zhMessages{}))
	dispatch(t, s, ItemClicked{ID: "a", Label: "小安"})
	waitForMessage(t, msgs, "点击了：小安")
}

type zhMessages struct{}

func (zhMessages) Clicked(label string) string        { return "点击了：" + label }
func (zhMessages) RefreshFailed(reason string) string { return "刷新失败：" + reason }
func (zhMessages) UnknownError() string               { return "未知错误" }

func TestStore_StopCancelsInFlight(t *testing.T) {
	canceled := make(chan struct{})
	f := &fakeFetcher{fn: func(ctx context.Context, _ int32) ([]feed.Entry, error) {
		<-ctx.Done()
		close(canceled)
		return nil, ctx.Err()
	}}
	s := New(f)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	dispatch(t, s, Load{})
	waitFor(t, s, func(st LoadState) bool { return st.IsLoading })

	s.Stop()
	select {
	case <-canceled:
	default:
		t.Error("Stop should cancel and wait for the in-flight fetch")
	}
	s.Stop()

	if err := s.Dispatch(Refresh{}); !errors.Is(err, mosaicerrors.ErrStoreStopped) {
		t.Errorf("Dispatch() after Stop = %v, want ErrStoreStopped", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, mosaicerrors.ErrStoreStopped) {
		t.Errorf("Start() after Stop = %v, want ErrStoreStopped", err)
	}
}

func TestStore_DispatchAfterStopAlwaysFails(t *testing.T) {
	s := New(&fakeFetcher{fn: succeed("a")})
	s.Stop()

	// The queue has room, so only the stop check can reject these.
	for i := range queueSize * 4 {
		if err := s.Dispatch(Load{}); !errors.Is(err, mosaicerrors.ErrStoreStopped) {
			t.Fatalf("Dispatch() #%d after Stop = %v, want ErrStoreStopped", i, err)
		}
	}
}

func TestStore_DispatchRacingStop(t *testing.T) {
	s, _ := startStore(t, &fakeFetcher{fn: succeed("a")})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				err := s.Dispatch(ItemClicked{ID: "banner-1"})
				if err != nil && !errors.Is(err, mosaicerrors.ErrStoreStopped) {
					t.Errorf("Dispatch() = %v", err)
					return
				}
			}
		}()
	}
	s.Stop()
	if err := s.Dispatch(Refresh{}); !errors.Is(err, mosaicerrors.ErrStoreStopped) {
		t.Errorf("Dispatch() after Stop = %v, want ErrStoreStopped", err)
	}
	wg.Wait()
}

func TestStore_StartTwice(t *testing.T) {
	s, _ := startStore(t, &fakeFetcher{fn: succeed("a")})
	if err := s.Start(context.Background()); !errors.Is(err, mosaicerrors.ErrStoreRunning) {
		t.Errorf("second Start() = %v, want ErrStoreRunning", err)
	}
}

func TestStore_DispatchNil(t *testing.T) {
	s := New(&fakeFetcher{fn: succeed("a")})
	if err := s.Dispatch(nil); !errors.Is(err, mosaicerrors.ErrInvalidInput) {
		t.Errorf("Dispatch(nil) = %v, want ErrInvalidInput", err)
	}
}

func TestPhase(t *testing.T) {
	tests := []struct {
		state LoadState
		want  Phase
	}{
		{LoadState{}, PhaseIdle},
		{LoadState{IsLoading: true}, PhaseLoading},
		{LoadState{IsLoading: true, Items: listOf("a")}, PhaseLoading},
		{LoadState{Items: listOf("a")}, PhaseLoaded},
		{LoadState{ErrorMessage: "boom"}, PhaseError},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := tt.state.Phase(); got != tt.want {
				t.Errorf("Phase() = %v, want %v", got, tt.want)
			}
		})
	}
}
