// Package store serializes list commands into one observable state.
//
// A [Store] owns a single goroutine that consumes [Command] values from one
// queue together with the completions of the fetches it started. That
// goroutine is the only writer of the [LoadState] cell, so every observer
// sees the same sequence of snapshots.
//
// # Supersession
//
// Every Load or Refresh that starts a fetch increments a generation and
// cancels the context of the fetch it replaces. A completion carrying an
// older generation is discarded, so the state always reflects the most
// recently issued command rather than the most recently completed one.
//
// # Transient Messages
//
// Clicking an item and a failed refresh publish an event.ShowMessageEvent on
// the bus. Delivery is best-effort: only handlers subscribed at that moment
// receive it. A failed first load is reported through
// LoadState.ErrorMessage instead.
//
// # Basic Usage
//
//	s := store.New(agg, store.WithBus(bus), store.WithLogger(logger))
//	if err := s.Start(ctx); err != nil {
//	    return err
//	}
//	defer s.Stop()
//
//	states, cancel := s.Watch()
//	defer cancel()
//	_ = s.Dispatch(store.Load{})
//	for st := range states {
//	    render(st)
//	}
package store
