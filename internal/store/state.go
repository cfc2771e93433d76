package store

import "github.com/Iron-Ham/mosaic/internal/feed"

// LoadState is the single observable snapshot of the list screen. Values
// published by the Store are never mutated afterwards.
type LoadState struct {
	IsLoading bool
	Items     []feed.Entry
	// ErrorMessage is the reason the first load failed; empty means no error.
	ErrorMessage string
}

// HasError reports whether an inline error should be shown.
func (s LoadState) HasError() bool { return s.ErrorMessage != "" }

// Phase classifies a LoadState.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Phase returns the screen phase: Loading while a fetch is in flight,
// Loaded once items exist, Error when the first load failed, else Idle.
func (s LoadState) Phase() Phase {
	switch {
	case s.IsLoading:
		return PhaseLoading
	case len(s.Items) > 0:
		return PhaseLoaded
	case s.HasError():
		return PhaseError
	default:
		return PhaseIdle
	}
}

// Command is an input to the Store.
type Command interface {
	command()
}

// Load fetches the list unless it is already present or being fetched.
type Load struct{}

// Refresh always starts a new fetch, superseding one in flight.
type Refresh struct{}

// ItemClicked reports activation of a list row.
type ItemClicked struct {
	ID    string
	Label string
}

func (Load) command()        {}
func (Refresh) command()     {}
func (ItemClicked) command() {}
