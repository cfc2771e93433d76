package msg

import "github.com/Iron-Ham/mosaic/internal/store"

// StateMsg carries a new store snapshot.
type StateMsg struct {
	State store.LoadState
}

// ToastMsg asks the screen to show a transient message.
type ToastMsg struct {
	Text string
}

// ToastExpiredMsg hides the toast with sequence number Seq. A newer toast
// has a higher number and survives the expiry of older ones.
type ToastExpiredMsg struct {
	Seq int
}

// ErrMsg wraps an error to be displayed in the UI.
type ErrMsg struct {
	Err error
}
