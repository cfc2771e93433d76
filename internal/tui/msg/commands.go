package msg

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ExpireToast returns a command that sends ToastExpiredMsg{seq} after d.
func ExpireToast(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ToastExpiredMsg{Seq: seq}
	})
}

// Error returns a command that reports err to the UI. A nil err yields no
// command.
func Error(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return func() tea.Msg { return ErrMsg{Err: err} }
}
