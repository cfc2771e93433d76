// Package tui renders the composite list screen with Bubbletea.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/mosaic/internal/feed"
	"github.com/Iron-Ham/mosaic/internal/i18n"
	"github.com/Iron-Ham/mosaic/internal/logging"
	"github.com/Iron-Ham/mosaic/internal/store"
	"github.com/Iron-Ham/mosaic/internal/tui/msg"
	"github.com/Iron-Ham/mosaic/internal/tui/styles"
)

// DefaultToastDuration is how long a toast stays visible.
const DefaultToastDuration = 3 * time.Second

// Dispatcher accepts store commands. *store.Store satisfies it.
type Dispatcher interface {
	Dispatch(cmd store.Command) error
}

// Model is the Bubbletea model of the list screen. It renders the latest
// store snapshot and turns key presses into store commands.
type Model struct {
	dispatcher Dispatcher
	tr         *i18n.Translator
	styles     *styles.Styles
	keys       keyMap
	toastTTL   time.Duration
	logger     *logging.Logger

	state    store.LoadState
	cursor   int
	offset   int
	width    int
	height   int
	spinner  spinner.Model
	toast    string
	toastSeq int
	quitting bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithTranslator sets the locale of the screen labels.
func WithTranslator(tr *i18n.Translator) ModelOption {
	return func(m *Model) {
		if tr != nil {
			m.tr = tr
		}
	}
}

// WithStyles sets the styles.
func WithStyles(s *styles.Styles) ModelOption {
	return func(m *Model) {
		if s != nil {
			m.styles = s
		}
	}
}

// WithToastDuration sets how long toasts stay visible.
func WithToastDuration(d time.Duration) ModelOption {
	return func(m *Model) {
		if d > 0 {
			m.toastTTL = d
		}
	}
}

// WithModelLogger sets the logger.
func WithModelLogger(l *logging.Logger) ModelOption {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewModel creates a Model that sends commands to d.
func NewModel(d Dispatcher, opts ...ModelOption) Model {
	m := Model{
		dispatcher: d,
		tr:         i18n.New("en"),
		styles:     styles.New(styles.Default()),
		keys:       defaultKeyMap(),
		toastTTL:   DefaultToastDuration,
		logger:     logging.NopLogger(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.spinner.Style = m.styles.Cursor
	m.logger = m.logger.WithComponent("tui")
	return m
}

// Init starts the spinner and requests the initial load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m Model) loadCmd() tea.Cmd {
	d := m.dispatcher
	return func() tea.Msg {
		if err := d.Dispatch(store.Load{}); err != nil {
			return msg.ErrMsg{Err: err}
		}
		return nil
	}
}

// Update handles a message.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = message.Width, message.Height
		m.ensureVisible()
		return m, nil

	case msg.StateMsg:
		m.state = message.State
		m.clampCursor()
		return m, nil

	case msg.ToastMsg:
		return m.showToast(message.Text)

	case msg.ToastExpiredMsg:
		if message.Seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case msg.ErrMsg:
		m.logger.Warn("command failed", "error", message.Err)
		return m.showToast(message.Err.Error())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(message)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(message)
	}
	return m, nil
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(k, m.keys.Refresh):
		return m, m.dispatch(store.Refresh{})

	case key.Matches(k, m.keys.Open):
		if m.cursor < len(m.state.Items) {
			e := m.state.Items[m.cursor]
			if label, ok := feed.ClickLabel(e); ok {
				return m, m.dispatch(store.ItemClicked{ID: e.EntryID(), Label: label})
			}
		}
		return m, nil

	case key.Matches(k, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(k, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(k, m.keys.Top):
		m.cursor = 0
		m.ensureVisible()
	case key.Matches(k, m.keys.Bottom):
		m.cursor = max(len(m.state.Items)-1, 0)
		m.ensureVisible()
	}
	return m, nil
}

// dispatch sends cmd to the store right away so that key presses keep their
// order.
func (m Model) dispatch(cmd store.Command) tea.Cmd {
	return msg.Error(m.dispatcher.Dispatch(cmd))
}

func (m Model) showToast(text string) (tea.Model, tea.Cmd) {
	m.toastSeq++
	m.toast = text
	return m, msg.ExpireToast(m.toastSeq, m.toastTTL)
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.state.Items)
	m.cursor = min(max(m.cursor, 0), max(n-1, 0))
	m.ensureVisible()
}

// ensureVisible scrolls so the cursor row is inside the list viewport.
func (m *Model) ensureVisible() {
	rows := m.listHeight()
	if rows <= 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = min(max(m.offset, 0), max(len(m.state.Items)-rows, 0))
}

// chromeHeight counts the title, refresh bar and status lines around the
// list.
const chromeHeight = 5

// listHeight is the number of list rows that fit, or 0 before the first
// window size is known.
func (m Model) listHeight() int {
	if m.height == 0 {
		return 0
	}
	return max(m.height-chromeHeight, 1)
}

// State returns the snapshot being rendered.
func (m Model) State() store.LoadState { return m.state }

// Cursor returns the index of the selected row.
func (m Model) Cursor() int { return m.cursor }
