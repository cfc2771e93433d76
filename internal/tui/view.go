package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/mosaic/internal/feed"
	"github.com/Iron-Ham/mosaic/internal/i18n"
	"github.com/Iron-Ham/mosaic/internal/util"
)

// View renders the screen for the current phase.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.tr.T(i18n.KeyTitle)))
	b.WriteString("\n")

	items := m.state.Items
	switch {
	case m.state.IsLoading && len(items) == 0:
		b.WriteString(m.center(m.spinner.View() + " " + m.tr.T(i18n.KeyLoading)))
	case m.state.HasError() && len(items) == 0:
		b.WriteString(m.center(m.errorView()))
	case len(items) == 0:
		b.WriteString(m.center(m.emptyView()))
	default:
		b.WriteString(m.listView())
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) errorView() string {
	return lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Error.Render(m.tr.T(i18n.KeyLoadFailed)),
		m.state.ErrorMessage,
		"",
		m.styles.HelpBar.Render("r: "+m.tr.T(i18n.KeyRetry)),
	)
}

func (m Model) emptyView() string {
	return lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Muted.Render(m.tr.T(i18n.KeyEmpty)),
		"",
		m.styles.HelpBar.Render("r: "+m.tr.T(i18n.KeyLoad)),
	)
}

// center places s in the middle of the area below the title.
func (m Model) center(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	return lipgloss.Place(m.width, max(m.height-chromeHeight+1, 1), lipgloss.Center, lipgloss.Center, s)
}

func (m Model) listView() string {
	var b strings.Builder
	if m.state.IsLoading {
		b.WriteString(m.styles.RefreshBar.Render(m.spinner.View() + " " + m.tr.T(i18n.KeyRefreshing)))
		b.WriteString("\n")
	}

	items := m.state.Items
	start, end := 0, len(items)
	if rows := m.listHeight(); rows > 0 {
		start = m.offset
		end = min(start+rows, len(items))
	}

	for i := start; i < end; i++ {
		prefix := "  "
		if i == m.cursor {
			prefix = m.styles.Cursor.Render("› ")
		}
		row := prefix + m.renderEntry(items[i])
		if m.width > 0 {
			row = util.TruncateANSI(row, m.width)
		}
		b.WriteString(row)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderEntry(e feed.Entry) string {
	s := m.styles.ForKind(e.Kind())
	switch v := e.(type) {
	case feed.SectionHeader:
		return s.Render(v.Title)
	case feed.Banner:
		return s.Render("▌ "+v.Title) + "  " + m.styles.Subtitle.Render(v.Subtitle)
	case feed.Article:
		return s.Render(v.Title) + "  " + m.styles.Muted.Render(v.Summary)
	case feed.User:
		return s.Render("@"+v.Name) + "  " + m.styles.Muted.Render(v.Role)
	case feed.Stat:
		return s.Render(v.Label+": ") + m.styles.Value.Render(v.Value)
	case feed.Ad:
		return s.Render(v.Text)
	case feed.Footer:
		return s.Render("· " + v.Hint + " ·")
	default:
		return s.Render(e.EntryID())
	}
}

func (m Model) statusLine() string {
	if m.toast != "" {
		toast := m.styles.Toast.Render(m.toast)
		if m.width > 0 {
			toast = util.TruncateANSI(toast, m.width)
		}
		return toast
	}
	return m.styles.HelpBar.Render(m.tr.T(i18n.KeyHelp))
}
