// Package styles builds the lipgloss styles of the list screen from a color
// palette. Palettes come from the built-in themes or from YAML theme files.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/mosaic/internal/feed"
)

// Styles contains every style the list screen renders with.
type Styles struct {
	Palette Palette

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style

	// Section rows
	Header  lipgloss.Style
	Banner  lipgloss.Style
	Article lipgloss.Style
	User    lipgloss.Style
	Stat    lipgloss.Style
	Value   lipgloss.Style
	Ad      lipgloss.Style
	Footer  lipgloss.Style

	Cursor     lipgloss.Style
	RefreshBar lipgloss.Style
	Toast      lipgloss.Style
	HelpBar    lipgloss.Style
}

// New builds the styles for p.
func New(p Palette) *Styles {
	return &Styles{
		Palette: p,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),
		Muted: lipgloss.NewStyle().Foreground(p.Muted),
		Error: lipgloss.NewStyle().Bold(true).Foreground(p.Error),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.Rule),
		Banner:  lipgloss.NewStyle().Bold(true).Foreground(p.Banner),
		Article: lipgloss.NewStyle().Foreground(p.Article),
		User:    lipgloss.NewStyle().Foreground(p.User),
		Stat:    lipgloss.NewStyle().Foreground(p.Text),
		Value:   lipgloss.NewStyle().Bold(true).Foreground(p.Value),
		Ad:      lipgloss.NewStyle().Italic(true).Foreground(p.Ad),
		Footer:  lipgloss.NewStyle().Foreground(p.Muted).Italic(true),

		Cursor: lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		RefreshBar: lipgloss.NewStyle().
			Foreground(p.Surface).
			Background(p.Warning).
			Padding(0, 1),
		Toast: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Surface).
			Padding(0, 1),
		HelpBar: lipgloss.NewStyle().Foreground(p.Muted),
	}
}

// ForKind returns the style of a row of kind k.
func (s *Styles) ForKind(k feed.Kind) lipgloss.Style {
	switch k {
	case feed.KindSectionHeader:
		return s.Header
	case feed.KindBanner:
		return s.Banner
	case feed.KindArticle:
		return s.Article
	case feed.KindUser:
		return s.User
	case feed.KindStat:
		return s.Stat
	case feed.KindAd:
		return s.Ad
	case feed.KindFooter:
		return s.Footer
	default:
		return s.Muted
	}
}
