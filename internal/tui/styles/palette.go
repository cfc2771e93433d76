package styles

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/mosaic/internal/config"
)

// Palette holds the colors of one theme, named after what they paint.
type Palette struct {
	Accent  lipgloss.Color // title and cursor
	Value   lipgloss.Color // stat values
	Warning lipgloss.Color // refresh bar
	Error   lipgloss.Color
	Muted   lipgloss.Color
	Surface lipgloss.Color // toast background, refresh bar text
	Text    lipgloss.Color
	Rule    lipgloss.Color // section header underline

	Banner  lipgloss.Color
	Article lipgloss.Color
	User    lipgloss.Color
	Ad      lipgloss.Color
}

// DefaultTheme is used when no theme is configured.
const DefaultTheme = "default"

var themeOrder = []string{DefaultTheme, "monokai", "dracula", "nord"}

var builtin = map[string]Palette{
	DefaultTheme: {
		Accent: "#A78BFA", Value: "#10B981", Warning: "#F59E0B", Error: "#F87171",
		Muted: "#9CA3AF", Surface: "#1F2937", Text: "#F9FAFB", Rule: "#6B7280",
		Banner: "#F472B6", Article: "#60A5FA", User: "#A78BFA", Ad: "#FB923C",
	},
	"monokai": {
		Accent: "#F92672", Value: "#A6E22E", Warning: "#E6DB74", Error: "#F92672",
		Muted: "#75715E", Surface: "#272822", Text: "#F8F8F2", Rule: "#49483E",
		Banner: "#F92672", Article: "#66D9EF", User: "#AE81FF", Ad: "#FD971F",
	},
	"dracula": {
		Accent: "#BD93F9", Value: "#50FA7B", Warning: "#F1FA8C", Error: "#FF5555",
		Muted: "#6272A4", Surface: "#282A36", Text: "#F8F8F2", Rule: "#44475A",
		Banner: "#FF79C6", Article: "#8BE9FD", User: "#BD93F9", Ad: "#FFB86C",
	},
	"nord": {
		Accent: "#88C0D0", Value: "#A3BE8C", Warning: "#EBCB8B", Error: "#BF616A",
		Muted: "#4C566A", Surface: "#2E3440", Text: "#ECEFF4", Rule: "#3B4252",
		Banner: "#B48EAD", Article: "#81A1C1", User: "#B48EAD", Ad: "#D08770",
	},
}

// themesDirFn returns the custom themes directory. Overridden in tests.
var themesDirFn = config.ThemesDir

// BuiltinThemes returns the built-in theme names in display order.
func BuiltinThemes() []string { return slices.Clone(themeOrder) }

// Default returns the default palette.
func Default() Palette { return builtin[DefaultTheme] }

// PaletteFor resolves a theme name: built-in themes first, then
// <themes dir>/<name>.yaml. An empty name selects the default theme.
func PaletteFor(name string) (Palette, error) {
	if name == "" {
		return Default(), nil
	}
	if p, ok := builtin[name]; ok {
		return p, nil
	}

	p, err := LoadTheme(filepath.Join(themesDirFn(), name+".yaml"))
	if err != nil {
		return Palette{}, fmt.Errorf("theme %q: %w", name, err)
	}
	return p, nil
}

// slots maps theme file keys onto the palette fields they set.
func (p *Palette) slots() map[string]*lipgloss.Color {
	return map[string]*lipgloss.Color{
		"accent":  &p.Accent,
		"value":   &p.Value,
		"warning": &p.Warning,
		"error":   &p.Error,
		"muted":   &p.Muted,
		"surface": &p.Surface,
		"text":    &p.Text,
		"rule":    &p.Rule,
		"banner":  &p.Banner,
		"article": &p.Article,
		"user":    &p.User,
		"ad":      &p.Ad,
	}
}
