// Package util holds small text helpers shared by the terminal renderers.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks text cut short by the truncation helpers.
const Ellipsis = "…"

// TruncateString shortens plain text to at most width runes, replacing the
// tail with Ellipsis when anything is dropped.
func TruncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + Ellipsis
}

// TruncateANSI shortens styled text to at most width terminal cells. Escape
// sequences are preserved so colors do not bleed into the following line.
func TruncateANSI(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	if width == 1 {
		return ansi.Truncate(s, width, "")
	}
	return ansi.Truncate(s, width, Ellipsis)
}
