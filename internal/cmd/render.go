package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Iron-Ham/mosaic/internal/feed"
)

// formatEntry renders one row as plain text.
func formatEntry(e feed.Entry) string {
	switch v := e.(type) {
	case feed.SectionHeader:
		return "== " + v.Title + " =="
	case feed.Banner:
		return fmt.Sprintf("  [banner] %s: %s", v.Title, v.Subtitle)
	case feed.Article:
		return fmt.Sprintf("  [article] %s: %s", v.Title, v.Summary)
	case feed.User:
		return fmt.Sprintf("  [user] @%s (%s)", v.Name, v.Role)
	case feed.Stat:
		return fmt.Sprintf("  [stat] %s: %s", v.Label, v.Value)
	case feed.Ad:
		return "  [ad] " + v.Text
	case feed.Footer:
		return "-- " + v.Hint + " --"
	default:
		return "  " + e.EntryID()
	}
}

func writeText(w io.Writer, list []feed.Entry) error {
	for _, e := range list {
		if _, err := fmt.Fprintln(w, formatEntry(e)); err != nil {
			return err
		}
	}
	return nil
}

// jsonEntry tags each row with its kind so variants stay distinguishable.
type jsonEntry struct {
	Kind  string     `json:"kind"`
	Entry feed.Entry `json:"entry"`
}

func writeJSON(w io.Writer, list []feed.Entry) error {
	out := make([]jsonEntry, 0, len(list))
	for _, e := range list {
		out = append(out, jsonEntry{Kind: e.Kind().String(), Entry: e})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
