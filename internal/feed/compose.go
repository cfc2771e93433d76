package feed

import (
	"fmt"

	"github.com/Iron-Ham/mosaic/internal/errors"
)

// FooterID is the identifier of the closing footer entry.
const FooterID = "footer"

// Labels holds the display text the composer adds around source data.
type Labels struct {
	Titles     map[Category]string
	FooterHint string
}

// DefaultLabels returns the English labels.
func DefaultLabels() Labels {
	return Labels{
		Titles: map[Category]string{
			CategoryBanners:  "Banners",
			CategoryArticles: "Articles",
			CategoryUsers:    "Users",
			CategoryStats:    "Stats",
			CategoryAds:      "Sponsored",
		},
		FooterHint: "End of list",
	}
}

func (l Labels) title(c Category) string {
	if t, ok := l.Titles[c]; ok {
		return t
	}
	return string(c)
}

// Compose builds a fresh composite list: for every category in order a
// header followed by that category's entries, then the footer. Missing
// categories produce an empty section.
func Compose(sections map[Category][]Entry, labels Labels) []Entry {
	n := len(Categories()) + 1
	for _, items := range sections {
		n += len(items)
	}

	out := make([]Entry, 0, n)
	for _, c := range Categories() {
		out = append(out, SectionHeader{ID: c.HeaderID(), Title: labels.title(c), Category: c})
		out = append(out, sections[c]...)
	}
	return append(out, Footer{ID: FooterID, Hint: labels.FooterHint})
}

// Validate checks that list has pairwise unique identifiers and follows the
// section order produced by Compose. An empty list is valid.
func Validate(list []Entry) error {
	if len(list) == 0 {
		return nil
	}

	seen := make(map[string]int, len(list))
	for i, e := range list {
		id := e.EntryID()
		if id == "" {
			return errors.NewValidationError(fmt.Sprintf("entry %d has an empty id", i)).WithField("id")
		}
		if prev, dup := seen[id]; dup {
			return errors.NewValidationError(fmt.Sprintf("duplicate id at positions %d and %d", prev, i)).
				WithField("id").WithValue(id)
		}
		seen[id] = i
	}

	pos := 0
	for _, c := range Categories() {
		if pos >= len(list) {
			return errors.NewValidationError("list ends before section " + string(c))
		}
		h, ok := list[pos].(SectionHeader)
		if !ok || h.ID != c.HeaderID() {
			return errors.NewValidationError(fmt.Sprintf("expected header of %s at position %d", c, pos)).
				WithValue(list[pos].EntryID())
		}
		pos++
		for pos < len(list) && list[pos].Kind() == c.ItemKind() {
			pos++
		}
	}

	if pos == len(list) {
		return errors.NewValidationError("list must end with the footer")
	}
	if pos != len(list)-1 {
		return errors.NewValidationError(fmt.Sprintf("unexpected %s entry at position %d", list[pos].Kind(), pos)).
			WithValue(list[pos].EntryID())
	}
	if list[pos].Kind() != KindFooter {
		return errors.NewValidationError("list must end with the footer").WithValue(list[pos].EntryID())
	}
	return nil
}

// CountKind returns the number of entries of kind k in list.
func CountKind(list []Entry, k Kind) int {
	n := 0
	for _, e := range list {
		if e.Kind() == k {
			n++
		}
	}
	return n
}
