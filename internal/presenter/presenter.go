// Package presenter turns the stored suggestion list into the view shown on the page.
// Every function here is pure: inputs are never mutated and nothing is cached between calls.
package presenter

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/akitas-arrow/child-name/internal/domain"
)

const (
	emptyAllMessage      = "名前がまだ提案されていません。"
	emptyCategoryMessage = "この性別の名前がありません。"
)

// Item is a single card in the list.
type Item struct {
	Suggestion domain.NameSuggestion
	Label      string
	Tone       Tone
	Meaning    MeaningPreview
}

// Group is one hiragana row section in alphabetical mode.
type Group struct {
	Label    string
	Heading  string
	AnchorID string
	Items    []Item
}

// Anchor is a navigation button for a hiragana row.
type Anchor struct {
	Label    string
	AnchorID string
	Active   bool
}

// View is the complete derived state for one render.
type View struct {
	Filter       domain.Filter
	Sort         domain.SortMode
	Flat         []Item
	Groups       []Group
	Anchors      []Anchor
	Total        int
	Empty        bool
	EmptyMessage string
}

// Grouped reports whether the view is sectioned by hiragana row.
func (v View) Grouped() bool {
	return v.Sort == domain.SortAlphabetical
}

// ShowNavigation reports whether the row navigation bar should render.
func (v View) ShowNavigation() bool {
	return v.Grouped() && !v.Empty
}

// ScrollTarget resolves a row label to its element id. Inactive or unknown rows are a
// no-op and report false.
func (v View) ScrollTarget(label string) (string, bool) {
	for _, a := range v.Anchors {
		if a.Label == label {
			if !a.Active {
				return "", false
			}
			return a.AnchorID, true
		}
	}
	return "", false
}

// Present filters, sorts and groups names for the given selection.
func Present(names []domain.NameSuggestion, filter domain.Filter, mode domain.SortMode) View {
	sorted := Sort(Filter(names, filter), mode)

	view := View{
		Filter: filter,
		Sort:   mode,
		Total:  len(sorted),
		Empty:  len(sorted) == 0,
	}
	if view.Empty {
		view.EmptyMessage = emptyMessage(filter)
	}

	if mode != domain.SortAlphabetical {
		view.Flat = make([]Item, 0, len(sorted))
		for _, n := range sorted {
			view.Flat = append(view.Flat, newItem(n))
		}
		return view
	}

	buckets := make([][]Item, len(rows)+1)
	for _, n := range sorted {
		i := rowIndex(n.Reading)
		buckets[i] = append(buckets[i], newItem(n))
	}

	view.Anchors = make([]Anchor, 0, len(rows))
	for i, r := range rows {
		view.Anchors = append(view.Anchors, Anchor{
			Label:    r.label,
			AnchorID: anchorID(r.slug),
			Active:   len(buckets[i]) > 0,
		})
		if len(buckets[i]) == 0 {
			continue
		}
		view.Groups = append(view.Groups, Group{
			Label:    r.label,
			Heading:  r.label + "行",
			AnchorID: anchorID(r.slug),
			Items:    buckets[i],
		})
	}
	if other := buckets[len(rows)]; len(other) > 0 {
		view.Groups = append(view.Groups, Group{
			Label:    OtherGroupLabel,
			Heading:  OtherGroupLabel,
			AnchorID: anchorID(otherSlug),
			Items:    other,
		})
	}
	return view
}

func emptyMessage(filter domain.Filter) string {
	if filter == domain.FilterAll {
		return emptyAllMessage
	}
	return emptyCategoryMessage
}

func newItem(n domain.NameSuggestion) Item {
	return Item{
		Suggestion: n,
		Label:      CategoryLabel(n.Gender),
		Tone:       CategoryTone(n.Gender),
		Meaning:    PreviewMeaning(n.Meaning),
	}
}

// Filter keeps the suggestions whose gender matches, preserving input order.
func Filter(names []domain.NameSuggestion, filter domain.Filter) []domain.NameSuggestion {
	out := make([]domain.NameSuggestion, 0, len(names))
	for _, n := range names {
		if filter.Matches(n.Gender) {
			out = append(out, n)
		}
	}
	return out
}

// Sort returns a sorted copy. Newest keeps the incoming order; alphabetical is a stable sort
// by reading using Japanese collation.
func Sort(names []domain.NameSuggestion, mode domain.SortMode) []domain.NameSuggestion {
	out := make([]domain.NameSuggestion, len(names))
	copy(out, names)
	if mode != domain.SortAlphabetical {
		return out
	}
	c := newCollator()
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i].Reading, out[j].Reading) < 0
	})
	return out
}

// SortSubmitters returns the submitters ordered by kana name, falling back to the display name.
func SortSubmitters(submitters []domain.Submitter) []domain.Submitter {
	out := make([]domain.Submitter, len(submitters))
	copy(out, submitters)
	c := newCollator()
	key := func(s domain.Submitter) string {
		if s.KanaName != "" {
			return s.KanaName
		}
		return s.Name
	}
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(key(out[i]), key(out[j])) < 0
	})
	return out
}

// collate.Collator keeps scratch buffers, so each call gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.Japanese)
}
