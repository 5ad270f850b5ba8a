package domain

import "strings"

// Filter selects which gender category the list shows.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterMale   Filter = "male"
	FilterFemale Filter = "female"
	FilterUnisex Filter = "unisex"
)

// Filters lists the filter options in display order.
var Filters = []Filter{FilterAll, FilterMale, FilterFemale, FilterUnisex}

// ParseFilter returns FilterAll for empty or unrecognised input.
func ParseFilter(raw string) Filter {
	switch f := Filter(strings.ToLower(strings.TrimSpace(raw))); f {
	case FilterMale, FilterFemale, FilterUnisex:
		return f
	default:
		return FilterAll
	}
}

// Matches reports whether the gender passes the filter. Unknown genders only pass FilterAll.
func (f Filter) Matches(g Gender) bool {
	switch f {
	case FilterAll:
		return true
	case FilterMale:
		return g.Kind() == GenderMale
	case FilterFemale:
		return g.Kind() == GenderFemale
	case FilterUnisex:
		return g.Kind() == GenderUnisex
	default:
		return false
	}
}

// SortMode controls list ordering.
type SortMode string

const (
	// SortNewest keeps the store order, which is newest first.
	SortNewest SortMode = "newest"
	// SortAlphabetical orders by reading in Japanese collation and groups by hiragana row.
	SortAlphabetical SortMode = "alphabetical"
)

// SortModes lists the sort options in display order.
var SortModes = []SortMode{SortNewest, SortAlphabetical}

// ParseSortMode returns SortNewest for empty or unrecognised input.
func ParseSortMode(raw string) SortMode {
	if SortMode(strings.ToLower(strings.TrimSpace(raw))) == SortAlphabetical {
		return SortAlphabetical
	}
	return SortNewest
}
