package domain

import "testing"

func TestParseGender(t *testing.T) {
	cases := []struct {
		raw   string
		kind  GenderKind
		known bool
	}{
		{"male", GenderMale, true},
		{"female", GenderFemale, true},
		{" unisex ", GenderUnisex, true},
		{"other", GenderUnknown, false},
		{"", GenderUnknown, false},
	}
	for _, tc := range cases {
		g := ParseGender(tc.raw)
		if g.Kind() != tc.kind || g.Known() != tc.known {
			t.Errorf("ParseGender(%q) = %v/%v, want %v/%v", tc.raw, g.Kind(), g.Known(), tc.kind, tc.known)
		}
	}
	if got := ParseGender("other").Raw(); got != "other" {
		t.Fatalf("expected raw value to be preserved, got %q", got)
	}
}

func TestFilterMatches(t *testing.T) {
	unknown := ParseGender("robot")
	if !FilterAll.Matches(unknown) {
		t.Fatalf("expected all filter to include unknown gender")
	}
	for _, f := range []Filter{FilterMale, FilterFemale, FilterUnisex} {
		if f.Matches(unknown) {
			t.Fatalf("expected %s filter to exclude unknown gender", f)
		}
	}
	if !FilterFemale.Matches(Female) || FilterFemale.Matches(Male) {
		t.Fatalf("female filter mismatch")
	}
}

func TestParseFilterAndSort(t *testing.T) {
	if ParseFilter("MALE") != FilterMale {
		t.Fatalf("expected case-insensitive filter parse")
	}
	if ParseFilter("bogus") != FilterAll {
		t.Fatalf("expected unknown filter to fall back to all")
	}
	if ParseSortMode("alphabetical") != SortAlphabetical {
		t.Fatalf("expected alphabetical sort")
	}
	if ParseSortMode("") != SortNewest {
		t.Fatalf("expected default sort newest")
	}
}
