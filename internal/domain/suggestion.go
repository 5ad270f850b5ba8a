package domain

import (
	"strings"
	"time"
)

// GenderKind enumerates the categories a name suggestion can be proposed for.
type GenderKind int

const (
	// GenderUnknown marks a stored value outside the closed set. The raw text is preserved.
	GenderUnknown GenderKind = iota
	// GenderMale suggests the name for a boy.
	GenderMale
	// GenderFemale suggests the name for a girl.
	GenderFemale
	// GenderUnisex suggests the name regardless of gender.
	GenderUnisex
)

const (
	genderMaleValue   = "male"
	genderFemaleValue = "female"
	genderUnisexValue = "unisex"
)

// Gender is the category attached to a suggestion. Values read back from storage are
// parsed through ParseGender so that unrecognised text survives as GenderUnknown.
type Gender struct {
	kind GenderKind
	raw  string
}

var (
	Male   = Gender{kind: GenderMale, raw: genderMaleValue}
	Female = Gender{kind: GenderFemale, raw: genderFemaleValue}
	Unisex = Gender{kind: GenderUnisex, raw: genderUnisexValue}
)

// ParseGender maps stored text onto the tagged gender variant.
func ParseGender(raw string) Gender {
	switch strings.TrimSpace(raw) {
	case genderMaleValue:
		return Male
	case genderFemaleValue:
		return Female
	case genderUnisexValue:
		return Unisex
	default:
		return Gender{kind: GenderUnknown, raw: raw}
	}
}

// Kind reports which variant the gender holds.
func (g Gender) Kind() GenderKind { return g.kind }

// Raw returns the stored representation.
func (g Gender) Raw() string { return g.raw }

// Known reports whether the value belongs to the closed set.
func (g Gender) Known() bool { return g.kind != GenderUnknown }

func (g Gender) String() string { return g.raw }

// NameSuggestion is a single proposed name. Records are immutable once stored.
type NameSuggestion struct {
	ID          string
	Name        string
	Reading     string
	Gender      Gender
	Meaning     string
	SubmitterID string
	CreatedAt   time.Time
}

// Submitter is the person credited with a suggestion.
type Submitter struct {
	ID       string
	Name     string
	KanaName string
}
