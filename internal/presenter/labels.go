package presenter

import (
	"fmt"
	"strings"

	"github.com/akitas-arrow/child-name/internal/domain"
)

// Tone is the badge colour used for a category.
type Tone string

const (
	ToneBlue   Tone = "blue"
	TonePink   Tone = "pink"
	TonePurple Tone = "purple"
	ToneGray   Tone = "gray"
)

// MeaningPreviewRunes is the length above which a rationale is collapsed behind a toggle.
const MeaningPreviewRunes = 60

// CategoryLabel returns the display label for a gender. Unknown values show their raw text.
func CategoryLabel(g domain.Gender) string {
	switch g.Kind() {
	case domain.GenderMale:
		return "男の子"
	case domain.GenderFemale:
		return "女の子"
	case domain.GenderUnisex:
		return "どちらでも"
	default:
		return g.Raw()
	}
}

// CategoryTone returns the badge colour for a gender.
func CategoryTone(g domain.Gender) Tone {
	switch g.Kind() {
	case domain.GenderMale:
		return ToneBlue
	case domain.GenderFemale:
		return TonePink
	case domain.GenderUnisex:
		return TonePurple
	default:
		return ToneGray
	}
}

// FilterLabel is the select option text for a filter.
func FilterLabel(f domain.Filter) string {
	switch f {
	case domain.FilterMale:
		return "男の子"
	case domain.FilterFemale:
		return "女の子"
	case domain.FilterUnisex:
		return "どちらでも"
	default:
		return "すべて"
	}
}

// SortLabel is the select option text for a sort mode.
func SortLabel(m domain.SortMode) string {
	if m == domain.SortAlphabetical {
		return "あいうえお順"
	}
	return "新しい順"
}

// Heading is the list title including the filtered count.
func Heading(total int) string {
	return fmt.Sprintf("提案された名前一覧 (%d件)", total)
}

// MeaningPreview splits a rationale into the always-visible part and the remainder.
type MeaningPreview struct {
	Full      string
	Short     string
	Collapsed bool
}

// PreviewMeaning prepares a rationale for display.
func PreviewMeaning(meaning string) MeaningPreview {
	meaning = strings.TrimSpace(meaning)
	runes := []rune(meaning)
	if len(runes) <= MeaningPreviewRunes {
		return MeaningPreview{Full: meaning, Short: meaning}
	}
	return MeaningPreview{
		Full:      meaning,
		Short:     string(runes[:MeaningPreviewRunes]) + "…",
		Collapsed: true,
	}
}
