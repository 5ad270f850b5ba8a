package textutil

import (
	"strings"
	"unicode/utf8"
)

const (
	hiraganaFirst = 'ぁ'
	hiraganaLast  = 'ゖ'
)

// IsHiragana reports whether r is a hiragana syllable, small forms included.
// Iteration marks and combining sound marks are not syllables and are rejected.
func IsHiragana(r rune) bool {
	return r >= hiraganaFirst && r <= hiraganaLast
}

// IsReadingPunctuation reports whether r may separate parts of a reading.
func IsReadingPunctuation(r rune) bool {
	return r == '・' || r == '、'
}

// IsHiraganaReading reports whether s is non-empty and made of hiragana and reading punctuation only.
func IsHiraganaReading(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsHiragana(r) && !IsReadingPunctuation(r) {
			return false
		}
	}
	return true
}

// RuneLen counts characters rather than bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// NormalizeStringMap trims keys and values, removing entries with empty keys.
func NormalizeStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]string, len(values))
	for key, value := range values {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		result[trimmedKey] = strings.TrimSpace(value)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
