package textutil

import "testing"

func TestIsHiraganaReading(t *testing.T) {
	cases := map[string]bool{
		"こころ":    true,
		"ゆう・き":   true,
		"あ、い":    true,
		"ちゃん":    true,
		"kokoro": false,
		"ココロ":    false,
		"こ ころ":   false,
		"ゝ":      false,
		"":       false,
	}
	for in, want := range cases {
		if got := IsHiraganaReading(in); got != want {
			t.Errorf("IsHiraganaReading(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRuneLen(t *testing.T) {
	if RuneLen("心") != 1 {
		t.Fatalf("expected kanji to count as one character")
	}
	if RuneLen("𠮷") != 1 {
		t.Fatalf("expected supplementary kanji to count as one character")
	}
}

func TestNormalizeStringMap(t *testing.T) {
	got := NormalizeStringMap(map[string]string{" KEY ": " v ", " ": "x"})
	if len(got) != 1 || got["KEY"] != "v" {
		t.Fatalf("unexpected map %#v", got)
	}
	if NormalizeStringMap(nil) != nil {
		t.Fatalf("expected nil for empty input")
	}
}
