package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEmbeddedHome(t *testing.T) {
	page, err := NewLoader("").Load("home")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if page.Title != "子どもの名前募集" {
		t.Fatalf("unexpected title %q", page.Title)
	}
	if !strings.Contains(string(page.Body), "<strong>漢字一文字</strong>") {
		t.Fatalf("expected rendered markdown, got %s", page.Body)
	}
	if !strings.Contains(string(page.Footer), "子どもの名前募集") {
		t.Fatalf("expected footer, got %s", page.Footer)
	}
}

func TestLoadOverrideDirSanitises(t *testing.T) {
	dir := t.TempDir()
	doc := "---\ntitle: 名前を考えよう\n---\nこんにちは<script>alert(1)</script>\n"
	if err := os.WriteFile(filepath.Join(dir, "home.md"), []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	page, err := NewLoader(dir).Load("home")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if page.Title != "名前を考えよう" {
		t.Fatalf("expected override title, got %q", page.Title)
	}
	if strings.Contains(string(page.Body), "<script>") {
		t.Fatalf("script tag survived sanitising: %s", page.Body)
	}
	if page.Footer != "" {
		t.Fatalf("expected empty footer, got %q", page.Footer)
	}
}

func TestLoadRejectsUnknownAndTraversal(t *testing.T) {
	l := NewLoader(t.TempDir())
	for _, slug := range []string{"", "missing", "../home", "a/b"} {
		if _, err := l.Load(slug); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load(%q) = %v, want ErrNotFound", slug, err)
		}
	}
}

func TestSplitFrontMatterWithoutHeader(t *testing.T) {
	fm, body := splitFrontMatter("本文のみ")
	if fm != "" || body != "本文のみ" {
		t.Fatalf("unexpected split %q %q", fm, body)
	}
}
