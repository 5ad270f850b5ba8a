// Package content loads the page copy shown around the form and the list.
package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed pages/*.md
var embedded embed.FS

const defaultTitle = "子どもの名前募集"

// Page is rendered copy for one screen.
type Page struct {
	Slug        string
	Title       string
	Description string
	Body        template.HTML
	Footer      template.HTML
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Footer      string `yaml:"footer"`
}

// ErrNotFound is returned when no document exists for a slug.
var ErrNotFound = errors.New("content: page not found")

// Loader reads markdown documents, preferring an override directory over the embedded copy.
type Loader struct {
	dir    string
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewLoader returns a Loader. An empty dir uses only the embedded pages.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:    strings.TrimSpace(dir),
		md:     goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough)),
		policy: bluemonday.UGCPolicy(),
	}
}

// Load reads and renders the page with the given slug.
func (l *Loader) Load(slug string) (Page, error) {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsRune(slug, '/') {
		return Page{}, ErrNotFound
	}

	data, err := l.read(slug + ".md")
	if err != nil {
		return Page{}, err
	}

	fm, body := splitFrontMatter(string(data))
	var front frontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("content: parse front matter %s: %w", slug, err)
		}
	}

	page := Page{
		Slug:        slug,
		Title:       strings.TrimSpace(front.Title),
		Description: strings.TrimSpace(front.Description),
	}
	if page.Title == "" {
		page.Title = defaultTitle
	}
	if page.Body, err = l.render(body); err != nil {
		return Page{}, err
	}
	if page.Footer, err = l.render(front.Footer); err != nil {
		return Page{}, err
	}
	return page, nil
}

func (l *Loader) read(name string) ([]byte, error) {
	if l.dir != "" {
		data, err := os.ReadFile(filepath.Join(l.dir, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("content: read %s: %w", name, err)
		}
	}
	data, err := embedded.ReadFile("pages/" + name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (l *Loader) render(source string) (template.HTML, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := l.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("content: render markdown: %w", err)
	}
	return template.HTML(l.policy.SanitizeBytes(buf.Bytes())), nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\r\n")
		}
	}
	return "", input
}
