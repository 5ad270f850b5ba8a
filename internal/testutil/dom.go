package testutil

import (
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

// ParseHTML reads a rendered page into a goquery document.
func ParseHTML(t testing.TB, body io.Reader) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(body)
	require.NoError(t, err, "parse html")
	return doc
}

// Texts returns the trimmed text of every element matching selector, in document order.
func Texts(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

// FormValues collects the named inputs of the form matched by selector. Unchecked radios and
// checkboxes are skipped, as a browser would.
func FormValues(doc *goquery.Document, selector string) url.Values {
	values := url.Values{}
	doc.Find(selector).Find("input[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		value, _ := s.Attr("value")
		if typ, _ := s.Attr("type"); typ == "radio" || typ == "checkbox" {
			if _, checked := s.Attr("checked"); !checked {
				return
			}
		}
		values.Set(name, value)
	})
	return values
}
