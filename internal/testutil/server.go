package testutil

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/akitas-arrow/child-name/internal/httpserver"
	"github.com/akitas-arrow/child-name/internal/platform/submitguard"
	"github.com/akitas-arrow/child-name/internal/repositories/memory"
	"github.com/akitas-arrow/child-name/internal/services"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithAuthenticator enables the login surface.
func WithAuthenticator(auth httpserver.Authenticator, required bool) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Authenticator = auth
		cfg.AuthRequired = required
	}
}

// WithSuggestionService replaces the memory-backed service.
func WithSuggestionService(svc services.SuggestionService) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Suggestions = svc
	}
}

// NewStore returns a memory store seeded with the demo submitters.
func NewStore() *memory.Store {
	return memory.NewStore(memory.DemoSubmitters()...)
}

// NewServer runs the HTTP stack against store, defaulting to a fresh memory store.
func NewServer(t testing.TB, store *memory.Store, opts ...ServerOption) *httptest.Server {
	t.Helper()
	if store == nil {
		store = NewStore()
	}

	svc, err := services.NewSuggestionService(services.SuggestionServiceDeps{
		Suggestions: store.Suggestions(),
		Submitters:  store.Submitters(),
		Guard:       submitguard.NewMemoryStore(),
	})
	require.NoError(t, err)

	cfg := httpserver.Config{
		Suggestions: svc,
		Store:       store.Health(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv := httpserver.New(cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

// NewClient returns a client with a cookie jar that does not follow redirects.
func NewClient(t testing.TB) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Get fetches path and parses the HTML body.
func Get(t testing.TB, client *http.Client, base, path string) (*http.Response, *goquery.Document) {
	t.Helper()
	resp, err := client.Get(base + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp, ParseHTML(t, resp.Body)
}

// PostForm submits values to path and parses the HTML body.
func PostForm(t testing.TB, client *http.Client, base, path string, values url.Values, header http.Header) (*http.Response, *goquery.Document) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, base+path, strings.NewReader(values.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp, ParseHTML(t, resp.Body)
}
