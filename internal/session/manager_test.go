package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time { return c.current }

func newTestManager(t *testing.T) (*Manager, *fixedClock) {
	t.Helper()
	clock := &fixedClock{current: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	mgr, err := NewManager(Config{
		CookieName:  "test_session",
		HashKey:     []byte("12345678901234567890123456789012"),
		BlockKey:    []byte("abcdefghijklmnopqrstuv0123456789"),
		IdleTimeout: 10 * time.Minute,
		Lifetime:    2 * time.Hour,
		Now:         clock.Now,
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return mgr, clock
}

func roundTrip(t *testing.T, mgr *Manager, sess *Session) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestManagerPersistsUserAndFlash(t *testing.T) {
	mgr, _ := newTestManager(t)

	sess, err := mgr.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || sess == nil {
		t.Fatalf("Load error: %v", err)
	}
	anonymousID := sess.ID()
	sess.SetUser(&User{UID: "uid-1", Email: "a@example.com"})
	if sess.ID() == anonymousID {
		t.Fatalf("expected session id rotation on sign-in")
	}
	sess.AddFlash("名前を提案しました。")

	loaded, err := mgr.Load(roundTrip(t, mgr, sess))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if u := loaded.User(); u == nil || u.UID != "uid-1" {
		t.Fatalf("expected user restored, got %+v", u)
	}
	if msg := loaded.PopFlash(); msg != "名前を提案しました。" {
		t.Fatalf("unexpected flash %q", msg)
	}
	if msg := loaded.PopFlash(); msg != "" {
		t.Fatalf("flash must be one-shot")
	}
}

func TestManagerSkipsUntouchedAnonymousSession(t *testing.T) {
	mgr, _ := newTestManager(t)
	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, mgr.New()); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("expected no cookie for an untouched anonymous session")
	}
}

func TestManagerExpiresIdleSessions(t *testing.T) {
	mgr, clock := newTestManager(t)
	sess := mgr.New()
	sess.SetUser(&User{UID: "uid-1"})
	req := roundTrip(t, mgr, sess)

	clock.current = clock.current.Add(11 * time.Minute)
	if _, err := mgr.Load(req); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestManagerIgnoresTamperedCookie(t *testing.T) {
	mgr, _ := newTestManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "garbage"})
	sess, err := mgr.Load(req)
	if err != nil || sess.User() != nil {
		t.Fatalf("expected fresh anonymous session, got %+v err=%v", sess, err)
	}
}

func TestManagerDestroyClearsCookie(t *testing.T) {
	mgr, _ := newTestManager(t)
	sess := mgr.New()
	sess.Destroy()
	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expiring cookie, got %+v", cookies)
	}
}

func TestNewManagerValidatesKeys(t *testing.T) {
	if _, err := NewManager(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config for missing hash key, got %v", err)
	}
	if _, err := NewManager(Config{HashKey: []byte("k"), BlockKey: []byte("short")}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config for bad block key, got %v", err)
	}
}
