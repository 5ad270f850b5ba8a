package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	defaultCookieName  = "childname_session"
	defaultCookiePath  = "/"
	defaultLifetime    = 24 * time.Hour
	defaultIdleTimeout = 30 * time.Minute
)

// ErrExpired indicates the stored session is no longer valid due to idle or absolute expiry.
var ErrExpired = errors.New("session expired")

// ErrInvalidConfig indicates the manager was initialised with missing or invalid options.
var ErrInvalidConfig = errors.New("session: invalid config")

// User is the signed-in member.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// Data is the persisted cookie payload.
type Data struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
	ExpiresAt  time.Time `json:"expiresAt,omitempty"`
	User       *User     `json:"user,omitempty"`
	Flash      string    `json:"flash,omitempty"`
}

// Session holds mutable state for the current request.
type Session struct {
	data      Data
	dirty     bool
	destroyed bool
}

// Config controls cookie encoding and lifecycle limits.
type Config struct {
	CookieName   string
	HashKey      []byte
	BlockKey     []byte
	CookiePath   string
	CookieSecure bool
	IdleTimeout  time.Duration
	Lifetime     time.Duration
	Now          func() time.Time
}

// Manager decodes and persists sessions in signed, optionally encrypted, cookies.
type Manager struct {
	cfg   Config
	codec *securecookie.SecureCookie
	now   func() time.Time
}

// NewManager constructs a Manager using the provided configuration.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	switch len(cfg.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: block key must be 16, 24 or 32 bytes", ErrInvalidConfig)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = defaultCookiePath
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = defaultLifetime
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	var block []byte
	if len(cfg.BlockKey) > 0 {
		block = cfg.BlockKey
	}
	codec := securecookie.New(cfg.HashKey, block)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.Lifetime.Seconds()))

	return &Manager{cfg: cfg, codec: codec, now: now}, nil
}

// Load returns the request's session. Missing or tampered cookies yield a fresh session;
// an expired one yields ErrExpired.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return m.New(), nil
	}
	var stored Data
	if err := m.codec.Decode(m.cfg.CookieName, cookie.Value, &stored); err != nil {
		return m.New(), nil
	}
	if stored.ID == "" {
		return m.New(), nil
	}
	sess := &Session{data: stored}
	if m.expired(sess, m.now()) {
		return nil, ErrExpired
	}
	return sess, nil
}

// New returns a pristine session.
func (m *Manager) New() *Session {
	now := m.now().UTC()
	return &Session{
		data: Data{
			ID:         mustGenerateToken(32),
			CreatedAt:  now,
			LastActive: now,
			ExpiresAt:  now.Add(m.cfg.Lifetime),
		},
	}
}

// Save writes the session cookie. Untouched anonymous sessions are not written; destroyed
// sessions clear the cookie.
func (m *Manager) Save(w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return errors.New("session: nil session")
	}
	if sess.destroyed {
		m.Destroy(w)
		return nil
	}
	if sess.data.User == nil && !sess.dirty {
		return nil
	}

	sess.Touch(m.now())
	encoded, err := m.codec.Encode(m.cfg.CookieName, sess.data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	cookie := &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Path:     m.cfg.CookiePath,
		Secure:   m.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.data.ExpiresAt,
	}
	if remaining := sess.data.ExpiresAt.Sub(m.now()); remaining > 0 {
		cookie.MaxAge = int(remaining.Round(time.Second).Seconds())
	} else {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
	sess.dirty = false
	return nil
}

// Destroy clears the session cookie immediately.
func (m *Manager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     m.cfg.CookiePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) expired(sess *Session, now time.Time) bool {
	now = now.UTC()
	if !sess.data.ExpiresAt.IsZero() && now.After(sess.data.ExpiresAt) {
		return true
	}
	last := sess.data.LastActive
	if last.IsZero() {
		last = sess.data.CreatedAt
	}
	return !last.IsZero() && now.Sub(last) > m.cfg.IdleTimeout
}

// ID returns the stable session identifier.
func (s *Session) ID() string { return s.data.ID }

// ExpiresAt returns the absolute expiry.
func (s *Session) ExpiresAt() time.Time { return s.data.ExpiresAt }

// LastActive returns the last access timestamp.
func (s *Session) LastActive() time.Time { return s.data.LastActive }

// User returns the signed-in member, if any.
func (s *Session) User() *User {
	if s.data.User == nil {
		return nil
	}
	u := *s.data.User
	return &u
}

// SetUser replaces the signed-in member. Signing in rotates the session ID.
func (s *Session) SetUser(user *User) {
	if user == nil {
		if s.data.User != nil {
			s.data.User = nil
			s.dirty = true
		}
		return
	}
	u := *user
	s.data.User = &u
	s.data.ID = mustGenerateToken(32)
	s.dirty = true
}

// AddFlash stores a one-shot notice for the next page view.
func (s *Session) AddFlash(message string) {
	s.data.Flash = message
	s.dirty = true
}

// PopFlash returns and clears the pending notice.
func (s *Session) PopFlash() string {
	msg := s.data.Flash
	if msg != "" {
		s.data.Flash = ""
		s.dirty = true
	}
	return msg
}

// Destroy marks the session for deletion.
func (s *Session) Destroy() {
	s.destroyed = true
	s.dirty = true
}

// Destroyed exposes the destroy marker.
func (s *Session) Destroyed() bool { return s.destroyed }

// Dirty reports whether the session changed during this request.
func (s *Session) Dirty() bool { return s.dirty }

// Touch updates the last active timestamp.
func (s *Session) Touch(now time.Time) {
	now = now.UTC()
	if now.After(s.data.LastActive) {
		s.data.LastActive = now
	}
}

func mustGenerateToken(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Errorf("generate token: %w", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
