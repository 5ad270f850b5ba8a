package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/akitas-arrow/child-name/internal/platform/requestctx"
	appsession "github.com/akitas-arrow/child-name/internal/session"
)

type sessionContextKey string

const requestSessionKey sessionContextKey = "childname.session"

// SessionStore abstracts the session manager for middleware integration.
type SessionStore interface {
	Load(*http.Request) (*appsession.Session, error)
	New() *appsession.Session
	Save(http.ResponseWriter, *appsession.Session) error
	Destroy(http.ResponseWriter)
}

// Session attaches the decoded session to the request context. Changes are written back
// before the first byte of the response so redirects carry the updated cookie.
func Session(store SessionStore) func(http.Handler) http.Handler {
	if store == nil {
		panic("session store is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := requestctx.Logger(r.Context())
			sess, err := store.Load(r)
			switch {
			case errors.Is(err, appsession.ErrExpired):
				logger.Debug("session expired; resetting")
				store.Destroy(w)
				sess = store.New()
			case err != nil || sess == nil:
				if err != nil {
					logger.Warn("session load failed", zap.Error(err))
				}
				sess = store.New()
			}

			ctx := context.WithValue(r.Context(), requestSessionKey, sess)
			if user := sess.User(); user != nil {
				ctx = requestctx.WithUserID(ctx, user.UID)
			}

			sw := &sessionWriter{ResponseWriter: w}
			sw.commit = func() {
				if err := store.Save(w, sess); err != nil {
					logger.Warn("session save failed", zap.Error(err))
				}
			}
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.flush()
		})
	}
}

// SessionFromContext retrieves the session attached to this request.
func SessionFromContext(ctx context.Context) (*appsession.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(requestSessionKey).(*appsession.Session)
	return sess, ok && sess != nil
}

type sessionWriter struct {
	http.ResponseWriter
	commit    func()
	committed bool
}

func (w *sessionWriter) flush() {
	if w.committed {
		return
	}
	w.committed = true
	w.commit()
}

func (w *sessionWriter) WriteHeader(status int) {
	w.flush()
	w.ResponseWriter.WriteHeader(status)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
