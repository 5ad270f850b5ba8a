package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/akitas-arrow/child-name/internal/content"
	custommw "github.com/akitas-arrow/child-name/internal/httpserver/middleware"
	"github.com/akitas-arrow/child-name/internal/httpserver/views"
	"github.com/akitas-arrow/child-name/internal/platform/auth"
	"github.com/akitas-arrow/child-name/internal/platform/requestctx"
	appsession "github.com/akitas-arrow/child-name/internal/session"
)

const loginPath = "/login"

// Authenticator signs a member in with email and password.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (auth.User, error)
}

type authHandlers struct {
	authenticator Authenticator
	renderer      *views.Renderer
	pages         *content.Loader
}

func newAuthHandlers(authenticator Authenticator, renderer *views.Renderer, pages *content.Loader) *authHandlers {
	if authenticator == nil {
		panic("auth: authenticator is required")
	}
	return &authHandlers{authenticator: authenticator, renderer: renderer, pages: pages}
}

func (h *authHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok && sess.User() != nil {
		http.Redirect(w, r, normalizeNext(r.URL.Query().Get("next")), http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, views.LoginPage{
		Email:   strings.TrimSpace(r.URL.Query().Get("email")),
		Next:    normalizeNext(r.URL.Query().Get("next")),
		Message: messageForStatus(r.URL.Query().Get("status")),
	})
}

func (h *authHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, views.LoginPage{Error: "フォームの送信に失敗しました。もう一度お試しください。"})
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	next := normalizeNext(r.PostFormValue("next"))
	page := views.LoginPage{Email: email, Next: next}

	user, err := h.authenticator.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		requestctx.Logger(r.Context()).Info("login failed", zap.Error(err))
		status, message := loginFailure(err)
		page.Error = message
		h.render(w, r, status, page)
		return
	}

	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		if user.Email == "" {
			user.Email = email
		}
		sess.SetUser(&appsession.User{UID: user.UID, Email: user.Email})
	}
	custommw.Redirect(w, r, next)
}

func (h *authHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		sess.Destroy()
	}
	custommw.Redirect(w, r, loginPath+"?status=logged_out")
}

func (h *authHandlers) render(w http.ResponseWriter, r *http.Request, status int, page views.LoginPage) {
	pageCopy, err := h.pages.Load("home")
	if err != nil {
		pageCopy = content.Page{Title: "子どもの名前募集"}
	}
	page.Chrome = views.Chrome{
		Title:       "ログイン | " + pageCopy.Title,
		Footer:      pageCopy.Footer,
		CSRFToken:   custommw.CSRFTokenFromContext(r.Context()),
		AuthEnabled: true,
	}
	h.renderer.Render(w, r, status, views.PageLogin, page)
}

func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "認証に失敗しました。入力内容をご確認ください。"
	case errors.Is(err, auth.ErrUserDisabled):
		return http.StatusForbidden, "このアカウントは無効化されています。管理者にお問い合わせください。"
	case errors.Is(err, auth.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "ログインの試行回数が多すぎます。しばらくしてから再度お試しください。"
	default:
		return http.StatusServiceUnavailable, "認証サービスに接続できませんでした。時間をおいて再度お試しください。"
	}
}

func messageForStatus(status string) string {
	if status == "logged_out" {
		return "ログアウトしました。"
	}
	return ""
}

// normalizeNext only allows local absolute paths.
func normalizeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	if strings.HasPrefix(u.Path, loginPath) {
		return "/"
	}
	return u.RequestURI()
}
