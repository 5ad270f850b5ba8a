package ui

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/akitas-arrow/child-name/internal/content"
	"github.com/akitas-arrow/child-name/internal/domain"
	custommw "github.com/akitas-arrow/child-name/internal/httpserver/middleware"
	"github.com/akitas-arrow/child-name/internal/httpserver/views"
	"github.com/akitas-arrow/child-name/internal/platform/requestctx"
	"github.com/akitas-arrow/child-name/internal/platform/submitguard"
	"github.com/akitas-arrow/child-name/internal/presenter"
	"github.com/akitas-arrow/child-name/internal/services"
)

const (
	// SubmissionTokenField carries the one-time form token.
	SubmissionTokenField = "submission_token"

	homeSlug = "home"

	submittedFlash        = "名前を提案しました。ありがとうございます！"
	inFlightMessage       = "送信中です。しばらくお待ちください。"
	listUnavailable       = "名前一覧の取得に失敗しました。時間をおいて再度お試しください。"
	submittersUnavailable = "提案者一覧の取得に失敗しました。時間をおいて再度お試しください。"
	badFormMessage        = "フォームの送信に失敗しました。もう一度お試しください。"
)

// PageLoader supplies page copy.
type PageLoader interface {
	Load(slug string) (content.Page, error)
}

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	Suggestions services.SuggestionService
	Pages       PageLoader
	Renderer    *views.Renderer
	AuthEnabled bool
	NewToken    func() string
}

// Handlers renders the suggestion page and accepts the form.
type Handlers struct {
	suggestions services.SuggestionService
	pages       PageLoader
	renderer    *views.Renderer
	authEnabled bool
	newToken    func() string
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	if deps.Suggestions == nil {
		panic("ui: suggestion service is required")
	}
	pages := deps.Pages
	if pages == nil {
		pages = content.NewLoader("")
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = views.MustRenderer()
	}
	newToken := deps.NewToken
	if newToken == nil {
		newToken = submitguard.NewToken
	}
	return &Handlers{
		suggestions: deps.Suggestions,
		pages:       pages,
		renderer:    renderer,
		authEnabled: deps.AuthEnabled,
		newToken:    newToken,
	}
}

type formState struct {
	token  string
	values services.SubmissionInput
	errors services.FieldErrors
	err    string
}

// Home renders the page copy, the form and the list.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.renderHome(w, r, http.StatusOK, formState{})
}

// Submit validates and stores a suggestion, then redirects back to the list.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.renderHome(w, r, http.StatusBadRequest, formState{err: badFormMessage})
		return
	}

	state := formState{
		token: strings.TrimSpace(r.PostFormValue(SubmissionTokenField)),
		values: services.SubmissionInput{
			Name:        r.PostFormValue(services.FieldName),
			Reading:     r.PostFormValue(services.FieldReading),
			Gender:      r.PostFormValue(services.FieldGender),
			Meaning:     r.PostFormValue(services.FieldMeaning),
			SubmitterID: r.PostFormValue(services.FieldSubmitterID),
		},
	}

	result, err := h.suggestions.Submit(ctx, services.SubmitCommand{Token: state.token, Input: state.values})
	if err == nil {
		if sess, ok := custommw.SessionFromContext(ctx); ok && !result.Replayed {
			sess.AddFlash(submittedFlash)
		}
		custommw.Redirect(w, r, listURL(r.URL.Query()))
		return
	}

	if fields, ok := services.AsValidationError(err); ok {
		state.errors = fields
		h.renderHome(w, r, http.StatusUnprocessableEntity, state)
		return
	}
	if errors.Is(err, services.ErrSubmissionInFlight) {
		state.err = inFlightMessage
		h.renderHome(w, r, http.StatusConflict, state)
		return
	}

	requestctx.Logger(ctx).Error("suggestion submit failed", zap.Error(err))
	state.err = services.SubmissionFailedMessage
	h.renderHome(w, r, http.StatusServiceUnavailable, state)
}

func (h *Handlers) renderHome(w http.ResponseWriter, r *http.Request, status int, state formState) {
	ctx := r.Context()
	logger := requestctx.Logger(ctx)
	query := r.URL.Query()
	filter := domain.ParseFilter(query.Get("gender"))
	mode := domain.ParseSortMode(query.Get("sort"))

	page, err := h.pages.Load(homeSlug)
	if err != nil {
		logger.Warn("page copy unavailable", zap.Error(err))
		page = content.Page{Title: "子どもの名前募集"}
	}

	submitters, err := h.suggestions.ListSubmitters(ctx)
	if err != nil {
		logger.Error("list submitters failed", zap.Error(err))
		if state.err == "" {
			state.err = submittersUnavailable
		}
	}

	var list views.List
	names, err := h.suggestions.ListSuggestions(ctx)
	if err != nil {
		logger.Error("list suggestions failed", zap.Error(err))
		list = views.NewList(presenter.Present(nil, filter, mode), submitters)
		list.Error = listUnavailable
	} else {
		list = views.NewList(presenter.Present(names, filter, mode), submitters)
	}

	if state.token == "" {
		state.token = h.newToken()
	}

	data := views.HomePage{
		Chrome: h.chrome(r, page),
		Intro:  page.Body,
		Form:   views.NewForm(submitURL(query), state.token, state.values, state.errors, submitters),
		List:   list,
	}
	data.Form.Error = state.err
	if sess, ok := custommw.SessionFromContext(ctx); ok && status == http.StatusOK {
		data.Flash = sess.PopFlash()
	}

	h.renderer.Render(w, r, status, views.PageHome, data)
}

func (h *Handlers) chrome(r *http.Request, page content.Page) views.Chrome {
	c := views.Chrome{
		Title:       page.Title,
		Description: page.Description,
		Footer:      page.Footer,
		CSRFToken:   custommw.CSRFTokenFromContext(r.Context()),
		AuthEnabled: h.authEnabled,
	}
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		if user := sess.User(); user != nil {
			c.UserEmail = user.Email
			if c.UserEmail == "" {
				c.UserEmail = user.UID
			}
		}
	}
	return c
}

// listQuery keeps only the list view parameters.
func listQuery(q url.Values) string {
	out := url.Values{}
	if f := domain.ParseFilter(q.Get("gender")); f != domain.FilterAll {
		out.Set("gender", string(f))
	}
	if m := domain.ParseSortMode(q.Get("sort")); m != domain.SortNewest {
		out.Set("sort", string(m))
	}
	return out.Encode()
}

func listURL(q url.Values) string {
	if encoded := listQuery(q); encoded != "" {
		return "/?" + encoded
	}
	return "/"
}

func submitURL(q url.Values) string {
	if encoded := listQuery(q); encoded != "" {
		return "/suggestions?" + encoded
	}
	return "/suggestions"
}
