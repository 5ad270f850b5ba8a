package views_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/akitas-arrow/child-name/internal/domain"
	"github.com/akitas-arrow/child-name/internal/httpserver/views"
	"github.com/akitas-arrow/child-name/internal/presenter"
	"github.com/akitas-arrow/child-name/internal/services"
	"github.com/akitas-arrow/child-name/internal/testutil"
)

func render(t *testing.T, status int, page string, data any) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	renderer, err := views.NewRenderer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	renderer.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), status, page, data)
	return rec, testutil.ParseHTML(t, bytes.NewReader(rec.Body.Bytes()))
}

func TestRenderHomeKeepsFormStateAndEscapesMeaning(t *testing.T) {
	t.Parallel()

	submitters := []domain.Submitter{
		{ID: "s-ma", Name: "ママ", KanaName: "まま"},
		{ID: "s-pa", Name: "パパ", KanaName: "ぱぱ"},
	}
	names := []domain.NameSuggestion{{
		ID:          "n1",
		Name:        "陽",
		Reading:     "はる",
		Gender:      domain.Female,
		Meaning:     "<script>alert(1)</script>",
		SubmitterID: "s-pa",
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	values := services.SubmissionInput{Name: "海", Reading: "うみ", Gender: "unisex", SubmitterID: "s-ma"}
	errs := services.FieldErrors{}

	data := views.HomePage{
		Chrome: views.Chrome{Title: "子どもの名前募集", CSRFToken: "csrf-1"},
		Form:   views.NewForm("/suggestions", "tok-1", values, errs, submitters),
		List:   views.NewList(presenter.Present(names, domain.FilterAll, domain.SortNewest), submitters),
	}
	rec, doc := render(t, http.StatusUnprocessableEntity, views.PageHome, data)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "提案された名前一覧 (1件)", strings.TrimSpace(doc.Find("#names h2").Text()))
	require.Equal(t, 0, doc.Find(".card script").Length())
	require.Contains(t, doc.Find(".card .card__meaning").Text(), "<script>alert(1)</script>")
	require.Equal(t, "女の子", doc.Find(".card .badge--pink").Text())

	checked, _ := doc.Find("input[name=gender][checked]").Attr("value")
	require.Equal(t, "unisex", checked)
	selected, _ := doc.Find("select[name=submitter_id] option[selected]").Attr("value")
	require.Equal(t, "s-ma", selected)
	csrf, _ := doc.Find("form[action='/suggestions'] input[name=csrf_token]").Attr("value")
	require.Equal(t, "csrf-1", csrf)

	require.Equal(t, []string{"パパ", "ママ"}, testutil.Texts(doc, "select[name=submitter_id] option[value!='']"))
}

func TestRenderLogin(t *testing.T) {
	t.Parallel()

	rec, doc := render(t, http.StatusUnauthorized, views.PageLogin, views.LoginPage{
		Chrome: views.Chrome{Title: "ログイン", AuthEnabled: true},
		Email:  "member@example.com",
		Next:   "/?sort=alphabetical",
		Error:  "認証に失敗しました。入力内容をご確認ください。",
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	email, _ := doc.Find("input[name=email]").Attr("value")
	require.Equal(t, "member@example.com", email)
	next, _ := doc.Find("input[name=next]").Attr("value")
	require.Equal(t, "/?sort=alphabetical", next)
	require.Equal(t, 0, doc.Find("form[action='/logout']").Length(), "logout needs a signed-in user")
}
