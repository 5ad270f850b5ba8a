package views

import (
	"html/template"

	"github.com/akitas-arrow/child-name/internal/domain"
	"github.com/akitas-arrow/child-name/internal/presenter"
	"github.com/akitas-arrow/child-name/internal/services"
)

// Chrome is shared by every page.
type Chrome struct {
	Title       string
	Description string
	Footer      template.HTML
	CSRFToken   string
	UserEmail   string
	AuthEnabled bool
}

// Option is a select or radio choice.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// HomePage is the form plus the list.
type HomePage struct {
	Chrome
	Intro template.HTML
	Flash string
	Form  Form
	List  List
}

// Form is the suggestion form state.
type Form struct {
	Action     string
	Token      string
	Values     services.SubmissionInput
	Errors     services.FieldErrors
	Error      string
	Genders    []Option
	Submitters []Option
}

// FieldError returns the message for field, if any.
func (f Form) FieldError(field string) string {
	return f.Errors.Message(field)
}

// List is the rendered name list.
type List struct {
	Heading        string
	Error          string
	Empty          bool
	EmptyMessage   string
	Grouped        bool
	ShowNavigation bool
	Anchors        []presenter.Anchor
	Flat           []Card
	Sections       []Section
	Filters        []Option
	Sorts          []Option
}

// Section is one hiragana row.
type Section struct {
	Heading  string
	AnchorID string
	Cards    []Card
}

// Card is one suggestion.
type Card struct {
	ID            string
	Name          string
	Reading       string
	Label         string
	Tone          presenter.Tone
	Meaning       presenter.MeaningPreview
	SubmitterName string
}

// LoginPage is the sign-in form.
type LoginPage struct {
	Chrome
	Email   string
	Next    string
	Error   string
	Message string
}

var genderOptions = []struct {
	value string
	label string
}{
	{"male", "男の子"},
	{"female", "女の子"},
	{"unisex", "どちらでも"},
}

// NewForm builds the form state. Submitters are listed in kana order.
func NewForm(action, token string, values services.SubmissionInput, errs services.FieldErrors, submitters []domain.Submitter) Form {
	form := Form{Action: action, Token: token, Values: values, Errors: errs}
	for _, g := range genderOptions {
		form.Genders = append(form.Genders, Option{Value: g.value, Label: g.label, Selected: values.Gender == g.value})
	}
	for _, s := range presenter.SortSubmitters(submitters) {
		form.Submitters = append(form.Submitters, Option{Value: s.ID, Label: s.Name, Selected: values.SubmitterID == s.ID})
	}
	return form
}

// NewList converts a presenter view into template data.
func NewList(view presenter.View, submitters []domain.Submitter) List {
	names := make(map[string]string, len(submitters))
	for _, s := range submitters {
		names[s.ID] = s.Name
	}
	card := func(it presenter.Item) Card {
		return Card{
			ID:            it.Suggestion.ID,
			Name:          it.Suggestion.Name,
			Reading:       it.Suggestion.Reading,
			Label:         it.Label,
			Tone:          it.Tone,
			Meaning:       it.Meaning,
			SubmitterName: names[it.Suggestion.SubmitterID],
		}
	}

	list := List{
		Heading:        presenter.Heading(view.Total),
		Empty:          view.Empty,
		EmptyMessage:   view.EmptyMessage,
		Grouped:        view.Grouped(),
		ShowNavigation: view.ShowNavigation(),
		Anchors:        view.Anchors,
	}
	for _, it := range view.Flat {
		list.Flat = append(list.Flat, card(it))
	}
	for _, g := range view.Groups {
		section := Section{Heading: g.Heading, AnchorID: g.AnchorID}
		for _, it := range g.Items {
			section.Cards = append(section.Cards, card(it))
		}
		list.Sections = append(list.Sections, section)
	}
	for _, f := range domain.Filters {
		list.Filters = append(list.Filters, Option{Value: string(f), Label: presenter.FilterLabel(f), Selected: f == view.Filter})
	}
	for _, m := range domain.SortModes {
		list.Sorts = append(list.Sorts, Option{Value: string(m), Label: presenter.SortLabel(m), Selected: m == view.Sort})
	}
	return list
}
