package services

import (
	"sort"

	"github.com/akitas-arrow/child-name/internal/domain"
	"github.com/akitas-arrow/child-name/internal/platform/textutil"
)

// Form field names, shared with the HTML form.
const (
	FieldName        = "name"
	FieldReading     = "reading"
	FieldGender      = "gender"
	FieldMeaning     = "meaning"
	FieldSubmitterID = "submitter_id"
)

// MaxMeaningLength bounds the free-text rationale, in characters.
const MaxMeaningLength = 500

// FieldErrorCode classifies a field validation failure.
type FieldErrorCode string

const (
	CodeRequired    FieldErrorCode = "required"
	CodeLength      FieldErrorCode = "length"
	CodePattern     FieldErrorCode = "pattern"
	CodeInvalidEnum FieldErrorCode = "invalid-enum"
	CodeTooLong     FieldErrorCode = "too-long"
)

var fieldMessages = map[string]map[FieldErrorCode]string{
	FieldName: {
		CodeRequired: "名前は必須です",
		CodeLength:   "名前は1文字で入力してください",
	},
	FieldReading: {
		CodeRequired: "読み方は必須です",
		CodePattern:  "ひらがな、もしくは「・」「、」のみで入力してください",
	},
	FieldGender: {
		CodeRequired:    "性別を選択してください",
		CodeInvalidEnum: "性別を選択してください",
	},
	FieldMeaning: {
		CodeTooLong: "理由・由来は500文字以内で入力してください",
	},
	FieldSubmitterID: {
		CodeRequired: "提案者は必須です",
	},
}

// FieldError is a single failed field.
type FieldError struct {
	Code    FieldErrorCode
	Message string
}

// FieldErrors maps form field names to their failure. An empty map means the input is valid.
type FieldErrors map[string]FieldError

// Has reports whether field failed.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Message returns the user-facing message for field, or "".
func (e FieldErrors) Message(field string) string {
	return e[field].Message
}

// Fields returns the failed field names in a stable order.
func (e FieldErrors) Fields() []string {
	out := make([]string, 0, len(e))
	for field := range e {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

func (e FieldErrors) add(field string, code FieldErrorCode) {
	e[field] = FieldError{Code: code, Message: fieldMessages[field][code]}
}

// SubmissionInput is the raw form content.
type SubmissionInput struct {
	Name        string
	Reading     string
	Gender      string
	Meaning     string
	SubmitterID string
}

// ValidatedSubmission is input that passed validation and can be stored as is.
type ValidatedSubmission struct {
	Name        string
	Reading     string
	Gender      domain.Gender
	Meaning     string
	SubmitterID string
}

// SubmissionValidator checks a candidate suggestion before it reaches the store.
type SubmissionValidator struct{}

// Validate checks every field and reports all failures together. Values are checked as typed
// and the validated record carries them unchanged.
func (SubmissionValidator) Validate(in SubmissionInput, submitters []domain.Submitter) (ValidatedSubmission, FieldErrors) {
	errs := FieldErrors{}

	name := in.Name
	switch {
	case name == "":
		errs.add(FieldName, CodeRequired)
	case textutil.RuneLen(name) != 1:
		errs.add(FieldName, CodeLength)
	}

	reading := in.Reading
	switch {
	case reading == "":
		errs.add(FieldReading, CodeRequired)
	case !textutil.IsHiraganaReading(reading):
		errs.add(FieldReading, CodePattern)
	}

	rawGender := in.Gender
	gender := domain.ParseGender(rawGender)
	switch {
	case rawGender == "":
		errs.add(FieldGender, CodeRequired)
	case !gender.Known():
		errs.add(FieldGender, CodeInvalidEnum)
	}

	meaning := in.Meaning
	if textutil.RuneLen(meaning) > MaxMeaningLength {
		errs.add(FieldMeaning, CodeTooLong)
	}

	submitterID := in.SubmitterID
	if submitterID == "" || !containsSubmitter(submitters, submitterID) {
		errs.add(FieldSubmitterID, CodeRequired)
	}

	if len(errs) > 0 {
		return ValidatedSubmission{}, errs
	}
	return ValidatedSubmission{
		Name:        name,
		Reading:     reading,
		Gender:      gender,
		Meaning:     meaning,
		SubmitterID: submitterID,
	}, nil
}

func containsSubmitter(submitters []domain.Submitter, id string) bool {
	for _, s := range submitters {
		if s.ID == id {
			return true
		}
	}
	return false
}
