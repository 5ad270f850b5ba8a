package services

import (
	"strings"
	"testing"

	"github.com/akitas-arrow/child-name/internal/domain"
)

var testSubmitters = []domain.Submitter{
	{ID: "S1", Name: "山田", KanaName: "やまだ"},
	{ID: "S2", Name: "佐藤", KanaName: "さとう"},
}

func validInput() SubmissionInput {
	return SubmissionInput{Name: "心", Reading: "こころ", Gender: "male", SubmitterID: "S1"}
}

func TestSubmissionValidator_Accepts(t *testing.T) {
	got, errs := SubmissionValidator{}.Validate(validInput(), testSubmitters)
	if len(errs) != 0 {
		t.Fatalf("expected success, got %v", errs)
	}
	if got.Name != "心" || got.Reading != "こころ" || got.Gender != domain.Male || got.SubmitterID != "S1" {
		t.Fatalf("unexpected validated record %+v", got)
	}
}

func TestSubmissionValidator_LatinReading(t *testing.T) {
	in := validInput()
	in.Reading = "kokoro"
	_, errs := SubmissionValidator{}.Validate(in, testSubmitters)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs.Fields())
	}
	if errs[FieldReading].Code != CodePattern {
		t.Fatalf("expected pattern error on reading, got %+v", errs[FieldReading])
	}
	if errs.Message(FieldReading) != "ひらがな、もしくは「・」「、」のみで入力してください" {
		t.Fatalf("unexpected message %q", errs.Message(FieldReading))
	}
}

func TestSubmissionValidator_ReportsAllFields(t *testing.T) {
	in := SubmissionInput{
		Name:        "心愛",
		Reading:     "",
		Gender:      "robot",
		Meaning:     strings.Repeat("あ", MaxMeaningLength+1),
		SubmitterID: "unknown",
	}
	_, errs := SubmissionValidator{}.Validate(in, testSubmitters)

	want := map[string]FieldErrorCode{
		FieldName:        CodeLength,
		FieldReading:     CodeRequired,
		FieldGender:      CodeInvalidEnum,
		FieldMeaning:     CodeTooLong,
		FieldSubmitterID: CodeRequired,
	}
	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %v", len(want), errs.Fields())
	}
	for field, code := range want {
		if errs[field].Code != code {
			t.Errorf("%s: expected %s, got %s", field, code, errs[field].Code)
		}
		if errs.Message(field) == "" {
			t.Errorf("%s: expected message", field)
		}
	}
}

func TestSubmissionValidator_RequiredFields(t *testing.T) {
	_, errs := SubmissionValidator{}.Validate(SubmissionInput{}, testSubmitters)
	for _, field := range []string{FieldName, FieldReading, FieldGender, FieldSubmitterID} {
		if errs[field].Code != CodeRequired {
			t.Errorf("%s: expected required, got %+v", field, errs[field])
		}
	}
	if errs.Has(FieldMeaning) {
		t.Fatalf("meaning is optional")
	}
}

func TestSubmissionValidator_ReadingPunctuationAndMeaningBoundary(t *testing.T) {
	in := validInput()
	in.Reading = "ゆう・き、"
	in.Meaning = strings.Repeat("愛", MaxMeaningLength)
	if _, errs := (SubmissionValidator{}).Validate(in, testSubmitters); len(errs) != 0 {
		t.Fatalf("expected success, got %v", errs.Fields())
	}
}

func TestSubmissionValidator_NoSubmittersLoaded(t *testing.T) {
	_, errs := SubmissionValidator{}.Validate(validInput(), nil)
	if !errs.Has(FieldSubmitterID) || len(errs) != 1 {
		t.Fatalf("expected submitter error only, got %v", errs.Fields())
	}
}

func TestSubmissionValidator_ChecksValuesAsTyped(t *testing.T) {
	in := validInput()
	in.Meaning = " " + strings.Repeat("あ", MaxMeaningLength) + "\n"
	_, errs := SubmissionValidator{}.Validate(in, testSubmitters)
	if errs[FieldMeaning].Code != CodeTooLong || len(errs) != 1 {
		t.Fatalf("expected too-long meaning only, got %v", errs.Fields())
	}

	in = validInput()
	in.Name = " 心 "
	in.Reading = " こころ "
	_, errs = SubmissionValidator{}.Validate(in, testSubmitters)
	if errs[FieldName].Code != CodeLength {
		t.Fatalf("expected length error on padded name, got %+v", errs[FieldName])
	}
	if errs[FieldReading].Code != CodePattern {
		t.Fatalf("expected pattern error on padded reading, got %+v", errs[FieldReading])
	}

	in = validInput()
	in.Meaning = "  海のように\n広い心で  "
	got, errs := SubmissionValidator{}.Validate(in, testSubmitters)
	if len(errs) != 0 {
		t.Fatalf("expected success, got %v", errs.Fields())
	}
	if got.Meaning != in.Meaning {
		t.Fatalf("meaning must be stored as typed, got %q", got.Meaning)
	}
}
