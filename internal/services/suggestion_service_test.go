package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/akitas-arrow/child-name/internal/domain"
	"github.com/akitas-arrow/child-name/internal/platform/submitguard"
)

type fakeSuggestionRepo struct {
	mu        sync.Mutex
	items     []domain.NameSuggestion
	inserted  []domain.NameSuggestion
	insertErr error
	listErr   error
	entered   chan struct{}
	release   chan struct{}
}

func (f *fakeSuggestionRepo) List(context.Context) ([]domain.NameSuggestion, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeSuggestionRepo) Insert(_ context.Context, s domain.NameSuggestion) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, s)
	return nil
}

func (f *fakeSuggestionRepo) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type fakeSubmitterRepo struct {
	items []domain.Submitter
	err   error
}

func (f *fakeSubmitterRepo) List(context.Context) ([]domain.Submitter, error) {
	return f.items, f.err
}

type repoUnavailableError struct{}

func (repoUnavailableError) Error() string       { return "unavailable" }
func (repoUnavailableError) IsNotFound() bool    { return false }
func (repoUnavailableError) IsConflict() bool    { return false }
func (repoUnavailableError) IsUnavailable() bool { return true }

var serviceNow = time.Date(2025, time.May, 5, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo *fakeSuggestionRepo, guard submitguard.Store) SuggestionService {
	t.Helper()
	svc, err := NewSuggestionService(SuggestionServiceDeps{
		Suggestions: repo,
		Submitters:  &fakeSubmitterRepo{items: testSubmitters},
		Guard:       guard,
		Clock:       func() time.Time { return serviceNow },
		IDGenerator: func() string { return "01HZX" },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewSuggestionService_RequiresRepositories(t *testing.T) {
	if _, err := NewSuggestionService(SuggestionServiceDeps{}); err == nil {
		t.Fatalf("expected error without repositories")
	}
	if _, err := NewSuggestionService(SuggestionServiceDeps{Suggestions: &fakeSuggestionRepo{}}); err == nil {
		t.Fatalf("expected error without submitter repository")
	}
}

func TestSubmit_Success(t *testing.T) {
	repo := &fakeSuggestionRepo{}
	svc := newTestService(t, repo, nil)

	res, err := svc.Submit(context.Background(), SubmitCommand{Input: validInput()})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Suggestion.ID != "sug_01hzx" {
		t.Fatalf("unexpected id %q", res.Suggestion.ID)
	}
	if !res.Suggestion.CreatedAt.Equal(serviceNow) {
		t.Fatalf("unexpected created at %v", res.Suggestion.CreatedAt)
	}
	if repo.insertCount() != 1 || repo.inserted[0].Reading != "こころ" {
		t.Fatalf("unexpected inserts %+v", repo.inserted)
	}
}

func TestSubmit_ValidationNeverReachesStore(t *testing.T) {
	repo := &fakeSuggestionRepo{}
	svc := newTestService(t, repo, nil)

	in := validInput()
	in.Reading = "kokoro"
	_, err := svc.Submit(context.Background(), SubmitCommand{Input: in})
	if !errors.Is(err, ErrSubmissionInvalid) {
		t.Fatalf("expected invalid submission, got %v", err)
	}
	fields, ok := AsValidationError(err)
	if !ok || !fields.Has(FieldReading) {
		t.Fatalf("expected reading field error, got %v", err)
	}
	if repo.insertCount() != 0 {
		t.Fatalf("store must not be called")
	}
}

func TestSubmit_StoreFailureIsGeneric(t *testing.T) {
	repo := &fakeSuggestionRepo{insertErr: repoUnavailableError{}}
	guard := submitguard.NewMemoryStore()
	svc := newTestService(t, repo, guard)

	_, err := svc.Submit(context.Background(), SubmitCommand{Token: "tok", Input: validInput()})
	if !errors.Is(err, ErrSubmissionFailed) {
		t.Fatalf("expected submission failed, got %v", err)
	}
	if _, ok := AsValidationError(err); ok {
		t.Fatalf("store failure must not carry field errors")
	}

	res, _ := guard.Reserve(context.Background(), "tok", serviceNow, time.Minute)
	if res.State != submitguard.ReservationStateNew {
		t.Fatalf("expected token released for retry, got %v", res.State)
	}
}

func TestSubmit_DoubleClickInsertsOnce(t *testing.T) {
	repo := &fakeSuggestionRepo{entered: make(chan struct{}), release: make(chan struct{})}
	svc := newTestService(t, repo, submitguard.NewMemoryStore())
	cmd := SubmitCommand{Token: "form-1", Input: validInput()}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), cmd)
		done <- err
	}()
	<-repo.entered

	if _, err := svc.Submit(context.Background(), cmd); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected in-flight rejection, got %v", err)
	}

	close(repo.release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}

	res, err := svc.Submit(context.Background(), cmd)
	if err != nil {
		t.Fatalf("replayed submit: %v", err)
	}
	if !res.Replayed || res.Suggestion.ID != "sug_01hzx" {
		t.Fatalf("expected replay of first suggestion, got %+v", res)
	}
	if repo.insertCount() != 1 {
		t.Fatalf("expected exactly one insert, got %d", repo.insertCount())
	}
}

func TestListSuggestions_WrapsErrors(t *testing.T) {
	repo := &fakeSuggestionRepo{listErr: errors.New("boom")}
	svc := newTestService(t, repo, nil)
	if _, err := svc.ListSuggestions(context.Background()); !errors.Is(err, ErrSuggestionsUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
