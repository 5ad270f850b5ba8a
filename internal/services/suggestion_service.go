package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/akitas-arrow/child-name/internal/domain"
	"github.com/akitas-arrow/child-name/internal/platform/submitguard"
	"github.com/akitas-arrow/child-name/internal/repositories"
)

var (
	errSuggestionRepositoryRequired = errors.New("suggestion: suggestion repository is required")
	errSubmitterRepositoryRequired  = errors.New("suggestion: submitter repository is required")
)

// ErrSuggestionsUnavailable indicates the list could not be loaded from the store.
var ErrSuggestionsUnavailable = errors.New("suggestion: unavailable")

// ErrSubmissionInvalid indicates field validation failed. Use AsValidationError for details.
var ErrSubmissionInvalid = errors.New("suggestion: invalid submission")

// ErrSubmissionFailed indicates the store rejected or could not complete the insert.
var ErrSubmissionFailed = errors.New("suggestion: submission failed")

// ErrSubmissionInFlight indicates the same form is already being processed.
var ErrSubmissionInFlight = errors.New("suggestion: submission in flight")

// SubmissionFailedMessage is shown to the user for any store failure.
const SubmissionFailedMessage = "名前の提案に失敗しました。もう一度お試しください。"

const suggestionIDPrefix = "sug_"

// ValidationError carries the per-field failures of a rejected submission.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("suggestion: invalid fields %s", strings.Join(e.Fields.Fields(), ","))
}

func (e *ValidationError) Unwrap() error { return ErrSubmissionInvalid }

// AsValidationError extracts field errors from err.
func AsValidationError(err error) (FieldErrors, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}

// SuggestionService loads the page data and accepts new suggestions.
type SuggestionService interface {
	ListSuggestions(ctx context.Context) ([]domain.NameSuggestion, error)
	ListSubmitters(ctx context.Context) ([]domain.Submitter, error)
	Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error)
}

// SubmitCommand is one form post. Token is the one-time value rendered into the form.
type SubmitCommand struct {
	Token string
	Input SubmissionInput
}

// SubmitResult describes a successful submission. Replayed is set when the token had
// already been used and nothing new was stored.
type SubmitResult struct {
	Suggestion domain.NameSuggestion
	Replayed   bool
}

// SuggestionServiceDeps wires the repositories and helpers used by the service.
type SuggestionServiceDeps struct {
	Suggestions repositories.SuggestionRepository
	Submitters  repositories.SubmitterRepository
	Guard       submitguard.Store
	GuardTTL    time.Duration
	Validator   SubmissionValidator
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
	Observe     func(context.Context, string)
}

type suggestionService struct {
	suggestions repositories.SuggestionRepository
	submitters  repositories.SubmitterRepository
	guard       submitguard.Store
	guardTTL    time.Duration
	validator   SubmissionValidator
	now         func() time.Time
	newID       func() string
	logger      func(context.Context, string, map[string]any)
	observe     func(context.Context, string)
}

// NewSuggestionService constructs a SuggestionService.
func NewSuggestionService(deps SuggestionServiceDeps) (SuggestionService, error) {
	if deps.Suggestions == nil {
		return nil, errSuggestionRepositoryRequired
	}
	if deps.Submitters == nil {
		return nil, errSubmitterRepositoryRequired
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	observe := deps.Observe
	if observe == nil {
		observe = func(context.Context, string) {}
	}
	ttl := deps.GuardTTL
	if ttl <= 0 {
		ttl = submitguard.DefaultTTL
	}

	return &suggestionService{
		suggestions: deps.Suggestions,
		submitters:  deps.Submitters,
		guard:       deps.Guard,
		guardTTL:    ttl,
		validator:   deps.Validator,
		now:         func() time.Time { return clock().UTC() },
		newID:       func() string { return suggestionIDPrefix + strings.ToLower(idGen()) },
		logger:      logger,
		observe:     observe,
	}, nil
}

func (s *suggestionService) ListSuggestions(ctx context.Context) ([]domain.NameSuggestion, error) {
	items, err := s.suggestions.List(ctx)
	if err != nil {
		s.logger(ctx, "suggestion.list_failed", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("%w: %w", ErrSuggestionsUnavailable, err)
	}
	return items, nil
}

func (s *suggestionService) ListSubmitters(ctx context.Context) ([]domain.Submitter, error) {
	items, err := s.submitters.List(ctx)
	if err != nil {
		s.logger(ctx, "suggestion.submitters_failed", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("%w: %w", ErrSuggestionsUnavailable, err)
	}
	return items, nil
}

// Submit validates and stores a suggestion. A token that is already being processed is
// rejected without touching the store; its reservation is released on every failure path so
// the user can retry the same form.
func (s *suggestionService) Submit(ctx context.Context, cmd SubmitCommand) (result SubmitResult, err error) {
	token := strings.TrimSpace(cmd.Token)
	if s.guard != nil && token != "" {
		res, reserveErr := s.guard.Reserve(ctx, token, s.now(), s.guardTTL)
		if reserveErr != nil {
			s.logger(ctx, "suggestion.guard_failed", map[string]any{"error": reserveErr.Error()})
			s.observe(ctx, "error")
			return SubmitResult{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, reserveErr)
		}
		switch res.State {
		case submitguard.ReservationStateCompleted:
			s.observe(ctx, "replayed")
			return SubmitResult{Suggestion: domain.NameSuggestion{ID: res.Record.SuggestionID}, Replayed: true}, nil
		case submitguard.ReservationStatePending:
			s.observe(ctx, "in_flight")
			return SubmitResult{}, ErrSubmissionInFlight
		}
		defer func() {
			s.settle(ctx, token, result, err)
		}()
	}

	submitters, err := s.submitters.List(ctx)
	if err != nil {
		s.logger(ctx, "suggestion.submitters_failed", map[string]any{"error": err.Error()})
		s.observe(ctx, "error")
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	valid, fieldErrs := s.validator.Validate(cmd.Input, submitters)
	if len(fieldErrs) > 0 {
		s.observe(ctx, "invalid")
		return SubmitResult{}, &ValidationError{Fields: fieldErrs}
	}

	suggestion := domain.NameSuggestion{
		ID:          s.newID(),
		Name:        valid.Name,
		Reading:     valid.Reading,
		Gender:      valid.Gender,
		Meaning:     valid.Meaning,
		SubmitterID: valid.SubmitterID,
		CreatedAt:   s.now(),
	}
	if err := s.suggestions.Insert(ctx, suggestion); err != nil {
		s.logger(ctx, "suggestion.insert_failed", map[string]any{
			"error":        err.Error(),
			"suggestionId": suggestion.ID,
			"unavailable":  isRepoUnavailable(err),
		})
		s.observe(ctx, "error")
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	s.logger(ctx, "suggestion.created", map[string]any{"suggestionId": suggestion.ID})
	s.observe(ctx, "created")
	return SubmitResult{Suggestion: suggestion}, nil
}

func (s *suggestionService) settle(ctx context.Context, token string, result SubmitResult, err error) {
	ctx = context.WithoutCancel(ctx)
	if err == nil {
		if completeErr := s.guard.Complete(ctx, token, result.Suggestion.ID, s.now(), s.guardTTL); completeErr != nil {
			s.logger(ctx, "suggestion.guard_complete_failed", map[string]any{"error": completeErr.Error()})
		}
		return
	}
	if releaseErr := s.guard.Release(ctx, token); releaseErr != nil {
		s.logger(ctx, "suggestion.guard_release_failed", map[string]any{"error": releaseErr.Error()})
	}
}

func isRepoUnavailable(err error) bool {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsUnavailable()
	}
	return false
}
