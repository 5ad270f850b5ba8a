// Package memory holds process-local repositories for development and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/akitas-arrow/child-name/internal/domain"
	"github.com/akitas-arrow/child-name/internal/repositories"
)

// Error satisfies repositories.RepositoryError.
type Error struct {
	op       string
	conflict bool
}

func (e *Error) Error() string       { return fmt.Sprintf("memory: %s", e.op) }
func (e *Error) IsNotFound() bool    { return false }
func (e *Error) IsConflict() bool    { return e.conflict }
func (e *Error) IsUnavailable() bool { return false }

// ErrClosed is returned after Close.
var ErrClosed = errors.New("memory: store closed")

// Store keeps suggestions and submitters in memory.
type Store struct {
	mu          sync.RWMutex
	suggestions []domain.NameSuggestion
	submitters  []domain.Submitter
	closed      bool
}

var _ repositories.Registry = (*Store)(nil)

// NewStore returns a store seeded with the given submitters.
func NewStore(submitters ...domain.Submitter) *Store {
	return &Store{submitters: append([]domain.Submitter(nil), submitters...)}
}

// DemoSubmitters are seeded when running locally without Firestore.
func DemoSubmitters() []domain.Submitter {
	return []domain.Submitter{
		{ID: "demo-papa", Name: "パパ", KanaName: "ぱぱ"},
		{ID: "demo-mama", Name: "ママ", KanaName: "まま"},
		{ID: "demo-obaachan", Name: "おばあちゃん", KanaName: "おばあちゃん"},
	}
}

func (s *Store) Suggestions() repositories.SuggestionRepository { return suggestionRepo{s} }
func (s *Store) Submitters() repositories.SubmitterRepository   { return submitterRepo{s} }
func (s *Store) Health() repositories.HealthRepository          { return s }

// Ping fails only after Close.
func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed.
func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

type suggestionRepo struct{ s *Store }

// List returns a copy ordered newest first, ties by insertion order reversed.
func (r suggestionRepo) List(context.Context) ([]domain.NameSuggestion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.closed {
		return nil, ErrClosed
	}
	out := make([]domain.NameSuggestion, 0, len(r.s.suggestions))
	for i := len(r.s.suggestions) - 1; i >= 0; i-- {
		out = append(out, r.s.suggestions[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r suggestionRepo) Insert(_ context.Context, suggestion domain.NameSuggestion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.closed {
		return ErrClosed
	}
	for _, existing := range r.s.suggestions {
		if existing.ID == suggestion.ID {
			return &Error{op: "nameSuggestions.create", conflict: true}
		}
	}
	r.s.suggestions = append(r.s.suggestions, suggestion)
	return nil
}

type submitterRepo struct{ s *Store }

func (r submitterRepo) List(context.Context) ([]domain.Submitter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.closed {
		return nil, ErrClosed
	}
	return append([]domain.Submitter(nil), r.s.submitters...), nil
}
