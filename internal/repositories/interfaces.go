package repositories

import (
	"context"

	"github.com/akitas-arrow/child-name/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Suggestions() SuggestionRepository
	Submitters() SubmitterRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// SuggestionRepository stores proposed names.
type SuggestionRepository interface {
	// List returns every suggestion, newest first.
	List(ctx context.Context) ([]domain.NameSuggestion, error)
	Insert(ctx context.Context, suggestion domain.NameSuggestion) error
}

// SubmitterRepository reads the people who can be credited with a suggestion.
type SubmitterRepository interface {
	List(ctx context.Context) ([]domain.Submitter, error)
}

// HealthRepository checks that the backing store is reachable.
type HealthRepository interface {
	Ping(ctx context.Context) error
}
