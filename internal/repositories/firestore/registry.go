package firestore

import (
	"context"

	pfirestore "github.com/akitas-arrow/child-name/internal/platform/firestore"
	"github.com/akitas-arrow/child-name/internal/repositories"
)

// Registry exposes the Firestore repositories over one provider.
type Registry struct {
	provider    *pfirestore.Provider
	suggestions *SuggestionRepository
	submitters  *SubmitterRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry builds every repository on the provider.
func NewRegistry(provider *pfirestore.Provider) *Registry {
	return &Registry{
		provider:    provider,
		suggestions: NewSuggestionRepository(provider),
		submitters:  NewSubmitterRepository(provider),
	}
}

func (r *Registry) Suggestions() repositories.SuggestionRepository { return r.suggestions }

func (r *Registry) Submitters() repositories.SubmitterRepository { return r.submitters }

func (r *Registry) Health() repositories.HealthRepository { return r }

// Ping checks that the submitters collection can be read.
func (r *Registry) Ping(ctx context.Context) error {
	return r.provider.Ping(ctx, submittersCollection)
}

// Close releases the Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	return r.provider.Close(ctx)
}
