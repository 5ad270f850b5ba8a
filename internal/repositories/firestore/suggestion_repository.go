package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/akitas-arrow/child-name/internal/domain"
	pfirestore "github.com/akitas-arrow/child-name/internal/platform/firestore"
	"github.com/akitas-arrow/child-name/internal/repositories"
)

const suggestionsCollection = "nameSuggestions"

// SuggestionRepository stores name suggestions in Firestore.
type SuggestionRepository struct {
	coll *pfirestore.Collection[domain.NameSuggestion]
}

var _ repositories.SuggestionRepository = (*SuggestionRepository)(nil)

// NewSuggestionRepository binds the repository to the provider.
func NewSuggestionRepository(provider *pfirestore.Provider) *SuggestionRepository {
	return &SuggestionRepository{
		coll: pfirestore.NewCollection(provider, suggestionsCollection, encodeSuggestion, decodeSuggestion),
	}
}

// List returns all suggestions, newest first.
func (r *SuggestionRepository) List(ctx context.Context) ([]domain.NameSuggestion, error) {
	return r.coll.All(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("createdAt", firestore.Desc)
	})
}

// Insert creates the suggestion document. An existing id is reported as a conflict.
func (r *SuggestionRepository) Insert(ctx context.Context, suggestion domain.NameSuggestion) error {
	return r.coll.Create(ctx, suggestion.ID, suggestion)
}

type suggestionDocument struct {
	Name        string    `firestore:"name"`
	Reading     string    `firestore:"reading"`
	Gender      string    `firestore:"gender"`
	Meaning     string    `firestore:"meaning"`
	SubmitterID string    `firestore:"submitterId"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func encodeSuggestion(s domain.NameSuggestion) any {
	return suggestionDocument{
		Name:        s.Name,
		Reading:     s.Reading,
		Gender:      s.Gender.Raw(),
		Meaning:     s.Meaning,
		SubmitterID: s.SubmitterID,
		CreatedAt:   s.CreatedAt.UTC(),
	}
}

func decodeSuggestion(snap *firestore.DocumentSnapshot) (domain.NameSuggestion, error) {
	var doc suggestionDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.NameSuggestion{}, err
	}
	return domain.NameSuggestion{
		ID:          snap.Ref.ID,
		Name:        doc.Name,
		Reading:     doc.Reading,
		Gender:      domain.ParseGender(doc.Gender),
		Meaning:     doc.Meaning,
		SubmitterID: doc.SubmitterID,
		CreatedAt:   doc.CreatedAt,
	}, nil
}
