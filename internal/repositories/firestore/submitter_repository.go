package firestore

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/akitas-arrow/child-name/internal/domain"
	pfirestore "github.com/akitas-arrow/child-name/internal/platform/firestore"
	"github.com/akitas-arrow/child-name/internal/repositories"
)

const submittersCollection = "submitters"

// SubmitterRepository reads submitters from Firestore. Submitters are managed outside the app.
type SubmitterRepository struct {
	coll *pfirestore.Collection[domain.Submitter]
}

var _ repositories.SubmitterRepository = (*SubmitterRepository)(nil)

// NewSubmitterRepository binds the repository to the provider.
func NewSubmitterRepository(provider *pfirestore.Provider) *SubmitterRepository {
	return &SubmitterRepository{
		coll: pfirestore.NewCollection(provider, submittersCollection, encodeSubmitter, decodeSubmitter),
	}
}

// List returns every submitter in storage order.
func (r *SubmitterRepository) List(ctx context.Context) ([]domain.Submitter, error) {
	return r.coll.All(ctx, nil)
}

type submitterDocument struct {
	Name     string `firestore:"name"`
	KanaName string `firestore:"kanaName"`
}

func encodeSubmitter(s domain.Submitter) any {
	return submitterDocument{Name: s.Name, KanaName: s.KanaName}
}

func decodeSubmitter(snap *firestore.DocumentSnapshot) (domain.Submitter, error) {
	var doc submitterDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.Submitter{}, err
	}
	return domain.Submitter{ID: snap.Ref.ID, Name: doc.Name, KanaName: doc.KanaName}, nil
}
