package submitguard

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultCollection  = "submissionTokens"
	defaultMaxAttempts = 5
	defaultCleanup     = 100
)

// FirestoreOption customises the FirestoreStore behaviour.
type FirestoreOption func(*FirestoreStore)

// WithCollection overrides the collection name.
func WithCollection(name string) FirestoreOption {
	return func(store *FirestoreStore) {
		if name != "" {
			store.collection = name
		}
	}
}

// WithMaxAttempts configures the transaction retry attempts.
func WithMaxAttempts(attempts int) FirestoreOption {
	return func(store *FirestoreStore) {
		if attempts > 0 {
			store.maxAttempts = attempts
		}
	}
}

// FirestoreStore keeps tokens in Firestore so every instance behind the load balancer sees them.
type FirestoreStore struct {
	client      *firestore.Client
	collection  string
	maxAttempts int
}

// NewFirestoreStore constructs a Firestore-backed store.
func NewFirestoreStore(client *firestore.Client, opts ...FirestoreOption) *FirestoreStore {
	store := &FirestoreStore{
		client:      client,
		collection:  defaultCollection,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

func (s *FirestoreStore) doc(token string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(documentID(token))
}

// Reserve implements Store inside a transaction so concurrent posts race on a single document.
func (s *FirestoreStore) Reserve(ctx context.Context, token string, now time.Time, ttl time.Duration) (Reservation, error) {
	now = now.UTC()
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	ref := s.doc(token)
	fresh := tokenDocument{
		Status:    string(StatusPending),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	var result Reservation
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return err
			}
			result = Reservation{State: ReservationStateNew, Record: fresh.toRecord(token)}
			return tx.Set(ref, fresh)
		}

		var doc tokenDocument
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		record := doc.toRecord(token)
		switch {
		case expired(record, now):
			result = Reservation{State: ReservationStateNew, Record: fresh.toRecord(token)}
			return tx.Set(ref, fresh)
		case record.Status == StatusCompleted:
			result = Reservation{State: ReservationStateCompleted, Record: record}
		default:
			result = Reservation{State: ReservationStatePending, Record: record}
		}
		return nil
	}, firestore.MaxAttempts(s.maxAttempts))

	return result, err
}

// Complete implements Store.
func (s *FirestoreStore) Complete(ctx context.Context, token, suggestionID string, now time.Time, ttl time.Duration) error {
	now = now.UTC()
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	_, err := s.doc(token).Set(ctx, map[string]any{
		"status":       string(StatusCompleted),
		"suggestionId": suggestionID,
		"updatedAt":    now,
		"expiresAt":    now.Add(ttl),
	}, firestore.MergeAll)
	return err
}

// Release implements Store.
func (s *FirestoreStore) Release(ctx context.Context, token string) error {
	_, err := s.doc(token).Delete(ctx)
	if status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}

// CleanupExpired implements Store.
func (s *FirestoreStore) CleanupExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = defaultCleanup
	}
	docs, err := s.client.Collection(s.collection).Where("expiresAt", "<=", now.UTC()).Limit(limit).Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}
	batch := s.client.Batch()
	for _, doc := range docs {
		batch.Delete(doc.Ref)
	}
	if _, err := batch.Commit(ctx); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// tokenDocument is stored under the token's hash; the token itself is never persisted.
type tokenDocument struct {
	Status       string    `firestore:"status"`
	SuggestionID string    `firestore:"suggestionId,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
	ExpiresAt    time.Time `firestore:"expiresAt"`
}

func (d tokenDocument) toRecord(token string) Record {
	return Record{
		Token:        token,
		Status:       Status(d.Status),
		SuggestionID: d.SuggestionID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		ExpiresAt:    d.ExpiresAt,
	}
}
