package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// Encoder converts an entity into the stored document payload.
type Encoder[T any] func(value T) any

// Decoder hydrates an entity from a snapshot.
type Decoder[T any] func(snap *firestore.DocumentSnapshot) (T, error)

// QueryBuilder customises Firestore queries before execution.
type QueryBuilder func(query firestore.Query) firestore.Query

// Collection gives typed create/read access to one Firestore collection.
type Collection[T any] struct {
	provider *Provider
	name     string
	encode   Encoder[T]
	decode   Decoder[T]
}

// NewCollection binds a typed collection to the provider.
func NewCollection[T any](provider *Provider, name string, encode Encoder[T], decode Decoder[T]) *Collection[T] {
	return &Collection[T]{
		provider: provider,
		name:     strings.TrimSpace(name),
		encode:   encode,
		decode:   decode,
	}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Create stores value under id and fails with a conflict error if the id exists.
func (c *Collection[T]) Create(ctx context.Context, id string, value T) error {
	if strings.TrimSpace(id) == "" {
		return WrapError(c.op("create"), errors.New("firestore: document id is required"))
	}
	coll, err := c.ref(ctx)
	if err != nil {
		return err
	}
	if _, err := coll.Doc(id).Create(ctx, c.encode(value)); err != nil {
		return WrapError(c.op("create"), err)
	}
	return nil
}

// All runs the query and decodes every document.
func (c *Collection[T]) All(ctx context.Context, build QueryBuilder) ([]T, error) {
	coll, err := c.ref(ctx)
	if err != nil {
		return nil, err
	}
	query := coll.Query
	if build != nil {
		query = build(query)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []T
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, WrapError(c.op("query"), err)
		}
		value, err := c.decode(snap)
		if err != nil {
			return nil, fmt.Errorf("firestore: decode %s/%s: %w", c.name, snap.Ref.ID, err)
		}
		out = append(out, value)
	}
}

func (c *Collection[T]) ref(ctx context.Context) (*firestore.CollectionRef, error) {
	if c.provider == nil {
		return nil, WrapError(c.op("collection"), errors.New("firestore: provider is nil"))
	}
	client, err := c.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(c.name), nil
}

func (c *Collection[T]) op(action string) string {
	return c.name + "." + action
}
