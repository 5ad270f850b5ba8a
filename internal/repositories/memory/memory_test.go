package memory

import (
	"context"
	"testing"
	"time"

	"github.com/akitas-arrow/child-name/internal/domain"
)

func TestStoreListsNewestFirst(t *testing.T) {
	store := NewStore(DemoSubmitters()...)
	ctx := context.Background()
	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := store.Suggestions().Insert(ctx, domain.NameSuggestion{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	items, err := store.Suggestions().List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].ID != "c" || items[2].ID != "a" {
		t.Fatalf("expected newest first, got %+v", items)
	}

	err = store.Suggestions().Insert(ctx, domain.NameSuggestion{ID: "a"})
	repoErr, ok := err.(*Error)
	if !ok || !repoErr.IsConflict() {
		t.Fatalf("expected conflict, got %v", err)
	}

	subs, _ := store.Submitters().List(ctx)
	if len(subs) != 3 {
		t.Fatalf("expected seeded submitters, got %d", len(subs))
	}

	_ = store.Close(ctx)
	if err := store.Health().Ping(ctx); err == nil {
		t.Fatalf("expected ping to fail after close")
	}
}
