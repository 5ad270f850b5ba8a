package submitguard

import (
	"context"
	"testing"
	"time"
)

var fixedTime = time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)

func TestMemoryStore_ReserveLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	res, err := store.Reserve(ctx, "tok", fixedTime, time.Minute)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if res.State != ReservationStateNew {
		t.Fatalf("expected new reservation, got %v", res.State)
	}

	res, _ = store.Reserve(ctx, "tok", fixedTime.Add(time.Second), time.Minute)
	if res.State != ReservationStatePending {
		t.Fatalf("expected pending while in flight, got %v", res.State)
	}

	if err := store.Complete(ctx, "tok", "sug_1", fixedTime.Add(2*time.Second), time.Minute); err != nil {
		t.Fatalf("complete: %v", err)
	}
	res, _ = store.Reserve(ctx, "tok", fixedTime.Add(3*time.Second), time.Minute)
	if res.State != ReservationStateCompleted || res.Record.SuggestionID != "sug_1" {
		t.Fatalf("expected completed record, got %+v", res)
	}
}

func TestMemoryStore_ReleaseAllowsRetry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Reserve(ctx, "tok", fixedTime, time.Minute); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := store.Release(ctx, "tok"); err != nil {
		t.Fatalf("release: %v", err)
	}
	res, _ := store.Reserve(ctx, "tok", fixedTime, time.Minute)
	if res.State != ReservationStateNew {
		t.Fatalf("expected new reservation after release, got %v", res.State)
	}
}

func TestMemoryStore_ExpiredRecords(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, _ = store.Reserve(ctx, "a", fixedTime, time.Minute)
	_, _ = store.Reserve(ctx, "b", fixedTime, time.Hour)

	res, _ := store.Reserve(ctx, "a", fixedTime.Add(2*time.Minute), time.Minute)
	if res.State != ReservationStateNew {
		t.Fatalf("expected expired token to be reusable, got %v", res.State)
	}

	removed, err := store.CleanupExpired(ctx, fixedTime.Add(2*time.Hour), 0)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
}

func TestNewTokenUnique(t *testing.T) {
	if NewToken() == NewToken() {
		t.Fatalf("expected unique tokens")
	}
}
