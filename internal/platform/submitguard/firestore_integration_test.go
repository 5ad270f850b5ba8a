//go:build integration

package submitguard

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"
)

// Run with FIRESTORE_EMULATOR_HOST pointing at a local emulator:
//
//	gcloud emulators firestore start --host-port=127.0.0.1:8787
//	FIRESTORE_EMULATOR_HOST=127.0.0.1:8787 go test -tags integration ./internal/platform/submitguard/...
func newEmulatorStore(t *testing.T) (*FirestoreStore, *firestore.Client) {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	suffix := ulid.Make().String()[:8]
	client, err := firestore.NewClient(context.Background(), "child-name-"+suffix)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	store := NewFirestoreStore(client,
		WithCollection("submissionTokens_"+suffix),
		WithMaxAttempts(10),
	)
	return store, client
}

func TestFirestoreStore_ReserveLifecycle(t *testing.T) {
	store, client := newEmulatorStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	res, err := store.Reserve(ctx, "tok", fixedTime, time.Minute)
	if err != nil || res.State != ReservationStateNew {
		t.Fatalf("reserve: %v %v", res.State, err)
	}
	res, err = store.Reserve(ctx, "tok", fixedTime.Add(time.Second), time.Minute)
	if err != nil || res.State != ReservationStatePending {
		t.Fatalf("expected pending while in flight, got %v %v", res.State, err)
	}

	if err := store.Complete(ctx, "tok", "sug_1", fixedTime.Add(2*time.Second), time.Minute); err != nil {
		t.Fatalf("complete: %v", err)
	}
	res, err = store.Reserve(ctx, "tok", fixedTime.Add(3*time.Second), time.Minute)
	if err != nil || res.State != ReservationStateCompleted || res.Record.SuggestionID != "sug_1" {
		t.Fatalf("expected completed record, got %+v %v", res, err)
	}
	if res.Record.Token != "tok" {
		t.Fatalf("expected record to carry the caller's token, got %q", res.Record.Token)
	}

	snap, err := client.Collection(store.collection).Doc(documentID("tok")).Get(ctx)
	if err != nil {
		t.Fatalf("get stored document: %v", err)
	}
	if _, ok := snap.Data()["token"]; ok {
		t.Fatalf("raw token must not be persisted: %v", snap.Data())
	}
}

func TestFirestoreStore_ReleaseAndExpiry(t *testing.T) {
	store, _ := newEmulatorStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if _, err := store.Reserve(ctx, "retry", fixedTime, time.Minute); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := store.Release(ctx, "retry"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := store.Release(ctx, "retry"); err != nil {
		t.Fatalf("second release must be a no-op: %v", err)
	}
	res, err := store.Reserve(ctx, "retry", fixedTime.Add(time.Second), time.Minute)
	if err != nil || res.State != ReservationStateNew {
		t.Fatalf("expected a fresh reservation after release, got %v %v", res.State, err)
	}

	if _, err := store.Reserve(ctx, "stale", fixedTime, time.Second); err != nil {
		t.Fatalf("reserve stale: %v", err)
	}
	res, err = store.Reserve(ctx, "stale", fixedTime.Add(2*time.Second), time.Minute)
	if err != nil || res.State != ReservationStateNew {
		t.Fatalf("expired pending token must be reclaimable, got %v %v", res.State, err)
	}

	removed, err := store.CleanupExpired(ctx, fixedTime.Add(time.Hour), 10)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected both records removed, got %d", removed)
	}
}

func TestFirestoreStore_ConcurrentReserveAdmitsOne(t *testing.T) {
	store, _ := newEmulatorStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const posts = 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		states = map[ReservationState]int{}
	)
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := store.Reserve(ctx, "double-click", fixedTime, time.Minute)
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			mu.Lock()
			states[res.State]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if states[ReservationStateNew] != 1 || states[ReservationStatePending] != posts-1 {
		t.Fatalf("expected exactly one new reservation, got %v", states)
	}
}
