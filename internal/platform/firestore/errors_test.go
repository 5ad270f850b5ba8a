package firestore

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/akitas-arrow/child-name/internal/platform/config"
)

func TestWrapErrorClassifiesCodes(t *testing.T) {
	cases := []struct {
		code        codes.Code
		notFound    bool
		conflict    bool
		unavailable bool
	}{
		{codes.NotFound, true, false, false},
		{codes.AlreadyExists, false, true, false},
		{codes.Unavailable, false, false, true},
		{codes.PermissionDenied, false, false, false},
	}
	for _, tc := range cases {
		err := WrapError("nameSuggestions.create", status.Error(tc.code, "x"))
		var repoErr *Error
		if !errors.As(err, &repoErr) {
			t.Fatalf("%s: expected *Error, got %T", tc.code, err)
		}
		if repoErr.IsNotFound() != tc.notFound || repoErr.IsConflict() != tc.conflict || repoErr.IsUnavailable() != tc.unavailable {
			t.Errorf("%s: unexpected classification", tc.code)
		}
	}
}

func TestWrapErrorPassesCancellation(t *testing.T) {
	if err := WrapError("op", status.Error(codes.Canceled, "x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if WrapError("op", nil) != nil {
		t.Fatalf("expected nil")
	}
	first := WrapError("first", status.Error(codes.NotFound, "x"))
	if again := WrapError("second", first); again.Error() != first.Error() {
		t.Fatalf("expected wrapping to be idempotent, got %v", again)
	}
}

func TestProviderClosed(t *testing.T) {
	p := NewProvider(configForTest())
	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := p.Client(context.Background()); !errors.Is(err, ErrProviderClosed) {
		t.Fatalf("expected ErrProviderClosed, got %v", err)
	}
}

func configForTest() config.FirestoreConfig {
	return config.FirestoreConfig{ProjectID: "child-name-test"}
}
