// Package submitguard tracks one-time form submission tokens so that a form can only be
// processed once, no matter how many times it is posted.
package submitguard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Status represents the lifecycle state of a submission token.
type Status string

const (
	// DefaultTTL is how long a token record is retained.
	DefaultTTL = 10 * time.Minute
	// StatusPending means a request holds the token and has not finished.
	StatusPending Status = "pending"
	// StatusCompleted means the submission was stored.
	StatusCompleted Status = "completed"
)

// ReservationState describes the outcome of reserving a token.
type ReservationState int

const (
	// ReservationStateNew means the caller owns the token and must Complete or Release it.
	ReservationStateNew ReservationState = iota
	// ReservationStateCompleted means the token was already used successfully.
	ReservationStateCompleted
	// ReservationStatePending means another request is processing the token.
	ReservationStatePending
)

// Reservation is the result of Reserve.
type Reservation struct {
	State  ReservationState
	Record Record
}

// Record is the stored token state.
type Record struct {
	Token        string
	Status       Status
	SuggestionID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ExpiresAt    time.Time
}

// Store persists submission token reservations.
type Store interface {
	Reserve(ctx context.Context, token string, now time.Time, ttl time.Duration) (Reservation, error)
	Complete(ctx context.Context, token, suggestionID string, now time.Time, ttl time.Duration) error
	Release(ctx context.Context, token string) error
	CleanupExpired(ctx context.Context, now time.Time, limit int) (int, error)
}

// NewToken issues a fresh token for a rendered form.
func NewToken() string {
	return strings.ToLower(ulid.Make().String())
}

func documentID(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}

func expired(r Record, now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}
