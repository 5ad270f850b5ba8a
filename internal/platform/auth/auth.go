// Package auth signs members in with email and password and verifies the resulting Firebase
// ID tokens.
package auth

import (
	"context"
	"errors"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
)

var (
	// ErrInvalidCredentials is returned for unknown accounts and wrong passwords alike.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUserDisabled is returned when the account has been disabled.
	ErrUserDisabled = errors.New("auth: user disabled")
	// ErrTooManyAttempts is returned when the provider throttles sign-in.
	ErrTooManyAttempts = errors.New("auth: too many attempts")
	// ErrTokenExpired is returned when a verified token has expired.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrUnavailable wraps transport or provider failures.
	ErrUnavailable = errors.New("auth: provider unavailable")
)

// Session is the outcome of a successful password sign-in.
type Session struct {
	IDToken string
	UID     string
	Email   string
}

// User is the verified identity stored in the cookie session.
type User struct {
	UID   string
	Email string
}

// PasswordSigner exchanges credentials for an ID token.
type PasswordSigner interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
}

// TokenVerifier abstracts the Firebase Admin SDK client for testability.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// Authenticator signs in and verifies the returned token before trusting it.
type Authenticator struct {
	signer   PasswordSigner
	verifier TokenVerifier
}

// NewAuthenticator wires a signer and verifier together.
func NewAuthenticator(signer PasswordSigner, verifier TokenVerifier) *Authenticator {
	if signer == nil || verifier == nil {
		panic("auth: signer and verifier are required")
	}
	return &Authenticator{signer: signer, verifier: verifier}
}

// Login authenticates the credentials and returns the verified user.
func (a *Authenticator) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	session, err := a.signer.SignIn(ctx, email, password)
	if err != nil {
		return User{}, err
	}

	token, err := a.verifier.VerifyIDToken(ctx, session.IDToken)
	if err != nil {
		if firebaseauth.IsIDTokenExpired(err) {
			return User{}, ErrTokenExpired
		}
		return User{}, errors.Join(ErrInvalidCredentials, err)
	}

	user := User{UID: token.UID, Email: session.Email}
	if claim, ok := token.Claims["email"].(string); ok && strings.TrimSpace(claim) != "" {
		user.Email = strings.TrimSpace(claim)
	}
	return user, nil
}
