package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

type verifyPasswordFunc func(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest) (*identitytoolkit.VerifyPasswordResponse, error)

// IdentityToolkitSigner signs in through the Identity Toolkit verifyPassword endpoint.
type IdentityToolkitSigner struct {
	verify verifyPasswordFunc
}

// NewIdentityToolkitSigner builds a signer authenticated by the Web API key.
func NewIdentityToolkitSigner(ctx context.Context, apiKey string, opts ...option.ClientOption) (*IdentityToolkitSigner, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("firebase api key is required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialise identity toolkit: %w", err)
	}
	return &IdentityToolkitSigner{
		verify: func(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest) (*identitytoolkit.VerifyPasswordResponse, error) {
			return svc.Relyingparty.VerifyPassword(req).Context(ctx).Do()
		},
	}, nil
}

// SignIn exchanges email and password for an ID token.
func (s *IdentityToolkitSigner) SignIn(ctx context.Context, email, password string) (Session, error) {
	resp, err := s.verify(ctx, &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return Session{}, classifySignInError(err)
	}
	if resp == nil || resp.IdToken == "" {
		return Session{}, fmt.Errorf("%w: empty id token", ErrUnavailable)
	}
	return Session{IDToken: resp.IdToken, UID: resp.LocalId, Email: resp.Email}, nil
}

func classifySignInError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return errors.Join(ErrUnavailable, err)
	}
	reason := apiErr.Message
	for _, item := range apiErr.Errors {
		if item.Message != "" {
			reason = item.Message
			break
		}
	}
	switch {
	case strings.HasPrefix(reason, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(reason, "INVALID_PASSWORD"),
		strings.HasPrefix(reason, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(reason, "INVALID_EMAIL"):
		return ErrInvalidCredentials
	case strings.HasPrefix(reason, "USER_DISABLED"):
		return ErrUserDisabled
	case strings.HasPrefix(reason, "TOO_MANY_ATTEMPTS_TRY_LATER"):
		return ErrTooManyAttempts
	}
	if apiErr.Code >= 500 {
		return errors.Join(ErrUnavailable, err)
	}
	return errors.Join(ErrInvalidCredentials, err)
}
