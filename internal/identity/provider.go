package identity

import (
	"context"
	"errors"

	"github.com/petloc/petloc/internal/models"
)

// Credential-level failures surfaced by a Provider. Handlers translate these
// into the user-facing (Portuguese) messages.
var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrEmailInUse        = errors.New("email already in use")
	ErrWeakPassword      = errors.New("weak password")
	ErrTooManyRequests   = errors.New("too many requests")
)

// Provider is the authentication backend behind the session hook. The local
// provider verifies against our own user store; an external IdP could satisfy
// the same surface.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*models.User, error)
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SetDisplayName(ctx context.Context, id, nome string) error
	// DeleteUser removes a just-created account when a later registration
	// step fails, so no half-initialized account survives.
	DeleteUser(ctx context.Context, id string) error
}
