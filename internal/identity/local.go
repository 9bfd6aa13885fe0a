package identity

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/petloc/petloc/internal/models"
	"github.com/petloc/petloc/internal/users"
)

// minPasswordLen is the shortest password the local provider accepts.
const minPasswordLen = 6

// LocalProvider authenticates against the petloc user store.
type LocalProvider struct {
	users *users.Service
}

func NewLocalProvider(us *users.Service) *LocalProvider {
	return &LocalProvider{users: us}
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	u, err := p.users.Authenticate(ctx, email, password)
	if err != nil {
		// inactive accounts look the same as bad credentials to the caller
		if errors.Is(err, users.ErrBadCredentials) || errors.Is(err, users.ErrAccountInactive) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}
	return u, nil
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	u, err := p.users.CreateAccount(ctx, "", email, password)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return u, nil
}

func (p *LocalProvider) SetDisplayName(ctx context.Context, id, nome string) error {
	return p.users.SetDisplayName(ctx, id, nome)
}

func (p *LocalProvider) DeleteUser(ctx context.Context, id string) error {
	return p.users.DeleteAccount(ctx, id)
}
