package identity

import (
	"context"
	"testing"

	"github.com/petloc/petloc/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalProvider() *LocalProvider {
	return NewLocalProvider(users.NewService(users.NewMemoryUserRepository()))
}

func TestLocalProviderSignUpAndSignIn(t *testing.T) {
	p := newLocalProvider()
	ctx := context.Background()

	u, err := p.SignUp(ctx, "ana@x.com", "senha-forte")
	require.NoError(t, err)
	require.NoError(t, p.SetDisplayName(ctx, u.ID, "Ana"))

	got, err := p.SignIn(ctx, "ana@x.com", "senha-forte")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Ana", got.Nome)
}

func TestLocalProviderErrorMapping(t *testing.T) {
	p := newLocalProvider()
	ctx := context.Background()

	_, err := p.SignUp(ctx, "ana@x.com", "12345")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = p.SignUp(ctx, "ana@x.com", "senha-forte")
	require.NoError(t, err)
	_, err = p.SignUp(ctx, "ana@x.com", "outra-senha")
	assert.ErrorIs(t, err, ErrEmailInUse)

	_, err = p.SignIn(ctx, "ana@x.com", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredential)
	_, err = p.SignIn(ctx, "ninguem@x.com", "tanto-faz")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestLocalProviderDeleteUser(t *testing.T) {
	p := newLocalProvider()
	ctx := context.Background()

	u, err := p.SignUp(ctx, "ana@x.com", "senha-forte")
	require.NoError(t, err)
	require.NoError(t, p.DeleteUser(ctx, u.ID))

	_, err = p.SignIn(ctx, "ana@x.com", "senha-forte")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
