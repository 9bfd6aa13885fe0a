package users

import (
	"context"
	"testing"

	"github.com/petloc/petloc/internal/models"
)

func TestCreateAccountAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryUserRepository())
	ctx := context.Background()

	u, err := svc.CreateAccount(ctx, "Ana", "Ana@X.com", "s3nha-forte")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "ana@x.com" {
		t.Fatalf("email should be normalized, got %q", u.Email)
	}
	if u.Tipo != models.TipoUsuario || !u.Ativo {
		t.Fatalf("new accounts should be ativo usuarios: %+v", u)
	}
	if u.PasswordHash == "s3nha-forte" {
		t.Fatal("password must not be stored in plain text")
	}

	got, err := svc.Authenticate(ctx, "ana@x.com", "s3nha-forte")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("unexpected account: %+v", got)
	}
	if got.UltimoLogin == nil {
		t.Fatal("ultimoLogin should be stamped on successful login")
	}

	if _, err := svc.Authenticate(ctx, "ana@x.com", "errada"); err != ErrBadCredentials {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryUserRepository())
	ctx := context.Background()

	if _, err := svc.CreateAccount(ctx, "Ana", "ana@x.com", "senha123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateAccount(ctx, "Outra Ana", "ana@x.com", "senha456"); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticate_InactiveAccount(t *testing.T) {
	svc := NewService(NewMemoryUserRepository())
	ctx := context.Background()

	u, err := svc.CreateAccount(ctx, "Bruno", "bruno@x.com", "senha123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SetAtivo(ctx, u.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "bruno@x.com", "senha123"); err != ErrAccountInactive {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}
