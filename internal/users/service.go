package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/petloc/petloc/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken      = errors.New("email already in use")
	ErrBadCredentials  = errors.New("invalid credentials")
	ErrAccountInactive = errors.New("account inactive")
)

// Service encapsulates account business logic over the repository.
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// CreateAccount registers a new user with a bcrypt-hashed password.
// New accounts default to tipo "usuario" and ativo=true.
func (s *Service) CreateAccount(ctx context.Context, nome, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.repo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Nome:         nome,
		Email:        email,
		PasswordHash: string(hash),
		Tipo:         models.TipoUsuario,
		Ativo:        true,
	}
	return s.repo.Create(ctx, u)
}

// Authenticate verifies email/password and stamps ultimoLogin on success.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrBadCredentials
	}
	if !u.Ativo {
		return nil, ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	now := time.Now().UTC()
	u.UltimoLogin = &now
	_ = s.repo.Update(ctx, u.ID, bson.M{"ultimoLogin": now})
	return u, nil
}

// SetDisplayName updates the account display name (second step of registration).
func (s *Service) SetDisplayName(ctx context.Context, id, nome string) error {
	return s.repo.Update(ctx, id, bson.M{"nome": nome})
}

// SetAtivo toggles whether the account may sign in.
func (s *Service) SetAtivo(ctx context.Context, id string, ativo bool) error {
	return s.repo.Update(ctx, id, bson.M{"ativo": ativo})
}

// SetTipo changes the account role (admin screens only).
func (s *Service) SetTipo(ctx context.Context, id, tipo string) error {
	if tipo != models.TipoUsuario && tipo != models.TipoAdmin {
		return errors.New("unknown tipo: " + tipo)
	}
	return s.repo.Update(ctx, id, bson.M{"tipo": tipo})
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}

// DeleteAccount removes the account entirely. Used by admin screens and by
// registration compensation when the display-name step fails.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
