package users

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/petloc/petloc/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// MemoryUserRepository is an in-memory UserRepository for tests and local
// development without Mongo.
type MemoryUserRepository struct {
	mu   sync.Mutex
	seq  int
	data map[string]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{data: make(map[string]*models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if existing.Email == u.Email {
			return nil, ErrEmailTaken
		}
	}
	r.seq++
	cp := *u
	cp.ID = fmt.Sprintf("user-%d", r.seq)
	now := time.Now().UTC()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	r.data[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.data {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, id string, set bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.data[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	for k, v := range set {
		switch k {
		case "nome":
			u.Nome = v.(string)
		case "tipo":
			u.Tipo = v.(string)
		case "ativo":
			u.Ativo = v.(bool)
		case "ultimoLogin":
			t := v.(time.Time)
			u.UltimoLogin = &t
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return fmt.Errorf("user %s not found", id)
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.data))
	for _, u := range r.data {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
