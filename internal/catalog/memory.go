package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryProductRepository is an in-memory ProductRepository for tests.
type MemoryProductRepository struct {
	mu   sync.Mutex
	seq  int
	data map[string]*Produto

	// Gets counts GetByID calls, used to assert cache behavior.
	Gets int
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{data: make(map[string]*Produto)}
}

func (r *MemoryProductRepository) Create(_ context.Context, p *Produto) (*Produto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cp := *p
	if cp.ID == "" {
		cp.ID = fmt.Sprintf("prod-%d", r.seq)
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.data[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*Produto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Gets++
	p, ok := r.data[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryProductRepository) Update(_ context.Context, id string, set bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return ErrProductNotFound
	}
	for k, v := range set {
		switch k {
		case "nome":
			p.Nome = v.(string)
		case "descricao":
			p.Descricao = v.(string)
		case "preco":
			p.Preco = v.(float64)
		case "categoria":
			p.Categoria = v.(string)
		case "estoque":
			p.Estoque = v.(int)
		case "ativo":
			p.Ativo = v.(bool)
		case "imagem":
			p.Imagem = v.(string)
		}
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrProductNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryProductRepository) List(_ context.Context, onlyAtivo bool) ([]*Produto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*Produto{}
	for _, p := range r.data {
		if onlyAtivo && !p.Ativo {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
