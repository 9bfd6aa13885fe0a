package cart

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for unit tests. FailDelete can
// name item ids whose deletion should fail, to exercise the clear-cart saga.
type MemoryRepository struct {
	mu         sync.Mutex
	items      map[string]CartItem
	nextID     int
	FailDelete map[string]bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: map[string]CartItem{}}
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []CartItem{}
	for _, it := range r.items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, item *CartItem) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = fmt.Sprintf("item_%d", r.nextID)
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = *item
	return item.ID, nil
}

func (r *MemoryRepository) UpdateQuantity(ctx context.Context, id string, quantidade int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return ErrItemNotFound
	}
	it.Quantidade = quantidade
	it.UpdatedAt = time.Now().UTC()
	r.items[id] = it
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailDelete[id] {
		return fmt.Errorf("delete failed for %s", id)
	}
	if _, ok := r.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

// Len reports how many items the repository currently holds.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
