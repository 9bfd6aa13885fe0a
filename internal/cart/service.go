package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/petloc/petloc/pkg/metrics"
)

// Service maintains one owner's cart: a local mirror of the owner's cart
// documents plus the merge-by-product invariant and derived aggregates.
//
// The mirror is loaded once (no standing subscription); local mutations are
// applied optimistically after the corresponding remote call succeeds. A
// second tab or device is not reflected until a new Service is built. The
// local lookup in AddToCart is intentional: it avoids a remote round trip and
// the race window it would open, on the assumption that a single page instance
// is the sole writer for this owner.
type Service struct {
	mu      sync.Mutex
	repo    Repository
	ownerID string
	items   []CartItem
	loaded  bool
}

// NewService builds a cart service for the given owner. An empty owner yields
// a permanently empty, no-op cart: a cart cannot exist without an owner.
func NewService(repo Repository, ownerID string) *Service {
	s := &Service{repo: repo, ownerID: ownerID}
	if ownerID == "" {
		s.loaded = true
	}
	return s
}

// Load performs the one-shot initial query for the owner's cart documents.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownerID == "" {
		return nil
	}
	items, err := s.repo.ListByOwner(ctx, s.ownerID)
	if err != nil {
		return err
	}
	s.items = items
	s.loaded = true
	return nil
}

// Loading reports whether the initial load has not completed yet.
func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.loaded
}

// Items returns a copy of the local mirror.
func (s *Service) Items() []CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// AddToCart merges the product into the cart: an existing line for the same
// product has its quantidade incremented by 1, otherwise a new line with
// quantidade 1 is created. Stock is not checked here.
func (s *Service) AddToCart(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownerID == "" {
		return nil
	}
	for i, it := range s.items {
		if it.ProductID == p.ID {
			newQ := it.Quantidade + 1
			if err := s.repo.UpdateQuantity(ctx, it.ID, newQ); err != nil {
				return err
			}
			s.items[i].Quantidade = newQ
			metrics.CartMutations.WithLabelValues("add").Inc()
			return nil
		}
	}
	item := CartItem{
		ProductID:  p.ID,
		Nome:       p.Nome,
		Preco:      p.Preco,
		Quantidade: 1,
		Imagem:     p.Imagem,
		OwnerID:    s.ownerID,
	}
	id, err := s.repo.Insert(ctx, &item)
	if err != nil {
		return err
	}
	item.ID = id
	s.items = append(s.items, item)
	metrics.CartMutations.WithLabelValues("add").Inc()
	return nil
}

// UpdateQuantity sets the exact quantidade for an item. A zero or negative
// quantidade means "remove", not an error.
func (s *Service) UpdateQuantity(ctx context.Context, itemID string, quantidade int) error {
	if quantidade <= 0 {
		return s.RemoveFromCart(ctx, itemID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.UpdateQuantity(ctx, itemID, quantidade); err != nil {
		return err
	}
	for i, it := range s.items {
		if it.ID == itemID {
			s.items[i].Quantidade = quantidade
			break
		}
	}
	metrics.CartMutations.WithLabelValues("update").Inc()
	return nil
}

// RemoveFromCart deletes one item remotely and drops it from the mirror.
func (s *Service) RemoveFromCart(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return err
	}
	s.removeLocked(itemID)
	metrics.CartMutations.WithLabelValues("remove").Inc()
	return nil
}

// ClearCart deletes every item as a saga: deletions run in parallel, the
// mirror drops only the items whose deletion succeeded, and the failed subset
// is returned so the caller can retry just those.
func (s *Service) ClearCart(ctx context.Context) ([]CartItem, error) {
	s.mu.Lock()
	snapshot := make([]CartItem, len(s.items))
	copy(snapshot, s.items)
	s.mu.Unlock()

	if len(snapshot) == 0 {
		return nil, nil
	}

	type result struct {
		item CartItem
		err  error
	}
	results := make([]result, len(snapshot))
	var wg sync.WaitGroup
	for i, it := range snapshot {
		wg.Add(1)
		go func(i int, it CartItem) {
			defer wg.Done()
			results[i] = result{item: it, err: s.repo.Delete(ctx, it.ID)}
		}(i, it)
	}
	wg.Wait()

	var failed []CartItem
	s.mu.Lock()
	for _, r := range results {
		if r.err != nil {
			failed = append(failed, r.item)
			continue
		}
		s.removeLocked(r.item.ID)
	}
	s.mu.Unlock()
	metrics.CartMutations.WithLabelValues("clear").Inc()

	if len(failed) > 0 {
		ids := make([]string, len(failed))
		for i, it := range failed {
			ids[i] = it.ID
		}
		return failed, fmt.Errorf("failed to remove %d cart item(s): %s", len(failed), strings.Join(ids, ", "))
	}
	return nil, nil
}

// Total is the sum of preco*quantidade over the local mirror. Pure, no remote calls.
func (s *Service) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, it := range s.items {
		total += it.Preco * float64(it.Quantidade)
	}
	return total
}

// ItemCount is the sum of quantidade over the local mirror.
func (s *Service) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, it := range s.items {
		n += it.Quantidade
	}
	return n
}

func (s *Service) removeLocked(itemID string) {
	for i, it := range s.items {
		if it.ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}
