package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newLoadedService(t *testing.T, repo Repository, owner string) *Service {
	t.Helper()
	s := NewService(repo, owner)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestAddToCart_MergesByProduct(t *testing.T) {
	repo := NewMemoryRepository()
	s := newLoadedService(t, repo, "user-1")
	ctx := context.Background()

	racao := Product{ID: "p1", Nome: "Ração", Preco: 90}

	require.NoError(t, s.AddToCart(ctx, racao))
	require.Len(t, s.Items(), 1)
	require.Equal(t, 1, s.Items()[0].Quantidade)
	require.Equal(t, 90.0, s.Total())

	// same product again: still one line, quantity 2
	require.NoError(t, s.AddToCart(ctx, racao))
	require.Len(t, s.Items(), 1)
	require.Equal(t, 2, s.Items()[0].Quantidade)
	require.Equal(t, 180.0, s.Total())

	// repeated adds never duplicate the line
	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddToCart(ctx, racao))
	}
	require.Len(t, s.Items(), 1)
	require.Equal(t, 5, s.Items()[0].Quantidade)
	require.Equal(t, 1, repo.Len(), "remote store must hold a single document per product")
}

func TestAddToCart_CountAdditive(t *testing.T) {
	s := newLoadedService(t, NewMemoryRepository(), "user-1")
	ctx := context.Background()

	require.Equal(t, 0, s.ItemCount())
	require.NoError(t, s.AddToCart(ctx, Product{ID: "p1", Nome: "Ração", Preco: 90}))
	require.Equal(t, 1, s.ItemCount())
	require.NoError(t, s.AddToCart(ctx, Product{ID: "p2", Nome: "Coleira", Preco: 30}))
	require.Equal(t, 2, s.ItemCount())
	require.NoError(t, s.AddToCart(ctx, Product{ID: "p1", Nome: "Ração", Preco: 90}))
	require.Equal(t, 3, s.ItemCount())
	require.Len(t, s.Items(), 2)
}

func TestUpdateQuantity_ExactReplace(t *testing.T) {
	s := newLoadedService(t, NewMemoryRepository(), "user-1")
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, Product{ID: "p1", Nome: "Ração", Preco: 90}))
	id := s.Items()[0].ID

	require.NoError(t, s.UpdateQuantity(ctx, id, 7))
	require.Equal(t, 7, s.Items()[0].Quantidade)
	require.Equal(t, 630.0, s.Total())
}

func TestUpdateQuantity_ZeroOrNegativeRemoves(t *testing.T) {
	s := newLoadedService(t, NewMemoryRepository(), "user-1")
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, Product{ID: "p1", Nome: "Ração", Preco: 90}))
	id := s.Items()[0].ID

	require.NoError(t, s.UpdateQuantity(ctx, id, 0))
	require.Empty(t, s.Items())

	require.NoError(t, s.AddToCart(ctx, Product{ID: "p2", Nome: "Coleira", Preco: 30}))
	id = s.Items()[0].ID
	require.NoError(t, s.UpdateQuantity(ctx, id, -3))
	require.Empty(t, s.Items())
}

func TestRemoveFromCart(t *testing.T) {
	s := newLoadedService(t, NewMemoryRepository(), "user-1")
	ctx := context.Background()

	// p1 qty 2 @ 90, p2 qty 1 @ 30
	require.NoError(t, s.AddToCart(ctx, Product{ID: "p1", Nome: "Ração", Preco: 90}))
	require.NoError(t, s.AddToCart(ctx, Product{ID: "p1", Nome: "Ração", Preco: 90}))
	require.NoError(t, s.AddToCart(ctx, Product{ID: "p2", Nome: "Coleira", Preco: 30}))

	var p2ID string
	for _, it := range s.Items() {
		if it.ProductID == "p2" {
			p2ID = it.ID
		}
	}
	require.NotEmpty(t, p2ID)

	require.NoError(t, s.RemoveFromCart(ctx, p2ID))
	require.Len(t, s.Items(), 1)
	require.Equal(t, 180.0, s.Total())
	require.Equal(t, 2, s.ItemCount())
}

func TestClearCart_AllSucceed(t *testing.T) {
	repo := NewMemoryRepository()
	s := newLoadedService(t, repo, "user-1")
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, Product{ID: "p1", Nome: "Ração", Preco: 90}))
	require.NoError(t, s.AddToCart(ctx, Product{ID: "p2", Nome: "Coleira", Preco: 30}))

	failed, err := s.ClearCart(ctx)
	require.NoError(t, err)
	require.Empty(t, failed)
	require.Empty(t, s.Items())
	require.Equal(t, 0, repo.Len())
}

func TestClearCart_PartialFailureKeepsFailedItems(t *testing.T) {
	repo := NewMemoryRepository()
	s := newLoadedService(t, repo, "user-1")
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, Product{ID: "p1", Nome: "Ração", Preco: 90}))
	require.NoError(t, s.AddToCart(ctx, Product{ID: "p2", Nome: "Coleira", Preco: 30}))

	var p2ID string
	for _, it := range s.Items() {
		if it.ProductID == "p2" {
			p2ID = it.ID
		}
	}
	repo.FailDelete = map[string]bool{p2ID: true}

	failed, err := s.ClearCart(ctx)
	require.Error(t, err)
	require.Len(t, failed, 1)
	require.Equal(t, p2ID, failed[0].ID)

	// only the failed item survives, locally and remotely
	require.Len(t, s.Items(), 1)
	require.Equal(t, "p2", s.Items()[0].ProductID)
	require.Equal(t, 1, repo.Len())

	// retrying just the failed subset drains the cart
	repo.FailDelete = nil
	failed, err = s.ClearCart(ctx)
	require.NoError(t, err)
	require.Empty(t, failed)
	require.Empty(t, s.Items())
}

func TestOwnerlessCart_IsEmptyNoOp(t *testing.T) {
	repo := NewMemoryRepository()
	s := NewService(repo, "")

	require.False(t, s.Loading(), "ownerless cart must not report loading")
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.AddToCart(context.Background(), Product{ID: "p1", Nome: "Ração", Preco: 90}))
	require.Empty(t, s.Items())
	require.Equal(t, 0, repo.Len(), "ownerless cart must not write to the store")
	require.Equal(t, 0.0, s.Total())
}

func TestTotal_Idempotent(t *testing.T) {
	s := newLoadedService(t, NewMemoryRepository(), "user-1")
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, Product{ID: "p1", Nome: "Ração", Preco: 90}))
	require.Equal(t, s.Total(), s.Total())
	require.Equal(t, s.ItemCount(), s.ItemCount())
}
