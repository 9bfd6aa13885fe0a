package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newTestService(t *testing.T) (*Service, *MemoryProductRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewMemoryProductRepository()
	return NewService(repo, NewProductCache(client, time.Minute)), repo
}

func seedProduct(t *testing.T, svc *Service) *Produto {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), &Produto{
		Nome: "Ração Premium", Preco: 89.9, Categoria: "alimentacao", Estoque: 12, Ativo: true,
	})
	require.NoError(t, err)
	return p
}

func TestGetProductUsesCacheOnSecondRead(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, svc)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ração Premium", got.Nome)
	require.Equal(t, 1, repo.Gets)

	// the cache set is async, wait for it to land before reading again
	require.Eventually(t, func() bool {
		_, err := svc.cache.Get(ctx, p.ID)
		return err == nil
	}, time.Second, 10*time.Millisecond)

	got2, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got2.ID)
	assert.Equal(t, 1, repo.Gets, "second read should be served from cache")
}

func TestGetProductNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetProduct(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateProductInvalidatesCache(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, svc)

	_, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateProduct(ctx, p.ID, bson.M{"preco": 99.9}))

	require.Eventually(t, func() bool {
		got, err := svc.GetProduct(ctx, p.ID)
		return err == nil && got.Preco == 99.9
	}, time.Second, 10*time.Millisecond, "stale price must not survive the update")
}

func TestDeleteProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, svc)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), ErrProductNotFound)

	require.Eventually(t, func() bool {
		_, err := svc.GetProduct(ctx, p.ID)
		return err == ErrProductNotFound
	}, time.Second, 10*time.Millisecond)
}

func TestListProductsFiltersInactive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc)
	_, err := svc.CreateProduct(ctx, &Produto{Nome: "Descontinuado", Preco: 5, Ativo: false})
	require.NoError(t, err)

	all, err := svc.ListProducts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ativos, err := svc.ListProducts(ctx, true)
	require.NoError(t, err)
	require.Len(t, ativos, 1)
	assert.Equal(t, "Ração Premium", ativos[0].Nome)
}
