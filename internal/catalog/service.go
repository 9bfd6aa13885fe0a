package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/petloc/petloc/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/singleflight"
)

// Service serves the store catalog with a Redis read-through cache. Reads of
// the same product are collapsed with singleflight so a cache miss under load
// costs one Mongo query, not hundreds.
type Service struct {
	repo  ProductRepository
	cache *ProductCache
	sfg   singleflight.Group
}

func NewService(repo ProductRepository, cache *ProductCache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) GetProduct(ctx context.Context, id string) (*Produto, error) {
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		if s.cache != nil {
			p, err := s.cache.Get(ctx, id)
			if err == nil {
				return p, nil
			}
			if !errors.Is(err, ErrCacheMiss) {
				logger.Warnf("product cache get %s: %v", id, err)
			}
		}

		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			go func() {
				cctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := s.cache.Set(cctx, p); err != nil {
					logger.Warnf("product cache set %s: %v", id, err)
				}
			}()
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Produto), nil
}

func (s *Service) ListProducts(ctx context.Context, onlyAtivo bool) ([]*Produto, error) {
	return s.repo.List(ctx, onlyAtivo)
}

func (s *Service) CreateProduct(ctx context.Context, p *Produto) (*Produto, error) {
	return s.repo.Create(ctx, p)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, set bson.M) error {
	if err := s.repo.Update(ctx, id, set); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

func (s *Service) invalidate(id string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, id); err != nil {
		logger.Warnf("product cache invalidate %s: %v", id, err)
	}
}
