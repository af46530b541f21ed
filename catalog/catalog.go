// Package catalog serves the menu: categories, products and the option lists
// the configurator needs.
package catalog

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/pizzeria/cache"
	"github.com/ray-remotestate/pizzeria/configurator"
	"github.com/ray-remotestate/pizzeria/models"
)

type Repository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

type Cache interface {
	Get(ctx context.Context) (*cache.Snapshot, bool, error)
	Set(ctx context.Context, s *cache.Snapshot) error
	Invalidate(ctx context.Context) error
}

type Service struct {
	repo  Repository
	cache Cache
}

// NewService builds a catalog service. c may be nil, in which case every
// read goes to the repository.
func NewService(repo Repository, c Cache) *Service {
	return &Service{repo: repo, cache: c}
}

// Snapshot returns the whole catalog with option lists attached. Cache
// failures are logged and fall through to the repository.
func (s *Service) Snapshot(ctx context.Context) (*cache.Snapshot, error) {
	if s.cache != nil {
		snap, ok, err := s.cache.Get(ctx)
		if err != nil {
			logrus.WithError(err).Warn("catalog cache read failed")
		}
		if ok {
			attachExtras(snap.Products)
			return snap, nil
		}
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products = knownFamilies(products)
	attachExtras(products)

	snap := &cache.Snapshot{Categories: categories, Products: products}
	if s.cache != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			logrus.WithError(err).Warn("catalog cache write failed")
		}
	}
	return snap, nil
}

// Refresh drops the cached snapshot so the next read goes to the
// repository.
func (s *Service) Refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

// knownFamilies drops products no configurator plan exists for.
func knownFamilies(products []models.Product) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !p.Family.IsValid() {
			logrus.WithFields(logrus.Fields{"product_id": p.ID, "family": p.Family}).Warn("skipping product with unknown family")
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Categories, nil
}

// ListProducts returns the available products, all of them or only those of
// categoryID when it is non-nil.
func (s *Service) ListProducts(ctx context.Context, categoryID *int64) ([]models.Product, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(snap.Products))
	for _, p := range snap.Products {
		if !p.IsAvailable {
			continue
		}
		if categoryID != nil && p.CategoryID != *categoryID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) Product(ctx context.Context, id int64) (models.Product, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return models.Product{}, err
	}
	return findProduct(snap.Products, id)
}

// Configurator returns a product together with the option lists its steps
// draw from. Only bundles draw from shared lists.
func (s *Service) Configurator(ctx context.Context, id int64) (models.Product, configurator.Options, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return models.Product{}, configurator.Options{}, err
	}
	p, err := findProduct(snap.Products, id)
	if err != nil {
		return models.Product{}, configurator.Options{}, err
	}
	if !p.Family.IsBundle() {
		return p, configurator.Options{}, nil
	}
	return p, ConfiguratorOptions(snap.Products), nil
}

func findProduct(products []models.Product, id int64) (models.Product, error) {
	for _, p := range products {
		if p.ID != id {
			continue
		}
		if !p.IsAvailable {
			return models.Product{}, models.ErrUnavailable
		}
		return p, nil
	}
	return models.Product{}, models.ErrNotFound
}
