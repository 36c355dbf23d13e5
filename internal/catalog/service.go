package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/NewWebie01/capstone-uniasia-system-sub001/internal/shared"
)

// RepositoryPort defines data access methods for the catalog.
type RepositoryPort interface {
	UpsertProduct(ctx context.Context, input UpsertProductInput) (*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
	SnapshotProducts(ctx context.Context, ids []int64) (map[int64]Snapshot, error)
	AdjustStock(ctx context.Context, id int64, delta int) error
}

// Service handles catalog logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// UpsertProduct creates or updates a catalog entry keyed by SKU.
func (s *Service) UpsertProduct(ctx context.Context, input UpsertProductInput) (*Product, error) {
	if input.SKU == "" {
		return nil, errors.New("sku required")
	}
	if input.Name == "" {
		return nil, errors.New("name required")
	}
	if input.UnitPrice < 0 {
		return nil, errors.New("unit price must not be negative")
	}
	return s.repo.UpsertProduct(ctx, input)
}

// GetProduct returns a single product.
func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// ListProducts returns products with pagination metadata.
func (s *Service) ListProducts(ctx context.Context, req ListProductsRequest) ([]Product, shared.Pagination, error) {
	items, total, err := s.repo.ListProducts(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// SnapshotProducts returns the current price and stock for the given IDs.
// Every requested ID must exist so checkout never silently drops a cart line.
func (s *Service) SnapshotProducts(ctx context.Context, ids []int64) (map[int64]Snapshot, error) {
	if len(ids) == 0 {
		return map[int64]Snapshot{}, nil
	}
	snaps, err := s.repo.SnapshotProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := snaps[id]; !ok {
			return nil, fmt.Errorf("product %d not found", id)
		}
	}
	return snaps, nil
}

// AdjustStock moves stock by delta, negative to deduct.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) error {
	if delta == 0 {
		return nil
	}
	return s.repo.AdjustStock(ctx, id, delta)
}
