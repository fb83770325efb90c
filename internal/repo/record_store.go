package repo

import (
	"context"
	"fmt"

	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"golang.org/x/sync/errgroup"
)

// Snapshot is a consistent-enough view of the store taken at one point in time.
// Its slices are owned by the caller.
type Snapshot struct {
	Products   []models.Product
	Categories []models.Category
}

// RecordStore bundles the repositories the dashboard and list view read from.
type RecordStore struct {
	Products   ProductRepository
	Categories CategoryRepository
}

func NewRecordStore(products ProductRepository, categories CategoryRepository) *RecordStore {
	return &RecordStore{Products: products, Categories: categories}
}

// Snapshot fetches products and categories concurrently. Either failure fails the whole call.
func (s *RecordStore) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		products, err := s.Products.GetAll()
		if err != nil {
			return fmt.Errorf("fetch products: %w", err)
		}
		snap.Products = products
		return ctx.Err()
	})
	g.Go(func() error {
		categories, err := s.Categories.GetAll()
		if err != nil {
			return fmt.Errorf("fetch categories: %w", err)
		}
		snap.Categories = categories
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
