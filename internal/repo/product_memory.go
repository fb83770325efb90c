package repo

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
)

// InMemoryProductRepository is an in-memory implementation of ProductRepository.
// Reads return deep copies, so callers may hold on to a result as an immutable snapshot.
type InMemoryProductRepository struct {
	mu         sync.RWMutex
	products   []models.Product
	categories CategoryRepository
	now        func() time.Time
}

// NewInMemoryProductRepository creates a repository. When categories is non-nil the
// denormalized category name of each product is refreshed from it on read.
func NewInMemoryProductRepository(categories CategoryRepository) *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products:   []models.Product{},
		categories: categories,
		now:        time.Now,
	}
}

// SetClock replaces the clock used to stamp stock events.
func (r *InMemoryProductRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

func (r *InMemoryProductRepository) Create(p models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.products {
		if existing.Name == p.Name {
			return models.Product{}, ErrDuplicatedValueUnique
		}
	}
	if p.Quantity < 0 {
		return models.Product{}, ErrInvalidQuantityChange
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now
	p.StockHistory = nil
	if p.Quantity != 0 {
		p.StockHistory = []models.StockEvent{{PreviousQty: 0, NewQty: p.Quantity, Date: now}}
	}
	r.products = append(r.products, p)
	return r.resolve(p), nil
}

func (r *InMemoryProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, r.resolve(p))
	}
	return out, nil
}

func (r *InMemoryProductRepository) GetByID(id uuid.UUID) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return r.resolve(r.products[i]), nil
	}
	return models.Product{}, ErrProductNotFound
}

func (r *InMemoryProductRepository) GetByName(name string) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Name == name {
			return r.resolve(p), nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

func (r *InMemoryProductRepository) Update(p models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(p.ID)
	if i < 0 {
		return models.Product{}, ErrProductNotFound
	}
	for j, existing := range r.products {
		if j != i && existing.Name == p.Name {
			return models.Product{}, ErrDuplicatedValueUnique
		}
	}
	if p.Quantity < 0 {
		return models.Product{}, ErrInvalidQuantityChange
	}

	stored := r.products[i]
	now := r.now()
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = now
	p.StockHistory = stored.StockHistory
	if p.Quantity != stored.Quantity {
		p.StockHistory = append(slices.Clip(p.StockHistory), models.StockEvent{
			PreviousQty: stored.Quantity,
			NewQty:      p.Quantity,
			Date:        now,
		})
	}
	r.products[i] = p
	return r.resolve(p), nil
}

func (r *InMemoryProductRepository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrProductNotFound
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	return nil
}

func (r *InMemoryProductRepository) AdjustQuantity(id uuid.UUID, delta int) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Product{}, ErrProductNotFound
	}
	p := r.products[i]
	newQty := p.Quantity + delta
	if newQty < 0 {
		return models.Product{}, ErrInvalidQuantityChange
	}
	now := r.now()
	p.StockHistory = append(slices.Clip(p.StockHistory), models.StockEvent{
		PreviousQty: p.Quantity,
		NewQty:      newQty,
		Date:        now,
	})
	p.Quantity = newQty
	p.UpdatedAt = now
	r.products[i] = p
	return r.resolve(p), nil
}

func (r *InMemoryProductRepository) History(id uuid.UUID) ([]models.StockEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrProductNotFound
	}
	return slices.Clone(r.products[i].StockHistory), nil
}

// AddStockEvent appends a raw event without touching the quantity. Used to seed fixtures.
func (r *InMemoryProductRepository) AddStockEvent(id uuid.UUID, e models.StockEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrProductNotFound
	}
	r.products[i].StockHistory = append(slices.Clip(r.products[i].StockHistory), e)
	return nil
}

func (r *InMemoryProductRepository) Clear() {
	r.mu.Lock()
	r.products = []models.Product{}
	r.mu.Unlock()
}

func (r *InMemoryProductRepository) indexOf(id uuid.UUID) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// resolve returns a copy of p with its own history slice and the current category name.
func (r *InMemoryProductRepository) resolve(p models.Product) models.Product {
	p.StockHistory = slices.Clone(p.StockHistory)
	if p.StockHistory == nil {
		p.StockHistory = []models.StockEvent{}
	}
	if r.categories != nil && p.CategoryID != uuid.Nil {
		if c, err := r.categories.GetByID(p.CategoryID); err == nil {
			p.Category = c.Name
		}
	}
	return p
}
