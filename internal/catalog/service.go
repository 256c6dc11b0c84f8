package catalog

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jcmexdev/lahma-store/internal/pkg/kvstore"
)

// storageKey holds the whole product collection as one JSON array.
const storageKey = "products"

// Service is the single owner of all Product records. Every operation loads
// the full collection, applies the change and writes it back.
type Service struct {
	store kvstore.Store
}

// NewService wires the service to its store and seeds the starter catalog
// when the products key has never been written.
func NewService(ctx context.Context, store kvstore.Store) (*Service, error) {
	s := &Service{store: store}

	raw, err := store.Get(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		seed, err := seedProducts()
		if err != nil {
			return nil, err
		}
		if err := s.save(ctx, seed); err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "catalog seeded", "products", len(seed))
	}
	return s, nil
}

// List returns every product in storage order.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.load(ctx)
}

// Get looks a product up by id.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	products, err := s.load(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// Create appends a new product. The id must be unique within the catalog.
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}

	products, err := s.load(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, existing := range products {
		if existing.ID == p.ID {
			return Product{}, newValidationError("product id already exists: " + p.ID)
		}
	}

	products = append(products, p)
	if err := s.save(ctx, products); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Update replaces the stored product with the same id.
func (s *Service) Update(ctx context.Context, p Product) (Product, error) {
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}

	products, err := s.load(ctx)
	if err != nil {
		return Product{}, err
	}
	for i, existing := range products {
		if existing.ID == p.ID {
			products[i] = p
			if err := s.save(ctx, products); err != nil {
				return Product{}, err
			}
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// Delete removes the product with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	products, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i, existing := range products {
		if existing.ID == id {
			products = append(products[:i], products[i+1:]...)
			return s.save(ctx, products)
		}
	}
	return ErrNotFound
}

// SetAvailability flips the availability flag without touching other fields.
func (s *Service) SetAvailability(ctx context.Context, id string, available bool) (Product, error) {
	products, err := s.load(ctx)
	if err != nil {
		return Product{}, err
	}
	for i := range products {
		if products[i].ID == id {
			products[i].Available = &available
			if err := s.save(ctx, products); err != nil {
				return Product{}, err
			}
			return products[i], nil
		}
	}
	return Product{}, ErrNotFound
}

func (s *Service) load(ctx context.Context) ([]Product, error) {
	raw, err := s.store.Get(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		// An unreadable collection reads as empty rather than failing
		// every caller forever.
		slog.WarnContext(ctx, "catalog storage corrupt, treating as empty", "error", err)
		return nil, nil
	}
	return products, nil
}

func (s *Service) save(ctx context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return &kvstore.PersistenceError{Op: "marshal", Key: storageKey, Err: err}
	}
	return s.store.Set(ctx, storageKey, raw)
}
