// Package cart holds the line items of an active shopper session.
//
// A cart has no identity beyond its session: it is keyed by the session id
// the HTTP layer assigns, and it disappears when cleared. Product fields are
// snapshotted at add time so later catalog edits never reshape a cart.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/lahma-store/internal/catalog"
	"github.com/jcmexdev/lahma-store/internal/pkg/kvstore"
)

// Item is one product line. Quantity is in kilograms and never below 1.
type Item struct {
	ProductID string  `json:"id"`
	NameAr    string  `json:"nameAr"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// Subtotal is the frozen price times the quantity.
func (i Item) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Cart is the materialised state of one session's cart.
type Cart struct {
	Items []Item `json:"items"`
}

// TotalItems sums quantities across all lines, not the line count.
func (c Cart) TotalItems() int {
	var n int
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// TotalPrice sums price times quantity across all lines.
func (c Cart) TotalPrice() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.Subtotal()
	}
	return total
}

// Service persists carts through the key-value store, one key per session.
type Service struct {
	store kvstore.Store
}

func NewService(store kvstore.Store) *Service {
	return &Service{store: store}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// Get loads the cart for a session. A session that never added anything
// gets an empty cart.
func (s *Service) Get(ctx context.Context, sessionID string) (Cart, error) {
	raw, err := s.store.Get(ctx, cartKey(sessionID))
	if err != nil {
		return Cart{}, err
	}
	if len(raw) == 0 {
		return Cart{}, nil
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		slog.WarnContext(ctx, "cart storage corrupt, treating as empty",
			"session_id", sessionID, "error", err)
		return Cart{}, nil
	}
	return c, nil
}

// Add merges quantity into an existing line for the same product, or inserts
// a new snapshot line. Quantities of zero or less are ignored.
func (s *Service) Add(ctx context.Context, sessionID string, p catalog.Product, quantity int) (Cart, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	if quantity <= 0 {
		return c, nil
	}

	for i := range c.Items {
		if c.Items[i].ProductID == p.ID {
			c.Items[i].Quantity += quantity
			return c, s.save(ctx, sessionID, c)
		}
	}

	c.Items = append(c.Items, Item{
		ProductID: p.ID,
		NameAr:    p.NameAr,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  quantity,
	})
	return c, s.save(ctx, sessionID, c)
}

// Remove drops the line for a product id. Absent lines are not an error.
func (s *Service) Remove(ctx context.Context, sessionID, productID string) (Cart, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	for i, it := range c.Items {
		if it.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return c, s.save(ctx, sessionID, c)
		}
	}
	return c, nil
}

// UpdateQuantity sets the quantity directly, clamped to a minimum of 1 so a
// line can never go to zero or negative.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (Cart, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return c, s.save(ctx, sessionID, c)
		}
	}
	return c, nil
}

// Clear empties the session's cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, cartKey(sessionID))
}

func (s *Service) save(ctx context.Context, sessionID string, c Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return &kvstore.PersistenceError{Op: "marshal", Key: cartKey(sessionID), Err: err}
	}
	return s.store.Set(ctx, cartKey(sessionID), raw)
}
