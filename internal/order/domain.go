// Package order owns placed orders: their creation from a cart snapshot,
// their status lifecycle and their persistence.
package order

import (
	"errors"
	"strings"
	"time"
)

// Item is a frozen line of a placed order. Price and quantity are fixed at
// order time; later catalog edits never touch them.
type Item struct {
	ProductID string  `json:"id"`
	NameAr    string  `json:"nameAr"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// Subtotal is price times quantity.
func (i Item) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Location is an optional coordinate pair from the map picker.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Customer is the checkout form snapshot stored with the order.
type Customer struct {
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Address  string    `json:"address"`
	Notes    string    `json:"notes,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// Order is an immutable purchase record. Only Status and Seen change after
// creation, and only through the repository.
type Order struct {
	ID       string    `json:"id"`
	Customer Customer  `json:"customer"`
	Items    []Item    `json:"items"`
	Total    float64   `json:"total"`
	Date     time.Time `json:"date"`
	Status   Status    `json:"status"`
	Seen     bool      `json:"seen"`
}

// ErrNotFound is returned when no order matches the requested id.
var ErrNotFound = errors.New("order: not found")

// ErrInvalidTransition is returned when a status change would move backward
// along the happy path or leave a terminal state.
var ErrInvalidTransition = errors.New("order: invalid status transition")

// ValidationError communicates checkout rule violations. The operation is
// aborted with no partial state change.
type ValidationError struct {
	message string
}

func (e ValidationError) Error() string { return e.message }

func newValidationError(msg string) error {
	return ValidationError{message: msg}
}

// IsValidation distinguishes business failures from infrastructure ones.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

func validateCheckout(items []Item, c Customer) error {
	if len(items) == 0 {
		return newValidationError("cart is empty")
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return newValidationError("item quantity must be at least 1")
		}
		if it.Price < 0 {
			return newValidationError("item price must not be negative")
		}
	}
	if strings.TrimSpace(c.FullName) == "" {
		return newValidationError("full name is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return newValidationError("email is required")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return newValidationError("phone is required")
	}
	if strings.TrimSpace(c.Address) == "" {
		return newValidationError("address is required")
	}
	return nil
}
