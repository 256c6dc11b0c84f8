// Package catalog owns the sellable products of the shop.
package catalog

import (
	"errors"
	"strings"
)

// Category is the closed set of product categories.
type Category string

const (
	CategoryBeef    Category = "beef"
	CategoryLamb    Category = "lamb"
	CategoryChicken Category = "chicken"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryBeef, CategoryLamb, CategoryChicken:
		return true
	}
	return false
}

// Product is a sellable item. Price is per kilogram. Available defaults to
// true when a stored record predates the field.
type Product struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	NameAr      string   `json:"nameAr" yaml:"nameAr"`
	Description string   `json:"description" yaml:"description"`
	Price       float64  `json:"price" yaml:"price"`
	Category    Category `json:"category" yaml:"category"`
	Image       string   `json:"image" yaml:"image"`
	Available   *bool    `json:"available,omitempty" yaml:"available,omitempty"`
}

// IsAvailable resolves the optional Available field to its default.
func (p Product) IsAvailable() bool {
	return p.Available == nil || *p.Available
}

// ErrNotFound is returned when no product matches the requested id.
var ErrNotFound = errors.New("catalog: product not found")

// ValidationError communicates rule violations back to the HTTP handlers.
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

func validateProduct(p Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return newValidationError("product id is required")
	}
	if strings.TrimSpace(p.NameAr) == "" && strings.TrimSpace(p.Name) == "" {
		return newValidationError("product name is required")
	}
	if p.Price < 0 {
		return newValidationError("price must not be negative")
	}
	if !p.Category.Valid() {
		return newValidationError("unknown category " + string(p.Category))
	}
	return nil
}
