// Package collection defines the procedure collection aggregate.
package collection

import (
	"fmt"
	"regexp"
	"time"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// FilterFields are the metadata fields indexed as TAG for equality filters.
var FilterFields = []string{"espace", "theme"}

// Collection is the procedure collection aggregate (immutable value object).
// One collection holds the whole corpus; the vector dimension is fixed at
// creation time and reindexing with a different dimension requires dropping
// and recreating the collection.
type Collection struct {
	name         string
	filterFields []string
	vectorDim    int
	createdAt    int64
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("collection name too long (max 64)")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("collection name must be alphanumeric with underscores and hyphens")
	}
	return nil
}

// New validates and creates a Collection.
// Name: ^[a-zA-Z0-9_-]+$, 1-64 chars. VectorDim: > 0.
func New(name string, vectorDim int) (Collection, error) {
	if err := validateName(name); err != nil {
		return Collection{}, err
	}
	if vectorDim <= 0 {
		return Collection{}, fmt.Errorf("vector dimension must be positive")
	}

	return Collection{
		name:         name,
		filterFields: FilterFields,
		vectorDim:    vectorDim,
		createdAt:    time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Collection without validation (storage hydration).
func Reconstruct(name string, filterFields []string, vectorDim int, createdAt int64) Collection {
	if len(filterFields) == 0 {
		filterFields = FilterFields
	}
	return Collection{
		name:         name,
		filterFields: filterFields,
		vectorDim:    vectorDim,
		createdAt:    createdAt,
	}
}

// Name returns the collection name.
func (c Collection) Name() string { return c.name }

// FilterFields returns the metadata fields usable in equality filters.
func (c Collection) FilterFields() []string { return c.filterFields }

// VectorDim returns the vector dimension.
func (c Collection) VectorDim() int { return c.vectorDim }

// CreatedAt returns the creation timestamp (unix millis).
func (c Collection) CreatedAt() int64 { return c.createdAt }

// HasFilterField checks whether a field may appear in a filter.
func (c Collection) HasFilterField(name string) bool {
	for _, f := range c.filterFields {
		if f == name {
			return true
		}
	}
	return false
}
