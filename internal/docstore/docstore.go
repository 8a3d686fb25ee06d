// Package docstore provides a small path-addressed document store: JSON
// documents keyed by slash-separated paths like "users/<id>" or
// "users/<id>/mealPlans/<planId>".
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no document exists at the requested path.
var ErrNotFound = errors.New("document not found")

// Store is the document-store collaborator consumed by the planner and the
// notification dispatcher.
type Store interface {
	// Get decodes the document at path into v.
	Get(ctx context.Context, path string, v any) error

	// Set writes v as the document at path. With merge set, top-level
	// fields of v are merged into the existing document instead of
	// replacing it.
	Set(ctx context.Context, path string, v any, merge bool) error

	// RemoveElements removes exactly the given elements from the named
	// string-array field of the document at path, atomically with respect
	// to concurrent writers.
	RemoveElements(ctx context.Context, path, field string, elements []string) error
}
