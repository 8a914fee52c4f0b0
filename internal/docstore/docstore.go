package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// Error variables
var (
	// ErrNotFound is returned when no document matches the filter.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when an insert violates a uniqueness constraint.
	ErrConflict = errors.New("document already exists")
	// ErrUnavailable is returned when the store cannot be reached or a call
	// exceeds its time budget. It is always distinct from ErrNotFound.
	ErrUnavailable = errors.New("document store unavailable")
)

// Store is the document persistence collaborator. Operations are scoped to a
// named collection and work on semi-structured JSON documents. Filters match
// by containment: a document matches when it contains every filter field.
type Store interface {
	// FindOne returns the first document matching the filter or ErrNotFound.
	FindOne(ctx context.Context, collection string, filter map[string]any) (json.RawMessage, error)
	// FindAll returns all documents matching the filter in insertion order.
	FindAll(ctx context.Context, collection string, filter map[string]any) ([]json.RawMessage, error)
	// InsertOne persists a new document and returns the assigned identifier.
	InsertOne(ctx context.Context, collection string, doc any) (string, error)
	// UpdateOne merges newValues into the first matching document and reports
	// whether a document was updated.
	UpdateOne(ctx context.Context, collection string, filter map[string]any, newValues any) (bool, error)
	// DeleteOne removes the first matching document and reports whether a
	// document was deleted.
	DeleteOne(ctx context.Context, collection string, filter map[string]any) (bool, error)
	// NextSeq atomically increments and returns the per-collection counter.
	// Two concurrent calls never observe the same value.
	NextSeq(ctx context.Context, collection string) (int64, error)
}
