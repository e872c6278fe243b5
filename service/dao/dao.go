// Package dao holds the small vocabulary shared by every store
// implementation: listing parameters, sentinel errors and the generic
// persistence contract concrete stores build on.
package dao

import (
	"context"
	"errors"
)

// Sentinel errors shared by store implementations so callers can rely on
// errors.Is instead of string comparisons.
var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates an empty or otherwise unusable key.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to persist nil.
	ErrNilEntity = errors.New("dao: nil entity")
)

// Parameter narrows a listing; the TraceID parameter scopes action listings
// to a single conversation.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a listing parameter; multiple values turn the
// parameter into a set membership test.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}

// Service is the generic persistence contract concrete stores satisfy for
// their record type.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error
	Load(ctx context.Context, id K) (*T, error)
	Delete(ctx context.Context, id K) error
	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
