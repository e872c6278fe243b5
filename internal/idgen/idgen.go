package idgen

import "github.com/google/uuid"

var newFunc = func() string { return uuid.New().String() }

// New returns a fresh globally unique identifier.
func New() string { return newFunc() }

// Stub replaces the generator and returns a function restoring the previous
// one.
func Stub(generate func() string) func() {
	previous := newFunc
	newFunc = generate
	return func() { newFunc = previous }
}
