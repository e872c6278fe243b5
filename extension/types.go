package extension

import (
	"github.com/viant/x"
)

// Types is the registry of Go types used by tool inputs and outputs.
type Types struct {
	x.Registry
}

// Register adds a data type to the registry
func (t *Types) Register(dataType *x.Type) {
	t.Registry.Register(dataType)
}

// Lookup returns a data type from the registry or nil.
func (t *Types) Lookup(dataType string) *x.Type {
	return t.Registry.Lookup(dataType)
}

// NewTypes creates a type registry.
func NewTypes() *Types {
	return &Types{Registry: *x.NewRegistry()}
}
