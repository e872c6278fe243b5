// Package types declares the contract every executable tool service
// implements. A tool exposes named methods with typed inputs and outputs;
// the runner instantiates the declared types, populates the input from the
// raw argument map and invokes the executable.
package types

import (
	"context"
	"fmt"
	"reflect"
)

// Service is a tool service; each method is an opaque side-effecting
// function invoked through the lifecycle coordinator.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}

// Executable runs a single tool method with pre-built input and output
// instances.
type Executable func(ctx context.Context, input, output interface{}) error

// Signature describes a tool method with its input and output types.
type Signature struct {
	Name        string
	Description string
	Input       reflect.Type
	Output      reflect.Type
}

// Signatures is the ordered method set of a tool service.
type Signatures []Signature

// Lookup returns the signature with the given name or nil.
func (s Signatures) Lookup(name string) *Signature {
	for i := range s {
		if s[i].Name == name {
			return &s[i]
		}
	}
	return nil
}

// NewMethodNotFoundError reports an unknown method name.
func NewMethodNotFoundError(name string) error {
	return fmt.Errorf("method %v not found", name)
}

// NewInvalidInputError reports a method invoked with an unexpected input type.
func NewInvalidInputError(input interface{}) error {
	return fmt.Errorf("invalid input %T", input)
}

// NewInvalidOutputError reports a method invoked with an unexpected output type.
func NewInvalidOutputError(output interface{}) error {
	return fmt.Errorf("invalid output %T", output)
}
