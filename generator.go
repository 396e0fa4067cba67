package stubwire

import (
	"reflect"

	"github.com/stubwire/stubwire/internal/stubgen"
)

// Stub is the bare callable double wired into token-identified slots
// with no discoverable structure. It accepts anything and returns nil.
type Stub = stubgen.Stub

// Generator fabricates a double for a declared shape. A nil shape
// stands for "no discoverable structure" and must yield a bare Stub.
//
// Generation must be pure with respect to the shape: two calls never
// share state, so doubles fabricated for independent sessions never
// share stub identity.
type Generator interface {
	Generate(shape reflect.Type) (any, error)
}

// NewGenerator returns the native reflection-based generator: func
// shapes become zero-returning callables, struct shapes are
// recursively stubbed, primitives stay zero-value placeholders, and
// bare interface shapes fail fast with a GenerationError.
func NewGenerator() Generator {
	return nativeGenerator{}
}

type nativeGenerator struct{}

func (nativeGenerator) Generate(shape reflect.Type) (any, error) {
	v, err := stubgen.Double(shape)
	if err != nil {
		return nil, GenerationError{Shape: shape, Cause: err}
	}
	return v.Interface(), nil
}
