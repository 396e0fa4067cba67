// Package testifymock backs stubwire's double generation with
// testify mocks. Interface shapes are served from registered mock
// constructors; everything else falls back to the native generator.
//
//	gen := testifymock.New()
//	testifymock.Register[Store](gen, func() *StoreMock { return &StoreMock{} })
//
//	builder, err := stubwire.New[*Repo](NewRepo, stubwire.WithGenerator(gen))
//	unit, err := builder.Compile()
//
//	store, err := stubwire.RefAs[*StoreMock](unit.Ref, stubwire.Type[Store]())
//	store.On("Load", "id").Return("value", nil)
package testifymock

import (
	"reflect"
	"sync"

	"github.com/stubwire/stubwire"
)

// Factory builds one fresh mock instance. Factories must not share
// state between calls; every Generate yields an independent double.
type Factory func() any

// Generator is a stubwire.Generator serving registered interface
// shapes from testify mock factories.
type Generator struct {
	fallback stubwire.Generator

	mu        sync.RWMutex
	factories map[reflect.Type]Factory
}

var _ stubwire.Generator = (*Generator)(nil)

// New creates an empty registry falling back to the native generator.
func New() *Generator {
	return &Generator{
		fallback:  stubwire.NewGenerator(),
		factories: make(map[reflect.Type]Factory),
	}
}

// RegisterType registers a factory for an exact shape.
func (g *Generator) RegisterType(shape reflect.Type, factory Factory) {
	g.mu.Lock()
	g.factories[shape] = factory
	g.mu.Unlock()
}

// Register registers a typed mock constructor for the interface T.
func Register[T any, M any](g *Generator, factory func() M) {
	g.RegisterType(stubwire.Type[T](), func() any { return factory() })
}

// Generate serves the shape from its registered factory when present,
// the fallback generator otherwise.
func (g *Generator) Generate(shape reflect.Type) (any, error) {
	if shape != nil {
		g.mu.RLock()
		factory, ok := g.factories[shape]
		g.mu.RUnlock()

		if ok {
			double := factory()
			if double != nil && !reflect.TypeOf(double).AssignableTo(shape) {
				return nil, stubwire.TypeMismatchError{
					Expected: shape,
					Actual:   reflect.TypeOf(double),
					Context:  "testify mock factory result",
				}
			}
			return double, nil
		}
	}

	return g.fallback.Generate(shape)
}
