// Package gomockgen backs stubwire's double generation with gomock.
// The native generator cannot fabricate interface implementations at
// runtime; this adapter serves interface shapes from mockgen-generated
// (or hand-written) mock constructors registered per session, and
// falls back to the native generator for everything else.
//
//	ctrl := gomock.NewController(t)
//	gen := gomockgen.New(ctrl)
//	gomockgen.Register[Store](gen, mocks.NewMockStore)
//
//	builder, err := stubwire.New[*Repo](NewRepo, stubwire.WithGenerator(gen))
//
// The registry is per-generator state: two sessions with separate
// generators never share mock identity, though they may share a
// controller.
package gomockgen

import (
	"reflect"
	"sync"

	"go.uber.org/mock/gomock"

	"github.com/stubwire/stubwire"
)

// Factory builds one mock instance bound to a controller.
type Factory func(ctrl *gomock.Controller) any

// Generator is a stubwire.Generator serving registered interface
// shapes from gomock factories.
type Generator struct {
	ctrl     *gomock.Controller
	fallback stubwire.Generator

	mu        sync.RWMutex
	factories map[reflect.Type]Factory
}

var _ stubwire.Generator = (*Generator)(nil)

// New creates a generator bound to ctrl, falling back to the native
// generator for unregistered shapes.
func New(ctrl *gomock.Controller) *Generator {
	return &Generator{
		ctrl:      ctrl,
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

// Register registers a typed mock constructor, the signature mockgen
// emits, for the interface T:
//
//	gomockgen.Register[Store](gen, mocks.NewMockStore)
func Register[T any, M any](g *Generator, factory func(*gomock.Controller) M) {
	g.RegisterType(stubwire.Type[T](), func(ctrl *gomock.Controller) any {
		return factory(ctrl)
	})
}

// Generate serves the shape from its registered factory when present,
// the fallback generator otherwise.
func (g *Generator) Generate(shape reflect.Type) (any, error) {
	if shape != nil {
		g.mu.RLock()
		factory, ok := g.factories[shape]
		g.mu.RUnlock()

		if ok {
			double := factory(g.ctrl)
			if double != nil && !reflect.TypeOf(double).AssignableTo(shape) {
				return nil, stubwire.TypeMismatchError{
					Expected: shape,
					Actual:   reflect.TypeOf(double),
					Context:  "gomock factory result",
				}
			}
			return double, nil
		}
	}

	return g.fallback.Generate(shape)
}
