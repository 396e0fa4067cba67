package stubwire

import (
	"github.com/google/uuid"
)

// Option configures a builder session.
type Option interface {
	applyOption(*options)
}

type options struct {
	reflector Reflector
	generator Generator
	symbols   []*Symbol
}

type optionFunc func(*options)

func (f optionFunc) applyOption(o *options) { f(o) }

// WithReflector selects the metadata reflector for this session. The
// default is the native reflector; adapters supply variants for other
// injection-framework metadata formats.
func WithReflector(r Reflector) Option {
	return optionFunc(func(o *options) { o.reflector = r })
}

// WithGenerator selects the double generator for this session. The
// default is the native reflection-based generator.
func WithGenerator(g Generator) Option {
	return optionFunc(func(o *options) { o.generator = g })
}

// WithSymbols registers symbol tokens with the session's native
// reflector so `inject:"sym:Name"` tags can resolve them. It has no
// effect when WithReflector supplies a custom reflector.
func WithSymbols(symbols ...*Symbol) Option {
	return optionFunc(func(o *options) { o.symbols = append(o.symbols, symbols...) })
}

// Builder is one mocking session for a unit under test. It owns its
// override ledger and produces independently-identitied doubles; two
// sessions never share state, even for the same constructor.
//
// A Builder is consumed by Compile.
type Builder[T any] struct {
	session   string
	graph     *Graph
	generator Generator
	ledger    *ledger
	consumed  bool
}

// New starts a builder session for the unit produced by ctor, which
// must be a function returning (T) or (T, error). Reflection happens
// here, so declaration mistakes (unresolvable dependencies, duplicate
// identifiers) surface before any override is registered.
func New[T any](ctor any, opts ...Option) (*Builder[T], error) {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt.applyOption(&o)
		}
	}

	if o.reflector == nil {
		o.reflector = NewReflector(o.symbols...)
	}
	if o.generator == nil {
		o.generator = NewGenerator()
	}

	manifest, err := o.reflector.Reflect(ctor)
	if err != nil {
		return nil, err
	}

	want := Type[T]()
	if !manifest.Unit.AssignableTo(want) {
		return nil, TypeMismatchError{
			Expected: want,
			Actual:   manifest.Unit,
			Context:  "unit type",
		}
	}

	graph, err := buildGraph(manifest)
	if err != nil {
		return nil, err
	}

	return &Builder[T]{
		session:   uuid.NewString(),
		graph:     graph,
		generator: o.generator,
		ledger:    newLedger(),
	}, nil
}

// SessionID returns the unique identifier of this builder session.
func (b *Builder[T]) SessionID() string { return b.session }

// Graph returns the reflected dependency graph of the unit under test.
func (b *Builder[T]) Graph() *Graph { return b.graph }

// Mock begins an override for the dependency named by ref (a
// reflect.Type, string token, *Symbol, or ForwardRef) and at most one
// metadata qualifier. The override is completed with Using or Final;
// a Mock left incomplete fails Compile with a FinalizationError.
//
// Mocking an identifier that is already overridden replaces the
// earlier entry: the ledger always reflects the last call.
func (b *Builder[T]) Mock(ref any, metadata ...any) *MockBuilder[T] {
	mb := &MockBuilder[T]{builder: b}

	if b.consumed {
		mb.err = ErrBuilderConsumed
		return mb
	}

	id, err := resolveIdentifier(ref, metadata)
	if err != nil {
		mb.err = err
		return mb
	}

	if !b.graph.Contains(id) {
		mb.err = IdentifierNotFoundError{
			Identifier: id,
			Declared:   b.graph.Identifiers(),
		}
		return mb
	}

	mb.id = id
	b.ledger.put(&overrideEntry{id: id, kind: overridePending})
	return mb
}

// MockBuilder completes a single override begun with Mock.
type MockBuilder[T any] struct {
	builder *Builder[T]
	id      Identifier
	err     error
}

// Using attaches an implementation-stub override: at compile time the
// factory's partial value is merged over a freshly generated base
// double, so methods it does not supply remain automatic stubs.
func (m *MockBuilder[T]) Using(factory ImplFactory) error {
	if m.err != nil {
		return m.err
	}
	if m.builder.consumed {
		return ErrBuilderConsumed
	}
	if factory == nil {
		return ErrNilOverride
	}
	m.builder.ledger.put(&overrideEntry{id: m.id, kind: overrideImpl, factory: factory})
	return nil
}

// Final attaches a fixed value override, wired into the unit exactly
// as given.
func (m *MockBuilder[T]) Final(value any) error {
	if m.err != nil {
		return m.err
	}
	if m.builder.consumed {
		return ErrBuilderConsumed
	}
	m.builder.ledger.put(&overrideEntry{id: m.id, kind: overrideFinal, value: value})
	return nil
}

// Unit is a compiled unit under test: the constructed instance and the
// lookup table of every double wired into it.
type Unit[T any] struct {
	// Instance is the unit, constructed with real construction
	// semantics and synthetic collaborators.
	Instance T

	// Ref maps each declared identifier to the double actually wired
	// into Instance.
	Ref *UnitReference
}
