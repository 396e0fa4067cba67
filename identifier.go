package stubwire

import (
	"reflect"

	"github.com/stubwire/stubwire/internal/identifier"
)

// Identifier is the canonical reference to a dependency slot: a type,
// a string token, or a symbol token, optionally qualified by metadata.
// Two identifiers are equal iff their kind, underlying reference, and
// metadata (compared structurally) all match.
type Identifier = identifier.Identifier

// Kind discriminates the underlying reference of an Identifier.
type Kind = identifier.Kind

const (
	KindType   = identifier.KindType
	KindToken  = identifier.KindToken
	KindSymbol = identifier.KindSymbol
)

// Symbol is an opaque dependency token compared by identity. Symbols
// referenced from inject tags must be registered on the session with
// WithSymbols.
type Symbol = identifier.Symbol

// NewSymbol creates a fresh symbol token. Each call yields a distinct
// identity, regardless of name.
func NewSymbol(name string) *Symbol { return identifier.NewSymbol(name) }

// ForwardRef defers a dependency reference to break declaration-order
// cycles. It is dereferenced exactly once wherever an identifier is
// constructed: in overrides, lookups, and reflected metadata alike.
type ForwardRef = identifier.ForwardRef

// Type returns the reflect.Type of T, the usual way to name a
// type-identified dependency in overrides and lookups:
//
//	builder.Mock(stubwire.Type[*ServiceA]()).Final(fake)
//	double, err := unit.Ref.Get(stubwire.Type[Logger]())
func Type[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
