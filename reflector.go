package stubwire

import (
	"github.com/stubwire/stubwire/internal/reflection"
)

// AccessKind tells whether a dependency reaches the unit through its
// constructor or through an injected property.
type AccessKind = reflection.AccessKind

const (
	AccessConstructor = reflection.AccessConstructor
	AccessProperty    = reflection.AccessProperty
)

// Descriptor is one declared dependency slot, produced by a Reflector
// and never mutated afterwards.
type Descriptor = reflection.Descriptor

// Manifest is the reflected dependency surface of one constructor:
// the ordered constructor dependencies, the unordered property
// dependencies, and the construction contract itself.
type Manifest = reflection.Manifest

// Reflector extracts a unit's declared dependencies from
// injection-framework metadata. Implementations must be total for a
// given constructor and stable across repeated calls within one
// process; anything unresolvable is a ReflectionError, never a guess.
//
// The native reflector reads plain Go constructors and inject tags;
// adapters provide variants for other metadata formats.
type Reflector interface {
	Reflect(ctor any) (*Manifest, error)
}

// NewReflector returns the native reflector. Symbols referenced by
// `inject:"sym:Name"` tags must be passed here.
func NewReflector(symbols ...*Symbol) Reflector {
	return reflection.New(symbols...)
}
