// Package identifier implements the canonical representation of a
// dependency reference: a type, a string token, or a symbol token,
// optionally qualified by structurally-compared metadata.
//
// Identifiers are immutable value types. Equality is exact: kind,
// underlying reference, and metadata must all match. Hashes are stable
// for the lifetime of the process and equal identifiers always hash
// equally, so callers key lookup tables by hash and resolve collisions
// with Equal.
package identifier

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Kind discriminates the underlying reference of an Identifier.
type Kind uint8

const (
	// KindType identifies a dependency by its Go type.
	KindType Kind = iota + 1

	// KindToken identifies a dependency by a string token.
	KindToken

	// KindSymbol identifies a dependency by an opaque Symbol value.
	KindSymbol
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindToken:
		return "token"
	case KindSymbol:
		return "symbol"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

var (
	ErrNilReference         = errors.New("dependency reference cannot be nil")
	ErrUnsupportedReference = errors.New("unsupported dependency reference")
	ErrUnresolvedForwardRef = errors.New("forward reference did not resolve to a type, token, or symbol")
)

// Symbol is an opaque dependency token compared by identity: two
// symbols created with the same name are distinct identifiers. The
// name exists only for diagnostics.
type Symbol struct {
	name string
	id   string
}

// NewSymbol creates a fresh symbol token. Each call produces a new
// identity, regardless of name.
func NewSymbol(name string) *Symbol {
	return &Symbol{name: name, id: uuid.NewString()}
}

// Name returns the diagnostic name the symbol was created with.
func (s *Symbol) Name() string { return s.name }

func (s *Symbol) String() string {
	return fmt.Sprintf("Symbol(%s)", s.name)
}

// ForwardRef defers a dependency reference to break declaration-order
// cycles. It is dereferenced exactly once at identifier-construction
// time; the value it yields must itself be a reflect.Type, string, or
// *Symbol.
type ForwardRef func() any

// Identifier is the canonical reference to a single dependency slot.
// The zero value is not a valid identifier.
type Identifier struct {
	kind     Kind
	typ      reflect.Type
	token    string
	symbol   *Symbol
	metadata any
}

// FromType builds a type-kinded identifier.
func FromType(t reflect.Type, metadata any) Identifier {
	return Identifier{kind: KindType, typ: t, metadata: metadata}
}

// FromToken builds a string-token identifier.
func FromToken(token string, metadata any) Identifier {
	return Identifier{kind: KindToken, token: token, metadata: metadata}
}

// FromSymbol builds a symbol-token identifier.
func FromSymbol(s *Symbol, metadata any) Identifier {
	return Identifier{kind: KindSymbol, symbol: s, metadata: metadata}
}

// Resolve constructs an identifier from a caller-supplied reference:
// a reflect.Type, a string token, a *Symbol, or a ForwardRef wrapping
// one of those. ForwardRefs are dereferenced a single step; a forward
// reference yielding another forward reference is an error.
func Resolve(ref any, metadata any) (Identifier, error) {
	if ref == nil {
		return Identifier{}, ErrNilReference
	}

	switch r := ref.(type) {
	case ForwardRef:
		return resolveDeferred(r, metadata)
	case func() any:
		return resolveDeferred(r, metadata)
	case reflect.Type:
		if r == nil {
			return Identifier{}, ErrNilReference
		}
		return FromType(r, metadata), nil
	case string:
		return FromToken(r, metadata), nil
	case *Symbol:
		if r == nil {
			return Identifier{}, ErrNilReference
		}
		return FromSymbol(r, metadata), nil
	default:
		return Identifier{}, fmt.Errorf("%w: %T", ErrUnsupportedReference, ref)
	}
}

func resolveDeferred(ref func() any, metadata any) (Identifier, error) {
	resolved := ref()
	switch resolved.(type) {
	case ForwardRef, func() any:
		return Identifier{}, ErrUnresolvedForwardRef
	case nil:
		return Identifier{}, ErrUnresolvedForwardRef
	}
	return Resolve(resolved, metadata)
}

// IsZero reports whether the identifier is the invalid zero value.
func (id Identifier) IsZero() bool { return id.kind == 0 }

// Kind returns the identifier's discriminator.
func (id Identifier) Kind() Kind { return id.kind }

// Type returns the underlying type for KindType identifiers, nil otherwise.
func (id Identifier) Type() reflect.Type { return id.typ }

// Token returns the underlying string token for KindToken identifiers.
func (id Identifier) Token() string { return id.token }

// Symbol returns the underlying symbol for KindSymbol identifiers, nil otherwise.
func (id Identifier) Symbol() *Symbol { return id.symbol }

// Metadata returns the qualifier attached to the identifier, nil when
// unqualified.
func (id Identifier) Metadata() any { return id.metadata }

// Qualified returns a copy of the identifier carrying the given metadata.
func (id Identifier) Qualified(metadata any) Identifier {
	id.metadata = metadata
	return id
}

// Equal reports exact identifier equality: kind, underlying reference,
// and deep structural equality of metadata.
func (id Identifier) Equal(other Identifier) bool {
	if id.kind != other.kind {
		return false
	}

	switch id.kind {
	case KindType:
		if id.typ != other.typ {
			return false
		}
	case KindToken:
		if id.token != other.token {
			return false
		}
	case KindSymbol:
		if id.symbol != other.symbol {
			return false
		}
	default:
		return false
	}

	if id.metadata == nil && other.metadata == nil {
		return true
	}
	return reflect.DeepEqual(id.metadata, other.metadata)
}

// Hash returns a process-stable hash of the identifier. Metadata is
// deliberately excluded: structural metadata (maps in particular) has
// no canonical ordering, and excluding it keeps the Equal ⇒ equal-hash
// guarantee trivially true. Callers must bucket by hash and compare
// with Equal.
func (id Identifier) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.Write([]byte{byte(id.kind)})

	switch id.kind {
	case KindType:
		if id.typ != nil {
			_, _ = d.WriteString(id.typ.PkgPath())
			_, _ = d.Write([]byte{0})
			_, _ = d.WriteString(id.typ.String())
		}
	case KindToken:
		_, _ = d.WriteString(id.token)
	case KindSymbol:
		if id.symbol != nil {
			_, _ = d.WriteString(id.symbol.id)
		}
	}

	return d.Sum64()
}

// String renders the identifier for error messages.
func (id Identifier) String() string {
	var base string
	switch id.kind {
	case KindType:
		if id.typ == nil {
			base = "type <nil>"
		} else {
			base = "type " + id.typ.String()
		}
	case KindToken:
		base = fmt.Sprintf("token %q", id.token)
	case KindSymbol:
		if id.symbol == nil {
			base = "symbol <nil>"
		} else {
			base = id.symbol.String()
		}
	default:
		base = "<invalid identifier>"
	}

	if id.metadata != nil {
		return fmt.Sprintf("%s (qualified by %v)", base, id.metadata)
	}
	return base
}

// DisplayName returns the short, unqualified name of the underlying
// reference, used for near-miss suggestions.
func (id Identifier) DisplayName() string {
	switch id.kind {
	case KindType:
		if id.typ == nil {
			return ""
		}
		t := id.typ
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	case KindToken:
		return id.token
	case KindSymbol:
		if id.symbol == nil {
			return ""
		}
		return id.symbol.name
	default:
		return ""
	}
}
