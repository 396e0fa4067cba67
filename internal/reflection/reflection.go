// Package reflection extracts the declared dependencies of a unit
// under test from its constructor signature and from the inject tags
// on its struct fields.
//
// Constructor dependencies are the constructor's parameters, in
// declared order. Property dependencies are exported fields of the
// unit struct carrying an `inject` tag:
//
//	Clock    *Clock  `inject:""`          // identified by field type
//	Renderer any     `inject:"RENDERER"`  // identified by string token
//	Audit    any     `inject:"sym:Audit"` // identified by registered symbol
//
// A `qualifier:"..."` tag attaches identifier metadata to the field's
// identifier. Reflection is total for a given constructor: anything it
// cannot resolve to a concrete identifier is a hard Error, never a
// silent guess.
package reflection

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/stubwire/stubwire/internal/identifier"
)

var (
	ErrConstructorNil      = errors.New("constructor cannot be nil")
	ErrNotAFunction        = errors.New("constructor must be a function")
	ErrVariadicUnsupported = errors.New("variadic constructors are not supported")
	ErrNoUnitReturn        = errors.New("constructor must return the unit as its first value")
	ErrBadErrorReturn      = errors.New("constructor may return at most (unit) or (unit, error)")
)

// AccessKind discriminates how a dependency reaches the unit.
type AccessKind uint8

const (
	// AccessConstructor dependencies are passed positionally at
	// construction time.
	AccessConstructor AccessKind = iota + 1

	// AccessProperty dependencies are assigned to struct fields after
	// construction.
	AccessProperty
)

func (k AccessKind) String() string {
	switch k {
	case AccessConstructor:
		return "constructor"
	case AccessProperty:
		return "property"
	default:
		return fmt.Sprintf("AccessKind(%d)", uint8(k))
	}
}

// Descriptor is one declared dependency slot. Descriptors are produced
// by reflection and never mutated afterwards.
type Descriptor struct {
	// ID is the canonical identifier of the slot.
	ID identifier.Identifier

	// Shape is the declared Go type of the slot. A nil Shape marks a
	// token-identified slot with no discoverable structure.
	Shape reflect.Type

	// Access tells whether the slot is a constructor parameter or an
	// injected property.
	Access AccessKind

	// Position is the constructor parameter index for AccessConstructor
	// descriptors.
	Position int

	// Field names the injected field for AccessProperty descriptors.
	Field string

	// FieldIndex locates the field for assignment, or the param-object
	// field for constructor descriptors of param-object constructors.
	FieldIndex []int
}

// Manifest is the reflected dependency surface of one constructor.
type Manifest struct {
	// Unit is the type the constructor produces.
	Unit reflect.Type

	// Constructor is the reflected constructor value.
	Constructor reflect.Value

	// ConstructorType is Constructor's function type.
	ConstructorType reflect.Type

	// HasErrorReturn is true for (unit, error) constructors.
	HasErrorReturn bool

	// ParamObject is non-nil when the constructor takes a single
	// parameter-object struct instead of positional parameters; the
	// compiler assembles one value of this type from the constructor
	// descriptors' FieldIndex entries.
	ParamObject reflect.Type

	// Params are the constructor dependencies, in declared order.
	Params []Descriptor

	// Properties are the injected-field dependencies, unordered.
	Properties []Descriptor
}

// Error reports that a declared dependency could not be resolved to a
// concrete identifier.
type Error struct {
	Unit     reflect.Type
	Field    string
	Position int
	Cause    error
}

func (e Error) Error() string {
	target := "<unknown>"
	if e.Unit != nil {
		target = e.Unit.String()
	}
	if e.Field != "" {
		return fmt.Sprintf("cannot reflect dependency %s.%s: %v", target, e.Field, e.Cause)
	}
	if e.Position >= 0 {
		return fmt.Sprintf("cannot reflect constructor parameter %d of %s: %v", e.Position, target, e.Cause)
	}
	return fmt.Sprintf("cannot reflect %s: %v", target, e.Cause)
}

func (e Error) Unwrap() error { return e.Cause }

var anyType = reflect.TypeOf((*any)(nil)).Elem()
var errType = reflect.TypeOf((*error)(nil)).Elem()

// Reflector reads dependency metadata from plain Go constructors and
// inject tags. Manifests are cached per constructor identity; the
// cache is safe for concurrent use and manifests are immutable.
type Reflector struct {
	mu      sync.RWMutex
	cache   map[uintptr]*Manifest
	symbols map[string]*identifier.Symbol
}

// New creates a Reflector. Symbols referenced by `inject:"sym:Name"`
// tags must be registered here; symbol resolution is per-reflector
// state, never process-global.
func New(symbols ...*identifier.Symbol) *Reflector {
	r := &Reflector{
		cache:   make(map[uintptr]*Manifest),
		symbols: make(map[string]*identifier.Symbol, len(symbols)),
	}
	for _, s := range symbols {
		if s != nil {
			r.symbols[s.Name()] = s
		}
	}
	return r
}

// Reflect analyzes a constructor and returns its dependency manifest.
func (r *Reflector) Reflect(ctor any) (*Manifest, error) {
	if ctor == nil {
		return nil, Error{Position: -1, Cause: ErrConstructorNil}
	}

	val := reflect.ValueOf(ctor)
	if !val.IsValid() || (val.Kind() == reflect.Func && val.IsNil()) {
		return nil, Error{Position: -1, Cause: ErrConstructorNil}
	}
	if val.Kind() != reflect.Func {
		return nil, Error{Unit: val.Type(), Position: -1, Cause: ErrNotAFunction}
	}

	key := val.Pointer()
	r.mu.RLock()
	if cached, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	m, err := r.analyze(val)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[key] = m
	r.mu.Unlock()
	return m, nil
}

func (r *Reflector) analyze(val reflect.Value) (*Manifest, error) {
	typ := val.Type()

	unit, hasErr, err := UnitReturn(typ)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Unit:            unit,
		Constructor:     val,
		ConstructorType: typ,
		HasErrorReturn:  hasErr,
	}

	if typ.IsVariadic() {
		return nil, Error{Unit: unit, Position: -1, Cause: ErrVariadicUnsupported}
	}

	for i := 0; i < typ.NumIn(); i++ {
		desc, err := r.paramDescriptor(unit, typ.In(i), i)
		if err != nil {
			return nil, err
		}
		m.Params = append(m.Params, desc)
	}

	props, err := r.Properties(unit)
	if err != nil {
		return nil, err
	}
	m.Properties = props

	return m, nil
}

// UnitReturn validates the (unit) or (unit, error) return contract and
// returns the unit type.
func UnitReturn(typ reflect.Type) (reflect.Type, bool, error) {
	switch typ.NumOut() {
	case 1:
		out := typ.Out(0)
		if out.Implements(errType) {
			return nil, false, Error{Position: -1, Cause: ErrNoUnitReturn}
		}
		return out, false, nil
	case 2:
		if !typ.Out(1).Implements(errType) {
			return nil, false, Error{Unit: typ.Out(0), Position: -1, Cause: ErrBadErrorReturn}
		}
		return typ.Out(0), true, nil
	default:
		return nil, false, Error{Position: -1, Cause: ErrNoUnitReturn}
	}
}

func (r *Reflector) paramDescriptor(unit, param reflect.Type, pos int) (Descriptor, error) {
	if err := validShape(param); err != nil {
		return Descriptor{}, Error{Unit: unit, Position: pos, Cause: err}
	}

	if param == anyType {
		return Descriptor{}, Error{
			Unit:     unit,
			Position: pos,
			Cause:    errors.New("parameter type is interface{}; no concrete identifier can be derived"),
		}
	}

	return Descriptor{
		ID:       identifier.FromType(param, nil),
		Shape:    param,
		Access:   AccessConstructor,
		Position: pos,
	}, nil
}

// Properties walks the unit struct for inject-tagged fields.
// Units that are not structs simply have no property dependencies.
func (r *Reflector) Properties(unit reflect.Type) ([]Descriptor, error) {
	strct := unit
	for strct != nil && strct.Kind() == reflect.Pointer {
		strct = strct.Elem()
	}
	if strct == nil || strct.Kind() != reflect.Struct {
		return nil, nil
	}

	var props []Descriptor
	for _, field := range reflect.VisibleFields(strct) {
		tag, tagged := field.Tag.Lookup("inject")
		if !tagged {
			continue
		}

		if !field.IsExported() {
			return nil, Error{
				Unit:  unit,
				Field: field.Name,
				Cause: errors.New("injected field must be exported; it cannot be assigned through reflection otherwise"),
			}
		}
		if len(field.Index) > 1 {
			if err := promotedPath(strct, field.Index); err != nil {
				return nil, Error{Unit: unit, Field: field.Name, Cause: err}
			}
		}
		if err := validShape(field.Type); err != nil {
			return nil, Error{Unit: unit, Field: field.Name, Cause: err}
		}

		var metadata any
		if q, ok := field.Tag.Lookup("qualifier"); ok {
			metadata = q
		}

		desc := Descriptor{
			Shape:      field.Type,
			Access:     AccessProperty,
			Field:      field.Name,
			FieldIndex: field.Index,
		}

		switch {
		case tag == "":
			if field.Type == anyType {
				return nil, Error{
					Unit:  unit,
					Field: field.Name,
					Cause: errors.New("field type is interface{} and no token was given; the property type cannot be determined"),
				}
			}
			desc.ID = identifier.FromType(field.Type, metadata)

		case strings.HasPrefix(tag, "sym:"):
			name := strings.TrimPrefix(tag, "sym:")
			sym, ok := r.symbols[name]
			if !ok {
				return nil, Error{
					Unit:  unit,
					Field: field.Name,
					Cause: fmt.Errorf("symbol %q is not registered with this session", name),
				}
			}
			desc.ID = identifier.FromSymbol(sym, metadata)
			if field.Type == anyType {
				desc.Shape = nil
			}

		default:
			desc.ID = identifier.FromToken(tag, metadata)
			if field.Type == anyType {
				desc.Shape = nil
			}
		}

		props = append(props, desc)
	}

	return props, nil
}

// promotedPath checks that a field promoted from an embedded struct is
// reachable for assignment: every embedded field on the way must be
// exported.
func promotedPath(strct reflect.Type, index []int) error {
	owner := strct
	for _, i := range index[:len(index)-1] {
		embedded := owner.Field(i)
		if !embedded.IsExported() {
			return fmt.Errorf("injected field is promoted through unexported embedded field %s and cannot be assigned", embedded.Name)
		}
		owner = embedded.Type
		if owner.Kind() == reflect.Pointer {
			owner = owner.Elem()
		}
	}
	return nil
}

// validShape rejects types that can never serve as dependency slots.
func validShape(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Chan:
		return fmt.Errorf("channel type %s is not supported as a dependency", t)
	case reflect.UnsafePointer:
		return errors.New("unsafe pointers are not supported as dependencies")
	case reflect.Invalid:
		return errors.New("dependency type is invalid")
	}
	return nil
}
