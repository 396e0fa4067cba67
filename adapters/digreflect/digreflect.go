// Package digreflect adapts stubwire's metadata reflection to dig's
// parameter-object format. Constructors that take a single struct
// embedding dig.In have each exported field reflected as a constructor
// dependency, with dig's tags mapped onto identifier metadata:
//
//	type params struct {
//	    dig.In
//
//	    Primary *Cache   `name:"primary"`
//	    Probes  []Probe  `group:"probes"`
//	    Logger  *Logger  `optional:"true"`
//	}
//
// Name and group tags become a Qualifier on the field's type
// identifier, so overrides and lookups name the slot with the same
// qualifier:
//
//	builder.Mock(stubwire.Type[*Cache](), digreflect.Named("primary")).Final(cache)
//
// Constructors without a parameter object fall through to the native
// reflector, so one session handles both styles.
package digreflect

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/dig"

	"github.com/stubwire/stubwire"
	"github.com/stubwire/stubwire/internal/identifier"
	"github.com/stubwire/stubwire/internal/reflection"
)

// Qualifier is the identifier metadata derived from dig's name and
// group tags. It compares structurally, so a lookup built with Named
// or Grouped matches the reflected identifier exactly.
type Qualifier struct {
	Name  string
	Group string
}

// Named qualifies a dependency by dig service name.
func Named(name string) Qualifier { return Qualifier{Name: name} }

// Grouped qualifies a dependency by dig value group.
func Grouped(group string) Qualifier { return Qualifier{Group: group} }

var digInType = reflect.TypeOf(dig.In{})

// Reflector reads dig parameter-object metadata, delegating everything
// else to a fallback reflector.
type Reflector struct {
	fallback stubwire.Reflector
	native   *reflection.Reflector
}

// New creates a dig-aware reflector. Symbols are registered with the
// native fallback exactly as in stubwire.NewReflector.
func New(symbols ...*stubwire.Symbol) *Reflector {
	native := reflection.New(symbols...)
	return &Reflector{fallback: native, native: native}
}

// Reflect analyzes a constructor. Parameter-object constructors are
// handled here; anything else goes to the native reflector.
func (r *Reflector) Reflect(ctor any) (*stubwire.Manifest, error) {
	if ctor == nil {
		return r.fallback.Reflect(ctor)
	}

	val := reflect.ValueOf(ctor)
	if val.Kind() != reflect.Func || val.IsNil() {
		return r.fallback.Reflect(ctor)
	}

	typ := val.Type()
	if typ.NumIn() != 1 || !embedsDigIn(typ.In(0)) {
		return r.fallback.Reflect(ctor)
	}

	unit, hasErr, err := reflection.UnitReturn(typ)
	if err != nil {
		return nil, err
	}

	paramObject := typ.In(0)
	params, err := paramDescriptors(unit, paramObject)
	if err != nil {
		return nil, err
	}

	props, err := r.native.Properties(unit)
	if err != nil {
		return nil, err
	}

	return &stubwire.Manifest{
		Unit:            unit,
		Constructor:     val,
		ConstructorType: typ,
		HasErrorReturn:  hasErr,
		ParamObject:     paramObject,
		Params:          params,
		Properties:      props,
	}, nil
}

func paramDescriptors(unit, paramObject reflect.Type) ([]stubwire.Descriptor, error) {
	var params []stubwire.Descriptor

	for i := 0; i < paramObject.NumField(); i++ {
		field := paramObject.Field(i)
		if field.Anonymous && field.Type == digInType {
			continue
		}
		if !field.IsExported() {
			continue
		}

		name := field.Tag.Get("name")
		group := field.Tag.Get("group")
		if name != "" && group != "" {
			return nil, reflection.Error{
				Unit:  unit,
				Field: field.Name,
				Cause: errors.New("dig fields cannot carry both name and group tags"),
			}
		}

		desc := stubwire.Descriptor{
			Shape:      field.Type,
			Access:     stubwire.AccessConstructor,
			Position:   len(params),
			Field:      field.Name,
			FieldIndex: field.Index,
		}

		switch {
		case group != "":
			if field.Type.Kind() != reflect.Slice {
				return nil, reflection.Error{
					Unit:  unit,
					Field: field.Name,
					Cause: fmt.Errorf("group %q field must be a slice", group),
				}
			}
			desc.ID = identifier.FromType(field.Type.Elem(), Qualifier{Group: group})

		case name != "":
			desc.ID = identifier.FromType(field.Type, Qualifier{Name: name})

		default:
			desc.ID = identifier.FromType(field.Type, nil)
		}

		params = append(params, desc)
	}

	return params, nil
}

func embedsDigIn(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type == digInType {
			return true
		}
	}
	return false
}
