// Package stubgen fabricates inert test doubles from declared shapes.
//
// A double for a function shape is a callable that returns zero values.
// A double for a struct shape is a fresh value whose exported func
// fields are independent callables and whose nested struct members are
// recursively stubbed; non-callable members are left as zero-value
// placeholders. A shape with no discoverable structure yields a bare
// Stub function.
//
// Fabrication is pure with respect to the input shape: no state is
// shared between two calls, so doubles produced for separate sessions
// never share stub identity.
package stubgen

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrInterfaceShape is returned when a double is requested for a bare
// interface type. Go cannot fabricate interface implementations at
// runtime; interface collaborators need an explicit override or a
// double-library adapter with a registered implementation.
var ErrInterfaceShape = errors.New("cannot fabricate an implementation for an interface shape")

// Stub is the default double for a dependency with no discoverable
// structure, such as a string or symbol token bound to an untyped
// slot. It is callable and inert: it accepts anything and returns nil.
type Stub func(args ...any) []any

// NewStub returns a fresh inert stub. Every call yields a distinct
// function identity.
func NewStub() Stub {
	return func(args ...any) []any { return nil }
}

// Double fabricates a double for the given shape. A nil shape stands
// for "no discoverable structure" and yields a bare Stub.
func Double(shape reflect.Type) (reflect.Value, error) {
	if shape == nil {
		return reflect.ValueOf(NewStub()), nil
	}
	return fabricate(shape, make(map[reflect.Type]bool))
}

// fabricate walks a shape, tracking the types on the current path so a
// self-referential struct terminates with a nil placeholder instead of
// recursing forever.
func fabricate(shape reflect.Type, path map[reflect.Type]bool) (reflect.Value, error) {
	switch shape.Kind() {
	case reflect.Func:
		return stubFunc(shape), nil

	case reflect.Pointer:
		if shape.Elem().Kind() != reflect.Struct {
			return reflect.Zero(shape), nil
		}
		if path[shape] {
			return reflect.Zero(shape), nil
		}
		path[shape] = true
		defer delete(path, shape)

		v := reflect.New(shape.Elem())
		if err := fillStruct(v.Elem(), path); err != nil {
			return reflect.Value{}, err
		}
		return v, nil

	case reflect.Struct:
		if path[shape] {
			return reflect.Zero(shape), nil
		}
		path[shape] = true
		defer delete(path, shape)

		v := reflect.New(shape).Elem()
		if err := fillStruct(v, path); err != nil {
			return reflect.Value{}, err
		}
		return v, nil

	case reflect.Interface:
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrInterfaceShape, shape)

	default:
		// Primitives, slices, maps, and channels stay zero-value
		// placeholders, filled only by explicit overrides.
		return reflect.Zero(shape), nil
	}
}

// fillStruct stubs the callable and nested members of an addressable
// struct value in place.
func fillStruct(v reflect.Value, path map[reflect.Type]bool) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		fv := v.Field(i)
		switch field.Type.Kind() {
		case reflect.Func:
			fv.Set(stubFunc(field.Type))
		case reflect.Struct:
			nested, err := fabricate(field.Type, path)
			if err != nil {
				return err
			}
			fv.Set(nested)
		case reflect.Pointer:
			if field.Type.Elem().Kind() != reflect.Struct {
				continue
			}
			nested, err := fabricate(field.Type, path)
			if err != nil {
				return err
			}
			fv.Set(nested)
		}
	}
	return nil
}

// stubFunc builds a callable of the exact function type that returns
// zero values for every result.
func stubFunc(t reflect.Type) reflect.Value {
	return reflect.MakeFunc(t, func(args []reflect.Value) []reflect.Value {
		outs := make([]reflect.Value, t.NumOut())
		for i := range outs {
			outs[i] = reflect.Zero(t.Out(i))
		}
		return outs
	})
}
