package stubwire

import (
	"fmt"
	"reflect"
	"runtime/debug"

	"github.com/stubwire/stubwire/internal/stubgen"
)

// Compile is the terminal step of a session: it resolves one double
// per declared identifier (override if present, generated otherwise),
// constructs the unit by invoking its constructor with the doubles in
// parameter order, assigns property doubles to their fields, and
// returns the instance together with the UnitReference lookup table.
//
// Compile consumes the builder; a second call fails with an error
// wrapping ErrBuilderConsumed.
func (b *Builder[T]) Compile() (*Unit[T], error) {
	if b.consumed {
		return nil, fmt.Errorf("compile: %w", ErrBuilderConsumed)
	}
	b.consumed = true

	if pending := b.ledger.pending(); len(pending) > 0 {
		return nil, FinalizationError{Identifier: pending[0]}
	}

	c := &compiler{graph: b.graph, ledger: b.ledger, generator: b.generator}

	instance, ref, err := c.compile(b.session)
	if err != nil {
		return nil, err
	}

	typed, ok := instance.Interface().(T)
	if !ok {
		return nil, TypeMismatchError{
			Expected: Type[T](),
			Actual:   instance.Type(),
			Context:  "compiled instance",
		}
	}

	return &Unit[T]{Instance: typed, Ref: ref}, nil
}

// compiler assembles one unit. It exists for the duration of a single
// Compile call and shares nothing across sessions.
type compiler struct {
	graph     *Graph
	ledger    *ledger
	generator Generator

	// resolved holds exactly one double per distinct identifier, so a
	// dependency reached through both constructor and property
	// injection is wired with the same value everywhere.
	resolved map[uint64][]resolvedDouble
}

type resolvedDouble struct {
	id     Identifier
	double any
}

func (c *compiler) compile(session string) (reflect.Value, *UnitReference, error) {
	c.resolved = make(map[uint64][]resolvedDouble, c.graph.Size())

	args, err := c.constructorArgs()
	if err != nil {
		return reflect.Value{}, nil, err
	}

	instance, err := c.construct(args)
	if err != nil {
		return reflect.Value{}, nil, err
	}

	instance, err = c.assignProperties(instance)
	if err != nil {
		return reflect.Value{}, nil, err
	}

	ref := &UnitReference{session: session, buckets: c.resolved, size: c.graph.Size()}
	return instance, ref, nil
}

// constructorArgs resolves a double for every constructor descriptor,
// in declared order.
func (c *compiler) constructorArgs() ([]reflect.Value, error) {
	manifest := c.graph.manifest
	params := c.graph.Constructor()

	if manifest.ParamObject != nil {
		obj := reflect.New(manifest.ParamObject).Elem()
		for _, d := range params {
			double, err := c.resolve(d)
			if err != nil {
				return nil, err
			}
			value, err := c.slotValue(double, d.Shape, d.ID)
			if err != nil {
				return nil, err
			}
			obj.FieldByIndex(d.FieldIndex).Set(value)
		}
		return []reflect.Value{obj}, nil
	}

	args := make([]reflect.Value, len(params))
	for i, d := range params {
		double, err := c.resolve(d)
		if err != nil {
			return nil, err
		}
		value, err := c.slotValue(double, d.Shape, d.ID)
		if err != nil {
			return nil, err
		}
		args[i] = value
	}
	return args, nil
}

// construct invokes the constructor with real construction semantics.
// Panics are surfaced as ConstructionPanicError; a non-nil error
// return fails the compile.
func (c *compiler) construct(args []reflect.Value) (instance reflect.Value, err error) {
	manifest := c.graph.manifest

	var out []reflect.Value
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = ConstructionPanicError{
					Constructor: manifest.ConstructorType,
					Panic:       r,
					Stack:       debug.Stack(),
				}
			}
		}()
		out = manifest.Constructor.Call(args)
	}()
	if err != nil {
		return reflect.Value{}, err
	}

	if manifest.HasErrorReturn && !out[1].IsNil() {
		return reflect.Value{}, ConstructionError{
			Constructor: manifest.ConstructorType,
			Cause:       out[1].Interface().(error),
		}
	}

	return out[0], nil
}

// assignProperties wires property doubles onto the constructed
// instance, overwriting anything the constructor itself set. A unit
// returned by value is copied to addressable storage first.
func (c *compiler) assignProperties(instance reflect.Value) (reflect.Value, error) {
	props := c.graph.Properties()
	if len(props) == 0 {
		return instance, nil
	}

	target := instance
	switch {
	case target.Kind() == reflect.Pointer:
		if target.IsNil() {
			return reflect.Value{}, ConstructionError{
				Constructor: c.graph.manifest.ConstructorType,
				Cause:       fmt.Errorf("constructor returned a nil %s; properties cannot be injected", formatType(target.Type())),
			}
		}
		target = target.Elem()
	case target.Kind() == reflect.Struct:
		addressable := reflect.New(target.Type()).Elem()
		addressable.Set(target)
		instance = addressable
		target = addressable
	}

	for _, d := range props {
		double, err := c.resolve(d)
		if err != nil {
			return reflect.Value{}, err
		}

		field, err := fieldForAssign(target, d.FieldIndex)
		if err != nil {
			return reflect.Value{}, ConstructionError{
				Constructor: c.graph.manifest.ConstructorType,
				Cause:       err,
			}
		}
		value, err := c.slotValue(double, field.Type(), d.ID)
		if err != nil {
			return reflect.Value{}, err
		}
		field.Set(value)
	}

	return instance, nil
}

// fieldForAssign walks a field index path, allocating any nil embedded
// pointers on the way so fields promoted through them stay assignable.
func fieldForAssign(target reflect.Value, index []int) (reflect.Value, error) {
	v := target
	for step, i := range index {
		if step > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, fmt.Errorf("cannot allocate nil embedded %s on the path to the injected field", formatType(v.Type()))
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v, nil
}

// resolve returns the double for a descriptor, creating it on first
// use: the ledger entry when the identifier is overridden, a freshly
// generated double otherwise. The same identifier always resolves to
// the same double within one compile.
func (c *compiler) resolve(d Descriptor) (any, error) {
	h := d.ID.Hash()
	for _, r := range c.resolved[h] {
		if r.id.Equal(d.ID) {
			return r.double, nil
		}
	}

	double, err := c.resolveFresh(d)
	if err != nil {
		return nil, err
	}

	c.resolved[h] = append(c.resolved[h], resolvedDouble{id: d.ID, double: double})
	return double, nil
}

func (c *compiler) resolveFresh(d Descriptor) (any, error) {
	entry, overridden := c.ledger.get(d.ID)
	if !overridden {
		return c.generator.Generate(d.Shape)
	}

	switch entry.kind {
	case overrideFinal:
		return entry.value, nil

	case overrideImpl:
		base, err := c.generator.Generate(d.Shape)
		if err != nil {
			// The factory may supply the whole double for shapes the
			// generator cannot fabricate, interfaces in particular.
			base = nil
		}
		partial := entry.factory(func() Stub { return stubgen.NewStub() })
		return mergeDouble(base, partial, d.Shape, d.ID)

	default:
		return nil, FinalizationError{Identifier: d.ID}
	}
}

// slotValue converts a resolved double into a reflect.Value assignable
// to the slot's type. Untyped nil doubles become the slot's zero value.
func (c *compiler) slotValue(double any, slot reflect.Type, id Identifier) (reflect.Value, error) {
	if slot == nil {
		// A token slot with no discoverable structure lives in an
		// interface{} field; any double fits.
		if double == nil {
			return reflect.Zero(anyType), nil
		}
		return reflect.ValueOf(double), nil
	}

	if double == nil {
		return reflect.Zero(slot), nil
	}

	v := reflect.ValueOf(double)
	if !v.Type().AssignableTo(slot) {
		return reflect.Value{}, TypeMismatchError{
			Expected: slot,
			Actual:   v.Type(),
			Context:  fmt.Sprintf("double for %s", id),
		}
	}
	return v, nil
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// mergeDouble overlays an implementation-stub override's partial value
// on the generated base double. Struct shapes merge field-by-field,
// keeping the base's automatic stubs for everything the partial value
// leaves zero; any other shape is replaced outright.
func mergeDouble(base, partial any, shape reflect.Type, id Identifier) (any, error) {
	if partial == nil {
		return base, nil
	}
	if base == nil || shape == nil {
		return partial, nil
	}

	pv := reflect.ValueOf(partial)
	if !pv.Type().AssignableTo(shape) {
		return nil, TypeMismatchError{
			Expected: shape,
			Actual:   pv.Type(),
			Context:  fmt.Sprintf("implementation stub for %s", id),
		}
	}

	switch shape.Kind() {
	case reflect.Pointer:
		if shape.Elem().Kind() != reflect.Struct || pv.IsNil() {
			return partial, nil
		}
		bv := reflect.ValueOf(base)
		overlayFields(bv.Elem(), pv.Elem())
		return base, nil

	case reflect.Struct:
		bv := reflect.New(shape).Elem()
		bv.Set(reflect.ValueOf(base))
		overlayFields(bv, pv)
		return bv.Interface(), nil

	default:
		return partial, nil
	}
}

// overlayFields copies every non-zero exported field of partial onto
// base, leaving base's generated stubs in place everywhere else.
func overlayFields(base, partial reflect.Value) {
	t := partial.Type()
	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		fv := partial.Field(i)
		if fv.IsZero() {
			continue
		}
		base.Field(i).Set(fv)
	}
}
