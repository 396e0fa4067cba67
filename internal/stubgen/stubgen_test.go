package stubgen

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engine struct {
	Start func() error
	Stop  func()
	Gears int
}

type inner struct {
	Do func() string
}

type composite struct {
	Inner    inner
	InnerPtr *inner
	Label    string
	Sink     any
}

type node struct {
	Next *node
	Do   func() int
}

func TestDouble_NilShapeYieldsBareStub(t *testing.T) {
	t.Parallel()

	v, err := Double(nil)
	require.NoError(t, err)

	stub, ok := v.Interface().(Stub)
	require.True(t, ok, "expected a bare Stub")
	assert.Nil(t, stub("anything", 42))
}

func TestDouble_FuncShape(t *testing.T) {
	t.Parallel()

	v, err := Double(reflect.TypeOf(func(int) (string, error) { return "", nil }))
	require.NoError(t, err)

	fn, ok := v.Interface().(func(int) (string, error))
	require.True(t, ok)

	s, callErr := fn(7)
	assert.Empty(t, s)
	assert.NoError(t, callErr)
}

func TestDouble_StructShape(t *testing.T) {
	t.Parallel()

	t.Run("func fields become callable stubs", func(t *testing.T) {
		t.Parallel()

		v, err := Double(reflect.TypeOf(&engine{}))
		require.NoError(t, err)

		e, ok := v.Interface().(*engine)
		require.True(t, ok)
		require.NotNil(t, e.Start)
		require.NotNil(t, e.Stop)

		assert.NoError(t, e.Start())
		assert.NotPanics(t, func() { e.Stop() })
		assert.Zero(t, e.Gears, "primitives stay zero-value placeholders")
	})

	t.Run("nested struct members are recursively stubbed", func(t *testing.T) {
		t.Parallel()

		v, err := Double(reflect.TypeOf(&composite{}))
		require.NoError(t, err)

		c := v.Interface().(*composite)
		require.NotNil(t, c.Inner.Do)
		require.NotNil(t, c.InnerPtr)
		require.NotNil(t, c.InnerPtr.Do)

		assert.Empty(t, c.Inner.Do())
		assert.Empty(t, c.Label)
		assert.Nil(t, c.Sink, "interface members are left for overrides")
	})

	t.Run("value struct shape", func(t *testing.T) {
		t.Parallel()

		v, err := Double(reflect.TypeOf(engine{}))
		require.NoError(t, err)

		e := v.Interface().(engine)
		require.NotNil(t, e.Start)
		assert.NoError(t, e.Start())
	})

	t.Run("self-referential struct terminates", func(t *testing.T) {
		t.Parallel()

		v, err := Double(reflect.TypeOf(&node{}))
		require.NoError(t, err)

		n := v.Interface().(*node)
		require.NotNil(t, n.Do)
		assert.Zero(t, n.Do())
		assert.Nil(t, n.Next, "cycles end in a nil placeholder")
	})
}

func TestDouble_InterfaceShapeFails(t *testing.T) {
	t.Parallel()

	type closer interface{ Close() error }

	_, err := Double(reflect.TypeOf((*closer)(nil)).Elem())
	assert.ErrorIs(t, err, ErrInterfaceShape)
}

func TestDouble_PlaceholderShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		shape reflect.Type
	}{
		{name: "int", shape: reflect.TypeOf(0)},
		{name: "string", shape: reflect.TypeOf("")},
		{name: "slice", shape: reflect.TypeOf([]string(nil))},
		{name: "map", shape: reflect.TypeOf(map[string]int(nil))},
		{name: "pointer to primitive", shape: reflect.TypeOf((*int)(nil))},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := Double(tt.shape)
			require.NoError(t, err)
			assert.True(t, v.IsZero())
		})
	}
}

func TestDouble_NoSharedState(t *testing.T) {
	t.Parallel()

	first, err := Double(reflect.TypeOf(&engine{}))
	require.NoError(t, err)
	second, err := Double(reflect.TypeOf(&engine{}))
	require.NoError(t, err)

	assert.NotSame(t, first.Interface().(*engine), second.Interface().(*engine))
}

func TestNewStub_FreshIdentity(t *testing.T) {
	t.Parallel()

	a, b := NewStub(), NewStub()
	assert.Nil(t, a())
	assert.Nil(t, b("args", "ignored"))
}
