package identifier

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceA struct{}
type serviceB struct{}

var (
	typeA = reflect.TypeOf(&serviceA{})
	typeB = reflect.TypeOf(&serviceB{})
)

func TestIdentifier_Equal(t *testing.T) {
	t.Parallel()

	sym := NewSymbol("shared")

	tests := []struct {
		name string
		a    Identifier
		b    Identifier
		want bool
	}{
		{
			name: "same type",
			a:    FromType(typeA, nil),
			b:    FromType(typeA, nil),
			want: true,
		},
		{
			name: "different types",
			a:    FromType(typeA, nil),
			b:    FromType(typeB, nil),
			want: false,
		},
		{
			name: "same token",
			a:    FromToken("CONFIG", nil),
			b:    FromToken("CONFIG", nil),
			want: true,
		},
		{
			name: "different tokens",
			a:    FromToken("CONFIG", nil),
			b:    FromToken("LOGGER", nil),
			want: false,
		},
		{
			name: "kind mismatch",
			a:    FromToken("CONFIG", nil),
			b:    FromType(typeA, nil),
			want: false,
		},
		{
			name: "same symbol instance",
			a:    FromSymbol(sym, nil),
			b:    FromSymbol(sym, nil),
			want: true,
		},
		{
			name: "distinct symbols with equal names",
			a:    FromSymbol(NewSymbol("dup"), nil),
			b:    FromSymbol(NewSymbol("dup"), nil),
			want: false,
		},
		{
			name: "metadata present on one side",
			a:    FromType(typeA, "primary"),
			b:    FromType(typeA, nil),
			want: false,
		},
		{
			name: "structurally equal metadata",
			a:    FromType(typeA, map[string]string{"name": "primary", "zone": "eu"}),
			b:    FromType(typeA, map[string]string{"zone": "eu", "name": "primary"}),
			want: true,
		},
		{
			name: "structurally different metadata",
			a:    FromType(typeA, map[string]string{"name": "primary"}),
			b:    FromType(typeA, map[string]string{"name": "backup"}),
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a), "Equal must be symmetric")

			if tt.want {
				assert.Equal(t, tt.a.Hash(), tt.b.Hash(), "equal identifiers must hash equally")
			}
		})
	}
}

func TestIdentifier_HashDiscriminatesKinds(t *testing.T) {
	t.Parallel()

	// A token spelled like a type name must not collide by kind.
	byToken := FromToken("*identifier.serviceA", nil)
	byType := FromType(typeA, nil)
	assert.NotEqual(t, byToken.Hash(), byType.Hash())
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("resolves a reflect.Type", func(t *testing.T) {
		t.Parallel()

		id, err := Resolve(typeA, nil)
		require.NoError(t, err)
		assert.Equal(t, KindType, id.Kind())
		assert.Equal(t, typeA, id.Type())
	})

	t.Run("resolves a string token", func(t *testing.T) {
		t.Parallel()

		id, err := Resolve("CONFIG", "qualified")
		require.NoError(t, err)
		assert.Equal(t, KindToken, id.Kind())
		assert.Equal(t, "CONFIG", id.Token())
		assert.Equal(t, "qualified", id.Metadata())
	})

	t.Run("resolves a symbol", func(t *testing.T) {
		t.Parallel()

		sym := NewSymbol("audit")
		id, err := Resolve(sym, nil)
		require.NoError(t, err)
		assert.Equal(t, KindSymbol, id.Kind())
		assert.Same(t, sym, id.Symbol())
	})

	t.Run("dereferences a forward reference one step", func(t *testing.T) {
		t.Parallel()

		id, err := Resolve(ForwardRef(func() any { return typeA }), nil)
		require.NoError(t, err)
		assert.Equal(t, KindType, id.Kind())
		assert.Equal(t, typeA, id.Type())

		direct := FromType(typeA, nil)
		assert.True(t, id.Equal(direct), "forward-referenced identifier must equal the direct one")
	})

	t.Run("rejects a forward reference yielding a forward reference", func(t *testing.T) {
		t.Parallel()

		inner := ForwardRef(func() any { return typeA })
		_, err := Resolve(ForwardRef(func() any { return inner }), nil)
		assert.ErrorIs(t, err, ErrUnresolvedForwardRef)
	})

	t.Run("rejects a forward reference yielding nil", func(t *testing.T) {
		t.Parallel()

		_, err := Resolve(ForwardRef(func() any { return nil }), nil)
		assert.ErrorIs(t, err, ErrUnresolvedForwardRef)
	})

	t.Run("rejects nil", func(t *testing.T) {
		t.Parallel()

		_, err := Resolve(nil, nil)
		assert.ErrorIs(t, err, ErrNilReference)
	})

	t.Run("rejects unsupported references", func(t *testing.T) {
		t.Parallel()

		_, err := Resolve(42, nil)
		assert.ErrorIs(t, err, ErrUnsupportedReference)
	})
}

func TestIdentifier_Qualified(t *testing.T) {
	t.Parallel()

	base := FromType(typeA, nil)
	qualified := base.Qualified("primary")

	assert.Nil(t, base.Metadata(), "Qualified must not mutate the original")
	assert.Equal(t, "primary", qualified.Metadata())
	assert.False(t, base.Equal(qualified))
}

func TestIdentifier_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `token "CONFIG"`, FromToken("CONFIG", nil).String())
	assert.Contains(t, FromType(typeA, nil).String(), "serviceA")
	assert.Contains(t, FromSymbol(NewSymbol("audit"), nil).String(), "Symbol(audit)")
	assert.Contains(t, FromToken("CONFIG", "primary").String(), "qualified by primary")
}

func TestIdentifier_DisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "serviceA", FromType(typeA, nil).DisplayName())
	assert.Equal(t, "CONFIG", FromToken("CONFIG", nil).DisplayName())
	assert.Equal(t, "audit", FromSymbol(NewSymbol("audit"), nil).DisplayName())
}
