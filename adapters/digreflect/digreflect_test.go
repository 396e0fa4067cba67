package digreflect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"github.com/stubwire/stubwire"
	"github.com/stubwire/stubwire/adapters/digreflect"
	"github.com/stubwire/stubwire/internal/testutil"
)

type dashboardParams struct {
	dig.In

	Source  *testutil.ServiceA
	Primary *testutil.Clock `name:"primary"`
	Panels  []string        `group:"panels"`
}

type dashboard struct {
	source  *testutil.ServiceA
	primary *testutil.Clock
	panels  []string

	Renderer any `inject:"RENDERER"`
}

func newDashboard(p dashboardParams) *dashboard {
	return &dashboard{source: p.Source, primary: p.Primary, panels: p.Panels}
}

func TestReflector_ParamObject(t *testing.T) {
	t.Parallel()

	b, err := stubwire.New[*dashboard](newDashboard,
		stubwire.WithReflector(digreflect.New()))
	require.NoError(t, err)

	// Three parameter-object fields plus the tagged property.
	require.Equal(t, 4, b.Graph().Size())

	primary := &testutil.Clock{Now: func() int64 { return 7 }}
	require.NoError(t,
		b.Mock(stubwire.Type[*testutil.Clock](), digreflect.Named("primary")).Final(primary))
	require.NoError(t,
		b.Mock(stubwire.Type[string](), digreflect.Grouped("panels")).Final([]string{"cpu", "mem"}))

	unit, err := b.Compile()
	require.NoError(t, err)

	assert.Same(t, primary, unit.Instance.primary)
	assert.Equal(t, []string{"cpu", "mem"}, unit.Instance.panels)
	require.NotNil(t, unit.Instance.source, "untagged fields get generated doubles")
	assert.NotNil(t, unit.Instance.Renderer, "inject-tagged properties are still reflected")

	got, err := unit.Ref.Get(stubwire.Type[*testutil.Clock](), digreflect.Named("primary"))
	require.NoError(t, err)
	assert.Same(t, primary, got)
}

func TestReflector_GeneratedGroupIsEmpty(t *testing.T) {
	t.Parallel()

	b, err := stubwire.New[*dashboard](newDashboard,
		stubwire.WithReflector(digreflect.New()))
	require.NoError(t, err)

	unit, err := b.Compile()
	require.NoError(t, err)
	assert.Empty(t, unit.Instance.panels, "a value group with no override stays empty")
}

func TestReflector_NameAndGroupConflict(t *testing.T) {
	t.Parallel()

	type badParams struct {
		dig.In

		Clock *testutil.Clock `name:"primary" group:"clocks"`
	}
	ctor := func(p badParams) *testutil.Widget { return &testutil.Widget{} }

	_, err := stubwire.New[*testutil.Widget](ctor,
		stubwire.WithReflector(digreflect.New()))
	require.Error(t, err)

	var rerr stubwire.ReflectionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "Clock", rerr.Field)
}

func TestReflector_NonSliceGroup(t *testing.T) {
	t.Parallel()

	type badParams struct {
		dig.In

		Panel string `group:"panels"`
	}
	ctor := func(p badParams) *testutil.Widget { return &testutil.Widget{} }

	_, err := stubwire.New[*testutil.Widget](ctor,
		stubwire.WithReflector(digreflect.New()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a slice")
}

func TestReflector_PlainConstructorFallsThrough(t *testing.T) {
	t.Parallel()

	b, err := stubwire.New[*testutil.Widget](testutil.NewWidget,
		stubwire.WithReflector(digreflect.New()))
	require.NoError(t, err)
	assert.Equal(t, 2, b.Graph().Size())

	unit, err := b.Compile()
	require.NoError(t, err)
	assert.Equal(t, 0, unit.Instance.Compute())
}
