// Package testutil provides shared fixture types for stubwire tests:
// small units under test with struct, token, symbol, and interface
// collaborators.
package testutil

import "errors"

// Common test errors
var (
	ErrTest      = errors.New("test error")
	ErrConstruct = errors.New("construction failed")
)

// ServiceA is a collaborator whose callable surface is a func field.
type ServiceA struct {
	Value func() int
}

// ServiceB is a second collaborator, distinct from ServiceA.
type ServiceB struct {
	Ping func() string
}

// Widget is the canonical unit under test with two constructor
// dependencies.
type Widget struct {
	A *ServiceA
	B *ServiceB
}

func NewWidget(a *ServiceA, b *ServiceB) *Widget {
	return &Widget{A: a, B: b}
}

// Compute delegates to ServiceA.
func (w *Widget) Compute() int { return w.A.Value() }

// Greet delegates to ServiceB.
func (w *Widget) Greet() string { return w.B.Ping() }

// Clock is a collaborator used for property injection.
type Clock struct {
	Now func() int64
}

// Report mixes constructor and property injection: ServiceA arrives
// positionally, Clock and the renderer token by field assignment.
type Report struct {
	A *ServiceA

	Clock    *Clock `inject:""`
	Renderer any    `inject:"RENDERER"`
}

func NewReport(a *ServiceA) *Report {
	return &Report{A: a}
}

// Mixer receives the same collaborator through both injection styles.
type Mixer struct {
	A *ServiceA `inject:""`
	b *ServiceB
}

func NewMixer(a *ServiceA, b *ServiceB) *Mixer {
	return &Mixer{A: a, b: b}
}

// B exposes the unexported constructor dependency for assertions.
func (m *Mixer) B() *ServiceB { return m.b }

// Audited declares a symbol-identified property dependency; tests
// register the symbol under the name AuditSink.
type Audited struct {
	Sink any `inject:"sym:AuditSink"`
}

func NewAudited() *Audited { return &Audited{} }

// Qualified declares two Clock properties told apart by qualifier
// metadata.
type Qualified struct {
	Primary *Clock `inject:"" qualifier:"primary"`
	Backup  *Clock `inject:"" qualifier:"backup"`
}

func NewQualified() *Qualified { return &Qualified{} }

// ValueUnit is a unit returned by value rather than by pointer.
type ValueUnit struct {
	A *ServiceA

	Clock *Clock `inject:""`
}

func NewValueUnit(a *ServiceA) ValueUnit {
	return ValueUnit{A: a}
}

// Timestamps holds an injected field that units inherit by embedding.
type Timestamps struct {
	Clock *Clock `inject:""`
}

// Extended embeds Timestamps by pointer; its constructor leaves the
// embedded pointer nil, so the promoted Clock field is only reachable
// once the pointer is allocated.
type Extended struct {
	*Timestamps

	A *ServiceA
}

func NewExtended(a *ServiceA) *Extended { return &Extended{A: a} }

// Ops is a collaborator with two independent callable surfaces, used
// to show that an implementation stub replaces only what it supplies.
type Ops struct {
	Add func(a, b int) int
	Sub func(a, b int) int
}

// Calc is a unit delegating to an Ops collaborator.
type Calc struct {
	ops *Ops
}

func NewCalc(ops *Ops) *Calc { return &Calc{ops: ops} }

// Add delegates to the collaborator.
func (c *Calc) Add(a, b int) int { return c.ops.Add(a, b) }

// Sub delegates to the collaborator.
func (c *Calc) Sub(a, b int) int { return c.ops.Sub(a, b) }

// LooseProp is malformed: the tagged field is interface{} with no
// token, so its type cannot be determined.
type LooseProp struct {
	Loose any `inject:""`
}

func NewLooseProp() *LooseProp { return &LooseProp{} }

// HiddenProp is malformed: the tagged field is unexported.
type HiddenProp struct {
	clock *Clock `inject:""`
}

func NewHiddenProp() *HiddenProp { return &HiddenProp{} }

// Clock exposes the unexported field so the fixture compiles with the
// field considered used.
func (h *HiddenProp) Clock() *Clock { return h.clock }

// NewTakesAny is malformed: the parameter carries no discoverable
// identity.
func NewTakesAny(v any) *Widget { return &Widget{} }

// NewTakesChan is malformed: channels are not dependency slots.
func NewTakesChan(ch chan int) *Widget { return &Widget{} }

// NewDuplicateParams is malformed: two positional slots share one
// identifier.
func NewDuplicateParams(a, b *ServiceA) *Widget { return &Widget{A: a} }

// NewFailing returns a construction error.
func NewFailing(a *ServiceA) (*Widget, error) { return nil, ErrConstruct }

// NewPanicky panics during construction.
func NewPanicky(a *ServiceA) *Widget { panic("constructor exploded") }

// Store is an interface collaborator; the native generator cannot
// fabricate it, double-library adapters can.
type Store interface {
	Load(id string) (string, error)
	Save(id, value string) error
}

// Repo is a unit depending on an interface collaborator.
type Repo struct {
	store Store
}

func NewRepo(store Store) *Repo { return &Repo{store: store} }

// Fetch delegates to the store.
func (r *Repo) Fetch(id string) (string, error) { return r.store.Load(id) }

// Save delegates to the store.
func (r *Repo) Save(id, value string) error { return r.store.Save(id, value) }
