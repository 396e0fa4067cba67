package stubwire

import (
	"reflect"
)

// Graph is the reflected dependency surface of the unit under test:
// the ordered constructor descriptors, the unordered property
// descriptors, and an identifier index for membership checks.
//
// The constructor order is load-bearing; the compiler passes doubles
// positionally in exactly this order.
type Graph struct {
	manifest *Manifest
	index    map[uint64][]Descriptor
	order    []Identifier
}

// buildGraph merges a manifest's constructor and property descriptors
// and enforces identifier uniqueness: a duplicate within one access
// kind is always an error, and a constructor/property coincidence is
// permitted only when both slots declare the same shape.
func buildGraph(m *Manifest) (*Graph, error) {
	g := &Graph{
		manifest: m,
		index:    make(map[uint64][]Descriptor, len(m.Params)+len(m.Properties)),
	}

	for _, d := range m.Params {
		if err := g.add(d); err != nil {
			return nil, err
		}
	}
	for _, d := range m.Properties {
		if err := g.add(d); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func (g *Graph) add(d Descriptor) error {
	h := d.ID.Hash()
	for _, existing := range g.index[h] {
		if !existing.ID.Equal(d.ID) {
			continue
		}
		if existing.Access == d.Access || existing.Shape != d.Shape {
			return DuplicateIdentifierError{
				Identifier:  d.ID,
				FirstShape:  existing.Shape,
				SecondShape: d.Shape,
			}
		}
		// Same identifier reached through both constructor and
		// property injection with one shape: a single double serves
		// every occurrence.
	}

	if !g.contains(d.ID) {
		g.order = append(g.order, d.ID)
	}
	g.index[h] = append(g.index[h], d)
	return nil
}

func (g *Graph) contains(id Identifier) bool {
	for _, existing := range g.index[id.Hash()] {
		if existing.ID.Equal(id) {
			return true
		}
	}
	return false
}

// Contains reports whether the identifier names a declared dependency.
func (g *Graph) Contains(id Identifier) bool { return g.contains(id) }

// Shape returns the declared shape for an identifier. The second
// return is false when the identifier is not declared.
func (g *Graph) Shape(id Identifier) (reflect.Type, bool) {
	for _, existing := range g.index[id.Hash()] {
		if existing.ID.Equal(id) {
			return existing.Shape, true
		}
	}
	return nil, false
}

// Identifiers returns every distinct declared identifier, constructor
// dependencies first, in declaration order.
func (g *Graph) Identifiers() []Identifier {
	out := make([]Identifier, len(g.order))
	copy(out, g.order)
	return out
}

// Size returns the number of distinct declared identifiers.
func (g *Graph) Size() int { return len(g.order) }

// Unit returns the type the constructor produces.
func (g *Graph) Unit() reflect.Type { return g.manifest.Unit }

// Constructor descriptors in declared parameter order.
func (g *Graph) Constructor() []Descriptor { return g.manifest.Params }

// Properties returns the property descriptors.
func (g *Graph) Properties() []Descriptor { return g.manifest.Properties }
