package stubwire

import "reflect"

// UnitReference maps each declared identifier to the double that was
// actually wired into the compiled instance, whether generated or
// overridden. It is built once at compile time and read-only
// afterwards, so a double configured through a lookup is the very
// value the instance under test calls.
type UnitReference struct {
	session string
	buckets map[uint64][]resolvedDouble
	size    int
}

// Get looks up the double wired for the dependency named by ref (a
// reflect.Type, string token, *Symbol, or ForwardRef) and at most one
// metadata qualifier. The lookup identifier is constructed exactly as
// reflection constructs declared identifiers, and the match is exact.
//
// Looking up an identifier the unit never declared fails with an
// IdentifierNotFoundError.
func (u *UnitReference) Get(ref any, metadata ...any) (any, error) {
	id, err := resolveIdentifier(ref, metadata)
	if err != nil {
		return nil, err
	}

	for _, entry := range u.buckets[id.Hash()] {
		if entry.id.Equal(id) {
			return entry.double, nil
		}
	}

	return nil, IdentifierNotFoundError{
		Identifier: id,
		Declared:   u.Identifiers(),
	}
}

// Identifiers returns every identifier the table holds.
func (u *UnitReference) Identifiers() []Identifier {
	ids := make([]Identifier, 0, u.size)
	for _, bucket := range u.buckets {
		for _, entry := range bucket {
			ids = append(ids, entry.id)
		}
	}
	return ids
}

// Size returns the number of wired doubles, one per distinct
// declared identifier.
func (u *UnitReference) Size() int { return u.size }

// SessionID returns the identifier of the builder session that
// produced this table.
func (u *UnitReference) SessionID() string { return u.session }

// RefAs looks up a double through ref and asserts it to T.
func RefAs[T any](u *UnitReference, ref any, metadata ...any) (T, error) {
	var zero T

	double, err := u.Get(ref, metadata...)
	if err != nil {
		return zero, err
	}

	typed, ok := double.(T)
	if !ok {
		return zero, TypeMismatchError{
			Expected: Type[T](),
			Actual:   reflect.TypeOf(double),
			Context:  "unit reference lookup",
		}
	}
	return typed, nil
}
