package stubwire

// ImplFactory produces the partial value of an implementation-stub
// override. The factory receives a stub constructor for supplying
// callable members; everything the returned partial value leaves unset
// keeps its automatically generated stub.
type ImplFactory func(newStub func() Stub) any

type overrideKind uint8

const (
	overridePending overrideKind = iota + 1
	overrideImpl
	overrideFinal
)

// overrideEntry is one user-declared exception to automatic double
// generation, owned by the ledger for the duration of a session and
// read-only to the compiler.
type overrideEntry struct {
	id      Identifier
	kind    overrideKind
	factory ImplFactory
	value   any
}

// ledger accumulates per-session overrides keyed by identifier. The
// last registration for an identifier wins; entries still pending at
// compile time are a FinalizationError.
type ledger struct {
	buckets map[uint64][]*overrideEntry
}

func newLedger() *ledger {
	return &ledger{buckets: make(map[uint64][]*overrideEntry)}
}

// put registers or replaces the entry for an identifier.
func (l *ledger) put(entry *overrideEntry) {
	h := entry.id.Hash()
	for i, existing := range l.buckets[h] {
		if existing.id.Equal(entry.id) {
			l.buckets[h][i] = entry
			return
		}
	}
	l.buckets[h] = append(l.buckets[h], entry)
}

// get returns the entry for an identifier, if any.
func (l *ledger) get(id Identifier) (*overrideEntry, bool) {
	for _, entry := range l.buckets[id.Hash()] {
		if entry.id.Equal(id) {
			return entry, true
		}
	}
	return nil, false
}

// pending returns the identifiers of entries that were registered but
// never finalized.
func (l *ledger) pending() []Identifier {
	var ids []Identifier
	for _, bucket := range l.buckets {
		for _, entry := range bucket {
			if entry.kind == overridePending {
				ids = append(ids, entry.id)
			}
		}
	}
	return ids
}
