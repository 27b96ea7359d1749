package porting

// Kind names an entity kind inside one export document.
type Kind string

const (
	KindCollection     Kind = "collection"
	KindLocation       Kind = "location"
	KindVisit          Kind = "visit"
	KindTransportation Kind = "transportation"
	KindNote           Kind = "note"
	KindLodging        Kind = "lodging"
)

// Arena assigns and resolves document-local export ids for a single
// export/import cycle. Export ids are integers scoped to one document; they
// are never persisted and the arena is discarded once reconciliation
// completes.
//
// During serialization Assign hands out monotonically increasing ids per
// kind. During reconciliation Register records the live row id created for an
// export id, and Resolve looks it up; an unknown id resolves to nothing,
// which callers treat as a skippable dangling reference, not a fatal error.
type Arena struct {
	next map[Kind]int64
	rows map[Kind]map[int64]string
}

func NewArena() *Arena {
	return &Arena{
		next: make(map[Kind]int64),
		rows: make(map[Kind]map[int64]string),
	}
}

// Assign returns the next export id for kind, starting at 0.
func (a *Arena) Assign(kind Kind) int64 {
	id := a.next[kind]
	a.next[kind] = id + 1
	return id
}

// Register maps an export id to the live row id created for it.
func (a *Arena) Register(kind Kind, exportID int64, rowID string) {
	m, ok := a.rows[kind]
	if !ok {
		m = make(map[int64]string)
		a.rows[kind] = m
	}
	m[exportID] = rowID
}

// Resolve returns the live row id registered for an export id.
func (a *Arena) Resolve(kind Kind, exportID int64) (string, bool) {
	rowID, ok := a.rows[kind][exportID]
	return rowID, ok
}
