package arena

import (
	"bytes"
	"fmt"

	"github.com/pixil98/go-tabletop/internal/ident"
)

// Outcome describes what an Assign did to the table.
type Outcome int

const (
	// Inserted means the id was unknown and now holds the write.
	Inserted Outcome = iota
	// Overwritten means the write replaced an older entry.
	Overwritten
	// Stale means the stored entry won and the write was discarded.
	Stale
	// Closed means the table has been torn down.
	Closed
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Overwritten:
		return "overwritten"
	case Stale:
		return "stale"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Applied reports whether the write is now stored.
func (o Outcome) Applied() bool {
	return o == Inserted || o == Overwritten
}

func (t *table) assign(id ident.Id, ts Timestamp, b Block) Outcome {
	if t.closed {
		return Closed
	}

	e, ok := t.entries[id]
	if !ok {
		t.entries[id] = &entry{timestamp: ts, payload: b}
		return Inserted
	}

	if !supersedes(ts, b, e.timestamp, e.payload) {
		return Stale
	}
	if e.borrowed() {
		panic(fmt.Errorf("%w: assignment to %s during access", ErrReentrantAccess, id))
	}

	e.timestamp = ts
	e.payload = b
	return Overwritten
}

// supersedes reports whether the incoming write (ts, b) replaces the stored
// one. Writes with equal timestamps are ordered by their canonical bytes so
// every peer settles on the same record regardless of arrival order.
func supersedes(ts Timestamp, b Block, storedTs Timestamp, stored Block) bool {
	switch {
	case storedTs < ts:
		return true
	case storedTs > ts:
		return false
	}
	return compareBlocks(b, stored) > 0
}

// compareBlocks orders records for tie breaks. Tombstones sort above every
// payload; payloads compare by type name then packed bytes.
func compareBlocks(a, b Block) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return bytes.Compare(canonical(a), canonical(b))
}

func canonical(b Block) []byte {
	payload, err := b.Pack()
	if err != nil {
		return nil
	}
	buf := make([]byte, 0, len(b.TypeName())+1+len(payload))
	buf = append(buf, b.TypeName()...)
	buf = append(buf, 0)
	return append(buf, payload...)
}
