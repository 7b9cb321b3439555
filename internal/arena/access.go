package arena

import (
	"slices"

	"github.com/pixil98/go-tabletop/internal/ident"
)

// Entity pairs a block with its id and timestamp.
type Entity[T Block] struct {
	Id        ident.Id
	Timestamp Timestamp
	Block     T
}

// Get returns the block stored at id if it is live and holds a T.
func Get[T Block](a *Arena, id ident.Id) (T, bool) {
	var zero T
	e := a.t.lookup(id)
	if e == nil {
		return zero, false
	}
	v, ok := e.payload.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Update runs fn on the T stored at id if ts is newer than the stored
// timestamp, then records ts. It returns false when the update did not
// apply, so callers can chain attempts without assuming success.
func Update[T Block](a *Arena, id ident.Id, ts Timestamp, fn func(T)) bool {
	e := a.t.lookup(id)
	if e == nil || e.timestamp >= ts {
		return false
	}
	v, ok := e.payload.(T)
	if !ok {
		return false
	}

	e.beginWrite(id)
	defer e.endWrite()
	fn(v)
	e.timestamp = ts
	return true
}

// Modify runs fn on the T stored at id and bumps its timestamp to the
// current time. It is the local edit path.
func Modify[T Block](a *Arena, id ident.Id, fn func(T)) bool {
	return a.t.modify(id, func(b Block) bool {
		v, ok := b.(T)
		if !ok {
			return false
		}
		fn(v)
		return true
	})
}

// All returns every live T in the arena ordered by id.
func All[T Block](a *Arena) []Entity[T] {
	if a.t.closed {
		return nil
	}

	var out []Entity[T]
	for id, e := range a.t.entries {
		v, ok := e.payload.(T)
		if !ok {
			continue
		}
		out = append(out, Entity[T]{Id: id, Timestamp: e.timestamp, Block: v})
	}
	slices.SortFunc(out, func(x, y Entity[T]) int {
		return x.Id.Compare(y.Id)
	})
	return out
}

// Listed looks up ids in order, skipping any that are absent or not a T.
func Listed[T Block](a *Arena, ids []ident.Id) []Entity[T] {
	out := make([]Entity[T], 0, len(ids))
	for _, id := range ids {
		e := a.t.lookup(id)
		if e == nil {
			continue
		}
		v, ok := e.payload.(T)
		if !ok {
			continue
		}
		out = append(out, Entity[T]{Id: id, Timestamp: e.timestamp, Block: v})
	}
	return out
}
