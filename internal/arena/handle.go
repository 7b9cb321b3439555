package arena

import "github.com/pixil98/go-tabletop/internal/ident"

// Weak is a non-owning handle to a block of type T. Every operation
// degrades to absent once the block is removed or the table is closed.
type Weak[T Block] struct {
	id ident.Id
	t  *table
}

func (w Weak[T]) Id() ident.Id {
	return w.id
}

// Update runs fn on the block if it is live and holds a T, then bumps its
// timestamp to max(current, now). It returns false and does nothing
// otherwise.
func (w Weak[T]) Update(fn func(T)) bool {
	return w.t.modify(w.id, func(b Block) bool {
		v, ok := b.(T)
		if !ok {
			return false
		}
		fn(v)
		return true
	})
}

// ReadOnly narrows w to a handle that can only observe the block.
func (w Weak[T]) ReadOnly() Reader[T] {
	return Reader[T]{w: w}
}

// Alive reports whether the block is live and holds a T.
func (w Weak[T]) Alive() bool {
	return w.t.read(w.id, func(b Block) bool {
		_, ok := b.(T)
		return ok
	})
}

// MapWeak applies fn to the block behind w.
func MapWeak[T Block, U any](w Weak[T], fn func(T) U) (U, bool) {
	var out U
	ok := w.t.read(w.id, func(b Block) bool {
		v, ok := b.(T)
		if !ok {
			return false
		}
		out = fn(v)
		return true
	})
	return out, ok
}

// Reader is a weak handle restricted to reads. fn must not mutate the
// block it is given.
type Reader[T Block] struct {
	w Weak[T]
}

func (r Reader[T]) Id() ident.Id {
	return r.w.id
}

func (r Reader[T]) Read(fn func(T)) bool {
	_, ok := MapReader(r, func(v T) struct{} {
		fn(v)
		return struct{}{}
	})
	return ok
}

// MapReader applies fn to the block behind r.
func MapReader[T Block, U any](r Reader[T], fn func(T) U) (U, bool) {
	return MapWeak(r.w, fn)
}

// Ref is the owning handle returned by Insert. It stays valid for as long
// as the origin Arena is open.
type Ref[T Block] struct {
	Weak[T]
}

// Downgrade returns a weak handle to the same block.
func (r Ref[T]) Downgrade() Weak[T] {
	return r.Weak
}

// Insert stores b under a fresh id with the current time.
func Insert[T Block](a *Arena, b T) Ref[T] {
	id := a.Add(b)
	return Ref[T]{Weak: Weak[T]{id: id, t: a.t}}
}

// GetHandle returns a read-only handle to id if it holds a live T.
func GetHandle[T Block](a *Arena, id ident.Id) (Reader[T], bool) {
	w, ok := GetMutHandle[T](a, id)
	if !ok {
		return Reader[T]{}, false
	}
	return w.ReadOnly(), true
}

// GetMutHandle returns a weak handle to id if it holds a live T.
func GetMutHandle[T Block](a *Arena, id ident.Id) (Weak[T], bool) {
	if _, ok := Get[T](a, id); !ok {
		return Weak[T]{}, false
	}
	return Weak[T]{id: id, t: a.t}, true
}
