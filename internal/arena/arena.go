package arena

import (
	"fmt"
	"time"

	"github.com/pixil98/go-tabletop/internal/ident"
)

// Timestamp is wall-clock time in milliseconds since the unix epoch.
type Timestamp float64

// Now returns the current wall-clock Timestamp.
func Now() Timestamp {
	return Timestamp(time.Now().UnixNano()) / Timestamp(time.Millisecond)
}

// entry is one storage cell. A nil payload is a tombstone.
type entry struct {
	timestamp Timestamp
	payload   Block

	readers int
	writing bool
}

func (e *entry) beginRead(id ident.Id) {
	if e.writing {
		panic(fmt.Errorf("%w: read of %s during mutation", ErrReentrantAccess, id))
	}
	e.readers++
}

func (e *entry) endRead() {
	e.readers--
}

func (e *entry) beginWrite(id ident.Id) {
	if e.writing || e.readers > 0 {
		panic(fmt.Errorf("%w: mutation of %s during access", ErrReentrantAccess, id))
	}
	e.writing = true
}

func (e *entry) endWrite() {
	e.writing = false
}

func (e *entry) borrowed() bool {
	return e.writing || e.readers > 0
}

// table is the storage shared by an origin Arena and all of its aliases.
type table struct {
	entries map[ident.Id]*entry
	closed  bool

	clock    func() Timestamp
	registry *Registry
	observer Observer
}

func (t *table) now() Timestamp {
	return t.clock()
}

// lookup returns the live, non-tombstoned entry for id.
func (t *table) lookup(id ident.Id) *entry {
	if t == nil || t.closed {
		return nil
	}
	e, ok := t.entries[id]
	if !ok || e.payload == nil {
		return nil
	}
	return e
}

// read runs fn on the payload of id under a read borrow.
func (t *table) read(id ident.Id, fn func(Block) bool) bool {
	e := t.lookup(id)
	if e == nil {
		return false
	}
	e.beginRead(id)
	defer e.endRead()
	return fn(e.payload)
}

// modify runs fn under a write borrow and bumps the timestamp to
// max(current, now) when fn reports success.
func (t *table) modify(id ident.Id, fn func(Block) bool) bool {
	e := t.lookup(id)
	if e == nil {
		return false
	}
	e.beginWrite(id)
	defer e.endWrite()
	if !fn(e.payload) {
		return false
	}
	e.timestamp = max(e.timestamp, t.now())
	return true
}

// Arena is a table of blocks keyed by identifier. An Arena is not safe for
// concurrent use; it is meant to be confined to a single goroutine.
//
// The Arena returned by New is the origin of its table. Aliases share the
// table but closing them has no effect.
type Arena struct {
	t      *table
	origin bool
}

type Option func(*table)

// WithClock replaces the wall clock used for local writes.
func WithClock(clock func() Timestamp) Option {
	return func(t *table) {
		t.clock = clock
	}
}

// WithRegistry sets the registry used to unpack remote blocks.
func WithRegistry(r *Registry) Option {
	return func(t *table) {
		t.registry = r
	}
}

// WithObserver reports merge outcomes and dropped packs to o.
func WithObserver(o Observer) Option {
	return func(t *table) {
		t.observer = o
	}
}

func New(opts ...Option) *Arena {
	t := &table{
		entries:  map[ident.Id]*entry{},
		clock:    Now,
		observer: nopObserver{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return &Arena{t: t, origin: true}
}

// Alias returns a non-origin Arena over the same table.
func (a *Arena) Alias() *Arena {
	return &Arena{t: a.t}
}

func (a *Arena) IsOrigin() bool {
	return a.origin
}

// Close tears down the table if a is the origin. Handles into a closed
// table report every block as absent.
func (a *Arena) Close() {
	if !a.origin {
		return
	}
	a.t.closed = true
	a.t.entries = map[ident.Id]*entry{}
}

// Closed reports whether the origin of the table has been closed.
func (a *Arena) Closed() bool {
	return a.t.closed
}

// Len counts the entries in the table, tombstones included.
func (a *Arena) Len() int {
	return len(a.t.entries)
}

// Registry returns the registry used to unpack remote blocks.
func (a *Arena) Registry() *Registry {
	return a.t.registry
}

// Now reads the arena's clock.
func (a *Arena) Now() Timestamp {
	return a.t.now()
}

// Add mints a new id and assigns b to it with the current time.
func (a *Arena) Add(b Block) ident.Id {
	id := ident.New()
	a.Assign(id, a.t.now(), b)
	return id
}

// Assign applies a write of b at ts under the last-writer-wins policy.
// A nil b assigns a tombstone.
func (a *Arena) Assign(id ident.Id, ts Timestamp, b Block) Outcome {
	out := a.t.assign(id, ts, b)
	a.t.observer.ObserveAssign(out)
	return out
}

// Remove clears the payload of id, keeping its entry as a tombstone so
// older writes cannot bring it back.
func (a *Arena) Remove(id ident.Id) bool {
	e := a.t.lookup(id)
	if e == nil {
		return false
	}
	if e.borrowed() {
		panic(fmt.Errorf("%w: removal of %s during access", ErrReentrantAccess, id))
	}
	e.payload = nil
	e.timestamp = max(e.timestamp, a.t.now())
	return true
}

// TimestampOf returns the timestamp of id, tombstones included.
func (a *Arena) TimestampOf(id ident.Id) (Timestamp, bool) {
	if a.t.closed {
		return 0, false
	}
	e, ok := a.t.entries[id]
	if !ok {
		return 0, false
	}
	return e.timestamp, true
}

// Contains reports whether id holds a live block of any type.
func (a *Arena) Contains(id ident.Id) bool {
	return a.t.lookup(id) != nil
}

// Tombstoned reports whether id is known but deleted.
func (a *Arena) Tombstoned(id ident.Id) bool {
	if a.t.closed {
		return false
	}
	e, ok := a.t.entries[id]
	return ok && e.payload == nil
}
