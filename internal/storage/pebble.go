package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/pebble"

	"github.com/pixil98/go-tabletop/internal/ident"
)

// PebbleDB stores every category in one pebble database. Keys are
// "<category>/" followed by the 16 id bytes.
type PebbleDB struct {
	db     *pebble.DB
	closed atomic.Bool
}

func OpenPebbleDB(path string, opts *pebble.Options) (*PebbleDB, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("opening pebble db: %w", err)
	}
	return &PebbleDB{db: db}, nil
}

func (p *PebbleDB) Collection(category string) (Collection, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	return &pebbleCollection{p: p, prefix: []byte(category + "/")}, nil
}

// Metrics exposes the underlying database statistics.
func (p *PebbleDB) Metrics() *pebble.Metrics {
	return p.db.Metrics()
}

func (p *PebbleDB) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.db.Close()
}

type pebbleCollection struct {
	p      *PebbleDB
	prefix []byte
}

func (c *pebbleCollection) key(id ident.Id) []byte {
	k := make([]byte, 0, len(c.prefix)+len(id))
	k = append(k, c.prefix...)
	return append(k, id[:]...)
}

// upperBound is the first key past every key carrying the prefix.
func (c *pebbleCollection) upperBound() []byte {
	ub := append([]byte{}, c.prefix...)
	ub[len(ub)-1]++
	return ub
}

func (c *pebbleCollection) Put(id ident.Id, raw json.RawMessage) error {
	if c.p.closed.Load() {
		return ErrClosed
	}
	return c.p.db.Set(c.key(id), raw, pebble.Sync)
}

func (c *pebbleCollection) Get(id ident.Id) (json.RawMessage, bool, error) {
	if c.p.closed.Load() {
		return nil, false, ErrClosed
	}

	val, closer, err := c.p.db.Get(c.key(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = closer.Close() }()

	return append(json.RawMessage{}, val...), true, nil
}

func (c *pebbleCollection) All() (map[ident.Id]json.RawMessage, error) {
	if c.p.closed.Load() {
		return nil, ErrClosed
	}

	it, err := c.p.db.NewIter(&pebble.IterOptions{
		LowerBound: c.prefix,
		UpperBound: c.upperBound(),
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = it.Close() }()

	vals := map[ident.Id]json.RawMessage{}
	for it.First(); it.Valid(); it.Next() {
		id, err := ident.FromBytes(it.Key()[len(c.prefix):])
		if err != nil {
			return nil, fmt.Errorf("decoding key %q: %w", it.Key(), err)
		}
		vals[id] = append(json.RawMessage{}, it.Value()...)
	}
	return vals, it.Error()
}

func (c *pebbleCollection) Delete(id ident.Id) error {
	if c.p.closed.Load() {
		return ErrClosed
	}
	return c.p.db.Delete(c.key(id), pebble.Sync)
}
