package resource

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/blake2b"

	"github.com/pixil98/go-tabletop/internal/arena"
	"github.com/pixil98/go-tabletop/internal/ident"
)

var ErrDigestMismatch = errors.New("resource: digest mismatch")

// Data is an opaque binary blob such as an uploaded image.
type Data struct {
	MimeType string
	Bytes    []byte
}

// Digest returns the hex blake2b-256 sum of the blob.
func (d Data) Digest() string {
	sum := blake2b.Sum256(d.Bytes)
	return hex.EncodeToString(sum[:])
}

type pack struct {
	Type    *string `json:"type"`
	Payload []byte  `json:"payload"`
	Digest  string  `json:"digest"`
}

func (d Data) Pack() (json.RawMessage, error) {
	payload := d.Bytes
	if payload == nil {
		// nil would marshal as null, which Unpack reads as missing.
		payload = []byte{}
	}
	return json.Marshal(pack{Type: &d.MimeType, Payload: payload, Digest: d.Digest()})
}

// Unpack decodes a resource pack and checks its digest.
func Unpack(raw json.RawMessage) (Data, error) {
	var p pack
	if err := json.Unmarshal(raw, &p); err != nil {
		return Data{}, fmt.Errorf("%w: %w", arena.ErrMalformedPack, err)
	}
	if p.Type == nil || p.Payload == nil {
		return Data{}, fmt.Errorf("%w: missing type or payload", arena.ErrMalformedPack)
	}

	d := Data{MimeType: *p.Type, Bytes: p.Payload}
	if got := d.Digest(); got != p.Digest {
		return Data{}, fmt.Errorf("%w: %w: have %s, want %s", arena.ErrMalformedPack, ErrDigestMismatch, got, p.Digest)
	}
	return d, nil
}

// DropObserver is told about every resource pack that could not be applied.
// arena.Observer satisfies it.
type DropObserver interface {
	ObserveDrop(reason string)
}

type Option func(*Table)

func WithObserver(o DropObserver) Option {
	return func(t *Table) {
		t.observer = o
	}
}

// Table holds binary resources by id. Resources never change once stored,
// so there is nothing to merge: the first copy of an id wins.
type Table struct {
	entries  map[ident.Id]Data
	observer DropObserver
}

func New(opts ...Option) *Table {
	t := &Table{entries: map[ident.Id]Data{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) Len() int {
	return len(t.entries)
}

func (t *Table) Add(d Data) ident.Id {
	id := ident.New()
	t.entries[id] = d
	return id
}

// Assign stores d under id unless id is already present.
func (t *Table) Assign(id ident.Id, d Data) bool {
	if _, ok := t.entries[id]; ok {
		return false
	}
	t.entries[id] = d
	return true
}

func (t *Table) Get(id ident.Id) (Data, bool) {
	d, ok := t.entries[id]
	return d, ok
}

func (t *Table) Contains(id ident.Id) bool {
	_, ok := t.entries[id]
	return ok
}

// PackListed packs each listed resource that is present. Missing ids are
// left out of the result.
func (t *Table) PackListed(ids ident.Set) map[ident.Id]json.RawMessage {
	packs := make(map[ident.Id]json.RawMessage, len(ids))
	for id := range ids {
		d, ok := t.entries[id]
		if !ok {
			continue
		}
		raw, err := d.Pack()
		if err != nil {
			slog.Warn("packing resource", "id", id, "error", err)
			continue
		}
		packs[id] = raw
	}
	return packs
}

func (t *Table) PackAll() map[ident.Id]json.RawMessage {
	ids := make(ident.Set, len(t.entries))
	for id := range t.entries {
		ids.Add(id)
	}
	return t.PackListed(ids)
}

// ApplyPacks stores every well formed pack whose id is not already present.
// Present ids count as stale.
func (t *Table) ApplyPacks(packs map[ident.Id]json.RawMessage) arena.ApplyResult {
	var res arena.ApplyResult

	ids := make(ident.Set, len(packs))
	for id := range packs {
		ids.Add(id)
	}

	for _, id := range ids.Sorted() {
		d, err := Unpack(packs[id])
		if err != nil {
			res.Dropped++
			if t.observer != nil {
				t.observer.ObserveDrop(arena.DropMalformed)
			}
			slog.Warn("dropping resource pack", "id", id, "reason", arena.DropMalformed, "error", err)
			continue
		}
		if t.Assign(id, d) {
			res.Applied++
		} else {
			res.Stale++
		}
	}

	return res
}
