package arena

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/pixil98/go-tabletop/internal/ident"
)

// tombstoneTypeName marks a packed deletion.
const tombstoneTypeName = "_"

// Pack is the wire and storage form of one entry.
type Pack struct {
	TypeName  string          `json:"type_name"`
	Timestamp Timestamp       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// wirePack is used for decoding so missing fields can be told apart from
// zero values.
type wirePack struct {
	TypeName  *string         `json:"type_name"`
	Timestamp *Timestamp      `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// ApplyResult counts what happened to a batch of packs.
type ApplyResult struct {
	Applied int
	Stale   int
	Dropped int
}

func (r *ApplyResult) add(o ApplyResult) {
	r.Applied += o.Applied
	r.Stale += o.Stale
	r.Dropped += o.Dropped
}

// UnpackBlock decodes one pack. A nil block with a nil error is a tombstone.
func UnpackBlock(reg *Registry, raw json.RawMessage) (Timestamp, Block, error) {
	var wp wirePack
	if err := json.Unmarshal(raw, &wp); err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrMalformedPack, err)
	}
	if wp.TypeName == nil || *wp.TypeName == "" {
		return 0, nil, fmt.Errorf("%w: missing type_name", ErrMalformedPack)
	}
	if wp.Timestamp == nil {
		return 0, nil, fmt.Errorf("%w: missing timestamp", ErrMalformedPack)
	}
	if len(wp.Payload) == 0 || string(wp.Payload) == "null" {
		return 0, nil, fmt.Errorf("%w: missing payload", ErrMalformedPack)
	}

	if *wp.TypeName == tombstoneTypeName {
		return *wp.Timestamp, nil, nil
	}

	b, err := reg.Unpack(*wp.TypeName, wp.Payload)
	if err != nil {
		return 0, nil, err
	}
	return *wp.Timestamp, b, nil
}

func packEntry(e *entry) (json.RawMessage, error) {
	p := Pack{TypeName: tombstoneTypeName, Timestamp: e.timestamp, Payload: json.RawMessage("{}")}
	if e.payload != nil {
		payload, err := e.payload.Pack()
		if err != nil {
			return nil, err
		}
		p.TypeName = e.payload.TypeName()
		p.Payload = payload
	}
	return json.Marshal(p)
}

// PackListed serializes every live block in ids. Missing and tombstoned ids
// are left out. All ids are packed in one synchronous step, so the result is
// a consistent snapshot of the listed blocks.
func (a *Arena) PackListed(ids ident.Set) map[ident.Id]json.RawMessage {
	packs := make(map[ident.Id]json.RawMessage, len(ids))
	for id := range ids {
		e := a.t.lookup(id)
		if e == nil {
			continue
		}
		raw, err := a.packLive(id, e)
		if err != nil {
			slog.Warn("packing block", "id", id, "type", e.payload.TypeName(), "error", err)
			continue
		}
		packs[id] = raw
	}
	return packs
}

func (a *Arena) packLive(id ident.Id, e *entry) (json.RawMessage, error) {
	e.beginRead(id)
	defer e.endRead()
	return packEntry(e)
}

// PackTombstones serializes the tombstones among ids so deletions can be
// sent to peers.
func (a *Arena) PackTombstones(ids ident.Set) map[ident.Id]json.RawMessage {
	packs := map[ident.Id]json.RawMessage{}
	if a.t.closed {
		return packs
	}
	for id := range ids {
		e, ok := a.t.entries[id]
		if !ok || e.payload != nil {
			continue
		}
		raw, err := packEntry(e)
		if err != nil {
			continue
		}
		packs[id] = raw
	}
	return packs
}

// Tombstones lists every deleted id still held by the arena.
func (a *Arena) Tombstones() ident.Set {
	ids := ident.Set{}
	if a.t.closed {
		return ids
	}
	for id, e := range a.t.entries {
		if e.payload == nil {
			ids.Add(id)
		}
	}
	return ids
}

// PackAll serializes every live block in the arena.
func (a *Arena) PackAll() map[ident.Id]json.RawMessage {
	ids := ident.Set{}
	if !a.t.closed {
		for id := range a.t.entries {
			ids.Add(id)
		}
	}
	return a.PackListed(ids)
}

// ApplyPacks assigns each pack through the merge policy. A pack that cannot
// be decoded is dropped without affecting the others.
func (a *Arena) ApplyPacks(packs map[ident.Id]json.RawMessage) ApplyResult {
	ids := make([]ident.Id, 0, len(packs))
	for id := range packs {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, ident.Id.Compare)

	var res ApplyResult
	for _, id := range ids {
		res.add(a.applyPack(id, packs[id]))
	}
	return res
}

func (a *Arena) applyPack(id ident.Id, raw json.RawMessage) ApplyResult {
	ts, b, err := UnpackBlock(a.t.registry, raw)
	if err != nil {
		reason := DropMalformed
		if errors.Is(err, ErrUnknownType) {
			reason = DropUnknownType
		}
		a.t.observer.ObserveDrop(reason)
		slog.Warn("dropping block pack", "id", id, "reason", reason, "error", err)
		return ApplyResult{Dropped: 1}
	}

	if a.Assign(id, ts, b).Applied() {
		return ApplyResult{Applied: 1}
	}
	return ApplyResult{Stale: 1}
}

// ComparePacks orders two packs for the same id the way Assign would order
// the writes they carry: by timestamp, then by the equal timestamp tie break.
// A pack that cannot be read sorts below any pack that can.
func ComparePacks(x, y json.RawMessage) int {
	xk, xok := readPackKey(x)
	yk, yok := readPackKey(y)
	switch {
	case !xok && !yok:
		return bytes.Compare(x, y)
	case !xok:
		return -1
	case !yok:
		return 1
	}

	if c := cmp.Compare(xk.ts, yk.ts); c != 0 {
		return c
	}
	switch {
	case xk.tomb && yk.tomb:
		return 0
	case xk.tomb:
		return 1
	case yk.tomb:
		return -1
	}
	return bytes.Compare(xk.canonical, yk.canonical)
}

type packKey struct {
	ts        Timestamp
	tomb      bool
	canonical []byte
}

// readPackKey extracts what the merge policy looks at without unpacking the
// block. The canonical form matches canonical() for a compact payload.
func readPackKey(raw json.RawMessage) (packKey, bool) {
	var wp wirePack
	if err := json.Unmarshal(raw, &wp); err != nil {
		return packKey{}, false
	}
	if wp.TypeName == nil || *wp.TypeName == "" || wp.Timestamp == nil {
		return packKey{}, false
	}
	if *wp.TypeName == tombstoneTypeName {
		return packKey{ts: *wp.Timestamp, tomb: true}, true
	}

	var buf bytes.Buffer
	buf.WriteString(*wp.TypeName)
	buf.WriteByte(0)
	if err := json.Compact(&buf, wp.Payload); err != nil {
		return packKey{}, false
	}
	return packKey{ts: *wp.Timestamp, canonical: buf.Bytes()}, true
}
