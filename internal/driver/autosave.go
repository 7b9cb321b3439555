package driver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"slices"

	"golang.org/x/crypto/blake2b"

	"github.com/pixil98/go-tabletop/internal/ident"
	"github.com/pixil98/go-tabletop/internal/session"
	"github.com/pixil98/go-tabletop/internal/storage"
)

// Snapshotter is the part of a room the autosave manager needs.
type Snapshotter interface {
	Snapshot(ctx context.Context) (storage.Snapshot, error)
}

// Autosave writes the room's state to storage whenever it has changed
// since the last save.
type Autosave struct {
	room Snapshotter
	db   storage.DB
	last [blake2b.Size256]byte
}

func NewAutosave(room Snapshotter, db storage.DB) *Autosave {
	return &Autosave{room: room, db: db}
}

// Tick never fails the driver. A failed save is logged and retried on the
// next tick.
func (a *Autosave) Tick(ctx context.Context) error {
	snap, err := a.room.Snapshot(ctx)
	if errors.Is(err, session.ErrNoWorld) {
		return nil
	}
	if err != nil {
		slog.WarnContext(ctx, "autosave snapshot failed", "error", err)
		return nil
	}

	sum := digest(snap)
	if sum == a.last {
		return nil
	}

	if err := storage.Save(ctx, a.db, snap); err != nil {
		slog.WarnContext(ctx, "autosave failed", "error", err)
		return nil
	}
	a.last = sum

	slog.InfoContext(ctx, "autosaved", "world", snap.Context.World, "blocks", len(snap.Blocks))
	return nil
}

// digest covers the packs and context ids but not the save time.
func digest(snap storage.Snapshot) [blake2b.Size256]byte {
	h, _ := blake2b.New256(nil)
	write := func(packs map[ident.Id]json.RawMessage) {
		for _, id := range slices.SortedFunc(maps.Keys(packs), ident.Id.Compare) {
			h.Write(id[:])
			h.Write(packs[id])
		}
		h.Write([]byte{0})
	}
	write(snap.Blocks)
	write(snap.Resources)
	h.Write(snap.Context.World[:])
	h.Write(snap.Context.Chat[:])

	var sum [blake2b.Size256]byte
	copy(sum[:], h.Sum(nil))
	return sum
}
