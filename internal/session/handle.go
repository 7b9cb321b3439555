package session

import (
	"log/slog"

	"github.com/pixil98/go-tabletop/internal/arena"
	"github.com/pixil98/go-tabletop/internal/block"
	"github.com/pixil98/go-tabletop/internal/protocol"
)

// handle applies a message from another peer. It runs on the room loop.
func (r *Room) handle(env protocol.Envelope) {
	if _, ok := env.Msg.(protocol.Heartbeat); ok {
		return
	}
	if _, ok := env.Msg.(protocol.Join); ok {
		slog.Info("peer joined", "room", r.name, "peer", env.Src)
		if r.world.IsNil() {
			return
		}
		if err := r.publishState(r.statePacks()); err != nil {
			slog.Warn("sending state to new peer", "room", r.name, "peer", env.Src, "error", err)
		}
		return
	}

	if !r.apply(env.Msg) {
		slog.Debug("message had no effect", "room", r.name, "peer", env.Src, "type", env.Msg.Type())
	}
}

// apply changes local state for m and reports whether anything changed.
func (r *Room) apply(m protocol.Msg) bool {
	switch m := m.(type) {
	case protocol.SetContext:
		r.setContext(m.World, m.Chat)
		return true

	case protocol.SetBlockPacks:
		r.observeRowDrops(m.Dropped)
		res := r.arena.ApplyPacks(m.Packs)
		slog.Debug("applied block packs", "room", r.name,
			"applied", res.Applied, "stale", res.Stale, "dropped", res.Dropped)
		return res.Applied > 0

	case protocol.SetResourcePacks:
		r.observeRowDrops(m.Dropped)
		res := r.resources.ApplyPacks(m.Packs)
		slog.Debug("applied resource packs", "room", r.name,
			"applied", res.Applied, "stale", res.Stale, "dropped", res.Dropped)
		return res.Applied > 0

	case protocol.InsertChatItem:
		inserted := false
		arena.Modify(r.arena, m.Tab, func(t *block.ChatTab) {
			inserted = t.Insert(m.Timestamp, m.Item)
		})
		return inserted

	case protocol.DrawLine:
		return arena.Modify(r.arena, m.Texture, func(t *block.TableTexture) {
			t.DrawLine(m.A, m.B, m.Color, m.LineWidth)
		})

	case protocol.EraseLine:
		return arena.Modify(r.arena, m.Texture, func(t *block.TableTexture) {
			t.EraseLine(m.A, m.B, m.LineWidth)
		})

	case protocol.ClearTable:
		return arena.Modify(r.arena, m.Texture, func(t *block.TableTexture) {
			t.Clear()
		})
	}

	return false
}

// observeRowDrops reports pack rows the decoder could not read.
func (r *Room) observeRowDrops(n int) {
	for range n {
		r.observer.ObserveDrop(arena.DropMalformed)
	}
}
