package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-tabletop/internal/arena"
	"github.com/pixil98/go-tabletop/internal/block"
	"github.com/pixil98/go-tabletop/internal/ident"
	"github.com/pixil98/go-tabletop/internal/protocol"
	"github.com/pixil98/go-tabletop/internal/storage"
)

var ErrNoEffect = errors.New("session: message had no effect")

// Apply changes local state for m and then sends m to the other peers.
// Nothing is sent when m changed nothing locally.
func (r *Room) Apply(ctx context.Context, m protocol.Msg) error {
	err := r.Do(ctx, func(*State) error {
		if !r.apply(m) {
			return fmt.Errorf("%w: %s", ErrNoEffect, m.Type())
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.publish(m)
}

// Share sends root and everything below it, along with the resources they
// use, to the other peers.
func (r *Room) Share(ctx context.Context, root ident.Id) error {
	var blocks, resources map[ident.Id]json.RawMessage
	err := r.Do(ctx, func(s *State) error {
		a := s.Arena()
		blocks = a.PackListed(arena.DependentsOf[arena.Block](a, root))
		resources = s.Resources().PackListed(arena.ResourcesOf[arena.Block](a, root))
		return nil
	})
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		return fmt.Errorf("sharing %s: block not found", root)
	}
	return r.publishPacks(blocks, resources)
}

// Remove deletes ids locally and sends the deletions to the other peers.
func (r *Room) Remove(ctx context.Context, ids ...ident.Id) error {
	var tombstones map[ident.Id]json.RawMessage
	err := r.Do(ctx, func(s *State) error {
		a := s.Arena()
		for _, id := range ids {
			a.Remove(id)
		}
		tombstones = a.PackTombstones(ident.NewSet(ids...))
		return nil
	})
	if err != nil {
		return err
	}
	if len(tombstones) == 0 {
		return nil
	}
	return r.publish(protocol.SetBlockPacks{Packs: tombstones})
}

// ShareContext tells the other peers which world and chat are current.
func (r *Room) ShareContext(ctx context.Context) error {
	var msg protocol.SetContext
	err := r.Do(ctx, func(s *State) error {
		if s.World().IsNil() {
			return ErrNoWorld
		}
		msg = protocol.SetContext{World: s.World(), Chat: s.Chat()}
		return nil
	})
	if err != nil {
		return err
	}
	return r.publish(msg)
}

// ShareState sends the whole world and chat, then the context naming them.
func (r *Room) ShareState(ctx context.Context) error {
	var st statePacks
	err := r.Do(ctx, func(s *State) error {
		if s.World().IsNil() {
			return ErrNoWorld
		}
		st = r.statePacks()
		return nil
	})
	if err != nil {
		return err
	}
	return r.publishState(st)
}

// PostChat stores msg, places it on tab and sends both to the other peers.
func (r *Room) PostChat(ctx context.Context, tab ident.Id, msg *block.ChatMessage) (ident.Id, error) {
	var (
		id    ident.Id
		packs map[ident.Id]json.RawMessage
		item  protocol.InsertChatItem
	)
	err := r.Do(ctx, func(s *State) error {
		a := s.Arena()
		if _, ok := arena.Get[*block.ChatTab](a, tab); !ok {
			return fmt.Errorf("%w: %s", ErrNoSuchTab, tab)
		}

		msg.SentAt = a.Now()
		id = a.Add(msg)
		item = protocol.InsertChatItem{Tab: tab, Item: id, Timestamp: msg.SentAt}
		r.apply(item)
		packs = a.PackListed(ident.NewSet(id))
		return nil
	})
	if err != nil {
		return ident.Nil, err
	}

	if err := r.publish(protocol.SetBlockPacks{Packs: packs}); err != nil {
		return id, err
	}
	return id, r.publish(item)
}

// Bootstrap gives an empty room a world with one table and a chat with a
// "main" tab. A room that already has a world is left alone.
func (r *Room) Bootstrap(ctx context.Context) error {
	return r.Do(ctx, func(s *State) error {
		if !s.World().IsNil() {
			return nil
		}
		a := s.Arena()

		texture := a.Add(block.NewTableTexture(1024, 1024))
		table := a.Add(block.NewTable(texture, [2]float64{20, 20}, ""))
		world := a.Add(block.NewWorld(table))

		tab := a.Add(block.NewChatTab("main"))
		chat := a.Add(block.NewChat(tab))

		s.SetContext(world, chat)
		return nil
	})
}

// JoinOrCreate gives a freshly started room its world. Peers already in the
// room answer Join with theirs, and a live room wins over anything saved
// locally, so that answer is waited for first. Only when nothing arrives
// within grace is saved restored, or a fresh world created when saved is nil
// or unreadable, and then shared. It reports whether the world came from a
// peer.
func (r *Room) JoinOrCreate(ctx context.Context, grace time.Duration, saved *storage.Snapshot) (bool, error) {
	// The loop serves Do only after Join has gone out, so grace starts there.
	if err := r.Do(ctx, func(*State) error { return nil }); err != nil {
		return false, err
	}
	joined, err := r.AwaitWorld(ctx, grace)
	if err != nil {
		return false, err
	}
	if joined {
		slog.InfoContext(ctx, "joined world from peer", "room", r.name)
		return true, nil
	}

	err = ErrNoWorld
	if saved != nil {
		err = r.Restore(ctx, *saved)
		if errors.Is(err, ErrNoWorld) {
			slog.WarnContext(ctx, "saved world is unreadable", "room", r.name)
		}
	}
	if errors.Is(err, ErrNoWorld) {
		slog.InfoContext(ctx, "starting a fresh world", "room", r.name)
		err = r.Bootstrap(ctx)
	}
	if err != nil {
		return false, err
	}
	return false, r.ShareState(ctx)
}

// Snapshot captures the world and chat for saving.
func (r *Room) Snapshot(ctx context.Context) (storage.Snapshot, error) {
	var snap storage.Snapshot
	err := r.Do(ctx, func(s *State) error {
		if s.World().IsNil() {
			return ErrNoWorld
		}
		st := r.statePacks()
		// Tombstones are kept so a stale copy from a peer cannot bring a
		// deleted block back after a restart.
		for id, raw := range r.arena.PackTombstones(r.arena.Tombstones()) {
			st.blocks[id] = raw
		}
		snap = storage.Snapshot{
			Blocks:    st.blocks,
			Resources: st.resources,
			Context: storage.Context{
				World:   st.context.World,
				Chat:    st.context.Chat,
				SavedAt: float64(s.Arena().Now()),
			},
		}
		return nil
	})
	return snap, err
}

// Restore merges a saved snapshot into the room and makes its world current.
func (r *Room) Restore(ctx context.Context, snap storage.Snapshot) error {
	return r.Do(ctx, func(s *State) error {
		s.Resources().ApplyPacks(snap.Resources)
		res := s.Arena().ApplyPacks(snap.Blocks)
		if res.Dropped > 0 {
			slog.WarnContext(ctx, "snapshot had unreadable blocks", "room", r.name, "dropped", res.Dropped, "total", len(snap.Blocks))
		}
		if _, ok := arena.Get[*block.World](s.Arena(), snap.Context.World); !ok {
			return fmt.Errorf("restoring snapshot: %w", ErrNoWorld)
		}
		s.SetContext(snap.Context.World, snap.Context.Chat)
		return nil
	})
}

type statePacks struct {
	blocks    map[ident.Id]json.RawMessage
	resources map[ident.Id]json.RawMessage
	context   protocol.SetContext
}

// statePacks packs the world and chat closures. It runs on the room loop.
func (r *Room) statePacks() statePacks {
	deps := arena.DependentsOf[*block.World](r.arena, r.world)
	deps.Union(arena.DependentsOf[*block.Chat](r.arena, r.chat))
	res := arena.ResourcesOf[*block.World](r.arena, r.world)
	res.Union(arena.ResourcesOf[*block.Chat](r.arena, r.chat))

	return statePacks{
		blocks:    r.arena.PackListed(deps),
		resources: r.resources.PackListed(res),
		context:   protocol.SetContext{World: r.world, Chat: r.chat},
	}
}

func (r *Room) publishState(st statePacks) error {
	if err := r.publishPacks(st.blocks, st.resources); err != nil {
		return err
	}
	return r.publish(st.context)
}

// publishPacks sends resources before the blocks that refer to them.
func (r *Room) publishPacks(blocks, resources map[ident.Id]json.RawMessage) error {
	if len(resources) > 0 {
		if err := r.publish(protocol.SetResourcePacks{Packs: resources}); err != nil {
			return err
		}
	}
	if len(blocks) > 0 {
		return r.publish(protocol.SetBlockPacks{Packs: blocks})
	}
	return nil
}
