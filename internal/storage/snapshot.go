package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-tabletop/internal/ident"
)

var ErrNoSnapshot = errors.New("storage: no saved snapshot")

// Context names the world and chat a snapshot was taken from.
type Context struct {
	World   ident.Id `json:"world_id"`
	Chat    ident.Id `json:"chat_id"`
	SavedAt float64  `json:"saved_at"`
}

// Snapshot is everything needed to restore a room.
type Snapshot struct {
	Blocks    map[ident.Id]json.RawMessage
	Resources map[ident.Id]json.RawMessage
	Context   Context
}

// Save replaces the stored state with snap.
func Save(ctx context.Context, db DB, snap Snapshot) error {
	if snap.Context.World.IsNil() {
		return fmt.Errorf("saving snapshot: world must be set")
	}

	client, err := json.Marshal(snap.Context)
	if err != nil {
		return fmt.Errorf("marshalling context: %w", err)
	}

	categories := []struct {
		name  string
		packs map[ident.Id]json.RawMessage
	}{
		{CategoryResources, snap.Resources},
		{CategoryTables, snap.Blocks},
		{CategoryClient, map[ident.Id]json.RawMessage{snap.Context.World: client}},
	}

	for _, cat := range categories {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := db.Collection(cat.name)
		if err != nil {
			return err
		}
		if err := replace(c, cat.packs); err != nil {
			return fmt.Errorf("saving %s: %w", cat.name, err)
		}
	}

	slog.DebugContext(ctx, "snapshot saved",
		"world", snap.Context.World,
		"blocks", len(snap.Blocks),
		"resources", len(snap.Resources))
	return nil
}

// Load reads back the state written by Save. When more than one context
// is stored the most recently saved one wins.
func Load(ctx context.Context, db DB) (Snapshot, error) {
	var snap Snapshot

	client, err := db.Collection(CategoryClient)
	if err != nil {
		return snap, err
	}
	contexts, err := client.All()
	if err != nil {
		return snap, fmt.Errorf("loading %s: %w", CategoryClient, err)
	}

	found := false
	for id, raw := range contexts {
		var c Context
		if err := json.Unmarshal(raw, &c); err != nil {
			slog.WarnContext(ctx, "skipping unreadable context", "id", id, "error", err)
			continue
		}
		if !found || c.SavedAt > snap.Context.SavedAt {
			snap.Context = c
			found = true
		}
	}
	if !found {
		return snap, ErrNoSnapshot
	}

	for _, cat := range []struct {
		name string
		dst  *map[ident.Id]json.RawMessage
	}{
		{CategoryTables, &snap.Blocks},
		{CategoryResources, &snap.Resources},
	} {
		if err := ctx.Err(); err != nil {
			return snap, err
		}
		c, err := db.Collection(cat.name)
		if err != nil {
			return snap, err
		}
		if *cat.dst, err = c.All(); err != nil {
			return snap, fmt.Errorf("loading %s: %w", cat.name, err)
		}
	}

	return snap, nil
}
