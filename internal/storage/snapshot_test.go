package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-tabletop/internal/ident"
	"github.com/pixil98/go-testutil"
)

func testBackends(t *testing.T) map[string]func(t *testing.T) DB {
	return map[string]func(t *testing.T) DB{
		"file": func(t *testing.T) DB {
			db, err := NewFileDB(t.TempDir())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			return db
		},
		"pebble": func(t *testing.T) DB {
			db, err := OpenPebbleDB(filepath.Join(t.TempDir(), "db"), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			t.Cleanup(func() { _ = db.Close() })
			return db
		},
	}
}

func TestSaveLoad(t *testing.T) {
	for name, open := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			db := open(t)

			_, err := Load(ctx, db)
			testutil.AssertEqual(t, "empty store", errors.Is(err, ErrNoSnapshot), true)

			world, chat, dropped := ident.New(), ident.New(), ident.New()
			first := Snapshot{
				Blocks: map[ident.Id]json.RawMessage{
					world:   json.RawMessage(`{"w":1}`),
					chat:    json.RawMessage(`{"c":1}`),
					dropped: json.RawMessage(`{"d":1}`),
				},
				Resources: map[ident.Id]json.RawMessage{ident.New(): json.RawMessage(`{"r":1}`)},
				Context:   Context{World: world, Chat: chat, SavedAt: 10},
			}
			if err := Save(ctx, db, first); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			second := Snapshot{
				Blocks: map[ident.Id]json.RawMessage{
					world: json.RawMessage(`{"w":2}`),
					chat:  json.RawMessage(`{"c":1}`),
				},
				Context: Context{World: world, Chat: chat, SavedAt: 20},
			}
			if err := Save(ctx, db, second); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, err := Load(ctx, db)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "world", got.Context.World, world)
			testutil.AssertEqual(t, "chat", got.Context.Chat, chat)
			testutil.AssertEqual(t, "saved at", got.Context.SavedAt, 20.0)
			testutil.AssertEqual(t, "blocks", len(got.Blocks), 2)
			testutil.AssertEqual(t, "world pack", string(got.Blocks[world]), `{"w":2}`)
			testutil.AssertEqual(t, "resources pruned", len(got.Resources), 0)
		})
	}
}

func TestSave_RequiresWorld(t *testing.T) {
	db, err := NewFileDB(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = Save(context.Background(), db, Snapshot{})
	testutil.AssertErrorContains(t, err, "world must be set")
}

func TestSave_Cancelled(t *testing.T) {
	db, err := NewFileDB(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = Save(ctx, db, Snapshot{Context: Context{World: ident.New()}})
	testutil.AssertEqual(t, "cancelled", errors.Is(err, context.Canceled), true)
}
