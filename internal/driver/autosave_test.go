package driver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-tabletop/internal/ident"
	"github.com/pixil98/go-tabletop/internal/session"
	"github.com/pixil98/go-tabletop/internal/storage"
	"github.com/pixil98/go-testutil"
)

type fakeRoom struct {
	snap storage.Snapshot
	err  error
}

func (f *fakeRoom) Snapshot(context.Context) (storage.Snapshot, error) {
	return f.snap, f.err
}

type countingDB struct {
	storage.DB
	opened int
}

func (c *countingDB) Collection(category string) (storage.Collection, error) {
	c.opened++
	return c.DB.Collection(category)
}

func TestAutosave_Tick(t *testing.T) {
	ctx := context.Background()
	fileDB, err := storage.NewFileDB(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	db := &countingDB{DB: fileDB}

	world := ident.New()
	room := &fakeRoom{err: session.ErrNoWorld}
	a := NewAutosave(room, db)

	if err := a.Tick(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "nothing to save", db.opened, 0)

	room.err = nil
	room.snap = storage.Snapshot{
		Blocks:  map[ident.Id]json.RawMessage{world: json.RawMessage(`{"v":1}`)},
		Context: storage.Context{World: world, SavedAt: 1},
	}
	if err := a.Tick(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved := db.opened
	testutil.AssertEqual(t, "saved", saved > 0, true)

	// Only the save time moved, so nothing is written.
	room.snap.Context.SavedAt = 2
	if err := a.Tick(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "unchanged", db.opened, saved)

	room.snap.Blocks = map[ident.Id]json.RawMessage{world: json.RawMessage(`{"v":2}`)}
	if err := a.Tick(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "changed", db.opened > saved, true)

	got, err := storage.Load(ctx, fileDB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "latest pack", string(got.Blocks[world]), `{"v":2}`)
}

func TestAutosave_FailuresDoNotStopDriver(t *testing.T) {
	fileDB, err := storage.NewFileDB(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = fileDB.Close()

	room := &fakeRoom{snap: storage.Snapshot{Context: storage.Context{World: ident.New()}}}
	a := NewAutosave(room, fileDB)
	if err := a.Tick(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	room.err = errors.New("room gone")
	if err := a.Tick(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

type fakeTracker struct {
	beats   int
	beatErr error
	cutoff  time.Time
}

func (f *fakeTracker) Heartbeat() error {
	f.beats++
	return f.beatErr
}

func (f *fakeTracker) PrunePeers(cutoff time.Time) []string {
	f.cutoff = cutoff
	return []string{"gone"}
}

func TestPeerReaper_Tick(t *testing.T) {
	tests := map[string]struct {
		beatErr error
	}{
		"heartbeat sent":   {},
		"heartbeat failed": {beatErr: errors.New("bus closed")},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := &fakeTracker{beatErr: tt.beatErr}
			r := NewPeerReaper(p, time.Minute)
			r.now = func() time.Time { return time.Unix(1000, 0) }

			if err := r.Tick(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "beats", p.beats, 1)
			testutil.AssertEqual(t, "cutoff", p.cutoff, time.Unix(940, 0))
		})
	}
}
