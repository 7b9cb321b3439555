package arena

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/pixil98/go-tabletop/internal/ident"
)

// note is a leaf block used throughout the tests.
type note struct {
	Text string `json:"text"`
}

func (n *note) TypeName() string { return "Note" }
func (n *note) Pack() (json.RawMessage, error) { return json.Marshal(n) }
func (n *note) Children() []ident.Id { return nil }
func (n *note) Resources() []ident.Id { return nil }
func (n *note) Validate() error {
	if n.Text == "invalid" {
		return errors.New("invalid note")
	}
	return nil
}

// folder refers to other blocks and resources.
type folder struct {
	Name  string     `json:"name"`
	Kids  []ident.Id `json:"kids"`
	Files []ident.Id `json:"files"`
}

func (f *folder) TypeName() string { return "Folder" }
func (f *folder) Pack() (json.RawMessage, error) { return json.Marshal(f) }
func (f *folder) Children() []ident.Id { return f.Kids }
func (f *folder) Resources() []ident.Id { return f.Files }

func testRegistry() *Registry {
	r := NewRegistry()
	RegisterJSON[note](r, "Note")
	RegisterJSON[folder](r, "Folder")
	return r
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	now Timestamp
}

func (c *fakeClock) Now() Timestamp {
	return c.now
}

func newTestArena(t *testing.T) (*Arena, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: 1000}
	return New(WithClock(clock.Now), WithRegistry(testRegistry())), clock
}

// expectReentrantPanic runs fn and fails unless it panics with
// ErrReentrantAccess.
func expectReentrantPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrReentrantAccess) {
			t.Fatalf("expected ErrReentrantAccess panic, got %v", r)
		}
	}()
	fn()
}

type countingObserver struct {
	assigns map[Outcome]int
	drops   map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{assigns: map[Outcome]int{}, drops: map[string]int{}}
}

func (o *countingObserver) ObserveAssign(out Outcome) { o.assigns[out]++ }
func (o *countingObserver) ObserveDrop(reason string) { o.drops[reason]++ }
