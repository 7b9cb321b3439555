package arena

import (
	"testing"

	"github.com/pixil98/go-tabletop/internal/ident"
	"github.com/pixil98/go-testutil"
)

type write struct {
	ts   Timestamp
	text string
	tomb bool
}

func (w write) block() Block {
	if w.tomb {
		return nil
	}
	return &note{Text: w.text}
}

func TestAssign_LastWriterWins(t *testing.T) {
	tests := map[string]struct {
		writes      []write
		expOutcomes []Outcome
		expTs       Timestamp
		expText     string
		expLive     bool
	}{
		"newer then older": {
			writes:      []write{{ts: 5, text: "a"}, {ts: 3, text: "b"}},
			expOutcomes: []Outcome{Inserted, Stale},
			expTs:       5,
			expText:     "a",
			expLive:     true,
		},
		"older then newer": {
			writes:      []write{{ts: 3, text: "b"}, {ts: 5, text: "a"}},
			expOutcomes: []Outcome{Inserted, Overwritten},
			expTs:       5,
			expText:     "a",
			expLive:     true,
		},
		"equal timestamps keep greater payload": {
			writes:      []write{{ts: 5, text: "a"}, {ts: 5, text: "b"}},
			expOutcomes: []Outcome{Inserted, Overwritten},
			expTs:       5,
			expText:     "b",
			expLive:     true,
		},
		"equal timestamps reversed": {
			writes:      []write{{ts: 5, text: "b"}, {ts: 5, text: "a"}},
			expOutcomes: []Outcome{Inserted, Stale},
			expTs:       5,
			expText:     "b",
			expLive:     true,
		},
		"identical write is stale": {
			writes:      []write{{ts: 5, text: "a"}, {ts: 5, text: "a"}},
			expOutcomes: []Outcome{Inserted, Stale},
			expTs:       5,
			expText:     "a",
			expLive:     true,
		},
		"tombstone wins tie": {
			writes:      []write{{ts: 5, text: "a"}, {ts: 5, tomb: true}},
			expOutcomes: []Outcome{Inserted, Overwritten},
			expTs:       5,
			expLive:     false,
		},
		"payload loses tie to tombstone": {
			writes:      []write{{ts: 5, tomb: true}, {ts: 5, text: "z"}},
			expOutcomes: []Outcome{Inserted, Stale},
			expTs:       5,
			expLive:     false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a, _ := newTestArena(t)
			id := ident.New()

			for i, w := range tt.writes {
				out := a.Assign(id, w.ts, w.block())
				testutil.AssertEqual(t, "outcome", out, tt.expOutcomes[i])
			}

			ts, _ := a.TimestampOf(id)
			testutil.AssertEqual(t, "timestamp", ts, tt.expTs)

			n, ok := Get[*note](a, id)
			testutil.AssertEqual(t, "live", ok, tt.expLive)
			if ok {
				testutil.AssertEqual(t, "text", n.Text, tt.expText)
			}
		})
	}
}

func TestAssign_OrderIndependent(t *testing.T) {
	writes := []write{
		{ts: 7, text: "c"},
		{ts: 2, text: "a"},
		{ts: 7, text: "d"},
		{ts: 4, tomb: true},
		{ts: 5, text: "b"},
	}

	var results []string
	for _, order := range [][]int{{0, 1, 2, 3, 4}, {4, 3, 2, 1, 0}, {2, 4, 0, 3, 1}} {
		a, _ := newTestArena(t)
		id := ident.New()
		for _, i := range order {
			a.Assign(id, writes[i].ts, writes[i].block())
		}
		n, ok := Get[*note](a, id)
		if !ok {
			t.Fatal("expected live note")
		}
		results = append(results, n.Text)
	}

	for _, r := range results {
		testutil.AssertEqual(t, "converged text", r, "d")
	}
}

func TestAssign_TombstonePermanence(t *testing.T) {
	a, clock := newTestArena(t)
	clock.now = 100
	id := a.Add(&note{Text: "original"})

	clock.now = 200
	a.Remove(id)

	out := a.Assign(id, 150, &note{Text: "stale"})
	testutil.AssertEqual(t, "lower outcome", out, Stale)
	_, ok := Get[*note](a, id)
	testutil.AssertEqual(t, "still absent", ok, false)

	out = a.Assign(id, 250, &note{Text: "revived"})
	testutil.AssertEqual(t, "higher outcome", out, Overwritten)
	n, ok := Get[*note](a, id)
	testutil.AssertEqual(t, "resurrected", ok, true)
	testutil.AssertEqual(t, "text", n.Text, "revived")
}

func TestAssign_Observer(t *testing.T) {
	obs := newCountingObserver()
	a := New(WithObserver(obs))
	id := ident.New()

	a.Assign(id, 1, &note{Text: "a"})
	a.Assign(id, 2, &note{Text: "b"})
	a.Assign(id, 1, &note{Text: "c"})

	testutil.AssertEqual(t, "inserted", obs.assigns[Inserted], 1)
	testutil.AssertEqual(t, "overwritten", obs.assigns[Overwritten], 1)
	testutil.AssertEqual(t, "stale", obs.assigns[Stale], 1)
}

func TestOutcome_String(t *testing.T) {
	testutil.AssertEqual(t, "inserted", Inserted.String(), "inserted")
	testutil.AssertEqual(t, "stale", Stale.String(), "stale")
	testutil.AssertEqual(t, "unknown", Outcome(42).String(), "outcome(42)")
}
