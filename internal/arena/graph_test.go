package arena

import (
	"testing"

	"github.com/pixil98/go-tabletop/internal/ident"
	"github.com/pixil98/go-testutil"
)

// diamond builds World -> {T1, T2}, T1 -> {C1}, T2 -> {C1}.
func diamond(t *testing.T) (*Arena, map[string]ident.Id) {
	t.Helper()
	a, _ := newTestArena(t)
	ids := map[string]ident.Id{}

	ids["C1"] = a.Add(&note{Text: "character"})
	ids["R1"] = ident.New()
	ids["R2"] = ident.New()
	ids["T1"] = a.Add(&folder{Name: "t1", Kids: []ident.Id{ids["C1"]}, Files: []ident.Id{ids["R1"]}})
	ids["T2"] = a.Add(&folder{Name: "t2", Kids: []ident.Id{ids["C1"]}, Files: []ident.Id{ids["R1"], ids["R2"]}})
	ids["World"] = a.Add(&folder{Name: "world", Kids: []ident.Id{ids["T1"], ids["T2"]}})
	return a, ids
}

func TestDependentsOf_Diamond(t *testing.T) {
	a, ids := diamond(t)

	deps := DependentsOf[*folder](a, ids["World"])

	testutil.AssertEqual(t, "count", len(deps), 4)
	for _, name := range []string{"World", "T1", "T2", "C1"} {
		testutil.AssertEqual(t, name, deps.Has(ids[name]), true)
	}
}

func TestDependentsOf(t *testing.T) {
	tests := map[string]struct {
		root     string
		mutate   func(a *Arena, ids map[string]ident.Id)
		asNote   bool
		expNames []string
	}{
		"subtree": {
			root:     "T1",
			expNames: []string{"T1", "C1"},
		},
		"leaf queried as folder": {
			root:     "C1",
			expNames: nil,
		},
		"leaf queried as note": {
			root:     "C1",
			asNote:   true,
			expNames: []string{"C1"},
		},
		"removed child skipped": {
			root: "World",
			mutate: func(a *Arena, ids map[string]ident.Id) {
				a.Remove(ids["T2"])
			},
			expNames: []string{"World", "T1", "C1"},
		},
		"removed root": {
			root: "World",
			mutate: func(a *Arena, ids map[string]ident.Id) {
				a.Remove(ids["World"])
			},
			expNames: nil,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a, ids := diamond(t)
			if tt.mutate != nil {
				tt.mutate(a, ids)
			}

			var deps ident.Set
			if tt.asNote {
				deps = DependentsOf[*note](a, ids[tt.root])
			} else {
				deps = DependentsOf[*folder](a, ids[tt.root])
			}

			testutil.AssertEqual(t, "count", len(deps), len(tt.expNames))
			for _, n := range tt.expNames {
				testutil.AssertEqual(t, n, deps.Has(ids[n]), true)
			}
		})
	}
}

func TestDependentsOf_Cycle(t *testing.T) {
	a, _ := newTestArena(t)
	x := a.Add(&folder{Name: "x"})
	y := a.Add(&folder{Name: "y", Kids: []ident.Id{x}})
	Modify(a, x, func(f *folder) { f.Kids = []ident.Id{y, x} })

	deps := DependentsOf[*folder](a, x)
	testutil.AssertEqual(t, "count", len(deps), 2)
}

func TestResourcesOf(t *testing.T) {
	a, ids := diamond(t)

	res := ResourcesOf[*folder](a, ids["World"])
	testutil.AssertEqual(t, "count", len(res), 2)
	testutil.AssertEqual(t, "R1", res.Has(ids["R1"]), true)
	testutil.AssertEqual(t, "R2", res.Has(ids["R2"]), true)

	res = ResourcesOf[*folder](a, ids["T1"])
	testutil.AssertEqual(t, "subtree count", len(res), 1)

	res = ResourcesOf[*note](a, ids["World"])
	testutil.AssertEqual(t, "wrong root type", len(res), 0)
}

func TestDependentsOf_DuringMutation(t *testing.T) {
	a, ids := diamond(t)
	w, _ := GetMutHandle[*folder](a, ids["T1"])

	expectReentrantPanic(t, func() {
		w.Update(func(*folder) {
			DependentsOf[*folder](a, ids["World"])
		})
	})
}
