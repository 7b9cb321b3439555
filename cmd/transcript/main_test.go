package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/pixil98/go-tabletop/internal/arena"
	"github.com/pixil98/go-tabletop/internal/block"
	"github.com/pixil98/go-tabletop/internal/ident"
	"github.com/pixil98/go-tabletop/internal/storage"
	"github.com/pixil98/go-testutil"
)

func saveChat(t *testing.T, dir string) {
	t.Helper()
	a := arena.New(arena.WithRegistry(block.NewRegistry()))
	defer a.Close()

	msg := a.Add(block.NewChatMessage("gm", "Roll for initiative.", 0))
	tab := block.NewChatTab("Main")
	// 2024-01-02 03:03:05 UTC
	tab.Insert(1704164585000, msg)
	chat := a.Add(block.NewChat(a.Add(tab)))

	db, err := storage.NewFileDB(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	err = storage.Save(context.Background(), db, storage.Snapshot{
		Blocks:  a.PackAll(),
		Context: storage.Context{World: ident.New(), Chat: chat, SavedAt: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRootCmd(t *testing.T) {
	dir := t.TempDir()
	saveChat(t, dir)

	tests := map[string]struct {
		args   []string
		expOut string
		expErr string
	}{
		"prints tab": {
			args:   []string{"--storage", dir},
			expOut: "== Main ==\n[2024-01-02 03:03] gm: Roll for initiative.\n",
		},
		"custom template": {
			args:   []string{"--storage", dir, "--tab", "MAIN", "--template", "{{ .Speaker | upper }}> {{ .Text }}"},
			expOut: "== Main ==\nGM> Roll for initiative.\n",
		},
		"unknown tab": {
			args:   []string{"--storage", dir, "--tab", "ooc"},
			expErr: `chat tab "ooc" not found`,
		},
		"nothing saved": {
			args:   []string{"--storage", t.TempDir()},
			expErr: "no saved snapshot",
		},
		"storage required": {
			args:   []string{},
			expErr: `required flag(s) "storage" not set`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&out)
			cmd.SetErr(&bytes.Buffer{})

			err := cmd.ExecuteContext(context.Background())
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "output", out.String(), tt.expOut)
		})
	}
}
