package protocol

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pixil98/go-tabletop/internal/ident"
	"github.com/pixil98/go-testutil"
)

func TestEncodeDecode(t *testing.T) {
	tex := ident.New()
	tests := map[string]Msg{
		"join":        Join{},
		"heartbeat":   Heartbeat{},
		"set context": SetContext{World: ident.New(), Chat: ident.New()},
		"block packs": SetBlockPacks{Packs: PackMap{
			ident.New(): json.RawMessage(`{"type_name":"Tag","timestamp":1,"payload":{"name":"a"}}`),
			ident.New(): json.RawMessage(`{"type_name":"_","timestamp":2,"payload":{}}`),
		}},
		"resource packs":   SetResourcePacks{Packs: PackMap{ident.New(): json.RawMessage(`{"type":"image/png","payload":"AQID","digest":"x"}`)}},
		"insert chat item": InsertChatItem{Tab: ident.New(), Item: ident.New(), Timestamp: 1700000000123.25},
		"draw line":        DrawLine{Texture: tex, A: [2]float64{0, 1}, B: [2]float64{2, 3}, Color: 0xff00ffff, LineWidth: 1.5},
		"erase line":       EraseLine{Texture: tex, A: [2]float64{4, 5}, B: [2]float64{6, 7}, LineWidth: 8},
		"clear table":      ClearTable{Texture: tex},
	}

	for name, m := range tests {
		t.Run(name, func(t *testing.T) {
			raw, err := Encode("peer-a", m)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			env, err := Decode(raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "src", env.Src, "peer-a")
			testutil.AssertEqual(t, "type", env.Msg.Type(), m.Type())
			if !reflect.DeepEqual(env.Msg, m) {
				t.Errorf("message mismatch:\n got: %#v\nwant: %#v", env.Msg, m)
			}
		})
	}
}

func TestWireLayout(t *testing.T) {
	tab, item := ident.New(), ident.New()
	raw, err := Encode("p", InsertChatItem{Tab: tab, Item: item, Timestamp: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"type":"InsertChatItem","src":"p","payload":["` + tab.String() + `","` + item.String() + `",42]}`
	testutil.AssertEqual(t, "insert chat item", string(raw), want)

	id := ident.New()
	raw, err = json.Marshal(PackMap{id: json.RawMessage(`{"x":1}`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "pack rows", string(raw), `[["`+id.String()+`",{"x":1}]]`)

	raw, err = json.Marshal(SetBlockPacks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "empty packs", string(raw), `[]`)
}

func TestDecode_Errors(t *testing.T) {
	tests := map[string]struct {
		raw     string
		unknown bool
	}{
		"not json":        {raw: `nope`},
		"unknown type":    {raw: `{"type":"Teleport","src":"p","payload":{}}`, unknown: true},
		"missing payload": {raw: `{"type":"SetContext","src":"p"}`},
		"null payload":    {raw: `{"type":"ClearTable","src":"p","payload":null}`},
		"short chat item": {raw: `{"type":"InsertChatItem","src":"p","payload":["a","b"]}`},
		"bad id":          {raw: `{"type":"ClearTable","src":"p","payload":{"texture_id":"nope"}}`},
		"packs as object": {raw: `{"type":"SetResourcePacks","src":"p","payload":{}}`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			testutil.AssertEqual(t, "unknown", errors.Is(err, ErrUnknownMessage), tt.unknown)
			testutil.AssertEqual(t, "bad payload", errors.Is(err, ErrBadPayload), !tt.unknown)
			testutil.AssertEqual(t, "prefixed", strings.HasPrefix(err.Error(), "protocol: "), true)
		})
	}
}

func TestDecode_PackRows(t *testing.T) {
	good, dup := ident.New(), ident.New()
	newer := `{"type_name":"Tag","timestamp":9,"payload":{"name":"new"}}`
	older := `{"type_name":"Tag","timestamp":1,"payload":{"name":"old"}}`

	tests := map[string]struct {
		rows       string
		expPacks   map[ident.Id]string
		expDropped int
	}{
		"bad rows are skipped": {
			rows:       `[["` + good.String() + `",` + older + `],["not-an-id",{}],["` + dup.String() + `",{},1],"row"]`,
			expPacks:   map[ident.Id]string{good: older},
			expDropped: 3,
		},
		"newer duplicate first": {
			rows:     `[["` + dup.String() + `",` + newer + `],["` + dup.String() + `",` + older + `]]`,
			expPacks: map[ident.Id]string{dup: newer},
		},
		"newer duplicate last": {
			rows:     `[["` + dup.String() + `",` + older + `],["` + dup.String() + `",` + newer + `]]`,
			expPacks: map[ident.Id]string{dup: newer},
		},
	}

	for name, tt := range tests {
		for _, typ := range []string{TypeSetBlockPacks, TypeSetResourcePacks} {
			t.Run(name+"/"+typ, func(t *testing.T) {
				env, err := Decode([]byte(`{"type":"` + typ + `","src":"p","payload":` + tt.rows + `}`))
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				var packs PackMap
				var dropped int
				switch m := env.Msg.(type) {
				case SetBlockPacks:
					packs, dropped = m.Packs, m.Dropped
				case SetResourcePacks:
					packs, dropped = m.Packs, m.Dropped
				}

				testutil.AssertEqual(t, "dropped", dropped, tt.expDropped)
				testutil.AssertEqual(t, "count", len(packs), len(tt.expPacks))
				for id, want := range tt.expPacks {
					testutil.AssertEqual(t, "pack", string(packs[id]), want)
				}
			})
		}
	}
}
