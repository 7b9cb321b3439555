package block

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tabletop/internal/ident"
)

const TypeWorld = "World"

// World is the root of a session. It owns the tables, characters, memos and
// tags that make up the shared state.
type World struct {
	SelectingTable ident.Id   `json:"selecting_table"`
	Tables         []ident.Id `json:"tables"`
	Characters     []ident.Id `json:"characters"`
	Memos          []ident.Id `json:"memos"`
	Tags           []ident.Id `json:"tags"`
}

// NewWorld creates a world whose only table is selectingTable.
func NewWorld(selectingTable ident.Id) *World {
	return &World{
		SelectingTable: selectingTable,
		Tables:         []ident.Id{selectingTable},
	}
}

func (w *World) TypeName() string {
	return TypeWorld
}

func (w *World) Pack() (json.RawMessage, error) {
	return json.Marshal(w)
}

func (w *World) Children() []ident.Id {
	ids := make([]ident.Id, 0, 1+len(w.Tables)+len(w.Characters)+len(w.Memos)+len(w.Tags))
	ids = append(ids, w.SelectingTable)
	ids = append(ids, w.Tables...)
	ids = append(ids, w.Characters...)
	ids = append(ids, w.Memos...)
	return append(ids, w.Tags...)
}

func (w *World) Resources() []ident.Id {
	return nil
}

func (w *World) Validate() error {
	el := errors.NewErrorList()

	if w.SelectingTable.IsNil() {
		el.Add(fmt.Errorf("selecting_table must be set"))
	}
	if !slices.Contains(w.Tables, w.SelectingTable) {
		el.Add(fmt.Errorf("selecting_table must be one of tables"))
	}

	return el.Err()
}

func (w *World) SetSelectingTable(id ident.Id) {
	w.SelectingTable = id
}

func (w *World) AddTable(id ident.Id) {
	w.Tables = append(w.Tables, id)
}

func (w *World) RemoveTable(id ident.Id) {
	w.Tables = removeId(w.Tables, id)
}

// ReplaceTable swaps old for replacement in place, keeping table order.
func (w *World) ReplaceTable(old, replacement ident.Id) {
	if i := slices.Index(w.Tables, old); i >= 0 {
		w.Tables[i] = replacement
	}
	if w.SelectingTable == old {
		w.SelectingTable = replacement
	}
}

func (w *World) AddCharacter(id ident.Id) {
	w.Characters = append(w.Characters, id)
}

func (w *World) RemoveCharacter(id ident.Id) {
	w.Characters = removeId(w.Characters, id)
}

func (w *World) AddMemo(id ident.Id) {
	w.Memos = append(w.Memos, id)
}

func (w *World) RemoveMemo(id ident.Id) {
	w.Memos = removeId(w.Memos, id)
}

func (w *World) AddTag(id ident.Id) {
	w.Tags = append(w.Tags, id)
}

func (w *World) RemoveTag(id ident.Id) {
	w.Tags = removeId(w.Tags, id)
}

func removeId(ids []ident.Id, id ident.Id) []ident.Id {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}
