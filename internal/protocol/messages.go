package protocol

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-tabletop/internal/arena"
	"github.com/pixil98/go-tabletop/internal/ident"
)

const (
	TypeJoin             = "Join"
	TypeHeartbeat        = "Heartbeat"
	TypeSetContext       = "SetContext"
	TypeSetBlockPacks    = "SetBlockPacks"
	TypeSetResourcePacks = "SetResourcePacks"
	TypeInsertChatItem   = "InsertChatItem"
	TypeDrawLine         = "DrawLine"
	TypeEraseLine        = "EraseLine"
	TypeClearTable       = "ClearTable"
)

// Msg is one message exchanged between peers of a room.
type Msg interface {
	Type() string
}

// Join announces a new peer. Peers holding a world answer with their state.
type Join struct{}

func (Join) Type() string { return TypeJoin }

// Heartbeat tells peers this one is still present.
type Heartbeat struct{}

func (Heartbeat) Type() string { return TypeHeartbeat }

// SetContext tells peers which world and chat are current.
type SetContext struct {
	World ident.Id `json:"world_id"`
	Chat  ident.Id `json:"chat_id"`
}

func (SetContext) Type() string { return TypeSetContext }

type SetBlockPacks struct {
	Packs   PackMap
	// Dropped counts rows that could not be read when decoding.
	Dropped int
}

func (SetBlockPacks) Type() string { return TypeSetBlockPacks }

func (m SetBlockPacks) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Packs)
}

func (m *SetBlockPacks) UnmarshalJSON(data []byte) error {
	packs, dropped, err := decodeRows(data)
	if err != nil {
		return err
	}
	m.Packs, m.Dropped = packs, dropped
	return nil
}

type SetResourcePacks struct {
	Packs   PackMap
	// Dropped counts rows that could not be read when decoding.
	Dropped int
}

func (SetResourcePacks) Type() string { return TypeSetResourcePacks }

func (m SetResourcePacks) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Packs)
}

func (m *SetResourcePacks) UnmarshalJSON(data []byte) error {
	packs, dropped, err := decodeRows(data)
	if err != nil {
		return err
	}
	m.Packs, m.Dropped = packs, dropped
	return nil
}

// InsertChatItem places an already shared message on a tab. It travels as
// a [tab, item, timestamp] triple.
type InsertChatItem struct {
	Tab       ident.Id
	Item      ident.Id
	Timestamp arena.Timestamp
}

func (InsertChatItem) Type() string { return TypeInsertChatItem }

func (m InsertChatItem) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{m.Tab, m.Item, m.Timestamp})
}

func (m *InsertChatItem) UnmarshalJSON(data []byte) error {
	var row []json.RawMessage
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	if len(row) != 3 {
		return fmt.Errorf("expected 3 fields, got %d", len(row))
	}
	if err := json.Unmarshal(row[0], &m.Tab); err != nil {
		return fmt.Errorf("tab: %w", err)
	}
	if err := json.Unmarshal(row[1], &m.Item); err != nil {
		return fmt.Errorf("item: %w", err)
	}
	if err := json.Unmarshal(row[2], &m.Timestamp); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	return nil
}

type DrawLine struct {
	Texture   ident.Id   `json:"texture_id"`
	A         [2]float64 `json:"a"`
	B         [2]float64 `json:"b"`
	Color     uint32     `json:"color"`
	LineWidth float64    `json:"line_width"`
}

func (DrawLine) Type() string { return TypeDrawLine }

type EraseLine struct {
	Texture   ident.Id   `json:"texture_id"`
	A         [2]float64 `json:"a"`
	B         [2]float64 `json:"b"`
	LineWidth float64    `json:"line_width"`
}

func (EraseLine) Type() string { return TypeEraseLine }

type ClearTable struct {
	Texture ident.Id `json:"texture_id"`
}

func (ClearTable) Type() string { return TypeClearTable }

// PackMap is a set of packs keyed by id. On the wire it is an array of
// [id, pack] rows sorted by id.
type PackMap map[ident.Id]json.RawMessage

func (p PackMap) MarshalJSON() ([]byte, error) {
	ids := make(ident.Set, len(p))
	for id := range p {
		ids.Add(id)
	}

	rows := make([][2]any, 0, len(p))
	for _, id := range ids.Sorted() {
		rows = append(rows, [2]any{id, p[id]})
	}
	return json.Marshal(rows)
}

func (p *PackMap) UnmarshalJSON(data []byte) error {
	packs, _, err := decodeRows(data)
	if err != nil {
		return err
	}
	*p = packs
	return nil
}

// decodeRows reads [id, pack] rows. A row that cannot be read is skipped and
// counted so the rest of the batch still applies. When an id repeats, the
// pack the merge policy would keep is the one returned.
func decodeRows(data []byte) (PackMap, int, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, 0, err
	}

	m := make(PackMap, len(rows))
	dropped := 0
	for i, raw := range rows {
		id, pack, err := decodeRow(raw)
		if err != nil {
			slog.Warn("dropping pack row", "row", i, "error", err)
			dropped++
			continue
		}
		if prev, ok := m[id]; ok && arena.ComparePacks(pack, prev) <= 0 {
			continue
		}
		m[id] = pack
	}
	return m, dropped, nil
}

func decodeRow(raw json.RawMessage) (ident.Id, json.RawMessage, error) {
	var row []json.RawMessage
	if err := json.Unmarshal(raw, &row); err != nil {
		return ident.Nil, nil, err
	}
	if len(row) != 2 {
		return ident.Nil, nil, fmt.Errorf("expected [id, pack], got %d fields", len(row))
	}
	var id ident.Id
	if err := json.Unmarshal(row[0], &id); err != nil {
		return ident.Nil, nil, err
	}
	return id, row[1], nil
}
