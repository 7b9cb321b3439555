package block

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tabletop/internal/ident"
)

const TypeTable = "Table"

// Table is one play surface. Strokes drawn on it live in a separate
// TableTexture block.
type Table struct {
	Name              string     `json:"name"`
	Size              [2]float64 `json:"size"`
	IsBindToGrid      bool       `json:"is_bind_to_grid"`
	IsShowingGrid     bool       `json:"is_showing_grid"`
	DrawingTexture    ident.Id   `json:"drawing_texture_id"`
	BackgroundTexture *ident.Id  `json:"background_texture_id,omitempty"`
}

func NewTable(drawingTexture ident.Id, size [2]float64, name string) *Table {
	return &Table{
		Name:           name,
		Size:           size,
		IsBindToGrid:   true,
		IsShowingGrid:  true,
		DrawingTexture: drawingTexture,
	}
}

func (t *Table) TypeName() string {
	return TypeTable
}

func (t *Table) Pack() (json.RawMessage, error) {
	return json.Marshal(t)
}

func (t *Table) Children() []ident.Id {
	if t.DrawingTexture.IsNil() {
		return nil
	}
	return []ident.Id{t.DrawingTexture}
}

func (t *Table) Resources() []ident.Id {
	if t.BackgroundTexture == nil {
		return nil
	}
	return []ident.Id{*t.BackgroundTexture}
}

func (t *Table) Validate() error {
	el := errors.NewErrorList()

	if t.Size[0] < 0 || t.Size[1] < 0 {
		el.Add(fmt.Errorf("size must not be negative"))
	}

	return el.Err()
}

// SetBackgroundTexture points the table at a resource. A nil id clears it.
func (t *Table) SetBackgroundTexture(id *ident.Id) {
	t.BackgroundTexture = id
}
