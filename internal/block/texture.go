package block

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tabletop/internal/ident"
)

const TypeTableTexture = "TableTexture"

// Stroke is one line drawn onto a table texture. Erase strokes cut through
// whatever was drawn before them.
type Stroke struct {
	A         [2]float64 `json:"a"`
	B         [2]float64 `json:"b"`
	Color     uint32     `json:"color,omitempty"`
	LineWidth float64    `json:"line_width"`
	Erase     bool       `json:"erase,omitempty"`
}

// TableTexture records the freehand drawing on a table.
type TableTexture struct {
	Width   uint32   `json:"width"`
	Height  uint32   `json:"height"`
	Strokes []Stroke `json:"strokes"`
}

func NewTableTexture(width, height uint32) *TableTexture {
	return &TableTexture{Width: width, Height: height}
}

func (t *TableTexture) TypeName() string {
	return TypeTableTexture
}

func (t *TableTexture) Pack() (json.RawMessage, error) {
	return json.Marshal(t)
}

func (t *TableTexture) Children() []ident.Id {
	return nil
}

func (t *TableTexture) Resources() []ident.Id {
	return nil
}

func (t *TableTexture) Validate() error {
	el := errors.NewErrorList()

	if t.Width == 0 || t.Height == 0 {
		el.Add(fmt.Errorf("texture dimensions must be positive"))
	}
	for i, s := range t.Strokes {
		if s.LineWidth <= 0 {
			el.Add(fmt.Errorf("stroke %d: line_width must be positive", i))
		}
	}

	return el.Err()
}

func (t *TableTexture) DrawLine(a, b [2]float64, color uint32, lineWidth float64) {
	t.Strokes = append(t.Strokes, Stroke{A: a, B: b, Color: color, LineWidth: lineWidth})
}

func (t *TableTexture) EraseLine(a, b [2]float64, lineWidth float64) {
	t.Strokes = append(t.Strokes, Stroke{A: a, B: b, LineWidth: lineWidth, Erase: true})
}

func (t *TableTexture) Clear() {
	t.Strokes = nil
}
