package block

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tabletop/internal/ident"
)

const TypeCharacter = "Character"

// Character is a piece placed on the world. Its sheet is a tree of
// Property blocks rooted at Property.
type Character struct {
	Name            string     `json:"name"`
	Size            [3]float64 `json:"size"`
	Position        [3]float64 `json:"position"`
	Texture         *ident.Id  `json:"texture_id,omitempty"`
	BackgroundColor uint32     `json:"background_color"`
	Property        ident.Id   `json:"property_id"`
}

func NewCharacter(property ident.Id, name string) *Character {
	return &Character{
		Name:     name,
		Size:     [3]float64{1, 0, 1},
		Property: property,
	}
}

func (c *Character) TypeName() string {
	return TypeCharacter
}

func (c *Character) Pack() (json.RawMessage, error) {
	return json.Marshal(c)
}

func (c *Character) Children() []ident.Id {
	if c.Property.IsNil() {
		return nil
	}
	return []ident.Id{c.Property}
}

func (c *Character) Resources() []ident.Id {
	if c.Texture == nil {
		return nil
	}
	return []ident.Id{*c.Texture}
}

func (c *Character) Validate() error {
	el := errors.NewErrorList()

	if c.Property.IsNil() {
		el.Add(fmt.Errorf("property_id must be set"))
	}
	for i, v := range c.Size {
		if v < 0 {
			el.Add(fmt.Errorf("size[%d] must not be negative", i))
		}
	}

	return el.Err()
}

func (c *Character) SetPosition(pos [3]float64) {
	c.Position = pos
}

func (c *Character) SetTexture(id *ident.Id) {
	c.Texture = id
}
