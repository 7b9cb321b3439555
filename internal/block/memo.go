package block

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tabletop/internal/ident"
)

const (
	TypeMemo = "Memo"
	TypeTag  = "Tag"
)

// Memo is a shared note. Tags are owned by the world and only referenced here.
type Memo struct {
	Name string     `json:"name"`
	Text string     `json:"text"`
	Tags []ident.Id `json:"tags"`
}

func NewMemo(name, text string) *Memo {
	return &Memo{Name: name, Text: text}
}

func (m *Memo) TypeName() string {
	return TypeMemo
}

func (m *Memo) Pack() (json.RawMessage, error) {
	return json.Marshal(m)
}

func (m *Memo) Children() []ident.Id {
	return m.Tags
}

func (m *Memo) Resources() []ident.Id {
	return nil
}

func (m *Memo) AddTag(id ident.Id) {
	if !m.HasTag(id) {
		m.Tags = append(m.Tags, id)
	}
}

func (m *Memo) RemoveTag(id ident.Id) {
	m.Tags = removeId(m.Tags, id)
}

func (m *Memo) HasTag(id ident.Id) bool {
	for _, t := range m.Tags {
		if t == id {
			return true
		}
	}
	return false
}

type Tag struct {
	Name string `json:"name"`
}

func NewTag(name string) *Tag {
	return &Tag{Name: name}
}

func (t *Tag) TypeName() string {
	return TypeTag
}

func (t *Tag) Pack() (json.RawMessage, error) {
	return json.Marshal(t)
}

func (t *Tag) Children() []ident.Id {
	return nil
}

func (t *Tag) Resources() []ident.Id {
	return nil
}

func (t *Tag) Validate() error {
	el := errors.NewErrorList()

	if strings.TrimSpace(t.Name) == "" {
		el.Add(fmt.Errorf("name must not be blank"))
	}

	return el.Err()
}
