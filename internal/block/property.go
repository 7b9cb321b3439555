package block

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tabletop/internal/arena"
	"github.com/pixil98/go-tabletop/internal/ident"
)

const TypeProperty = "Property"

type ValueKind string

const (
	ValueNone     ValueKind = "none"
	ValueNum      ValueKind = "num"
	ValueStr      ValueKind = "str"
	ValueChildren ValueKind = "children"
)

// PropertyValue holds exactly one of the kinds named by Kind.
type PropertyValue struct {
	Kind     ValueKind  `json:"kind"`
	Num      float64    `json:"num,omitempty"`
	Str      string     `json:"str,omitempty"`
	Children []ident.Id `json:"children,omitempty"`
}

func NumValue(n float64) PropertyValue {
	return PropertyValue{Kind: ValueNum, Num: n}
}

func StrValue(s string) PropertyValue {
	return PropertyValue{Kind: ValueStr, Str: s}
}

func ChildrenValue(ids ...ident.Id) PropertyValue {
	return PropertyValue{Kind: ValueChildren, Children: ids}
}

// AsString renders scalar values. Children and none have no string form.
func (v PropertyValue) AsString() (string, bool) {
	switch v.Kind {
	case ValueNum:
		return fmt.Sprint(v.Num), true
	case ValueStr:
		return v.Str, true
	default:
		return "", false
	}
}

// Property is one node of a character sheet.
type Property struct {
	Name       string        `json:"name"`
	IsSelected bool          `json:"is_selected"`
	Value      PropertyValue `json:"value"`
}

func NewProperty(name string, value PropertyValue) *Property {
	return &Property{Name: name, Value: value}
}

func (p *Property) TypeName() string {
	return TypeProperty
}

func (p *Property) Pack() (json.RawMessage, error) {
	return json.Marshal(p)
}

func (p *Property) Children() []ident.Id {
	if p.Value.Kind != ValueChildren {
		return nil
	}
	return p.Value.Children
}

func (p *Property) Resources() []ident.Id {
	return nil
}

func (p *Property) Validate() error {
	el := errors.NewErrorList()

	switch p.Value.Kind {
	case ValueNone, ValueNum, ValueStr:
		if len(p.Value.Children) > 0 {
			el.Add(fmt.Errorf("value of kind %q must not have children", p.Value.Kind))
		}
	case ValueChildren:
	default:
		el.Add(fmt.Errorf("unknown value kind %q", p.Value.Kind))
	}

	return el.Err()
}

func (p *Property) AddChild(id ident.Id) {
	if p.Value.Kind != ValueChildren {
		p.Value = ChildrenValue()
	}
	p.Value.Children = append(p.Value.Children, id)
}

func (p *Property) RemoveChild(id ident.Id) {
	if p.Value.Kind == ValueChildren {
		p.Value.Children = removeId(p.Value.Children, id)
	}
}

// FindProperty follows path down the property tree under root, matching
// names without regard to case or unicode normalization form. An empty path
// resolves to root itself.
func FindProperty(a *arena.Arena, root ident.Id, path ...string) (ident.Id, bool) {
	cur := root
	if _, ok := arena.Get[*Property](a, cur); !ok {
		return ident.Nil, false
	}

	for _, name := range path {
		want := foldName(name)
		p, _ := arena.Get[*Property](a, cur)

		next, found := ident.Nil, false
		for _, child := range p.Children() {
			c, ok := arena.Get[*Property](a, child)
			if ok && foldName(c.Name) == want {
				next, found = child, true
				break
			}
		}
		if !found {
			return ident.Nil, false
		}
		cur = next
	}

	return cur, true
}

func foldName(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
