package block

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tabletop/internal/arena"
	"github.com/pixil98/go-tabletop/internal/ident"
)

const (
	TypeChat        = "Chat"
	TypeChatTab     = "ChatTab"
	TypeChatMessage = "ChatMessage"
)

// Chat lists the tabs of a room's chat log. It packs as a bare array of tab ids.
type Chat struct {
	Tabs []ident.Id
}

func NewChat(tabs ...ident.Id) *Chat {
	return &Chat{Tabs: tabs}
}

func unpackChat(raw json.RawMessage) (arena.Block, error) {
	var tabs []ident.Id
	if err := json.Unmarshal(raw, &tabs); err != nil {
		return nil, err
	}
	return &Chat{Tabs: tabs}, nil
}

func (c *Chat) TypeName() string {
	return TypeChat
}

func (c *Chat) Pack() (json.RawMessage, error) {
	if c.Tabs == nil {
		return json.RawMessage(`[]`), nil
	}
	return json.Marshal(c.Tabs)
}

func (c *Chat) Children() []ident.Id {
	return c.Tabs
}

func (c *Chat) Resources() []ident.Id {
	return nil
}

func (c *Chat) AddTab(id ident.Id) {
	c.Tabs = append(c.Tabs, id)
}

func (c *Chat) RemoveTab(id ident.Id) {
	c.Tabs = removeId(c.Tabs, id)
}

// TabItem places one message on a tab's timeline.
type TabItem struct {
	Timestamp arena.Timestamp `json:"timestamp"`
	Item      ident.Id        `json:"item"`
}

func compareTabItems(a, b TabItem) int {
	switch {
	case a.Timestamp < b.Timestamp:
		return -1
	case a.Timestamp > b.Timestamp:
		return 1
	default:
		return a.Item.Compare(b.Item)
	}
}

// ChatTab is a named channel. Items are kept ordered by timestamp, then id.
type ChatTab struct {
	Name  string    `json:"name"`
	Items []TabItem `json:"items"`
}

func NewChatTab(name string) *ChatTab {
	return &ChatTab{Name: name}
}

func (t *ChatTab) TypeName() string {
	return TypeChatTab
}

func (t *ChatTab) Pack() (json.RawMessage, error) {
	return json.Marshal(t)
}

func (t *ChatTab) Children() []ident.Id {
	ids := make([]ident.Id, 0, len(t.Items))
	for _, it := range t.Items {
		ids = append(ids, it.Item)
	}
	return ids
}

func (t *ChatTab) Resources() []ident.Id {
	return nil
}

func (t *ChatTab) Validate() error {
	el := errors.NewErrorList()

	if !slices.IsSortedFunc(t.Items, compareTabItems) {
		el.Add(fmt.Errorf("items must be ordered by timestamp"))
	}

	return el.Err()
}

// Insert places item on the timeline. An item already on the tab is left
// where it is and Insert reports false.
func (t *ChatTab) Insert(ts arena.Timestamp, item ident.Id) bool {
	if slices.ContainsFunc(t.Items, func(it TabItem) bool { return it.Item == item }) {
		return false
	}
	ti := TabItem{Timestamp: ts, Item: item}
	i, _ := slices.BinarySearchFunc(t.Items, ti, compareTabItems)
	t.Items = slices.Insert(t.Items, i, ti)
	return true
}

// Since returns the items stamped strictly after ts.
func (t *ChatTab) Since(ts arena.Timestamp) []TabItem {
	i, _ := slices.BinarySearchFunc(t.Items, ts, func(it TabItem, ts arena.Timestamp) int {
		if it.Timestamp <= ts {
			return -1
		}
		return 1
	})
	return t.Items[i:]
}

// ChatMessage is one posted line. Character points at the speaking character
// for display only and is not part of the message's subtree.
type ChatMessage struct {
	Sender    string          `json:"sender"`
	Character *ident.Id       `json:"character_id,omitempty"`
	Icon      *ident.Id       `json:"icon_id,omitempty"`
	Text      string          `json:"text"`
	SentAt    arena.Timestamp `json:"sent_at"`
}

func NewChatMessage(sender, text string, sentAt arena.Timestamp) *ChatMessage {
	return &ChatMessage{Sender: sender, Text: text, SentAt: sentAt}
}

func (m *ChatMessage) TypeName() string {
	return TypeChatMessage
}

func (m *ChatMessage) Pack() (json.RawMessage, error) {
	return json.Marshal(m)
}

func (m *ChatMessage) Children() []ident.Id {
	return nil
}

func (m *ChatMessage) Resources() []ident.Id {
	if m.Icon == nil {
		return nil
	}
	return []ident.Id{*m.Icon}
}
