package storage

import (
	"encoding/json"
	"errors"

	"github.com/pixil98/go-tabletop/internal/ident"
)

// Categories of persisted state. Values in every category use the same
// pack format that peers exchange.
const (
	CategoryTables    = "tables"
	CategoryResources = "resources"
	CategoryClient    = "client"
)

var ErrClosed = errors.New("storage: closed")

// Collection is one category of stored packs keyed by id.
type Collection interface {
	Put(id ident.Id, raw json.RawMessage) error
	Get(id ident.Id) (json.RawMessage, bool, error)
	All() (map[ident.Id]json.RawMessage, error)
	Delete(id ident.Id) error
}

// DB opens collections by category.
type DB interface {
	Collection(category string) (Collection, error)
	Close() error
}

// replace makes c hold exactly packs.
func replace(c Collection, packs map[ident.Id]json.RawMessage) error {
	existing, err := c.All()
	if err != nil {
		return err
	}
	for id := range existing {
		if _, ok := packs[id]; ok {
			continue
		}
		if err := c.Delete(id); err != nil {
			return err
		}
	}
	for id, raw := range packs {
		if err := c.Put(id, raw); err != nil {
			return err
		}
	}
	return nil
}
