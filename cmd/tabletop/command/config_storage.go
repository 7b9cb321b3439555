package command

import (
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-tabletop/internal/storage"
)

const (
	backendFile   = "file"
	backendPebble = "pebble"
)

type StorageConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	switch c.Backend {
	case "", backendFile, backendPebble:
	default:
		el.Add(fmt.Errorf("unknown storage backend %q", c.Backend))
	}
	if c.Path == "" {
		el.Add(fmt.Errorf("storage path is required"))
	}

	return el.Err()
}

// BuildDB opens the configured backend. The file backend is the default.
func (c *StorageConfig) BuildDB() (storage.DB, error) {
	switch c.Backend {
	case "", backendFile:
		db, err := storage.NewFileDB(c.Path)
		if err != nil {
			return nil, fmt.Errorf("opening file storage: %w", err)
		}
		return db, nil
	case backendPebble:
		db, err := storage.OpenPebbleDB(c.Path, nil)
		if err != nil {
			return nil, fmt.Errorf("opening pebble storage: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Backend)
	}
}
