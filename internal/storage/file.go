package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pixil98/go-tabletop/internal/ident"
)

// FileDB keeps each category in its own directory under root.
type FileDB struct {
	root string

	mu          sync.Mutex
	collections map[string]*FileStore
	closed      bool
}

func NewFileDB(root string) (*FileDB, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &FileDB{root: root, collections: map[string]*FileStore{}}, nil
}

func (db *FileDB) Collection(category string) (Collection, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, ErrClosed
	}
	if c, ok := db.collections[category]; ok {
		return c, nil
	}

	path := filepath.Join(db.root, category)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating %s collection: %w", category, err)
	}
	c, err := NewFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s collection: %w", category, err)
	}
	db.collections[category] = c
	return c, nil
}

func (db *FileDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	db.collections = map[string]*FileStore{}
	return nil
}

// FileStore holds one pack per <id>.json file, cached in memory.
type FileStore struct {
	path    string
	records map[ident.Id]json.RawMessage

	mu sync.RWMutex
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:    path,
		records: map[ident.Id]json.RawMessage{},
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = map[ident.Id]json.RawMessage{}

	return filepath.WalkDir(s.path, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		// One unreadable record should not cost the rest of the collection.
		asset, err := s.loadAsset(path)
		if err != nil {
			slog.Warn("skipping stored record", "file", filepath.Base(path), "error", err)
			return nil
		}

		if err := asset.Validate(); err != nil {
			slog.Warn("skipping stored record", "file", filepath.Base(path), "error", err)
			return nil
		}

		if _, ok := s.records[asset.Id()]; ok {
			return fmt.Errorf("duplicate key detected: %s", asset.Id())
		}

		s.records[asset.Id()] = asset.Spec
		return nil
	})
}

func (s *FileStore) Put(id ident.Id, raw json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset := &Asset{
		Version:    assetVersion,
		Identifier: id,
		Spec:       raw,
	}

	jsonData, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	if err := atomicWrite(s.filePath(id), jsonData, 0644); err != nil {
		return err
	}
	s.records[id] = raw
	return nil
}

func (s *FileStore) Get(id ident.Id) (json.RawMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.records[id]
	return raw, ok, nil
}

func (s *FileStore) All() (map[ident.Id]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vals := make(map[ident.Id]json.RawMessage, len(s.records))
	for id, raw := range s.records {
		vals[id] = raw
	}
	return vals, nil
}

func (s *FileStore) Delete(id ident.Id) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.filePath(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", id, err)
	}
	delete(s.records, id)
	return nil
}

// atomicWrite writes data to a temp file then renames it over path, so an
// interrupted write never leaves a truncated record behind.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (s *FileStore) filePath(id ident.Id) string {
	return filepath.Join(s.path, fmt.Sprintf("%s.json", id))
}

func (s *FileStore) loadAsset(path string) (*Asset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer func() { _ = file.Close() }()

	jsonData, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var asset Asset
	if err := json.Unmarshal(jsonData, &asset); err != nil {
		return nil, fmt.Errorf("unmarshalling asset: %w", err)
	}

	return &asset, nil
}
