package storage

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pixil98/go-tabletop/internal/ident"
)

func openTestPebble(t *testing.T) *PebbleDB {
	t.Helper()
	db, err := OpenPebbleDB(filepath.Join(t.TempDir(), "pebble"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPebbleCollection_CRUD(t *testing.T) {
	db := openTestPebble(t)

	tables, err := db.Collection(CategoryTables)
	require.NoError(t, err)
	resources, err := db.Collection(CategoryResources)
	require.NoError(t, err)

	a, b := ident.New(), ident.New()
	require.NoError(t, tables.Put(a, json.RawMessage(`{"a":1}`)))
	require.NoError(t, tables.Put(b, json.RawMessage(`{"b":2}`)))
	require.NoError(t, resources.Put(a, json.RawMessage(`{"r":3}`)))

	raw, ok, err := tables.Get(a)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"a":1}`, string(raw))

	_, ok, err = tables.Get(ident.New())
	require.NoError(t, err)
	require.False(t, ok)

	all, err := tables.All()
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Categories sharing an id stay separate.
	res, err := resources.All()
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.JSONEq(t, `{"r":3}`, string(res[a]))

	require.NoError(t, tables.Delete(a))
	all, err = tables.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Contains(t, all, b)
}

func TestPebbleCollection_PrefixBounds(t *testing.T) {
	db := openTestPebble(t)

	// "tables" and "tables2" share a textual prefix but not "tables/".
	short, err := db.Collection("tables")
	require.NoError(t, err)
	long, err := db.Collection("tables2")
	require.NoError(t, err)

	require.NoError(t, short.Put(ident.New(), json.RawMessage(`1`)))
	require.NoError(t, long.Put(ident.New(), json.RawMessage(`2`)))

	all, err := short.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestPebbleDB_Close(t *testing.T) {
	db, err := OpenPebbleDB(filepath.Join(t.TempDir(), "pebble"), nil)
	require.NoError(t, err)

	c, err := db.Collection(CategoryClient)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	_, err = db.Collection(CategoryClient)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, c.Put(ident.New(), json.RawMessage(`{}`)), ErrClosed)
}
