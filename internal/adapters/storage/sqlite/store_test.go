package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/daily-inspiration/internal/ports"
)

var _ ports.KeyValueStore = (*Store)(nil)

func openStore(t *testing.T, path string) *Store {
	t.Helper()

	s, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestStore_Roundtrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "favorites.db"))

	_, found, err := s.Get(ctx, "favoriteQuotes")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "favoriteQuotes", "[]"))
	require.NoError(t, s.Set(ctx, "favoriteQuotes", `[{"content":"c","author":"a","id":"1"}]`))

	v, found, err := s.Get(ctx, "favoriteQuotes")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"content":"c","author":"a","id":"1"}]`, v)

	require.NoError(t, s.Delete(ctx, "favoriteQuotes"))
	require.NoError(t, s.Delete(ctx, "favoriteQuotes"))

	_, found, err = s.Get(ctx, "favoriteQuotes")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "favorites.db")

	first, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "favoriteQuotes", `[{"content":"c"}]`))
	require.NoError(t, first.Close())

	second := openStore(t, path)

	v, found, err := second.Get(ctx, "favoriteQuotes")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"content":"c"}]`, v)
}

func TestStore_RecordsUpdateTime(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s, err := Open(filepath.Join(t.TempDir(), "kv.db"), func() time.Time { return fixed })
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(ctx, "k", "v"))

	var updated string
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT updated_at FROM kv WHERE key = ?", "k").Scan(&updated))
	assert.Equal(t, fixed.Format(time.RFC3339Nano), updated)
}

func TestStore_ClosedDatabase(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "kv.db"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sqlite get "k"`)
}
