package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/daily-inspiration/internal/ports"
)

var _ ports.KeyValueStore = (*Store)(nil)

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, found, err := s.Get(ctx, "favoriteQuotes")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "favoriteQuotes", "[]"))
	require.NoError(t, s.Set(ctx, "favoriteQuotes", `[{"content":"c"}]`))

	v, found, err := s.Get(ctx, "favoriteQuotes")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"content":"c"}]`, v)

	require.NoError(t, s.Delete(ctx, "favoriteQuotes"))
	require.NoError(t, s.Delete(ctx, "favoriteQuotes"), "deleting a missing key is not an error")

	_, found, err = s.Get(ctx, "favoriteQuotes")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New()

	_, _, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
	require.ErrorIs(t, s.Delete(ctx, "k"), context.Canceled)
}

func TestStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			_ = s.Set(ctx, key, "v")
			_, _, _ = s.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	for i := range 5 {
		_, found, err := s.Get(ctx, fmt.Sprintf("k%d", i))
		require.NoError(t, err)
		assert.True(t, found)
	}
}
