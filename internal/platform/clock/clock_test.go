package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/daily-inspiration/internal/ports"
)

var _ ports.Clock = Real{}

func TestReal_Now(t *testing.T) {
	before := time.Now()
	now := New().Now()

	assert.False(t, now.Before(before))
}

func TestReal_Sleep(t *testing.T) {
	start := time.Now()

	require.NoError(t, New().Sleep(context.Background(), 10*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestReal_Sleep_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := New().Sleep(ctx, time.Hour)

	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestReal_Sleep_NonPositive(t *testing.T) {
	require.NoError(t, New().Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, New().Sleep(ctx, -time.Second), context.Canceled)
}

func TestReal_WithTimeout(t *testing.T) {
	ctx, cancel := New().WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(5*time.Millisecond), deadline, time.Second)

	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}
