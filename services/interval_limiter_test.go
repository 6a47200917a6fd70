package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalLimiterFirstCallIsImmediate(t *testing.T) {
	l := NewIntervalLimiter(time.Hour)

	start := time.Now()
	require.NoError(t, l.Acquire(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestIntervalLimiterSpacesCalls(t *testing.T) {
	l := NewIntervalLimiter(40 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Acquire(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestIntervalLimiterHonoursContext(t *testing.T) {
	l := NewIntervalLimiter(time.Hour)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
