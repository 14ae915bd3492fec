package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitAllowsFirstRequest(t *testing.T) {
	l := New("test", 10)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, l.Wait(ctx))
	assert.Equal(t, "test", l.Name())
}

func TestWaitCancelledContext(t *testing.T) {
	l := NewStrict("slow", 1)
	// Drain the single burst token so the next Wait must block.
	require.True(t, l.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow")
}

func TestStrictLimiterHasNoBurst(t *testing.T) {
	l := NewStrict("nominatim", 1)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}
