package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledIsNil(t *testing.T) {
	l := New(0)
	require.Nil(t, l)

	assert.True(t, l.Allow())
	assert.NoError(t, l.Wait(context.Background()))
	l.SetLimit(10)
}

func TestLimiter_BurstThenBlocks(t *testing.T) {
	l := NewWithBurst(1, 2)

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx))
}

func TestNew_BurstIsTenthOfRate(t *testing.T) {
	l := New(600)
	require.NotNil(t, l)
	assert.InDelta(t, 60, l.Tokens(), 0.5)
}
