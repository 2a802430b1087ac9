package internal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClock_SleepAdvances(t *testing.T) {
	start := time.Unix(2000, 0)
	c := NewMockClock(start)

	require.NoError(t, c.Sleep(context.Background(), time.Second))
	require.NoError(t, c.Sleep(context.Background(), 250*time.Millisecond))

	assert.Equal(t, start.Add(1250*time.Millisecond), c.Now())
	assert.Equal(t, []time.Duration{time.Second, 250 * time.Millisecond}, c.Sleeps())
}

func TestMockClock_SleepCancelled(t *testing.T) {
	c := NewMockClock(time.Time{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Sleep(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.Sleeps())
}

func TestMockClock_ZeroStart(t *testing.T) {
	c := NewMockClock(time.Time{})
	assert.Equal(t, time.Unix(1000000000, 0), c.Now())
}

func TestMockClock_AdvanceNegativePanics(t *testing.T) {
	c := NewMockClock(time.Time{})
	assert.Panics(t, func() { c.Advance(-time.Second) })
}

func TestMonotonicClock_SleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := MonotonicClock{}.Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestMonotonicClock_Sleep(t *testing.T) {
	start := time.Now()
	require.NoError(t, MonotonicClock{}.Sleep(context.Background(), 10*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
