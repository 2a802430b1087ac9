// Package internal provides internal utilities for the ready package.
package internal

import (
	"context"
	"time"
)

// Clock is an interface for obtaining time and suspending the caller.
// This abstraction allows deterministic testing of the polling loop.
type Clock interface {
	// Now returns the current time. Implementations must return
	// monotonically increasing time values.
	Now() time.Time

	// Sleep suspends the caller for d or until ctx is done, whichever
	// comes first. It returns ctx.Err() if the context ended the wait.
	Sleep(ctx context.Context, d time.Duration) error
}

// MonotonicClock is a Clock implementation backed by the system clock.
type MonotonicClock struct{}

// Now returns the current system time with monotonic clock reading.
func (MonotonicClock) Now() time.Time {
	return time.Now()
}

// Sleep blocks on a timer so the wait can be interrupted by ctx.
func (MonotonicClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// MockClock is a Clock implementation for testing. Sleep advances logical
// time immediately instead of blocking. It is not safe for concurrent use.
type MockClock struct {
	current time.Time
	sleeps  []time.Duration
}

// NewMockClock creates a new MockClock initialized to the given time.
// If t is zero, it initializes to a reasonable default start time.
func NewMockClock(t time.Time) *MockClock {
	if t.IsZero() {
		t = time.Unix(1000000000, 0) // 2001-09-09
	}
	return &MockClock{current: t}
}

// Now returns the mock clock's current time.
func (m *MockClock) Now() time.Time {
	return m.current
}

// Sleep records d and advances the clock by it.
func (m *MockClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.sleeps = append(m.sleeps, d)
	m.Advance(d)
	return nil
}

// Sleeps returns every duration passed to Sleep, in call order.
func (m *MockClock) Sleeps() []time.Duration {
	return append([]time.Duration(nil), m.sleeps...)
}

// Advance moves the clock forward by the given duration.
// Panics if d is negative to maintain monotonicity.
func (m *MockClock) Advance(d time.Duration) {
	if d < 0 {
		panic("MockClock.Advance: duration must be non-negative")
	}
	m.current = m.current.Add(d)
}
