package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// record applies a sequence of results: 'f' for a failed call, 's' for a
// successful one.
func record(b *Breaker, results string) {
	for _, r := range results {
		if r == 'f' {
			b.RecordFailure()
		} else {
			b.RecordSuccess()
		}
	}
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		trials   int
		results  string
		wantOpen bool
	}{
		{"fresh breaker is closed", 3, 2, "", false},
		{"below failure threshold", 3, 2, "ff", false},
		{"opens at failure threshold", 3, 2, "fff", true},
		{"success clears consecutive failures", 3, 2, "ffsff", false},
		{"one trial success is not enough", 1, 2, "fs", true},
		{"closes after enough trial successes", 1, 2, "fss", false},
		{"trial failure restarts success count", 1, 3, "fssfss", true},
		{"recovers after full run of successes", 1, 3, "fssfsss", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("identity-lookup", WithFailureThreshold(tt.failures), WithSuccessThreshold(tt.trials))
			record(b, tt.results)
			assert.Equal(t, tt.wantOpen, b.IsOpen())
		})
	}
}

func TestBreakerReportsStateChanges(t *testing.T) {
	b := New("origin-lookup", WithFailureThreshold(2), WithSuccessThreshold(1))
	assert.Equal(t, "origin-lookup", b.Name())

	useFallback, change := b.RecordFailure()
	assert.False(t, useFallback)
	assert.Equal(t, StateChange{}, change)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)

	// already open: fallback again, but no second "opened" transition
	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened)

	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerCooldown(t *testing.T) {
	now := time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC)
	b := New("origin-lookup",
		WithFailureThreshold(1),
		WithCooldown(30*time.Second),
		WithClock(func() time.Time { return now }),
	)

	assert.True(t, b.Allow())
	b.RecordFailure()
	assert.False(t, b.Allow(), "open breaker skips the store during cooldown")

	now = now.Add(29 * time.Second)
	assert.False(t, b.Allow())

	now = now.Add(time.Second)
	assert.True(t, b.Allow(), "cooldown elapsed, one trial call goes through")

	b.RecordFailure()
	assert.False(t, b.Allow(), "failed trial call restarts the cooldown")
}

func TestBreakerAllowsOneTrialAtATime(t *testing.T) {
	now := time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC)
	b := New("identity-lookup",
		WithFailureThreshold(1),
		WithSuccessThreshold(2),
		WithCooldown(10*time.Second),
		WithClock(func() time.Time { return now }),
	)
	b.RecordFailure()
	now = now.Add(10 * time.Second)

	assert.True(t, b.Allow(), "first caller is the trial call")
	assert.False(t, b.Allow(), "concurrent callers fail fast while the trial call is in flight")
	assert.False(t, b.Allow())

	b.RecordSuccess()
	assert.True(t, b.IsOpen(), "one success is below the threshold")
	assert.True(t, b.Allow(), "next trial call once the previous one reported")
	assert.False(t, b.Allow())

	b.RecordSuccess()
	assert.False(t, b.IsOpen())
	assert.True(t, b.Allow())
	assert.True(t, b.Allow(), "closed breaker lets everyone through")
}

func TestBreakerReplacesLostTrial(t *testing.T) {
	now := time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC)
	b := New("origin-lookup",
		WithFailureThreshold(1),
		WithCooldown(10*time.Second),
		WithClock(func() time.Time { return now }),
	)
	b.RecordFailure()
	now = now.Add(10 * time.Second)

	assert.True(t, b.Allow())
	// the trial call never records a result
	now = now.Add(9 * time.Second)
	assert.False(t, b.Allow())
	now = now.Add(time.Second)
	assert.True(t, b.Allow(), "stale trial call is replaced after another cooldown")
}

func TestBreakerReset(t *testing.T) {
	b := New("identity-lookup", WithFailureThreshold(1))
	b.RecordFailure()
	assert.Equal(t, "open", b.State().String())

	b.Reset()
	assert.Equal(t, "closed", b.State().String())
	assert.True(t, b.Allow())
}
