package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(limit int, window time.Duration) (*Limiter, *time.Time) {
	l := New(nil, SourceLimit{Limit: limit, Window: window})
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAdmitWithinLimit(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		allowed, wait := l.Admit("simple")
		assert.True(t, allowed)
		assert.Zero(t, wait)
	}
}

func TestFiftyFirstCallDenied(t *testing.T) {
	l, now := newTestLimiter(50, 60*time.Second)
	for i := 0; i < 50; i++ {
		// spread 51 admissions over 10 seconds
		*now = now.Add(200 * time.Millisecond)
		allowed, _ := l.Admit("simple")
		require.True(t, allowed, "call %d", i+1)
	}
	allowed, wait := l.Admit("simple")
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))
}

func TestWindowResets(t *testing.T) {
	l, now := newTestLimiter(1, time.Minute)
	allowed, _ := l.Admit("simple")
	require.True(t, allowed)
	allowed, wait := l.Admit("simple")
	require.False(t, allowed)
	assert.Equal(t, time.Minute, wait)

	*now = now.Add(time.Minute)
	allowed, _ = l.Admit("simple")
	assert.True(t, allowed)
}

func TestRetryAfterShrinksAsWindowAges(t *testing.T) {
	l, now := newTestLimiter(1, time.Minute)
	_, _ = l.Admit("simple")

	*now = now.Add(45 * time.Second)
	allowed, wait := l.Admit("simple")
	require.False(t, allowed)
	assert.Equal(t, 15*time.Second, wait)
}

func TestSourcesAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	allowed, _ := l.Admit("simple")
	require.True(t, allowed)
	allowed, _ = l.Admit("simple")
	require.False(t, allowed)

	allowed, _ = l.Admit("enhanced")
	assert.True(t, allowed)
}

func TestPerSourceOverride(t *testing.T) {
	l := New(map[string]SourceLimit{
		"keyed": {Limit: 2, Window: time.Minute},
	}, SourceLimit{Limit: 1, Window: time.Minute})
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	allowed, _ := l.Admit("keyed")
	require.True(t, allowed)
	allowed, _ = l.Admit("keyed")
	require.True(t, allowed)
	allowed, _ = l.Admit("keyed")
	assert.False(t, allowed)
}

func TestRemaining(t *testing.T) {
	l, _ := newTestLimiter(5, time.Minute)
	assert.Equal(t, 5, l.Remaining("simple"))
	l.Admit("simple")
	l.Admit("simple")
	assert.Equal(t, 3, l.Remaining("simple"))
}
