package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNowIsUTC(t *testing.T) {
	t.Parallel()

	clk := New()
	require.NotNil(t, clk)

	got := clk.Now()
	assert.Same(t, time.UTC, got.Location(), "run timestamps and air dates are compared in UTC")
}

func TestNowTracksWallClock(t *testing.T) {
	t.Parallel()

	clk := New()

	before := time.Now().UTC().Add(-time.Second)
	got := clk.Now()
	after := time.Now().UTC().Add(time.Second)

	assert.True(t, got.After(before), "Now() = %v, want after %v", got, before)
	assert.True(t, got.Before(after), "Now() = %v, want before %v", got, after)
}

func TestNowIsNonDecreasing(t *testing.T) {
	t.Parallel()

	clk := New()

	first := clk.Now()
	second := clk.Now()
	assert.False(t, second.Before(first), "second call %v must not precede first %v", second, first)
}
