package orders

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldown(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCooldown(time.Hour)
	c.now = func() time.Time { return now }

	assert.True(t, c.Allowed("k"))
	_, ok := c.Reserve("k")
	require.True(t, ok)
	assert.False(t, c.Allowed("k"))
	assert.Equal(t, time.Hour, c.Wait("k"))

	wait, ok := c.Reserve("k")
	assert.False(t, ok)
	assert.Equal(t, time.Hour, wait)

	now = now.Add(45 * time.Minute)
	assert.InDelta(t, float64(15*time.Minute), float64(c.Wait("k")), float64(time.Second))

	now = now.Add(16 * time.Minute)
	assert.True(t, c.Allowed("k"))
	assert.True(t, c.Allowed("other"))
}

func TestCooldownRelease(t *testing.T) {
	t.Parallel()

	c := NewCooldown(time.Hour)
	_, ok := c.Reserve("k")
	require.True(t, ok)

	c.Release("k")
	assert.True(t, c.Allowed("k"))
	_, ok = c.Reserve("k")
	assert.True(t, ok)
}

func TestCooldownReserveConcurrent(t *testing.T) {
	t.Parallel()

	c := NewCooldown(time.Hour)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := c.Reserve("ip:1.2.3.4"); ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, granted)
}

func TestCooldownDisabled(t *testing.T) {
	t.Parallel()

	c := NewCooldown(0)
	_, ok := c.Reserve("k")
	require.True(t, ok)
	_, ok = c.Reserve("k")
	assert.True(t, ok)
	assert.True(t, c.Allowed("k"))
}
