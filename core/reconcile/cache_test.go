package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetCache(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewSetCache[uint, uint](time.Minute)
	c.now = func() time.Time { return now }

	c.Put(1, []uint{10, 11})
	assert.True(t, c.Contains(1, 10))
	assert.False(t, c.Contains(1, 12))
	assert.False(t, c.Contains(2, 10))

	c.Remove(1, 10)
	assert.False(t, c.Contains(1, 10))
	assert.True(t, c.Contains(1, 11))

	now = now.Add(2 * time.Minute)
	assert.False(t, c.Contains(1, 11), "expired entries are ignored")

	c.Put(1, []uint{20})
	assert.True(t, c.Contains(1, 20))
	c.Invalidate(1)
	assert.False(t, c.Contains(1, 20))
}

func TestSetCache_Disabled(t *testing.T) {
	c := NewSetCache[uint, uint](0)
	c.Put(1, []uint{10})
	assert.False(t, c.Contains(1, 10))
}
