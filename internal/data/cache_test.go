package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flex-valuation/internal/config"
	"flex-valuation/internal/valuation"
)

func TestResultCache_SetGetExpire(t *testing.T) {
	c := NewResultCache(time.Minute)
	defer c.Close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	res := &valuation.Result{Valued: 3}
	c.Set("abc", res, 99.5)

	entry, ok := c.Get("abc")
	require.True(t, ok)
	assert.Same(t, res, entry.Result)
	assert.Equal(t, 99.5, entry.GlobalAverage)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("abc")
	assert.False(t, ok)

	c.evictExpired()
	assert.Equal(t, 0, c.Len())
}

func TestResultCache_NilSafe(t *testing.T) {
	var c *ResultCache
	_, ok := c.Get("x")
	assert.False(t, ok)
	assert.Nil(t, c.Set("x", nil, 0))
}

func TestCacheKey_Deterministic(t *testing.T) {
	a := config.Default()
	b := config.Default()

	ka, err := CacheKey(a)
	require.NoError(t, err)
	kb, err := CacheKey(b)
	require.NoError(t, err)
	assert.Equal(t, ka, kb)
	assert.Len(t, ka, 16)

	b.Pricing.AverageOver = config.AverageOverAll
	kc, err := CacheKey(b)
	require.NoError(t, err)
	assert.NotEqual(t, ka, kc)
}
