package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSet(t *testing.T) {
	c := New[string](time.Minute, time.Minute)
	defer c.Destroy()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("key", "value", 0)

	v, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	c.Set("key", "other", 0)
	v, _ = c.Get("key")
	assert.Equal(t, "other", v)
}

func TestExistsDistinguishesZeroValues(t *testing.T) {
	c := New[*string](time.Minute, time.Minute)
	defer c.Destroy()

	// A nil value is a legitimate cached result: presence and value are
	// independent
	c.Set("empty", nil, 0)

	assert.True(t, c.Exists("empty"))

	v, ok := c.Get("empty")
	assert.True(t, ok)
	assert.Nil(t, v)

	assert.False(t, c.Exists("never-set"))
}

func TestExpiryWithoutSweep(t *testing.T) {
	// Sweep interval far in the future: expiry must work on access alone
	c := New[int](time.Minute, time.Hour)
	defer c.Destroy()

	c.Set("key", 42, 20*time.Millisecond)

	v, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, 42, v)
	assert.True(t, c.Exists("key"))

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get("key")
	assert.False(t, ok)
	assert.False(t, c.Exists("key"))
}

func TestBackgroundSweepEvicts(t *testing.T) {
	c := New[int](time.Minute, 20*time.Millisecond)
	defer c.Destroy()

	c.Set("a", 1, 10*time.Millisecond)
	c.Set("b", 2, 10*time.Millisecond)
	require.Equal(t, 2, c.Len())

	// Entries expire and the sweep removes them without any access
	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestGetOrSet(t *testing.T) {
	c := New[int](time.Minute, time.Minute)
	defer c.Destroy()

	calls := 0
	compute := func() (int, error) {
		calls++
		return 7, nil
	}

	v, err := c.GetOrSet("key", compute, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, calls)

	v, err = c.GetOrSet("key", compute, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, calls, "second call should be served from cache")
}

func TestGetOrSetDoesNotCacheErrors(t *testing.T) {
	c := New[int](time.Minute, time.Minute)
	defer c.Destroy()

	_, err := c.GetOrSet("key", func() (int, error) {
		return 0, assert.AnError
	}, 0)
	require.Error(t, err)

	assert.False(t, c.Exists("key"))
}

func TestGetOrSetConcurrentConvergence(t *testing.T) {
	c := New[int](time.Minute, time.Minute)
	defer c.Destroy()

	// No in-flight de-duplication is promised: compute may run more than
	// once, but all callers get the constant and a later Get converges
	var computes atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrSet("key", func() (int, error) {
				computes.Add(1)
				return 99, nil
			}, 0)
			assert.NoError(t, err)
			assert.Equal(t, 99, v)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, computes.Load(), int64(1))

	v, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, 99, v)
}

func TestDeleteAndClear(t *testing.T) {
	c := New[int](time.Minute, time.Minute)
	defer c.Destroy()

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)

	c.Delete("a")
	assert.False(t, c.Exists("a"))
	assert.True(t, c.Exists("b"))

	c.Clear()
	assert.False(t, c.Exists("b"))
	assert.Equal(t, 0, c.Len())
}

func TestDestroyIsIdempotent(t *testing.T) {
	c := New[int](time.Minute, time.Minute)

	c.Set("a", 1, 0)
	c.Destroy()
	assert.Equal(t, 0, c.Len())

	// A second Destroy must not panic on the closed stop channel
	c.Destroy()
}
