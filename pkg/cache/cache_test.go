package cache_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-Archives-and-Forks/xan/pkg/cache"
	"github.com/A-Archives-and-Forks/xan/pkg/parser"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

func TestCacheGetSet(t *testing.T) {
	c := cache.New[int](2)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	c.Set("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// "b" is now the least recently used entry
	c.Set("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.Equal(t, uint64(1), stats.Evictions)
}

func TestCacheDefaultCapacity(t *testing.T) {
	assert.Equal(t, cache.DefaultCapacity, cache.New[string](0).Capacity())
	assert.Equal(t, 8, cache.New[string](8).Capacity())
}

func TestCacheGetOrCompile(t *testing.T) {
	c := cache.New[*types.Expression](4)
	calls := 0
	compile := func() (*types.Expression, error) {
		calls++
		return parser.Compile("add(a, b)")
	}

	first, err := c.GetOrCompile("add(a, b)", compile)
	require.NoError(t, err)
	second, err := c.GetOrCompile("add(a, b)", compile)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	c := cache.New[*types.Expression](4)
	boom := errors.New("boom")
	calls := 0
	compile := func() (*types.Expression, error) {
		calls++
		return nil, boom
	}

	_, err := c.GetOrCompile("x", compile)
	assert.ErrorIs(t, err, boom)
	_, err = c.GetOrCompile("x", compile)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, c.Len())
}

func TestCacheInvalidateAndClear(t *testing.T) {
	c := cache.New[int](4)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, cache.Stats{}, c.Stats())
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := cache.New[int](16)
	var wg sync.WaitGroup

	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				key := fmt.Sprintf("k%d", (w+i)%32)
				if _, ok := c.Get(key); !ok {
					c.Set(key, i)
				}
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
}
