package kv

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetOrCreate(t *testing.T) {
	s := New[string, int]()

	val := s.GetOrCreate("foo", func() int { return 42 })
	assert.Equal(t, 42, val)

	// Existing key keeps its value.
	val = s.GetOrCreate("foo", func() int { return 7 })
	assert.Equal(t, 42, val)

	got, ok := s.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, 42, got)

	_, ok = s.Get("bar")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	s := New[string, string]()
	s.GetOrCreate("key", func() string { return "value" })

	s.Delete("key")

	_, ok := s.Get("key")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_GetOrCreateConcurrent(t *testing.T) {
	s := New[string, *sync.Mutex]()

	var created atomic.Int32
	var wg sync.WaitGroup
	results := make([]*sync.Mutex, 50)

	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.GetOrCreate("conv", func() *sync.Mutex {
				created.Add(1)
				return &sync.Mutex{}
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	for _, m := range results {
		assert.Same(t, results[0], m)
	}
	assert.Equal(t, 1, s.Len())
}
