package registry

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct{ id string }

func newTestRegistry(delay time.Duration, removed chan<- string) (*Registry[*item], *atomic.Int32) {
	var created atomic.Int32
	r := New(delay,
		func(id string) *item {
			created.Add(1)
			return &item{id: id}
		},
		func(id string, _ *item) {
			if removed != nil {
				removed <- id
			}
		},
	)
	return r, &created
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	r, created := newTestRegistry(time.Hour, nil)

	a, ok := r.GetOrCreate("s1")
	require.True(t, ok)
	b, ok := r.GetOrCreate("s1")
	require.False(t, ok)

	assert.Same(t, a, b)
	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, 1, r.Len())
}

func TestGetOrCreateConcurrent(t *testing.T) {
	r, created := newTestRegistry(time.Hour, nil)

	var wg sync.WaitGroup
	results := make([]*item, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = r.GetOrCreate("same")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	for _, it := range results {
		assert.Same(t, results[0], it)
	}
}

func TestRemove(t *testing.T) {
	removed := make(chan string, 2)
	r, _ := newTestRegistry(time.Hour, removed)
	r.GetOrCreate("s1")

	r.Remove("s1")
	r.Remove("s1")
	r.Remove("unknown")

	_, ok := r.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, "s1", <-removed)
	assert.Empty(t, removed)
}

func TestScheduledRemoval(t *testing.T) {
	removed := make(chan string, 1)
	r, _ := newTestRegistry(20*time.Millisecond, removed)
	r.GetOrCreate("s1")

	r.ScheduleRemoval("s1")

	select {
	case id := <-removed:
		assert.Equal(t, "s1", id)
	case <-time.After(time.Second):
		t.Fatal("session was not removed")
	}
	assert.Zero(t, r.Len())
}

func TestCancelRemoval(t *testing.T) {
	removed := make(chan string, 1)
	r, _ := newTestRegistry(20*time.Millisecond, removed)
	r.GetOrCreate("s1")

	r.ScheduleRemoval("s1")
	r.CancelRemoval("s1")

	select {
	case <-removed:
		t.Fatal("cancelled removal ran")
	case <-time.After(80 * time.Millisecond):
	}
	_, ok := r.Get("s1")
	assert.True(t, ok)
}

func TestScheduleRemovalOfUnknownIsNoop(t *testing.T) {
	removed := make(chan string, 1)
	r, _ := newTestRegistry(time.Millisecond, removed)

	r.ScheduleRemoval("ghost")

	select {
	case <-removed:
		t.Fatal("unexpected removal")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestExplicitRemoveCancelsSchedule(t *testing.T) {
	removed := make(chan string, 2)
	r, _ := newTestRegistry(20*time.Millisecond, removed)
	r.GetOrCreate("s1")
	r.ScheduleRemoval("s1")

	r.Remove("s1")
	r.GetOrCreate("s1")

	assert.Equal(t, "s1", <-removed)
	select {
	case <-removed:
		t.Fatal("stale removal deleted the new session")
	case <-time.After(80 * time.Millisecond):
	}
	assert.Equal(t, 1, r.Len())
}
