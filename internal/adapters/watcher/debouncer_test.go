package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/depcache/internal/adapters/watcher"
)

func TestDebouncer_CoalescesSorted(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var batches [][]string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			mu.Lock()
			batches = append(batches, paths)
			mu.Unlock()
		})

		d.Add("com/acme/C.class")
		d.Add("com/acme/A.class")
		d.Add("com/acme/C.class")
		d.Add("com/acme/B.class")
		assert.Equal(t, 3, d.Pending())

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, batches, 1)
		assert.Equal(t, []string{"com/acme/A.class", "com/acme/B.class", "com/acme/C.class"}, batches[0])
		assert.Zero(t, d.Pending())
	})
}

func TestDebouncer_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var calls int

		d := watcher.NewDebouncer(100*time.Millisecond, func([]string) {
			mu.Lock()
			calls++
			mu.Unlock()
		})

		d.Add("com/acme/A.class")
		time.Sleep(60 * time.Millisecond)
		d.Add("com/acme/B.class")
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		assert.Equal(t, 0, calls)
		mu.Unlock()

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		assert.Equal(t, 1, calls)
		mu.Unlock()
	})
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var batches [][]string

		d := watcher.NewDebouncer(50*time.Millisecond, func(paths []string) {
			mu.Lock()
			batches = append(batches, paths)
			mu.Unlock()
		})

		d.Add("com/acme/A.class")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		d.Add("com/acme/B.class")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, [][]string{{"com/acme/A.class"}, {"com/acme/B.class"}}, batches)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls int
		var received []string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			calls++
			received = paths
		})

		d.Add("com/acme/B.class")
		d.Add("com/acme/A.class")
		d.Flush()

		require.Equal(t, 1, calls)
		assert.Equal(t, []string{"com/acme/A.class", "com/acme/B.class"}, received)

		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 1, calls)
	})
}

func TestDebouncer_FlushEmpty(t *testing.T) {
	var calls int
	d := watcher.NewDebouncer(100*time.Millisecond, func([]string) { calls++ })

	d.Flush()

	assert.Equal(t, 0, calls)
}

func TestDebouncer_FlushAfterFire(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var calls int

		d := watcher.NewDebouncer(50*time.Millisecond, func([]string) {
			mu.Lock()
			calls++
			mu.Unlock()
		})

		d.Add("com/acme/A.class")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		d.Flush()

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, calls)
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(50*time.Millisecond, nil)

		d.Add("com/acme/A.class")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		d.Add("com/acme/B.class")
		d.Flush()
	})
}
