package sync_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
	conc "github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	psync "github.com/Tangerg/pyflow/pkg/sync"
)

func runTasks(t *testing.T, p psync.Pool, n int) int32 {
	t.Helper()
	var done int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		err := p.Submit(func() {
			defer wg.Done()
			atomic.AddInt32(&done, 1)
		})
		require.NoError(t, err)
	}
	wg.Wait()
	return atomic.LoadInt32(&done)
}

func TestGoroutinesPool(t *testing.T) {
	assert.Equal(t, int32(8), runTasks(t, psync.Goroutines(), 8))
}

func TestGoroutinesPoolRecoversPanics(t *testing.T) {
	p := psync.Goroutines()
	var wg sync.WaitGroup
	wg.Add(1)
	err := p.Submit(func() {
		defer wg.Done()
		panic("contained")
	})
	require.NoError(t, err)
	assert.NotPanics(t, wg.Wait)
}

func TestFromAnts(t *testing.T) {
	inner, err := ants.NewPool(4)
	require.NoError(t, err)
	defer inner.Release()
	assert.Equal(t, int32(8), runTasks(t, psync.FromAnts(inner), 8))
}

func TestFromAntsReleasedPoolRejects(t *testing.T) {
	inner, err := ants.NewPool(1)
	require.NoError(t, err)
	inner.Release()
	err = psync.FromAnts(inner).Submit(func() {})
	assert.Error(t, err)
}

func TestFromWorkerpool(t *testing.T) {
	inner := workerpool.New(4)
	defer inner.StopWait()
	assert.Equal(t, int32(8), runTasks(t, psync.FromWorkerpool(inner), 8))
}

func TestFromConc(t *testing.T) {
	inner := conc.New().WithMaxGoroutines(4)
	p := psync.FromConc(inner)
	var done int32
	for i := 0; i < 8; i++ {
		require.NoError(t, p.Submit(func() { atomic.AddInt32(&done, 1) }))
	}
	inner.Wait()
	assert.Equal(t, int32(8), atomic.LoadInt32(&done))
}
