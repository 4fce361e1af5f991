// Package sync provides the small concurrency vocabulary the rest of
// the module shares: a pluggable goroutine-pool interface with
// adapters over the common pool libraries, and a cancellable future
// for background work.
package sync

import (
	"github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
	conc "github.com/sourcegraph/conc/pool"

	"github.com/Tangerg/pyflow/pkg/safe"
)

// Pool runs submitted functions concurrently. Implementations differ
// only in how they bound and reuse goroutines; callers never depend on
// more than Submit.
type Pool interface {
	// Submit schedules f to run. It returns an error only when the
	// underlying pool refuses the task (closed, over capacity with a
	// non-blocking policy, and so on).
	Submit(f func()) error
}

// submitFunc adapts a bare function to the Pool interface.
type submitFunc func(f func()) error

func (s submitFunc) Submit(f func()) error { return s(f) }

// Goroutines is the no-pool Pool: one fresh goroutine per task, no
// reuse and no concurrency bound, with panic recovery from pkg/safe.
func Goroutines() Pool {
	return submitFunc(func(f func()) error {
		safe.Go(f)
		return nil
	})
}

// FromAnts adapts a panjf2000/ants pool.
func FromAnts(p *ants.Pool) Pool {
	return submitFunc(func(f func()) error {
		return p.Submit(f)
	})
}

// FromWorkerpool adapts a gammazero/workerpool pool. Its Submit never
// rejects; tasks queue until a worker frees up.
func FromWorkerpool(p *workerpool.WorkerPool) Pool {
	return submitFunc(func(f func()) error {
		p.Submit(f)
		return nil
	})
}

// FromConc adapts a sourcegraph/conc pool. The caller remains
// responsible for p.Wait.
func FromConc(p *conc.Pool) Pool {
	return submitFunc(func(f func()) error {
		p.Go(f)
		return nil
	})
}
