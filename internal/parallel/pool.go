// Package parallel provides the bounded goroutine pool and ingestion
// throttle backing the index's bulk/parallel driver operations.
package parallel

import (
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

// Pool is a bounded goroutine pool for data-parallel work: one call per
// task, all tasks independent, with a WaitGroup-style barrier to collect
// completion. This is the shape par_bulk_insert and par_bulk_query use for
// their signature-construction fan-out, keeping the eventual index-mutation
// step serialized on the calling goroutine.
type Pool struct {
	pool      *ants.Pool
	wg        sync.WaitGroup
	submitted atomic.Int64
	completed atomic.Int64
	errs      atomic.Int64
}

// Options configures pool size and queueing behavior.
type Options struct {
	Size        int
	PreAlloc    bool
	MaxBlocking int
}

// DefaultOptions mirrors the teacher's defaults: a moderate fixed pool,
// preallocated, with a generous blocking queue so bursts of Submit calls
// don't need their own buffering.
func DefaultOptions() Options {
	return Options{
		Size:        100,
		PreAlloc:    true,
		MaxBlocking: 1000,
	}
}

// New builds a Pool with the given options.
func New(opts Options) (*Pool, error) {
	antsOpts := []ants.Option{
		ants.WithPreAlloc(opts.PreAlloc),
	}
	if opts.MaxBlocking > 0 {
		antsOpts = append(antsOpts, ants.WithMaxBlockingTasks(opts.MaxBlocking))
	}

	p, err := ants.NewPool(opts.Size, antsOpts...)
	if err != nil {
		return nil, err
	}
	return &Pool{pool: p}, nil
}

// Submit schedules fn to run on the pool, blocking until a worker slot is
// available (per MaxBlocking). Call Wait to block until all submitted
// tasks have finished.
func (p *Pool) Submit(fn func() error) error {
	p.submitted.Add(1)
	p.wg.Add(1)
	return p.pool.Submit(func() {
		defer p.wg.Done()
		if err := fn(); err != nil {
			p.errs.Add(1)
		}
		p.completed.Add(1)
	})
}

// Wait blocks until every submitted task has completed.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Release frees the pool's worker goroutines. Call once the Pool is no
// longer needed.
func (p *Pool) Release() {
	p.pool.Release()
}

// Stats is a point-in-time snapshot of pool activity.
type Stats struct {
	Running   int
	Capacity  int
	Submitted int64
	Completed int64
	Errors    int64
}

// Stats returns current pool statistics.
func (p *Pool) Stats() Stats {
	return Stats{
		Running:   p.pool.Running(),
		Capacity:  p.pool.Cap(),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Errors:    p.errs.Load(),
	}
}

// Tune adjusts the pool's worker capacity.
func (p *Pool) Tune(size int) {
	p.pool.Tune(size)
}
