package worker

import (
	"context"
	"log"
	"sync"

	"screen-ocr-ollama/ocr"
)

// ResultCallback is invoked on completion (from a worker goroutine). The
// event loop passes a closure that posts back into the loop safely.
type ResultCallback func(res ocr.Result, err error)

// Task runs one recognition attempt under the given context.
type Task func(ctx context.Context) (ocr.Result, error)

// Pool runs recognition tasks with a 1-slot input queue (strict
// back-pressure: at most one task queued, at most one in flight).
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx  context.Context
	task Task
	cb   ResultCallback
}

// New creates the pool. Size defaults to 1: no two recognition requests are
// ever in flight concurrently.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				res, err := j.task(j.ctx)
				if err != nil {
					log.Printf("Worker: recognition failed: %v", err)
				}
				j.cb(res, err)
			}
		}()
	}
}

// Submit enqueues a task if the single-slot queue is free. Returns false if
// dropped, in which case the callback is never invoked.
func (p *Pool) Submit(ctx context.Context, task Task, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, task: task, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
