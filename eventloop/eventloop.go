// Package eventloop is the single-threaded coordinator of the capture
// pipeline: capture -> select -> crop -> preprocess -> recognize -> report,
// in strict sequence. The recognition call is the only suspension point; it
// runs on the worker pool and posts its outcome back over a channel.
package eventloop

import (
	"context"
	"log"
	"time"

	"screen-ocr-ollama/ocr"
	"screen-ocr-ollama/overlay"
	"screen-ocr-ollama/screenshot"
	"screen-ocr-ollama/worker"
)

// Reporter is the presentation collaborator. Exactly one of OnResult or
// OnFailure is invoked per committed selection; a cancelled selection invokes
// neither.
type Reporter interface {
	OnResult(res ocr.Result)
	OnFailure(region screenshot.Region, err error)
}

// Options wires the loop's collaborators. Capture defaults to the screenshot
// package; tests inject a synthetic snapshot.
type Options struct {
	Selector overlay.Selector
	Pipeline *ocr.Pipeline
	Reporter Reporter
	Capture  func() (*screenshot.Snapshot, error)
	Deadline time.Duration
	// SetBusy, when set, is told when a recognition starts and finishes
	// (tray tooltip updates and similar advisory signals).
	SetBusy func(bool)
}

type outcome struct {
	res    ocr.Result
	region screenshot.Region
	err    error
}

// Loop owns all selection state. Run and every handler execute on one
// goroutine; worker callbacks only post into the results channel.
type Loop struct {
	opts     Options
	pool     *worker.Pool
	busy     bool
	results  chan outcome
	triggers chan struct{}
}

func New(opts Options) *Loop {
	if opts.Capture == nil {
		opts.Capture = screenshot.Capture
	}
	if opts.Deadline <= 0 {
		opts.Deadline = 60 * time.Second
	}
	return &Loop{
		opts:     opts,
		pool:     worker.New(1),
		results:  make(chan outcome, 1),
		triggers: make(chan struct{}, 4),
	}
}

// Trigger requests a capture session. Non-blocking; excess triggers while one
// is pending are dropped.
func (l *Loop) Trigger() {
	select {
	case l.triggers <- struct{}{}:
	default:
	}
}

// Run processes triggers and recognition outcomes until ctx is cancelled or a
// fatal capture error occurs.
func (l *Loop) Run(ctx context.Context) error {
	defer l.pool.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.triggers:
			if err := l.handleTrigger(ctx); err != nil {
				return err
			}
		case out := <-l.results:
			l.handleOutcome(out)
		}
	}
}

// handleTrigger runs one session up to the point recognition is submitted.
// A capture failure is fatal and stops the loop; selection cancellation
// short-circuits silently.
func (l *Loop) handleTrigger(ctx context.Context) error {
	if l.busy {
		log.Printf("Busy: recognition already in flight, ignoring trigger")
		return nil
	}

	snap, err := l.opts.Capture()
	if err != nil {
		return err
	}

	region, cancelled, err := l.opts.Selector.Select(ctx)
	if cancelled {
		log.Printf("Selection cancelled")
		return nil
	}
	if err != nil {
		l.opts.Reporter.OnFailure(screenshot.Region{}, err)
		return nil
	}

	jobCtx, cancel := context.WithTimeout(ctx, l.opts.Deadline)
	l.setBusy(true)
	submitted := l.pool.Submit(jobCtx, func(taskCtx context.Context) (ocr.Result, error) {
		defer cancel()
		return l.opts.Pipeline.Recognize(taskCtx, snap, region)
	}, func(res ocr.Result, err error) {
		l.results <- outcome{res: res, region: region, err: err}
	})
	if !submitted {
		cancel()
		l.setBusy(false)
		log.Printf("Worker queue full, dropping session")
	}
	return nil
}

func (l *Loop) handleOutcome(out outcome) {
	l.setBusy(false)
	if out.err != nil {
		l.opts.Reporter.OnFailure(out.region, out.err)
		return
	}
	l.opts.Reporter.OnResult(out.res)
}

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if l.opts.SetBusy != nil {
		l.opts.SetBusy(b)
	}
}
