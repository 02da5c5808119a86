// Package runloop runs a machine.Machine's frame loop on its own goroutine,
// pausable and stoppable from the outside. This is the optional emulation
// thread the spec describes as a layer outside the core's correctness
// obligations: the Machine itself stays safe to pin to one goroutine, and
// Runner only orchestrates when that goroutine runs.
//
// The teacher's CPU drove its own run loop with an atomic running flag and
// a mutex guarding shared state (cpu_z80.go's running atomic.Bool plus
// mutex.Lock around externally-visible fields). An errgroup.Group paired
// with a context.Context is the idiomatic replacement for that pattern when
// the loop is pulled out into its own orchestration layer: cancellation
// propagates through ctx.Done() instead of a polled flag, and Wait
// surfaces the loop's own error instead of requiring a separate channel.
package runloop

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Clocker is the capability Runner needs from the driven machine: one
// frame's worth of work per call.
type Clocker interface {
	Frame()
}

// Runner drives a Clocker's Frame method in a loop on a background
// goroutine, started with Start and stopped with Stop. Pause/Resume
// toggle whether Frame is actually invoked without tearing the goroutine
// down, without introducing a condition variable: a buffered channel plus
// a mutex-guarded flag serve the same purpose with less ceremony. Runner
// has no speed control; Frame is called back to back.
type Runner struct {
	machine Clocker

	mu      sync.Mutex
	paused  bool
	resumeC chan struct{}

	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewRunner constructs a Runner for machine. The goroutine is not started
// until Start is called.
func NewRunner(m Clocker) *Runner {
	// resumeC is buffered by one so a Resume racing ahead of the loop
	// goroutine's own pause check still latches: the signal sits in the
	// buffer until the loop is ready to receive it, rather than being
	// dropped by a non-blocking send with no one listening yet.
	return &Runner{machine: m, resumeC: make(chan struct{}, 1)}
}

// Start launches the frame loop on its own goroutine. Calling Start twice
// without an intervening Stop is a programmer error and panics, matching
// the teacher's own single-owner run-loop assumption.
func (r *Runner) Start(ctx context.Context) {
	if r.group != nil {
		panic("runloop: Start called while already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(ctx)
	r.cancel = cancel
	r.group = group

	group.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if r.isPaused() {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-r.resumeC:
				}
				continue
			}
			r.machine.Frame()
		}
	})
}

// Pause suspends Frame calls without stopping the goroutine; Resume
// continues it. Both are safe to call from any goroutine.
func (r *Runner) Pause() {
	r.mu.Lock()
	r.paused = true
	r.mu.Unlock()
}

func (r *Runner) Resume() {
	r.mu.Lock()
	wasPaused := r.paused
	r.paused = false
	r.mu.Unlock()
	if wasPaused {
		select {
		case r.resumeC <- struct{}{}:
		default:
		}
	}
}

func (r *Runner) isPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Stop cancels the loop and blocks until its goroutine has exited,
// returning any error other than context cancellation.
func (r *Runner) Stop() error {
	if r.group == nil {
		return nil
	}
	r.cancel()
	err := r.group.Wait()
	r.group = nil
	r.cancel = nil
	if err == context.Canceled {
		return nil
	}
	return err
}
