// Package sched provides a cancellable repeating task: a fixed-interval
// loop with a hard wall-clock budget and an idempotent, synchronous stop.
// It is the scheduling primitive behind payment-status polling.
package sched

import (
	"context"
	"sync"
	"time"
)

// Tick is invoked on every interval. Returning true ends the loop.
// The context is cancelled when the task is stopped.
type Tick func(ctx context.Context) (done bool)

// Handle controls a running task.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the task and blocks until the loop goroutine has exited.
// After Stop returns, no further tick will run. Idempotent.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed when the loop has exited (stopped, finished or expired).
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Repeat runs tick every interval until one of:
//   - tick returns true,
//   - Stop is called,
//   - budget elapses, in which case expired is called exactly once.
//
// The budget is a hard upper bound independent of how individual ticks
// behave: it fires even if every tick errors. The first tick runs after
// the first interval, not immediately.
func Repeat(interval, budget time.Duration, tick Tick, expired func()) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		deadline := time.NewTimer(budget)
		defer deadline.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-deadline.C:
				if expired != nil {
					expired()
				}
				return
			case <-ticker.C:
				if tick(ctx) {
					return
				}
			}
		}
	}()

	return h
}
