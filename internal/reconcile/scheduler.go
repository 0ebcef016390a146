package reconcile

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler runs the reconciler on a fixed interval. Passes run sequentially
// on a single goroutine, so they never overlap even when one outlasts the
// interval.
type Scheduler struct {
	reconciler *Reconciler
	interval   time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler returns a scheduler driving reconciler every interval.
func NewScheduler(reconciler *Reconciler, interval time.Duration) *Scheduler {
	return &Scheduler{reconciler: reconciler, interval: interval}
}

// Start launches the loop. It runs one pass immediately, then on every tick.
// Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true

	go func() {
		defer close(s.done)
		s.runOnce(ctx)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for any in-flight pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.reconciler.Run(ctx); err != nil {
		log.Printf("reconcile: run: %v", err)
	}
}
