package realtime

import (
	"context"
	"sync"

	"blood-request-coordinator/internal/metrics"
)

// Subscription streams full query results. Snapshots arrive in order. An
// error is terminal: it is delivered once on Err and Snapshots is closed
// right after.
type Subscription[T any] struct {
	snapshots chan T
	errs      chan error

	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

func (s *Subscription[T]) Snapshots() <-chan T {
	return s.snapshots
}

func (s *Subscription[T]) Err() <-chan error {
	return s.errs
}

// Close stops the subscription and waits for its goroutine to exit. Safe to
// call more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Watch runs fetch now and again after every change on topics. The listener
// is attached before the first fetch so no change between the two is missed.
func Watch[T any](ctx context.Context, feed Feed, fetch func(ctx context.Context) (T, error), topics ...Topic) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription[T]{
		snapshots: make(chan T),
		errs:      make(chan error, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	listener := feed.Subscribe(topics...)
	metrics.ActiveSubscriptions.Inc()
	go s.run(ctx, listener, fetch)
	return s
}

func (s *Subscription[T]) run(ctx context.Context, listener *Listener, fetch func(ctx context.Context) (T, error)) {
	defer close(s.done)
	defer close(s.snapshots)
	defer metrics.ActiveSubscriptions.Dec()
	defer listener.Close()

	for {
		snapshot, err := fetch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.errs <- err
			}
			return
		}

		select {
		case s.snapshots <- snapshot:
		case <-ctx.Done():
			return
		}

		select {
		case <-listener.C:
		case <-ctx.Done():
			return
		}
	}
}
