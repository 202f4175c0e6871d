// Package poll repeatedly invokes a fetch function until a condition holds.
package poll

import (
	"context"
	"time"
)

// DefaultInterval is used when a poller is created with a non-positive interval
const DefaultInterval = 100 * time.Millisecond

// FetchFunc retrieves one snapshot of the polled resource
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Predicate reports whether polling can stop on the given snapshot
type Predicate[T any] func(T) (bool, error)

// Poller invokes a fetch function on a fixed cadence
type Poller[T any] struct {
	fetch    FetchFunc[T]
	interval time.Duration
}

// New creates a poller for fetch. Nothing runs until Until is called.
func New[T any](fetch FetchFunc[T], interval time.Duration) *Poller[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller[T]{
		fetch:    fetch,
		interval: interval,
	}
}

// Until fetches once per tick until done returns true, and returns that snapshot.
// The first fetch happens one interval after the call. A fetch or predicate error
// ends polling immediately with that error. Fetches never overlap: a tick that fires
// while a fetch is running is handled only after it returns.
func (p *Poller[T]) Until(ctx context.Context, done Predicate[T]) (T, error) {
	var zero T

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-ticker.C:
			result, err := p.fetch(ctx)
			if err != nil {
				return zero, err
			}

			ok, err := done(result)
			if err != nil {
				return zero, err
			}
			if ok {
				return result, nil
			}
		}
	}
}
