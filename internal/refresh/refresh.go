// Package refresh runs a view's polling loop: one fetch on start, one per
// interval, one per Trigger, until Stop.
package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Refresher is what a view exposes to whoever mounted it.
type Refresher interface {
	Trigger()
	Stop()
	Alive() bool
}

// Ticker is the goroutine-backed Refresher.
type Ticker struct {
	interval  time.Duration
	immediate bool
	fetch     func(ctx context.Context)
	trigger   chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}
	alive     atomic.Bool
	stopOnce  sync.Once
}

// Start runs fetch immediately and then every interval. fetch receives a
// context that is not canceled by Stop: an in-flight request is allowed
// to finish and the view drops its result by checking Alive.
func Start(parent context.Context, interval time.Duration, fetch func(ctx context.Context)) *Ticker {
	return start(parent, interval, true, fetch)
}

// Schedule is Start without the initial fetch, for views whose first load
// happened synchronously.
func Schedule(parent context.Context, interval time.Duration, fetch func(ctx context.Context)) *Ticker {
	return start(parent, interval, false, fetch)
}

func start(parent context.Context, interval time.Duration, immediate bool, fetch func(ctx context.Context)) *Ticker {
	ctx, cancel := context.WithCancel(parent)
	t := &Ticker{
		interval:  interval,
		immediate: immediate,
		fetch:     fetch,
		trigger:   make(chan struct{}, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	t.alive.Store(true)
	go t.loop(ctx)
	return t
}

func (t *Ticker) loop(ctx context.Context) {
	defer close(t.done)

	detached := context.WithoutCancel(ctx)
	if t.immediate {
		t.fetch(detached)
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.alive.Store(false)
			return
		case <-ticker.C:
		case <-t.trigger:
		}
		if !t.alive.Load() {
			return
		}
		t.fetch(detached)
	}
}

// Trigger asks for an immediate refresh. Triggers that arrive while one
// is already pending collapse into it.
func (t *Ticker) Trigger() {
	select {
	case t.trigger <- struct{}{}:
	default:
	}
}

// Stop ends the loop. It does not wait for an in-flight fetch.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() {
		t.alive.Store(false)
		t.cancel()
	})
}

// Alive reports whether results should still be applied.
func (t *Ticker) Alive() bool {
	return t.alive.Load()
}

// Done is closed once the loop goroutine has exited.
func (t *Ticker) Done() <-chan struct{} {
	return t.done
}
