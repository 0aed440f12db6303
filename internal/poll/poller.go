package poll

import (
	"context"
	"log"
	"sync"
	"time"
)

const defaultInterval = 5 * time.Second

// Handle cancels a running poller. Stop is safe to call multiple times and
// guarantees that no further invocations of the polled action start after it
// returns.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the poller and waits for its loop to exit.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(h.cancel)
	<-h.done
}

// Start launches a background loop that invokes fn immediately and then on
// every tick of the given interval. A failing fn is logged and the loop keeps
// going; a single failure never stops future polling. The loop ends when the
// parent context is cancelled or the returned handle is stopped.
func Start(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) *Handle {
	if interval <= 0 {
		interval = defaultInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if ctx.Err() != nil {
				return
			}
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				log.Printf("%s poll failed: %v", name, err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return h
}
