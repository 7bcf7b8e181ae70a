package bus

import (
	"context"
	"sync"
	"time"

	"github.com/trueframework/true-board/internal/pkg/errors"
	"github.com/trueframework/true-board/internal/pkg/logger"
)

// drainWindow bounds how long Close waits for handlers still running.
const drainWindow = 10 * time.Second

// MemoryBus fans events out to subscribers inside one process. It is the
// default backend for single-instance deployments.
type MemoryBus struct {
	mu       sync.RWMutex
	subs     map[string][]Handler
	closed   bool
	log      *logger.Logger
	inflight sync.WaitGroup
}

// NewMemoryBus creates an in-memory event bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		subs: make(map[string][]Handler),
		log:  logger.Default(),
	}
}

// Publish delivers the event to every subscriber of the topic. Each
// handler runs on its own goroutine; handler errors are logged, never
// returned to the publisher.
func (b *MemoryBus) Publish(ctx context.Context, topic string, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return errors.New(errors.CodeUnavailable, "bus is closed")
	}

	for _, h := range b.subs[topic] {
		b.inflight.Add(1)
		go b.deliver(ctx, topic, event, h)
	}

	return nil
}

func (b *MemoryBus) deliver(ctx context.Context, topic string, event Event, h Handler) {
	defer b.inflight.Done()
	if err := h(ctx, event); err != nil {
		b.log.WithError(err).Warn("event handler failed",
			"topic", topic, "event_id", event.ID)
	}
}

// Subscribe registers a handler for events on a topic.
func (b *MemoryBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errors.New(errors.CodeUnavailable, "bus is closed")
	}

	b.subs[topic] = append(b.subs[topic], handler)
	return nil
}

// Close stops accepting events and waits up to drainWindow for handlers
// already running to finish.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	if !b.DrainTimeout(drainWindow) {
		b.log.Warn("event drain window elapsed with handlers still running")
	}

	b.mu.Lock()
	b.subs = nil
	b.mu.Unlock()

	return nil
}

// DrainTimeout reports whether all in-flight handlers finished before
// the timeout elapsed.
func (b *MemoryBus) DrainTimeout(timeout time.Duration) bool {
	idle := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		return true
	case <-time.After(timeout):
		return false
	}
}
