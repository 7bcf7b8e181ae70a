package bus

import (
	"context"
	"time"
)

// MetricsRecorder receives publish telemetry. Declared here rather than
// importing the metrics package to keep the dependency one-way.
type MetricsRecorder interface {
	RecordBusPublish(topic string, latencyMs int64, err error)
}

// InstrumentedBus decorates a Bus with publish latency and error
// recording. Subscribe and Close pass through untouched.
type InstrumentedBus struct {
	next     Bus
	recorder MetricsRecorder
}

// NewInstrumentedBus wraps the given bus.
func NewInstrumentedBus(next Bus, recorder MetricsRecorder) *InstrumentedBus {
	return &InstrumentedBus{next: next, recorder: recorder}
}

func (b *InstrumentedBus) Publish(ctx context.Context, topic string, event Event) error {
	start := time.Now()
	err := b.next.Publish(ctx, topic, event)
	if b.recorder != nil {
		b.recorder.RecordBusPublish(topic, time.Since(start).Milliseconds(), err)
	}
	return err
}

func (b *InstrumentedBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	return b.next.Subscribe(ctx, topic, handler)
}

func (b *InstrumentedBus) Close() error {
	return b.next.Close()
}
