package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/trueframework/true-board/internal/config"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	var received atomic.Int32
	var wg sync.WaitGroup

	err := bus.Subscribe(context.Background(), TopicEvaluationUpdated, func(ctx context.Context, event Event) error {
		received.Add(1)
		wg.Done()
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	wg.Add(3)
	for i := 0; i < 3; i++ {
		err := bus.Publish(context.Background(), TopicEvaluationUpdated, Event{
			ID:   "test-" + string(rune('0'+i)),
			Type: TopicEvaluationUpdated,
		})
		if err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for events")
	}

	if got := received.Load(); got != 3 {
		t.Errorf("Received %d events, want 3", got)
	}
}

func TestMemoryBus_MultipleSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	var count1, count2 atomic.Int32
	var wg sync.WaitGroup

	bus.Subscribe(context.Background(), TopicSeedCompleted, func(ctx context.Context, event Event) error {
		count1.Add(1)
		wg.Done()
		return nil
	})
	bus.Subscribe(context.Background(), TopicSeedCompleted, func(ctx context.Context, event Event) error {
		count2.Add(1)
		wg.Done()
		return nil
	})

	// One event, both subscribers should receive
	wg.Add(2)
	bus.Publish(context.Background(), TopicSeedCompleted, Event{ID: "test", Type: TopicSeedCompleted})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timeout")
	}

	if count1.Load() != 1 || count2.Load() != 1 {
		t.Errorf("Expected both subscribers to receive 1 event, got %d and %d", count1.Load(), count2.Load())
	}
}

func TestMemoryBus_NoSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	err := bus.Publish(context.Background(), "empty.topic", Event{ID: "test", Type: "test"})
	if err != nil {
		t.Errorf("Publish() to empty topic error = %v", err)
	}
}

func TestMemoryBus_ClosedBus(t *testing.T) {
	bus := NewMemoryBus()
	bus.Close()

	if err := bus.Publish(context.Background(), "t", Event{}); err == nil {
		t.Error("Publish() on closed bus should error")
	}
	if err := bus.Subscribe(context.Background(), "t", func(ctx context.Context, event Event) error { return nil }); err == nil {
		t.Error("Subscribe() on closed bus should error")
	}
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(TopicSyncCompleted, "store", map[string]int{"merged": 3})

	if e.ID == "" {
		t.Error("event should get an id")
	}
	if e.Type != TopicSyncCompleted {
		t.Errorf("Type = %s", e.Type)
	}
	if e.Source != "store" {
		t.Errorf("Source = %s", e.Source)
	}
	if e.Timestamp == 0 {
		t.Error("event should get a timestamp")
	}
}

func TestNewBus_Factory(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.BusConfig
		wantErr bool
	}{
		{"default is memory", config.BusConfig{}, false},
		{"explicit memory", config.BusConfig{Type: "memory"}, false},
		{"kafka without brokers", config.BusConfig{Type: "kafka"}, true},
		{"unknown type", config.BusConfig{Type: "carrier-pigeon"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBus(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewBus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if b != nil {
				b.Close()
			}
		})
	}
}

func TestParseKafkaBrokers(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"localhost:9092", 1},
		{"a:9092, b:9092 ,c:9092", 3},
	}

	for _, tt := range tests {
		got := ParseKafkaBrokers(tt.input)
		if len(got) != tt.want {
			t.Errorf("ParseKafkaBrokers(%q) = %d brokers, want %d", tt.input, len(got), tt.want)
		}
		for _, b := range got {
			if b != "" && (b[0] == ' ' || b[len(b)-1] == ' ') {
				t.Errorf("broker %q not trimmed", b)
			}
		}
	}
}

type recordingMetrics struct {
	mu     sync.Mutex
	topics []string
}

func (r *recordingMetrics) RecordBusPublish(topic string, latencyMs int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
}

func TestInstrumentedBus_RecordsPublishes(t *testing.T) {
	rec := &recordingMetrics{}
	bus := NewInstrumentedBus(NewMemoryBus(), rec)
	defer bus.Close()

	bus.Publish(context.Background(), TopicEvaluationUpdated, NewEvent(TopicEvaluationUpdated, "test", nil))
	bus.Publish(context.Background(), TopicSyncCompleted, NewEvent(TopicSyncCompleted, "test", nil))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.topics) != 2 {
		t.Errorf("recorded %d publishes, want 2", len(rec.topics))
	}
}
