package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/trueframework/true-board/internal/pkg/errors"
	"github.com/trueframework/true-board/internal/pkg/logger"
)

// KafkaConfig holds connection settings for the Kafka backend.
type KafkaConfig struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string
	// Version is the broker protocol version, defaults to 2.8.0.
	Version string
	Timeout time.Duration
}

// KafkaBus carries leaderboard events across instances through Kafka.
// One consumer-group session runs per subscribed topic, so every
// instance in the group sees each event once.
type KafkaBus struct {
	cfg      KafkaConfig
	client   sarama.Client
	producer sarama.SyncProducer
	group    sarama.ConsumerGroup
	log      *logger.Logger

	mu     sync.RWMutex
	subs   map[string][]Handler
	closed bool

	stopping chan struct{}
	wg       sync.WaitGroup
}

func saramaConfig(cfg KafkaConfig) (*sarama.Config, error) {
	version, err := sarama.ParseKafkaVersion(cfg.Version)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, "invalid kafka version", err)
	}

	sc := sarama.NewConfig()
	sc.Version = version
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.Retry.Max = 3
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	sc.Consumer.Return.Errors = true
	sc.Net.DialTimeout = 10 * time.Second
	sc.Net.ReadTimeout = 10 * time.Second
	sc.Net.WriteTimeout = 10 * time.Second
	return sc, nil
}

// NewKafkaBus connects to the brokers and prepares producer and
// consumer-group clients.
func NewKafkaBus(cfg KafkaConfig) (*KafkaBus, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.CodeValidation, "kafka brokers cannot be empty")
	}
	if cfg.ConsumerGroup == "" {
		return nil, errors.New(errors.CodeValidation, "kafka consumer group cannot be empty")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "true-board-bus"
	}
	if cfg.Version == "" {
		cfg.Version = "2.8.0"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	sc, err := saramaConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := sarama.NewClient(cfg.Brokers, sc)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnavailable, "failed to create kafka client", err)
	}

	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		client.Close()
		return nil, errors.Wrap(errors.CodeUnavailable, "failed to create kafka producer", err)
	}

	group, err := sarama.NewConsumerGroupFromClient(cfg.ConsumerGroup, client)
	if err != nil {
		producer.Close()
		client.Close()
		return nil, errors.Wrap(errors.CodeUnavailable, "failed to create kafka consumer group", err)
	}

	return &KafkaBus{
		cfg:      cfg,
		client:   client,
		producer: producer,
		group:    group,
		log:      logger.Default(),
		subs:     make(map[string][]Handler),
		stopping: make(chan struct{}),
	}, nil
}

// Publish sends the event to a Kafka topic, keyed by event id so
// retries of the same event land on the same partition.
func (b *KafkaBus) Publish(ctx context.Context, topic string, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return errors.New(errors.CodeUnavailable, "bus is closed")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "failed to marshal event", err)
	}

	_, _, err = b.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.ID),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return errors.Wrap(errors.CodeUnavailable, "failed to publish to kafka", err)
	}

	return nil
}

// Subscribe registers a handler. The first handler on a topic starts
// that topic's consumer session.
func (b *KafkaBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errors.New(errors.CodeUnavailable, "bus is closed")
	}

	first := len(b.subs[topic]) == 0
	b.subs[topic] = append(b.subs[topic], handler)

	if first {
		b.wg.Add(1)
		go b.runConsumer(topic)
	}

	return nil
}

// runConsumer keeps a consumer-group session alive for one topic.
// Consume returns on rebalance; the loop re-enters it until Close.
func (b *KafkaBus) runConsumer(topic string) {
	defer b.wg.Done()

	gh := &groupHandler{bus: b, topic: topic}

	for {
		select {
		case <-b.stopping:
			return
		default:
		}

		if err := b.group.Consume(context.Background(), []string{topic}, gh); err != nil {
			b.log.WithError(err).Warn("kafka consumer error", "topic", topic)
		}

		select {
		case <-b.stopping:
			return
		default:
			time.Sleep(time.Second)
		}
	}
}

// Close stops the consumer loops and releases the Kafka clients.
func (b *KafkaBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	close(b.stopping)
	b.wg.Wait()

	var errs []error
	if err := b.group.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close consumer group: %w", err))
	}
	if err := b.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close producer: %w", err))
	}
	if err := b.client.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close client: %w", err))
	}

	b.mu.Lock()
	b.subs = nil
	b.mu.Unlock()

	if len(errs) > 0 {
		return errors.New(errors.CodeInternal, fmt.Sprintf("errors during close: %v", errs))
	}
	return nil
}

type groupHandler struct {
	bus   *KafkaBus
	topic string
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-session.Context().Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok || msg == nil {
				return nil
			}
			h.handle(session, msg)
		}
	}
}

func (h *groupHandler) handle(session sarama.ConsumerGroupSession, msg *sarama.ConsumerMessage) {
	defer session.MarkMessage(msg, "")

	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.bus.log.WithError(err).Warn("failed to unmarshal kafka event", "topic", h.topic)
		return
	}

	h.bus.mu.RLock()
	handlers := h.bus.subs[h.topic]
	h.bus.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(session.Context(), event); err != nil {
			h.bus.log.WithError(err).Warn("event handler failed",
				"topic", h.topic, "event_id", event.ID)
		}
	}
}

// ParseKafkaBrokers splits a comma-separated broker list, trimming
// whitespace around each entry.
func ParseKafkaBrokers(s string) []string {
	if s == "" {
		return nil
	}
	brokers := strings.Split(s, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	return brokers
}
