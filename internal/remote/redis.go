package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trueframework/true-board/internal/evaluation"
	"github.com/trueframework/true-board/internal/pkg/logger"
)

const (
	documentKey   = "trueboard:evaluations"
	notifyChannel = "trueboard:evaluations:updates"
)

// Store is the Redis-backed realtime store.
type Store struct {
	cfg    Config
	client *redis.Client
	log    *logger.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

// New connects to the realtime store. The connection is probed with the
// configured connect timeout; a failure here is an error rather than a soft
// fallback because the caller decides whether to run without a remote.
func New(cfg Config, log *logger.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid remote config: %w", err)
	}

	opts, err := redis.ParseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	if opts.Password == "" {
		opts.Password = cfg.APIKey
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.connectTimeout())
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to remote store: %w", err)
	}

	return &Store{
		cfg:    cfg,
		client: client,
		log:    log,
	}, nil
}

// Load fetches the shared document and returns its evaluation array.
// A missing document returns nil without error; the load is bounded by the
// configured load timeout.
func (s *Store) Load(ctx context.Context) ([]*evaluation.Evaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.loadTimeout())
	defer cancel()

	raw, err := s.client.Get(ctx, documentKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading remote document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding remote document: %w", err)
	}

	return doc.Evaluations, nil
}

// LoadDocument fetches the full document including metadata.
func (s *Store) LoadDocument(ctx context.Context) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.loadTimeout())
	defer cancel()

	raw, err := s.client.Get(ctx, documentKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading remote document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding remote document: %w", err)
	}

	return &doc, nil
}

// Save writes the whole evaluation array as one document, last writer wins,
// and notifies subscribers. Entries beyond the cap are dropped oldest-first
// and the drop count is recorded in the document.
func (s *Store) Save(ctx context.Context, evals []*evaluation.Evaluation) error {
	now := time.Now().UnixMilli()
	doc := NewDocument(evals, s.cfg.maxEvaluations(), now)

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding remote document: %w", err)
	}

	if err := s.client.Set(ctx, documentKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("saving remote document: %w", err)
	}

	if doc.RemovedCount > 0 {
		s.log.Info("Dropped oldest evaluations to honor remote cap",
			"removed", doc.RemovedCount,
			"kept", doc.TotalCount,
		)
	}

	note, err := json.Marshal(notification{Origin: s.cfg.Origin, Timestamp: now})
	if err != nil {
		return fmt.Errorf("encoding change notification: %w", err)
	}
	if err := s.client.Publish(ctx, notifyChannel, note).Err(); err != nil {
		// The document is saved; a lost notification only delays peers
		// until their next periodic reconciliation.
		s.log.Warn("Failed to publish change notification", "error", err)
	}

	return nil
}

// Subscribe starts a background listener that invokes onChange with a fresh
// snapshot whenever another writer saves the document. Notifications carrying
// this store's own origin are skipped. The listener stops when ctx is
// cancelled or Unsubscribe is called.
func (s *Store) Subscribe(ctx context.Context, onChange func([]*evaluation.Evaluation)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pubsub != nil {
		return fmt.Errorf("already subscribed")
	}

	subCtx, cancel := context.WithCancel(ctx)
	pubsub := s.client.Subscribe(subCtx, notifyChannel)

	// Confirm the subscription before returning.
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return fmt.Errorf("subscribing to remote updates: %w", err)
	}

	s.pubsub = pubsub
	s.cancel = cancel

	go s.listen(subCtx, pubsub, onChange)
	return nil
}

func (s *Store) listen(ctx context.Context, pubsub *redis.PubSub, onChange func([]*evaluation.Evaluation)) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var note notification
			if err := json.Unmarshal([]byte(msg.Payload), &note); err != nil {
				s.log.Warn("Ignoring malformed change notification", "error", err)
				continue
			}
			if note.Origin != "" && note.Origin == s.cfg.Origin {
				continue
			}

			evals, err := s.Load(ctx)
			if err != nil {
				s.log.Warn("Failed to load snapshot after change notification", "error", err)
				continue
			}
			onChange(evals)
		}
	}
}

// Unsubscribe stops the change listener. Safe to call when not subscribed.
func (s *Store) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pubsub == nil {
		return
	}
	s.cancel()
	_ = s.pubsub.Close()
	s.pubsub = nil
	s.cancel = nil
}

// CheckConnection probes connectivity, racing the ping against the caller's
// context and the configured connect timeout. It never returns an error;
// an unreachable store is simply not connected.
func (s *Store) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.connectTimeout())
	defer cancel()

	return s.client.Ping(ctx).Err() == nil
}

// Close unsubscribes and releases the connection.
func (s *Store) Close() error {
	s.Unsubscribe()
	return s.client.Close()
}
