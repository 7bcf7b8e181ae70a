// Package sync keeps the local evaluation collection converged with the
// shared remote snapshot. A Scheduler runs periodic merge passes and can
// additionally apply change notifications pushed by the remote store.
package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/trueframework/true-board/internal/evaluation"
	"github.com/trueframework/true-board/internal/metrics"
	"github.com/trueframework/true-board/internal/pkg/logger"
)

// DefaultInterval is how often a merge pass runs when no interval is
// configured.
const DefaultInterval = 5 * time.Minute

// Config configures the scheduler.
type Config struct {
	// Interval between periodic merge passes.
	Interval time.Duration

	// SaveDebounce coalesces bursts of remote change notifications
	// before they are applied. Zero applies pushes immediately.
	SaveDebounce time.Duration
}

// Reconciler is the slice of the evaluation service the scheduler drives.
type Reconciler interface {
	ReconcileWithRemote(ctx context.Context) (evaluation.MergeStats, error)
	ReplaceFromRemote(ctx context.Context, evals []*evaluation.Evaluation)
}

// Subscriber delivers change notifications from the remote store. Optional;
// without one the scheduler relies on the periodic pass alone.
type Subscriber interface {
	Subscribe(ctx context.Context, onChange func([]*evaluation.Evaluation)) error
	Unsubscribe()
}

// Scheduler runs merge passes against the remote store on a fixed interval.
// A failed pass is logged and counted; the loop keeps running so a transient
// outage heals on the next tick.
type Scheduler struct {
	reconciler Reconciler
	subscriber Subscriber
	cfg        Config
	metrics    *metrics.Metrics
	log        *logger.Logger

	pendingMu stdsync.Mutex
	pending   []*evaluation.Evaluation

	done chan struct{}
}

// NewScheduler creates a scheduler. subscriber may be nil.
func NewScheduler(reconciler Reconciler, subscriber Subscriber, cfg Config, m *metrics.Metrics, log *logger.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if m == nil {
		m = metrics.New()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Scheduler{
		reconciler: reconciler,
		subscriber: subscriber,
		cfg:        cfg,
		metrics:    m,
		log:        log,
		done:       make(chan struct{}),
	}
}

// Start blocks running merge passes until the context is cancelled or Stop is
// called. The first pass runs immediately so a fresh instance converges
// without waiting a full interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.log.Info("starting sync scheduler",
		"interval", s.cfg.Interval.String(),
		"saveDebounce", s.cfg.SaveDebounce.String())

	if s.subscriber != nil {
		onChange := s.applyPending(ctx)
		if err := s.subscriber.Subscribe(ctx, onChange); err != nil {
			s.log.Warn("remote subscription unavailable, relying on periodic sync", "error", err)
		} else {
			defer s.subscriber.Unsubscribe()
		}
	}

	s.runOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Stop ends the Start loop. Safe to call once.
func (s *Scheduler) Stop() {
	close(s.done)
}

// applyPending returns the change handler for remote pushes. A seeding pass
// on another instance fires one notification per save, so pushes are
// debounced and only the latest snapshot is applied.
func (s *Scheduler) applyPending(ctx context.Context) func([]*evaluation.Evaluation) {
	if s.cfg.SaveDebounce <= 0 {
		return func(evals []*evaluation.Evaluation) {
			s.reconciler.ReplaceFromRemote(ctx, evals)
		}
	}

	debouncer := NewDebouncer(s.cfg.SaveDebounce, func() {
		s.pendingMu.Lock()
		evals := s.pending
		s.pending = nil
		s.pendingMu.Unlock()

		if evals != nil {
			s.reconciler.ReplaceFromRemote(ctx, evals)
		}
	})

	return func(evals []*evaluation.Evaluation) {
		s.pendingMu.Lock()
		s.pending = evals
		s.pendingMu.Unlock()
		debouncer.Trigger()
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	stats, err := s.reconciler.ReconcileWithRemote(ctx)
	s.metrics.RecordSyncRun(err)
	if err != nil {
		s.log.Error("sync pass failed", "error", err)
		return
	}
	s.log.Info("sync pass complete",
		"fromRemote", stats.FromRemote,
		"newFromLocal", stats.NewFromLocal,
		"updatedFromLocal", stats.UpdatedFromLocal,
		"duplicatesRemoved", stats.Dedup.Removed)
}
