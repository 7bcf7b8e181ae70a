// Package store owns the canonical evaluation collection: validation at
// the write boundary, merge and dedup orchestration, local snapshots,
// and best-effort persistence to the shared remote store.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/trueframework/true-board/internal/bus"
	"github.com/trueframework/true-board/internal/evaluation"
	"github.com/trueframework/true-board/internal/metrics"
	apperrors "github.com/trueframework/true-board/internal/pkg/errors"
	"github.com/trueframework/true-board/internal/pkg/logger"
	"github.com/trueframework/true-board/internal/scoring"
)

// RemoteStore is the slice of the remote client the service needs.
type RemoteStore interface {
	Load(ctx context.Context) ([]*evaluation.Evaluation, error)
	Save(ctx context.Context, evals []*evaluation.Evaluation) error
	CheckConnection(ctx context.Context) bool
}

// SyncStatus describes the remote synchronisation state.
type SyncStatus struct {
	RemoteEnabled   bool   `json:"remoteEnabled"`
	Connected       bool   `json:"connected"`
	LastSyncTime    int64  `json:"lastSyncTime"`
	LastSyncError   string `json:"lastSyncError,omitempty"`
	EvaluationCount int    `json:"evaluationCount"`
}

// Service provides evaluation collection operations.
type Service struct {
	storage Storage
	remote  RemoteStore
	bus     bus.Bus
	metrics *metrics.Metrics
	log     *logger.Logger

	sessionID string

	mu            sync.RWMutex
	evals         []*evaluation.Evaluation
	lastSyncTime  int64
	lastSyncError string
}

// NewService creates the service and loads the local snapshot. Duplicate
// entries found at load time are healed by a dedup pass and the repaired
// snapshot is written back.
func NewService(storage Storage, remote RemoteStore, b bus.Bus, m *metrics.Metrics, log *logger.Logger) (*Service, error) {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if m == nil {
		m = metrics.New()
	}
	if log == nil {
		log = logger.Default()
	}

	svc := &Service{
		storage:   storage,
		remote:    remote,
		bus:       b,
		metrics:   m,
		log:       log,
		sessionID: evaluation.NewSessionID(),
	}

	snap, err := storage.Load()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to load local snapshot", err)
	}
	if snap != nil {
		deduped, result := evaluation.Deduplicate(snap.Evaluations)
		svc.evals = deduped
		if result.Removed > 0 {
			log.Warn("healed duplicate evaluations in local snapshot", "removed", result.Removed)
			m.RecordDedup(result.Removed)
			svc.persistLocal()
		}
	}
	m.SetEvaluationCount(len(svc.evals))

	return svc, nil
}

// SessionID returns the per-process session identifier stamped on
// records this instance creates.
func (s *Service) SessionID() string {
	return s.sessionID
}

// Count returns the current collection size.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.evals)
}

// List returns a deep copy of the collection, newest first.
func (s *Service) List() []*evaluation.Evaluation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return evaluation.CloneAll(s.evals)
}

// Get retrieves one evaluation by id.
func (s *Service) Get(id string) (*evaluation.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.evals {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return nil, apperrors.NotFoundError("evaluation").WithDetail("id", id)
}

// UpsertManual applies a human-submitted evaluation. Lookup is by id
// first, then by normalized model name; a name match adopts the existing
// record's id and counts as a new evaluation pass. Score and tier are
// recomputed before storing.
func (s *Service) UpsertManual(ctx context.Context, input *evaluation.Evaluation) (*evaluation.Evaluation, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()

	s.mu.Lock()
	var target *evaluation.Evaluation

	if input.ID != "" {
		for _, e := range s.evals {
			if e.ID == input.ID {
				target = e
				break
			}
		}
	}
	if target == nil {
		name := evaluation.NormalizeName(input.ModelName)
		for _, e := range s.evals {
			if evaluation.NormalizeName(e.ModelName) == name {
				target = e
				target.EvalCount = target.CountOrOne() + 1
				break
			}
		}
	}

	if target != nil {
		previousScore := scoring.ComputeTotalScore(target.Scores)
		target.ModelName = input.ModelName
		target.ModelURL = input.ModelURL
		target.Scores = input.Scores
		target.Evidence = input.Evidence
		target.Notes = input.Notes
		target.SessionID = s.sessionID
		target.AutoGenerated = false
		target.Recompute()
		target.RecordManualEdit(now, previousScore)
	} else {
		target = input.Clone()
		target.ID = evaluation.NewID()
		target.SessionID = s.sessionID
		target.Timestamp = now
		target.LastModified = now
		target.EvalCount = 1
		target.AutoGenerated = false
		target.Recompute()
		s.evals = append(s.evals, target)
	}

	s.sortLocked()
	result := target.Clone()
	s.persistLocal()
	s.mu.Unlock()

	s.metrics.RecordManualEdit()
	s.metrics.SetEvaluationCount(s.Count())
	s.persistRemote(ctx)
	s.publish(ctx, bus.TopicEvaluationUpdated, map[string]any{
		"id":        result.ID,
		"modelName": result.ModelName,
		"action":    "manual",
	})

	return result, nil
}

// UpsertSeedBatch applies seed candidates, dedups the whole collection
// and persists once.
func (s *Service) UpsertSeedBatch(ctx context.Context, seeds []evaluation.Seed) (created, updated int, err error) {
	now := time.Now().UnixMilli()

	s.mu.Lock()
	byName := make(map[string]*evaluation.Evaluation, len(s.evals))
	for _, e := range s.evals {
		byName[evaluation.NormalizeName(e.ModelName)] = e
	}

	for _, seed := range seeds {
		name := evaluation.NormalizeName(seed.Name)
		if name == "" {
			continue
		}
		_, exists := byName[name]

		var wasCreated bool
		s.evals, wasCreated = evaluation.UpsertSeed(s.evals, seed, s.sessionID, now)
		if wasCreated {
			created++
			byName[name] = s.evals[len(s.evals)-1]
		} else if exists && seed.HasScores() {
			updated++
		}
	}

	deduped, result := evaluation.Deduplicate(s.evals)
	s.evals = deduped
	s.sortLocked()
	s.persistLocal()
	s.mu.Unlock()

	if result.Removed > 0 {
		s.metrics.RecordDedup(result.Removed)
	}
	s.metrics.SetEvaluationCount(s.Count())
	s.persistRemote(ctx)
	s.publish(ctx, bus.TopicSeedCompleted, map[string]any{
		"created": created,
		"updated": updated,
	})
	s.publish(ctx, bus.TopicEvaluationUpdated, map[string]any{"action": "seed"})

	return created, updated, nil
}

// ReconcileWithRemote merges the remote snapshot with the local
// collection, replaces the collection with the result and persists it
// to both sides. The remote write-back heals remote records that were
// stale relative to local.
func (s *Service) ReconcileWithRemote(ctx context.Context) (evaluation.MergeStats, error) {
	if s.remote == nil {
		return evaluation.MergeStats{}, apperrors.New(apperrors.CodeUnavailable, "remote store not configured")
	}

	remoteEvals, err := s.remote.Load(ctx)
	if err != nil {
		s.metrics.RecordRemoteLoadError()
		s.setSyncOutcome(0, err)
		return evaluation.MergeStats{}, apperrors.RemoteError("failed to load remote snapshot", err)
	}

	s.mu.Lock()
	merged, stats := evaluation.MergeByIDAndRecency(remoteEvals, s.evals)
	s.evals = merged
	s.persistLocal()
	s.mu.Unlock()

	s.metrics.RecordMerge(stats.NewFromLocal+stats.UpdatedFromLocal, stats.Dedup.Removed)
	s.metrics.SetEvaluationCount(s.Count())
	s.persistRemote(ctx)
	s.setSyncOutcome(time.Now().UnixMilli(), nil)

	s.publish(ctx, bus.TopicSyncCompleted, stats)
	s.publish(ctx, bus.TopicEvaluationUpdated, map[string]any{"action": "sync"})

	return stats, nil
}

// ReplaceFromRemote swaps in a collection pushed by a remote change
// notification, merging it against local state the same way a scheduled
// reconciliation would.
func (s *Service) ReplaceFromRemote(ctx context.Context, remoteEvals []*evaluation.Evaluation) {
	s.mu.Lock()
	merged, stats := evaluation.MergeByIDAndRecency(remoteEvals, s.evals)
	s.evals = merged
	s.persistLocal()
	s.mu.Unlock()

	s.metrics.RecordMerge(stats.NewFromLocal+stats.UpdatedFromLocal, stats.Dedup.Removed)
	s.metrics.SetEvaluationCount(s.Count())
	s.publish(ctx, bus.TopicEvaluationUpdated, map[string]any{"action": "remote-change"})
}

// Status reports the remote synchronisation state.
func (s *Service) Status(ctx context.Context) SyncStatus {
	s.mu.RLock()
	status := SyncStatus{
		RemoteEnabled:   s.remote != nil,
		LastSyncTime:    s.lastSyncTime,
		LastSyncError:   s.lastSyncError,
		EvaluationCount: len(s.evals),
	}
	s.mu.RUnlock()

	if s.remote != nil {
		status.Connected = s.remote.CheckConnection(ctx)
	}
	return status
}

// sortLocked orders the collection newest first. Callers hold the lock.
func (s *Service) sortLocked() {
	sort.SliceStable(s.evals, func(i, j int) bool {
		return s.evals[i].Timestamp > s.evals[j].Timestamp
	})
}

// persistLocal writes the snapshot, logging failures without blocking
// the caller: the in-memory collection stays authoritative.
// Callers hold the lock.
func (s *Service) persistLocal() {
	snap := &Snapshot{
		Evaluations: s.evals,
		SavedAt:     time.Now().UnixMilli(),
	}
	if err := s.storage.Save(snap); err != nil {
		s.log.WithError(err).Warn("failed to persist local snapshot")
	}
}

// persistRemote writes the collection to the remote store, best-effort.
// Failures are logged and swallowed; the next reconciliation retries.
func (s *Service) persistRemote(ctx context.Context) {
	if s.remote == nil {
		return
	}

	err := s.remote.Save(ctx, s.List())
	s.metrics.RecordRemoteSave(err)
	if err != nil {
		s.log.WithError(err).Warn("failed to persist to remote store")
	}
}

func (s *Service) setSyncOutcome(syncTime int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastSyncError = err.Error()
		return
	}
	s.lastSyncTime = syncTime
	s.lastSyncError = ""
}

func (s *Service) publish(ctx context.Context, topic string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, topic, bus.NewEvent(topic, "store", payload)); err != nil {
		s.log.WithError(err).Warn("failed to publish event", "topic", topic)
	}
}
