package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/trueframework/true-board/internal/pkg/logger"
)

// Metrics holds all application metrics.
type Metrics struct {
	// Merge and dedup metrics
	MergeRuns         *Counter
	EvaluationsMerged *Counter
	DuplicatesRemoved *Counter

	// Seed metrics
	SeedPasses       *Counter
	SeedCreated      *Counter
	SeedUpdated      *Counter
	SeedFetchErrors  *Counter

	// Sync metrics
	SyncRuns     *Counter
	SyncFailures *Counter

	// Edit metrics
	ManualEdits *Counter

	// Remote store metrics
	RemoteSaves      *Counter
	RemoteSaveErrors *Counter
	RemoteLoadErrors *Counter

	// Collection state
	EvaluationCount *Gauge

	// Bus metrics
	BusEventsPublished *CounterVec // labels: topic
	BusEventLatency    *Histogram
	BusErrors          *CounterVec // labels: topic

	// HTTP metrics
	HTTPRequests *CounterVec // labels: method, path, status
	HTTPDuration *Histogram

	// Redis history (optional)
	history *RedisStorage
	log     *logger.Logger

	startTime time.Time
	mu        sync.RWMutex
}

// New creates a metrics instance with in-memory storage only.
func New() *Metrics {
	return NewWithConfig("memory", "")
}

// NewWithRedis creates a metrics instance with Redis-backed history.
// Falls back to in-memory if the Redis connection fails.
func NewWithRedis(redisURL string) *Metrics {
	return NewWithConfig("redis", redisURL)
}

// NewWithConfig creates a metrics instance with the given persistence
// backend ("memory" or "redis").
func NewWithConfig(persistence, redisURL string) *Metrics {
	log := logger.Default()

	var history *RedisStorage
	if persistence == "redis" && redisURL != "" {
		storage, err := NewRedisStorage(redisURL)
		if err != nil {
			log.WithError(err).Warn("redis metrics history unavailable, using in-memory metrics only")
		} else {
			history = storage
		}
	}

	return &Metrics{
		MergeRuns:         NewCounter("trueboard_merge_runs_total", "Total number of merge runs"),
		EvaluationsMerged: NewCounter("trueboard_evaluations_merged_total", "Total evaluations taken from local during merges"),
		DuplicatesRemoved: NewCounter("trueboard_duplicates_removed_total", "Total duplicate evaluations removed"),

		SeedPasses:      NewCounter("trueboard_seed_passes_total", "Total number of seeding passes"),
		SeedCreated:     NewCounter("trueboard_seed_created_total", "Total evaluations created by seeding"),
		SeedUpdated:     NewCounter("trueboard_seed_updated_total", "Total evaluations updated by seeding"),
		SeedFetchErrors: NewCounter("trueboard_seed_fetch_errors_total", "Total trending fetch failures"),

		SyncRuns:     NewCounter("trueboard_sync_runs_total", "Total number of remote reconciliations"),
		SyncFailures: NewCounter("trueboard_sync_failures_total", "Total failed remote reconciliations"),

		ManualEdits: NewCounter("trueboard_manual_edits_total", "Total manual evaluation upserts"),

		RemoteSaves:      NewCounter("trueboard_remote_saves_total", "Total remote store writes"),
		RemoteSaveErrors: NewCounter("trueboard_remote_save_errors_total", "Total failed remote store writes"),
		RemoteLoadErrors: NewCounter("trueboard_remote_load_errors_total", "Total failed remote store reads"),

		EvaluationCount: NewGauge("trueboard_evaluations", "Current number of evaluations"),

		BusEventsPublished: NewCounterVec("trueboard_bus_events_published_total", "Total bus events published", []string{"topic"}),
		BusEventLatency: NewHistogram("trueboard_bus_event_latency_ms", "Bus publish latency in milliseconds",
			[]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}),
		BusErrors: NewCounterVec("trueboard_bus_errors_total", "Total bus publish errors", []string{"topic"}),

		HTTPRequests: NewCounterVec("trueboard_http_requests_total", "Total HTTP requests", []string{"method", "path", "status"}),
		HTTPDuration: NewHistogram("trueboard_http_duration_ms", "HTTP request duration in milliseconds",
			[]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}),

		history:   history,
		log:       log,
		startTime: time.Now(),
	}
}

// RecordMerge records the outcome of a merge run.
func (m *Metrics) RecordMerge(fromLocal, duplicatesRemoved int) {
	m.MergeRuns.Inc()
	m.EvaluationsMerged.Add(int64(fromLocal))
	m.DuplicatesRemoved.Add(int64(duplicatesRemoved))
	m.pushHistory("merge_runs", float64(m.MergeRuns.Value()))
}

// RecordDedup records duplicates removed outside a merge run.
func (m *Metrics) RecordDedup(removed int) {
	m.DuplicatesRemoved.Add(int64(removed))
}

// RecordSeedPass records the outcome of a seeding pass.
func (m *Metrics) RecordSeedPass(created, updated int, fetchFailed bool) {
	m.SeedPasses.Inc()
	m.SeedCreated.Add(int64(created))
	m.SeedUpdated.Add(int64(updated))
	if fetchFailed {
		m.SeedFetchErrors.Inc()
	}
	m.pushHistory("seed_passes", float64(m.SeedPasses.Value()))
}

// RecordSyncRun records one remote reconciliation attempt.
func (m *Metrics) RecordSyncRun(err error) {
	m.SyncRuns.Inc()
	if err != nil {
		m.SyncFailures.Inc()
	}
	m.pushHistory("sync_runs", float64(m.SyncRuns.Value()))
}

// RecordManualEdit records a manual evaluation upsert.
func (m *Metrics) RecordManualEdit() {
	m.ManualEdits.Inc()
}

// RecordRemoteSave records a remote store write attempt.
func (m *Metrics) RecordRemoteSave(err error) {
	m.RemoteSaves.Inc()
	if err != nil {
		m.RemoteSaveErrors.Inc()
	}
}

// RecordRemoteLoadError records a failed remote store read.
func (m *Metrics) RecordRemoteLoadError() {
	m.RemoteLoadErrors.Inc()
}

// SetEvaluationCount records the current collection size.
func (m *Metrics) SetEvaluationCount(n int) {
	m.EvaluationCount.Set(int64(n))
	m.pushHistory("evaluations", float64(n))
}

// RecordBusPublish implements the bus.MetricsRecorder interface.
func (m *Metrics) RecordBusPublish(topic string, latencyMs int64, err error) {
	m.BusEventsPublished.WithLabels(topic).Inc()
	m.BusEventLatency.Observe(float64(latencyMs))
	if err != nil {
		m.BusErrors.WithLabels(topic).Inc()
	}
}

// RecordHTTPRequest records one handled HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, durationMs int64) {
	m.HTTPRequests.WithLabels(method, path, status).Inc()
	m.HTTPDuration.Observe(float64(durationMs))
}

// Uptime returns how long this instance has been running.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Snapshot returns the current metric values for the stats endpoint.
func (m *Metrics) Snapshot() map[string]any {
	stats := map[string]any{
		"uptime_seconds":           int64(m.Uptime().Seconds()),
		"evaluations":              m.EvaluationCount.Value(),
		"merge_runs_total":         m.MergeRuns.Value(),
		"evaluations_merged_total": m.EvaluationsMerged.Value(),
		"duplicates_removed_total": m.DuplicatesRemoved.Value(),
		"seed_passes_total":        m.SeedPasses.Value(),
		"seed_created_total":       m.SeedCreated.Value(),
		"seed_updated_total":       m.SeedUpdated.Value(),
		"seed_fetch_errors_total":  m.SeedFetchErrors.Value(),
		"sync_runs_total":          m.SyncRuns.Value(),
		"sync_failures_total":      m.SyncFailures.Value(),
		"manual_edits_total":       m.ManualEdits.Value(),
		"remote_saves_total":       m.RemoteSaves.Value(),
		"remote_save_errors_total": m.RemoteSaveErrors.Value(),
		"remote_load_errors_total": m.RemoteLoadErrors.Value(),
		"http_requests_total":      sumCounters(m.HTTPRequests),
		"bus_events_total":         sumCounters(m.BusEventsPublished),
		"bus_errors_total":         sumCounters(m.BusErrors),
	}
	return stats
}

// History returns historical data points for a metric, if Redis history
// is configured.
func (m *Metrics) History(ctx context.Context, metric string, since time.Time) ([]DataPoint, error) {
	if m.history == nil {
		return nil, nil
	}
	return m.history.LoadHistory(ctx, metric, since)
}

// Close releases the history backend, if any.
func (m *Metrics) Close() error {
	if m.history == nil {
		return nil
	}
	return m.history.Close()
}

// pushHistory appends a data point to the Redis history, best-effort.
func (m *Metrics) pushHistory(metric string, value float64) {
	if m.history == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.history.SaveDataPoint(ctx, metric, DataPoint{Timestamp: time.Now(), Value: value}); err != nil {
			m.log.WithError(err).Debug("failed to persist metric history", "metric", metric)
		}
	}()
}

func sumCounters(cv *CounterVec) int64 {
	var total int64
	for _, c := range cv.GetAll() {
		total += c.Value()
	}
	return total
}
