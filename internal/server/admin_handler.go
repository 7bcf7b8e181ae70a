package server

import (
	"net/http"
	"time"

	"github.com/trueframework/true-board/internal/metrics"
	apperrors "github.com/trueframework/true-board/internal/pkg/errors"
	"github.com/trueframework/true-board/internal/seed"
	"github.com/trueframework/true-board/internal/store"
)

// AdminHandler serves operational endpoints: health, stats, and the manual
// seed and sync triggers.
type AdminHandler struct {
	svc     *store.Service
	runner  *seed.Runner
	metrics *metrics.Metrics
	version string
}

// NewAdminHandler creates a new admin handler. runner may be nil when seeding
// is not configured.
func NewAdminHandler(svc *store.Service, runner *seed.Runner, m *metrics.Metrics, version string) *AdminHandler {
	return &AdminHandler{svc: svc, runner: runner, metrics: m, version: version}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"version": h.version,
			"uptime":  h.metrics.Uptime().String(),
		})
	})

	mux.HandleFunc("/api/seed/run", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		h.handleSeedRun(w, r)
	})

	mux.HandleFunc("/api/sync/run", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		h.handleSyncRun(w, r)
	})

	mux.HandleFunc("/api/sync/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, h.svc.Status(r.Context()))
	})

	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, h.metrics.Snapshot())
	})

	mux.HandleFunc("/api/stats/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		h.handleStatsHistory(w, r)
	})
}

// handleSeedRun handles POST /api/seed/run.
func (h *AdminHandler) handleSeedRun(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		apperrors.WriteError(w, apperrors.ServiceUnavailableError("seed runner"))
		return
	}

	report, err := h.runner.Run(r.Context())
	h.metrics.RecordSeedPass(report.Created, report.Updated, report.FetchFailed)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// handleSyncRun handles POST /api/sync/run.
func (h *AdminHandler) handleSyncRun(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.ReconcileWithRemote(r.Context())
	h.metrics.RecordSyncRun(err)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"fromRemote":        stats.FromRemote,
		"newFromLocal":      stats.NewFromLocal,
		"updatedFromLocal":  stats.UpdatedFromLocal,
		"duplicatesRemoved": stats.Dedup.Removed,
	})
}

// handleStatsHistory handles GET /api/stats/history.
func (h *AdminHandler) handleStatsHistory(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		apperrors.WriteError(w, apperrors.InvalidRequestError("metric query parameter is required"))
		return
	}

	since := time.Now().Add(-24 * time.Hour)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apperrors.WriteError(w, apperrors.InvalidRequestError("since must be RFC3339"))
			return
		}
		since = parsed
	}

	points, err := h.metrics.History(r.Context(), metric, since)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"metric": metric,
		"points": points,
	})
}
