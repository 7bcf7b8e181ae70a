package server

import (
	"net/http"

	"github.com/trueframework/true-board/internal/evaluation"
	apperrors "github.com/trueframework/true-board/internal/pkg/errors"
	"github.com/trueframework/true-board/internal/rank"
	"github.com/trueframework/true-board/internal/store"
)

// LeaderboardHandler serves the ranked view of the collection.
type LeaderboardHandler struct {
	svc *store.Service
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(svc *store.Service) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc}
}

// LeaderboardEntry is one row of the leaderboard response.
type LeaderboardEntry struct {
	// Rank is the competition rank; ties share it and the next distinct
	// score skips past them.
	Rank int `json:"rank"`

	*evaluation.Evaluation
}

// LeaderboardResponse is the GET /api/leaderboard payload.
type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
	Total   int                `json:"total"`
	SortKey string             `json:"sortKey"`
	SortDir string             `json:"sortDirection"`
}

// RegisterRoutes registers leaderboard routes.
func (h *LeaderboardHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		h.handleLeaderboard(w, r)
	})
}

// handleLeaderboard handles GET /api/leaderboard.
//
// Optional query parameters sort and direction change the display order only;
// ranks are always assigned from recomputed total scores first.
func (h *LeaderboardHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	sortKey := r.URL.Query().Get("sort")
	if sortKey == "" {
		sortKey = rank.KeyRank
	}
	if !rank.ValidKey(sortKey) {
		apperrors.WriteError(w, apperrors.InvalidRequestError("unknown sort key: "+sortKey))
		return
	}

	direction := r.URL.Query().Get("direction")
	switch direction {
	case "":
		direction = rank.DirectionDesc
		if sortKey == rank.KeyModelName {
			direction = rank.DirectionAsc
		}
	case rank.DirectionAsc, rank.DirectionDesc:
	default:
		apperrors.WriteError(w, apperrors.InvalidRequestError("direction must be asc or desc"))
		return
	}

	evals := h.svc.List()
	ranks := rank.ComputeRanks(evals)
	sorted := rank.DisplaySort(evals, sortKey, direction)

	entries := make([]LeaderboardEntry, 0, len(sorted))
	for _, eval := range sorted {
		entries = append(entries, LeaderboardEntry{
			Rank:       ranks[eval.ID],
			Evaluation: eval,
		})
	}

	writeJSON(w, http.StatusOK, LeaderboardResponse{
		Entries: entries,
		Total:   len(entries),
		SortKey: sortKey,
		SortDir: direction,
	})
}
