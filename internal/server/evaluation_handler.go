package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/trueframework/true-board/internal/evaluation"
	apperrors "github.com/trueframework/true-board/internal/pkg/errors"
	"github.com/trueframework/true-board/internal/scoring"
	"github.com/trueframework/true-board/internal/store"
)

// EvaluationHandler handles evaluation CRUD requests.
type EvaluationHandler struct {
	svc *store.Service
}

// NewEvaluationHandler creates a new evaluation handler.
func NewEvaluationHandler(svc *store.Service) *EvaluationHandler {
	return &EvaluationHandler{svc: svc}
}

// EvaluationRequest is the POST /api/evaluations body. Supplying an id edits
// that record; otherwise the model name decides between update and create.
type EvaluationRequest struct {
	ID        string            `json:"id,omitempty"`
	ModelName string            `json:"modelName"`
	ModelURL  string            `json:"modelUrl,omitempty"`
	Scores    scoring.Scores    `json:"scores"`
	Evidence  map[string]string `json:"evidence,omitempty"`
	Notes     string            `json:"notes,omitempty"`
}

// RegisterRoutes registers evaluation routes.
func (h *EvaluationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/evaluations", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleUpsert(w, r)
		default:
			writeMethodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/evaluations/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/evaluations/")
		if id == "" || strings.Contains(id, "/") {
			apperrors.WriteError(w, apperrors.NotFoundError("evaluation"))
			return
		}
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		h.handleGet(w, r, id)
	})
}

// handleList handles GET /api/evaluations.
func (h *EvaluationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	evals := h.svc.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"evaluations": evals,
		"total":       len(evals),
	})
}

// handleGet handles GET /api/evaluations/{id}.
func (h *EvaluationHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	eval, err := h.svc.Get(id)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eval)
}

// handleUpsert handles POST /api/evaluations.
func (h *EvaluationHandler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var req EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, apperrors.InvalidRequestError("invalid request body"))
		return
	}

	saved, err := h.svc.UpsertManual(r.Context(), &evaluation.Evaluation{
		ID:        req.ID,
		ModelName: req.ModelName,
		ModelURL:  req.ModelURL,
		Scores:    req.Scores,
		Evidence:  req.Evidence,
		Notes:     req.Notes,
	})
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if req.ID == "" && len(saved.ModificationHistory) == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}
