// Package evaluation defines the evaluation entity and the merge and
// deduplication rules that keep the canonical collection consistent.
package evaluation

import (
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/trueframework/true-board/internal/pkg/errors"
	"github.com/trueframework/true-board/internal/pkg/security"
	"github.com/trueframework/true-board/internal/scoring"
)

// ModificationRecord is one entry in an evaluation's append-only edit history.
type ModificationRecord struct {
	// Timestamp is when the edit happened (epoch millis).
	Timestamp int64 `json:"timestamp"`

	// PreviousScore is the total score before the edit.
	PreviousScore int `json:"previousScore"`
}

// Evaluation is one scored model on the leaderboard.
//
// TotalScore and Tier are cached derivations of Scores; every mutation path
// recomputes them before persisting.
type Evaluation struct {
	// ID uniquely identifies this evaluation. Immutable once assigned.
	ID string `json:"id"`

	// SessionID identifies the session that produced or last updated the
	// record. Provenance only, never part of identity.
	SessionID string `json:"sessionId,omitempty"`

	// ModelName is the normalized (trimmed, lowercased) model name. It is
	// the deduplication key: the canonical collection holds exactly one
	// evaluation per normalized name.
	ModelName string `json:"modelName"`

	// ModelURL is the source repository or model card URL. Informational.
	ModelURL string `json:"modelUrl,omitempty"`

	// Scores maps dimension to criterion to checked state.
	Scores scoring.Scores `json:"scores"`

	// Evidence maps criterion name to a supporting URL or note.
	Evidence map[string]string `json:"evidence,omitempty"`

	// Notes is free text.
	Notes string `json:"notes,omitempty"`

	// TotalScore is the cached total, recomputed from Scores on mutation.
	TotalScore int `json:"totalScore"`

	// Tier is the cached tier name, recomputed with TotalScore.
	Tier string `json:"tier"`

	// Timestamp is the primary evaluation time (epoch millis).
	Timestamp int64 `json:"timestamp"`

	// LastModified is the last mutation time (epoch millis). Used as the
	// recency signal in merges.
	LastModified int64 `json:"lastModified,omitempty"`

	// ModifiedDate is when the first manual edit happened.
	ModifiedDate int64 `json:"modifiedDate,omitempty"`

	// Modified is true once a human edited an auto-generated record.
	Modified bool `json:"modified,omitempty"`

	// ModificationHistory is append-only, never reordered.
	ModificationHistory []ModificationRecord `json:"modificationHistory,omitempty"`

	// EvalCount counts evaluation passes over this logical model. It is
	// accumulated across merges and never decreases.
	EvalCount int `json:"evalCount,omitempty"`

	// AutoGenerated is true for records produced by the seed job.
	AutoGenerated bool `json:"autoGenerated,omitempty"`
}

// NormalizeName returns the canonical form of a model name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewID returns a fresh evaluation id.
func NewID() string {
	return uuid.NewString()
}

// NewSessionID returns a fresh session id.
func NewSessionID() string {
	return "session-" + uuid.NewString()
}

// Validate rejects records that must not enter the canonical collection.
func (e *Evaluation) Validate() error {
	if e == nil {
		return apperrors.ValidationError("evaluation is nil")
	}
	if err := security.ValidateModelName(e.ModelName); err != nil {
		return apperrors.ValidationError(err.Error()).WithDetail("field", "modelName")
	}
	if err := security.ValidateModelURL(e.ModelURL); err != nil {
		return apperrors.ValidationError(err.Error()).WithDetail("field", "modelUrl")
	}
	return nil
}

// Recompute refreshes the cached TotalScore and Tier from Scores.
func (e *Evaluation) Recompute() {
	e.TotalScore = scoring.ComputeTotalScore(e.Scores)
	e.Tier = scoring.TierFor(e.TotalScore).Name
}

// EffectiveTime is the recency signal used by merges: the later of
// LastModified and Timestamp.
func (e *Evaluation) EffectiveTime() int64 {
	if e.LastModified > e.Timestamp {
		return e.LastModified
	}
	return e.Timestamp
}

// CountOrOne returns EvalCount, treating absent or zero as one pass.
func (e *Evaluation) CountOrOne() int {
	if e.EvalCount < 1 {
		return 1
	}
	return e.EvalCount
}

// RecordManualEdit marks the first human edit on the record and appends to
// the modification history. previousScore is the total before the edit.
func (e *Evaluation) RecordManualEdit(now int64, previousScore int) {
	if !e.Modified {
		e.Modified = true
		e.ModifiedDate = now
	}
	e.LastModified = now
	e.ModificationHistory = append(e.ModificationHistory, ModificationRecord{
		Timestamp:     now,
		PreviousScore: previousScore,
	})
}

// Clone returns a deep copy. The store hands out clones so callers can never
// mutate the canonical collection.
func (e *Evaluation) Clone() *Evaluation {
	if e == nil {
		return nil
	}

	clone := *e

	if e.Scores != nil {
		clone.Scores = make(scoring.Scores, len(e.Scores))
		for dimension, criteria := range e.Scores {
			checked := make(map[string]bool, len(criteria))
			for criterion, ok := range criteria {
				checked[criterion] = ok
			}
			clone.Scores[dimension] = checked
		}
	}

	if e.Evidence != nil {
		clone.Evidence = make(map[string]string, len(e.Evidence))
		for criterion, ev := range e.Evidence {
			clone.Evidence[criterion] = ev
		}
	}

	if e.ModificationHistory != nil {
		clone.ModificationHistory = make([]ModificationRecord, len(e.ModificationHistory))
		copy(clone.ModificationHistory, e.ModificationHistory)
	}

	return &clone
}

// CloneAll deep-copies a collection.
func CloneAll(evals []*Evaluation) []*Evaluation {
	if evals == nil {
		return nil
	}
	out := make([]*Evaluation, len(evals))
	for i, e := range evals {
		out[i] = e.Clone()
	}
	return out
}
