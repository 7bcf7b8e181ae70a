// Package remote implements the shared realtime store: one document holding
// the whole evaluation array, written last-writer-wins and fanned out to
// subscribers over pub/sub.
package remote

import (
	"fmt"
	"sort"
	"time"

	"github.com/trueframework/true-board/internal/evaluation"
)

// DocumentVersion is the wire version of the shared document.
const DocumentVersion = "1.0"

// DefaultMaxEvaluations caps the shared document size.
const DefaultMaxEvaluations = 500

// Config holds the credentials for the shared store. All fields except AppID
// are required.
type Config struct {
	APIKey      string
	AuthDomain  string
	DatabaseURL string
	ProjectID   string
	AppID       string

	// ConnectTimeout bounds the connectivity probe.
	ConnectTimeout time.Duration

	// LoadTimeout bounds a snapshot load.
	LoadTimeout time.Duration

	// MaxEvaluations caps the document; oldest entries beyond it are
	// dropped on save. Zero means DefaultMaxEvaluations.
	MaxEvaluations int

	// Origin identifies this writer in change notifications, so a
	// subscriber can skip echoes of its own saves.
	Origin string
}

// Validate checks that the required credentials are present.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("apiKey is required")
	}
	if c.AuthDomain == "" {
		return fmt.Errorf("authDomain is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("databaseURL is required")
	}
	if c.ProjectID == "" {
		return fmt.Errorf("projectId is required")
	}
	return nil
}

func (c Config) maxEvaluations() int {
	if c.MaxEvaluations < 1 {
		return DefaultMaxEvaluations
	}
	return c.MaxEvaluations
}

func (c Config) connectTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return 5 * time.Second
	}
	return c.ConnectTimeout
}

func (c Config) loadTimeout() time.Duration {
	if c.LoadTimeout <= 0 {
		return 10 * time.Second
	}
	return c.LoadTimeout
}

// Document is the single shared node: the whole evaluation array plus
// metadata for observability.
type Document struct {
	Evaluations       []*evaluation.Evaluation `json:"evaluations"`
	LastUpdated       int64                    `json:"lastUpdated"`
	Version           string                   `json:"version"`
	TotalCount        int                      `json:"totalCount"`
	RemovedCount      int                      `json:"removedCount"`
	LastSyncTimestamp int64                    `json:"lastSyncTimestamp"`
}

// NewDocument builds a capped document from a collection. Entries beyond the
// cap are dropped oldest-by-timestamp and counted in RemovedCount.
func NewDocument(evals []*evaluation.Evaluation, max int, now int64) Document {
	kept, removed := capEvaluations(evals, max)
	return Document{
		Evaluations:       kept,
		LastUpdated:       now,
		Version:           DocumentVersion,
		TotalCount:        len(kept),
		RemovedCount:      removed,
		LastSyncTimestamp: now,
	}
}

// capEvaluations keeps the max newest-by-timestamp entries.
func capEvaluations(evals []*evaluation.Evaluation, max int) ([]*evaluation.Evaluation, int) {
	if max < 1 || len(evals) <= max {
		return evals, 0
	}

	sorted := make([]*evaluation.Evaluation, len(evals))
	copy(sorted, evals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})

	return sorted[:max], len(evals) - max
}

// notification is the pub/sub payload announcing a document change.
type notification struct {
	Origin    string `json:"origin,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
