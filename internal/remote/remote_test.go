package remote

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/trueframework/true-board/internal/evaluation"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		APIKey:      "key",
		AuthDomain:  "true-board.example.com",
		DatabaseURL: "redis://localhost:6379/0",
		ProjectID:   "true-board",
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	// AppID is the only optional credential.
	withApp := valid
	withApp.AppID = "1:234:web:abc"
	if err := withApp.Validate(); err != nil {
		t.Errorf("config with appId rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing apiKey", func(c *Config) { c.APIKey = "" }},
		{"missing authDomain", func(c *Config) { c.AuthDomain = "" }},
		{"missing databaseURL", func(c *Config) { c.DatabaseURL = "" }},
		{"missing projectId", func(c *Config) { c.ProjectID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}

	if got := cfg.maxEvaluations(); got != DefaultMaxEvaluations {
		t.Errorf("maxEvaluations() = %d, want %d", got, DefaultMaxEvaluations)
	}
	if got := cfg.connectTimeout(); got != 5*time.Second {
		t.Errorf("connectTimeout() = %v, want 5s", got)
	}
	if got := cfg.loadTimeout(); got != 10*time.Second {
		t.Errorf("loadTimeout() = %v, want 10s", got)
	}
}

func evalsWithTimestamps(timestamps ...int64) []*evaluation.Evaluation {
	evals := make([]*evaluation.Evaluation, len(timestamps))
	for i, ts := range timestamps {
		evals[i] = &evaluation.Evaluation{
			ID:        evaluation.NewID(),
			ModelName: "model",
			Timestamp: ts,
		}
	}
	return evals
}

func TestCapEvaluations(t *testing.T) {
	t.Run("under cap untouched", func(t *testing.T) {
		evals := evalsWithTimestamps(3, 1, 2)
		kept, removed := capEvaluations(evals, 5)
		if len(kept) != 3 || removed != 0 {
			t.Errorf("kept %d removed %d, want 3/0", len(kept), removed)
		}
	})

	t.Run("drops oldest beyond cap", func(t *testing.T) {
		evals := evalsWithTimestamps(50, 10, 40, 20, 30)
		kept, removed := capEvaluations(evals, 3)

		if removed != 2 {
			t.Fatalf("removed = %d, want 2", removed)
		}
		for _, e := range kept {
			if e.Timestamp < 30 {
				t.Errorf("kept an entry older than the cutoff: %d", e.Timestamp)
			}
		}
	})

	t.Run("zero cap means uncapped", func(t *testing.T) {
		evals := evalsWithTimestamps(1, 2, 3)
		kept, removed := capEvaluations(evals, 0)
		if len(kept) != 3 || removed != 0 {
			t.Errorf("kept %d removed %d, want 3/0", len(kept), removed)
		}
	})
}

func TestNewDocument(t *testing.T) {
	evals := evalsWithTimestamps(50, 10, 40, 20, 30)
	doc := NewDocument(evals, 3, 9999)

	if doc.Version != DocumentVersion {
		t.Errorf("Version = %s, want %s", doc.Version, DocumentVersion)
	}
	if doc.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", doc.TotalCount)
	}
	if doc.RemovedCount != 2 {
		t.Errorf("RemovedCount = %d, want 2", doc.RemovedCount)
	}
	if doc.LastUpdated != 9999 || doc.LastSyncTimestamp != 9999 {
		t.Errorf("timestamps not set: %d, %d", doc.LastUpdated, doc.LastSyncTimestamp)
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	doc := NewDocument(evalsWithTimestamps(1, 2), 500, 1234)

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var decoded Document
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if decoded.TotalCount != 2 || decoded.Version != DocumentVersion {
		t.Errorf("round trip lost metadata: %+v", decoded)
	}
	if len(decoded.Evaluations) != 2 {
		t.Errorf("round trip lost evaluations: %d", len(decoded.Evaluations))
	}
}
