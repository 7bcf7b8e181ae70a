package evaluation

import (
	"testing"

	"github.com/trueframework/true-board/internal/scoring"
)

// scoresWorth builds a criteria map whose recomputed total equals points.
// points must be even and at most 30.
func scoresWorth(t *testing.T, points int) scoring.Scores {
	t.Helper()
	if points%2 != 0 || points > scoring.MaxTotalScore {
		t.Fatalf("scoresWorth: cannot build a rubric total of %d", points)
	}

	scores := make(scoring.Scores)
	remaining := points / 2
	for _, dimension := range scoring.Dimensions {
		for _, criterion := range scoring.Criteria[dimension] {
			if remaining == 0 {
				return scores
			}
			if scores[dimension] == nil {
				scores[dimension] = make(map[string]bool)
			}
			scores[dimension][criterion] = true
			remaining--
		}
	}
	return scores
}

func TestDeduplicate_Empty(t *testing.T) {
	result, stats := Deduplicate(nil)
	if len(result) != 0 {
		t.Errorf("expected empty result, got %d records", len(result))
	}
	if stats.Removed != 0 {
		t.Errorf("Removed = %d, want 0", stats.Removed)
	}
}

func TestDeduplicate_NoDuplicates(t *testing.T) {
	evals := []*Evaluation{
		{ID: "a", ModelName: "mistral-7b", Scores: scoresWorth(t, 14), EvalCount: 3},
		{ID: "b", ModelName: "falcon", Scores: scoresWorth(t, 18)},
	}

	result, stats := Deduplicate(evals)

	if len(result) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result))
	}
	if stats.Removed != 0 {
		t.Errorf("Removed = %d, want 0", stats.Removed)
	}
	if result[0].EvalCount != 3 {
		t.Errorf("existing EvalCount=3 must survive, got %d", result[0].EvalCount)
	}
	if result[1].EvalCount != 1 {
		t.Errorf("absent EvalCount defaults to 1, got %d", result[1].EvalCount)
	}
}

func TestDeduplicate_CaseVariantsCollapse(t *testing.T) {
	// Same score: tie-break picks the later timestamp and the survivor
	// carries the normalized name and the summed count.
	evals := []*Evaluation{
		{ID: "a", ModelName: "Llama-2", Scores: scoresWorth(t, 18), Timestamp: 100},
		{ID: "b", ModelName: "llama-2", Scores: scoresWorth(t, 18), Timestamp: 200},
	}

	result, stats := Deduplicate(evals)

	if len(result) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result))
	}
	if stats.Removed != 1 {
		t.Errorf("Removed = %d, want 1", stats.Removed)
	}

	survivor := result[0]
	if survivor.ID != "b" {
		t.Errorf("survivor = %s, want the later-timestamp record b", survivor.ID)
	}
	if survivor.ModelName != "llama-2" {
		t.Errorf("survivor name = %q, want normalized llama-2", survivor.ModelName)
	}
	if survivor.EvalCount != 2 {
		t.Errorf("survivor EvalCount = %d, want 2", survivor.EvalCount)
	}
}

func TestDeduplicate_HighestScoreWins(t *testing.T) {
	// A higher score beats recency, even when the lower-scored record is a
	// newer hand-edited evaluation.
	evals := []*Evaluation{
		{ID: "auto", ModelName: "falcon", Scores: scoresWorth(t, 20), Timestamp: 100, AutoGenerated: true},
		{ID: "manual", ModelName: "Falcon", Scores: scoresWorth(t, 12), Timestamp: 900, Modified: true},
	}

	result, _ := Deduplicate(evals)

	if len(result) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result))
	}
	if result[0].ID != "auto" {
		t.Errorf("survivor = %s, want the higher-scored auto record", result[0].ID)
	}
}

func TestDeduplicate_CountConservation(t *testing.T) {
	// dedup(X) keeps at least the sum of member counts per name.
	evals := []*Evaluation{
		{ID: "a", ModelName: "gemma", Scores: scoresWorth(t, 10), EvalCount: 4, Timestamp: 1},
		{ID: "b", ModelName: "Gemma", Scores: scoresWorth(t, 10), EvalCount: 2, Timestamp: 2},
		{ID: "c", ModelName: " gemma ", Scores: scoresWorth(t, 8), Timestamp: 3},
	}

	result, _ := Deduplicate(evals)

	if len(result) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result))
	}
	// 4 + 2 + 1 (absent counts as one pass)
	if result[0].EvalCount < 7 {
		t.Errorf("EvalCount = %d, want >= 7", result[0].EvalCount)
	}
}

func TestDeduplicate_SurvivorCountNeverDecreases(t *testing.T) {
	evals := []*Evaluation{
		{ID: "a", ModelName: "phi-3", Scores: scoresWorth(t, 10), EvalCount: 9},
	}

	result, _ := Deduplicate(evals)

	if result[0].EvalCount != 9 {
		t.Errorf("EvalCount = %d, want 9 (merging must not reduce it)", result[0].EvalCount)
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	evals := []*Evaluation{
		{ID: "a", ModelName: "Llama-2", Scores: scoresWorth(t, 18), Timestamp: 100, EvalCount: 1},
		{ID: "b", ModelName: "llama-2", Scores: scoresWorth(t, 18), Timestamp: 200, EvalCount: 1},
		{ID: "c", ModelName: "falcon", Scores: scoresWorth(t, 20), Timestamp: 50, EvalCount: 5},
	}

	once, _ := Deduplicate(evals)
	twice, stats := Deduplicate(once)

	if stats.Removed != 0 {
		t.Errorf("second pass removed %d records, want 0", stats.Removed)
	}
	if len(once) != len(twice) {
		t.Fatalf("length changed between passes: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID || once[i].EvalCount != twice[i].EvalCount {
			t.Errorf("record %d changed between passes: %+v vs %+v", i, once[i], twice[i])
		}
	}
}
