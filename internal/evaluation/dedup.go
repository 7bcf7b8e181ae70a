package evaluation

import "github.com/trueframework/true-board/internal/scoring"

// DedupResult contains deduplication statistics. Removed > 0 tells the caller
// the collection was dirty and should be re-persisted.
type DedupResult struct {
	InputCount  int
	OutputCount int
	Removed     int
}

// Deduplicate collapses a collection to exactly one evaluation per normalized
// model name.
//
// Within a name group the survivor is the member with the highest recomputed
// total score; on an exact tie the most recent timestamp wins. The survivor's
// eval count becomes the sum of all member counts (absent counts as one pass),
// never dropping below what the survivor already recorded, and its model name
// is rewritten to the normalized form.
//
// The function does not persist anything; surviving records are mutated in
// place and returned in first-occurrence order.
func Deduplicate(evals []*Evaluation) ([]*Evaluation, DedupResult) {
	if len(evals) == 0 {
		return evals, DedupResult{}
	}

	survivors := make(map[string]*Evaluation, len(evals))
	counts := make(map[string]int, len(evals))
	order := make([]string, 0, len(evals))

	for _, eval := range evals {
		if eval == nil || eval.ModelName == "" {
			continue
		}

		key := NormalizeName(eval.ModelName)
		counts[key] += eval.CountOrOne()

		existing, ok := survivors[key]
		if !ok {
			survivors[key] = eval
			order = append(order, key)
			continue
		}

		// Highest score wins; on a tie the later timestamp does. This
		// can prefer an older high auto-score over a newer hand edit.
		evalScore := scoring.ComputeTotalScore(eval.Scores)
		existingScore := scoring.ComputeTotalScore(existing.Scores)
		if evalScore > existingScore ||
			(evalScore == existingScore && eval.Timestamp > existing.Timestamp) {
			survivors[key] = eval
		}
	}

	result := make([]*Evaluation, 0, len(order))
	for _, key := range order {
		survivor := survivors[key]
		if count := counts[key]; count > survivor.EvalCount {
			survivor.EvalCount = count
		}
		survivor.ModelName = key
		result = append(result, survivor)
	}

	return result, DedupResult{
		InputCount:  len(evals),
		OutputCount: len(result),
		Removed:     len(evals) - len(result),
	}
}
