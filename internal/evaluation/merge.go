package evaluation

import (
	"sort"

	"github.com/trueframework/true-board/internal/scoring"
)

// MergeStats describes what a remote/local reconciliation did.
type MergeStats struct {
	// FromRemote is how many records were seeded from the remote snapshot.
	FromRemote int

	// NewFromLocal is how many records existed only locally.
	NewFromLocal int

	// UpdatedFromLocal is how many remote records a local version replaced.
	UpdatedFromLocal int

	// KeptRemote is how many conflicting records stayed remote.
	KeptRemote int

	// Dedup reports the final name-level cleanup.
	Dedup DedupResult
}

// MergeByIDAndRecency reconciles a remote snapshot with the local collection.
//
// The map is seeded from remote, keyed by id. A local version replaces the
// remote one when it is strictly newer (max of lastModified and timestamp),
// carries a higher eval count, or differs in scores, notes or evidence.
// Any detectable local change wins even when clocks disagree, since clocks
// across devices are not trusted as the sole truth signal. Ties keep remote.
//
// The combined values are then deduplicated by normalized name (case variants
// recorded under separate ids collapse here) and sorted by timestamp
// descending, which is the canonical collection order.
func MergeByIDAndRecency(remote, local []*Evaluation) ([]*Evaluation, MergeStats) {
	var stats MergeStats

	merged := make(map[string]*Evaluation, len(remote)+len(local))
	order := make([]string, 0, len(remote)+len(local))

	for _, eval := range remote {
		if eval == nil || eval.ID == "" {
			continue
		}
		if _, ok := merged[eval.ID]; !ok {
			order = append(order, eval.ID)
		}
		merged[eval.ID] = eval
		stats.FromRemote++
	}

	for _, localEval := range local {
		if localEval == nil || localEval.ID == "" {
			continue
		}

		remoteEval, ok := merged[localEval.ID]
		if !ok {
			merged[localEval.ID] = localEval
			order = append(order, localEval.ID)
			stats.NewFromLocal++
			continue
		}

		localNewer := localEval.EffectiveTime() > remoteEval.EffectiveTime()
		localCounted := localEval.CountOrOne() > remoteEval.CountOrOne()

		if localNewer || localCounted || !DataEqual(localEval, remoteEval) {
			merged[localEval.ID] = localEval
			stats.UpdatedFromLocal++
		} else {
			stats.KeptRemote++
		}
	}

	combined := make([]*Evaluation, 0, len(order))
	for _, id := range order {
		combined = append(combined, merged[id])
	}

	result, dedup := Deduplicate(combined)
	stats.Dedup = dedup

	// Canonical order: most recent first, independent of display sorting.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp > result[j].Timestamp
	})

	return result, stats
}

// Seed is one candidate produced by the auto-evaluation job.
type Seed struct {
	// Name is the model name as reported by the source, not yet normalized.
	Name string

	// URL is the model's source URL.
	URL string

	// Scores holds the auto-evaluated criteria map; nil means the job had
	// no score data for this candidate.
	Scores scoring.Scores

	// Evidence maps criterion to a supporting URL.
	Evidence map[string]string

	// Notes is the auto-evaluation summary.
	Notes string
}

// HasScores reports whether the seed carries any score data.
func (s Seed) HasScores() bool {
	return s.Scores != nil
}

// UpsertSeed applies one auto-evaluation candidate to the collection.
//
// An existing record with the seed's normalized name is overwritten in
// place with evalCount reset to 1: re-running the job must not inflate
// counts. Unknown names append a fresh record. Candidates without score
// data still produce a Bronze placeholder so the absence of data stays
// visible.
//
// Returns the updated collection and whether a record was created.
func UpsertSeed(evals []*Evaluation, seed Seed, sessionID string, now int64) ([]*Evaluation, bool) {
	name := NormalizeName(seed.Name)
	if name == "" {
		return evals, false
	}

	var existing *Evaluation
	for _, eval := range evals {
		if NormalizeName(eval.ModelName) == name {
			existing = eval
			break
		}
	}

	if existing != nil {
		if !seed.HasScores() {
			// Keep whatever data the record already has.
			return evals, false
		}
		existing.ModelName = name
		existing.Scores = seed.Scores
		existing.Evidence = seed.Evidence
		existing.Notes = seed.Notes
		existing.Timestamp = now
		existing.LastModified = now
		existing.AutoGenerated = true
		existing.EvalCount = 1
		existing.Recompute()
		return evals, false
	}

	created := &Evaluation{
		ID:            NewID(),
		SessionID:     sessionID,
		ModelName:     name,
		ModelURL:      seed.URL,
		Scores:        seed.Scores,
		Evidence:      seed.Evidence,
		Notes:         seed.Notes,
		Timestamp:     now,
		AutoGenerated: true,
		EvalCount:     1,
	}
	if !seed.HasScores() {
		created.Scores = scoring.Scores{}
		created.Evidence = map[string]string{}
		created.Notes = "No evaluation data available"
	}
	created.Recompute()

	return append(evals, created), true
}
