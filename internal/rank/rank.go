// Package rank computes leaderboard positions and display orderings.
package rank

import (
	"sort"
	"strings"

	"github.com/trueframework/true-board/internal/evaluation"
	"github.com/trueframework/true-board/internal/scoring"
)

// Sort directions.
const (
	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// Display sort keys.
const (
	KeyRank           = "rank"
	KeyTotalScore     = "totalScore"
	KeyModelName      = "modelName"
	KeyTier           = "tier"
	KeyTransparent    = scoring.DimTransparent
	KeyReproducible   = scoring.DimReproducible
	KeyUnderstandable = scoring.DimUnderstandable
	KeyExecutable     = scoring.DimExecutable
	KeyDate           = "date"
	KeyEvalCount      = "evalCount"
)

// ComputeRanks assigns a competition rank to every evaluation, keyed by id.
//
// Records are ordered by total score descending; records with equal scores
// share a rank, and the next lower score takes its 1-based position (ranks
// skip over ties). Totals are always recomputed from the criteria maps, so
// the rank is independent of whatever display sort is applied afterwards.
func ComputeRanks(evals []*evaluation.Evaluation) map[string]int {
	ranked := make([]*evaluation.Evaluation, 0, len(evals))
	for _, eval := range evals {
		if eval != nil && eval.ModelName != "" {
			ranked = append(ranked, eval)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return scoring.ComputeTotalScore(ranked[i].Scores) > scoring.ComputeTotalScore(ranked[j].Scores)
	})

	ranks := make(map[string]int, len(ranked))
	currentRank := 1
	previousScore := -1

	for i, eval := range ranked {
		total := scoring.ComputeTotalScore(eval.Scores)
		if i > 0 && total < previousScore {
			currentRank = i + 1
		}
		ranks[eval.ID] = currentRank
		previousScore = total
	}

	return ranks
}

// DisplaySort orders a copy of the collection by the given key and direction.
// It never mutates the input and has no effect on computed ranks.
func DisplaySort(evals []*evaluation.Evaluation, key, direction string) []*evaluation.Evaluation {
	sorted := make([]*evaluation.Evaluation, len(evals))
	copy(sorted, evals)

	asc := direction == DirectionAsc

	sort.SliceStable(sorted, func(i, j int) bool {
		less := compareByKey(sorted[i], sorted[j], key)
		if asc {
			return less < 0
		}
		return less > 0
	})

	return sorted
}

// compareByKey returns a three-way comparison of a and b under key.
func compareByKey(a, b *evaluation.Evaluation, key string) int {
	switch key {
	case KeyRank, KeyTotalScore:
		return scoring.ComputeTotalScore(a.Scores) - scoring.ComputeTotalScore(b.Scores)
	case KeyModelName:
		return strings.Compare(strings.ToLower(a.ModelName), strings.ToLower(b.ModelName))
	case KeyTier:
		// Tier order derives from recomputed totals, not the cached name.
		aTier := scoring.TierFor(scoring.ComputeTotalScore(a.Scores)).Name
		bTier := scoring.TierFor(scoring.ComputeTotalScore(b.Scores)).Name
		return scoring.TierOrder[aTier] - scoring.TierOrder[bTier]
	case KeyTransparent, KeyReproducible, KeyUnderstandable, KeyExecutable:
		aDims := scoring.ComputeDimensionScores(a.Scores)
		bDims := scoring.ComputeDimensionScores(b.Scores)
		return aDims.ByName(key) - bDims.ByName(key)
	case KeyDate:
		return compareInt64(a.Timestamp, b.Timestamp)
	case KeyEvalCount:
		return a.CountOrOne() - b.CountOrOne()
	default:
		return 0
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ValidKey reports whether key is a supported display sort key.
func ValidKey(key string) bool {
	switch key {
	case KeyRank, KeyTotalScore, KeyModelName, KeyTier,
		KeyTransparent, KeyReproducible, KeyUnderstandable, KeyExecutable,
		KeyDate, KeyEvalCount:
		return true
	default:
		return false
	}
}
