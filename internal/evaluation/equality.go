package evaluation

import "github.com/trueframework/true-board/internal/scoring"

// DataEqual reports whether two evaluations carry the same scores, evidence
// and notes. The merger uses it to detect local changes that the clocks alone
// cannot prove.
func DataEqual(a, b *Evaluation) bool {
	if a == nil || b == nil {
		return a == b
	}
	return scoresEqual(a.Scores, b.Scores) &&
		evidenceEqual(a.Evidence, b.Evidence) &&
		a.Notes == b.Notes
}

// scoresEqual compares criteria maps structurally. A nil map equals an empty
// one: both score zero everywhere.
func scoresEqual(a, b scoring.Scores) bool {
	if len(a) != len(b) {
		return false
	}
	for dimension, criteriaA := range a {
		criteriaB, ok := b[dimension]
		if !ok || len(criteriaA) != len(criteriaB) {
			return false
		}
		for criterion, checked := range criteriaA {
			other, ok := criteriaB[criterion]
			if !ok || checked != other {
				return false
			}
		}
	}
	return true
}

func evidenceEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for criterion, ev := range a {
		other, ok := b[criterion]
		if !ok || ev != other {
			return false
		}
	}
	return true
}
