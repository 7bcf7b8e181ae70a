// Package scoring implements the fixed evaluation rubric: four dimensions,
// fifteen checklist criteria, two points each.
package scoring

// Dimension names.
const (
	DimTransparent    = "transparent"
	DimReproducible   = "reproducible"
	DimUnderstandable = "understandable"
	DimExecutable     = "executable"
)

// CriterionPoints is the fixed point value of every checklist criterion.
const CriterionPoints = 2

// MaxTotalScore is the highest achievable total (15 criteria x 2 points).
const MaxTotalScore = 30

// Dimensions lists the rubric dimensions in display order.
var Dimensions = []string{DimTransparent, DimReproducible, DimUnderstandable, DimExecutable}

// Criteria maps each dimension to its checklist criteria in display order.
var Criteria = map[string][]string{
	DimTransparent:    {"license", "weights", "inference", "training", "datasets"},
	DimReproducible:   {"hardware", "pipeline", "checkpoints", "cost", "community"},
	DimUnderstandable: {"modelcard", "architecture", "provenance"},
	DimExecutable:     {"runnable", "finetune"},
}

// Scores maps dimension name to criterion name to checked state.
// Missing dimensions or criteria contribute zero points.
type Scores map[string]map[string]bool

// DimensionScores holds the per-dimension point totals.
type DimensionScores struct {
	Transparent    int `json:"transparent"`
	Reproducible   int `json:"reproducible"`
	Understandable int `json:"understandable"`
	Executable     int `json:"executable"`
}

// ByName returns the score for a dimension by its name, 0 for unknown names.
func (d DimensionScores) ByName(dimension string) int {
	switch dimension {
	case DimTransparent:
		return d.Transparent
	case DimReproducible:
		return d.Reproducible
	case DimUnderstandable:
		return d.Understandable
	case DimExecutable:
		return d.Executable
	default:
		return 0
	}
}

// Total returns the sum over all four dimensions.
func (d DimensionScores) Total() int {
	return d.Transparent + d.Reproducible + d.Understandable + d.Executable
}

// ComputeDimensionScores sums checked criteria per dimension. Criteria not in
// the rubric contribute nothing; a nil map scores zero everywhere.
func ComputeDimensionScores(scores Scores) DimensionScores {
	var result DimensionScores

	if scores == nil {
		return result
	}

	for dimension, criteria := range scores {
		known, ok := Criteria[dimension]
		if !ok {
			continue
		}

		points := 0
		for _, criterion := range known {
			if criteria[criterion] {
				points += CriterionPoints
			}
		}

		switch dimension {
		case DimTransparent:
			result.Transparent = points
		case DimReproducible:
			result.Reproducible = points
		case DimUnderstandable:
			result.Understandable = points
		case DimExecutable:
			result.Executable = points
		}
	}

	return result
}

// ComputeTotalScore returns the total score for a criteria map, in [0, 30].
func ComputeTotalScore(scores Scores) int {
	return ComputeDimensionScores(scores).Total()
}

// Tier is the coarse classification derived from a total score.
type Tier struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Tier names.
const (
	TierPlatinum = "Platinum"
	TierGold     = "Gold"
	TierSilver   = "Silver"
	TierBronze   = "Bronze"
)

// TierOrder ranks tiers for sorting, higher is better.
var TierOrder = map[string]int{
	TierPlatinum: 4,
	TierGold:     3,
	TierSilver:   2,
	TierBronze:   1,
}

// TierFor classifies a total score. Thresholds are inclusive lower bounds.
func TierFor(totalScore int) Tier {
	switch {
	case totalScore >= 28:
		return Tier{Name: TierPlatinum, Description: "Fully open and reproducible"}
	case totalScore >= 21:
		return Tier{Name: TierGold, Description: "Strong openness, minor gaps"}
	case totalScore >= 11:
		return Tier{Name: TierSilver, Description: "Some transparency, low reproducibility"}
	default:
		return Tier{Name: TierBronze, Description: "Minimal openness"}
	}
}
