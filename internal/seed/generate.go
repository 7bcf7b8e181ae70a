package seed

import (
	"fmt"
	"strings"

	"github.com/trueframework/true-board/internal/evaluation"
	"github.com/trueframework/true-board/internal/scoring"
)

// GenerateSeed builds an estimated evaluation for a model with no
// curated entry, inferring openness from where the model is hosted and
// who publishes it. Models with no recognisable openness signals get a
// seed without scores, which the store turns into a placeholder.
func GenerateSeed(name, url string) evaluation.Seed {
	lowerName := strings.ToLower(name)
	lowerURL := strings.ToLower(url)

	isOpenSource := strings.Contains(lowerURL, "github.com") || strings.Contains(lowerURL, "huggingface.co")
	isResearch := strings.Contains(lowerURL, "allenai") || strings.Contains(lowerURL, "llm360") ||
		strings.Contains(lowerName, "olmo") || strings.Contains(lowerName, "amber")
	isMeta := strings.Contains(lowerURL, "meta-llama") || strings.Contains(lowerName, "llama")
	isEnterprise := strings.Contains(lowerURL, "cohere") || strings.Contains(lowerURL, "anthropic") ||
		strings.Contains(lowerURL, "databricks") || strings.Contains(lowerURL, "ibm")

	checked := map[string]bool{
		"license":      isOpenSource,
		"weights":      isOpenSource,
		"inference":    isOpenSource,
		"training":     isResearch || isMeta,
		"datasets":     isResearch,
		"hardware":     isResearch || isMeta,
		"pipeline":     isResearch || isMeta,
		"checkpoints":  isOpenSource,
		"cost":         isResearch,
		"community":    isOpenSource,
		"modelcard":    isOpenSource,
		"architecture": isOpenSource || isMeta,
		"provenance":   isResearch || isMeta,
		"runnable":     isOpenSource,
		"finetune":     (isOpenSource && !isEnterprise) || isMeta,
	}

	any := false
	scores := scoring.Scores{}
	evidence := map[string]string{}
	for _, dim := range scoring.Dimensions {
		row := map[string]bool{}
		for _, criterion := range scoring.Criteria[dim] {
			row[criterion] = checked[criterion]
			if checked[criterion] {
				any = true
				evidence[criterion] = url
			}
		}
		scores[dim] = row
	}

	seed := evaluation.Seed{
		Name: name,
		URL:  url,
	}
	if any {
		seed.Scores = scores
		seed.Evidence = evidence
		seed.Notes = fmt.Sprintf("Auto-evaluated %s model", name)
	}
	return seed
}

// SeedFor resolves a candidate to its seed data: the curated entry when
// one exists, otherwise a generated estimate.
func SeedFor(c Candidate) evaluation.Seed {
	if s, ok := PresetFor(c.Name); ok {
		return s
	}
	return GenerateSeed(c.Name, c.URL)
}
