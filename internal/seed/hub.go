// Package seed populates the leaderboard with evaluations for popular
// open models, combining trending data from the HuggingFace Hub with a
// curated catalogue of hand-checked evaluations.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultHubURL is the public HuggingFace Hub endpoint.
const DefaultHubURL = "https://huggingface.co"

// DefaultTopModels is how many trending models a fetch considers.
const DefaultTopModels = 50

// perCategoryLimit caps how many candidates each category may hold.
const perCategoryLimit = 5

// Candidate categories.
const (
	CategoryTrending   = "trending"
	CategoryCode       = "code"
	CategoryCommunity  = "community"
	CategoryResearch   = "research"
	CategoryEnterprise = "enterprise"
)

// HubClient provides read access to the HuggingFace Hub API.
type HubClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHubClient creates a Hub client. An empty baseURL falls back to the
// public Hub; requestsPerSecond below 1 falls back to 2.
func NewHubClient(baseURL string, requestsPerSecond int) *HubClient {
	if baseURL == "" {
		baseURL = DefaultHubURL
	}
	if requestsPerSecond < 1 {
		requestsPerSecond = 2
	}
	return &HubClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// HubModel represents a model entry from the Hub API.
type HubModel struct {
	ID            string   `json:"id"`
	ModelID       string   `json:"modelId"`
	Author        string   `json:"author"`
	Downloads     int64    `json:"downloads"`
	Likes         int      `json:"likes"`
	Tags          []string `json:"tags"`
	PipelineTag   string   `json:"pipeline_tag"`
	TrendingScore float64  `json:"trendingScore"`
	Private       bool     `json:"private"`
	LastModified  string   `json:"lastModified"`
}

// Name returns the canonical model identifier.
func (m HubModel) Name() string {
	if m.ModelID != "" {
		return m.ModelID
	}
	return m.ID
}

// ListModels fetches the model listing from the Hub.
func (c *HubClient) ListModels(ctx context.Context) ([]HubModel, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	apiURL := fmt.Sprintf("%s/api/models", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models failed with status %d", resp.StatusCode)
	}

	var models []HubModel
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return models, nil
}

// Candidate is a model picked for seeding.
type Candidate struct {
	Name          string
	URL           string
	Category      string
	TrendingScore float64
	Downloads     int64
}

// FetchCandidates lists Hub models, keeps the top trending ones and
// groups them into categories.
func (c *HubClient) FetchCandidates(ctx context.Context, top int) ([]Candidate, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	return Categorize(models, top), nil
}

// Categorize filters models with a positive trending score, sorts them
// by that score and assigns the top entries to categories, at most five
// per category. Order within the result follows the trending order.
func Categorize(models []HubModel, top int) []Candidate {
	if top < 1 {
		top = DefaultTopModels
	}

	trending := make([]HubModel, 0, len(models))
	for _, m := range models {
		if m.TrendingScore > 0 && !m.Private {
			trending = append(trending, m)
		}
	}
	sort.SliceStable(trending, func(i, j int) bool {
		return trending[i].TrendingScore > trending[j].TrendingScore
	})
	if len(trending) > top {
		trending = trending[:top]
	}

	counts := map[string]int{}
	var out []Candidate
	for _, m := range trending {
		category := classify(m)
		if counts[category] >= perCategoryLimit {
			continue
		}
		counts[category]++
		out = append(out, Candidate{
			Name:          m.Name(),
			URL:           fmt.Sprintf("https://huggingface.co/%s", m.Name()),
			Category:      category,
			TrendingScore: m.TrendingScore,
			Downloads:     m.Downloads,
		})
	}

	// An empty trending bucket gets the overall leaders instead.
	if counts[CategoryTrending] == 0 {
		for i, m := range trending {
			if i >= perCategoryLimit {
				break
			}
			out = append(out, Candidate{
				Name:          m.Name(),
				URL:           fmt.Sprintf("https://huggingface.co/%s", m.Name()),
				Category:      CategoryTrending,
				TrendingScore: m.TrendingScore,
				Downloads:     m.Downloads,
			})
		}
	}

	return out
}

var researchOrgs = []string{"allenai", "stanford", "berkeley", "microsoft/research"}

var enterpriseOrgs = []string{"anthropic", "cohere", "ai21", "snowflake"}

func classify(m HubModel) string {
	name := m.Name()
	lower := strings.ToLower(name)

	if strings.Contains(m.PipelineTag, "code") || hasCodeTag(m.Tags) {
		return CategoryCode
	}
	for _, org := range researchOrgs {
		if strings.Contains(lower, org) {
			return CategoryResearch
		}
	}
	for _, org := range enterpriseOrgs {
		if strings.Contains(lower, org) {
			return CategoryEnterprise
		}
	}
	if m.Downloads > 1000 && !strings.Contains(name, "/") {
		return CategoryCommunity
	}
	return CategoryTrending
}

func hasCodeTag(tags []string) bool {
	for _, t := range tags {
		if strings.Contains(t, "code") || strings.Contains(t, "programming") {
			return true
		}
	}
	return false
}
