package seed

import (
	"context"

	"github.com/trueframework/true-board/internal/evaluation"
	"github.com/trueframework/true-board/internal/pkg/logger"
	"github.com/trueframework/true-board/internal/pkg/security"
)

// Fetcher lists seeding candidates.
type Fetcher interface {
	FetchCandidates(ctx context.Context, top int) ([]Candidate, error)
}

// Applier accepts a batch of seed evaluations.
type Applier interface {
	UpsertSeedBatch(ctx context.Context, seeds []evaluation.Seed) (created, updated int, err error)
}

// Report summarises one seeding pass.
type Report struct {
	Candidates  int  `json:"candidates"`
	Created     int  `json:"created"`
	Updated     int  `json:"updated"`
	FetchFailed bool `json:"fetchFailed"`
}

// Runner drives the seeding pass: fetch trending candidates, resolve
// each to curated or generated evaluation data, and hand the batch to
// the store.
type Runner struct {
	fetcher Fetcher
	store   Applier
	top     int
	log     *logger.Logger
}

// NewRunner creates a Runner. top below 1 falls back to DefaultTopModels.
func NewRunner(fetcher Fetcher, store Applier, top int, log *logger.Logger) *Runner {
	if top < 1 {
		top = DefaultTopModels
	}
	if log == nil {
		log = logger.Default()
	}
	return &Runner{fetcher: fetcher, store: store, top: top, log: log}
}

// Run executes one seeding pass. A fetch failure is degraded to an
// empty candidate set so a Hub outage never takes the service down;
// only a store failure is returned as an error.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var report Report

	candidates, err := r.fetcher.FetchCandidates(ctx, r.top)
	if err != nil {
		r.log.WithError(err).Warn("trending fetch failed, seeding with no candidates")
		report.FetchFailed = true
		candidates = nil
	}
	report.Candidates = len(candidates)

	seeds := make([]evaluation.Seed, 0, len(candidates))
	for _, c := range candidates {
		// Hub names are untrusted input
		r.log.Debug("seed candidate",
			"model", security.SanitizeForLog(c.Name),
			"category", c.Category)
		seeds = append(seeds, SeedFor(c))
	}
	if len(seeds) == 0 {
		return report, nil
	}

	created, updated, err := r.store.UpsertSeedBatch(ctx, seeds)
	if err != nil {
		return report, err
	}
	report.Created = created
	report.Updated = updated

	r.log.Info("seeding pass complete",
		"candidates", report.Candidates,
		"created", created,
		"updated", updated)
	return report, nil
}
