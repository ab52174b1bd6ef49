package services

import (
	"context"
	"sort"

	"github.com/thomas-vilte/prdelivery/internal/logger"
	"github.com/thomas-vilte/prdelivery/internal/models"
)

// authorFetcher defines the methods needed by DeliveryService to fetch one author.
type authorFetcher interface {
	Fetch(ctx context.Context, q models.SearchQuery, progress models.ProgressFunc) (FetchResult, error)
}

// deliverySource defines the methods needed by DeliveryService from a VCS provider.
type deliverySource interface {
	SearchURL(q models.SearchQuery) string
	GetDetails(ctx context.Context, repository string, number int) (*models.PRDetails, error)
}

// AuthorRequest is one author of a run. A zero Period falls back to the run period.
type AuthorRequest struct {
	Author string
	Period models.Period
}

type DeliveryRequest struct {
	Repository   string
	BaseBranch   string
	Period       models.Period
	Authors      []AuthorRequest
	Details      []int
	Observations []string
}

// AuthorProgress tags a fetch progress event with the author position in the run.
type AuthorProgress struct {
	Index int
	Count int
	models.FetchProgress
}

// DetailResult is the outcome of a single details lookup.
type DetailResult struct {
	Number  int
	Details *models.PRDetails
	Err     error
}

type DeliveryService struct {
	fetcher authorFetcher
	source  deliverySource
}

type DeliveryOption func(*DeliveryService)

func WithDeliveryFetcher(f authorFetcher) DeliveryOption {
	return func(s *DeliveryService) {
		s.fetcher = f
	}
}

func WithDeliverySource(source deliverySource) DeliveryOption {
	return func(s *DeliveryService) {
		s.source = source
	}
}

func NewDeliveryService(opts ...DeliveryOption) *DeliveryService {
	s := &DeliveryService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches every author in order and assembles the report. Fetch failures
// are recorded on the author and do not stop the run; only a cancelled context
// does, in which case the partial report is returned with the context error.
func (s *DeliveryService) Run(ctx context.Context, req DeliveryRequest, progress func(AuthorProgress)) (*models.RunReport, error) {
	report := &models.RunReport{
		Repository:   req.Repository,
		Period:       req.Period,
		BaseBranch:   req.BaseBranch,
		Observations: req.Observations,
		Authors:      make([]models.AuthorReport, 0, len(req.Authors)),
	}

	ctx = logger.With(ctx, "repo", req.Repository)
	logger.Info(ctx, "starting delivery run", "authors", len(req.Authors), "period", req.Period.String())

	for i, a := range req.Authors {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		q := models.SearchQuery{
			Repository: req.Repository,
			Author:     a.Author,
			Period:     req.Period,
			BaseBranch: req.BaseBranch,
		}
		if !a.Period.IsZero() {
			q.Period = a.Period
		}

		index := i + 1
		res, err := s.fetcher.Fetch(ctx, q, func(p models.FetchProgress) {
			if progress != nil {
				progress(AuthorProgress{Index: index, Count: len(req.Authors), FetchProgress: p})
			}
		})

		author := models.AuthorReport{
			Author:      a.Author,
			PRs:         res.PRs,
			Total:       res.Total,
			SearchURL:   s.source.SearchURL(q),
			RateLimited: res.RateLimited,
		}
		if err != nil {
			author.ErrorNote = err.Error()
		}
		report.Authors = append(report.Authors, author)
	}

	if len(req.Details) > 0 {
		for _, r := range s.FetchDetails(ctx, req.Repository, req.Details) {
			if r.Err != nil {
				continue
			}
			report.Details = append(report.Details, *r.Details)
		}
		report.ApplyDetails()
	}

	logger.Info(ctx, "delivery run finished", "prs", report.TotalPRs())
	return report, ctx.Err()
}

// FetchDetails looks up branch and commits of each pull request number, in
// ascending order and without duplicates.
func (s *DeliveryService) FetchDetails(ctx context.Context, repository string, numbers []int) []DetailResult {
	unique := make(map[int]struct{}, len(numbers))
	ordered := make([]int, 0, len(numbers))
	for _, n := range numbers {
		if _, ok := unique[n]; ok || n <= 0 {
			continue
		}
		unique[n] = struct{}{}
		ordered = append(ordered, n)
	}
	sort.Ints(ordered)

	results := make([]DetailResult, 0, len(ordered))
	for _, n := range ordered {
		d, err := s.source.GetDetails(ctx, repository, n)
		if err != nil {
			logger.Warn(ctx, "could not fetch pull request details", "pr_number", n, "error", err)
		}
		results = append(results, DetailResult{Number: n, Details: d, Err: err})
	}
	return results
}
