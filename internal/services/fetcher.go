package services

import (
	"context"
	"errors"
	"sort"
	"time"

	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/logger"
	"github.com/thomas-vilte/prdelivery/internal/models"
)

const (
	DefaultPageSize  = 30
	DefaultPageDelay = 500 * time.Millisecond
)

// searchSource defines the methods needed by Fetcher from a VCS provider.
type searchSource interface {
	SearchMerged(ctx context.Context, q models.SearchQuery, page, perPage int) (*models.SearchPage, error)
	GetMergedAt(ctx context.Context, repository string, number int) (*time.Time, error)
}

// mergeOrderer is implemented by sources whose pages may not come back in
// merge-date order.
type mergeOrderer interface {
	MergeOrdered() bool
}

// FetchResult is what one author fetch produced, possibly partial.
type FetchResult struct {
	PRs         []models.PullRequest
	Total       *int
	Requests    int
	RateLimited bool
	ResetAt     *time.Time
}

// Fetcher walks the search pages of one author.
type Fetcher struct {
	source            searchSource
	pageSize          int
	pageDelay         time.Duration
	descriptionBudget int
	sleep             func(ctx context.Context, d time.Duration) error
}

type FetcherOption func(*Fetcher)

func WithFetchSource(source searchSource) FetcherOption {
	return func(f *Fetcher) {
		f.source = source
	}
}

func WithPageSize(size int) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.pageSize = size
		}
	}
}

func WithPageDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d >= 0 {
			f.pageDelay = d
		}
	}
}

func WithDescriptionBudget(budget int) FetcherOption {
	return func(f *Fetcher) {
		if budget > 0 {
			f.descriptionBudget = budget
		}
	}
}

// WithSleeper replaces the wait between pages.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) FetcherOption {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		pageSize:          DefaultPageSize,
		pageDelay:         DefaultPageDelay,
		descriptionBudget: DefaultDescriptionBudget,
		sleep:             sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch collects the merged pull requests matching q, most recent merge first.
//
// Paging stops on an empty page, on a short page, or once the provider-reported
// total has been seen. A rate limit ends the fetch without an error and keeps
// what was collected. Any other failure is reported through progress and
// returned together with the partial result. Sources that do not page in merge
// order have their records sorted by merge date, unknown dates last.
func (f *Fetcher) Fetch(ctx context.Context, q models.SearchQuery, progress models.ProgressFunc) (FetchResult, error) {
	if f.source == nil {
		return FetchResult{}, domainErrors.NewAppError(domainErrors.TypeInternal, "fetcher has no source", nil)
	}

	res, err := f.fetchPages(ctx, q, progress)
	if o, ok := f.source.(mergeOrderer); ok && !o.MergeOrdered() {
		SortByMergeDate(res.PRs)
	}
	return res, err
}

func (f *Fetcher) fetchPages(ctx context.Context, q models.SearchQuery, progress models.ProgressFunc) (FetchResult, error) {
	var res FetchResult

	ctx = logger.With(ctx, "author", q.Author)
	emit := func(p models.FetchProgress) {
		if progress == nil {
			return
		}
		p.Author = q.Author
		p.Fetched = len(res.PRs)
		p.Total = res.Total
		p.EstimatedPages = f.estimatedPages(res.Total)
		progress(p)
	}

	seen := 0
	for page := 1; ; page++ {
		if page > 1 && f.pageDelay > 0 {
			if err := f.sleep(ctx, f.pageDelay); err != nil {
				emit(models.FetchProgress{Type: models.FetchProgressError, Page: page, Error: err})
				return res, err
			}
		}

		res.Requests++
		sp, err := f.source.SearchMerged(ctx, q, page, f.pageSize)
		if err != nil {
			if errors.Is(err, domainErrors.ErrRateLimit) {
				res.RateLimited = true
				res.ResetAt = resetTime(err)
				logger.Warn(ctx, "rate limit reached, keeping partial results", "page", page, "fetched", len(res.PRs))
				emit(models.FetchProgress{Type: models.FetchProgressRateLimited, Page: page, ResetAt: res.ResetAt, Error: err})
				return res, nil
			}
			logger.Error(ctx, "search failed", err, "page", page, "fetched", len(res.PRs))
			emit(models.FetchProgress{Type: models.FetchProgressError, Page: page, Error: err})
			return res, err
		}

		if res.Total == nil && sp.Total != nil {
			total := *sp.Total
			res.Total = &total
		}

		if sp.Returned == 0 {
			break
		}
		seen += sp.Returned

		for _, item := range sp.Items {
			res.PRs = append(res.PRs, f.convert(ctx, q.Repository, item))
		}

		logger.Debug(ctx, "page fetched", "page", page, "prs", len(sp.Items), "fetched", len(res.PRs))
		emit(models.FetchProgress{Type: models.FetchProgressPage, Page: page})

		if sp.Returned < f.pageSize {
			break
		}
		if res.Total != nil && seen >= *res.Total {
			break
		}
	}

	emit(models.FetchProgress{Type: models.FetchProgressDone, Page: res.Requests})
	return res, nil
}

// convert builds the record of one search hit. When the hit has no merge
// timestamp a single detail lookup is made; its failure leaves the date unknown.
func (f *Fetcher) convert(ctx context.Context, repository string, item models.SearchItem) models.PullRequest {
	mergedAt := item.MergedAt
	if mergedAt == nil && item.Number > 0 {
		t, err := f.source.GetMergedAt(ctx, repository, item.Number)
		if err != nil {
			logger.Debug(ctx, "merge date lookup failed", "pr_number", item.Number, "error", err)
		} else {
			mergedAt = t
		}
	}

	return models.PullRequest{
		Number:      item.Number,
		Title:       item.Title,
		URL:         item.URL,
		MergedAt:    mergedAt,
		Description: Describe(item.Title, item.Body, f.descriptionBudget),
	}
}

// SortByMergeDate orders prs most recent merge first. Records with an unknown
// merge date go last and ties keep their relative order.
func SortByMergeDate(prs []models.PullRequest) {
	sort.SliceStable(prs, func(i, j int) bool {
		a, b := prs[i].MergedAt, prs[j].MergedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

func (f *Fetcher) estimatedPages(total *int) int {
	if total == nil || *total <= 0 {
		return 0
	}
	return (*total + f.pageSize - 1) / f.pageSize
}

func resetTime(err error) *time.Time {
	var appErr *domainErrors.AppError
	if !errors.As(err, &appErr) || appErr.Context == nil {
		return nil
	}
	if t, ok := appErr.Context["reset_at"].(time.Time); ok && !t.IsZero() {
		return &t
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
