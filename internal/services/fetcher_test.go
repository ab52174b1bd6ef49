package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/models"
)

// pagedSource serves n merged pull requests in pages.
type pagedSource struct {
	n          int
	totalKnown bool
	failAt     map[int]error
	requests   int
}

func (s *pagedSource) SearchMerged(_ context.Context, _ models.SearchQuery, page, perPage int) (*models.SearchPage, error) {
	s.requests++
	if err, ok := s.failAt[page]; ok {
		return nil, err
	}

	out := &models.SearchPage{}
	if s.totalKnown {
		total := s.n
		out.Total = &total
	}

	merged := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	for i := (page - 1) * perPage; i < page*perPage && i < s.n; i++ {
		out.Items = append(out.Items, models.SearchItem{
			Number:   s.n - i,
			Title:    fmt.Sprintf("PR %d", s.n-i),
			URL:      fmt.Sprintf("https://github.com/org/repo/pull/%d", s.n-i),
			MergedAt: &merged,
		})
	}
	out.Returned = len(out.Items)
	return out, nil
}

func (s *pagedSource) GetMergedAt(context.Context, string, int) (*time.Time, error) {
	return nil, errors.New("unexpected lookup")
}

func noSleep(context.Context, time.Duration) error { return nil }

func testQuery() models.SearchQuery {
	start, _ := time.Parse(models.DateLayout, "2025-01-01")
	end, _ := time.Parse(models.DateLayout, "2025-01-31")
	return models.SearchQuery{
		Repository: "org/repo",
		Author:     "alice",
		Period:     models.Period{Start: start, End: end},
		BaseBranch: "main",
	}
}

func TestFetcher_PageRequests(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1},
		{1, 1},
		{29, 1},
		{30, 1},
		{31, 2},
		{45, 2},
		{60, 2},
		{61, 3},
		{100, 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d items", tt.n), func(t *testing.T) {
			source := &pagedSource{n: tt.n, totalKnown: true}
			f := NewFetcher(WithFetchSource(source), WithPageSize(30), WithSleeper(noSleep))

			res, err := f.Fetch(context.Background(), testQuery(), nil)

			require.NoError(t, err)
			assert.Equal(t, tt.want, source.requests)
			assert.Equal(t, tt.want, res.Requests)
			assert.Len(t, res.PRs, tt.n)
		})
	}
}

func TestFetcher_UnknownTotalStopsOnShortOrEmptyPage(t *testing.T) {
	source := &pagedSource{n: 60}
	f := NewFetcher(WithFetchSource(source), WithPageSize(30), WithSleeper(noSleep))

	res, err := f.Fetch(context.Background(), testQuery(), nil)

	require.NoError(t, err)
	assert.Equal(t, 3, source.requests)
	assert.Len(t, res.PRs, 60)
	assert.Nil(t, res.Total)
}

func TestFetcher_KeepsAPIOrder(t *testing.T) {
	source := &pagedSource{n: 35, totalKnown: true}
	f := NewFetcher(WithFetchSource(source), WithPageSize(30), WithSleeper(noSleep))

	res, err := f.Fetch(context.Background(), testQuery(), nil)

	require.NoError(t, err)
	assert.Equal(t, 35, res.PRs[0].Number)
	assert.Equal(t, 6, res.PRs[29].Number)
	assert.Equal(t, 1, res.PRs[34].Number)
}

// updateOrderedSource pages like a provider listing by update time.
type updateOrderedSource struct {
	pages [][]models.SearchItem
}

func (s *updateOrderedSource) SearchMerged(_ context.Context, _ models.SearchQuery, page, _ int) (*models.SearchPage, error) {
	if page > len(s.pages) {
		return &models.SearchPage{}, nil
	}
	items := s.pages[page-1]
	return &models.SearchPage{Items: items, Returned: len(items)}, nil
}

func (s *updateOrderedSource) GetMergedAt(context.Context, string, int) (*time.Time, error) {
	return nil, errors.New("not found")
}

func (s *updateOrderedSource) MergeOrdered() bool { return false }

func TestFetcher_SortsUnorderedSourceByMergeDate(t *testing.T) {
	at := func(day int) *time.Time {
		d := time.Date(2025, 1, day, 12, 0, 0, 0, time.UTC)
		return &d
	}
	source := &updateOrderedSource{pages: [][]models.SearchItem{
		{
			{Number: 1, Title: "old", MergedAt: at(3)},
			{Number: 2, Title: "unknown"},
		},
		{
			{Number: 3, Title: "newest", MergedAt: at(28)},
		},
	}}
	f := NewFetcher(WithFetchSource(source), WithPageSize(2), WithSleeper(noSleep))

	res, err := f.Fetch(context.Background(), testQuery(), nil)

	require.NoError(t, err)
	require.Len(t, res.PRs, 3)
	assert.Equal(t, 3, res.PRs[0].Number)
	assert.Equal(t, 1, res.PRs[1].Number)
	assert.Equal(t, 2, res.PRs[2].Number)
	assert.Nil(t, res.PRs[2].MergedAt)
}

func TestSortByMergeDate_StableForTies(t *testing.T) {
	same := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	later := same.Add(time.Hour)
	prs := []models.PullRequest{
		{Number: 1, MergedAt: &same},
		{Number: 2},
		{Number: 3, MergedAt: &same},
		{Number: 4, MergedAt: &later},
		{Number: 5},
	}

	SortByMergeDate(prs)

	var got []int
	for _, pr := range prs {
		got = append(got, pr.Number)
	}
	assert.Equal(t, []int{4, 1, 3, 2, 5}, got)
}

func TestFetcher_DelayOnlyBetweenPages(t *testing.T) {
	source := &pagedSource{n: 70, totalKnown: true}
	var delays []time.Duration
	f := NewFetcher(
		WithFetchSource(source),
		WithPageSize(30),
		WithPageDelay(250*time.Millisecond),
		WithSleeper(func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		}),
	)

	_, err := f.Fetch(context.Background(), testQuery(), nil)

	require.NoError(t, err)
	assert.Equal(t, 3, source.requests)
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 250 * time.Millisecond}, delays)
}

func TestFetcher_RateLimitKeepsPartialResults(t *testing.T) {
	reset := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	source := &pagedSource{
		n:          45,
		totalKnown: true,
		failAt: map[int]error{
			2: domainErrors.ErrRateLimit.WithContext("reset_at", reset),
		},
	}
	f := NewFetcher(WithFetchSource(source), WithPageSize(30), WithSleeper(noSleep))

	var events []models.FetchProgress
	res, err := f.Fetch(context.Background(), testQuery(), func(p models.FetchProgress) {
		events = append(events, p)
	})

	require.NoError(t, err)
	assert.True(t, res.RateLimited)
	require.NotNil(t, res.ResetAt)
	assert.Equal(t, reset, *res.ResetAt)
	assert.Len(t, res.PRs, 30)

	report := models.AuthorReport{Author: "alice", PRs: res.PRs, Total: res.Total}
	assert.True(t, report.Truncated())
	assert.Equal(t, 30, report.Count())

	last := events[len(events)-1]
	assert.Equal(t, models.FetchProgressRateLimited, last.Type)
	assert.Equal(t, 2, last.Page)
	assert.Equal(t, 30, last.Fetched)
	assert.Equal(t, 2, last.EstimatedPages)
	assert.Equal(t, reset, *last.ResetAt)
}

func TestFetcher_TransportErrorReturnsPartialResults(t *testing.T) {
	failure := domainErrors.ErrRequestFailed.WithError(errors.New("connection reset"))
	source := &pagedSource{n: 90, totalKnown: true, failAt: map[int]error{3: failure}}
	f := NewFetcher(WithFetchSource(source), WithPageSize(30), WithSleeper(noSleep))

	var events []models.FetchProgress
	res, err := f.Fetch(context.Background(), testQuery(), func(p models.FetchProgress) {
		events = append(events, p)
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrRequestFailed))
	assert.False(t, res.RateLimited)
	assert.Len(t, res.PRs, 60)

	last := events[len(events)-1]
	assert.Equal(t, models.FetchProgressError, last.Type)
	assert.Equal(t, failure, last.Error)
}

func TestFetcher_RateLimitOnFirstPage(t *testing.T) {
	source := &pagedSource{n: 10, totalKnown: true, failAt: map[int]error{1: domainErrors.ErrRateLimit}}
	f := NewFetcher(WithFetchSource(source), WithSleeper(noSleep))

	res, err := f.Fetch(context.Background(), testQuery(), nil)

	require.NoError(t, err)
	assert.True(t, res.RateLimited)
	assert.Nil(t, res.ResetAt)
	assert.Nil(t, res.Total)
	assert.Empty(t, res.PRs)
}

func TestFetcher_CancelledDuringDelay(t *testing.T) {
	source := &pagedSource{n: 45, totalKnown: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewFetcher(WithFetchSource(source), WithPageSize(30), WithPageDelay(time.Hour))

	res, err := f.Fetch(ctx, testQuery(), nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, source.requests)
	assert.Len(t, res.PRs, 30)
}

func TestFetcher_MergeDateLookup(t *testing.T) {
	q := testQuery()
	page := &models.SearchPage{
		Items: []models.SearchItem{
			{Number: 3, Title: "Has date", URL: "u3", MergedAt: timePtr(time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC))},
			{Number: 2, Title: "Lookup works", URL: "u2"},
			{Number: 1, Title: "Lookup fails", URL: "u1"},
		},
		Returned: 3,
		Total:    intPtr(3),
	}

	source := &MockSource{}
	source.On("SearchMerged", mock.Anything, q, 1, 30).Return(page, nil).Once()
	source.On("GetMergedAt", mock.Anything, "org/repo", 2).
		Return(timePtr(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)), nil).Once()
	source.On("GetMergedAt", mock.Anything, "org/repo", 1).
		Return(nil, domainErrors.ErrPullRequestNotFound).Once()

	f := NewFetcher(WithFetchSource(source), WithSleeper(noSleep))
	res, err := f.Fetch(context.Background(), q, nil)

	require.NoError(t, err)
	require.Len(t, res.PRs, 3)
	assert.Equal(t, "2025-01-03", res.PRs[0].MergedDate())
	assert.Equal(t, "2025-01-02", res.PRs[1].MergedDate())
	assert.Nil(t, res.PRs[2].MergedAt)
	assert.Equal(t, models.UnknownDate, res.PRs[2].MergedDate())
	source.AssertNumberOfCalls(t, "GetMergedAt", 2)
	source.AssertExpectations(t)
}

func TestFetcher_WithoutSource(t *testing.T) {
	_, err := NewFetcher().Fetch(context.Background(), testQuery(), nil)
	assert.Error(t, err)
}

func timePtr(t time.Time) *time.Time { return &t }

func intPtr(n int) *int { return &n }
