package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/prdelivery/internal/models"
)

type (
	MockSource struct {
		mock.Mock
	}

	MockFetcher struct {
		mock.Mock
	}
)

func (m *MockSource) SearchMerged(ctx context.Context, q models.SearchQuery, page, perPage int) (*models.SearchPage, error) {
	args := m.Called(ctx, q, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SearchPage), args.Error(1)
}

func (m *MockSource) GetMergedAt(ctx context.Context, repository string, number int) (*time.Time, error) {
	args := m.Called(ctx, repository, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockSource) GetDetails(ctx context.Context, repository string, number int) (*models.PRDetails, error) {
	args := m.Called(ctx, repository, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PRDetails), args.Error(1)
}

func (m *MockSource) SearchURL(q models.SearchQuery) string {
	args := m.Called(q)
	return args.String(0)
}

func (m *MockFetcher) Fetch(ctx context.Context, q models.SearchQuery, progress models.ProgressFunc) (FetchResult, error) {
	args := m.Called(ctx, q, progress)
	return args.Get(0).(FetchResult), args.Error(1)
}
