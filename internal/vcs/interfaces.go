package vcs

import (
	"context"
	"time"

	"github.com/thomas-vilte/prdelivery/internal/models"
)

// PullRequestSource is the provider side of a delivery search.
//
// Implementations report an exhausted quota as an error matching
// errors.ErrRateLimit, with the reset time under the "reset_at" context key
// when the provider sent one. Missing repositories and pull requests match
// ErrRepositoryNotFound and ErrPullRequestNotFound.
type PullRequestSource interface {
	// Name returns the provider name ("github", "gitlab").
	Name() string
	// SearchMerged returns one page of merged pull requests matching q.
	SearchMerged(ctx context.Context, q models.SearchQuery, page, perPage int) (*models.SearchPage, error)
	// GetMergedAt looks up the merge time of one pull request. A nil time means
	// the pull request exists but was not merged.
	GetMergedAt(ctx context.Context, repository string, number int) (*time.Time, error)
	// GetDetails returns the head branch and the first line of every commit.
	GetDetails(ctx context.Context, repository string, number int) (*models.PRDetails, error)
	// SearchURL builds the web search link that lists every result of q.
	SearchURL(q models.SearchQuery) string
	// CheckAccess reads the repository metadata visible to the configured token.
	CheckAccess(ctx context.Context, repository string) (*models.RepositoryInfo, error)
}
