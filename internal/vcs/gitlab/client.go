package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xanzy/go-gitlab"
	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/logger"
	"github.com/thomas-vilte/prdelivery/internal/models"
	"github.com/thomas-vilte/prdelivery/internal/vcs"
)

var _ vcs.PullRequestSource = (*GitLabClient)(nil)

const (
	providerName   = "gitlab"
	defaultWebURL  = "https://gitlab.com"
	commitsPerPage = 100
)

// GitLabClient searches merged merge requests. GitLab has no merge-date filter
// on the list endpoint, so pages are requested by update time and filtered on
// merged_at locally; the total is therefore unknown.
type GitLabClient struct {
	client *gitlab.Client
	webURL string
}

// Option configures the GitLab client.
type Option func(*options)

type options struct {
	baseURL string
}

// WithBaseURL points the client at a self-managed instance or a test server.
// The /api/v4 suffix is added when missing.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

func NewGitLabClient(token string, opts ...Option) (*GitLabClient, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	clientOpts := []gitlab.ClientOptionFunc{gitlab.WithoutRetries()}
	webURL := defaultWebURL

	if o.baseURL != "" {
		base := strings.TrimSuffix(o.baseURL, "/")
		webURL = strings.TrimSuffix(base, "/api/v4")
		if !strings.HasSuffix(base, "/api/v4") {
			base += "/api/v4"
		}
		clientOpts = append(clientOpts, gitlab.WithBaseURL(base))
	}

	client, err := gitlab.NewClient(token, clientOpts...)
	if err != nil {
		return nil, domainErrors.ErrConfigInvalid.WithError(err).WithContext("base_url", o.baseURL)
	}

	return &GitLabClient{client: client, webURL: webURL}, nil
}

func (c *GitLabClient) Name() string {
	return providerName
}

// MergeOrdered is false: merge requests are paged by update time, so callers
// sort them by merge date themselves.
func (c *GitLabClient) MergeOrdered() bool {
	return false
}

func (c *GitLabClient) SearchURL(q models.SearchQuery) string {
	params := url.Values{}
	params.Set("scope", "all")
	params.Set("state", "merged")
	params.Set("author_username", q.Author)
	params.Set("target_branch", q.BaseBranch)
	return fmt.Sprintf("%s/%s/-/merge_requests?%s", c.webURL, q.Repository, params.Encode())
}

func (c *GitLabClient) SearchMerged(ctx context.Context, q models.SearchQuery, page, perPage int) (*models.SearchPage, error) {
	// merge requests merged inside the period were necessarily updated at or after its start
	updatedAfter := q.Period.Start

	opts := &gitlab.ListProjectMergeRequestsOptions{
		ListOptions: gitlab.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
		State:          gitlab.Ptr("merged"),
		AuthorUsername: gitlab.Ptr(q.Author),
		TargetBranch:   gitlab.Ptr(q.BaseBranch),
		UpdatedAfter:   &updatedAfter,
		OrderBy:        gitlab.Ptr("updated_at"),
		Sort:           gitlab.Ptr("desc"),
	}

	logger.Debug(ctx, "listing merge requests", "repo", q.Repository, "author", q.Author, "page", page)

	mrs, resp, err := c.client.MergeRequests.ListProjectMergeRequests(q.Repository, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, mapError(err, resp, "list merge requests", domainErrors.ErrRepositoryNotFound).
			WithContext("repository", q.Repository).
			WithContext("page", page)
	}

	out := &models.SearchPage{
		Items:    make([]models.SearchItem, 0, len(mrs)),
		Returned: len(mrs),
	}

	for _, mr := range mrs {
		if mr == nil || mr.MergedAt == nil || !q.Period.Contains(*mr.MergedAt) {
			continue
		}
		mergedAt := *mr.MergedAt
		out.Items = append(out.Items, models.SearchItem{
			Number:   mr.IID,
			Title:    mr.Title,
			URL:      mr.WebURL,
			Body:     mr.Description,
			MergedAt: &mergedAt,
		})
	}

	return out, nil
}

func (c *GitLabClient) GetMergedAt(ctx context.Context, repository string, number int) (*time.Time, error) {
	mr, resp, err := c.client.MergeRequests.GetMergeRequest(repository, number, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, mapError(err, resp, "get merge request", domainErrors.ErrPullRequestNotFound).
			WithContext("pr_number", number)
	}
	if mr.MergedAt == nil {
		return nil, nil
	}
	t := *mr.MergedAt
	return &t, nil
}

func (c *GitLabClient) GetDetails(ctx context.Context, repository string, number int) (*models.PRDetails, error) {
	mr, resp, err := c.client.MergeRequests.GetMergeRequest(repository, number, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, mapError(err, resp, "get merge request", domainErrors.ErrPullRequestNotFound).
			WithContext("pr_number", number)
	}

	details := &models.PRDetails{
		Number: number,
		Title:  mr.Title,
		URL:    mr.WebURL,
		Branch: mr.SourceBranch,
	}

	opts := &gitlab.GetMergeRequestCommitsOptions{PerPage: commitsPerPage}
	for {
		commits, resp, err := c.client.MergeRequests.GetMergeRequestCommits(repository, number, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, mapError(err, resp, "list merge request commits", domainErrors.ErrPullRequestNotFound).
				WithContext("pr_number", number)
		}

		// GitLab lists merge request commits newest first
		for i := len(commits) - 1; i >= 0; i-- {
			details.Commits = append(details.Commits, models.Commit{Message: commitTitle(commits[i])})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return details, nil
}

func (c *GitLabClient) CheckAccess(ctx context.Context, repository string) (*models.RepositoryInfo, error) {
	project, resp, err := c.client.Projects.GetProject(repository, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, mapError(err, resp, "get project", domainErrors.ErrRepositoryNotFound).
			WithContext("repository", repository)
	}

	return &models.RepositoryInfo{
		FullName:    project.PathWithNamespace,
		Private:     project.Visibility != gitlab.PublicVisibility,
		Description: project.Description,
		Stars:       project.StarCount,
		URL:         project.WebURL,
	}, nil
}

func commitTitle(commit *gitlab.Commit) string {
	if commit == nil {
		return ""
	}
	if commit.Title != "" {
		return commit.Title
	}
	line, _, _ := strings.Cut(commit.Message, "\n")
	return strings.TrimSpace(line)
}

func mapError(err error, resp *gitlab.Response, operation string, notFound *domainErrors.AppError) *domainErrors.AppError {
	if resp != nil && resp.Response != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return domainErrors.ErrTokenInvalid.WithError(err).
				WithContext("operation", operation).
				WithSuggestion("Generate a new token with the read_api scope in your GitLab user settings")
		case http.StatusForbidden:
			return domainErrors.ErrInsufficientPerms.WithError(err).WithContext("operation", operation)
		case http.StatusNotFound:
			return notFound.WithError(err).WithContext("operation", operation)
		case http.StatusTooManyRequests:
			appErr := domainErrors.ErrRateLimit.WithError(err).WithContext("operation", operation)
			if reset, convErr := strconv.ParseInt(resp.Header.Get("RateLimit-Reset"), 10, 64); convErr == nil {
				appErr = appErr.WithContext("reset_at", time.Unix(reset, 0))
			}
			return appErr
		}
	}
	return domainErrors.ErrRequestFailed.WithError(err).WithContext("operation", operation)
}
