package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v80/github"
	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/logger"
	"github.com/thomas-vilte/prdelivery/internal/models"
	"github.com/thomas-vilte/prdelivery/internal/vcs"
	"golang.org/x/oauth2"
)

var _ vcs.PullRequestSource = (*GitHubClient)(nil)

const (
	providerName   = "github"
	defaultWebURL  = "https://github.com"
	commitsPerPage = 100
)

type SearchService interface {
	Issues(ctx context.Context, query string, opts *github.SearchOptions) (*github.IssuesSearchResult, *github.Response, error)
}

type PullRequestsService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error)
	ListCommits(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.RepositoryCommit, *github.Response, error)
}

type RepositoriesService interface {
	Get(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error)
}

type GitHubClient struct {
	searchService SearchService
	prService     PullRequestsService
	repoService   RepositoriesService
	webURL        string
}

// NewGitHubClient creates a client for api.github.com, or for the API at
// baseURL when it is set (GitHub Enterprise or a test server). An empty token
// makes anonymous requests with the lower public rate limit.
func NewGitHubClient(token, baseURL string) (*GitHubClient, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	webURL := defaultWebURL

	if baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, domainErrors.ErrConfigInvalid.WithError(err).WithContext("base_url", baseURL)
		}
		client.BaseURL = u
		webURL = strings.TrimSuffix(strings.TrimSuffix(u.String(), "/"), "/api/v3")
	}

	return &GitHubClient{
		searchService: client.Search,
		prService:     client.PullRequests,
		repoService:   client.Repositories,
		webURL:        webURL,
	}, nil
}

func NewGitHubClientWithServices(
	searchService SearchService,
	prService PullRequestsService,
	repoService RepositoriesService,
) *GitHubClient {
	return &GitHubClient{
		searchService: searchService,
		prService:     prService,
		repoService:   repoService,
		webURL:        defaultWebURL,
	}
}

func (ghc *GitHubClient) Name() string {
	return providerName
}

// BuildQuery returns the search qualifiers selecting the merged pull requests of q.
func BuildQuery(q models.SearchQuery) string {
	return fmt.Sprintf("is:pr repo:%s is:merged base:%s merged:%s..%s author:%s",
		q.Repository,
		q.BaseBranch,
		q.Period.Start.Format(models.DateLayout),
		q.Period.End.Format(models.DateLayout),
		q.Author,
	)
}

func (ghc *GitHubClient) SearchURL(q models.SearchQuery) string {
	return ghc.webURL + "/search?q=" + url.QueryEscape(BuildQuery(q)) + "&type=pullrequests"
}

func (ghc *GitHubClient) SearchMerged(ctx context.Context, q models.SearchQuery, page, perPage int) (*models.SearchPage, error) {
	opts := &github.SearchOptions{
		Sort:  "merged",
		Order: "desc",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	query := BuildQuery(q)
	logger.Debug(ctx, "searching pull requests", "query", query, "page", page)

	result, resp, err := ghc.searchService.Issues(ctx, query, opts)
	if err != nil {
		return nil, ghc.mapError(err, resp, "search pull requests", domainErrors.ErrRepositoryNotFound).
			WithContext("repository", q.Repository).
			WithContext("page", page)
	}

	out := &models.SearchPage{
		Items:    make([]models.SearchItem, 0, len(result.Issues)),
		Returned: len(result.Issues),
	}
	if result.Total != nil {
		total := result.GetTotal()
		out.Total = &total
	}

	for _, issue := range result.Issues {
		if issue == nil {
			continue
		}
		out.Items = append(out.Items, models.SearchItem{
			Number:   issue.GetNumber(),
			Title:    issue.GetTitle(),
			URL:      issue.GetHTMLURL(),
			Body:     issue.GetBody(),
			MergedAt: issueMergedAt(issue),
		})
	}

	return out, nil
}

// issueMergedAt prefers the merge timestamp of the pull request links and falls
// back to the close time, which equals the merge time for merged pull requests.
func issueMergedAt(issue *github.Issue) *time.Time {
	if links := issue.GetPullRequestLinks(); links != nil {
		if ts := links.GetMergedAt(); !ts.IsZero() {
			t := ts.Time
			return &t
		}
	}
	if ts := issue.GetClosedAt(); !ts.IsZero() {
		t := ts.Time
		return &t
	}
	return nil
}

func (ghc *GitHubClient) GetMergedAt(ctx context.Context, repository string, number int) (*time.Time, error) {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}

	pr, resp, err := ghc.prService.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, ghc.mapError(err, resp, "get pull request", domainErrors.ErrPullRequestNotFound).
			WithContext("pr_number", number)
	}

	if ts := pr.GetMergedAt(); !ts.IsZero() {
		t := ts.Time
		return &t, nil
	}
	return nil, nil
}

func (ghc *GitHubClient) GetDetails(ctx context.Context, repository string, number int) (*models.PRDetails, error) {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}

	pr, resp, err := ghc.prService.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, ghc.mapError(err, resp, "get pull request", domainErrors.ErrPullRequestNotFound).
			WithContext("pr_number", number)
	}

	details := &models.PRDetails{
		Number: number,
		Title:  pr.GetTitle(),
		URL:    pr.GetHTMLURL(),
		Branch: pr.GetHead().GetRef(),
	}

	opts := &github.ListOptions{PerPage: commitsPerPage}
	for {
		commits, resp, err := ghc.prService.ListCommits(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, ghc.mapError(err, resp, "list pull request commits", domainErrors.ErrPullRequestNotFound).
				WithContext("pr_number", number)
		}

		for _, c := range commits {
			details.Commits = append(details.Commits, models.Commit{
				Message: firstLine(c.GetCommit().GetMessage()),
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return details, nil
}

func (ghc *GitHubClient) CheckAccess(ctx context.Context, repository string) (*models.RepositoryInfo, error) {
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, err
	}

	r, resp, err := ghc.repoService.Get(ctx, owner, repo)
	if err != nil {
		return nil, ghc.mapError(err, resp, "get repository", domainErrors.ErrRepositoryNotFound).
			WithContext("repository", repository)
	}

	return &models.RepositoryInfo{
		FullName:    r.GetFullName(),
		Private:     r.GetPrivate(),
		Description: r.GetDescription(),
		Stars:       r.GetStargazersCount(),
		URL:         r.GetHTMLURL(),
	}, nil
}

func (ghc *GitHubClient) mapError(err error, resp *github.Response, operation string, notFound *domainErrors.AppError) *domainErrors.AppError {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return domainErrors.ErrRateLimit.
			WithError(err).
			WithContext("operation", operation).
			WithContext("reset_at", rateErr.Rate.Reset.Time)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		appErr := domainErrors.ErrRateLimit.WithError(err).WithContext("operation", operation)
		if abuseErr.RetryAfter != nil {
			appErr = appErr.WithContext("reset_at", time.Now().Add(*abuseErr.RetryAfter))
		}
		return appErr
	}

	if resp != nil && resp.Response != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return domainErrors.ErrTokenInvalid.WithError(err).WithContext("operation", operation)
		case http.StatusForbidden:
			return domainErrors.ErrInsufficientPerms.WithError(err).WithContext("operation", operation)
		case http.StatusNotFound:
			return notFound.WithError(err).WithContext("operation", operation)
		case http.StatusTooManyRequests:
			return domainErrors.ErrRateLimit.
				WithError(err).
				WithContext("operation", operation).
				WithContext("retry_after", resp.Header.Get("Retry-After"))
		}
	}

	return domainErrors.ErrRequestFailed.WithError(err).WithContext("operation", operation)
}

func splitRepository(repository string) (string, string, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", domainErrors.ErrInvalidRepository.WithContext("repository", repository)
	}
	return owner, repo, nil
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}
