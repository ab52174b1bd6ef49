package report

import (
	"time"

	"github.com/thomas-vilte/prdelivery/internal/models"
)

func day(s string) *time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func intPtr(n int) *int { return &n }

func sampleReport() *models.RunReport {
	return &models.RunReport{
		Repository:   "org/repo",
		Period:       models.Period{Start: *day("2025-01-01"), End: *day("2025-01-31")},
		BaseBranch:   "main",
		Observations: []string{"Primeira observação.", "Segunda\nobservação em duas linhas."},
		Authors: []models.AuthorReport{
			{
				Author:    "carol",
				Total:     intPtr(45),
				SearchURL: "https://github.com/search?q=is%3Apr+author%3Acarol&type=pullrequests",
				PRs: []models.PullRequest{
					{Number: 40, Title: "Add cache", URL: "https://github.com/org/repo/pull/40", MergedAt: day("2025-01-30"), Description: "Adds an LRU cache."},
				},
				RateLimited: true,
			},
			{
				Author: "alice",
				PRs: []models.PullRequest{
					{Number: 12, Title: "Fix — login", URL: "https://github.com/org/repo/pull/12", MergedAt: day("2025-01-20"), Description: "Fixes the login redirect."},
					{Number: 3, Title: "Docs", URL: "https://github.com/org/repo/pull/3", Description: ""},
				},
			},
			{
				Author:    "bob",
				ErrorNote: "request to the provider failed",
			},
		},
		Details: []models.PRDetails{
			{
				Number:  12,
				Title:   "Fix — login",
				URL:     "https://github.com/org/repo/pull/12",
				Branch:  "fix/login",
				Commits: []models.Commit{{Message: "fix redirect"}, {Message: "add test"}},
			},
		},
	}
}
