package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse(DateLayout, s)
	return t
}

func TestPeriod_String(t *testing.T) {
	p := Period{Start: day("2025-01-01"), End: day("2025-01-31")}
	assert.Equal(t, "2025-01-01 a 2025-01-31", p.String())
	assert.True(t, p.Contains(day("2025-01-31").Add(23*time.Hour)))
	assert.False(t, p.Contains(day("2025-02-01")))
}

func TestPullRequest_MergedDate(t *testing.T) {
	merged := day("2025-01-15")
	assert.Equal(t, "2025-01-15", PullRequest{MergedAt: &merged}.MergedDate())
	assert.Equal(t, UnknownDate, PullRequest{}.MergedDate())
}

func TestAuthorReport_Truncated(t *testing.T) {
	prs := make([]PullRequest, 30)
	total := 45
	r := AuthorReport{Author: "alice", PRs: prs, Total: &total}
	assert.Equal(t, 30, r.Count())
	assert.True(t, r.Truncated())

	exact := 30
	r.Total = &exact
	assert.False(t, r.Truncated())

	r.Total = nil
	assert.False(t, r.Truncated())
}

func TestRunReport_LookupAndSort(t *testing.T) {
	r := &RunReport{Authors: []AuthorReport{
		{Author: "carol", PRs: []PullRequest{{Number: 1}}},
		{Author: "alice", PRs: []PullRequest{{Number: 2}, {Number: 3}}},
	}}

	a, ok := r.Author("alice")
	require.True(t, ok)
	assert.Equal(t, 2, a.Count())

	_, ok = r.Author("bob")
	assert.False(t, ok)

	sorted := r.SortedAuthors()
	assert.Equal(t, "alice", sorted[0].Author)
	assert.Equal(t, "carol", r.Authors[0].Author)
	assert.Equal(t, 3, r.TotalPRs())
}

func TestRunReport_ApplyDetails(t *testing.T) {
	original := PullRequest{Number: 7, Title: "Fix"}
	r := &RunReport{
		Authors: []AuthorReport{{Author: "alice", PRs: []PullRequest{original, {Number: 8}}}},
		Details: []PRDetails{{Number: 7, Branch: "fix/login", Commits: []Commit{{Message: "fix login"}}}},
	}

	r.ApplyDetails()

	assert.Equal(t, "fix/login", r.Authors[0].PRs[0].Branch)
	assert.Len(t, r.Authors[0].PRs[0].Commits, 1)
	assert.False(t, r.Authors[0].PRs[1].HasDetails())
	assert.Empty(t, original.Branch)
}
