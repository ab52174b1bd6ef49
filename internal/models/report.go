package models

import (
	"sort"
	"time"
)

// Period is an inclusive range of days.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) String() string {
	return p.Start.Format(DateLayout) + " a " + p.End.Format(DateLayout)
}

func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

// Contains reports whether t falls on a day inside the period.
func (p Period) Contains(t time.Time) bool {
	day := t.Format(DateLayout)
	return day >= p.Start.Format(DateLayout) && day <= p.End.Format(DateLayout)
}

// SearchQuery selects the merged pull requests of one author.
type SearchQuery struct {
	Repository string
	Author     string
	Period     Period
	BaseBranch string
}

// SearchItem is a raw search hit before it is turned into a PullRequest.
type SearchItem struct {
	Number   int
	Title    string
	URL      string
	Body     string
	MergedAt *time.Time // nil when the hit carries no merge or close timestamp
}

// SearchPage is a single page returned by a provider search.
type SearchPage struct {
	Items []SearchItem
	// Returned is how many hits the provider sent for the page, counted before
	// any client-side filtering. Pagination decisions use it instead of len(Items).
	Returned int
	// Total is the provider-reported number of matches, nil when unknown.
	Total *int
}

// AuthorReport groups the pull requests found for one author.
type AuthorReport struct {
	Author      string
	PRs         []PullRequest
	Total       *int
	SearchURL   string
	RateLimited bool
	ErrorNote   string
}

func (a AuthorReport) Count() int {
	return len(a.PRs)
}

// Truncated is true only when the provider reported more matches than were retrieved.
func (a AuthorReport) Truncated() bool {
	return a.Total != nil && *a.Total > len(a.PRs)
}

// RunReport is everything needed to render a text or HTML report.
type RunReport struct {
	Repository   string
	Period       Period
	BaseBranch   string
	Observations []string
	Authors      []AuthorReport
	Details      []PRDetails
}

// Author looks up the report of a handle.
func (r *RunReport) Author(handle string) (*AuthorReport, bool) {
	for i := range r.Authors {
		if r.Authors[i].Author == handle {
			return &r.Authors[i], true
		}
	}
	return nil, false
}

// SortedAuthors returns the author reports ordered by handle.
func (r *RunReport) SortedAuthors() []AuthorReport {
	out := append([]AuthorReport(nil), r.Authors...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Author < out[j].Author
	})
	return out
}

func (r *RunReport) TotalPRs() int {
	total := 0
	for _, a := range r.Authors {
		total += a.Count()
	}
	return total
}

// ApplyDetails attaches branch and commits to every pull request whose number has details.
func (r *RunReport) ApplyDetails() {
	if len(r.Details) == 0 {
		return
	}
	byNumber := make(map[int]PRDetails, len(r.Details))
	for _, d := range r.Details {
		byNumber[d.Number] = d
	}
	for i := range r.Authors {
		prs := make([]PullRequest, len(r.Authors[i].PRs))
		for j, pr := range r.Authors[i].PRs {
			if d, ok := byNumber[pr.Number]; ok && pr.Number != 0 {
				pr = pr.WithDetails(d)
			}
			prs[j] = pr
		}
		r.Authors[i].PRs = prs
	}
}

// RepositoryInfo is what the access check prints about a repository.
type RepositoryInfo struct {
	FullName    string
	Private     bool
	Description string
	Stars       int
	URL         string
}
