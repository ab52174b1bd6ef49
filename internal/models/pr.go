package models

import "time"

const (
	// DateLayout is the day-precision layout used everywhere a date is printed or parsed.
	DateLayout = "2006-01-02"
	// UnknownDate is printed in place of a merge date that could not be determined.
	UnknownDate = "N/A"
)

type (
	// PullRequest is one merged pull request as it appears in a report.
	PullRequest struct {
		Number      int
		Title       string
		URL         string
		MergedAt    *time.Time
		Description string
		Branch      string
		Commits     []Commit
	}

	// Commit holds the first line of a commit message.
	Commit struct {
		Message string
	}

	// PRDetails is the branch and commit list of a single pull request.
	PRDetails struct {
		Number  int
		Title   string
		URL     string
		Branch  string
		Commits []Commit
	}
)

// MergedDate returns the merge day or UnknownDate.
func (p PullRequest) MergedDate() string {
	if p.MergedAt == nil || p.MergedAt.IsZero() {
		return UnknownDate
	}
	return p.MergedAt.Format(DateLayout)
}

// WithDetails returns a copy of p carrying the branch and commits from d.
func (p PullRequest) WithDetails(d PRDetails) PullRequest {
	p.Branch = d.Branch
	p.Commits = append([]Commit(nil), d.Commits...)
	return p
}

func (p PullRequest) HasDetails() bool {
	return p.Branch != "" || len(p.Commits) > 0
}
