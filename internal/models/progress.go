package models

import "time"

// FetchProgressType identifies a progress event emitted while fetching an author.
type FetchProgressType string

const (
	FetchProgressPage        FetchProgressType = "page"
	FetchProgressDone        FetchProgressType = "done"
	FetchProgressRateLimited FetchProgressType = "rate_limited"
	FetchProgressError       FetchProgressType = "error"
)

// FetchProgress is reported synchronously after every page and when a fetch stops.
type FetchProgress struct {
	Type           FetchProgressType
	Author         string
	Page           int
	EstimatedPages int // 0 when the total is unknown
	Total          *int
	Fetched        int
	ResetAt        *time.Time // set on rate limit when the provider sent a reset time
	Error          error
}

// ProgressFunc receives fetch progress events.
type ProgressFunc func(FetchProgress)
