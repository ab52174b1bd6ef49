package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeInput         ErrorType = "INPUT"
	TypeVCS           ErrorType = "VCS"
	TypeReport        ErrorType = "REPORT"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

// Error renders "TYPE: message (cause) - path"; the cause and path only when set.
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	if path, ok := e.Context["path"].(string); ok && path != "" {
		msg += " - " + path
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same kind of AppError. Decorated copies
// produced by WithError/WithContext keep matching their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// clone copies e so decorating a sentinel never mutates it.
func (e *AppError) clone() *AppError {
	c := *e
	if e.Context != nil {
		c.Context = make(map[string]interface{}, len(e.Context)+1)
		for k, v := range e.Context {
			c.Context[k] = v
		}
	}
	return &c
}

// WithError returns a copy of e wrapping err.
func (e *AppError) WithError(err error) *AppError {
	c := e.clone()
	c.Err = err
	return c
}

// WithContext returns a copy of e with key set in its context.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	c := e.clone()
	if c.Context == nil {
		c.Context = make(map[string]interface{}, 1)
	}
	c.Context[key] = value
	return c
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	c := e.clone()
	c.Suggestion = suggestion
	return c
}

func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{Type: t, Message: msg, Err: err}
}

// Configuration errors
var (
	ErrConfigRead = NewAppError(TypeConfiguration, "failed to read configuration file", nil).
			WithSuggestion("Check the file exists or create one with: prdelivery config init")

	ErrConfigInvalid = NewAppError(TypeConfiguration, "configuration is not valid", nil)

	ErrProviderNotSupported = NewAppError(TypeConfiguration, "VCS provider not supported", nil).
				WithSuggestion("Use one of: github, gitlab")

	ErrLanguageNotSupported = NewAppError(TypeConfiguration, "language not supported", nil).
				WithSuggestion("Use one of: pt, en, es")
)

// Input errors
var (
	ErrMissingRepository = NewAppError(TypeInput, "repository is required", nil).
				WithSuggestion("Pass --repo owner/repo or set REPOSITORY in your .env")

	ErrInvalidRepository = NewAppError(TypeInput, "repository must have the form owner/repo", nil)

	ErrMissingAuthors = NewAppError(TypeInput, "at least one author is required", nil).
				WithSuggestion("Pass --author <handle> or point --authors-file to a file with one handle per line")

	ErrInvalidDate = NewAppError(TypeInput, "date must use the YYYY-MM-DD format", nil)

	ErrInvalidPeriod = NewAppError(TypeInput, "start date is after end date", nil).
				WithSuggestion("Swap --since and --until")

	ErrAuthorsFileRead = NewAppError(TypeInput, "failed to read authors file", nil)

	ErrInvalidPRNumber = NewAppError(TypeInput, "pull request number must be a positive integer", nil).
				WithSuggestion("Pass the numbers separated by spaces, e.g. details 12 34")
)

// VCS errors
var (
	ErrRateLimit = NewAppError(TypeVCS, "API rate limit exceeded", nil).
			WithSuggestion("Wait for the reset time or use a personal access token for higher limits")

	ErrTokenInvalid = NewAppError(TypeVCS, "token is invalid or expired", nil).
			WithSuggestion("Generate a new token at: https://github.com/settings/tokens")

	ErrInsufficientPerms = NewAppError(TypeVCS, "token has insufficient permissions", nil).
				WithSuggestion("Private repositories need a token with the 'repo' scope")

	ErrRepositoryNotFound = NewAppError(TypeVCS, "repository not found", nil).
				WithSuggestion("Check the repository name and that your token can see it")

	ErrPullRequestNotFound = NewAppError(TypeVCS, "pull request not found", nil)

	ErrRequestFailed = NewAppError(TypeVCS, "request to the provider failed", nil)
)

// Report errors
var (
	ErrReportNotFound = NewAppError(TypeReport, "report file not found", nil).
				WithSuggestion("Run prdelivery fetch first or pass the path of a saved report")

	ErrReportWrite = NewAppError(TypeReport, "failed to write report", nil).
			WithSuggestion("Check the output directory exists and is writable")

	ErrReportRender = NewAppError(TypeReport, "failed to render report", nil)
)
