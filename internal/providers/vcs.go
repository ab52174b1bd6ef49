package providers

import (
	"github.com/thomas-vilte/prdelivery/internal/config"
	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/vcs"
	"github.com/thomas-vilte/prdelivery/internal/vcs/github"
	"github.com/thomas-vilte/prdelivery/internal/vcs/gitlab"
)

// NewSource creates the pull request source for the configured provider. The
// clients are returned through explicit nil checks so a failed constructor never
// yields a typed nil interface.
func NewSource(cfg *config.Config) (vcs.PullRequestSource, error) {
	switch cfg.Provider {
	case config.ProviderGitHub, "":
		client, err := github.NewGitHubClient(cfg.GitHub.Token, cfg.GitHub.BaseURL)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderGitLab:
		client, err := gitlab.NewGitLabClient(cfg.GitLab.Token, gitlab.WithBaseURL(cfg.GitLab.BaseURL))
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, domainErrors.ErrProviderNotSupported.WithContext("provider", cfg.Provider)
	}
}

// SourceFactory builds the pull request source of a configuration. Commands
// take one so tests can point them at a fake server.
type SourceFactory func(cfg *config.Config) (vcs.PullRequestSource, error)
