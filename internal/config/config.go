package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/regex"
	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		Provider          string        `yaml:"provider"`
		Repository        string        `yaml:"repository"`
		BaseBranch        string        `yaml:"base_branch"`
		Language          string        `yaml:"language"`
		PageSize          int           `yaml:"page_size"`
		PageDelay         time.Duration `yaml:"page_delay"`
		DescriptionBudget int           `yaml:"description_budget"`
		AuthorsFile       string        `yaml:"authors_file,omitempty"`
		Output            OutputConfig  `yaml:"output"`
		GitHub            VCSConfig     `yaml:"github"`
		GitLab            VCSConfig     `yaml:"gitlab"`
		Observations      []string      `yaml:"observations,omitempty"`

		PathFile string `yaml:"-"`
	}

	OutputConfig struct {
		Text string `yaml:"text"`
		HTML string `yaml:"html"`
	}

	VCSConfig struct {
		Token   string `yaml:"token,omitempty"`
		BaseURL string `yaml:"base_url,omitempty"`
	}
)

const (
	ProviderGitHub = "github"
	ProviderGitLab = "gitlab"

	DefaultFileName = "prdelivery.yaml"

	defaultBaseBranch        = "main"
	defaultPageSize          = 30
	defaultPageDelay         = 500 * time.Millisecond
	defaultDescriptionBudget = 200
	defaultTextOutput        = "resultado.txt"
	defaultHTMLOutput        = "docs/index.html"
	maxPageSize              = 100
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderGitHub,
		BaseBranch:        defaultBaseBranch,
		Language:          DefaultLang,
		PageSize:          defaultPageSize,
		PageDelay:         defaultPageDelay,
		DescriptionBudget: defaultDescriptionBudget,
		Output: OutputConfig{
			Text: defaultTextOutput,
			HTML: defaultHTMLOutput,
		},
	}
}

// Load reads the YAML file at path on top of the defaults. ${VAR} references
// are replaced with the environment value before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domainErrors.ErrConfigRead.WithError(err).WithContext("path", path)
	}

	data = regex.EnvVarReference.ReplaceAllFunc(data, func(match []byte) []byte {
		name := regex.EnvVarReference.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domainErrors.ErrConfigInvalid.WithError(err).WithContext("path", path)
	}
	cfg.PathFile = path

	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to the defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		cfg.PathFile = path
		return cfg, nil
	}
	return Load(path)
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing file is only an error
// when required is true.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return domainErrors.ErrConfigRead.WithError(err).WithContext("path", path)
	}
	slog.Debug("environment file loaded", "path", path)
	return nil
}

// ApplyEnv copies recognised environment variables over the file values.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("GITHUB_API_URL"); v != "" {
		c.GitHub.BaseURL = v
	}
	if v := os.Getenv("GITLAB_TOKEN"); v != "" {
		c.GitLab.Token = v
	}
	if v := os.Getenv("GITLAB_URL"); v != "" {
		c.GitLab.BaseURL = v
	}
	for _, key := range []string{"REPOSITORY", "REPOSITORIO"} {
		if v := os.Getenv(key); v != "" {
			c.Repository = v
			break
		}
	}
	if v := os.Getenv("BRANCH_BASE"); v != "" {
		c.BaseBranch = v
	}
	if v := os.Getenv("PRDELIVERY_LANG"); v != "" {
		c.Language = v
	}
}

// Token returns the token configured for the active provider.
func (c *Config) Token() string {
	if c.Provider == ProviderGitLab {
		return c.GitLab.Token
	}
	return c.GitHub.Token
}

// SetToken stores token for the active provider.
func (c *Config) SetToken(token string) {
	if c.Provider == ProviderGitLab {
		c.GitLab.Token = token
		return
	}
	c.GitHub.Token = token
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGitHub, ProviderGitLab:
	default:
		return domainErrors.ErrProviderNotSupported.WithContext("provider", c.Provider)
	}

	if !IsSupportedLang(c.Language) {
		return domainErrors.ErrLanguageNotSupported.WithContext("language", c.Language)
	}

	if c.PageSize <= 0 || c.PageSize > maxPageSize {
		return domainErrors.ErrConfigInvalid.
			WithError(fmt.Errorf("page_size must be between 1 and %d, got %d", maxPageSize, c.PageSize))
	}
	if c.PageDelay < 0 {
		return domainErrors.ErrConfigInvalid.WithError(fmt.Errorf("page_delay cannot be negative"))
	}
	if c.DescriptionBudget <= 0 {
		return domainErrors.ErrConfigInvalid.WithError(fmt.Errorf("description_budget must be greater than 0"))
	}
	if strings.TrimSpace(c.BaseBranch) == "" {
		return domainErrors.ErrConfigInvalid.WithError(fmt.Errorf("base_branch cannot be empty"))
	}

	if c.Repository != "" && !regex.RepositoryName.MatchString(c.Repository) {
		return domainErrors.ErrInvalidRepository.WithContext("repository", c.Repository)
	}

	return nil
}

// Save writes the configuration as YAML. Tokens are not written so that the
// file can be committed; they belong in the environment.
func Save(c *Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.PathFile == "" {
		return domainErrors.ErrConfigInvalid.WithError(errors.New("configuration file path is not defined"))
	}

	out := *c
	out.GitHub.Token = ""
	out.GitLab.Token = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return domainErrors.ErrConfigInvalid.WithError(err)
	}

	if dir := filepath.Dir(c.PathFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return domainErrors.ErrConfigRead.WithError(err).WithContext("path", c.PathFile)
		}
	}

	if err := os.WriteFile(c.PathFile, data, 0644); err != nil {
		return domainErrors.ErrConfigRead.WithError(err).WithContext("path", c.PathFile)
	}

	return nil
}
