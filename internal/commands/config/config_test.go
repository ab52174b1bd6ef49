package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/prdelivery/internal/config"
	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/urfave/cli/v3"
)

func setupConfigTest(t *testing.T) (*config.Config, *i18n.Translations, string) {
	t.Helper()
	color.NoColor = true

	path := filepath.Join(t.TempDir(), "prdelivery.yaml")
	cfg := config.DefaultConfig()
	cfg.PathFile = path
	cfg.Language = config.LangEN

	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	return cfg, translations, path
}

func runConfig(t *testing.T, cfg *config.Config, translations *i18n.Translations, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := &cli.Command{
		Name:     "prdelivery",
		Writer:   &buf,
		Commands: []*cli.Command{NewConfigCommandFactory().CreateCommand(translations, cfg)},
	}
	err := app.Run(context.Background(), append([]string{"prdelivery", "config"}, args...))
	return buf.String(), err
}

func TestInitCommand(t *testing.T) {
	t.Run("should write the defaults without tokens", func(t *testing.T) {
		cfg, translations, path := setupConfigTest(t)
		cfg.Repository = "org/repo"
		cfg.GitHub.Token = "secret"

		out, err := runConfig(t, cfg, translations, "init")

		require.NoError(t, err)
		assert.Contains(t, out, "Configuration saved to "+path)

		saved, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "org/repo", saved.Repository)
		assert.Equal(t, config.LangEN, saved.Language)
		assert.Empty(t, saved.GitHub.Token)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "secret")
	})

	t.Run("should keep an existing file unless forced", func(t *testing.T) {
		cfg, translations, path := setupConfigTest(t)
		require.NoError(t, os.WriteFile(path, []byte("repository: keep/me\n"), 0644))

		out, err := runConfig(t, cfg, translations, "init")

		require.NoError(t, err)
		assert.Contains(t, out, "already exists")
		data, _ := os.ReadFile(path)
		assert.Equal(t, "repository: keep/me\n", string(data))

		_, err = runConfig(t, cfg, translations, "init", "--force")

		require.NoError(t, err)
		saved, err := config.Load(path)
		require.NoError(t, err)
		assert.Empty(t, saved.Repository)
	})
}

func TestShowCommand(t *testing.T) {
	cfg, translations, path := setupConfigTest(t)
	cfg.Repository = "org/repo"
	cfg.GitHub.Token = "secret"

	out, err := runConfig(t, cfg, translations, "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Effective configuration")
	assert.Contains(t, out, "file: "+path)
	assert.Contains(t, out, "repository: org/repo")
	assert.Contains(t, out, "page_delay: 500ms")
	assert.Contains(t, out, "github.token: set")
	assert.Contains(t, out, "gitlab.token: not set")
	assert.NotContains(t, out, "secret")
}

func TestSetCommand(t *testing.T) {
	t.Run("should persist a single key", func(t *testing.T) {
		cfg, translations, path := setupConfigTest(t)

		out, err := runConfig(t, cfg, translations, "set", "repository", "org/repo")

		require.NoError(t, err)
		assert.Contains(t, out, "repository = org/repo")
		saved, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "org/repo", saved.Repository)
	})

	t.Run("should reject values that fail validation", func(t *testing.T) {
		cfg, translations, path := setupConfigTest(t)

		_, err := runConfig(t, cfg, translations, "set", "page_size", "500")

		assert.ErrorIs(t, err, domainErrors.ErrConfigInvalid)
		assert.NoFileExists(t, path)
	})

	t.Run("should require a key and a value", func(t *testing.T) {
		cfg, translations, _ := setupConfigTest(t)

		_, err := runConfig(t, cfg, translations, "set", "repository")

		assert.ErrorIs(t, err, domainErrors.ErrConfigInvalid)
	})
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		check   func(t *testing.T, cfg *config.Config)
		wantErr bool
	}{
		{name: "page delay", key: "page_delay", value: "2s", check: func(t *testing.T, cfg *config.Config) {
			assert.Equal(t, 2*time.Second, cfg.PageDelay)
		}},
		{name: "page size", key: "page_size", value: "50", check: func(t *testing.T, cfg *config.Config) {
			assert.Equal(t, 50, cfg.PageSize)
		}},
		{name: "provider is lowercased", key: "provider", value: "GitLab", check: func(t *testing.T, cfg *config.Config) {
			assert.Equal(t, config.ProviderGitLab, cfg.Provider)
		}},
		{name: "html output", key: "output.html", value: "site/index.html", check: func(t *testing.T, cfg *config.Config) {
			assert.Equal(t, "site/index.html", cfg.Output.HTML)
		}},
		{name: "bad duration", key: "page_delay", value: "soon", wantErr: true},
		{name: "bad number", key: "description_budget", value: "many", wantErr: true},
		{name: "unknown key", key: "github.token", value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()

			err := SetValue(cfg, tt.key, tt.value)

			if tt.wantErr {
				assert.ErrorIs(t, err, domainErrors.ErrConfigInvalid)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
