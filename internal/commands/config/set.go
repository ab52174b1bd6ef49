package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/thomas-vilte/prdelivery/internal/commands/handler"
	"github.com/thomas-vilte/prdelivery/internal/config"
	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/thomas-vilte/prdelivery/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newSetCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     t.GetMessage("config_set_usage", 0, nil),
		ArgsUsage: "<key> <value>",
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() < 2 {
				return domainErrors.ErrConfigInvalid.
					WithError(fmt.Errorf("expected a key and a value")).
					WithSuggestion("Run: prdelivery config set repository owner/repo")
			}
			key := strings.ToLower(command.Args().Get(0))
			value := command.Args().Get(1)

			// The file is reloaded so values coming from the environment are not persisted.
			target, err := config.LoadOrDefault(cfg.PathFile)
			if err != nil {
				return err
			}
			if err := SetValue(target, key, value); err != nil {
				return err
			}
			if err := config.Save(target); err != nil {
				return err
			}

			ui.PrintSuccess(handler.Output(command), t.GetMessage("config_set_success", 0, map[string]interface{}{
				"Key":   key,
				"Value": value,
				"Path":  target.PathFile,
			}))
			return nil
		},
	}
}

// SetValue assigns one configuration key. Range checks are left to Validate.
func SetValue(cfg *config.Config, key, value string) error {
	invalid := func(err error) error {
		return domainErrors.ErrConfigInvalid.WithError(err).WithContext("key", key)
	}

	switch key {
	case "provider":
		cfg.Provider = strings.ToLower(value)
	case "repository", "repo":
		cfg.Repository = value
	case "base_branch", "base":
		cfg.BaseBranch = value
	case "language", "lang":
		cfg.Language = value
	case "page_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return invalid(err)
		}
		cfg.PageSize = n
	case "page_delay":
		d, err := time.ParseDuration(value)
		if err != nil {
			return invalid(err)
		}
		cfg.PageDelay = d
	case "description_budget":
		n, err := strconv.Atoi(value)
		if err != nil {
			return invalid(err)
		}
		cfg.DescriptionBudget = n
	case "authors_file":
		cfg.AuthorsFile = value
	case "output.text":
		cfg.Output.Text = value
	case "output.html":
		cfg.Output.HTML = value
	case "github.base_url":
		cfg.GitHub.BaseURL = value
	case "gitlab.base_url":
		cfg.GitLab.BaseURL = value
	default:
		return invalid(fmt.Errorf("unknown configuration key: %s", key))
	}
	return nil
}
