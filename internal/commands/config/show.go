package config

import (
	"context"
	"strconv"
	"strings"

	"github.com/thomas-vilte/prdelivery/internal/commands/handler"
	"github.com/thomas-vilte/prdelivery/internal/config"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/thomas-vilte/prdelivery/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config_show_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			out := handler.Output(command)

			tokenState := func(token string) string {
				if token != "" {
					return t.GetMessage("token_set", 0, nil)
				}
				return t.GetMessage("token_unset", 0, nil)
			}
			orDash := func(s string) string {
				if strings.TrimSpace(s) == "" {
					return "-"
				}
				return s
			}

			ui.PrintSectionBanner(out, t.GetMessage("config_show_title", 0, nil))
			ui.PrintKeyValue(out, "file", orDash(cfg.PathFile))
			ui.PrintKeyValue(out, "provider", cfg.Provider)
			ui.PrintKeyValue(out, "repository", orDash(cfg.Repository))
			ui.PrintKeyValue(out, "base_branch", cfg.BaseBranch)
			ui.PrintKeyValue(out, "language", cfg.Language)
			ui.PrintKeyValue(out, "page_size", strconv.Itoa(cfg.PageSize))
			ui.PrintKeyValue(out, "page_delay", cfg.PageDelay.String())
			ui.PrintKeyValue(out, "description_budget", strconv.Itoa(cfg.DescriptionBudget))
			ui.PrintKeyValue(out, "authors_file", orDash(cfg.AuthorsFile))
			ui.PrintKeyValue(out, "output.text", cfg.Output.Text)
			ui.PrintKeyValue(out, "output.html", cfg.Output.HTML)
			ui.PrintKeyValue(out, "github.token", tokenState(cfg.GitHub.Token))
			ui.PrintKeyValue(out, "github.base_url", orDash(cfg.GitHub.BaseURL))
			ui.PrintKeyValue(out, "gitlab.token", tokenState(cfg.GitLab.Token))
			ui.PrintKeyValue(out, "gitlab.base_url", orDash(cfg.GitLab.BaseURL))
			ui.PrintKeyValue(out, "observations", strconv.Itoa(len(cfg.Observations)))
			return nil
		},
	}
}
