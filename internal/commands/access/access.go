package access

import (
	"context"
	"errors"
	"strconv"

	"github.com/thomas-vilte/prdelivery/internal/commands/completion_helper"
	"github.com/thomas-vilte/prdelivery/internal/commands/handler"
	"github.com/thomas-vilte/prdelivery/internal/config"
	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/thomas-vilte/prdelivery/internal/providers"
	"github.com/thomas-vilte/prdelivery/internal/regex"
	"github.com/thomas-vilte/prdelivery/internal/ui"
	"github.com/urfave/cli/v3"
)

type AccessCommandFactory struct {
	newSource providers.SourceFactory
}

func NewAccessCommandFactory(newSource providers.SourceFactory) *AccessCommandFactory {
	return &AccessCommandFactory{newSource: newSource}
}

func (f *AccessCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "check-access",
		Aliases:       []string{"testar-acesso"},
		Usage:         t.GetMessage("check_access_command_usage", 0, nil),
		ArgsUsage:     "<owner/repo>",
		Flags:         handler.SourceFlags(t),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        f.checkAccessAction(t, cfg),
	}
}

func (f *AccessCommandFactory) checkAccessAction(t *i18n.Translations, cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		out := handler.Output(cmd)

		handler.ApplyFlags(cmd, cfg)
		if repo := cmd.Args().First(); repo != "" {
			cfg.Repository = repo
		}
		if cfg.Repository == "" {
			return domainErrors.ErrMissingRepository
		}
		if !regex.RepositoryName.MatchString(cfg.Repository) {
			return domainErrors.ErrInvalidRepository.WithContext("repository", cfg.Repository)
		}

		source, err := f.newSource(cfg)
		if err != nil {
			return err
		}

		ui.PrintInfo(out, t.GetMessage("access_checking", 0, map[string]interface{}{"Repository": cfg.Repository}))

		info, err := source.CheckAccess(ctx, cfg.Repository)
		if err != nil {
			if hint := accessHint(err); hint != "" {
				ui.PrintWarning(out, t.GetMessage(hint, 0, nil))
			}
			return err
		}

		description := info.Description
		if description == "" {
			description = "N/A"
		}
		private := t.GetMessage("no", 0, nil)
		if info.Private {
			private = t.GetMessage("yes", 0, nil)
		}

		ui.PrintSuccess(out, t.GetMessage("access_ok", 0, nil))
		ui.PrintKeyValue(out, t.GetMessage("access_name", 0, nil), info.FullName)
		ui.PrintKeyValue(out, t.GetMessage("access_private", 0, nil), private)
		ui.PrintKeyValue(out, t.GetMessage("access_description", 0, nil), description)
		ui.PrintKeyValue(out, t.GetMessage("access_stars", 0, nil), strconv.Itoa(info.Stars))
		return nil
	}
}

func accessHint(err error) string {
	switch {
	case errors.Is(err, domainErrors.ErrRepositoryNotFound):
		return "access_hint_not_found"
	case errors.Is(err, domainErrors.ErrInsufficientPerms),
		errors.Is(err, domainErrors.ErrTokenInvalid),
		errors.Is(err, domainErrors.ErrRateLimit):
		return "access_hint_forbidden"
	}
	return ""
}
