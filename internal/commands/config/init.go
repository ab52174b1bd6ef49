package config

import (
	"context"
	"os"

	"github.com/thomas-vilte/prdelivery/internal/commands/completion_helper"
	"github.com/thomas-vilte/prdelivery/internal/commands/handler"
	"github.com/thomas-vilte/prdelivery/internal/config"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/thomas-vilte/prdelivery/internal/logger"
	"github.com/thomas-vilte/prdelivery/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newInitCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: t.GetMessage("config_init_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("flag_force_usage", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        initConfigAction(cfg, t),
	}
}

// initConfigAction writes the defaults, keeping the repository and language
// already in effect so a .env driven setup carries over to the file.
func initConfigAction(cfg *config.Config, t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		out := handler.Output(command)
		path := cfg.PathFile
		if path == "" {
			path = config.DefaultFileName
		}

		if _, err := os.Stat(path); err == nil && !command.Bool("force") {
			ui.PrintWarning(out, t.GetMessage("config_exists", 0, map[string]interface{}{"Path": path}))
			return nil
		}

		fresh := config.DefaultConfig()
		fresh.PathFile = path
		fresh.Repository = cfg.Repository
		if config.IsSupportedLang(cfg.Language) {
			fresh.Language = cfg.Language
		}

		if err := config.Save(fresh); err != nil {
			return err
		}
		logger.Info(ctx, "configuration file written", "path", path)

		ui.PrintSuccess(out, t.GetMessage("config_saved", 0, map[string]interface{}{"Path": path}))
		return nil
	}
}
