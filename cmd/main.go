package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/thomas-vilte/prdelivery/internal/commands/access"
	"github.com/thomas-vilte/prdelivery/internal/commands/completion"
	configcmd "github.com/thomas-vilte/prdelivery/internal/commands/config"
	"github.com/thomas-vilte/prdelivery/internal/commands/details"
	"github.com/thomas-vilte/prdelivery/internal/commands/fetch"
	"github.com/thomas-vilte/prdelivery/internal/commands/html"
	"github.com/thomas-vilte/prdelivery/internal/commands/registry"
	versioncmd "github.com/thomas-vilte/prdelivery/internal/commands/version"
	"github.com/thomas-vilte/prdelivery/internal/config"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/thomas-vilte/prdelivery/internal/logger"
	"github.com/thomas-vilte/prdelivery/internal/providers"
	"github.com/thomas-vilte/prdelivery/internal/ui"
	"github.com/thomas-vilte/prdelivery/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	cfg := config.DefaultConfig()

	translations, err := i18n.NewTranslations(config.GetLocaleConfig(os.Getenv("PRDELIVERY_LANG")), "")
	if err != nil {
		log.Fatalf("Error loading translations: %v", err)
	}

	app, err := newApp(cfg, translations, providers.NewSource)
	if err != nil {
		log.Fatalf("Error starting the cli: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		stop()
		os.Exit(1)
	}
}

// newApp wires the command tree. cfg is filled in place by the Before hook so
// every command sees the file, environment and global flags.
func newApp(cfg *config.Config, t *i18n.Translations, newSource providers.SourceFactory) (*cli.Command, error) {
	reg := registry.NewRegistry(cfg, t)

	factories := []struct {
		name    string
		factory registry.CommandFactory
	}{
		{"fetch", fetch.NewFetchCommandFactory(newSource)},
		{"html", html.NewHTMLCommandFactory()},
		{"details", details.NewDetailsCommandFactory(newSource)},
		{"check-access", access.NewAccessCommandFactory(newSource)},
		{"config", configcmd.NewConfigCommandFactory()},
		{"completion", completion.NewCompletionCommandFactory()},
		{"version", versioncmd.NewVersionCommandFactory()},
	}
	for _, f := range factories {
		if err := reg.Register(f.name, f.factory); err != nil {
			return nil, err
		}
	}

	return &cli.Command{
		Name:                  "prdelivery",
		Usage:                 t.GetMessage("app_usage", 0, nil),
		Version:               version.Version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: config.DefaultFileName,
				Usage: t.GetMessage("flag_config_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: t.GetMessage("flag_env_file_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:  "lang",
				Usage: t.GetMessage("flag_lang_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: t.GetMessage("flag_debug_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: t.GetMessage("flag_verbose_usage", 0, nil),
			},
		},
		Before:   setup(cfg, t),
		Commands: reg.CreateCommands(),
	}, nil
}

// setup resolves the configuration with flags > environment > file > defaults.
// Command flags are applied later by each command.
func setup(cfg *config.Config, t *i18n.Translations) cli.BeforeFunc {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		l := logger.Initialize(cmd.Bool("debug"), cmd.Bool("verbose"))
		ctx = logger.WithLogger(ctx, l)

		if err := config.LoadEnvFile(cmd.String("env-file"), cmd.IsSet("env-file")); err != nil {
			return ctx, err
		}

		loaded, err := config.LoadOrDefault(cmd.String("config"))
		if err != nil {
			return ctx, err
		}
		*cfg = *loaded
		cfg.ApplyEnv()

		if cmd.IsSet("lang") {
			cfg.Language = cmd.String("lang")
		}
		if err := t.SetLanguage(config.GetLocaleConfig(cfg.Language)); err != nil {
			return ctx, err
		}

		logger.Debug(ctx, "configuration resolved",
			"file", cfg.PathFile,
			"provider", cfg.Provider,
			"repository", cfg.Repository,
			"language", cfg.Language)
		return ctx, nil
	}
}
