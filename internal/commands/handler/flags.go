package handler

import (
	"io"
	"os"
	"strings"

	"github.com/thomas-vilte/prdelivery/internal/config"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/urfave/cli/v3"
)

// SourceFlags are the flags every command talking to a provider accepts.
func SourceFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   t.GetMessage("flag_repo_usage", 0, nil),
		},
		&cli.StringFlag{
			Name:  "token",
			Usage: t.GetMessage("flag_token_usage", 0, nil),
		},
		&cli.StringFlag{
			Name:  "provider",
			Usage: t.GetMessage("flag_provider_usage", 0, nil),
		},
	}
}

// ApplyFlags copies the flags set on the command line over cfg. Flags the
// command does not define are never set and leave cfg untouched.
func ApplyFlags(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("provider") {
		cfg.Provider = strings.ToLower(strings.TrimSpace(cmd.String("provider")))
	}
	if cmd.IsSet("repo") {
		cfg.Repository = strings.TrimSpace(cmd.String("repo"))
	}
	if cmd.IsSet("base") {
		cfg.BaseBranch = strings.TrimSpace(cmd.String("base"))
	}
	if cmd.IsSet("token") {
		cfg.SetToken(cmd.String("token"))
	}
	if cmd.IsSet("authors-file") {
		cfg.AuthorsFile = cmd.String("authors-file")
	}
	if cmd.IsSet("output") {
		cfg.Output.Text = cmd.String("output")
	}
	if cmd.IsSet("page-delay") {
		cfg.PageDelay = cmd.Duration("page-delay")
	}
}

// Output is where a command prints its console messages.
func Output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
