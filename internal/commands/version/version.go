package version

import (
	"context"
	"fmt"

	"github.com/thomas-vilte/prdelivery/internal/commands/handler"
	"github.com/thomas-vilte/prdelivery/internal/config"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/thomas-vilte/prdelivery/internal/version"
	"github.com/urfave/cli/v3"
)

type VersionCommandFactory struct{}

func NewVersionCommandFactory() *VersionCommandFactory {
	return &VersionCommandFactory{}
}

func (f *VersionCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: t.GetMessage("version_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintln(handler.Output(cmd), t.GetMessage("version_output", 0, map[string]interface{}{
				"Version": version.FullVersion(),
			}))
			return err
		},
	}
}
