package html

import (
	"context"
	"errors"
	"os"

	"github.com/thomas-vilte/prdelivery/internal/commands/completion_helper"
	"github.com/thomas-vilte/prdelivery/internal/commands/handler"
	"github.com/thomas-vilte/prdelivery/internal/config"
	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/thomas-vilte/prdelivery/internal/logger"
	"github.com/thomas-vilte/prdelivery/internal/report"
	"github.com/thomas-vilte/prdelivery/internal/ui"
	"github.com/urfave/cli/v3"
)

// fallbackOutput is used when an input is given without an output.
const fallbackOutput = "resultado.html"

type HTMLCommandFactory struct{}

func NewHTMLCommandFactory() *HTMLCommandFactory {
	return &HTMLCommandFactory{}
}

func (f *HTMLCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "html",
		Aliases:       []string{"gerar-html"},
		Usage:         t.GetMessage("html_command_usage", 0, nil),
		ArgsUsage:     "[input.txt] [output.html]",
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        htmlAction(t, cfg),
	}
}

func htmlAction(t *i18n.Translations, cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		out := handler.Output(cmd)
		input, output := ResolvePaths(cmd.Args().Get(0), cmd.Args().Get(1), cfg)

		run, err := report.ParseFile(ctx, input)
		if err != nil {
			if errors.Is(err, domainErrors.ErrReportNotFound) {
				ui.PrintError(out, t.GetMessage("html_input_missing", 0, map[string]interface{}{"Path": input}))
			}
			return err
		}
		logger.Debug(ctx, "report parsed", "path", input, "authors", len(run.Authors), "prs", run.TotalPRs())

		ui.PrintInfo(out, t.GetMessage("html_parsed", 0, map[string]interface{}{
			"Authors": len(run.Authors),
			"PRs":     run.TotalPRs(),
			"Path":    input,
		}))

		renderer, err := report.NewHTMLRenderer(t)
		if err != nil {
			return err
		}
		page, err := renderer.Render(run)
		if err != nil {
			return err
		}
		if err := report.WriteFile(output, page); err != nil {
			return err
		}

		ui.PrintSuccess(out, t.GetMessage("html_saved", 0, map[string]interface{}{"Path": output}))
		return nil
	}
}

// ResolvePaths picks the input and output files. Without arguments the text
// report of the configuration is read; when it exists and no output was given,
// the HTML goes to the configured path (docs/index.html by default).
func ResolvePaths(input, output string, cfg *config.Config) (string, string) {
	if input == "" {
		input = cfg.Output.Text
	}
	if output != "" {
		return input, output
	}
	if input == cfg.Output.Text {
		if _, err := os.Stat(input); err == nil {
			return input, cfg.Output.HTML
		}
	}
	return input, fallbackOutput
}
