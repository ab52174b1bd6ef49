package details

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thomas-vilte/prdelivery/internal/commands/completion_helper"
	"github.com/thomas-vilte/prdelivery/internal/commands/handler"
	"github.com/thomas-vilte/prdelivery/internal/config"
	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/thomas-vilte/prdelivery/internal/models"
	"github.com/thomas-vilte/prdelivery/internal/providers"
	"github.com/thomas-vilte/prdelivery/internal/regex"
	"github.com/thomas-vilte/prdelivery/internal/services"
	"github.com/thomas-vilte/prdelivery/internal/ui"
	"github.com/urfave/cli/v3"
)

type DetailsCommandFactory struct {
	newSource providers.SourceFactory
}

func NewDetailsCommandFactory(newSource providers.SourceFactory) *DetailsCommandFactory {
	return &DetailsCommandFactory{newSource: newSource}
}

func (f *DetailsCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "details",
		Aliases:       []string{"detalhes"},
		Usage:         t.GetMessage("details_command_usage", 0, nil),
		ArgsUsage:     "<number> [number...]",
		Flags:         handler.SourceFlags(t),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        f.detailsAction(t, cfg),
	}
}

func (f *DetailsCommandFactory) detailsAction(t *i18n.Translations, cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		out := handler.Output(cmd)

		handler.ApplyFlags(cmd, cfg)
		if cfg.Repository == "" {
			return domainErrors.ErrMissingRepository
		}
		if !regex.RepositoryName.MatchString(cfg.Repository) {
			return domainErrors.ErrInvalidRepository.WithContext("repository", cfg.Repository)
		}

		numbers, err := ParseNumbers(cmd.Args().Slice())
		if err != nil {
			return err
		}

		source, err := f.newSource(cfg)
		if err != nil {
			return err
		}
		delivery := services.NewDeliveryService(services.WithDeliverySource(source))

		ui.PrintInfo(out, t.GetMessage("fetch_details", 0, map[string]interface{}{"Count": len(numbers)}))

		var lastErr error
		found := 0
		for _, res := range delivery.FetchDetails(ctx, cfg.Repository, numbers) {
			if res.Err != nil {
				lastErr = res.Err
				ui.PrintError(out, t.GetMessage("details_failed", 0, map[string]interface{}{
					"Number": res.Number,
					"Error":  res.Err.Error(),
				}))
				continue
			}
			found++
			printDetails(out, t, res.Details)
		}

		if found == 0 {
			return lastErr
		}
		return nil
	}
}

// ParseNumbers reads pull request numbers from the arguments. Commas are
// accepted as separators too.
func ParseNumbers(args []string) ([]int, error) {
	var numbers []int
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimPrefix(strings.TrimSpace(field), "#")
			if field == "" {
				continue
			}
			n, err := strconv.Atoi(field)
			if err != nil || n <= 0 {
				return nil, domainErrors.ErrInvalidPRNumber.WithContext("value", field)
			}
			numbers = append(numbers, n)
		}
	}
	if len(numbers) == 0 {
		return nil, domainErrors.ErrInvalidPRNumber
	}
	return numbers, nil
}

func printDetails(out io.Writer, t *i18n.Translations, d *models.PRDetails) {
	ui.PrintSectionBanner(out, fmt.Sprintf("PR #%d: %s", d.Number, d.Title))
	if d.URL != "" {
		ui.PrintKeyValue(out, "Link", d.URL)
	}
	ui.PrintKeyValue(out, t.GetMessage("details_branch", 0, nil), d.Branch)
	ui.PrintKeyValue(out, t.GetMessage("details_commits", 0, nil), strconv.Itoa(len(d.Commits)))
	for _, c := range d.Commits {
		_, _ = fmt.Fprintf(out, "     - %s\n", c.Message)
	}
}
