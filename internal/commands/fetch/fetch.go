package fetch

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/thomas-vilte/prdelivery/internal/authors"
	"github.com/thomas-vilte/prdelivery/internal/commands/completion_helper"
	"github.com/thomas-vilte/prdelivery/internal/commands/handler"
	"github.com/thomas-vilte/prdelivery/internal/config"
	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/thomas-vilte/prdelivery/internal/logger"
	"github.com/thomas-vilte/prdelivery/internal/models"
	"github.com/thomas-vilte/prdelivery/internal/providers"
	"github.com/thomas-vilte/prdelivery/internal/regex"
	"github.com/thomas-vilte/prdelivery/internal/report"
	"github.com/thomas-vilte/prdelivery/internal/services"
	"github.com/thomas-vilte/prdelivery/internal/ui"
	"github.com/urfave/cli/v3"
)

type FetchCommandFactory struct {
	newSource providers.SourceFactory
}

func NewFetchCommandFactory(newSource providers.SourceFactory) *FetchCommandFactory {
	return &FetchCommandFactory{newSource: newSource}
}

func (f *FetchCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "fetch",
		Aliases: []string{"buscar"},
		Usage:   t.GetMessage("fetch_command_usage", 0, nil),
		Flags: append(handler.SourceFlags(t),
			&cli.StringSliceFlag{
				Name:    "author",
				Aliases: []string{"a"},
				Usage:   t.GetMessage("flag_author_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:    "authors-file",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("flag_authors_file_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:    "since",
				Aliases: []string{"s"},
				Usage:   t.GetMessage("flag_since_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:    "until",
				Aliases: []string{"u"},
				Usage:   t.GetMessage("flag_until_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:    "base",
				Aliases: []string{"b"},
				Usage:   t.GetMessage("flag_base_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   t.GetMessage("flag_output_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:  "html",
				Usage: t.GetMessage("flag_html_usage", 0, nil),
			},
			&cli.IntSliceFlag{
				Name:    "details",
				Aliases: []string{"d"},
				Usage:   t.GetMessage("flag_details_usage", 0, nil),
			},
			&cli.DurationFlag{
				Name:  "page-delay",
				Usage: t.GetMessage("flag_page_delay_usage", 0, nil),
			},
		),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        f.fetchAction(t, cfg),
	}
}

func (f *FetchCommandFactory) fetchAction(t *i18n.Translations, cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		out := handler.Output(cmd)

		handler.ApplyFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		req, err := BuildRequest(cmd, cfg)
		if err != nil {
			return err
		}

		source, err := f.newSource(cfg)
		if err != nil {
			return err
		}
		logger.Debug(ctx, "pull request source ready", "provider", source.Name(), "token", cfg.Token() != "")

		fetcher := services.NewFetcher(
			services.WithFetchSource(source),
			services.WithPageSize(cfg.PageSize),
			services.WithPageDelay(cfg.PageDelay),
			services.WithDescriptionBudget(cfg.DescriptionBudget),
		)
		delivery := services.NewDeliveryService(
			services.WithDeliveryFetcher(fetcher),
			services.WithDeliverySource(source),
		)

		ui.PrintInfo(out, t.GetMessage("fetch_header", 0, map[string]interface{}{
			"Count":      len(req.Authors),
			"Repository": req.Repository,
			"Period":     req.Period.String(),
			"Branch":     req.BaseBranch,
		}))

		spinner := ui.NewSmartSpinnerTo(out, "")
		spinner.Start()
		run, runErr := delivery.Run(ctx, req, progressPrinter(spinner, t))
		spinner.Stop()
		if runErr != nil {
			logger.Warn(ctx, "run interrupted, saving partial report", "error", runErr)
		}

		if err := writeReports(ctx, out, cmd, cfg, t, run); err != nil {
			return err
		}
		return runErr
	}
}

// BuildRequest resolves the repository, authors and period of a fetch run.
func BuildRequest(cmd *cli.Command, cfg *config.Config) (services.DeliveryRequest, error) {
	if cfg.Repository == "" {
		return services.DeliveryRequest{}, domainErrors.ErrMissingRepository
	}
	if !regex.RepositoryName.MatchString(cfg.Repository) {
		return services.DeliveryRequest{}, domainErrors.ErrInvalidRepository.WithContext("repository", cfg.Repository)
	}

	reqs, err := resolveAuthors(cmd.StringSlice("author"), cfg.AuthorsFile)
	if err != nil {
		return services.DeliveryRequest{}, err
	}
	if len(reqs) == 0 {
		return services.DeliveryRequest{}, domainErrors.ErrMissingAuthors
	}

	period, err := resolvePeriod(cmd.String("since"), cmd.String("until"), reqs)
	if err != nil {
		return services.DeliveryRequest{}, err
	}

	var details []int
	for _, n := range cmd.IntSlice("details") {
		details = append(details, int(n))
	}

	observations := cfg.Observations
	if len(observations) == 0 {
		observations = report.DefaultObservations()
	}

	return services.DeliveryRequest{
		Repository:   cfg.Repository,
		BaseBranch:   cfg.BaseBranch,
		Period:       period,
		Authors:      reqs,
		Details:      details,
		Observations: observations,
	}, nil
}

func resolveAuthors(flagAuthors []string, file string) ([]services.AuthorRequest, error) {
	var handles []string
	for _, a := range flagAuthors {
		handles = append(handles, strings.Split(a, ",")...)
	}
	if reqs := authors.FromHandles(handles); len(reqs) > 0 {
		return reqs, nil
	}

	if file == "" {
		if _, err := os.Stat(authors.DefaultFile); err != nil {
			return nil, nil
		}
		file = authors.DefaultFile
	}
	return authors.Load(file)
}

// resolvePeriod uses --since/--until when given. Without them every author
// must carry its own period and the run covers their span.
func resolvePeriod(since, until string, reqs []services.AuthorRequest) (models.Period, error) {
	if since != "" || until != "" {
		return authors.ParsePeriod(since, until)
	}
	if span, ok := authors.Span(reqs); ok {
		return span, nil
	}
	return models.Period{}, domainErrors.ErrInvalidDate.
		WithSuggestion("Pass --since and --until as YYYY-MM-DD, or use a CSV authors file with data_inicio and data_fim")
}

func progressPrinter(spinner *ui.SmartSpinner, t *i18n.Translations) func(services.AuthorProgress) {
	return func(p services.AuthorProgress) {
		data := map[string]interface{}{
			"Index":   p.Index,
			"Total":   p.Count,
			"Author":  p.Author,
			"Page":    p.Page,
			"Pages":   p.EstimatedPages,
			"Fetched": p.Fetched,
			"Count":   p.Fetched,
		}

		switch p.Type {
		case models.FetchProgressPage:
			if p.EstimatedPages > 0 {
				spinner.UpdateMessage(t.GetMessage("fetch_progress_page", 0, data))
			} else {
				spinner.UpdateMessage(t.GetMessage("fetch_progress_unknown", 0, data))
			}
		case models.FetchProgressDone:
			spinner.Success(t.GetMessage("fetch_author_done", 0, data))
			spinner.Start()
		case models.FetchProgressRateLimited:
			data["ResetAt"] = "?"
			if p.ResetAt != nil {
				data["ResetAt"] = p.ResetAt.Local().Format(time.DateTime)
			}
			spinner.Warning(t.GetMessage("fetch_rate_limited", 0, data))
			spinner.Start()
		case models.FetchProgressError:
			data["Error"] = errorText(p.Error)
			spinner.Error(t.GetMessage("fetch_author_error", 0, data))
			spinner.Start()
		}
	}
}

func writeReports(ctx context.Context, out io.Writer, cmd *cli.Command, cfg *config.Config, t *i18n.Translations, run *models.RunReport) error {
	if err := report.WriteFile(cfg.Output.Text, report.RenderText(run)); err != nil {
		return err
	}
	logger.Info(ctx, "text report written", "path", cfg.Output.Text)

	if path := cmd.String("html"); path != "" {
		renderer, err := report.NewHTMLRenderer(t)
		if err != nil {
			return err
		}
		html, err := renderer.Render(run)
		if err != nil {
			return err
		}
		if err := report.WriteFile(path, html); err != nil {
			return err
		}
		ui.PrintSuccess(out, t.GetMessage("html_saved", 0, map[string]interface{}{"Path": path}))
	}

	_, _ = io.WriteString(out, "\n"+ui.RenderSummary(run, t)+"\n\n")
	ui.PrintSuccess(out, t.GetMessage("report_saved", 0, map[string]interface{}{"Path": cfg.Output.Text}))
	ui.PrintInfo(out, t.GetMessage("total_prs_found", 0, map[string]interface{}{"Count": run.TotalPRs()}))
	return nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
