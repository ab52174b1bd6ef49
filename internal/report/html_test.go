package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/thomas-vilte/prdelivery/internal/models"
	"github.com/thomas-vilte/prdelivery/internal/services"
)

func newRenderer(t *testing.T, lang string) *HTMLRenderer {
	t.Helper()
	trans, err := i18n.NewTranslations(lang, "")
	require.NoError(t, err)
	h, err := NewHTMLRenderer(trans)
	require.NoError(t, err)
	return h
}

func TestHTMLRenderer_Render(t *testing.T) {
	out, err := newRenderer(t, "pt").Render(sampleReport())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `<html lang="pt-BR">`)
	assert.Contains(t, out, "<span>org/repo</span>")
	assert.Contains(t, out, "<span>2025-01-01 a 2025-01-31</span>")
	assert.Contains(t, out, `<div class="pr-count">2 PRs</div>`)
	assert.Contains(t, out, `<a href="https://github.com/org/repo/pull/12" class="pr-link" target="_blank">#12</a>`)
	assert.Contains(t, out, `<div class="pr-date">merged: 2025-01-20</div>`)
	assert.Contains(t, out, `<div class="pr-date">merged: N/A</div>`)
	assert.Contains(t, out, "fix/login")
	assert.Contains(t, out, "<li>fix redirect</li>")
	assert.Contains(t, out, "Resultados incompletos: 45 no total, 1 exibidos.")
	assert.Contains(t, out, `<div class="stat-number">3</div>`)
	assert.Contains(t, out, "Total de PRs")

	assert.Less(t, strings.Index(out, ">alice<"), strings.Index(out, ">bob<"))
	assert.Less(t, strings.Index(out, ">bob<"), strings.Index(out, ">carol<"))
}

func TestHTMLRenderer_DetailsNotAppliedBeforehand(t *testing.T) {
	r := sampleReport()
	r.Details = append(r.Details, models.PRDetails{
		Number:  99,
		Title:   "Orphan change",
		URL:     "https://github.com/org/repo/pull/99",
		Branch:  "orphan-branch",
		Commits: []models.Commit{{Message: "orphan commit"}},
	})

	out, err := newRenderer(t, "pt").Render(r)
	require.NoError(t, err)

	card := out[strings.Index(out, ">#12</a>"):]
	card = card[:strings.Index(card, `<div class="pr-card">`)]
	assert.Contains(t, card, "fix/login")
	assert.Contains(t, card, "<li>fix redirect</li>")

	assert.Contains(t, out, "Detalhes de outros PRs")
	assert.Contains(t, out, ">#99</a>")
	assert.Contains(t, out, "orphan-branch")
	assert.Contains(t, out, "<li>orphan commit</li>")
	assert.Equal(t, 1, strings.Count(out, "fix/login"))

	assert.Empty(t, r.Authors[1].PRs[0].Branch)
	assert.Empty(t, r.Authors[1].PRs[0].Commits)
}

func TestHTMLRenderer_NoDetailsSection(t *testing.T) {
	r := sampleReport()
	r.Details = nil

	out, err := newRenderer(t, "pt").Render(r)
	require.NoError(t, err)

	assert.NotContains(t, out, "Detalhes de outros PRs")
	assert.NotContains(t, out, "fix/login")
}

func TestHTMLRenderer_EmptyAuthorPlaceholder(t *testing.T) {
	r := &models.RunReport{Repository: "org/repo", Authors: []models.AuthorReport{{Author: "dave"}}}

	out, err := newRenderer(t, "pt").Render(r)
	require.NoError(t, err)

	assert.Contains(t, out, `<div class="pr-count">0 PRs</div>`)
	assert.Contains(t, out, `<div class="no-prs">`)
	assert.Contains(t, out, "Nenhum PR encontrado no período.")
	assert.NotContains(t, out, `<div class="prs-grid">`)
}

func TestHTMLRenderer_EscapesUntrustedText(t *testing.T) {
	r := &models.RunReport{
		Repository: "org/<b>repo</b>",
		Authors: []models.AuthorReport{{
			Author: "alice",
			PRs: []models.PullRequest{{
				Number:      1,
				Title:       "<script>alert('x')</script>",
				URL:         "javascript:alert(1)",
				Description: `<img src=x onerror="alert(1)">`,
			}},
		}},
	}

	out, err := newRenderer(t, "pt").Render(r)
	require.NoError(t, err)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, `href="javascript:`)
	assert.NotContains(t, out, "<b>repo</b>")
}

func TestHTMLRenderer_Localized(t *testing.T) {
	out, err := newRenderer(t, "en").Render(sampleReport())
	require.NoError(t, err)

	assert.Contains(t, out, `<html lang="en">`)
	assert.Contains(t, out, "No pull requests found in this period.")
	assert.Contains(t, out, `<div class="pr-count">2 PRs</div>`)
}

func TestHTMLRenderer_NumberFromURL(t *testing.T) {
	r := &models.RunReport{Authors: []models.AuthorReport{{
		Author: "alice",
		PRs:    []models.PullRequest{{Title: "t", URL: "https://gitlab.com/g/p/-/merge_requests/55"}},
	}}}

	out, err := newRenderer(t, "pt").Render(r)
	require.NoError(t, err)

	assert.Contains(t, out, ">#55</a>")
}

// The single author, one page scenario from the fetch down to both renderers.
func TestEndToEnd_SingleAuthor(t *testing.T) {
	period := models.Period{Start: *day("2025-01-01"), End: *day("2025-01-31")}
	q := models.SearchQuery{Repository: "org/repo", Author: "alice", Period: period, BaseBranch: "main"}

	merged := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	source := &services.MockSource{}
	source.On("SearchMerged", mock.Anything, q, 1, 30).Return(&models.SearchPage{
		Items: []models.SearchItem{
			{Number: 2, Title: "Second", URL: "https://github.com/org/repo/pull/2", Body: "Second change.", MergedAt: &merged},
			{Number: 1, Title: "First", URL: "https://github.com/org/repo/pull/1", MergedAt: &merged},
		},
		Returned: 2,
		Total:    intPtr(2),
	}, nil).Once()
	source.On("SearchURL", q).Return("https://github.com/search?q=alice")

	fetcher := services.NewFetcher(services.WithFetchSource(source), services.WithPageDelay(0))
	svc := services.NewDeliveryService(services.WithDeliveryFetcher(fetcher), services.WithDeliverySource(source))

	run, err := svc.Run(context.Background(), services.DeliveryRequest{
		Repository: "org/repo",
		BaseBranch: "main",
		Period:     period,
		Authors:    []services.AuthorRequest{{Author: "alice"}},
	}, nil)
	require.NoError(t, err)

	text := RenderText(run)
	section := text[strings.Index(text, "Buscando PRs de alice..."):]
	bullets := 0
	for _, l := range strings.Split(section, "\n") {
		if strings.HasPrefix(l, "  • ") {
			bullets++
		}
	}
	assert.Equal(t, 2, bullets)
	assert.Contains(t, text, "\nTotal: 2 PRs de 1 autores\n")

	html, err := newRenderer(t, "pt").Render(run)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(html, `<div class="author-section">`))
	assert.Contains(t, html, `<div class="pr-count">2 PRs</div>`)

	source.AssertExpectations(t)
}
