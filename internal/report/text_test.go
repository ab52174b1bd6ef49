package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/prdelivery/internal/models"
)

func TestRenderText_Header(t *testing.T) {
	out := RenderText(sampleReport())
	lines := strings.Split(out, "\n")

	require.Greater(t, len(lines), 9)
	assert.Equal(t, strings.Repeat("=", 80), lines[0])
	assert.Equal(t, "ANÁLISE DE ENTREGAS DO TIME", lines[1])
	assert.Equal(t, "Repositório: org/repo", lines[3])
	assert.Equal(t, "Período: 2025-01-01 a 2025-01-31", lines[4])
	assert.Equal(t, "Branch base: main", lines[5])
	assert.Equal(t, "Autores: 3 autor(es)", lines[6])
	assert.Contains(t, out, "Observações importantes antes das listas:\n\n  • Primeira observação.\n\n  • Segunda observação em duas linhas.\n\n")
}

func TestRenderText_AuthorsSortedByHandle(t *testing.T) {
	out := RenderText(sampleReport())

	alice := strings.Index(out, "Buscando PRs de alice...")
	bob := strings.Index(out, "Buscando PRs de bob...")
	carol := strings.Index(out, "Buscando PRs de carol...")

	require.True(t, alice >= 0 && bob >= 0 && carol >= 0)
	assert.Less(t, alice, bob)
	assert.Less(t, bob, carol)
}

func TestRenderText_PRLines(t *testing.T) {
	out := RenderText(sampleReport())

	assert.Contains(t, out, "PRs (2 encontrados — cada linha = título — link — data do merge — breve descrição):\n\n")
	assert.Contains(t, out, "  • Fix — login — https://github.com/org/repo/pull/12 — merged: 2025-01-20 — Fixes the login redirect.\n")
	assert.Contains(t, out, "  • Docs — https://github.com/org/repo/pull/3 — merged: N/A — \n")
	assert.Contains(t, out, "Total: 3 PRs de 3 autores\n")
}

func TestRenderText_Notes(t *testing.T) {
	out := RenderText(sampleReport())

	assert.Contains(t, out, "Observação: a busca retornou 45 resultados no total, a API trouxe 1; "+
		"os resultados estão incompletos. Ver todos no GitHub: https://github.com/search?q=is%3Apr+author%3Acarol&type=pullrequests\n")
	assert.Contains(t, out, rateLimitedLine)
	assert.Contains(t, out, "Observação: a busca falhou: request to the provider failed")
}

func TestRenderText_EmptyAuthorPlaceholder(t *testing.T) {
	r := &models.RunReport{
		Repository: "org/repo",
		Authors:    []models.AuthorReport{{Author: "dave"}},
	}

	out := RenderText(r)

	assert.Contains(t, out, "dave\n"+strings.Repeat("=", 80)+"\n\nNenhum PR encontrado no período.\n")
	assert.NotContains(t, out, "encontrados —")
	assert.Contains(t, out, "Total: 0 PRs de 1 autores")
}

func TestRenderText_CollapsesMultilineFields(t *testing.T) {
	r := &models.RunReport{
		Authors: []models.AuthorReport{{
			Author: "alice",
			PRs: []models.PullRequest{{
				Title:       "Two\nlines",
				URL:         "https://github.com/org/repo/pull/1",
				Description: "first\r\n\r\nsecond\tthird",
			}},
		}},
	}

	out := RenderText(r)

	assert.Contains(t, out, "  • Two lines — https://github.com/org/repo/pull/1 — merged: N/A — first second third\n")
}

func TestRenderText_Details(t *testing.T) {
	out := RenderText(sampleReport())

	assert.Contains(t, out, "DETALHES DE PRs ESPECÍFICOS\n")
	assert.Contains(t, out, "PR #12: Fix — login\n  Link: https://github.com/org/repo/pull/12\n  Branch: fix/login\n  Commits (2):\n    - fix redirect\n    - add test\n")
}

func TestRenderText_NoObservationsBlock(t *testing.T) {
	out := RenderText(&models.RunReport{Repository: "org/repo"})

	assert.NotContains(t, out, "Observações importantes")
	assert.Contains(t, out, "Total: 0 PRs de 0 autores")
}
