package report

import (
	"fmt"
	"strings"

	"github.com/thomas-vilte/prdelivery/internal/models"
	"github.com/thomas-vilte/prdelivery/internal/regex"
)

// Fixed markers of the text report. They are read back by Parse and are not translated.
const (
	titleLine         = "ANÁLISE DE ENTREGAS DO TIME"
	repositoryPrefix  = "Repositório: "
	periodPrefix      = "Período: "
	branchPrefix      = "Branch base: "
	authorsPrefix     = "Autores: "
	observationsTitle = "Observações importantes antes das listas:"
	noPRsLine         = "Nenhum PR encontrado no período."
	rateLimitedLine   = "Observação: o limite de requisições da API foi atingido; os resultados deste autor estão incompletos."
	errorNotePrefix   = "Observação: a busca falhou: "
	detailsTitle      = "DETALHES DE PRs ESPECÍFICOS"
	bullet            = "  • "
	fieldSep          = " — "
)

var separator = strings.Repeat("=", 80)

// DefaultObservations is the notice printed before the author lists when the
// configuration does not set its own.
func DefaultObservations() []string {
	return []string{
		"Usei a API do GitHub para buscar os PRs mergeados por autor nesse intervalo. " +
			"Alguns resultados da API estavam incompletos por limite de paginação " +
			"(o GitHub Search retorna no máximo 30 resultados por página). " +
			"Onde aplicou, marquei que os resultados estão incompletos e deixei o link de busca " +
			"no GitHub para ver o conjunto completo.",
		"As respostas de busca trazem título do PR, link e data de merge e muitas vezes " +
			"o corpo/descrição do PR. Porém a listagem de busca não inclui sempre o nome da branch " +
			"nem todas as mensagens de commit. Posso buscar branch + commits para PRs específicos " +
			"caso queira, basta informar os números com --details.",
		"Cada PR traz uma breve descrição (1–2 linhas) montada a partir do título e da descrição " +
			"encontrada no PR.",
	}
}

// RenderText writes the plain-text report. Authors are sorted by handle and
// every free-text field is collapsed to a single line so Parse can read it back.
func RenderText(r *models.RunReport) string {
	var b strings.Builder

	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(separator)
	line(titleLine)
	line(separator)
	line("%s%s", repositoryPrefix, oneLine(r.Repository))
	line("%s%s", periodPrefix, periodText(r.Period))
	line("%s%s", branchPrefix, oneLine(r.BaseBranch))
	line("%s%d autor(es)", authorsPrefix, len(r.Authors))
	line(separator)
	line("")

	if len(r.Observations) > 0 {
		line(observationsTitle)
		line("")
		for _, obs := range r.Observations {
			line("%s%s", bullet, oneLine(obs))
			line("")
		}
		line(separator)
		line("")
	}

	for _, a := range r.SortedAuthors() {
		writeAuthor(&b, a)
	}

	line(separator)
	line("Total: %d PRs de %d autores", r.TotalPRs(), len(r.Authors))
	line(separator)

	if len(r.Details) > 0 {
		line("")
		line(separator)
		line(detailsTitle)
		line(separator)
		line("")
		for _, d := range r.Details {
			writeDetails(&b, d)
		}
	}

	return b.String()
}

func writeAuthor(b *strings.Builder, a models.AuthorReport) {
	fmt.Fprintf(b, "Buscando PRs de %s...\n\n", a.Author)
	fmt.Fprintf(b, "%s\n%s\n\n", a.Author, separator)

	if a.Truncated() {
		fmt.Fprintf(b,
			"Observação: a busca retornou %d resultados no total, a API trouxe %d; "+
				"os resultados estão incompletos. Ver todos no GitHub: %s\n\n",
			*a.Total, a.Count(), linkText(a.SearchURL))
	}

	if a.Count() == 0 {
		b.WriteString(noPRsLine + "\n")
	} else {
		fmt.Fprintf(b, "PRs (%d encontrados — cada linha = título — link — data do merge — breve descrição):\n\n", a.Count())
		for _, pr := range a.PRs {
			b.WriteString(bullet)
			b.WriteString(oneLine(pr.Title))
			b.WriteString(fieldSep)
			b.WriteString(linkText(pr.URL))
			b.WriteString(fieldSep)
			b.WriteString("merged: " + pr.MergedDate())
			b.WriteString(fieldSep)
			b.WriteString(oneLine(pr.Description))
			b.WriteByte('\n')
		}
	}

	if a.RateLimited {
		b.WriteString("\n" + rateLimitedLine + "\n")
	}
	if a.ErrorNote != "" {
		b.WriteString("\n" + errorNotePrefix + oneLine(a.ErrorNote) + "\n")
	}
	b.WriteByte('\n')
}

func writeDetails(b *strings.Builder, d models.PRDetails) {
	fmt.Fprintf(b, "PR #%d: %s\n", d.Number, oneLine(d.Title))
	if d.URL != "" {
		fmt.Fprintf(b, "  Link: %s\n", linkText(d.URL))
	}
	fmt.Fprintf(b, "  Branch: %s\n", oneLine(d.Branch))
	fmt.Fprintf(b, "  Commits (%d):\n", len(d.Commits))
	for _, c := range d.Commits {
		fmt.Fprintf(b, "    - %s\n", oneLine(c.Message))
	}
	b.WriteByte('\n')
}

func periodText(p models.Period) string {
	if p.IsZero() {
		return ""
	}
	return p.String()
}

// oneLine collapses every whitespace run, newlines included, to a single space.
func oneLine(s string) string {
	return strings.TrimSpace(regex.Whitespace.ReplaceAllString(s, " "))
}

// linkText keeps a URL on one token; spaces would break the PR line format.
func linkText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, " ", "%20")
}
