package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strconv"

	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/models"
)

//go:embed templates/report.html.tmpl
var reportTemplate string

// translator is the part of the i18n bundle used for HTML labels.
type translator interface {
	GetMessage(messageID string, count int, templateData map[string]interface{}) string
}

type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer(trans translator) (*HTMLRenderer, error) {
	funcs := template.FuncMap{
		"t": func(id string, pairs ...interface{}) string {
			if trans == nil {
				return id
			}
			return trans.GetMessage(id, 0, templateData(pairs))
		},
	}

	tmpl, err := template.New("report").Funcs(funcs).Parse(reportTemplate)
	if err != nil {
		return nil, domainErrors.ErrReportRender.WithError(err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render builds the standalone HTML document of r.
func (h *HTMLRenderer) Render(r *models.RunReport) (string, error) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, newHTMLView(r)); err != nil {
		return "", domainErrors.ErrReportRender.WithError(err)
	}
	return buf.String(), nil
}

type htmlView struct {
	Repository   string
	Period       string
	BaseBranch   string
	Observations []string
	Authors      []htmlAuthor
	Details      []htmlPR
	TotalAuthors int
	TotalPRs     int
}

type htmlAuthor struct {
	Name        string
	Count       int
	Truncated   bool
	Total       int
	SearchURL   string
	RateLimited bool
	ErrorNote   string
	PRs         []htmlPR
}

type htmlPR struct {
	Number      string
	Title       string
	URL         string
	Date        string
	Description string
	Branch      string
	Commits     []string
}

func newHTMLView(r *models.RunReport) htmlView {
	r = withDetails(r)
	view := htmlView{
		Repository:   r.Repository,
		Period:       periodText(r.Period),
		BaseBranch:   r.BaseBranch,
		Observations: r.Observations,
		TotalAuthors: len(r.Authors),
		TotalPRs:     r.TotalPRs(),
	}

	for _, a := range r.SortedAuthors() {
		author := htmlAuthor{
			Name:        a.Author,
			Count:       a.Count(),
			Truncated:   a.Truncated(),
			SearchURL:   a.SearchURL,
			RateLimited: a.RateLimited,
			ErrorNote:   a.ErrorNote,
		}
		if a.Total != nil {
			author.Total = *a.Total
		}
		for _, pr := range a.PRs {
			author.PRs = append(author.PRs, newHTMLPR(pr))
		}
		view.Authors = append(view.Authors, author)
	}

	for _, d := range unmatchedDetails(r) {
		view.Details = append(view.Details, newHTMLPR(models.PullRequest{
			Number: d.Number,
			Title:  d.Title,
			URL:    d.URL,
		}.WithDetails(d)))
	}
	return view
}

// withDetails returns a copy of r with its details attached to the author PRs.
// r itself is left untouched.
func withDetails(r *models.RunReport) *models.RunReport {
	if len(r.Details) == 0 {
		return r
	}
	cp := *r
	cp.Authors = append([]models.AuthorReport(nil), r.Authors...)
	cp.ApplyDetails()
	return &cp
}

// unmatchedDetails lists the details whose number matches no author PR.
func unmatchedDetails(r *models.RunReport) []models.PRDetails {
	seen := make(map[int]bool)
	for _, a := range r.Authors {
		for _, pr := range a.PRs {
			if pr.Number != 0 {
				seen[pr.Number] = true
			}
		}
	}
	var out []models.PRDetails
	for _, d := range r.Details {
		if !seen[d.Number] {
			out = append(out, d)
		}
	}
	return out
}

func newHTMLPR(pr models.PullRequest) htmlPR {
	number := ""
	if pr.Number > 0 {
		number = strconv.Itoa(pr.Number)
	} else if n := numberFromURL(pr.URL); n > 0 {
		number = strconv.Itoa(n)
	}

	out := htmlPR{
		Number:      number,
		Title:       pr.Title,
		URL:         pr.URL,
		Date:        pr.MergedDate(),
		Description: pr.Description,
		Branch:      pr.Branch,
	}
	for _, c := range pr.Commits {
		out.Commits = append(out.Commits, c.Message)
	}
	return out
}

func templateData(pairs []interface{}) map[string]interface{} {
	if len(pairs) == 0 {
		return nil
	}
	data := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		data[fmt.Sprint(pairs[i])] = pairs[i+1]
	}
	return data
}
