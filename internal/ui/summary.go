package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/thomas-vilte/prdelivery/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

// RenderSummary draws one row per author with its PR count and fetch status.
func RenderSummary(r *models.RunReport, t *i18n.Translations) string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(
			t.GetMessage("summary_author", 0, nil),
			t.GetMessage("summary_prs", 0, nil),
			t.GetMessage("summary_status", 0, nil),
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, a := range r.SortedAuthors() {
		tbl.Row(a.Author, strconv.Itoa(a.Count()), AuthorStatus(a, t))
	}

	return tbl.Render()
}

// AuthorStatus summarises how the fetch of an author ended.
func AuthorStatus(a models.AuthorReport, t *i18n.Translations) string {
	switch {
	case a.ErrorNote != "":
		return t.GetMessage("status_error", 0, nil)
	case a.RateLimited:
		return t.GetMessage("status_rate_limited", 0, nil)
	case a.Truncated():
		return t.GetMessage("status_truncated", 0, map[string]interface{}{"Total": *a.Total})
	default:
		return t.GetMessage("status_ok", 0, nil)
	}
}
