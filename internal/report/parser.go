package report

import (
	"bufio"
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/logger"
	"github.com/thomas-vilte/prdelivery/internal/models"
	"github.com/thomas-vilte/prdelivery/internal/regex"
)

type parseState int

const (
	stateHeader parseState = iota
	stateObservations
	stateAuthor
	stateFooter
	stateDetails
)

// ParseFile reads a text report from disk. Only IO problems are errors; the
// content itself is parsed best-effort by Parse.
func ParseFile(ctx context.Context, path string) (*models.RunReport, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domainErrors.ErrReportNotFound.WithContext("path", path)
		}
		return nil, domainErrors.NewAppError(domainErrors.TypeReport, "failed to read report", err).
			WithContext("path", path)
	}
	defer f.Close()

	return Parse(ctx, f)
}

// Parse recovers a RunReport from text written by RenderText. Lines it does not
// recognise are skipped, so malformed input yields an empty or partial report.
// The error is only set when reading from r fails. An author whose count line
// disagrees with the PR lines recovered is logged as a warning.
func Parse(ctx context.Context, r io.Reader) (*models.RunReport, error) {
	p := &parser{ctx: ctx, report: &models.RunReport{}, declared: -1}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		p.line(strings.TrimSuffix(scanner.Text(), "\r"))
	}
	p.flushAuthor()
	p.flushDetail()

	p.report.ApplyDetails()
	return p.report, scanner.Err()
}

type parser struct {
	ctx    context.Context
	report *models.RunReport
	state  parseState
	author *models.AuthorReport
	detail *models.PRDetails

	// PR count announced for the current author, -1 until its count line is seen
	declared int
}

func (p *parser) line(l string) {
	if m := regex.ReportAuthorMarker.FindStringSubmatch(l); m != nil {
		p.flushAuthor()
		p.author = &models.AuthorReport{Author: strings.TrimSpace(m[1])}
		p.state = stateAuthor
		return
	}
	if l == detailsTitle {
		p.flushAuthor()
		p.state = stateDetails
		return
	}
	if regex.ReportTotal.MatchString(l) {
		p.flushAuthor()
		p.state = stateFooter
		return
	}

	switch p.state {
	case stateHeader:
		p.header(l)
	case stateObservations:
		if l == separator {
			p.state = stateHeader
			return
		}
		if m := regex.ReportBullet.FindStringSubmatch(l); m != nil {
			p.report.Observations = append(p.report.Observations, strings.TrimSpace(m[1]))
		}
	case stateAuthor:
		p.authorLine(l)
	case stateDetails:
		p.detailLine(l)
	}
}

func (p *parser) header(l string) {
	switch {
	case strings.HasPrefix(l, repositoryPrefix):
		p.report.Repository = strings.TrimSpace(strings.TrimPrefix(l, repositoryPrefix))
	case strings.HasPrefix(l, periodPrefix):
		p.report.Period = parsePeriod(strings.TrimPrefix(l, periodPrefix))
	case strings.HasPrefix(l, branchPrefix):
		p.report.BaseBranch = strings.TrimSpace(strings.TrimPrefix(l, branchPrefix))
	case l == observationsTitle:
		p.state = stateObservations
	}
}

func (p *parser) authorLine(l string) {
	if m := regex.ReportPRLine.FindStringSubmatch(l); m != nil {
		p.author.PRs = append(p.author.PRs, models.PullRequest{
			Number:      numberFromURL(m[2]),
			Title:       m[1],
			URL:         m[2],
			MergedAt:    parseDate(m[3]),
			Description: m[4],
		})
		return
	}
	if m := regex.ReportPRCount.FindStringSubmatch(l); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			p.declared = n
		}
		return
	}
	if m := regex.ReportTruncation.FindStringSubmatch(l); m != nil {
		if total, err := strconv.Atoi(m[1]); err == nil {
			p.author.Total = &total
		}
		if m[3] != "-" {
			p.author.SearchURL = m[3]
		}
		return
	}
	switch {
	case l == rateLimitedLine:
		p.author.RateLimited = true
	case strings.HasPrefix(l, errorNotePrefix):
		p.author.ErrorNote = strings.TrimPrefix(l, errorNotePrefix)
	}
}

func (p *parser) detailLine(l string) {
	if m := regex.ReportDetailHeader.FindStringSubmatch(l); m != nil {
		p.flushDetail()
		n, _ := strconv.Atoi(m[1])
		p.detail = &models.PRDetails{Number: n, Title: strings.TrimSpace(m[2])}
		return
	}
	if p.detail == nil {
		return
	}
	if m := regex.ReportDetailLink.FindStringSubmatch(l); m != nil {
		if m[1] != "-" {
			p.detail.URL = m[1]
		}
		return
	}
	if m := regex.ReportDetailBranch.FindStringSubmatch(l); m != nil {
		p.detail.Branch = strings.TrimSpace(m[1])
		return
	}
	if m := regex.ReportDetailCommit.FindStringSubmatch(l); m != nil {
		p.detail.Commits = append(p.detail.Commits, models.Commit{Message: m[1]})
	}
}

func (p *parser) flushAuthor() {
	if p.author == nil {
		return
	}
	if p.declared >= 0 && p.declared != len(p.author.PRs) {
		logger.Warn(p.ctx, "report count line disagrees with the pull requests read",
			"author", p.author.Author,
			"declared", p.declared,
			"parsed", len(p.author.PRs))
	}
	p.report.Authors = append(p.report.Authors, *p.author)
	p.author = nil
	p.declared = -1
}

func (p *parser) flushDetail() {
	if p.detail == nil {
		return
	}
	p.report.Details = append(p.report.Details, *p.detail)
	p.detail = nil
}

func parsePeriod(s string) models.Period {
	start, end, ok := strings.Cut(strings.TrimSpace(s), " a ")
	if !ok {
		return models.Period{}
	}
	from := parseDate(strings.TrimSpace(start))
	to := parseDate(strings.TrimSpace(end))
	if from == nil || to == nil {
		return models.Period{}
	}
	return models.Period{Start: *from, End: *to}
}

func parseDate(s string) *time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func numberFromURL(url string) int {
	m := regex.PRNumberInURL.FindStringSubmatch(url)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
