package authors

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/models"
	"github.com/thomas-vilte/prdelivery/internal/services"
)

// CSV column names of a per-author period file.
const (
	ColumnAuthor = "autor"
	ColumnStart  = "data_inicio"
	ColumnEnd    = "data_fim"
)

// DefaultFile is read when no author is given on the command line.
const DefaultFile = "autores.txt"

// Load reads an author file. Files ending in .csv carry per-author periods;
// anything else is one handle per line.
func Load(path string) ([]services.AuthorRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domainErrors.ErrAuthorsFileRead.WithError(err).WithContext("path", path)
	}
	defer f.Close()

	var out []services.AuthorRequest
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		out, err = ParseCSV(f)
	} else {
		out, err = ParseList(f)
	}
	if err != nil {
		var appErr *domainErrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr.WithContext("path", path)
		}
		return nil, domainErrors.ErrAuthorsFileRead.WithError(err).WithContext("path", path)
	}
	return out, nil
}

// ParseList reads one handle per line, skipping blank lines and # comments.
func ParseList(r io.Reader) ([]services.AuthorRequest, error) {
	var handles []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		handles = append(handles, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return FromHandles(handles), nil
}

// ParseCSV reads an autor,data_inicio,data_fim file. The header row is
// required and columns may come in any order. A row without dates falls back
// to the period of the run.
func ParseCSV(r io.Reader) ([]services.AuthorRequest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	authorCol, ok := columns[ColumnAuthor]
	if !ok {
		return nil, fmt.Errorf("missing %q column", ColumnAuthor)
	}

	var (
		out  []services.AuthorRequest
		seen = make(map[string]struct{})
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		author := field(record, authorCol)
		if author == "" {
			continue
		}
		if _, dup := seen[author]; dup {
			continue
		}
		seen[author] = struct{}{}

		start := field(record, columnIndex(columns, ColumnStart))
		end := field(record, columnIndex(columns, ColumnEnd))
		req := services.AuthorRequest{Author: author}
		if start != "" || end != "" {
			period, err := ParsePeriod(start, end)
			if err != nil {
				var appErr *domainErrors.AppError
				if errors.As(err, &appErr) {
					line, _ := reader.FieldPos(0)
					return nil, appErr.WithContext("line", line)
				}
				return nil, err
			}
			req.Period = period
		}
		out = append(out, req)
	}
	return out, nil
}

// FromHandles turns handles into requests, dropping blanks and repeated handles.
func FromHandles(handles []string) []services.AuthorRequest {
	out := make([]services.AuthorRequest, 0, len(handles))
	seen := make(map[string]struct{}, len(handles))
	for _, h := range handles {
		h = strings.TrimSpace(strings.TrimPrefix(h, "@"))
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, services.AuthorRequest{Author: h})
	}
	return out
}

// ParseDate parses a YYYY-MM-DD day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domainErrors.ErrInvalidDate.WithError(err).WithContext("value", s)
	}
	return t, nil
}

// ParsePeriod parses both ends of a period and checks their order.
func ParsePeriod(since, until string) (models.Period, error) {
	start, err := ParseDate(since)
	if err != nil {
		return models.Period{}, err
	}
	end, err := ParseDate(until)
	if err != nil {
		return models.Period{}, err
	}
	if end.Before(start) {
		return models.Period{}, domainErrors.ErrInvalidPeriod.
			WithContext("since", since).
			WithContext("until", until)
	}
	return models.Period{Start: start, End: end}, nil
}

// Span returns the smallest period covering every request period. ok is false
// when some request has no period of its own.
func Span(reqs []services.AuthorRequest) (models.Period, bool) {
	var span models.Period
	for i, r := range reqs {
		if r.Period.IsZero() {
			return models.Period{}, false
		}
		if i == 0 || r.Period.Start.Before(span.Start) {
			span.Start = r.Period.Start
		}
		if i == 0 || r.Period.End.After(span.End) {
			span.End = r.Period.End
		}
	}
	return span, len(reqs) > 0
}

func columnIndex(columns map[string]int, name string) int {
	if i, ok := columns[name]; ok {
		return i
	}
	return -1
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
