package report

import (
	"os"
	"path/filepath"

	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
)

// WriteFile stores a rendered report, creating the parent directory when needed.
func WriteFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return domainErrors.ErrReportWrite.WithError(err).WithContext("path", path)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return domainErrors.ErrReportWrite.WithError(err).WithContext("path", path)
	}
	return nil
}
