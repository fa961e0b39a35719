package csvimport

import (
	"errors"
	"fmt"

	"github.com/bobmcallan/budgeter/internal/models"
)

var (
	// ErrEmptyFile is returned when the file has no data rows. Nothing is imported.
	ErrEmptyFile = errors.New("csv file is empty")
	// ErrReadFile is returned when the stream cannot be read as CSV at all.
	ErrReadFile = errors.New("failed to read csv file")
)

// RowError describes why a single row was not imported.
type RowError struct {
	Row  int
	Kind models.ImportIssueKind
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.Kind, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

func rowErrorf(row int, kind models.ImportIssueKind, format string, args ...any) *RowError {
	return &RowError{Row: row, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Warning is a non-fatal row issue; the row is still imported.
type Warning struct {
	Kind    models.ImportIssueKind
	Message string
}
