package models

import (
	"fmt"
	"time"
)

// ImportIssueKind classifies a problem found while importing a row.
type ImportIssueKind string

const (
	IssueMalformed       ImportIssueKind = "malformed"
	IssueValidation      ImportIssueKind = "validation"
	IssuePersistence     ImportIssueKind = "persistence"
	IssueDuplicate       ImportIssueKind = "duplicate"
	IssueSkipped         ImportIssueKind = "skipped"
	IssueUnknownCurrency ImportIssueKind = "unknown_currency"
	IssueUnknownAction   ImportIssueKind = "unknown_action"
	IssueUnparsable      ImportIssueKind = "unparsable"
)

// ImportIssue is a row-level error or warning. Skipped is true when the row was not imported.
type ImportIssue struct {
	Row     int             `json:"row"`
	Kind    ImportIssueKind `json:"kind"`
	Message string          `json:"message"`
	Skipped bool            `json:"skipped"`
}

// ImportResult reports the outcome of importing one broker file.
type ImportResult struct {
	FileName     string                   `json:"file_name"`
	RowsRead     int                      `json:"rows_read"`
	Imported     int                      `json:"imported"`
	Transactions []*InvestmentTransaction `json:"transactions"`
	Issues       []ImportIssue            `json:"issues"`
	StartedAt    time.Time                `json:"started_at"`
	FinishedAt   time.Time                `json:"finished_at"`
}

// AddIssue records a row-level issue.
func (r *ImportResult) AddIssue(row int, kind ImportIssueKind, message string, skipped bool) {
	r.Issues = append(r.Issues, ImportIssue{Row: row, Kind: kind, Message: message, Skipped: skipped})
}

// SkippedRows counts rows that were not imported.
func (r *ImportResult) SkippedRows() int {
	n := 0
	seen := map[int]bool{}
	for _, issue := range r.Issues {
		if issue.Skipped && !seen[issue.Row] {
			seen[issue.Row] = true
			n++
		}
	}
	return n
}

// Summary is a one-line human readable outcome.
func (r *ImportResult) Summary() string {
	return fmt.Sprintf("imported %d of %d rows from file %s", r.Imported, r.RowsRead, r.FileName)
}
