// Package csvimport imports Trading 212 CSV exports into the investment ledger
package csvimport

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
)

// Compile-time interface check
var _ interfaces.ImportService = (*Service)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Service implements ImportService
type Service struct {
	investments interfaces.InvestmentService
	normalizer  *Normalizer
	logger      *common.Logger
	now         func() time.Time
}

// NewService creates a new import service
func NewService(investments interfaces.InvestmentService, normalizer *Normalizer, logger *common.Logger) *Service {
	return &Service{
		investments: investments,
		normalizer:  normalizer,
		logger:      logger,
		now:         time.Now,
	}
}

// record is one CSV row and the file line it starts on.
type record struct {
	line   int
	fields []string
}

// readRows reads every record. Rows that break CSV framing are returned as
// malformed issues; only stream failures are fatal.
func readRows(r io.Reader) ([]record, []models.ImportIssue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []record
	var issues []models.ImportIssue
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				issues = append(issues, models.ImportIssue{Row: perr.StartLine, Kind: models.IssueMalformed, Message: perr.Error(), Skipped: true})
				continue
			}
			return nil, nil, fmt.Errorf("%w: %w", ErrReadFile, err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, record{line: line, fields: fields})
	}
	return rows, issues, nil
}

// Import normalizes and records each data row of a Trading 212 export in file
// order. A bad row is reported in the result and the rest of the file continues.
func (s *Service) Import(ctx context.Context, fileName string, r io.Reader) (*models.ImportResult, error) {
	s.logger.Info().Str("file", fileName).Msg("Starting CSV import")

	rows, framing, err := readRows(r)
	if err != nil {
		return nil, err
	}
	return s.importRecords(ctx, fileName, rows, framing)
}

// importRecords records the data rows after the header. Rows that failed CSV
// framing count as read, so a file of only broken rows is not empty.
func (s *Service) importRecords(ctx context.Context, fileName string, rows []record, framing []models.ImportIssue) (*models.ImportResult, error) {
	var data []record
	if len(rows) > 0 {
		data = rows[1:] // rows[0] is the header
	}
	if len(data)+len(framing) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, fileName)
	}

	result := &models.ImportResult{
		FileName:     fileName,
		RowsRead:     len(data) + len(framing),
		Transactions: []*models.InvestmentTransaction{},
		Issues:       framing,
		StartedAt:    s.now(),
	}

	for _, row := range data {
		if err := ctx.Err(); err != nil {
			result.FinishedAt = s.now()
			return result, err
		}
		s.importRow(ctx, result, row.line, row.fields)
	}

	result.Imported = len(result.Transactions)
	result.FinishedAt = s.now()
	s.logger.Info().
		Str("file", fileName).
		Int("rows", result.RowsRead).
		Int("imported", result.Imported).
		Int("issues", len(result.Issues)).
		Msg("CSV import finished")
	return result, nil
}

func (s *Service) importRow(ctx context.Context, result *models.ImportResult, line int, row []string) {
	req, warnings, err := s.normalizer.Normalize(line, row)
	for _, w := range warnings {
		result.AddIssue(line, w.Kind, w.Message, false)
		s.logger.Warn().Int("row", line).Str("kind", string(w.Kind)).Msg(w.Message)
	}
	if err != nil {
		var rowErr *RowError
		if !errors.As(err, &rowErr) {
			rowErr = &RowError{Row: line, Kind: models.IssueValidation, Err: err}
		}
		s.skip(result, rowErr)
		return
	}

	tx, err := s.investments.CreateTransaction(ctx, *req)
	if err != nil {
		s.skip(result, &RowError{Row: line, Kind: classify(err), Err: err})
		return
	}
	result.Transactions = append(result.Transactions, tx)
}

func (s *Service) skip(result *models.ImportResult, rowErr *RowError) {
	msg := rowErr.Err.Error()
	result.AddIssue(rowErr.Row, rowErr.Kind, msg, true)
	s.logger.Warn().Int("row", rowErr.Row).Str("kind", string(rowErr.Kind)).Msg("Skipping row: " + msg)
}

func classify(err error) models.ImportIssueKind {
	switch {
	case errors.Is(err, models.ErrDuplicateTransaction):
		return models.IssueDuplicate
	case errors.Is(err, models.ErrInvalidTransaction),
		errors.Is(err, models.ErrOversell),
		errors.Is(err, models.ErrInvalidAsset):
		return models.IssueValidation
	default:
		return models.IssuePersistence
	}
}
