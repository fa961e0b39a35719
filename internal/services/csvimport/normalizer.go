package csvimport

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/shopspring/decimal"
)

// Trading 212 export columns.
const (
	colAction = iota
	colTime
	colISIN
	colTicker
	colName
	colID
	colUnits
	colPricePerUnit
	colPriceCurrency
	colExchangeRate
	colResult
	colResultCurrency
	colGrossTotal
	colGrossTotalCurrency
	colWithholdingTax
	colWithholdingTaxCurrency
	colConversionFee
	colConversionFeeCurrency

	columnCount
)

const timeLayout = "2006-01-02 15:04:05"

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// actions that move cash rather than units
var cashMovements = []string{"deposit", "withdrawal", "interest"}

// Normalizer turns one Trading 212 CSV row into a transaction request.
type Normalizer struct {
	base      models.Currency
	brokerage string
}

// NewNormalizer creates a normalizer that falls back to base for unknown currencies.
func NewNormalizer(base models.Currency, brokerage string) *Normalizer {
	if brokerage == "" {
		brokerage = "Trading212"
	}
	return &Normalizer{base: base, brokerage: brokerage}
}

// rowState collects warnings while a row is parsed.
type rowState struct {
	row      []string
	warnings []Warning
}

func (s *rowState) warn(kind models.ImportIssueKind, format string, args ...any) {
	s.warnings = append(s.warnings, Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func (s *rowState) field(i int) string {
	return strings.TrimSpace(s.row[i])
}

// decimal parses column i. Empty, "null" and "Not available" are absent;
// anything else that does not parse is absent with a warning.
func (s *rowState) decimal(i int, label string) decimal.NullDecimal {
	raw := s.field(i)
	switch strings.ToLower(raw) {
	case "", "null", "not available":
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(nonNumeric.ReplaceAllString(raw, ""))
	if err != nil {
		s.warn(models.IssueUnparsable, "could not parse %s %q", label, raw)
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func (n *Normalizer) currency(s *rowState, raw string) models.Currency {
	if raw == "" {
		s.warn(models.IssueUnknownCurrency, "missing currency, using %s", n.base)
		return n.base
	}
	c, ok := models.ParseCurrency(raw)
	if !ok {
		s.warn(models.IssueUnknownCurrency, "unknown currency %q, using %s", raw, n.base)
		return n.base
	}
	return c
}

// Classify maps a broker action onto a transaction type. ok is false when the
// action matched nothing and BUY was assumed.
func Classify(action string) (t models.InvestmentTransactionType, ok bool) {
	a := strings.ToLower(strings.TrimSpace(action))
	switch {
	case strings.Contains(a, "buy"):
		return models.TxBuy, true
	case strings.Contains(a, "sell"):
		return models.TxSell, true
	case strings.Contains(a, "dividend"):
		return models.TxDividend, true
	}
	return models.TxBuy, false
}

func isCashMovement(action string) bool {
	a := strings.ToLower(action)
	for _, c := range cashMovements {
		if strings.Contains(a, c) {
			return true
		}
	}
	return false
}

// Normalize converts row (1-based file line rowNum) into a request. Warnings are
// returned even when the row is rejected; a *RowError means the row must be skipped.
func (n *Normalizer) Normalize(rowNum int, row []string) (*models.InvestmentTransactionRequest, []Warning, error) {
	if len(row) < columnCount {
		return nil, nil, rowErrorf(rowNum, models.IssueMalformed, "expected %d columns, got %d", columnCount, len(row))
	}
	s := &rowState{row: row}

	action := s.field(colAction)
	if isCashMovement(action) {
		return nil, nil, rowErrorf(rowNum, models.IssueSkipped, "cash movement %q is not an investment transaction", action)
	}
	txType, known := Classify(action)
	if !known {
		s.warn(models.IssueUnknownAction, "unknown action %q, treated as BUY", action)
	}

	// The row settles in the gross total currency; the price currency only
	// stands in when that column is empty.
	rowCurrency := s.field(colGrossTotalCurrency)
	if rowCurrency == "" {
		rowCurrency = s.field(colPriceCurrency)
	}
	currency := n.currency(s, rowCurrency)

	units := s.decimal(colUnits, "units")
	price := s.decimal(colPricePerUnit, "price per unit")
	// Kept as reported; amounts only convert when currency differs from base.
	rate := s.decimal(colExchangeRate, "exchange rate")
	if rate.Valid && !rate.Decimal.IsPositive() {
		s.warn(models.IssueUnparsable, "ignoring non-positive exchange rate %s", rate.Decimal)
		rate = decimal.NullDecimal{}
	}

	fees := decimal.Zero
	for _, d := range []decimal.NullDecimal{
		s.decimal(colWithholdingTax, "withholding tax"),
		s.decimal(colConversionFee, "currency conversion fee"),
	} {
		if d.Valid {
			fees = fees.Add(d.Decimal.Abs())
		}
	}
	var feeValue decimal.NullDecimal
	if fees.IsPositive() {
		feeValue = decimal.NewNullDecimal(fees)
	}

	var executedAt *time.Time
	if raw := s.field(colTime); raw != "" {
		if at, err := time.Parse(timeLayout, raw); err == nil {
			executedAt = &at
		} else {
			s.warn(models.IssueUnparsable, "unparsable time %q", raw)
		}
	}

	ticker := s.field(colTicker)
	name := s.field(colName)
	req := &models.InvestmentTransactionRequest{
		TransactionType: txType,
		AssetTicker:     ticker,
		AssetName:       name,
		AssetISIN:       s.field(colISIN),
		Currency:        currency,
		ExchangeRate:    rate,
		Fees:            feeValue,
		Name:            strings.TrimSpace(name + " " + ticker),
		Description:     "Imported from Trading212 CSV: " + action,
		ExternalID:      s.field(colID),
		ExecutedAt:      executedAt,
		Brokerage:       n.brokerage,
	}

	switch {
	case ticker == "":
		return nil, s.warnings, rowErrorf(rowNum, models.IssueValidation, "asset ticker is required")
	case name == "":
		return nil, s.warnings, rowErrorf(rowNum, models.IssueValidation, "asset name is required")
	case !units.Valid || !units.Decimal.IsPositive():
		return nil, s.warnings, rowErrorf(rowNum, models.IssueValidation, "valid units are required")
	case !price.Valid || !price.Decimal.IsPositive():
		return nil, s.warnings, rowErrorf(rowNum, models.IssueValidation, "valid price per unit is required")
	}
	req.Units = units.Decimal
	req.PricePerUnit = price.Decimal

	return req, s.warnings, nil
}
