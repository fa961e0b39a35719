package postgres

import (
	"fmt"

	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/shopspring/decimal"
)

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// numeric renders an optional decimal as a nullable text parameter.
func numeric(d decimal.NullDecimal) *string {
	return nullIfEmpty(models.NullDecimalString(d))
}

// numerics collects decimals scanned as text and keeps the first parse error.
type numerics struct {
	err error
}

func (n *numerics) decimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil && n.err == nil {
		n.err = fmt.Errorf("numeric %q: %w", s, err)
	}
	return d
}

func (n *numerics) null(s *string) decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(n.decimal(*s))
}
