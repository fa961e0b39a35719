package models

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code such as "EUR" or "USD".
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
	GBP Currency = "GBP"
)

// DefaultBaseCurrency is the currency ledger totals are kept in unless configured otherwise.
const DefaultBaseCurrency = EUR

// ParseCurrency normalises code and reports whether it names a currency known to go-money.
func ParseCurrency(code string) (Currency, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" || money.GetCurrency(c) == nil {
		return "", false
	}
	return Currency(c), true
}

// Valid returns true if c is a recognised ISO 4217 code.
func (c Currency) Valid() bool {
	_, ok := ParseCurrency(string(c))
	return ok
}

// FormatAmount renders amount with the symbol and grouping rules of currency c.
// Unknown currencies fall back to "<amount> <code>".
func FormatAmount(amount decimal.Decimal, c Currency) string {
	cur := money.GetCurrency(string(c))
	if cur == nil {
		return amount.StringFixed(2) + " " + string(c)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// NullDecimalString returns the string form of d, or "" when d is absent.
func NullDecimalString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// ParseNullDecimal parses s into a NullDecimal; the empty string yields an absent value.
func ParseNullDecimal(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
