package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentTransactionType is the kind of ledger event.
type InvestmentTransactionType string

const (
	TxBuy      InvestmentTransactionType = "BUY"
	TxSell     InvestmentTransactionType = "SELL"
	TxDividend InvestmentTransactionType = "DIVIDEND"
)

// ParseInvestmentTransactionType parses s case-insensitively.
func ParseInvestmentTransactionType(s string) (InvestmentTransactionType, bool) {
	t := InvestmentTransactionType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TxBuy, TxSell, TxDividend:
		return t, true
	}
	return "", false
}

// InvestmentTransaction is a single BUY, SELL or DIVIDEND event against an investment.
// Units and PricePerUnit are in the native Currency; Fees are already in the base currency.
type InvestmentTransaction struct {
	TransactionBase
	InvestmentID     string                    `json:"investment_id,omitempty"`
	TransactionType  InvestmentTransactionType `json:"transaction_type"`
	Units            decimal.Decimal           `json:"units"`
	PricePerUnit     decimal.Decimal           `json:"price_per_unit"`
	Fees             decimal.NullDecimal       `json:"fees"`
	Currency         Currency                  `json:"currency"`
	ExchangeRate     decimal.NullDecimal       `json:"exchange_rate"`
	RealizedGainLoss decimal.NullDecimal       `json:"realized_gain_loss"`
	ExternalID       string                    `json:"external_id,omitempty"`
	ExecutedAt       *time.Time                `json:"executed_at,omitempty"`
	Brokerage        string                    `json:"brokerage,omitempty"`
}

// TransactionOption sets an optional field on a new investment transaction.
type TransactionOption func(*InvestmentTransaction)

// WithFees sets the fees charged for the transaction, in the base currency.
func WithFees(fees decimal.Decimal) TransactionOption {
	return func(t *InvestmentTransaction) { t.Fees = decimal.NewNullDecimal(fees) }
}

// WithExchangeRate sets the native-to-base conversion rate.
func WithExchangeRate(rate decimal.Decimal) TransactionOption {
	return func(t *InvestmentTransaction) { t.ExchangeRate = decimal.NewNullDecimal(rate) }
}

// WithNullFees and WithNullExchangeRate pass tri-state values through unchanged.
func WithNullFees(fees decimal.NullDecimal) TransactionOption {
	return func(t *InvestmentTransaction) { t.Fees = fees }
}

func WithNullExchangeRate(rate decimal.NullDecimal) TransactionOption {
	return func(t *InvestmentTransaction) { t.ExchangeRate = rate }
}

// WithLabels sets the display name and description.
func WithLabels(name, description string) TransactionOption {
	return func(t *InvestmentTransaction) {
		t.Name = name
		t.Description = description
	}
}

// WithBrokerRef records where the transaction came from.
func WithBrokerRef(brokerage, externalID string, executedAt *time.Time) TransactionOption {
	return func(t *InvestmentTransaction) {
		t.Brokerage = brokerage
		t.ExternalID = externalID
		t.ExecutedAt = executedAt
	}
}

// NewInvestmentTransaction builds and validates a transaction. The amount is not
// derived here; it is calculated against the ledger's base currency when recorded.
func NewInvestmentTransaction(txType InvestmentTransactionType, units, price decimal.Decimal, currency Currency, opts ...TransactionOption) (*InvestmentTransaction, error) {
	t := &InvestmentTransaction{
		TransactionType: txType,
		Units:           units,
		PricePerUnit:    price,
		Currency:        currency,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the invariants every recorded transaction must satisfy.
func (t *InvestmentTransaction) Validate() error {
	if _, ok := ParseInvestmentTransactionType(string(t.TransactionType)); !ok {
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidTransaction, t.TransactionType)
	}
	if !t.Units.IsPositive() {
		return fmt.Errorf("%w: units must be positive, got %s", ErrInvalidTransaction, t.Units)
	}
	if !t.PricePerUnit.IsPositive() {
		return fmt.Errorf("%w: price per unit must be positive, got %s", ErrInvalidTransaction, t.PricePerUnit)
	}
	if t.Fees.Valid && t.Fees.Decimal.IsNegative() {
		return fmt.Errorf("%w: fees must not be negative, got %s", ErrInvalidTransaction, t.Fees.Decimal)
	}
	if t.Currency == "" {
		return fmt.Errorf("%w: currency is required", ErrInvalidTransaction)
	}
	if t.ExchangeRate.Valid && !t.ExchangeRate.Decimal.IsPositive() {
		return fmt.Errorf("%w: exchange rate must be positive, got %s", ErrInvalidTransaction, t.ExchangeRate.Decimal)
	}
	return nil
}

// GrossBase is units × price expressed in the base currency. The exchange rate is
// applied only when the transaction is in a foreign currency and a rate is known.
func (t *InvestmentTransaction) GrossBase(base Currency) decimal.Decimal {
	gross := t.Units.Mul(t.PricePerUnit)
	if t.Currency != base && t.ExchangeRate.Valid {
		gross = gross.Mul(t.ExchangeRate.Decimal)
	}
	return gross
}

// FeesOrZero returns the fees, treating an absent value as zero.
func (t *InvestmentTransaction) FeesOrZero() decimal.Decimal {
	if t.Fees.Valid {
		return t.Fees.Decimal
	}
	return decimal.Zero
}

// CalculateAmount derives Amount from units, price, rate and fees and stores it.
// Fees are added after conversion and are never converted. Calling it twice yields the same value.
func (t *InvestmentTransaction) CalculateAmount(base Currency) decimal.Decimal {
	amount := t.GrossBase(base)
	if t.Fees.Valid {
		amount = amount.Add(t.Fees.Decimal)
	}
	t.Amount = amount
	return amount
}

// Clone returns a deep copy of t.
func (t *InvestmentTransaction) Clone() *InvestmentTransaction {
	if t == nil {
		return nil
	}
	c := *t
	if t.ExecutedAt != nil {
		at := *t.ExecutedAt
		c.ExecutedAt = &at
	}
	return &c
}
