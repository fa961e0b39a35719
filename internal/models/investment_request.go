package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	maxTickerLength      = 10
	maxAssetNameLength   = 100
	maxDescriptionLength = 333
)

// InvestmentTransactionRequest is the input for recording or updating an investment
// transaction, whether it comes from the API or a broker import.
type InvestmentTransactionRequest struct {
	TransactionType InvestmentTransactionType `json:"transaction_type"`
	AssetTicker     string                    `json:"asset_ticker"`
	AssetName       string                    `json:"asset_name"`
	AssetISIN       string                    `json:"asset_isin,omitempty"`
	Units           decimal.Decimal           `json:"units"`
	PricePerUnit    decimal.Decimal           `json:"price_per_unit"`
	Fees            decimal.NullDecimal       `json:"fees"`
	Currency        Currency                  `json:"currency"`
	ExchangeRate    decimal.NullDecimal       `json:"exchange_rate"`
	Name            string                    `json:"name,omitempty"`
	Description     string                    `json:"description,omitempty"`
	ExternalID      string                    `json:"external_id,omitempty"`
	ExecutedAt      *time.Time                `json:"executed_at,omitempty"`
	Brokerage       string                    `json:"brokerage,omitempty"`
}

// AssetRef returns the asset identity carried by the request.
func (r InvestmentTransactionRequest) AssetRef() AssetRef {
	return AssetRef{Ticker: r.AssetTicker, ISIN: r.AssetISIN, Name: r.AssetName}.Normalize()
}

// Validate checks the request's required fields and limits.
func (r InvestmentTransactionRequest) Validate() error {
	if _, ok := ParseInvestmentTransactionType(string(r.TransactionType)); !ok {
		return fmt.Errorf("%w: transaction type is required (BUY, SELL or DIVIDEND)", ErrInvalidTransaction)
	}
	ref := r.AssetRef()
	switch {
	case ref.Ticker == "":
		return fmt.Errorf("%w: asset ticker is required", ErrInvalidTransaction)
	case len(ref.Ticker) > maxTickerLength:
		return fmt.Errorf("%w: asset ticker must not exceed %d characters", ErrInvalidTransaction, maxTickerLength)
	case ref.Name == "":
		return fmt.Errorf("%w: asset name is required", ErrInvalidTransaction)
	case len(ref.Name) > maxAssetNameLength:
		return fmt.Errorf("%w: asset name must not exceed %d characters", ErrInvalidTransaction, maxAssetNameLength)
	case len(ref.ISIN) > maxISINLength:
		return fmt.Errorf("%w: isin must not exceed %d characters", ErrInvalidTransaction, maxISINLength)
	case len(r.Description) > maxDescriptionLength:
		return fmt.Errorf("%w: description must not exceed %d characters", ErrInvalidTransaction, maxDescriptionLength)
	}
	if r.Currency != "" && !r.Currency.Valid() {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidTransaction, r.Currency)
	}
	_, err := r.ToTransaction()
	return err
}

// ToTransaction builds the (unrecorded) transaction described by the request.
func (r InvestmentTransactionRequest) ToTransaction() (*InvestmentTransaction, error) {
	txType, _ := ParseInvestmentTransactionType(string(r.TransactionType))
	return NewInvestmentTransaction(txType, r.Units, r.PricePerUnit, Currency(strings.ToUpper(string(r.Currency))),
		WithNullFees(r.Fees),
		WithNullExchangeRate(r.ExchangeRate),
		WithLabels(r.Name, r.Description),
		WithBrokerRef(r.Brokerage, r.ExternalID, r.ExecutedAt),
	)
}
