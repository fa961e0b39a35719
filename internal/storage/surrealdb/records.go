package surrealdb

import (
	"fmt"
	"time"

	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/shopspring/decimal"
)

// Decimals are stored as strings so no precision is lost in transit.

// Select field lists alias the stored business key to id for struct mapping.
const (
	assetSelectFields      = "asset_id AS id, ticker, isin, name, asset_type, investment_style, created_at, updated_at"
	investmentSelectFields = "investment_id AS id, asset_id, currency, base_currency, total_units, total_cost, cost_basis, realized_gain_loss, latest_price, created_at, updated_at"
	txSelectFields         = "tx_id AS id, investment_id, seq, transaction_type, units, price_per_unit, fees, currency, exchange_rate, amount, realized_gain_loss, name, description, external_id, executed_at, brokerage, created_at, updated_at"
	entrySelectFields      = "entry_id AS id, amount, name, description, category, tags, created_at, updated_at"
)

type assetRecord struct {
	ID              string    `json:"id,omitempty"`
	AssetID         string    `json:"asset_id,omitempty"`
	Ticker          string    `json:"ticker"`
	ISIN            string    `json:"isin"`
	Name            string    `json:"name"`
	AssetType       string    `json:"asset_type"`
	InvestmentStyle string    `json:"investment_style"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toAssetRecord(a *models.Asset) assetRecord {
	return assetRecord{
		AssetID:         a.ID,
		Ticker:          a.Ticker,
		ISIN:            a.ISIN,
		Name:            a.Name,
		AssetType:       string(a.AssetType),
		InvestmentStyle: string(a.InvestmentStyle),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (r assetRecord) toModel() *models.Asset {
	return &models.Asset{
		ID:              r.ID,
		Ticker:          r.Ticker,
		ISIN:            r.ISIN,
		Name:            r.Name,
		AssetType:       models.AssetType(r.AssetType),
		InvestmentStyle: models.InvestmentStyle(r.InvestmentStyle),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type investmentRecord struct {
	ID               string    `json:"id,omitempty"`
	InvestmentID     string    `json:"investment_id,omitempty"`
	AssetID          string    `json:"asset_id"`
	Currency         string    `json:"currency"`
	BaseCurrency     string    `json:"base_currency"`
	TotalUnits       string    `json:"total_units"`
	TotalCost        string    `json:"total_cost"`
	CostBasis        string    `json:"cost_basis"`
	RealizedGainLoss string    `json:"realized_gain_loss"`
	LatestPrice      string    `json:"latest_price"`
	Version          int64     `json:"version"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toInvestmentRecord(inv *models.Investment) investmentRecord {
	return investmentRecord{
		InvestmentID:     inv.ID,
		AssetID:          inv.AssetID,
		Currency:         string(inv.Currency),
		BaseCurrency:     string(inv.BaseCurrency),
		TotalUnits:       inv.TotalUnits.String(),
		TotalCost:        inv.TotalCost.String(),
		CostBasis:        inv.CostBasis.String(),
		RealizedGainLoss: inv.RealizedGainLoss.String(),
		LatestPrice:      models.NullDecimalString(inv.LatestPrice),
		Version:          inv.Version + 1,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}
}

func (r investmentRecord) toModel() (*models.Investment, error) {
	inv := &models.Investment{
		ID:           r.ID,
		AssetID:      r.AssetID,
		Currency:     models.Currency(r.Currency),
		BaseCurrency: models.Currency(r.BaseCurrency),
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Transactions: []*models.InvestmentTransaction{},
	}
	p := parser{}
	inv.TotalUnits = p.decimal(r.TotalUnits)
	inv.TotalCost = p.decimal(r.TotalCost)
	inv.CostBasis = p.decimal(r.CostBasis)
	inv.RealizedGainLoss = p.decimal(r.RealizedGainLoss)
	inv.LatestPrice = p.null(r.LatestPrice)
	if p.err != nil {
		return nil, fmt.Errorf("investment %s: %w", r.ID, p.err)
	}
	return inv, nil
}

type txRecord struct {
	ID               string     `json:"id,omitempty"`
	TxID             string     `json:"tx_id,omitempty"`
	InvestmentID     string     `json:"investment_id"`
	Seq              int        `json:"seq"`
	TransactionType  string     `json:"transaction_type"`
	Units            string     `json:"units"`
	PricePerUnit     string     `json:"price_per_unit"`
	Fees             string     `json:"fees"`
	Currency         string     `json:"currency"`
	ExchangeRate     string     `json:"exchange_rate"`
	Amount           string     `json:"amount"`
	RealizedGainLoss string     `json:"realized_gain_loss"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	ExternalID       string     `json:"external_id"`
	ExecutedAt       *time.Time `json:"executed_at"`
	Brokerage        string     `json:"brokerage"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toTxRecord(tx *models.InvestmentTransaction, investmentID string, seq int) txRecord {
	return txRecord{
		TxID:             tx.ID,
		InvestmentID:     investmentID,
		Seq:              seq,
		TransactionType:  string(tx.TransactionType),
		Units:            tx.Units.String(),
		PricePerUnit:     tx.PricePerUnit.String(),
		Fees:             models.NullDecimalString(tx.Fees),
		Currency:         string(tx.Currency),
		ExchangeRate:     models.NullDecimalString(tx.ExchangeRate),
		Amount:           tx.Amount.String(),
		RealizedGainLoss: models.NullDecimalString(tx.RealizedGainLoss),
		Name:             tx.Name,
		Description:      tx.Description,
		ExternalID:       tx.ExternalID,
		ExecutedAt:       tx.ExecutedAt,
		Brokerage:        tx.Brokerage,
		CreatedAt:        tx.CreatedAt,
		UpdatedAt:        tx.UpdatedAt,
	}
}

func (r txRecord) toModel() (*models.InvestmentTransaction, error) {
	p := parser{}
	tx := &models.InvestmentTransaction{
		TransactionBase: models.TransactionBase{
			ID:          r.ID,
			Amount:      p.decimal(r.Amount),
			Name:        r.Name,
			Description: r.Description,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		},
		InvestmentID:     r.InvestmentID,
		TransactionType:  models.InvestmentTransactionType(r.TransactionType),
		Units:            p.decimal(r.Units),
		PricePerUnit:     p.decimal(r.PricePerUnit),
		Fees:             p.null(r.Fees),
		Currency:         models.Currency(r.Currency),
		ExchangeRate:     p.null(r.ExchangeRate),
		RealizedGainLoss: p.null(r.RealizedGainLoss),
		ExternalID:       r.ExternalID,
		ExecutedAt:       r.ExecutedAt,
		Brokerage:        r.Brokerage,
	}
	if p.err != nil {
		return nil, fmt.Errorf("transaction %s: %w", r.ID, p.err)
	}
	return tx, nil
}

type entryRecord struct {
	ID          string    `json:"id,omitempty"`
	EntryID     string    `json:"entry_id,omitempty"`
	Amount      string    `json:"amount"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toEntryRecord(b models.TransactionBase, category string, tags []models.Tag) entryRecord {
	r := entryRecord{
		EntryID:     b.ID,
		Amount:      b.Amount.String(),
		Name:        b.Name,
		Description: b.Description,
		Category:    category,
		Tags:        make([]string, len(tags)),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	for i, t := range tags {
		r.Tags[i] = string(t)
	}
	return r
}

func (r entryRecord) base() (models.TransactionBase, []models.Tag, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return models.TransactionBase{}, nil, fmt.Errorf("entry %s amount: %w", r.ID, err)
	}
	tags := make([]models.Tag, len(r.Tags))
	for i, t := range r.Tags {
		tags[i] = models.Tag(t)
	}
	return models.TransactionBase{
		ID:          r.ID,
		Amount:      amount,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, tags, nil
}

// parser keeps the first decimal parse error so record conversion reads linearly.
type parser struct {
	err error
}

func (p *parser) decimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return d
}

func (p *parser) null(s string) decimal.NullDecimal {
	d, err := models.ParseNullDecimal(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return d
}
