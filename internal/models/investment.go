package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OversellPolicy decides what happens when a SELL exceeds the units held.
type OversellPolicy string

const (
	// OversellReject refuses the SELL and leaves the position untouched.
	OversellReject OversellPolicy = "reject"
	// OversellAllow lets units go negative (a short position).
	OversellAllow OversellPolicy = "allow"
)

// ParseOversellPolicy returns the policy named by s, defaulting to OversellReject.
func ParseOversellPolicy(s string) OversellPolicy {
	if OversellPolicy(strings.ToLower(strings.TrimSpace(s))) == OversellAllow {
		return OversellAllow
	}
	return OversellReject
}

var (
	ErrInvalidTransaction   = errors.New("invalid investment transaction")
	ErrOversell             = errors.New("sell exceeds units held")
	ErrTransactionNotFound  = errors.New("investment transaction not found")
	ErrDuplicateTransaction = errors.New("investment transaction already recorded")
)

// CostBasisPlaces is the number of fractional digits kept on the per-unit cost basis.
const CostBasisPlaces = 8

// Investment is the running position held in one asset.
// TotalCost, CostBasis and RealizedGainLoss are in BaseCurrency.
type Investment struct {
	ID               string                   `json:"id"`
	AssetID          string                   `json:"asset_id"`
	Asset            *Asset                   `json:"asset,omitempty"`
	Currency         Currency                 `json:"currency"`
	BaseCurrency     Currency                 `json:"base_currency"`
	TotalUnits       decimal.Decimal          `json:"total_units"`
	TotalCost        decimal.Decimal          `json:"total_cost"`
	CostBasis        decimal.Decimal          `json:"cost_basis"`
	RealizedGainLoss decimal.Decimal          `json:"realized_gain_loss"`
	LatestPrice      decimal.NullDecimal      `json:"latest_price"`
	Transactions     []*InvestmentTransaction `json:"transactions"`
	// Version counts saves; stores reject a save whose version is stale.
	Version          int64                    `json:"version"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

// NewInvestment opens an empty position in asset.
func NewInvestment(asset *Asset, currency, base Currency) (*Investment, error) {
	if asset == nil || asset.ID == "" {
		return nil, fmt.Errorf("investment requires a persisted asset")
	}
	if currency == "" {
		currency = base
	}
	return &Investment{
		AssetID:      asset.ID,
		Asset:        asset,
		Currency:     currency,
		BaseCurrency: base,
		Transactions: []*InvestmentTransaction{},
	}, nil
}

// position is the numeric state of an investment, applied by value so a
// failed transition never touches the aggregate.
type position struct {
	units    decimal.Decimal
	cost     decimal.Decimal
	basis    decimal.Decimal
	realized decimal.Decimal
	latest   decimal.NullDecimal
}

func costBasis(cost, units decimal.Decimal) decimal.Decimal {
	if !units.IsPositive() {
		return decimal.Zero
	}
	return cost.DivRound(units, CostBasisPlaces)
}

// apply returns the position after tx, plus the gain tx realizes (SELL only).
func (p position) apply(tx *InvestmentTransaction, base Currency, policy OversellPolicy) (position, decimal.NullDecimal, error) {
	gain := decimal.NullDecimal{}
	switch tx.TransactionType {
	case TxBuy:
		p.units = p.units.Add(tx.Units)
		p.cost = p.cost.Add(tx.GrossBase(base)).Add(tx.FeesOrZero())
		p.basis = costBasis(p.cost, p.units)
	case TxSell:
		if policy != OversellAllow && tx.Units.GreaterThan(p.units) {
			return p, gain, fmt.Errorf("%w: selling %s with %s held", ErrOversell, tx.Units, p.units)
		}
		costOfSold := tx.Units.Mul(p.basis)
		g := tx.GrossBase(base).Sub(costOfSold).Sub(tx.FeesOrZero())
		gain = decimal.NewNullDecimal(g)
		p.realized = p.realized.Add(g)
		p.units = p.units.Sub(tx.Units)
		p.cost = p.cost.Sub(costOfSold)
		p.basis = costBasis(p.cost, p.units)
	case TxDividend:
		// informational income, the position is unchanged
	default:
		return p, gain, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidTransaction, tx.TransactionType)
	}
	p.latest = decimal.NewNullDecimal(tx.PricePerUnit)
	return p, gain, nil
}

func (inv *Investment) position() position {
	return position{
		units:    inv.TotalUnits,
		cost:     inv.TotalCost,
		basis:    inv.CostBasis,
		realized: inv.RealizedGainLoss,
		latest:   inv.LatestPrice,
	}
}

func (inv *Investment) setPosition(p position) {
	inv.TotalUnits = p.units
	inv.TotalCost = p.cost
	inv.CostBasis = p.basis
	inv.RealizedGainLoss = p.realized
	inv.LatestPrice = p.latest
}

func (inv *Investment) base() Currency {
	if inv.BaseCurrency == "" {
		return DefaultBaseCurrency
	}
	return inv.BaseCurrency
}

// AddTransaction applies tx to the position and appends it. Every check runs
// before the first field is written, so an error leaves the investment unchanged.
func (inv *Investment) AddTransaction(tx *InvestmentTransaction, policy OversellPolicy) error {
	if tx == nil {
		return fmt.Errorf("%w: nil transaction", ErrInvalidTransaction)
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	next, gain, err := inv.position().apply(tx, inv.base(), policy)
	if err != nil {
		return err
	}
	tx.CalculateAmount(inv.base())
	tx.RealizedGainLoss = gain
	tx.InvestmentID = inv.ID
	inv.Transactions = append(inv.Transactions, tx)
	inv.setPosition(next)
	return nil
}

// UpdateCostBasis recomputes CostBasis from TotalCost and TotalUnits.
func (inv *Investment) UpdateCostBasis() {
	inv.CostBasis = costBasis(inv.TotalCost, inv.TotalUnits)
}

// Transaction returns the transaction with id, or nil.
func (inv *Investment) Transaction(id string) *InvestmentTransaction {
	for _, tx := range inv.Transactions {
		if tx.ID == id {
			return tx
		}
	}
	return nil
}

// HasExternalID reports whether a transaction with the broker id externalID is recorded.
func (inv *Investment) HasExternalID(externalID string) bool {
	if externalID == "" {
		return false
	}
	for _, tx := range inv.Transactions {
		if tx.ExternalID == externalID {
			return true
		}
	}
	return false
}

func (inv *Investment) indexOf(id string) int {
	for i, tx := range inv.Transactions {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

// replay rebuilds the position from zero over txs in order and records each SELL's gain.
func (inv *Investment) replay(txs []*InvestmentTransaction, policy OversellPolicy) error {
	p := position{}
	gains := make([]decimal.NullDecimal, len(txs))
	for i, tx := range txs {
		next, gain, err := p.apply(tx, inv.base(), policy)
		if err != nil {
			return err
		}
		p = next
		gains[i] = gain
	}
	for i, tx := range txs {
		tx.RealizedGainLoss = gains[i]
		tx.InvestmentID = inv.ID
		tx.CalculateAmount(inv.base())
	}
	inv.Transactions = txs
	inv.setPosition(p)
	return nil
}

// RemoveTransaction detaches the transaction with id and replays the rest of the
// history in order. If the replay is rejected the investment is left unchanged.
func (inv *Investment) RemoveTransaction(id string, policy OversellPolicy) (*InvestmentTransaction, error) {
	idx := inv.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	removed := inv.Transactions[idx]
	remaining := make([]*InvestmentTransaction, 0, len(inv.Transactions)-1)
	remaining = append(remaining, inv.Transactions[:idx]...)
	remaining = append(remaining, inv.Transactions[idx+1:]...)
	if err := inv.replay(remaining, policy); err != nil {
		return nil, fmt.Errorf("remove transaction %s: %w", id, err)
	}
	removed.InvestmentID = ""
	removed.RealizedGainLoss = decimal.NullDecimal{}
	return removed, nil
}

// ReplaceTransaction swaps the transaction with id for tx, keeping its place in
// the history, and replays. tx takes over the replaced transaction's ID.
func (inv *Investment) ReplaceTransaction(id string, tx *InvestmentTransaction, policy OversellPolicy) error {
	if tx == nil {
		return fmt.Errorf("%w: nil transaction", ErrInvalidTransaction)
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	idx := inv.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	txs := make([]*InvestmentTransaction, len(inv.Transactions))
	copy(txs, inv.Transactions)
	tx.ID = id
	txs[idx] = tx
	if err := inv.replay(txs, policy); err != nil {
		return fmt.Errorf("replace transaction %s: %w", id, err)
	}
	return nil
}

// Clone returns a deep copy of inv, including its transactions.
func (inv *Investment) Clone() *Investment {
	if inv == nil {
		return nil
	}
	c := *inv
	c.Asset = inv.Asset.Clone()
	c.Transactions = make([]*InvestmentTransaction, len(inv.Transactions))
	for i, tx := range inv.Transactions {
		c.Transactions[i] = tx.Clone()
	}
	return &c
}
