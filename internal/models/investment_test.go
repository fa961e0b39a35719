package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !dec(want).Equal(got) {
		t.Errorf("want %s, got %s %v", want, got, msgAndArgs)
	}
}

func newTestInvestment(t *testing.T) *Investment {
	t.Helper()
	inv, err := NewInvestment(&Asset{ID: "asset-1", Ticker: "AAPL", Name: "Apple Inc."}, EUR, EUR)
	require.NoError(t, err)
	inv.ID = "inv-1"
	return inv
}

func mustTx(t *testing.T, txType InvestmentTransactionType, units, price string, opts ...TransactionOption) *InvestmentTransaction {
	t.Helper()
	tx, err := NewInvestmentTransaction(txType, dec(units), dec(price), EUR, opts...)
	require.NoError(t, err)
	return tx
}

func TestAddTransaction_BuyThenSell(t *testing.T) {
	inv := newTestInvestment(t)

	buy := mustTx(t, TxBuy, "10", "150", WithFees(dec("5")))
	require.NoError(t, inv.AddTransaction(buy, OversellReject))

	assertDec(t, "10", inv.TotalUnits)
	assertDec(t, "1505.00", inv.TotalCost)
	assertDec(t, "150.50000000", inv.CostBasis)
	assertDec(t, "1505", buy.Amount)
	assert.False(t, buy.RealizedGainLoss.Valid, "BUY must not carry a realized gain")
	assert.Equal(t, "inv-1", buy.InvestmentID)

	sell := mustTx(t, TxSell, "5", "170", WithFees(dec("3")))
	require.NoError(t, inv.AddTransaction(sell, OversellReject))

	require.True(t, sell.RealizedGainLoss.Valid)
	assertDec(t, "94.50", sell.RealizedGainLoss.Decimal)
	assertDec(t, "94.50", inv.RealizedGainLoss)
	assertDec(t, "5", inv.TotalUnits)
	assertDec(t, "752.50", inv.TotalCost)
	assertDec(t, "150.50000000", inv.CostBasis, "cost basis is unchanged by a sale")
	assertDec(t, "170", inv.LatestPrice.Decimal)
	assert.Len(t, inv.Transactions, 2)
}

func TestAddTransaction_SequentialSells(t *testing.T) {
	inv := newTestInvestment(t)

	require.NoError(t, inv.AddTransaction(mustTx(t, TxBuy, "10", "100"), OversellReject))

	first := mustTx(t, TxSell, "3", "120")
	require.NoError(t, inv.AddTransaction(first, OversellReject))
	assertDec(t, "60", first.RealizedGainLoss.Decimal)

	second := mustTx(t, TxSell, "2", "90")
	require.NoError(t, inv.AddTransaction(second, OversellReject))
	assertDec(t, "-20", second.RealizedGainLoss.Decimal)

	assertDec(t, "40", inv.RealizedGainLoss)
	assertDec(t, "5", inv.TotalUnits)
	assertDec(t, "500", inv.TotalCost)
	assertDec(t, "100", inv.CostBasis)
}

func TestAddTransaction_BuyOnlySums(t *testing.T) {
	inv := newTestInvestment(t)
	buys := []struct{ units, price, fees string }{
		{"2", "10.5", "1"},
		{"3.25", "12", "0"},
		{"0.75", "9.99", "0.5"},
	}
	units, cost := decimal.Zero, decimal.Zero
	for _, b := range buys {
		tx := mustTx(t, TxBuy, b.units, b.price, WithFees(dec(b.fees)))
		require.NoError(t, inv.AddTransaction(tx, OversellReject))
		units = units.Add(dec(b.units))
		cost = cost.Add(dec(b.units).Mul(dec(b.price))).Add(dec(b.fees))
	}
	assert.True(t, units.Equal(inv.TotalUnits))
	assert.True(t, cost.Equal(inv.TotalCost))
	assert.True(t, inv.RealizedGainLoss.IsZero())
	assert.True(t, cost.DivRound(units, CostBasisPlaces).Equal(inv.CostBasis))
}

func TestAddTransaction_SellToZeroResetsBasis(t *testing.T) {
	inv := newTestInvestment(t)
	require.NoError(t, inv.AddTransaction(mustTx(t, TxBuy, "3", "10"), OversellReject))
	require.NoError(t, inv.AddTransaction(mustTx(t, TxSell, "3", "12"), OversellReject))

	assert.True(t, inv.TotalUnits.IsZero())
	assert.True(t, inv.TotalCost.IsZero())
	assert.True(t, inv.CostBasis.IsZero())
	assertDec(t, "6", inv.RealizedGainLoss)
}

func TestAddTransaction_OversellRejectedLeavesPositionUntouched(t *testing.T) {
	inv := newTestInvestment(t)
	require.NoError(t, inv.AddTransaction(mustTx(t, TxBuy, "2", "50"), OversellReject))

	err := inv.AddTransaction(mustTx(t, TxSell, "3", "60"), OversellReject)
	require.ErrorIs(t, err, ErrOversell)

	assertDec(t, "2", inv.TotalUnits)
	assertDec(t, "100", inv.TotalCost)
	assertDec(t, "50", inv.LatestPrice.Decimal)
	assert.Len(t, inv.Transactions, 1)
}

func TestAddTransaction_OversellAllowedGoesShort(t *testing.T) {
	inv := newTestInvestment(t)
	require.NoError(t, inv.AddTransaction(mustTx(t, TxBuy, "2", "50"), OversellAllow))
	require.NoError(t, inv.AddTransaction(mustTx(t, TxSell, "3", "60"), OversellAllow))

	assertDec(t, "-1", inv.TotalUnits)
	assertDec(t, "-50", inv.TotalCost)
	assert.True(t, inv.CostBasis.IsZero(), "basis is zero when units are not positive")
	assertDec(t, "30", inv.RealizedGainLoss)
}

func TestAddTransaction_DividendIsInformational(t *testing.T) {
	inv := newTestInvestment(t)
	require.NoError(t, inv.AddTransaction(mustTx(t, TxBuy, "10", "20"), OversellReject))

	div := mustTx(t, TxDividend, "0.0253888", "0.816")
	require.NoError(t, inv.AddTransaction(div, OversellReject))

	assertDec(t, "10", inv.TotalUnits)
	assertDec(t, "200", inv.TotalCost)
	assertDec(t, "20", inv.CostBasis)
	assert.True(t, inv.RealizedGainLoss.IsZero())
	assertDec(t, "0.0207172608", div.Amount)
	assertDec(t, "0.816", inv.LatestPrice.Decimal)
}

func TestAddTransaction_InvalidInput(t *testing.T) {
	inv := newTestInvestment(t)
	bad := &InvestmentTransaction{TransactionType: TxBuy, Units: dec("0"), PricePerUnit: dec("10"), Currency: EUR}

	err := inv.AddTransaction(bad, OversellReject)
	require.ErrorIs(t, err, ErrInvalidTransaction)
	assert.Empty(t, inv.Transactions)
	assert.False(t, inv.LatestPrice.Valid)
}

func TestAddTransaction_ForeignCurrencyConvertedBeforeFees(t *testing.T) {
	inv, err := NewInvestment(&Asset{ID: "asset-2", Ticker: "MSFT", Name: "Microsoft"}, USD, EUR)
	require.NoError(t, err)

	tx, err := NewInvestmentTransaction(TxBuy, dec("10"), dec("20"), USD,
		WithExchangeRate(dec("0.9")), WithFees(dec("1")))
	require.NoError(t, err)
	require.NoError(t, inv.AddTransaction(tx, OversellReject))

	assertDec(t, "181", tx.Amount)
	assertDec(t, "181", inv.TotalCost)
	assertDec(t, "18.1", inv.CostBasis)
	assertDec(t, "20", inv.LatestPrice.Decimal, "latest price stays in the native currency")
}

func TestRemoveTransaction_ReplaysHistory(t *testing.T) {
	inv := newTestInvestment(t)
	buy1 := mustTx(t, TxBuy, "10", "100")
	buy1.ID = "b1"
	buy2 := mustTx(t, TxBuy, "10", "200")
	buy2.ID = "b2"
	sell := mustTx(t, TxSell, "5", "180")
	sell.ID = "s1"
	for _, tx := range []*InvestmentTransaction{buy1, buy2, sell} {
		require.NoError(t, inv.AddTransaction(tx, OversellReject))
	}
	assertDec(t, "150", inv.CostBasis)
	assertDec(t, "150", sell.RealizedGainLoss.Decimal)

	removed, err := inv.RemoveTransaction("b2", OversellReject)
	require.NoError(t, err)
	assert.Equal(t, "", removed.InvestmentID)

	assertDec(t, "5", inv.TotalUnits)
	assertDec(t, "500", inv.TotalCost)
	assertDec(t, "100", inv.CostBasis)
	assertDec(t, "400", inv.RealizedGainLoss)
	assertDec(t, "400", sell.RealizedGainLoss.Decimal)
	assert.Len(t, inv.Transactions, 2)
}

func TestRemoveTransaction_RejectedReplayKeepsState(t *testing.T) {
	inv := newTestInvestment(t)
	buy := mustTx(t, TxBuy, "5", "10")
	buy.ID = "b1"
	sell := mustTx(t, TxSell, "5", "12")
	sell.ID = "s1"
	require.NoError(t, inv.AddTransaction(buy, OversellReject))
	require.NoError(t, inv.AddTransaction(sell, OversellReject))

	_, err := inv.RemoveTransaction("b1", OversellReject)
	require.ErrorIs(t, err, ErrOversell)
	assert.Len(t, inv.Transactions, 2)
	assertDec(t, "10", inv.RealizedGainLoss)
	assert.Equal(t, "inv-1", buy.InvestmentID)

	_, err = inv.RemoveTransaction("missing", OversellReject)
	require.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestReplaceTransaction(t *testing.T) {
	inv := newTestInvestment(t)
	buy := mustTx(t, TxBuy, "10", "100")
	buy.ID = "b1"
	require.NoError(t, inv.AddTransaction(buy, OversellReject))

	repl := mustTx(t, TxBuy, "4", "50", WithFees(dec("2")))
	require.NoError(t, inv.ReplaceTransaction("b1", repl, OversellReject))

	assert.Equal(t, "b1", repl.ID)
	assertDec(t, "4", inv.TotalUnits)
	assertDec(t, "202", inv.TotalCost)
	assertDec(t, "50.5", inv.CostBasis)
	assert.Same(t, repl, inv.Transaction("b1"))
}

func TestUpdateCostBasis_RoundsHalfUp(t *testing.T) {
	inv := newTestInvestment(t)
	inv.TotalUnits = dec("3")
	inv.TotalCost = dec("100")
	inv.UpdateCostBasis()
	assertDec(t, "33.33333333", inv.CostBasis)

	inv.TotalCost = dec("200")
	inv.UpdateCostBasis()
	assertDec(t, "66.66666667", inv.CostBasis)

	inv.TotalUnits = decimal.Zero
	inv.UpdateCostBasis()
	assert.True(t, inv.CostBasis.IsZero())
}

func TestClone_IsDeep(t *testing.T) {
	inv := newTestInvestment(t)
	require.NoError(t, inv.AddTransaction(mustTx(t, TxBuy, "1", "1"), OversellReject))

	c := inv.Clone()
	c.Transactions[0].Name = "changed"
	c.Asset.Ticker = "X"
	assert.Empty(t, inv.Transactions[0].Name)
	assert.Equal(t, "AAPL", inv.Asset.Ticker)
}

func TestParseOversellPolicy(t *testing.T) {
	assert.Equal(t, OversellAllow, ParseOversellPolicy(" Allow "))
	assert.Equal(t, OversellReject, ParseOversellPolicy("reject"))
	assert.Equal(t, OversellReject, ParseOversellPolicy(""))
	assert.Equal(t, OversellReject, ParseOversellPolicy("bogus"))
}
