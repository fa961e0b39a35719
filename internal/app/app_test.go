package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "budgeter.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// TestNewApp_InitializesAllServices verifies that NewApp creates an App with
// storage and every service initialized.
func TestNewApp_InitializesAllServices(t *testing.T) {
	path := writeTestConfig(t, `
[storage]
backend = "memory"

[ledger]
base_currency = "USD"
oversell = "allow"

[logging]
level = "error"
outputs = ["console"]
`)

	a, err := NewApp(path)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Storage)
	assert.NotNil(t, a.AssetService)
	assert.NotNil(t, a.InvestmentService)
	assert.NotNil(t, a.ImportService)
	assert.NotNil(t, a.BudgetService)
	assert.False(t, a.StartupTime.IsZero())
	assert.Equal(t, common.BackendMemory, a.Storage.Backend())
	assert.Equal(t, models.USD, a.Config.Ledger.GetBaseCurrency())
	assert.Equal(t, models.OversellAllow, a.Config.Ledger.GetOversellPolicy())
}

func TestNewAppWithConfig_RejectsUnknownBackend(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = "cassandra"

	_, err := NewAppWithConfig(cfg, common.NewSilentLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestResolveConfigPath_PrefersArgumentThenEnv(t *testing.T) {
	assert.Equal(t, "explicit.toml", ResolveConfigPath("explicit.toml"))

	t.Setenv("BUDGETER_CONFIG", "/etc/budgeter/budgeter.toml")
	assert.Equal(t, "/etc/budgeter/budgeter.toml", ResolveConfigPath(""))
}

// TestApp_ImportThenQuery drives the wired services end to end on the memory backend.
func TestApp_ImportThenQuery(t *testing.T) {
	a, err := NewAppWithConfig(common.NewDefaultConfig(), common.NewSilentLogger())
	require.NoError(t, err)
	defer a.Close()
	ctx := context.Background()

	csv := strings.Join([]string{
		"Action,Time,ISIN,Ticker,Name,ID,No. of shares,Price / share,Currency (Price / share),Exchange rate,Result,Currency (Result),Total,Currency (Total),Withholding tax,Currency (Withholding tax),Currency conversion fee,Currency (Currency conversion fee)",
		"Market buy,2024-01-15 10:00:00,US0378331005,AAPL,Apple,EOF1,10,150,EUR,,,,1500,EUR,,,,",
		"Market sell,2024-02-15 10:00:00,US0378331005,AAPL,Apple,EOF2,4,170,EUR,,80,EUR,680,EUR,,,,",
	}, "\n")

	result, err := a.ImportService.Import(ctx, "trades.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	page, err := a.InvestmentService.ListInvestments(ctx, models.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	inv := page.Items[0]
	assert.True(t, inv.TotalUnits.Equal(decimal.NewFromInt(6)), "units %s", inv.TotalUnits)
	assert.True(t, inv.RealizedGainLoss.Equal(decimal.NewFromInt(80)), "gain %s", inv.RealizedGainLoss)
	require.NotNil(t, inv.Asset)
	assert.Equal(t, "AAPL", inv.Asset.Ticker)
}
