package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/models"
	tcommon "github.com/bobmcallan/budgeter/tests/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	surreal "github.com/surrealdb/surrealdb.go"
)

// testDB starts the shared SurrealDB container and returns a connected *surreal.DB
// using a unique database name per test to ensure isolation.
func testDB(t *testing.T) *surreal.DB {
	t.Helper()

	sc := tcommon.StartSurrealDB(t)
	ctx := context.Background()

	db, err := surreal.New(sc.Address())
	if err != nil {
		t.Fatalf("connect to SurrealDB: %v", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": tcommon.SurrealUser,
		"pass": tcommon.SurrealPassword,
	}); err != nil {
		t.Fatalf("sign in to SurrealDB: %v", err)
	}

	// SurrealDB rejects "/" in database names
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dbName := fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000)
	if err := db.Use(ctx, "budgeter_test", dbName); err != nil {
		t.Fatalf("select namespace/database: %v", err)
	}

	t.Cleanup(func() {
		db.Close(context.Background())
	})

	return db
}

// testManager returns a Manager over a fresh database.
func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := newManager(context.Background(), testDB(t), testLogger())
	require.NoError(t, err)
	return m
}

// testLogger returns a silent logger for tests.
func testLogger() *common.Logger {
	return common.NewSilentLogger()
}

func testInvestment(t *testing.T, id, assetID string, buys ...int64) *models.Investment {
	t.Helper()
	inv, err := models.NewInvestment(&models.Asset{ID: assetID}, models.USD, models.EUR)
	require.NoError(t, err)
	inv.ID = id
	now := time.Now().UTC().Truncate(time.Millisecond)
	inv.CreatedAt, inv.UpdatedAt = now, now
	for i, units := range buys {
		tx, err := models.NewInvestmentTransaction(models.TxBuy, decimal.NewFromInt(units), decimal.RequireFromString("150.25"), models.USD,
			models.WithFees(decimal.RequireFromString("1.5")),
			models.WithExchangeRate(decimal.RequireFromString("0.92")))
		require.NoError(t, err)
		tx.ID = fmt.Sprintf("%s-tx%d", id, i)
		tx.CreatedAt, tx.UpdatedAt = now, now
		require.NoError(t, inv.AddTransaction(tx, models.OversellReject))
	}
	return inv
}
