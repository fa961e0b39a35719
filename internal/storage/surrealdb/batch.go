package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// batch accumulates statements that are executed in a single transaction.
type batch struct {
	stmts []string
	vars  map[string]any
}

func newBatch() *batch {
	return &batch{vars: map[string]any{}}
}

// param binds v and returns its placeholder.
func (b *batch) param(v any) string {
	name := fmt.Sprintf("p%d", len(b.vars))
	b.vars[name] = v
	return "$" + name
}

func (b *batch) add(format string, args ...any) {
	b.stmts = append(b.stmts, fmt.Sprintf(format, args...))
}

func (b *batch) empty() bool {
	return len(b.stmts) == 0
}

func (b *batch) upsertAsset(a *models.Asset) {
	b.add("UPSERT %s CONTENT %s", b.param(surrealmodels.NewRecordID("asset", a.ID)), b.param(toAssetRecord(a)))
}

// saveInvestment replaces the investment row and all of its transaction rows.
// The batch throws when the stored version no longer matches inv.Version.
func (b *batch) saveInvestment(inv *models.Investment) {
	rid := b.param(surrealmodels.NewRecordID("investment", inv.ID))
	b.add("IF ((SELECT VALUE version FROM %s)[0] ?? 0) != %s { THROW %q }", rid, b.param(inv.Version), errVersionConflict)
	b.add("UPSERT %s CONTENT %s", rid, b.param(toInvestmentRecord(inv)))
	id := b.param(inv.ID)
	b.add("DELETE investment_tx WHERE investment_id = %s", id)
	if len(inv.Transactions) == 0 {
		return
	}
	records := make([]txRecord, len(inv.Transactions))
	for i, tx := range inv.Transactions {
		records[i] = toTxRecord(tx, inv.ID, i)
	}
	b.add("INSERT INTO investment_tx %s", b.param(records))
}

func (b *batch) deleteInvestment(id string) {
	b.add("DELETE %s", b.param(surrealmodels.NewRecordID("investment", id)))
	b.add("DELETE investment_tx WHERE investment_id = %s", b.param(id))
}

func (b *batch) exec(ctx context.Context, db *surrealdb.DB) error {
	if b.empty() {
		return nil
	}
	sql := "BEGIN TRANSACTION;\n" + strings.Join(b.stmts, ";\n") + ";\nCOMMIT TRANSACTION;"
	results, err := surrealdb.Query[any](ctx, db, sql, b.vars)
	if err != nil {
		if isConflict(err.Error()) {
			return fmt.Errorf("%v: %w", err, interfaces.ErrConflict)
		}
		return err
	}
	if results == nil {
		return nil
	}
	// every statement of a failed transaction reports an error, so look for
	// the one that caused it before falling back to the first
	var failed []string
	for _, r := range *results {
		if r.Status != "" && r.Status != "OK" {
			msg := fmt.Sprint(r.Result)
			if isConflict(msg) {
				return fmt.Errorf("%s: %w", msg, interfaces.ErrConflict)
			}
			failed = append(failed, msg)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("surrealdb transaction failed: %s", failed[0])
	}
	return nil
}
