package postgres

import (
	"context"
	"fmt"

	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/jackc/pgx/v5"
)

const (
	investmentColumns = "id, asset_id, currency, base_currency, total_units::text, total_cost::text, cost_basis::text, realized_gain_loss::text, latest_price::text, version, created_at, updated_at"
	txColumns         = "id, investment_id, transaction_type, units::text, price_per_unit::text, fees::text, currency, exchange_rate::text, amount::text, realized_gain_loss::text, name, description, external_id, executed_at, brokerage, created_at, updated_at"
)

// InvestmentStore implements interfaces.InvestmentStore on the investments
// and investment_transactions tables.
type InvestmentStore struct {
	conn
}

func scanInvestment(row pgx.Row) (*models.Investment, error) {
	var (
		inv                          models.Investment
		units, cost, basis, realized string
		latest                       *string
	)
	if err := row.Scan(&inv.ID, &inv.AssetID, &inv.Currency, &inv.BaseCurrency,
		&units, &cost, &basis, &realized, &latest, &inv.Version, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	n := numerics{}
	inv.TotalUnits = n.decimal(units)
	inv.TotalCost = n.decimal(cost)
	inv.CostBasis = n.decimal(basis)
	inv.RealizedGainLoss = n.decimal(realized)
	inv.LatestPrice = n.null(latest)
	inv.Transactions = []*models.InvestmentTransaction{}
	return &inv, n.err
}

func scanTransaction(row pgx.Row) (*models.InvestmentTransaction, error) {
	var (
		tx                   models.InvestmentTransaction
		units, price, amount string
		fees, rate, realized *string
	)
	if err := row.Scan(&tx.ID, &tx.InvestmentID, &tx.TransactionType, &units, &price, &fees,
		&tx.Currency, &rate, &amount, &realized, &tx.Name, &tx.Description, &tx.ExternalID,
		&tx.ExecutedAt, &tx.Brokerage, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
		return nil, err
	}
	n := numerics{}
	tx.Units = n.decimal(units)
	tx.PricePerUnit = n.decimal(price)
	tx.Amount = n.decimal(amount)
	tx.Fees = n.null(fees)
	tx.ExchangeRate = n.null(rate)
	tx.RealizedGainLoss = n.null(realized)
	return &tx, n.err
}

// attach loads the ordered transactions of every investment in invs.
func (s *InvestmentStore) attach(ctx context.Context, invs ...*models.Investment) error {
	if len(invs) == 0 {
		return nil
	}
	byID := make(map[string]*models.Investment, len(invs))
	ids := make([]string, 0, len(invs))
	for _, inv := range invs {
		byID[inv.ID] = inv
		ids = append(ids, inv.ID)
	}

	rows, err := s.q.Query(ctx, "SELECT "+txColumns+" FROM investment_transactions WHERE investment_id = ANY($1) ORDER BY investment_id, seq", ids)
	if err != nil {
		return mapError(err, "load transactions")
	}
	defer rows.Close()
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return mapError(err, "scan transaction")
		}
		inv := byID[tx.InvestmentID]
		inv.Transactions = append(inv.Transactions, tx)
	}
	return mapError(rows.Err(), "load transactions")
}

func (s *InvestmentStore) queryOne(ctx context.Context, where string, arg any, what string) (*models.Investment, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	sql := "SELECT " + investmentColumns + " FROM investments WHERE " + where
	if s.lock {
		sql += " FOR UPDATE"
	}
	inv, err := scanInvestment(s.q.QueryRow(ctx, sql, arg))
	if err != nil {
		return nil, mapError(err, "investment "+what)
	}
	if err := s.attach(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvestmentStore) GetInvestment(ctx context.Context, id string) (*models.Investment, error) {
	return s.queryOne(ctx, "id = $1", id, id)
}

func (s *InvestmentStore) FindInvestmentByAsset(ctx context.Context, assetID string) (*models.Investment, error) {
	return s.queryOne(ctx, "asset_id = $1", assetID, "for asset "+assetID)
}

func (s *InvestmentStore) FindInvestmentByTransaction(ctx context.Context, transactionID string) (*models.Investment, error) {
	return s.queryOne(ctx, "id = (SELECT investment_id FROM investment_transactions WHERE id = $1)", transactionID, "holding transaction "+transactionID)
}

// SaveInvestment replaces the investment row and its transaction rows in one
// savepoint. The row is only overwritten while its stored version still equals
// inv.Version; otherwise the save fails with ErrConflict.
func (s *InvestmentStore) SaveInvestment(ctx context.Context, inv *models.Investment) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	err := pgx.BeginFunc(ctx, s.q, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		b.Queue(`
			INSERT INTO investments (id, asset_id, currency, base_currency, total_units, total_cost, cost_basis, realized_gain_loss, latest_price, created_at, updated_at, version)
			VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9::numeric, $10, $11, $12::bigint + 1)
			ON CONFLICT (id) DO UPDATE SET
				asset_id           = EXCLUDED.asset_id,
				currency           = EXCLUDED.currency,
				base_currency      = EXCLUDED.base_currency,
				total_units        = EXCLUDED.total_units,
				total_cost         = EXCLUDED.total_cost,
				cost_basis         = EXCLUDED.cost_basis,
				realized_gain_loss = EXCLUDED.realized_gain_loss,
				latest_price       = EXCLUDED.latest_price,
				updated_at         = EXCLUDED.updated_at,
				version            = EXCLUDED.version
			WHERE investments.version = $12`,
			inv.ID, inv.AssetID, string(inv.Currency), string(inv.BaseCurrency),
			inv.TotalUnits.String(), inv.TotalCost.String(), inv.CostBasis.String(), inv.RealizedGainLoss.String(),
			numeric(inv.LatestPrice), inv.CreatedAt, inv.UpdatedAt, inv.Version)
		b.Queue("DELETE FROM investment_transactions WHERE investment_id = $1", inv.ID)
		for seq, t := range inv.Transactions {
			b.Queue(`
				INSERT INTO investment_transactions (id, investment_id, seq, transaction_type, units, price_per_unit, fees, currency, exchange_rate, amount, realized_gain_loss, name, description, external_id, executed_at, brokerage, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8, $9::numeric, $10::numeric, $11::numeric, $12, $13, $14, $15, $16, $17, $18)`,
				t.ID, inv.ID, seq, string(t.TransactionType), t.Units.String(), t.PricePerUnit.String(), numeric(t.Fees),
				string(t.Currency), numeric(t.ExchangeRate), t.Amount.String(), numeric(t.RealizedGainLoss),
				t.Name, t.Description, t.ExternalID, t.ExecutedAt, t.Brokerage, t.CreatedAt, t.UpdatedAt)
		}
		br := tx.SendBatch(ctx, b)
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return err
		}
		if tag.RowsAffected() == 0 {
			br.Close()
			return fmt.Errorf("investment %s changed since version %d: %w", inv.ID, inv.Version, interfaces.ErrConflict)
		}
		return br.Close()
	})
	if err != nil {
		return mapError(err, "save investment "+inv.ID)
	}
	inv.Version++
	return nil
}

func (s *InvestmentStore) DeleteInvestment(ctx context.Context, id string) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	tag, err := s.q.Exec(ctx, "DELETE FROM investments WHERE id = $1", id)
	if err != nil {
		return mapError(err, "delete investment "+id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("investment %s: %w", id, interfaces.ErrNotFound)
	}
	return nil
}

func (s *InvestmentStore) ListInvestments(ctx context.Context, page models.PageRequest) (models.Page[*models.Investment], error) {
	page = page.Normalize()
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	var total int
	if err := s.q.QueryRow(ctx, "SELECT count(*) FROM investments").Scan(&total); err != nil {
		return models.Page[*models.Investment]{}, mapError(err, "count investments")
	}

	rows, err := s.q.Query(ctx, "SELECT "+investmentColumns+" FROM investments ORDER BY created_at, id LIMIT $1 OFFSET $2", page.Size, page.Offset())
	if err != nil {
		return models.Page[*models.Investment]{}, mapError(err, "list investments")
	}
	items := make([]*models.Investment, 0, page.Size)
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			rows.Close()
			return models.Page[*models.Investment]{}, mapError(err, "scan investment")
		}
		items = append(items, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return models.Page[*models.Investment]{}, mapError(err, "list investments")
	}

	if err := s.attach(ctx, items...); err != nil {
		return models.Page[*models.Investment]{}, err
	}
	return models.NewPage(items, page, total), nil
}

func (s *InvestmentStore) ListTransactions(ctx context.Context, page models.PageRequest) (models.Page[*models.InvestmentTransaction], error) {
	page = page.Normalize()
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	var total int
	if err := s.q.QueryRow(ctx, "SELECT count(*) FROM investment_transactions").Scan(&total); err != nil {
		return models.Page[*models.InvestmentTransaction]{}, mapError(err, "count transactions")
	}

	rows, err := s.q.Query(ctx, "SELECT "+txColumns+" FROM investment_transactions ORDER BY created_at, id LIMIT $1 OFFSET $2", page.Size, page.Offset())
	if err != nil {
		return models.Page[*models.InvestmentTransaction]{}, mapError(err, "list transactions")
	}
	defer rows.Close()

	items := make([]*models.InvestmentTransaction, 0, page.Size)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return models.Page[*models.InvestmentTransaction]{}, mapError(err, "scan transaction")
		}
		items = append(items, tx)
	}
	if err := rows.Err(); err != nil {
		return models.Page[*models.InvestmentTransaction]{}, mapError(err, "list transactions")
	}
	return models.NewPage(items, page, total), nil
}

var _ interfaces.InvestmentStore = (*InvestmentStore)(nil)
