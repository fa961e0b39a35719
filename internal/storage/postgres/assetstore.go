package postgres

import (
	"context"
	"fmt"

	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/jackc/pgx/v5"
)

const assetColumns = "id, ticker, isin, name, asset_type, investment_style, created_at, updated_at"

// AssetStore implements interfaces.AssetStore on the assets table.
type AssetStore struct {
	conn
}

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var (
		a    models.Asset
		isin *string
	)
	if err := row.Scan(&a.ID, &a.Ticker, &isin, &a.Name, &a.AssetType, &a.InvestmentStyle, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.ISIN = deref(isin)
	return &a, nil
}

func (s *AssetStore) queryOne(ctx context.Context, where string, arg any, what string) (*models.Asset, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	a, err := scanAsset(s.q.QueryRow(ctx, "SELECT "+assetColumns+" FROM assets WHERE "+where, arg))
	if err != nil {
		return nil, mapError(err, "asset "+what)
	}
	return a, nil
}

func (s *AssetStore) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	return s.queryOne(ctx, "id = $1", id, id)
}

func (s *AssetStore) FindAssetByISIN(ctx context.Context, isin string) (*models.Asset, error) {
	if isin == "" {
		return nil, fmt.Errorf("asset with empty isin: %w", interfaces.ErrNotFound)
	}
	return s.queryOne(ctx, "upper(isin) = upper($1)", isin, "isin "+isin)
}

func (s *AssetStore) FindAssetByTicker(ctx context.Context, ticker string) (*models.Asset, error) {
	return s.queryOne(ctx, "ticker = $1", ticker, "ticker "+ticker)
}

// SaveAsset upserts inside a savepoint so a uniqueness failure leaves an
// enclosing transaction usable.
func (s *AssetStore) SaveAsset(ctx context.Context, asset *models.Asset) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	err := pgx.BeginFunc(ctx, s.q, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO assets (`+assetColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				ticker           = EXCLUDED.ticker,
				isin             = EXCLUDED.isin,
				name             = EXCLUDED.name,
				asset_type       = EXCLUDED.asset_type,
				investment_style = EXCLUDED.investment_style,
				updated_at       = EXCLUDED.updated_at`,
			asset.ID, asset.Ticker, nullIfEmpty(asset.ISIN), asset.Name,
			string(asset.AssetType), string(asset.InvestmentStyle), asset.CreatedAt, asset.UpdatedAt)
		return err
	})
	return mapError(err, "save asset "+asset.ID)
}

func (s *AssetStore) ListAssets(ctx context.Context) ([]*models.Asset, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	rows, err := s.q.Query(ctx, "SELECT "+assetColumns+" FROM assets ORDER BY created_at, id")
	if err != nil {
		return nil, mapError(err, "list assets")
	}
	defer rows.Close()

	out := []*models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, mapError(err, "scan asset")
		}
		out = append(out, a)
	}
	return out, mapError(rows.Err(), "list assets")
}

var _ interfaces.AssetStore = (*AssetStore)(nil)
