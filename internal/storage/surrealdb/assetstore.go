package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// AssetStore implements interfaces.AssetStore using SurrealDB.
type AssetStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewAssetStore creates a new AssetStore.
func NewAssetStore(db *surrealdb.DB, logger *common.Logger) *AssetStore {
	return &AssetStore{db: db, logger: logger}
}

func (s *AssetStore) queryOne(ctx context.Context, where string, vars map[string]any, what string) (*models.Asset, error) {
	sql := "SELECT " + assetSelectFields + " FROM asset WHERE " + where + " LIMIT 1"
	results, err := surrealdb.Query[[]assetRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset %s: %w", what, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("asset %s: %w", what, interfaces.ErrNotFound)
	}
	return (*results)[0].Result[0].toModel(), nil
}

func (s *AssetStore) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	return s.queryOne(ctx, "asset_id = $id", map[string]any{"id": id}, id)
}

func (s *AssetStore) FindAssetByISIN(ctx context.Context, isin string) (*models.Asset, error) {
	if isin == "" {
		return nil, fmt.Errorf("asset with empty isin: %w", interfaces.ErrNotFound)
	}
	return s.queryOne(ctx, "string::uppercase(isin) = string::uppercase($isin)", map[string]any{"isin": isin}, "isin "+isin)
}

func (s *AssetStore) FindAssetByTicker(ctx context.Context, ticker string) (*models.Asset, error) {
	return s.queryOne(ctx, "ticker = $ticker", map[string]any{"ticker": ticker}, "ticker "+ticker)
}

// conflict returns ErrConflict when another asset already holds a's ticker or ISIN.
func (s *AssetStore) conflict(ctx context.Context, a *models.Asset) error {
	sql := "SELECT " + assetSelectFields + " FROM asset WHERE asset_id != $id AND (ticker = $ticker OR ($isin != '' AND string::uppercase(isin) = string::uppercase($isin))) LIMIT 1"
	vars := map[string]any{"id": a.ID, "ticker": a.Ticker, "isin": a.ISIN}
	results, err := surrealdb.Query[[]assetRecord](ctx, s.db, sql, vars)
	if err != nil {
		return fmt.Errorf("failed to check asset uniqueness: %w", err)
	}
	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		other := (*results)[0].Result[0]
		return fmt.Errorf("ticker %s or isin %s already used by asset %s: %w", a.Ticker, a.ISIN, other.ID, interfaces.ErrConflict)
	}
	return nil
}

func (s *AssetStore) SaveAsset(ctx context.Context, asset *models.Asset) error {
	if err := s.conflict(ctx, asset); err != nil {
		return err
	}
	b := newBatch()
	b.upsertAsset(asset)
	if err := b.exec(ctx, s.db); err != nil {
		return fmt.Errorf("failed to save asset %s: %w", asset.ID, err)
	}
	return nil
}

func (s *AssetStore) ListAssets(ctx context.Context) ([]*models.Asset, error) {
	sql := "SELECT " + assetSelectFields + " FROM asset ORDER BY created_at ASC, id ASC"
	results, err := surrealdb.Query[[]assetRecord](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	out := []*models.Asset{}
	if results != nil && len(*results) > 0 {
		for _, r := range (*results)[0].Result {
			out = append(out, r.toModel())
		}
	}
	return out, nil
}

var _ interfaces.AssetStore = (*AssetStore)(nil)
