// Package asset resolves asset references to persisted assets
package asset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ interfaces.AssetService = (*Service)(nil)

// Service implements AssetService
type Service struct {
	logger *common.Logger
	now    func() time.Time
}

// NewService creates a new asset resolver
func NewService(logger *common.Logger) *Service {
	return &Service{logger: logger, now: time.Now}
}

// lookup tries ISIN first (authoritative when present), then ticker.
func lookup(ctx context.Context, store interfaces.AssetStore, ref models.AssetRef) (*models.Asset, error) {
	if ref.ISIN != "" {
		a, err := store.FindAssetByISIN(ctx, ref.ISIN)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up asset by isin %s: %w", ref.ISIN, err)
		}
	}
	if ref.Ticker != "" {
		a, err := store.FindAssetByTicker(ctx, ref.Ticker)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up asset by ticker %s: %w", ref.Ticker, err)
		}
	}
	return nil, interfaces.ErrNotFound
}

// FindOrCreate returns the asset matching ref, creating it with default
// classification when neither the ISIN nor the ticker is known.
func (s *Service) FindOrCreate(ctx context.Context, store interfaces.AssetStore, ref models.AssetRef) (*models.Asset, error) {
	ref = ref.Normalize()

	a, err := lookup(ctx, store, ref)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	a, err = models.NewAsset(ref)
	if err != nil {
		return nil, err
	}
	now := s.now()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := store.SaveAsset(ctx, a); err != nil {
		if !errors.Is(err, interfaces.ErrConflict) {
			return nil, fmt.Errorf("failed to save asset %s: %w", ref.Ticker, err)
		}
		// Another writer created it between lookup and save.
		existing, lerr := lookup(ctx, store, ref)
		if lerr != nil {
			return nil, fmt.Errorf("asset %s conflicted but could not be reloaded: %w", ref.Ticker, lerr)
		}
		return existing, nil
	}

	s.logger.Info().
		Str("asset_id", a.ID).
		Str("ticker", a.Ticker).
		Str("isin", a.ISIN).
		Msg("Created asset")
	return a, nil
}
