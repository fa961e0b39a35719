package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
)

// AssetStore implements interfaces.AssetStore.
type AssetStore struct {
	m *Manager
}

func (s *AssetStore) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	a, ok := s.m.ledger.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", id, interfaces.ErrNotFound)
	}
	return a.Clone(), nil
}

func (s *AssetStore) find(match func(*models.Asset) bool, what string) (*models.Asset, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, a := range s.m.ledger.assets {
		if match(a) {
			return a.Clone(), nil
		}
	}
	return nil, fmt.Errorf("asset %s: %w", what, interfaces.ErrNotFound)
}

func (s *AssetStore) FindAssetByISIN(ctx context.Context, isin string) (*models.Asset, error) {
	if isin == "" {
		return nil, fmt.Errorf("asset with empty isin: %w", interfaces.ErrNotFound)
	}
	return s.find(func(a *models.Asset) bool { return strings.EqualFold(a.ISIN, isin) }, "isin "+isin)
}

func (s *AssetStore) FindAssetByTicker(ctx context.Context, ticker string) (*models.Asset, error) {
	return s.find(func(a *models.Asset) bool { return a.Ticker == ticker }, "ticker "+ticker)
}

func (s *AssetStore) SaveAsset(ctx context.Context, asset *models.Asset) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for id, other := range s.m.ledger.assets {
		if id == asset.ID {
			continue
		}
		if other.Ticker == asset.Ticker {
			return fmt.Errorf("ticker %s already used by asset %s: %w", asset.Ticker, id, interfaces.ErrConflict)
		}
		if asset.ISIN != "" && strings.EqualFold(other.ISIN, asset.ISIN) {
			return fmt.Errorf("isin %s already used by asset %s: %w", asset.ISIN, id, interfaces.ErrConflict)
		}
	}
	s.m.ledger.assets[asset.ID] = asset.Clone()
	return nil
}

func (s *AssetStore) ListAssets(ctx context.Context) ([]*models.Asset, error) {
	s.m.mu.RLock()
	out := make([]*models.Asset, 0, len(s.m.ledger.assets))
	for _, a := range s.m.ledger.assets {
		out = append(out, a.Clone())
	}
	s.m.mu.RUnlock()
	byCreated(out, func(a *models.Asset) time.Time { return a.CreatedAt }, func(a *models.Asset) string { return a.ID })
	return out, nil
}

var _ interfaces.AssetStore = (*AssetStore)(nil)
