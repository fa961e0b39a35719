package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
)

// InvestmentStore implements interfaces.InvestmentStore.
type InvestmentStore struct {
	m *Manager
}

func (s *InvestmentStore) GetInvestment(ctx context.Context, id string) (*models.Investment, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	inv, ok := s.m.ledger.investments[id]
	if !ok {
		return nil, fmt.Errorf("investment %s: %w", id, interfaces.ErrNotFound)
	}
	return inv.Clone(), nil
}

func (s *InvestmentStore) FindInvestmentByAsset(ctx context.Context, assetID string) (*models.Investment, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, inv := range s.m.ledger.investments {
		if inv.AssetID == assetID {
			return inv.Clone(), nil
		}
	}
	return nil, fmt.Errorf("investment for asset %s: %w", assetID, interfaces.ErrNotFound)
}

func (s *InvestmentStore) FindInvestmentByTransaction(ctx context.Context, transactionID string) (*models.Investment, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, inv := range s.m.ledger.investments {
		if inv.Transaction(transactionID) != nil {
			return inv.Clone(), nil
		}
	}
	return nil, fmt.Errorf("investment holding transaction %s: %w", transactionID, interfaces.ErrNotFound)
}

func (s *InvestmentStore) SaveInvestment(ctx context.Context, inv *models.Investment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for id, other := range s.m.ledger.investments {
		if id != inv.ID && other.AssetID == inv.AssetID {
			return fmt.Errorf("asset %s already has investment %s: %w", inv.AssetID, id, interfaces.ErrConflict)
		}
	}
	if stored, ok := s.m.ledger.investments[inv.ID]; ok && stored.Version != inv.Version {
		return fmt.Errorf("investment %s changed since version %d: %w", inv.ID, inv.Version, interfaces.ErrConflict)
	}
	inv.Version++
	stored := inv.Clone()
	stored.Asset = nil
	s.m.ledger.investments[inv.ID] = stored
	return nil
}

func (s *InvestmentStore) DeleteInvestment(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.ledger.investments[id]; !ok {
		return fmt.Errorf("investment %s: %w", id, interfaces.ErrNotFound)
	}
	delete(s.m.ledger.investments, id)
	return nil
}

func (s *InvestmentStore) ListInvestments(ctx context.Context, page models.PageRequest) (models.Page[*models.Investment], error) {
	s.m.mu.RLock()
	all := make([]*models.Investment, 0, len(s.m.ledger.investments))
	for _, inv := range s.m.ledger.investments {
		all = append(all, inv.Clone())
	}
	s.m.mu.RUnlock()
	byCreated(all, func(i *models.Investment) time.Time { return i.CreatedAt }, func(i *models.Investment) string { return i.ID })
	return models.Paginate(all, page), nil
}

func (s *InvestmentStore) ListTransactions(ctx context.Context, page models.PageRequest) (models.Page[*models.InvestmentTransaction], error) {
	s.m.mu.RLock()
	var all []*models.InvestmentTransaction
	for _, inv := range s.m.ledger.investments {
		for _, tx := range inv.Transactions {
			all = append(all, tx.Clone())
		}
	}
	s.m.mu.RUnlock()
	byCreated(all, func(t *models.InvestmentTransaction) time.Time { return t.CreatedAt }, func(t *models.InvestmentTransaction) string { return t.ID })
	return models.Paginate(all, page), nil
}

var _ interfaces.InvestmentStore = (*InvestmentStore)(nil)
