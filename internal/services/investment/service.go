// Package investment records investment transactions against their positions
package investment

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
var _ interfaces.InvestmentService = (*Service)(nil)

// Service implements InvestmentService
type Service struct {
	storage  interfaces.StorageManager
	assets   interfaces.AssetService
	base     models.Currency
	oversell models.OversellPolicy
	logger   *common.Logger
	now      func() time.Time
}

// NewService creates a new investment service
func NewService(storage interfaces.StorageManager, assets interfaces.AssetService, ledger common.LedgerConfig, logger *common.Logger) *Service {
	return &Service{
		storage:  storage,
		assets:   assets,
		base:     ledger.GetBaseCurrency(),
		oversell: ledger.GetOversellPolicy(),
		logger:   logger,
		now:      time.Now,
	}
}

// CreateTransaction resolves the asset, applies the transaction to its position
// and persists the position in one unit of work.
func (s *Service) CreateTransaction(ctx context.Context, req models.InvestmentTransactionRequest) (*models.InvestmentTransaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *models.InvestmentTransaction
	var inv *models.Investment
	err := s.unitOfWork(ctx, func(ctx context.Context, stores interfaces.LedgerStores) error {
		tx, err := req.ToTransaction()
		if err != nil {
			return err
		}
		tx.ID = uuid.NewString()
		inv, err = s.record(ctx, stores, req.AssetRef(), tx)
		created = tx
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", created.ID).
		Str("investment_id", inv.ID).
		Str("ticker", inv.Asset.Ticker).
		Str("type", string(created.TransactionType)).
		Str("amount", created.Amount.String()).
		Msg("Recorded investment transaction")
	return created, nil
}

// unitOfWorkAttempts bounds how often a unit of work is rerun after losing a
// write race on its position.
const unitOfWorkAttempts = 3

// unitOfWork runs fn in a storage transaction. A unit of work that fails with
// ErrConflict is rerun from scratch, so it reloads the position it lost on.
func (s *Service) unitOfWork(ctx context.Context, fn func(ctx context.Context, stores interfaces.LedgerStores) error) error {
	var err error
	for attempt := 1; attempt <= unitOfWorkAttempts; attempt++ {
		err = s.storage.WithTx(ctx, fn)
		if !errors.Is(err, interfaces.ErrConflict) || ctx.Err() != nil {
			return err
		}
		s.logger.Debug().Err(err).Int("attempt", attempt).Msg("Unit of work lost a write race, retrying")
	}
	return err
}

// record appends tx to the position for ref, creating asset and position as needed.
func (s *Service) record(ctx context.Context, stores interfaces.LedgerStores, ref models.AssetRef, tx *models.InvestmentTransaction) (*models.Investment, error) {
	asset, err := s.assets.FindOrCreate(ctx, stores.AssetStore(), ref)
	if err != nil {
		return nil, err
	}

	inv, err := s.findOrOpen(ctx, stores.InvestmentStore(), asset, tx.Currency)
	if err != nil {
		return nil, err
	}
	if inv.HasExternalID(tx.ExternalID) {
		return nil, fmt.Errorf("%w: broker id %s on %s", models.ErrDuplicateTransaction, tx.ExternalID, asset.Ticker)
	}

	now := s.now()
	tx.Touch(now)
	if err := inv.AddTransaction(tx, s.oversell); err != nil {
		return nil, err
	}
	inv.UpdatedAt = now

	if err := stores.InvestmentStore().SaveInvestment(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save investment %s: %w", inv.ID, err)
	}
	inv.Asset = asset
	return inv, nil
}

func (s *Service) findOrOpen(ctx context.Context, store interfaces.InvestmentStore, asset *models.Asset, currency models.Currency) (*models.Investment, error) {
	inv, err := store.FindInvestmentByAsset(ctx, asset.ID)
	if err == nil {
		inv.Asset = asset
		return inv, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to load investment for asset %s: %w", asset.ID, err)
	}
	inv, err = models.NewInvestment(asset, currency, s.base)
	if err != nil {
		return nil, err
	}
	now := s.now()
	inv.ID = uuid.NewString()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	return inv, nil
}

// GetTransaction returns a single investment transaction.
func (s *Service) GetTransaction(ctx context.Context, id string) (*models.InvestmentTransaction, error) {
	inv, err := s.storage.InvestmentStore().FindInvestmentByTransaction(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	tx := inv.Transaction(id)
	if tx == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrTransactionNotFound, id)
	}
	return tx, nil
}

// ListTransactions returns a page of transactions across all positions.
func (s *Service) ListTransactions(ctx context.Context, page models.PageRequest) (models.Page[*models.InvestmentTransaction], error) {
	return s.storage.InvestmentStore().ListTransactions(ctx, page)
}

// UpdateTransaction replaces a transaction and replays its position. When the
// request names a different asset the transaction moves to that asset's position.
func (s *Service) UpdateTransaction(ctx context.Context, id string, req models.InvestmentTransactionRequest) (*models.InvestmentTransaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *models.InvestmentTransaction
	err := s.unitOfWork(ctx, func(ctx context.Context, stores interfaces.LedgerStores) error {
		inv, err := stores.InvestmentStore().FindInvestmentByTransaction(ctx, id)
		if err != nil {
			return notFound(err, id)
		}
		existing := inv.Transaction(id)
		if existing == nil {
			return fmt.Errorf("%w: %s", models.ErrTransactionNotFound, id)
		}

		asset, err := s.assets.FindOrCreate(ctx, stores.AssetStore(), req.AssetRef())
		if err != nil {
			return err
		}

		tx, err := req.ToTransaction()
		if err != nil {
			return err
		}
		tx.ID = id
		tx.CreatedAt = existing.CreatedAt
		tx.Touch(s.now())

		if asset.ID == inv.AssetID {
			if err := inv.ReplaceTransaction(id, tx, s.oversell); err != nil {
				return err
			}
			inv.UpdatedAt = s.now()
			if err := stores.InvestmentStore().SaveInvestment(ctx, inv); err != nil {
				return fmt.Errorf("failed to save investment %s: %w", inv.ID, err)
			}
			updated = tx
			return nil
		}

		if err := s.detach(ctx, stores.InvestmentStore(), inv, id); err != nil {
			return err
		}
		if _, err := s.record(ctx, stores, req.AssetRef(), tx); err != nil {
			return err
		}
		updated = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("transaction_id", id).Msg("Updated investment transaction")
	return updated, nil
}

// DeleteTransaction removes a transaction and replays the rest of its position.
// A position left without transactions is deleted.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	err := s.unitOfWork(ctx, func(ctx context.Context, stores interfaces.LedgerStores) error {
		inv, err := stores.InvestmentStore().FindInvestmentByTransaction(ctx, id)
		if err != nil {
			return notFound(err, id)
		}
		return s.detach(ctx, stores.InvestmentStore(), inv, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("transaction_id", id).Msg("Deleted investment transaction")
	return nil
}

func (s *Service) detach(ctx context.Context, store interfaces.InvestmentStore, inv *models.Investment, id string) error {
	if _, err := inv.RemoveTransaction(id, s.oversell); err != nil {
		return err
	}
	if len(inv.Transactions) == 0 {
		if err := store.DeleteInvestment(ctx, inv.ID); err != nil {
			return fmt.Errorf("failed to delete empty investment %s: %w", inv.ID, err)
		}
		return nil
	}
	inv.UpdatedAt = s.now()
	if err := store.SaveInvestment(ctx, inv); err != nil {
		return fmt.Errorf("failed to save investment %s: %w", inv.ID, err)
	}
	return nil
}

// GetInvestment returns a position with its asset attached.
func (s *Service) GetInvestment(ctx context.Context, id string) (*models.Investment, error) {
	inv, err := s.storage.InvestmentStore().GetInvestment(ctx, id)
	if err != nil {
		return nil, err
	}
	s.attachAsset(ctx, inv)
	return inv, nil
}

// ListInvestments returns a page of positions with their assets attached.
func (s *Service) ListInvestments(ctx context.Context, page models.PageRequest) (models.Page[*models.Investment], error) {
	p, err := s.storage.InvestmentStore().ListInvestments(ctx, page)
	if err != nil {
		return p, err
	}
	for _, inv := range p.Items {
		s.attachAsset(ctx, inv)
	}
	return p, nil
}

// ListAssets returns all known assets.
func (s *Service) ListAssets(ctx context.Context) ([]*models.Asset, error) {
	return s.storage.AssetStore().ListAssets(ctx)
}

func (s *Service) attachAsset(ctx context.Context, inv *models.Investment) {
	a, err := s.storage.AssetStore().GetAsset(ctx, inv.AssetID)
	if err != nil {
		s.logger.Warn().Err(err).Str("investment_id", inv.ID).Msg("Investment references missing asset")
		return
	}
	inv.Asset = a
}

// notFound maps a store miss for a transaction lookup onto ErrTransactionNotFound.
func notFound(err error, id string) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return fmt.Errorf("%w: %s", models.ErrTransactionNotFound, id)
	}
	return err
}
