// Package storage selects the storage backend configured for Budgeter.
package storage

import (
	"fmt"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/storage/memory"
	"github.com/bobmcallan/budgeter/internal/storage/postgres"
	"github.com/bobmcallan/budgeter/internal/storage/surrealdb"
)

// NewStorageManager creates the storage manager named by config.Storage.Backend.
// Supported backends: "memory" (default), "surrealdb", "postgres".
func NewStorageManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = common.BackendMemory
	}

	switch backend {
	case common.BackendMemory:
		logger.Warn().Msg("Using in-memory storage; data is lost on shutdown")
		return memory.NewManager(logger), nil

	case common.BackendSurrealDB:
		return surrealdb.NewManager(logger, config)

	case common.BackendPostgres:
		return postgres.NewManager(logger, config)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: memory, surrealdb, postgres)", backend)
	}
}
