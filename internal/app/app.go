// Package app wires configuration, storage and services into a runnable application.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/services/asset"
	"github.com/bobmcallan/budgeter/internal/services/budget"
	"github.com/bobmcallan/budgeter/internal/services/csvimport"
	"github.com/bobmcallan/budgeter/internal/services/investment"
	"github.com/bobmcallan/budgeter/internal/storage"
)

// App holds all initialized services and storage.
// It is the shared core used by both cmd/budgeter-server and cmd/budgeter.
type App struct {
	Config            *common.Config
	Logger            *common.Logger
	Storage           interfaces.StorageManager
	AssetService      interfaces.AssetService
	InvestmentService interfaces.InvestmentService
	ImportService     interfaces.ImportService
	BudgetService     interfaces.BudgetService
	StartupTime       time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath returns configPath, BUDGETER_CONFIG, the binary-local
// budgeter.toml or the development fallback, in that order.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("BUDGETER_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "budgeter.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/budgeter.toml"
		}
	}
	return configPath
}

// NewApp loads configuration and initializes logging, storage and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(getBinaryDir(), config.Logging.FilePath)
	}

	logger, err := common.NewLoggerFromConfig(config.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewAppWithConfig(config, logger)
}

// NewAppWithConfig builds the application from an already loaded configuration.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	assetService := asset.NewService(logger)
	investmentService := investment.NewService(storageManager, assetService, config.Ledger, logger)
	importService := csvimport.NewService(
		investmentService,
		csvimport.NewNormalizer(config.Ledger.GetBaseCurrency(), config.Import.Brokerage),
		logger,
	)
	budgetService := budget.NewService(storageManager, logger)

	a := &App{
		Config:            config,
		Logger:            logger,
		Storage:           storageManager,
		AssetService:      assetService,
		InvestmentService: investmentService,
		ImportService:     importService,
		BudgetService:     budgetService,
		StartupTime:       startupStart,
	}

	logger.Info().
		Str("backend", storageManager.Backend()).
		Str("base_currency", string(config.Ledger.GetBaseCurrency())).
		Str("oversell", string(config.Ledger.GetOversellPolicy())).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// Close releases storage and flushes the logger.
func (a *App) Close() {
	if err := a.Storage.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close storage")
	}
	a.Logger.Close()
}
