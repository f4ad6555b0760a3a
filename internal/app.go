// Package app wires configuration, storage, gateways and services into one
// Application. The interactive presentation layer lives outside this module
// and consumes the assembled services.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"ledgerbank/internal/auth"
	"ledgerbank/internal/config"
	"ledgerbank/internal/rates"
	"ledgerbank/internal/repository"
	"ledgerbank/internal/repository/postgres"
	"ledgerbank/internal/service"
	"ledgerbank/internal/util"
	"ledgerbank/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository        repository.UserRepository
	AccountRepository     repository.AccountRepository
	TransactionRepository repository.TransactionRepository
	CurrencyRepository    repository.CurrencyRepository

	// Gateways
	RateClient *rates.Client

	// Services
	UserService      service.UserService
	LedgerService    service.LedgerService
	AnalyticsService service.AnalyticsService
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if err := db.InitSchema(ctx, app.DB); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	app.Logger.Info("Schema initialized.")

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.AccountRepository = postgres.NewAccountRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.CurrencyRepository = postgres.NewCurrencyRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Gateways
	app.RateClient = rates.NewClient(app.Config.Rates)

	// 6. Initialize Services
	app.UserService = service.NewUserService(app.DB, app.UserRepository, auth.NewBcryptHasher())
	app.LedgerService = service.NewLedgerService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.AccountRepository,
		app.TransactionRepository,
		app.CurrencyRepository,
		app.RateClient,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.AnalyticsService = service.NewAnalyticsService(app.DB, app.AccountRepository, app.TransactionRepository)
	app.Logger.Info("Services initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
