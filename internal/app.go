// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "credit-ledger/internal/api"
	"credit-ledger/internal/api/handler"
	"credit-ledger/internal/auth"
	"credit-ledger/internal/config"
	"credit-ledger/internal/events"
	eventskafka "credit-ledger/internal/events/kafka"
	"credit-ledger/internal/repository"
	"credit-ledger/internal/repository/postgres"
	"credit-ledger/internal/service"
	"credit-ledger/internal/util"
	"credit-ledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	CreditRepository      repository.CreditRepository
	TransactionRepository repository.TransactionRepository

	// Services
	CreditService service.CreditService
	Publisher     events.Publisher

	// HTTP API
	HTTPHandler http.Handler
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

	// 3. Connect to Database and apply migrations
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if err := db.RunMigrations(ctx, app.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Logger.Info("Database migrations applied.")

	// 4. Initialize Repositories
	app.CreditRepository = postgres.NewCreditRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize event publisher
	if len(app.Config.KafkaBrokers) > 0 {
		app.Publisher = eventskafka.NewPublisher(app.Config.KafkaBrokers)
		app.Logger.Info("Kafka event publisher initialized.", "brokers", app.Config.KafkaBrokers)
	} else {
		app.Publisher = events.NopPublisher{}
		app.Logger.Info("No Kafka brokers configured, transaction events disabled.")
	}

	// 6. Initialize Services
	policy := service.NewPolicy(app.Config.AllowUserSelfDeduct)
	app.CreditService = service.NewCreditService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.CreditRepository,
		app.TransactionRepository,
		policy,
		app.Publisher,
		app.Logger,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	creditHandler := handler.NewCreditHandler(app.CreditService, app.Logger)
	authMiddleware := auth.NewMiddleware(app.Config.JWTSecret)
	app.HTTPHandler = router.NewRouter(creditHandler, authMiddleware, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			app.Logger.Error("Failed to close event publisher", "error", err)
		}
	}
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
