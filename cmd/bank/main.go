// Command bank bootstraps the ledger: it connects to the database, creates
// the schema, seeds the base currency set and, when BANK_ADMIN_* variables
// are set, provisions an administrator account.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	app "ledgerbank/internal"
	"ledgerbank/internal/util"
	"ledgerbank/pkg/db"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	application := app.NewApplication()
	if err := application.Initialize(ctx); err != nil {
		util.GetLogger().Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	logger := application.Logger

	if err := db.SeedCurrencies(ctx, application.DB); err != nil {
		logger.Error("Failed to seed currencies", "error", err)
		os.Exit(1)
	}
	logger.Info("Base currencies seeded.")

	if username := os.Getenv("BANK_ADMIN_USERNAME"); username != "" {
		if err := provisionAdmin(ctx, application, username); err != nil {
			logger.Error("Failed to provision admin user", "error", err)
			os.Exit(1)
		}
	}

	if err := application.Shutdown(ctx); err != nil {
		logger.Error("Application shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Setup complete.")
}

// provisionAdmin creates the administrator account once and promotes it.
// Re-running setup against an existing admin is a no-op.
func provisionAdmin(ctx context.Context, application *app.Application, username string) error {
	user, err := application.UserService.CreateUser(ctx,
		username,
		os.Getenv("BANK_ADMIN_PASSWORD"),
		os.Getenv("BANK_ADMIN_EMAIL"),
		os.Getenv("BANK_ADMIN_FULLNAME"),
	)
	if err != nil {
		if errors.Is(err, util.ErrDuplicateUser) {
			application.Logger.Info("Admin user already exists", "username", username)
			return nil
		}
		return err
	}

	_, err = application.DB.ExecContext(ctx,
		`UPDATE users SET is_admin = true WHERE user_id = $1`, user.ID)
	if err != nil {
		return err
	}
	application.Logger.Info("Admin user provisioned", "username", username, "user_id", user.ID)
	return nil
}
