// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"
	"database/sql"

	"cyberadvisor/internal/database"
	"cyberadvisor/internal/observability"
	"cyberadvisor/internal/services"
	contextutils "cyberadvisor/internal/utils"

	"github.com/spf13/cobra"
)

// DatabaseCommands returns the database management commands
func DatabaseCommands(userService *services.UserService, logger *observability.Logger, db *sql.DB, dbManager *database.Manager, databaseURL string) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the advisor backend.

Available commands:
  stats   - Show database statistics
  migrate - Run pending schema migrations`,
	}

	dbCmd.AddCommand(statsCmd(userService, logger, db))
	dbCmd.AddCommand(migrateCmd(logger, db, dbManager, databaseURL))

	return dbCmd
}

func statsCmd(userService *services.UserService, logger *observability.Logger, db *sql.DB) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Long:  `Show database statistics including user and conversation counts.`,
		RunE:  runStats(userService, logger, db),
	}
}

func migrateCmd(logger *observability.Logger, db *sql.DB, dbManager *database.Manager, databaseURL string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run pending schema migrations",
		Long:  `Apply all pending schema migrations to the database.`,
		RunE:  runMigrate(logger, db, dbManager, databaseURL),
	}
}

// runStats returns a function that shows database statistics
func runStats(userService *services.UserService, logger *observability.Logger, db *sql.DB) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		logger.Info(ctx, "Diagnostic info", map[string]interface{}{"database": getDatabaseInfo(db)})

		users, err := userService.GetAllUsers(ctx)
		if err != nil {
			logger.Error(ctx, "Failed to get user statistics", err, map[string]interface{}{})
			return contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to get user statistics: %v", err)
		}

		var conversations int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&conversations); err != nil {
			logger.Warn(ctx, "Failed to count conversations", map[string]interface{}{"error": err.Error()})
		}

		var questions int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quiz_questions`).Scan(&questions); err != nil {
			logger.Warn(ctx, "Failed to count quiz questions", map[string]interface{}{"error": err.Error()})
		}

		logger.Info(ctx, "Database statistics", map[string]interface{}{
			"total_users":         len(users),
			"total_conversations": conversations,
			"quiz_questions":      questions,
			"database":            "PostgreSQL",
			"status":              "Connected",
		})

		return nil
	}
}

// runMigrate returns a function that applies schema migrations
func runMigrate(logger *observability.Logger, db *sql.DB, dbManager *database.Manager, databaseURL string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		logger.Info(ctx, "Running schema migrations", map[string]interface{}{"database_url": maskDatabaseURL(databaseURL)})

		if err := dbManager.RunMigrations(db, databaseURL); err != nil {
			logger.Error(ctx, "Migrations failed", err, nil)
			return contextutils.WrapError(err, "migrations failed")
		}

		logger.Info(ctx, "Migrations completed", nil)
		return nil
	}
}
