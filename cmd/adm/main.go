// Package main provides the main entry point for the advisor admin CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"cyberadvisor/cmd/adm/commands"
	"cyberadvisor/internal/config"
	"cyberadvisor/internal/database"
	"cyberadvisor/internal/observability"
	"cyberadvisor/internal/services"

	"github.com/spf13/cobra"
)

// Global variables for shared resources
var (
	cfg         *config.Config
	logger      *observability.Logger
	userService *services.UserService
)

func main() {
	ctx := context.Background()

	// Load configuration
	var err error
	cfg, err = config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override log level for admin tool
	cfg.Server.LogLevel = "error"

	// Disable all OpenTelemetry features for admin CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	_, _, loggerInstance, err := observability.SetupObservability(&cfg.OpenTelemetry, "cyberadvisor-admin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	logger = loggerInstance

	// Initialize database connection (no migrations for admin tool; the
	// migrate subcommand runs them explicitly)
	dbManager := database.NewManager(logger)
	db, err := dbManager.InitDBWithoutMigrations(cfg.Database)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database", err, map[string]interface{}{"db_url": cfg.Database.URL})
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "Warning: failed to close database connection", map[string]interface{}{"error": err.Error()})
		}
	}()

	// Initialize services
	userService = services.NewUserServiceWithLogger(db, logger)
	quizStore := services.NewQuizStore(db, logger)

	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Cyber Advisor Administration Tool",
		Long: `Cyber Advisor Administration Tool

A CLI tool for administering the advisor backend.
Provides commands for user management, quiz bank seeding, and database operations.`,

		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.UserCommands(userService, logger, cfg.Database.URL))
	rootCmd.AddCommand(commands.QuizCommands(quizStore, logger))
	rootCmd.AddCommand(commands.DatabaseCommands(userService, logger, db, dbManager, cfg.Database.URL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
