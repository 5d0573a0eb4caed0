package commands

import (
	"context"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"cyberadvisor/internal/models"
	"cyberadvisor/internal/observability"
	"cyberadvisor/internal/services"
	contextutils "cyberadvisor/internal/utils"

	"github.com/spf13/cobra"
)

// UserCommands returns the user management commands
func UserCommands(userService *services.UserService, logger *observability.Logger, databaseURL string) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long: `User management commands for the advisor backend.

Available commands:
  list           - List all users
  create         - Create a new user account
  reset-password - Reset password for a specific user`,
	}

	userCmd.AddCommand(listCmd(userService, logger, databaseURL))
	userCmd.AddCommand(createCmd(userService, logger))
	userCmd.AddCommand(resetPasswordCmd(userService, logger))

	return userCmd
}

func listCmd(userService *services.UserService, logger *observability.Logger, databaseURL string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Long:  `List all users in the database with their basic information.`,
		RunE:  runListUsers(userService, logger, databaseURL),
	}
}

func createCmd(userService *services.UserService, logger *observability.Logger) *cobra.Command {
	var level string
	var language string

	cmd := &cobra.Command{
		Use:   "create [email]",
		Short: "Create a new user account",
		Long:  `Create a new user account. You will be prompted for the password.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runCreateUser(userService, logger, &level, &language),
	}

	cmd.Flags().StringVar(&level, "level", "beginner", "Knowledge level (beginner, intermediate, advanced)")
	cmd.Flags().StringVar(&language, "language", "en", "Preferred reply language (en, my)")

	return cmd
}

func resetPasswordCmd(userService *services.UserService, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password [email]",
		Short: "Reset password for a user",
		Long:  `Reset the password for a specific user. If email is not provided, you will be prompted for it.`,
		RunE:  runResetPassword(userService, logger),
	}
}

// runListUsers returns a function that lists all users
func runListUsers(userService *services.UserService, logger *observability.Logger, databaseURL string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		logger.Info(ctx, "Admin command diagnostics", map[string]interface{}{"database_url": maskDatabaseURL(databaseURL)})

		users, err := userService.GetAllUsers(ctx)
		if err != nil {
			logger.Error(ctx, "Failed to get users", err, map[string]interface{}{})
			return contextutils.WrapError(err, "failed to get users")
		}

		if len(users) == 0 {
			fmt.Println("No users found in the database")
			return nil
		}

		fmt.Printf("%-5s %-30s %-15s %-10s %-12s %-10s\n", "ID", "Email", "Level", "Language", "Last Active", "Created")

		for _, user := range users {
			level := "N/A"
			if user.KnowledgeLevel.Valid {
				level = user.KnowledgeLevel.String
			}

			language := "N/A"
			if user.PreferredLanguage.Valid {
				language = user.PreferredLanguage.String
			}

			lastActive := "never"
			if user.LastActive.Valid {
				lastActive = user.LastActive.Time.Format("2006-01-02")
			}

			fmt.Printf("%-5d %-30s %-15s %-10s %-12s %-10s\n",
				user.ID,
				user.Email,
				level,
				language,
				lastActive,
				user.CreatedAt.Format("2006-01-02"),
			)
		}

		logger.Info(ctx, "Listed users", map[string]interface{}{"total": len(users)})
		return nil
	}
}

// runCreateUser returns a function that creates a user account
func runCreateUser(userService *services.UserService, logger *observability.Logger, level, language *string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		email := args[0]

		password, err := promptPassword("Enter password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return contextutils.ErrorWithContextf("passwords do not match")
		}

		user, err := userService.CreateUser(ctx, email, password, models.ParseKnowledgeLevel(*level), *language)
		if err != nil {
			logger.Error(ctx, "Failed to create user", err, map[string]interface{}{"email": email})
			return contextutils.WrapErrorf(err, "failed to create user '%s'", email)
		}

		fmt.Printf("User '%s' created (ID: %d)\n", user.Email, user.ID)
		return nil
	}
}

// runResetPassword returns a function that resets a user's password
func runResetPassword(userService *services.UserService, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		var email string
		if len(args) > 0 {
			email = args[0]
		} else {
			fmt.Print("Enter email: ")
			if _, err := fmt.Scanln(&email); err != nil {
				return contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to read email: %v", err)
			}
		}
		if email == "" {
			return contextutils.ErrorWithContextf("email is required")
		}

		newPassword, err := promptPassword("Enter new password: ")
		if err != nil {
			return err
		}
		if newPassword == "" {
			return contextutils.ErrorWithContextf("password cannot be empty")
		}

		confirmPassword, err := promptPassword("Confirm new password: ")
		if err != nil {
			return err
		}
		if newPassword != confirmPassword {
			return contextutils.ErrorWithContextf("passwords do not match")
		}

		logger.Info(ctx, "Resetting password for user", map[string]interface{}{"email": email})

		user, err := userService.GetUserByEmail(ctx, email)
		if err != nil {
			logger.Error(ctx, "Failed to get user", err, map[string]interface{}{"email": email})
			return contextutils.WrapErrorf(err, "failed to get user '%s'", email)
		}

		if err := userService.UpdateUserPassword(ctx, user.ID, newPassword); err != nil {
			logger.Error(ctx, "Failed to update password", err, map[string]interface{}{
				"email":   email,
				"user_id": user.ID,
			})
			return contextutils.WrapErrorf(err, "failed to update password for user '%s'", email)
		}

		fmt.Printf("Password successfully reset for user '%s' (ID: %d)\n", email, user.ID)
		logger.Info(ctx, "Password reset successful", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})

		return nil
	}
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to read password: %v", err)
	}
	return string(passwordBytes), nil
}
