package commands

import (
	"context"
	"fmt"

	"cyberadvisor/internal/observability"
	"cyberadvisor/internal/services"
	contextutils "cyberadvisor/internal/utils"

	"github.com/spf13/cobra"
)

// QuizCommands returns the quiz question bank commands
func QuizCommands(quizStore *services.QuizStore, logger *observability.Logger) *cobra.Command {
	quizCmd := &cobra.Command{
		Use:   "quiz",
		Short: "Quiz question bank commands",
		Long: `Quiz question bank commands for the advisor backend.

Available commands:
  seed  - Load the built-in question bank into the database
  count - Show how many questions are in the bank`,
	}

	quizCmd.AddCommand(seedCmd(quizStore, logger))
	quizCmd.AddCommand(countCmd(quizStore, logger))

	return quizCmd
}

func seedCmd(quizStore *services.QuizStore, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the quiz question bank",
		Long:  `Load the built-in question bank into the database. Questions already present are skipped.`,
		RunE:  runSeed(quizStore, logger),
	}
}

func countCmd(quizStore *services.QuizStore, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count quiz questions",
		Long:  `Show how many questions the quiz bank currently holds.`,
		RunE:  runCount(quizStore, logger),
	}
}

// runSeed returns a function that seeds the question bank
func runSeed(quizStore *services.QuizStore, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		logger.Info(ctx, "Seeding quiz question bank", map[string]interface{}{
			"bank_size": len(services.DefaultQuestionBank),
		})

		inserted, err := quizStore.SeedQuestions(ctx, services.DefaultQuestionBank)
		if err != nil {
			logger.Error(ctx, "Failed to seed question bank", err, nil)
			return contextutils.WrapError(err, "failed to seed question bank")
		}

		total, err := quizStore.CountQuestions(ctx)
		if err != nil {
			return contextutils.WrapError(err, "failed to count questions")
		}

		fmt.Printf("Seeded %d new questions (%d total in bank)\n", inserted, total)
		return nil
	}
}

// runCount returns a function that reports the bank size
func runCount(quizStore *services.QuizStore, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		total, err := quizStore.CountQuestions(ctx)
		if err != nil {
			logger.Error(ctx, "Failed to count questions", err, nil)
			return contextutils.WrapError(err, "failed to count questions")
		}

		fmt.Printf("Question bank holds %d questions\n", total)
		if total == 0 {
			fmt.Println("Run 'adm quiz seed' to load the built-in bank")
		}
		return nil
	}
}
