package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hulo-lang/hulomind/internal/app"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the Hulo language",
	Long: `Retrieves relevant documentation and generates an answer with
citations. Multiple arguments are joined into one question.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(ctx context.Context, question string) error {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = a.Close() }()

	answer, err := a.Knowledge.Ask(ctx, question)
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if len(answer.Citations) > 0 {
		fmt.Println("\nSources:")
		for i, c := range answer.Citations {
			fmt.Printf("  [%d] %s (%s)\n", i+1, c.Title, c.Path)
		}
	}
	if answer.Fallback {
		fmt.Printf("\n(answered by fallback provider %q)\n", answer.Provider)
	}
	return nil
}
