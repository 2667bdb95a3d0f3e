package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hulo-lang/hulomind/internal/app"
)

var searchCmd = &cobra.Command{
	Use:   "search <terms>",
	Short: "Search the documentation without generating an answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(ctx context.Context, query string) error {
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

	result, err := a.Knowledge.Search(ctx, query)
	if err != nil {
		return err
	}

	if result.Empty() {
		fmt.Println("No relevant documentation found.")
		return nil
	}

	for i, hit := range result.Hits {
		heading := hit.Chunk.Title
		if hit.Chunk.HeadingPath != "" && hit.Chunk.HeadingPath != hit.Chunk.Title {
			heading += " / " + hit.Chunk.HeadingPath
		}
		fmt.Printf("[%d] %.2f  %s\n    %s\n", i+1, hit.Score, heading, hit.Chunk.Path)
	}
	return nil
}
