// Package cmd wires the hulomind CLI: serving the HTTP API, running the
// MCP bridge, ingesting the docs corpus and one-shot queries.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hulo-lang/hulomind/internal/config"
	"github.com/hulo-lang/hulomind/internal/log"
)

var (
	flagDebug   bool
	flagJSONLog bool
)

var rootCmd = &cobra.Command{
	Use:   "hulomind",
	Short: "hulomind - knowledge base for the Hulo language documentation",
	Long: `hulomind indexes the Hulo programming language documentation into a
vector store and answers questions against it.

Run "hulomind ingest <docs-dir>" once to build the knowledge base, then
"hulomind serve" for the HTTP API or "hulomind mcp" for editor integration.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLog, "json-log", false, "log in JSON format")
}

// newLogger builds the process logger from the persistent flags.
// Logs go to stderr; in mcp mode stdout carries JSON-RPC frames.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if flagDebug || os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level, JSON: flagJSONLog})
}

// loadConfig loads and validates configuration for a subcommand.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
