package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/hulo-lang/hulomind/internal/app"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <docs-dir>",
	Short: "Build the knowledge base from a documentation directory",
	Long: `Walks the given directory for Markdown files, chunks and embeds them,
and replaces the current knowledge base contents.

A file lock under the user config directory keeps concurrent ingest runs
from interleaving; a second invocation fails fast.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(ctx context.Context, docsDir string) error {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Cross-process exclusion. The in-process mutex in the service only
	// guards one binary; two ingest invocations need the file lock.
	lock, err := acquireIngestLock()
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = a.Close() }()

	stats, err := a.Knowledge.Ingest(ctx, docsDir)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", docsDir, err)
	}

	fmt.Printf("Ingested %d chunks from %d files in %s\n",
		stats.Chunks, stats.Files, stats.Elapsed.Round(time.Millisecond))
	return nil
}

// acquireIngestLock takes the cross-process ingest lock, failing fast
// when another ingest holds it.
func acquireIngestLock() (*flock.Flock, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}
	lockDir := filepath.Join(home, ".hulomind")
	if err := os.MkdirAll(lockDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	lock := flock.New(filepath.Join(lockDir, "ingest.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring ingest lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another ingest is already running (lock %s held)", lock.Path())
	}
	return lock, nil
}
