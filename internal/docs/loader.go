// Package docs loads a Markdown documentation corpus and splits it into
// chunks for the knowledge base.
//
// Splitting is heading-based, not fixed-window: each heading opens a
// chunk that runs to the next heading of the same or higher level, with a
// size-bounded fallback for heading-less or oversized sections. Frontmatter
// supplies the title and tags; the file path supplies category and
// language.
package docs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hulo-lang/hulomind/internal/chunk"
	"github.com/hulo-lang/hulomind/internal/log"
)

// Chunking defaults, matching the corpus' typical section sizes.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Known top-level docs categories. Anything else maps to "general".
var knownCategories = map[string]bool{
	"grammar":    true,
	"blueprints": true,
	"libs":       true,
	"guide":      true,
	"toolchain":  true,
	"others":     true,
}

// Loader walks a docs tree and produces chunks. Embeddings are not
// attached here; the knowledge service embeds in batches during ingestion.
type Loader struct {
	chunkSize    int
	chunkOverlap int
	logger       log.Logger
}

// NewLoader creates a Loader. Zero sizes fall back to the defaults.
func NewLoader(chunkSize, chunkOverlap int, logger log.Logger) *Loader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap <= 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Loader{chunkSize: chunkSize, chunkOverlap: chunkOverlap, logger: logger}
}

// Load walks root recursively and chunks every Markdown file. Unreadable
// files are logged and skipped; ingestion of a large corpus should not
// abort because one page is broken.
func (l *Loader) Load(root string) ([]chunk.Chunk, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving docs root: %w", err)
	}

	var chunks []chunk.Chunk
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}

		fileChunks, err := l.loadFile(path, rel)
		if err != nil {
			l.logger.Warn("skipping unreadable docs file", "path", rel, "error", err)
			return nil
		}
		chunks = append(chunks, fileChunks...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking docs tree %s: %w", root, err)
	}

	l.logger.Info("loaded docs corpus", "root", root, "chunks", len(chunks))
	return chunks, nil
}

// loadFile chunks a single Markdown file. rel is the path relative to the
// corpus root, used for IDs and citations.
func (l *Loader) loadFile(path, rel string) ([]chunk.Chunk, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from our own walk
	if err != nil {
		return nil, err
	}

	fm, body := splitFrontmatter(string(raw))
	body = cleanContent(body)
	if body == "" {
		return nil, nil
	}

	title := extractTitle(body, fm)
	language := languageOf(rel)
	category := categoryOf(rel)

	sections := splitSections(body, l.chunkSize, l.chunkOverlap)

	chunks := make([]chunk.Chunk, 0, len(sections))
	for _, s := range sections {
		if strings.TrimSpace(s.text) == "" {
			continue
		}
		idx := len(chunks)
		chunks = append(chunks, chunk.Chunk{
			ID:          chunk.NewID(rel, idx),
			Text:        s.text,
			Title:       title,
			Category:    category,
			Language:    language,
			Path:        rel,
			HeadingPath: s.headingPath,
			Index:       idx,
		})
	}
	return chunks, nil
}

// languageOf reads the language tag from the path layout: translated
// pages live under a "zh" directory, everything else is English.
func languageOf(rel string) string {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == "zh" {
			return "zh"
		}
	}
	return "en"
}

// categoryOf maps the first known path segment to a docs category.
func categoryOf(rel string) string {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if knownCategories[part] {
			return part
		}
	}
	return "general"
}
