// Package chunk defines the document chunk model shared by the ingestion
// pipeline, the vector store and the retrieval engine.
//
// A Chunk is one heading-delimited section of a Markdown source document,
// stored together with its embedding vector and the metadata needed to cite
// it back to the corpus. Chunks are immutable once created; re-ingestion
// replaces them wholesale by ID.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Chunk is a contiguous unit of documentation text with its embedding.
type Chunk struct {
	// ID is stable across ingestion runs for the same source position.
	// See NewID.
	ID string

	// Text is the raw Markdown content of the section.
	Text string

	// Title is the document title (frontmatter or first heading).
	Title string

	// Category is the top-level docs category (grammar, guide, libs, ...).
	Category string

	// Language is the docs language tag ("en", "zh").
	Language string

	// Path is the origin file path relative to the corpus root.
	Path string

	// HeadingPath is the heading trail leading to this section,
	// e.g. "Control Flow > Loops > while".
	HeadingPath string

	// Index is the chunk position within the source document.
	Index int

	// Embedding is the vector produced for Text. Dimension is fixed per
	// embedding model; vectors from different models are not comparable.
	Embedding []float32

	// EmbedModel tags the model that produced Embedding. The retrieval
	// engine refuses to score hits whose tag differs from its own model.
	EmbedModel string
}

// NewID derives a stable chunk identifier from the source path and the chunk
// position within the document. The same section of the same file always maps
// to the same ID, so re-ingestion upserts in place instead of accumulating
// duplicates.
func NewID(path string, index int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s#%d", path, index))
	return "chunk_" + hex.EncodeToString(sum[:16])
}

// Ref is a lightweight citation reference to a chunk.
type Ref struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	Title       string `json:"title,omitempty"`
	HeadingPath string `json:"heading_path,omitempty"`
}

// RefOf builds a citation reference for c.
func RefOf(c Chunk) Ref {
	return Ref{
		ID:          c.ID,
		Path:        c.Path,
		Title:       c.Title,
		HeadingPath: c.HeadingPath,
	}
}
