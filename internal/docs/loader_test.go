package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hulo-lang/hulomind/internal/chunk"
	"github.com/hulo-lang/hulomind/internal/log"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "grammar/loops.md",
		"---\ntitle: Loops\n---\n\n# Loops\nHulo supports loop statements.\n")
	writeFile(t, root, "zh/guide/intro.md",
		"# 介紹\nHulo 語言簡介。\n")
	writeFile(t, root, "notes.txt", "not markdown, ignored")

	loader := NewLoader(1000, 200, log.NewNop())
	chunks, err := loader.Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	byPath := make(map[string][]chunk.Chunk)
	for _, c := range chunks {
		byPath[c.Path] = append(byPath[c.Path], c)
	}

	if len(byPath) != 2 {
		t.Fatalf("Load() covered paths %v, want 2 markdown files", byPath)
	}

	loops := byPath["grammar/loops.md"]
	if len(loops) == 0 {
		t.Fatal("no chunks for grammar/loops.md")
	}
	if loops[0].Title != "Loops" {
		t.Errorf("title = %q, want Loops (from frontmatter)", loops[0].Title)
	}
	if loops[0].Category != "grammar" {
		t.Errorf("category = %q, want grammar", loops[0].Category)
	}
	if loops[0].Language != "en" {
		t.Errorf("language = %q, want en", loops[0].Language)
	}
	if loops[0].ID != chunk.NewID("grammar/loops.md", 0) {
		t.Errorf("ID = %q, want stable derived ID", loops[0].ID)
	}
	if len(loops[0].Embedding) != 0 {
		t.Error("loader attached an embedding; the service owns that")
	}

	intro := byPath[filepath.Join("zh", "guide", "intro.md")]
	if len(intro) == 0 {
		t.Fatal("no chunks for zh/guide/intro.md")
	}
	if intro[0].Language != "zh" {
		t.Errorf("language = %q, want zh", intro[0].Language)
	}
	if intro[0].Category != "guide" {
		t.Errorf("category = %q, want guide", intro[0].Category)
	}
}

func TestLoader_EmptyAndBrokenFilesSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "empty.md", "")
	writeFile(t, root, "good.md", "# Good\ncontent here")

	loader := NewLoader(0, 0, nil)
	chunks, err := loader.Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, c := range chunks {
		if c.Path == "empty.md" {
			t.Error("empty file produced a chunk")
		}
	}
	if len(chunks) == 0 {
		t.Error("good file produced no chunks")
	}
}

func TestLoader_ChunkIndexesSequential(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.md",
		"# One\nalpha\n# Two\nbeta\n# Three\ngamma\n")

	loader := NewLoader(1000, 200, nil)
	chunks, err := loader.Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("Load() = %d chunks, want 3 heading sections", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d Index = %d, want %d", i, c.Index, i)
		}
		if c.ID != chunk.NewID("big.md", i) {
			t.Errorf("chunk %d ID not derived from path and index", i)
		}
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{"grammar/loops.md", "grammar"},
		{"zh/grammar/loops.md", "grammar"},
		{"libs/std/fmt.md", "libs"},
		{"blueprints/design.md", "blueprints"},
		{"toolchain/compiler.md", "toolchain"},
		{"others/faq.md", "others"},
		{"README.md", "general"},
		{"misc/notes.md", "general"},
	}

	for _, tt := range tests {
		if got := categoryOf(tt.rel); got != tt.want {
			t.Errorf("categoryOf(%q) = %q, want %q", tt.rel, got, tt.want)
		}
	}
}

func TestLanguageOf(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{"zh/grammar/loops.md", "zh"},
		{"grammar/zh/loops.md", "zh"},
		{"grammar/loops.md", "en"},
		{"zhx/loops.md", "en"},
	}

	for _, tt := range tests {
		if got := languageOf(tt.rel); got != tt.want {
			t.Errorf("languageOf(%q) = %q, want %q", tt.rel, got, tt.want)
		}
	}
}
