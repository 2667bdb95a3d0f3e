package chunk

import (
	"strings"
	"testing"
)

func TestNewID_Stable(t *testing.T) {
	a := NewID("grammar/loops.md", 3)
	b := NewID("grammar/loops.md", 3)

	if a != b {
		t.Errorf("NewID() not stable: %q != %q", a, b)
	}
	if !strings.HasPrefix(a, "chunk_") {
		t.Errorf("NewID() = %q, want chunk_ prefix", a)
	}
}

func TestNewID_Distinct(t *testing.T) {
	tests := []struct {
		name         string
		pathA, pathB string
		idxA, idxB   int
	}{
		{"different index", "grammar/loops.md", "grammar/loops.md", 0, 1},
		{"different path", "grammar/loops.md", "grammar/types.md", 0, 0},
		{"separator not ambiguous", "a#1", "a", 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewID(tt.pathA, tt.idxA)
			b := NewID(tt.pathB, tt.idxB)
			if a == b {
				t.Errorf("NewID(%q,%d) == NewID(%q,%d) = %q",
					tt.pathA, tt.idxA, tt.pathB, tt.idxB, a)
			}
		})
	}
}

func TestRefOf(t *testing.T) {
	c := Chunk{
		ID:          NewID("guide/intro.md", 0),
		Text:        "body",
		Title:       "Introduction",
		Path:        "guide/intro.md",
		HeadingPath: "Introduction > Getting Started",
	}

	ref := RefOf(c)
	if ref.ID != c.ID || ref.Path != c.Path || ref.Title != c.Title || ref.HeadingPath != c.HeadingPath {
		t.Errorf("RefOf() = %+v, want fields copied from %+v", ref, c)
	}
}
