package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("짧은 문서", 1500, 200)
	if len(chunks) != 1 || chunks[0] != "짧은 문서" {
		t.Errorf("SplitText() = %v, want single chunk", chunks)
	}
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("a", 25)
	chunks := SplitText(text, 10, 3)

	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		if len([]rune(c)) != 10 {
			t.Errorf("chunk %d length = %d, want 10", i, len([]rune(c)))
		}
	}
	// Step is chunkSize-overlap, so consecutive chunks share a 3-rune tail.
	if !strings.HasPrefix(chunks[1], chunks[0][7:]) {
		t.Errorf("chunks %q and %q do not overlap", chunks[0], chunks[1])
	}
}

func TestSplitTextRuneSafe(t *testing.T) {
	text := strings.Repeat("한", 30)
	chunks := SplitText(text, 10, 2)

	for i, c := range chunks {
		if strings.ContainsRune(c, '�') {
			t.Errorf("chunk %d split inside a rune: %q", i, c)
		}
	}
	if chunks[0] != strings.Repeat("한", 10) {
		t.Errorf("first chunk = %q", chunks[0])
	}
}

func TestSplitTextOverlapAtLeastChunkSize(t *testing.T) {
	text := strings.Repeat("b", 30)
	chunks := SplitText(text, 10, 10)

	// Degenerate overlap falls back to non-overlapping steps instead of looping.
	if len(chunks) != 3 {
		t.Errorf("got %d chunks, want 3", len(chunks))
	}
}
