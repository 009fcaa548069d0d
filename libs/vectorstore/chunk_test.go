package vectorstore

import (
	"strings"
	"testing"
)

func TestChunkRespectsSize(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 100)
	chunks := Chunk(text, 120, 30)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > 120 {
			t.Errorf("chunk %d is %d runes", i, n)
		}
	}
}

func TestChunkOverlapCarriesText(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta ", 50)
	chunks := Chunk(text, 100, 40)
	for i := 1; i < len(chunks); i++ {
		prevTail := strings.Fields(chunks[i-1])
		head := strings.Fields(chunks[i])[0]
		found := false
		for _, w := range prevTail {
			if w == head {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("chunk %d does not overlap its predecessor", i)
		}
	}
}

func TestChunkShortTextIsSingleChunk(t *testing.T) {
	chunks := Chunk("just a short note", 500, 100)
	if len(chunks) != 1 || chunks[0] != "just a short note" {
		t.Fatalf("got %q", chunks)
	}
}

func TestChunkEmptyText(t *testing.T) {
	if chunks := Chunk("   \n\t ", 500, 100); chunks != nil {
		t.Fatalf("whitespace-only input must yield no chunks, got %q", chunks)
	}
}

func TestChunkNeverSplitsWords(t *testing.T) {
	text := strings.Repeat("photosynthesis chlorophyll mitochondria ", 30)
	for _, c := range Chunk(text, 80, 20) {
		for _, w := range strings.Fields(c) {
			switch w {
			case "photosynthesis", "chlorophyll", "mitochondria":
			default:
				t.Fatalf("word split in half: %q", w)
			}
		}
	}
}

func TestChunkCoversAllWords(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	seen := map[string]bool{}
	for _, c := range Chunk(text, 15, 5) {
		for _, w := range strings.Fields(c) {
			seen[w] = true
		}
	}
	for _, w := range strings.Fields(text) {
		if !seen[w] {
			t.Fatalf("word %q missing from chunks", w)
		}
	}
}
