package chunking

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(100, 10)
	if got := s.Split(""); got != nil {
		t.Fatalf("expected nil for empty text, got %v", got)
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("retrieval augmented generation. ", 40)
	s := NewSplitter(120, 20)

	first := s.Split(text)
	second := s.Split(text)
	if len(first) == 0 {
		t.Fatalf("expected at least one chunk")
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two runs produced different boundaries")
	}
}

func TestSplitOverlapSharesTail(t *testing.T) {
	// 26 runes, size 10, overlap 4 -> windows start at 0, 6, 12, 18.
	text := "abcdefghijklmnopqrstuvwxyz"
	s := NewSplitter(10, 4)

	chunks := s.Split(text)
	want := []string{"abcdefghij", "ghijklmnop", "mnopqrstuv", "stuvwxyz"}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("unexpected windows: %v", chunks)
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(500, 50)
	chunks := s.Split("one small document")
	if len(chunks) != 1 || chunks[0] != "one small document" {
		t.Fatalf("expected single chunk, got %v", chunks)
	}
}

func TestNewSplitterNormalizesParams(t *testing.T) {
	s := NewSplitter(0, -3)
	if s.ChunkSize != 500 || s.Overlap != 0 {
		t.Fatalf("unexpected defaults: size=%d overlap=%d", s.ChunkSize, s.Overlap)
	}

	s = NewSplitter(100, 200)
	if s.Overlap >= s.ChunkSize {
		t.Fatalf("overlap %d not clamped below chunk size %d", s.Overlap, s.ChunkSize)
	}
}
