package chunker

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.maxChars != DefaultMaxChars {
			t.Errorf("expected maxChars %d, got %d", DefaultMaxChars, p.maxChars)
		}
	})

	t.Run("custom max chars", func(t *testing.T) {
		p := New(WithMaxChars(500))
		if p.MaxChars() != 500 {
			t.Errorf("expected maxChars 500, got %d", p.MaxChars())
		}
	})

	t.Run("non-positive values ignored", func(t *testing.T) {
		p := New(WithMaxChars(0), WithMaxChars(-3))
		if p.maxChars != DefaultMaxChars {
			t.Errorf("expected default maxChars, got %d", p.maxChars)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestSplit_EmptyDocument(t *testing.T) {
	for _, content := range []string{"", "   ", "\n\n\n\n", " \t\n\n  \n"} {
		if got := Split(content, 600); len(got) != 0 {
			t.Errorf("Split(%q) = %d chunks, want 0", content, len(got))
		}
	}
}

func TestSplit_SingleShortBlockIsTrimmed(t *testing.T) {
	input := "  Information security policies shall be defined.\n"
	got := Split(input, 600)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0] != strings.TrimSpace(input) {
		t.Errorf("expected trimmed input, got %q", got[0])
	}
}

func TestSplit_ShortInputWithoutBlankLines(t *testing.T) {
	// Single newlines are not paragraph breaks.
	inputs := []string{
		"a",
		"line one\nline two\nline three",
		strings.Repeat("x", 600),
		"\t" + strings.Repeat("y", 599) + " ",
	}
	for _, input := range inputs {
		got := Split(input, 600)
		if len(got) != 1 {
			t.Errorf("expected 1 chunk for %q, got %d", input, len(got))
			continue
		}
		if got[0] != strings.TrimSpace(input) {
			t.Errorf("expected %q, got %q", strings.TrimSpace(input), got[0])
		}
	}
}

func TestSplit_BlockExactlyMaxIsOneChunk(t *testing.T) {
	block := strings.Repeat("a", 50)
	got := Split(block, 50)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0] != block {
		t.Error("chunk should equal the block")
	}
}

func TestSplit_LongBlockHardSplit(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		maxChars int
	}{
		{"one over", 51, 50},
		{"exact multiple", 150, 50},
		{"remainder", 1234, 600},
		{"tiny max", 17, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			for i := 0; i < tt.length; i++ {
				b.WriteByte(byte('a' + i%26))
			}
			block := b.String()

			got := Split(block, tt.maxChars)

			want := (tt.length + tt.maxChars - 1) / tt.maxChars
			if len(got) != want {
				t.Fatalf("expected %d chunks, got %d", want, len(got))
			}
			for i, c := range got {
				n := utf8.RuneCountInString(c)
				if i < len(got)-1 && n != tt.maxChars {
					t.Errorf("chunk %d has %d chars, want %d", i, n, tt.maxChars)
				}
				if i == len(got)-1 && (n == 0 || n > tt.maxChars) {
					t.Errorf("last chunk has %d chars", n)
				}
			}
			if strings.Join(got, "") != block {
				t.Error("concatenated chunks should reproduce the block")
			}
		})
	}
}

func TestSplit_SplitsMidWord(t *testing.T) {
	got := Split("confidentiality integrity", 10)
	want := []string{"confidenti", "ality inte", "grity"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSplit_CountsCharactersNotBytes(t *testing.T) {
	block := strings.Repeat("é", 10) // 20 bytes
	got := Split(block, 4)
	if len(got) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(got))
	}
	for _, c := range got {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %q is not valid UTF-8", c)
		}
	}
	if strings.Join(got, "") != block {
		t.Error("concatenated chunks should reproduce the block")
	}
}

func TestSplit_InvalidUTF8KeepsBytes(t *testing.T) {
	long := "\xffabcdefghij"
	got := Split(long, 5)
	want := []string{"\xffabcd", "efghi", "j"}
	if len(got) != len(want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if strings.Join(got, "") != long {
		t.Error("concatenated chunks should reproduce the block")
	}

	if short := Split("\xffab", 5); len(short) != 1 || short[0] != "\xffab" {
		t.Errorf("short block should be kept as-is, got %q", short)
	}
}

func TestSplit_ParagraphsInOrder(t *testing.T) {
	doc := "A clean desk policy requires employees to secure sensitive documents.\n\n" +
		"Passwords must be at least 12 characters."

	got := Split(doc, 600)

	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if got[0] != "A clean desk policy requires employees to secure sensitive documents." {
		t.Errorf("unexpected first chunk %q", got[0])
	}
	if got[1] != "Passwords must be at least 12 characters." {
		t.Errorf("unexpected second chunk %q", got[1])
	}
}

func TestSplit_MixedBlocks(t *testing.T) {
	long := strings.Repeat("z", 25)
	doc := "short one\n\n\n\n" + long + "\n\n   \n\nshort two"

	got := Split(doc, 10)

	want := []string{"short one", "zzzzzzzzzz", "zzzzzzzzzz", "zzzzz", "short two"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSplit_DefaultWhenNonPositive(t *testing.T) {
	block := strings.Repeat("q", DefaultMaxChars+1)
	if got := Split(block, 0); len(got) != 2 {
		t.Errorf("expected 2 chunks with default size, got %d", len(got))
	}
}

func TestProcessor_Chunk(t *testing.T) {
	p := New(WithMaxChars(20))
	doc := &domain.Document{
		Name:    "iso27001",
		Content: "Access control.\n\nAsset management covers inventories.",
	}

	chunks, err := p.Chunk(context.Background(), doc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.ID != domain.ChunkID(i) {
			t.Errorf("chunk %d: expected id %s, got %s", i, domain.ChunkID(i), c.ID)
		}
		if c.Position != i {
			t.Errorf("chunk %d: expected position %d, got %d", i, i, c.Position)
		}
		if c.Source() != "iso27001" {
			t.Errorf("chunk %d: expected source iso27001, got %q", i, c.Source())
		}
		if c.Embedding != nil {
			t.Errorf("chunk %d: chunker must not set embeddings", i)
		}
	}
}

func TestProcessor_Chunk_PerCallOverride(t *testing.T) {
	p := New(WithMaxChars(5))
	doc := &domain.Document{Name: "d", Content: strings.Repeat("k", 20)}

	chunks, err := p.Chunk(context.Background(), doc, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Errorf("expected 2 chunks with override, got %d", len(chunks))
	}
}

func TestProcessor_Chunk_EmptyContent(t *testing.T) {
	p := New()
	chunks, err := p.Chunk(context.Background(), &domain.Document{Name: "d"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestProcessor_Chunk_CancelledContext(t *testing.T) {
	p := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Chunk(ctx, &domain.Document{Name: "d", Content: "text"}, 0)
	if err == nil {
		t.Error("expected context error")
	}
}
