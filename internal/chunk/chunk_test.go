package chunk

import (
	"fmt"
	"strings"
	"testing"
	"unicode"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/quizgenius/internal/logger"
)

func paragraph(i, sentences int) string {
	var b strings.Builder
	for s := 0; s < sentences; s++ {
		if s > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "Paragraph %d sentence %d explains how enzymes lower activation energy.", i, s)
	}
	return b.String()
}

func checkInvariants(t *testing.T, source string, chunks []Chunk, limit int) {
	t.Helper()
	if got := Reassemble(source, chunks); got != source {
		t.Errorf("reassembled text differs from source:\n%q\n%q", got, source)
	}
	prevEnd := 0
	for i, c := range chunks {
		if c.ID != i {
			t.Errorf("chunk %d has id %d", i, c.ID)
		}
		if strings.TrimSpace(c.Text) == "" {
			t.Errorf("chunk %d empty", i)
		}
		if c.Text != source[c.Start:c.End] {
			t.Errorf("chunk %d offsets [%d:%d] do not match its text", i, c.Start, c.End)
		}
		if c.Text != strings.TrimSpace(c.Text) {
			t.Errorf("chunk %d not trimmed", i)
		}
		if gap := strings.TrimFunc(source[prevEnd:c.Start], unicode.IsSpace); gap != "" {
			t.Errorf("non-space gap %q before chunk %d", gap, i)
		}
		if !c.Oversized && c.Runes() > limit {
			t.Errorf("chunk %d has %d runes, limit %d", i, c.Runes(), limit)
		}
		prevEnd = c.End
	}
	if tail := strings.TrimSpace(source[prevEnd:]); tail != "" {
		t.Errorf("text after last chunk: %q", tail)
	}
}

func TestPlan_ShortTextIsOneChunk(t *testing.T) {
	text := "  Enzymes are proteins that speed up reactions without being consumed by them in any way at all.\n"
	chunks := NewPlanner(DefaultConfig(), nil).Plan(text)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != strings.TrimSpace(text) {
		t.Errorf("text = %q", chunks[0].Text)
	}
	checkInvariants(t, text, chunks, DefaultConfig().MaxChunkChars)
}

func TestPlan_EmptyText(t *testing.T) {
	if chunks := NewPlanner(DefaultConfig(), nil).Plan(" \n\n \t"); len(chunks) != 0 {
		t.Errorf("got %d chunks for blank text", len(chunks))
	}
}

func TestPlan_PacksParagraphsGreedily(t *testing.T) {
	var paras []string
	for i := 0; i < 12; i++ {
		paras = append(paras, paragraph(i, 4))
	}
	text := strings.Join(paras, "\n\n")
	cfg := Config{MaxChunkChars: 1000}
	chunks := NewPlanner(cfg, nil).Plan(text)

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	checkInvariants(t, text, chunks, cfg.MaxChunkChars)
	for _, c := range chunks {
		if c.Oversized {
			t.Errorf("chunk %d unexpectedly oversized", c.ID)
		}
		// Paragraph boundaries are preserved when packing.
		if !strings.HasPrefix(c.Text, "Paragraph ") || !strings.HasSuffix(c.Text, "energy.") {
			t.Errorf("chunk %d does not align to paragraphs: %q", c.ID, c.Text)
		}
	}
}

func TestPlan_SplitsLongParagraphAtSentence(t *testing.T) {
	text := paragraph(0, 40)
	cfg := Config{MaxChunkChars: 500}
	chunks := NewPlanner(cfg, nil).Plan(text)

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	checkInvariants(t, text, chunks, cfg.MaxChunkChars)
	for _, c := range chunks {
		if c.Oversized {
			t.Errorf("chunk %d unexpectedly oversized", c.ID)
		}
		if !strings.HasSuffix(c.Text, ".") {
			t.Errorf("chunk %d does not end at a sentence: %q", c.ID, c.Text)
		}
	}
}

func TestPlan_OversizedSentenceIsFlaggedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	long := strings.Repeat("word ", 150) + "end."
	text := "Short intro paragraph.\n\n" + long + " Tail sentence."
	cfg := Config{MaxChunkChars: 200}

	chunks := NewPlanner(cfg, logger.FromZap(zap.New(core))).Plan(text)
	checkInvariants(t, text, chunks, cfg.MaxChunkChars)

	var oversized int
	for _, c := range chunks {
		if c.Oversized {
			oversized++
			if c.Runes() <= cfg.MaxChunkChars {
				t.Errorf("chunk %d flagged oversized at %d runes", c.ID, c.Runes())
			}
		}
	}
	if oversized != 1 {
		t.Errorf("got %d oversized chunks, want 1", oversized)
	}
	if n := logs.FilterMessage("chunk exceeds size limit").Len(); n != 1 {
		t.Errorf("got %d oversize warnings, want 1", n)
	}
	if last := chunks[len(chunks)-1].Text; last != "Tail sentence." {
		t.Errorf("last chunk = %q", last)
	}
}

func TestPlan_UnicodeCountsRunes(t *testing.T) {
	para := strings.Repeat("é", 150)
	text := para + "\n\n" + para
	chunks := NewPlanner(Config{MaxChunkChars: 200}, nil).Plan(text)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	checkInvariants(t, text, chunks, 200)
}

func TestPlan_PreservesIrregularSeparators(t *testing.T) {
	text := "\n\nFirst paragraph here.\r\n  \r\nSecond paragraph here.\n\n\n\nThird one.  \n"
	chunks := NewPlanner(Config{MaxChunkChars: 30}, nil).Plan(text)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	checkInvariants(t, text, chunks, 30)
}

func TestTopicHint(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"markdown heading", "## Cellular Respiration\nMitochondria release energy.", "Cellular Respiration"},
		{"plain heading", "The Calvin Cycle\nCarbon is fixed in the stroma.", "The Calvin Cycle"},
		{"sentence first line", "Carbon is fixed. Carbon cycles.\nCarbon again.", "carbon"},
		{"most frequent word", "Enzymes catalyse reactions. Enzymes are proteins. Proteins fold.", "enzymes"},
		{"tie broken alphabetically", "Zebra apple.", "apple"},
		{"no candidates", "a an it is", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopicHint(tt.text); got != tt.want {
				t.Errorf("TopicHint = %q, want %q", got, tt.want)
			}
		})
	}
}
