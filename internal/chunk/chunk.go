// Package chunk partitions source text into bounded, paragraph-aligned
// slices for generation calls.
package chunk

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abhisek/quizgenius/internal/logger"
)

// Config bounds chunk size.
type Config struct {
	// MaxChunkChars is counted in runes.
	MaxChunkChars int `yaml:"max_chunk_chars" validate:"gte=200"`
}

// DefaultConfig returns the standard chunk bound.
func DefaultConfig() Config {
	return Config{MaxChunkChars: 8000}
}

// Chunk is one contiguous slice of the source. Start and End are byte
// offsets, so source[Start:End] == Text.
type Chunk struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	TopicHint string `json:"topic_hint,omitempty"`
	// Oversized is set when a single sentence could not be brought under
	// the limit.
	Oversized bool `json:"oversized,omitempty"`
}

// Runes returns the chunk length in runes.
func (c Chunk) Runes() int {
	return utf8.RuneCountInString(c.Text)
}

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)
	sentenceEnd    = regexp.MustCompile(`([.!?]+["')\]]*)(?:\s|$)`)
)

// Planner splits text into chunks. It is stateless apart from its
// configuration and is safe for concurrent use.
type Planner struct {
	cfg Config
	log *logger.Logger
}

// NewPlanner creates a planner. A nil logger discards warnings.
func NewPlanner(cfg Config, log *logger.Logger) *Planner {
	if log == nil {
		log = logger.Nop()
	}
	return &Planner{cfg: cfg, log: log}
}

type span struct {
	start, end int
	oversized  bool
}

// Plan returns the ordered chunks for text. Whitespace-only input yields
// no chunks.
func (p *Planner) Plan(text string) []Chunk {
	var units []span
	for _, para := range paragraphSpans(text) {
		if runes(text, para) <= p.cfg.MaxChunkChars {
			units = append(units, para)
			continue
		}
		units = append(units, p.splitParagraph(text, para)...)
	}

	var merged []span
	for _, u := range units {
		if n := len(merged); n > 0 && !u.oversized && !merged[n-1].oversized {
			candidate := span{start: merged[n-1].start, end: u.end}
			if runes(text, candidate) <= p.cfg.MaxChunkChars {
				merged[n-1] = candidate
				continue
			}
		}
		merged = append(merged, u)
	}

	chunks := make([]Chunk, len(merged))
	for i, s := range merged {
		c := Chunk{
			ID:        i,
			Text:      text[s.start:s.end],
			Start:     s.start,
			End:       s.end,
			Oversized: s.oversized,
		}
		c.TopicHint = TopicHint(c.Text)
		if c.Oversized {
			p.log.Warn("chunk exceeds size limit",
				"chunk_id", c.ID,
				"runes", c.Runes(),
				"limit", p.cfg.MaxChunkChars,
			)
		}
		chunks[i] = c
	}
	return chunks
}

// splitParagraph cuts a paragraph at the sentence boundary nearest to, but
// not past, the limit. A sentence that alone exceeds the limit becomes an
// oversized piece.
func (p *Planner) splitParagraph(text string, para span) []span {
	body := text[para.start:para.end]
	var bounds []int
	for _, m := range sentenceEnd.FindAllStringSubmatchIndex(body, -1) {
		bounds = append(bounds, para.start+m[3])
	}
	if len(bounds) == 0 || bounds[len(bounds)-1] != para.end {
		bounds = append(bounds, para.end)
	}

	var out []span
	s := para.start
	for s < para.end {
		best := -1
		next := -1
		for _, b := range bounds {
			if b <= s {
				continue
			}
			if next == -1 {
				next = b
			}
			if runes(text, span{start: s, end: b}) > p.cfg.MaxChunkChars {
				break
			}
			best = b
		}
		piece := span{start: s, end: best}
		if best == -1 {
			piece = span{start: s, end: next, oversized: true}
		}
		out = append(out, piece)
		s = skipSpace(text, piece.end, para.end)
	}
	return out
}

// Reassemble rebuilds the source from its chunks, restoring the original
// separators between them.
func Reassemble(source string, chunks []Chunk) string {
	if len(chunks) == 0 {
		return source
	}
	var b strings.Builder
	b.Grow(len(source))
	b.WriteString(source[:chunks[0].Start])
	for i, c := range chunks {
		b.WriteString(c.Text)
		if i+1 < len(chunks) {
			b.WriteString(source[c.End:chunks[i+1].Start])
		}
	}
	b.WriteString(source[chunks[len(chunks)-1].End:])
	return b.String()
}

func paragraphSpans(text string) []span {
	var out []span
	prev := 0
	add := func(start, end int) {
		start = skipSpace(text, start, end)
		for end > start {
			r, size := utf8.DecodeLastRuneInString(text[:end])
			if !unicode.IsSpace(r) {
				break
			}
			end -= size
		}
		if end > start {
			out = append(out, span{start: start, end: end})
		}
	}
	for _, loc := range paragraphBreak.FindAllStringIndex(text, -1) {
		add(prev, loc[0])
		prev = loc[1]
	}
	add(prev, len(text))
	return out
}

func skipSpace(text string, i, limit int) int {
	for i < limit {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

func runes(text string, s span) int {
	return utf8.RuneCountInString(text[s.start:s.end])
}
