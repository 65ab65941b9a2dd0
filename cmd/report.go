package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizgenius/internal/chunk"
	"github.com/abhisek/quizgenius/internal/question"
	"github.com/abhisek/quizgenius/internal/suitability"
	"github.com/abhisek/quizgenius/internal/ui/theme"
)

// readSource reads the document text from a file path, or stdin for "-" or
// no argument.
func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderReport(w io.Writer, r *suitability.Report, threshold float64) {
	fmt.Fprintln(w, theme.Title.Render("Suitability"))
	fmt.Fprintln(w, theme.Field("Verdict", theme.Verdict(r.Suitable, "suitable", "unsuitable")))
	fmt.Fprintln(w, theme.Label.Render("Overall")+theme.Score(r.OverallScore, threshold))
	fmt.Fprintln(w, theme.Field("Words", r.WordCount))
	fmt.Fprintln(w, theme.Field("Sentences", r.SentenceCount))
	fmt.Fprintln(w, theme.Field("Paragraphs", r.ParagraphCount))
	fmt.Fprintln(w, theme.Field("Content", fmt.Sprintf("%.2f", r.ContentScore)))
	fmt.Fprintln(w, theme.Field("Indicators", fmt.Sprintf("%.2f", r.IndicatorScore)))
	fmt.Fprintln(w, theme.Field("Structure", fmt.Sprintf("%.2f", r.StructureScore)))
	fmt.Fprintln(w, theme.Field("Vocabulary", fmt.Sprintf("%.2f", r.VocabularyScore)))

	var hits []string
	for _, c := range suitability.Categories() {
		if n := r.IndicatorHits[c]; n > 0 {
			hits = append(hits, fmt.Sprintf("%s=%d", c, n))
		}
	}
	if len(hits) > 0 {
		fmt.Fprintln(w, theme.Field("Hits", strings.Join(hits, " ")))
	}

	if len(r.Issues) > 0 {
		fmt.Fprintln(w, theme.Section.Render("Issues"))
		for _, is := range r.Issues {
			fmt.Fprintln(w, "  "+theme.Warn.Render("• ")+is)
		}
	}
	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w, theme.Section.Render("Recommendations"))
		for _, rec := range r.Recommendations {
			fmt.Fprintln(w, "  "+theme.Hint.Render("→ "+rec))
		}
	}
}

func renderChunks(w io.Writer, chunks []chunk.Chunk) {
	fmt.Fprintln(w, theme.Title.Render(fmt.Sprintf("Chunks (%d)", len(chunks))))
	for _, c := range chunks {
		line := fmt.Sprintf("#%-3d %6d runes  bytes %d-%d", c.ID, c.Runes(), c.Start, c.End)
		if c.TopicHint != "" {
			line += "  " + theme.Hint.Render(c.TopicHint)
		}
		if c.Oversized {
			line += "  " + theme.Warn.Render("oversized")
		}
		fmt.Fprintln(w, line)
	}
}

func renderResult(w io.Writer, res *question.Result, threshold float64, showRejected bool) {
	fmt.Fprintln(w, theme.Section.Render("Result"))
	for _, t := range question.Types() {
		want := res.Requested[t]
		if want == 0 {
			continue
		}
		fmt.Fprintln(w, theme.Field(string(t), fmt.Sprintf("%d / %d", res.Produced[t], want)))
	}
	fmt.Fprintln(w, theme.Field("Success ratio", fmt.Sprintf("%.0f%%", res.SuccessRatio*100)))
	fmt.Fprintln(w, theme.Field("Rejected", len(res.Rejected)))
	fmt.Fprintln(w, theme.Field("Surplus", len(res.Surplus)))
	fmt.Fprintln(w, theme.Field("Elapsed", res.Elapsed.Round(time.Millisecond)))
	if res.Partial {
		fmt.Fprintln(w, theme.Field("Partial", theme.Warn.Render(res.PartialReason)))
	}

	for i, q := range res.Accepted {
		fmt.Fprintln(w, renderQuestion(i+1, q, threshold))
	}

	if showRejected && len(res.Rejected) > 0 {
		fmt.Fprintln(w, theme.Section.Render("Rejected"))
		for _, rj := range res.Rejected {
			fmt.Fprintf(w, "  %s %s\n    %s\n",
				theme.Score(rj.Outcome.Score, threshold), rj.Draft.Text, theme.Hint.Render(rj.Reason))
		}
	}

	if len(res.Log) > 0 {
		fmt.Fprintln(w, theme.Section.Render(fmt.Sprintf("Errors (%d)", len(res.Log))))
		for _, e := range res.Log {
			fmt.Fprintf(w, "  chunk %d %s attempt %d %s: %s\n",
				e.ChunkID, e.Type, e.Attempt, theme.Fail.Render(string(e.Kind)), e.Message)
		}
	}
}

func renderQuestion(n int, q question.Reviewed, threshold float64) string {
	d := q.Draft
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", theme.Title.Render(fmt.Sprintf("Q%d", n)), theme.Score(q.Outcome.Score, threshold))
	b.WriteString(d.Text + "\n")

	switch d.Type {
	case question.TypeMultipleChoice:
		for _, o := range d.Options {
			line := fmt.Sprintf("  %s) %s", o.Key, o.Text)
			if o.Key == d.CorrectKey {
				line = theme.Pass.Render(line)
			}
			b.WriteString(line + "\n")
		}
	case question.TypeTrueFalse:
		if d.CorrectBool != nil {
			b.WriteString(theme.Pass.Render(fmt.Sprintf("  Answer: %t", *d.CorrectBool)) + "\n")
		}
	}

	if d.Explanation != "" {
		b.WriteString(theme.Hint.Render(d.Explanation) + "\n")
	}
	meta := []string{string(d.Type), fmt.Sprintf("chunk %d", d.ChunkID)}
	if d.Difficulty != "" {
		meta = append(meta, string(d.Difficulty))
	}
	if d.Topic != "" {
		meta = append(meta, d.Topic)
	}
	b.WriteString(theme.Hint.Render(strings.Join(meta, " · ")))
	return theme.Card.Render(b.String())
}
