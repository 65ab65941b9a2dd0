package aggregate

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/quizgenius/internal/question"
)

func reviewed(t question.Type, text string, chunk, seq int, score float64, passed bool) question.Reviewed {
	out := question.Outcome{Passed: passed, Score: score}
	if !passed {
		out.Issues = []question.Issue{{Code: "option_count", Message: "expected 4 options, got 3", Fatal: true}}
	}
	return question.Reviewed{
		Draft:   question.Draft{Type: t, Text: text, ChunkID: chunk, Seq: seq},
		Outcome: out,
	}
}

func request(mc, tf int) question.Request {
	return question.Request{
		Counts:     map[question.Type]int{question.TypeMultipleChoice: mc, question.TypeTrueFalse: tf},
		Difficulty: question.DifficultyMixed,
	}
}

func texts(rs []question.Reviewed) []string {
	var out []string
	for _, r := range rs {
		out = append(out, r.Draft.Text)
	}
	return out
}

func TestAggregate_EmptyInputIsValid(t *testing.T) {
	log := []question.AttemptRecord{{ChunkID: 0, Type: question.TypeTrueFalse, Attempt: 3, Kind: question.KindModelInvocation, Message: "down"}}
	res := Aggregate(nil, request(3, 2), Meta{Log: log, Elapsed: time.Second})

	if res.Accepted == nil || len(res.Accepted) != 0 {
		t.Errorf("accepted = %#v, want empty non-nil", res.Accepted)
	}
	if res.Rejected == nil || len(res.Rejected) != 0 {
		t.Errorf("rejected = %#v, want empty non-nil", res.Rejected)
	}
	if res.SuccessRatio != 0 {
		t.Errorf("success ratio = %.2f, want 0", res.SuccessRatio)
	}
	if !reflect.DeepEqual(res.Log, log) {
		t.Errorf("log = %+v, want %+v", res.Log, log)
	}
	wantProduced := map[question.Type]int{question.TypeMultipleChoice: 0, question.TypeTrueFalse: 0}
	if !reflect.DeepEqual(res.Produced, wantProduced) {
		t.Errorf("produced = %v, want %v", res.Produced, wantProduced)
	}
	if res.Elapsed != time.Second {
		t.Errorf("elapsed = %v, want 1s", res.Elapsed)
	}
}

func TestAggregate_FailedDraftsAreRejectedWithReason(t *testing.T) {
	in := []question.Reviewed{
		reviewed(question.TypeMultipleChoice, "Which organelle makes ATP?", 0, 0, 8, true),
		reviewed(question.TypeMultipleChoice, "Which organelle stores DNA?", 0, 1, 0, false),
	}
	res := Aggregate(in, request(2, 0), Meta{})

	if len(res.Accepted) != 1 || len(res.Rejected) != 1 {
		t.Fatalf("accepted %d, rejected %d, want 1 and 1", len(res.Accepted), len(res.Rejected))
	}
	if !strings.Contains(res.Rejected[0].Reason, "expected 4 options") {
		t.Errorf("reason = %q", res.Rejected[0].Reason)
	}
	if res.SuccessRatio != 0.5 {
		t.Errorf("success ratio = %.2f, want 0.5", res.SuccessRatio)
	}
}

func TestAggregate_DeduplicatesKeepingHigherScore(t *testing.T) {
	in := []question.Reviewed{
		reviewed(question.TypeTrueFalse, "Enzymes are proteins.", 0, 0, 7, true),
		reviewed(question.TypeTrueFalse, "  ENZYMES are   proteins ", 1, 5, 9, true),
		reviewed(question.TypeTrueFalse, "Enzymes are proteins!", 2, 9, 7, true),
	}
	res := Aggregate(in, request(0, 3), Meta{})

	if len(res.Accepted) != 1 {
		t.Fatalf("accepted %d, want 1", len(res.Accepted))
	}
	if res.Accepted[0].Draft.ChunkID != 1 {
		t.Errorf("kept chunk %d, want 1", res.Accepted[0].Draft.ChunkID)
	}
	if len(res.Rejected) != 2 {
		t.Fatalf("rejected %d, want 2", len(res.Rejected))
	}
	if res.Rejected[0].Draft.ChunkID != 0 {
		t.Errorf("first rejected chunk = %d, want 0", res.Rejected[0].Draft.ChunkID)
	}
	reason := res.Rejected[0].Reason
	if !strings.Contains(reason, "duplicate") || !strings.Contains(reason, "chunk 1") {
		t.Errorf("reason = %q", reason)
	}
}

func TestAggregate_DuplicateTieKeepsEarlierChunk(t *testing.T) {
	in := []question.Reviewed{
		reviewed(question.TypeTrueFalse, "Enzymes are proteins.", 2, 4, 8, true),
		reviewed(question.TypeTrueFalse, "enzymes are proteins", 1, 7, 8, true),
	}
	res := Aggregate(in, request(0, 1), Meta{})
	if len(res.Accepted) != 1 {
		t.Fatalf("accepted %d, want 1", len(res.Accepted))
	}
	if res.Accepted[0].Draft.ChunkID != 1 {
		t.Errorf("kept chunk %d, want 1", res.Accepted[0].Draft.ChunkID)
	}
}

func TestAggregate_TruncatesPerTypeByScore(t *testing.T) {
	var in []question.Reviewed
	for i, score := range []float64{6, 9, 7, 9, 8} {
		in = append(in, reviewed(question.TypeMultipleChoice, fmt.Sprintf("MC question %d?", i), i%2, i, score, true))
	}
	in = append(in, reviewed(question.TypeTrueFalse, "Statement one.", 0, 10, 6, true))

	res := Aggregate(in, request(3, 2), Meta{})

	if len(res.Accepted) != 4 {
		t.Fatalf("accepted %d, want 4", len(res.Accepted))
	}
	if res.Produced[question.TypeMultipleChoice] != 3 || res.Produced[question.TypeTrueFalse] != 1 {
		t.Errorf("produced = %v", res.Produced)
	}
	if res.SuccessRatio != 0.8 {
		t.Errorf("success ratio = %.2f, want 0.8", res.SuccessRatio)
	}
	// Kept: scores 9 (seq 1, chunk 1), 9 (seq 3, chunk 1), 8 (seq 4, chunk 0).
	// Order: chunk 0 by score, then chunk 1 by score then arrival.
	wantAccepted := []string{"MC question 4?", "Statement one.", "MC question 1?", "MC question 3?"}
	if got := texts(res.Accepted); !slices.Equal(got, wantAccepted) {
		t.Errorf("accepted = %v, want %v", got, wantAccepted)
	}
	wantSurplus := []string{"MC question 2?", "MC question 0?"}
	if got := texts(res.Surplus); !slices.Equal(got, wantSurplus) {
		t.Errorf("surplus = %v, want %v", got, wantSurplus)
	}
	if len(res.Rejected) != 0 {
		t.Errorf("rejected = %+v, want none", res.Rejected)
	}
}

func TestAggregate_SuccessRatioCapped(t *testing.T) {
	in := []question.Reviewed{
		reviewed(question.TypeTrueFalse, "Statement one.", 0, 0, 9, true),
		reviewed(question.TypeTrueFalse, "Statement two.", 0, 1, 9, true),
	}
	res := Aggregate(in, request(0, 1), Meta{})
	if res.SuccessRatio != 1 {
		t.Errorf("success ratio = %.2f, want 1", res.SuccessRatio)
	}
	if len(res.Surplus) != 1 {
		t.Errorf("surplus %d, want 1", len(res.Surplus))
	}
}

func TestAggregate_IdempotentAndOrderIndependent(t *testing.T) {
	var in []question.Reviewed
	for i := 0; i < 12; i++ {
		typ := question.TypeMultipleChoice
		if i%3 == 0 {
			typ = question.TypeTrueFalse
		}
		in = append(in, reviewed(typ, fmt.Sprintf("Question %d", i%7), i%4, i, float64(5+i%4), i%5 != 0))
	}
	meta := Meta{Partial: true, PartialReason: question.PartialBatchTimeout}

	first := Aggregate(in, request(4, 2), meta)
	if second := Aggregate(in, request(4, 2), meta); !reflect.DeepEqual(first, second) {
		t.Errorf("repeat aggregation differs:\n%+v\n%+v", first, second)
	}

	reversed := make([]question.Reviewed, len(in))
	for i, r := range in {
		reversed[len(in)-1-i] = r
	}
	if rev := Aggregate(reversed, request(4, 2), meta); !reflect.DeepEqual(first, rev) {
		t.Errorf("reversed input changes the result:\n%+v\n%+v", first, rev)
	}
	if !first.Partial {
		t.Error("partial flag should carry through")
	}
}
