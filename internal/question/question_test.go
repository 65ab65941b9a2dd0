package question

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestRequestValidate(t *testing.T) {
	valid := Request{
		Counts:     map[Type]int{TypeMultipleChoice: 3, TypeTrueFalse: 2},
		Difficulty: DifficultyMixed,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	if got := valid.TotalRequested(); got != 5 {
		t.Errorf("TotalRequested = %d, want 5", got)
	}
	if got := valid.RequestedTypes(); !slices.Equal(got, []Type{TypeMultipleChoice, TypeTrueFalse}) {
		t.Errorf("RequestedTypes = %v", got)
	}

	zero := valid
	zero.Counts = map[Type]int{TypeMultipleChoice: 0, TypeTrueFalse: 0}
	if err := zero.Validate(); !errors.Is(err, ErrNoQuestionsRequested) {
		t.Errorf("zero counts: err = %v, want ErrNoQuestionsRequested", err)
	}

	invalid := map[string]func(r *Request){
		"negative count": func(r *Request) { r.Counts = map[Type]int{TypeMultipleChoice: -1, TypeTrueFalse: 2} },
		"unknown type":   func(r *Request) { r.Counts = map[Type]int{"essay": 2} },
		"bad difficulty": func(r *Request) { r.Difficulty = "expert" },
	}
	for name, mutate := range invalid {
		r := valid
		mutate(&r)
		if err := r.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseTypeAndDifficulty(t *testing.T) {
	if typ, ok := ParseType("MCQ"); !ok || typ != TypeMultipleChoice {
		t.Errorf("ParseType(MCQ) = %q, %v", typ, ok)
	}
	if typ, ok := ParseType("true-false"); !ok || typ != TypeTrueFalse {
		t.Errorf("ParseType(true-false) = %q, %v", typ, ok)
	}
	if _, ok := ParseType("essay"); ok {
		t.Error("essay should not parse")
	}
	if d, ok := ParseDifficulty("Hard"); !ok || d != DifficultyAdvanced {
		t.Errorf("ParseDifficulty(Hard) = %q, %v", d, ok)
	}
}

func TestNormalizeText(t *testing.T) {
	a := NormalizeText("  What is   PHOTOSYNTHESIS? ")
	b := NormalizeText("what is photosynthesis")
	if a != b {
		t.Errorf("%q != %q", a, b)
	}

	// Fullwidth letters fold to ASCII under NFKC.
	if got := NormalizeText("ＡＢＣ"); got != "abc" {
		t.Errorf("NormalizeText(fullwidth) = %q, want abc", got)
	}
}

func TestDraftCloneIsDeep(t *testing.T) {
	yes := true
	d := Draft{
		Options:     []Option{{Key: "A", Text: "one"}},
		CorrectBool: &yes,
	}
	c := d.Clone()
	c.Options[0].Text = "changed"
	*c.CorrectBool = false

	if d.Options[0].Text != "one" {
		t.Errorf("original option changed to %q", d.Options[0].Text)
	}
	if !*d.CorrectBool {
		t.Error("original answer changed")
	}
}

func TestOutcomeFailure(t *testing.T) {
	if err := (Outcome{Passed: true, Score: 9}).Failure(); err != nil {
		t.Errorf("passed outcome: Failure() = %v", err)
	}

	err := Outcome{Issues: []Issue{{Code: "option_count", Message: "expected 4 options, got 3", Fatal: true}}}.Failure()
	var svf *StructuralValidationFailure
	if !errors.As(err, &svf) {
		t.Fatalf("err = %v, want *StructuralValidationFailure", err)
	}
	if !strings.Contains(err.Error(), "expected 4 options") {
		t.Errorf("message = %q", err.Error())
	}

	low := Outcome{Score: 3.5}.Failure()
	if low == nil || !strings.Contains(low.Error(), "3.50") {
		t.Errorf("low score failure = %v", low)
	}
}
