package questiongen

import (
	"strings"
	"testing"

	"github.com/abhisek/quizgenius/internal/chunk"
	"github.com/abhisek/quizgenius/internal/question"
)

func TestBuildPrompt_MultipleChoice(t *testing.T) {
	task := Task{
		Chunk: chunk.Chunk{Text: "Mitochondria release energy from glucose.", TopicHint: "Respiration"},
		Type:  question.TypeMultipleChoice,
		Count: 3,
	}
	msg := buildPrompt(task, question.Request{Difficulty: question.DifficultyAdvanced})

	for _, want := range []string{
		"Write 3 multiple choice questions.",
		"Difficulty: advanced",
		"Likely topic: Respiration",
		"exactly four options",
		`"correct_answer":"B"`,
		"Mitochondria release energy from glucose.",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(msg, "true/false") {
		t.Error("multiple choice prompt should not mention true/false")
	}
}

func TestBuildPrompt_TrueFalse(t *testing.T) {
	task := Task{
		Chunk: chunk.Chunk{Text: "Enzymes lower activation energy.", TopicHint: "Enzymes"},
		Type:  question.TypeTrueFalse,
		Count: 2,
	}
	msg := buildPrompt(task, question.Request{Difficulty: question.DifficultyMixed, TopicFocus: "catalysis"})

	for _, want := range []string{
		"Write 2 true/false statements.",
		"Difficulty: mixed",
		"Focus on: catalysis",
		"double negatives",
		`"correct_answer":true`,
		"Enzymes lower activation energy.",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(msg, "Likely topic") {
		t.Error("topic focus should replace the chunk's topic hint")
	}
}

func TestSystemPromptRequiresJSON(t *testing.T) {
	if !strings.Contains(systemPrompt, "single JSON object") {
		t.Fatal("system prompt must ask for a single JSON object")
	}
}
