package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizgenius/internal/question"
)

const systemPrompt = `You are an assessment author writing exam questions from educational source text.

Rules:
- Every question must be answerable from the provided text alone. Do not use outside knowledge.
- Write clear, self-contained questions in plain language. Do not refer to "the text" or "the passage".
- Do not repeat a question or ask the same fact twice in different words.
- Match the requested difficulty. Beginner questions recall facts; intermediate questions connect ideas; advanced questions apply or analyse them.
- Reply with a single JSON object and nothing else. No prose, no markdown.`

// buildPrompt returns the user message for a task. The set of builders is
// closed over the supported question types.
func buildPrompt(task Task, req question.Request) string {
	switch task.Type {
	case question.TypeTrueFalse:
		return buildTrueFalsePrompt(task, req)
	default:
		return buildMultipleChoicePrompt(task, req)
	}
}

func buildMultipleChoicePrompt(task Task, req question.Request) string {
	var b strings.Builder
	writeHeader(&b, task, req, "multiple choice questions")

	b.WriteString(`
Each question has exactly four options keyed A, B, C and D. Exactly one option is correct.
Distractors must be plausible, similar in length and style to the correct option, and clearly wrong to someone who read the text.
Never use "all of the above" or "none of the above".

Respond with JSON in this shape:
{"questions":[{"question":"...","options":{"A":"...","B":"...","C":"...","D":"..."},"correct_answer":"B","explanation":"...","difficulty":"intermediate","topic":"...","confidence":0.9}]}
`)
	writeSource(&b, task)
	return b.String()
}

func buildTrueFalsePrompt(task Task, req question.Request) string {
	var b strings.Builder
	writeHeader(&b, task, req, "true/false statements")

	b.WriteString(`
Each statement must be unambiguously true or false according to the text.
Avoid hedge words such as "sometimes", "often", "usually", "many" or "may", and avoid double negatives.
Make roughly half of the statements false by changing one key fact.

Respond with JSON in this shape:
{"questions":[{"statement":"...","correct_answer":true,"explanation":"...","difficulty":"beginner","topic":"...","confidence":0.9}]}
`)
	writeSource(&b, task)
	return b.String()
}

func writeHeader(b *strings.Builder, task Task, req question.Request, noun string) {
	fmt.Fprintf(b, "Write %d %s.\n", task.Count, noun)
	fmt.Fprintf(b, "Difficulty: %s\n", difficultyInstruction(req.Difficulty))
	if focus := strings.TrimSpace(req.TopicFocus); focus != "" {
		fmt.Fprintf(b, "Focus on: %s\n", focus)
	} else if task.Chunk.TopicHint != "" {
		fmt.Fprintf(b, "Likely topic: %s\n", task.Chunk.TopicHint)
	}
}

func writeSource(b *strings.Builder, task Task) {
	b.WriteString("\nSource text:\n<<<\n")
	b.WriteString(task.Chunk.Text)
	b.WriteString("\n>>>\n")
}

func difficultyInstruction(d question.Difficulty) string {
	if d == question.DifficultyMixed || d == "" {
		return "mixed (spread questions across beginner, intermediate and advanced)"
	}
	return string(d)
}
