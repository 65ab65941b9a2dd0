package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lesson = `Photosynthesis

Photosynthesis is the process by which plants convert light energy into chemical energy. The reaction takes place in the chloroplasts of leaf cells.

Chlorophyll absorbs red and blue light most strongly. Green light is reflected, which is why leaves appear green to the human eye.

During the light reactions, water molecules are split and oxygen is released. The energy captured is stored in ATP and NADPH for the Calvin cycle.`

const fastMockConfig = `
log:
  level: error
llm:
  provider: mock
  retry:
    max_attempts: 2
    initial_wait: 1ms
    max_wait: 1ms
    multiplier: 1
  rate_limit:
    requests_per_second: 0
`

// resetFlags restores every flag to its default; rootCmd is package state.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("QUIZGENIUS_DB", filepath.Join(dir, "quizgenius.db"))
	t.Setenv("QUIZGENIUS_LLM_PROVIDER", "")
	t.Setenv("QUIZGENIUS_LOG_LEVEL", "error")

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fastMockConfig), 0o600))
	return cfgPath
}

func TestAssessReadsStdin(t *testing.T) {
	isolate(t)

	out, err := execute(t, lesson, "assess", "--json")
	require.NoError(t, err)

	var report struct {
		WordCount int      `json:"word_count"`
		Suitable  bool     `json:"suitable"`
		Issues    []string `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Greater(t, report.WordCount, 50)
	assert.False(t, report.Suitable, "a short lesson stays below the word minimum")
	assert.NotEmpty(t, report.Issues)
}

func TestAssessEmptyInputFails(t *testing.T) {
	isolate(t)

	_, err := execute(t, "  \n ", "assess")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content insufficient")
}

func TestChunkHonorsMaxChars(t *testing.T) {
	isolate(t)
	src := filepath.Join(t.TempDir(), "lesson.txt")
	require.NoError(t, os.WriteFile(src, []byte(lesson), 0o600))

	out, err := execute(t, "", "chunk", src, "--json", "--max-chars", "200")
	require.NoError(t, err)

	var chunks []struct {
		ID   int    `json:"id"`
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &chunks))
	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.Equal(t, i, c.ID)
		assert.LessOrEqual(t, len([]rune(c.Text)), 200)
	}
}

func TestGenerateRejectsUnknownDifficulty(t *testing.T) {
	cfgPath := isolate(t)

	_, err := execute(t, lesson, "generate", "--config", cfgPath, "--difficulty", "impossible")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown difficulty")
}

func TestGenerateRecordsFailuresAndRun(t *testing.T) {
	cfgPath := isolate(t)

	out, err := execute(t, lesson, "generate", "--config", cfgPath, "--json", "--mc", "2", "--tf", "1")
	require.NoError(t, err)

	var run struct {
		ID     string `json:"id"`
		State  string `json:"state"`
		Result struct {
			Accepted []json.RawMessage `json:"accepted"`
			Log      []struct {
				Kind    string `json:"kind"`
				Attempt int    `json:"attempt"`
			} `json:"log"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, "completed", run.State)
	assert.Empty(t, run.Result.Accepted)
	require.Len(t, run.Result.Log, 2, "one entry per (chunk, type) call")
	for _, e := range run.Result.Log {
		assert.Equal(t, "model_invocation", e.Kind)
		assert.Equal(t, 2, e.Attempt)
	}

	out, err = execute(t, "", "runs", "--config", cfgPath, "--json")
	require.NoError(t, err)
	var runs []struct {
		ID         string
		State      string
		ErrorCount int
	}
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, 2, runs[0].ErrorCount)

	out, err = execute(t, "", "llm", "list", "--config", cfgPath, "--json", "--purpose", "question-gen:multiple_choice")
	require.NoError(t, err)
	var events []struct {
		Purpose string
		Success bool
	}
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	require.Len(t, events, 2, "two attempts for the single multiple choice call")
	for _, e := range events {
		assert.False(t, e.Success)
	}
}

func TestQuestionsListEmptyStore(t *testing.T) {
	cfgPath := isolate(t)

	out, err := execute(t, "", "questions", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No saved questions found.")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "quizgenius "))
}
