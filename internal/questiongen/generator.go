// Package questiongen drives the language model over (chunk, type) tasks
// and parses completions into draft questions.
package questiongen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizgenius/internal/chunk"
	"github.com/abhisek/quizgenius/internal/llm"
	"github.com/abhisek/quizgenius/internal/logger"
	"github.com/abhisek/quizgenius/internal/question"
)

// Task is one generation call: a chunk, a question type and how many
// questions to ask for.
type Task struct {
	Index int
	Chunk chunk.Chunk
	Type  question.Type
	Count int
}

// Batch is everything the orchestrator produced for one request.
type Batch struct {
	// Drafts are ordered by task, then by position in the completion.
	Drafts []question.Draft
	Log    []question.AttemptRecord

	Tasks     int
	Completed int

	Partial       bool
	PartialReason string
}

// PlanTasks expands chunks and requested types into tasks, chunk-major.
// Each chunk asks for ceil(count*factor/chunks) questions, at least one.
func PlanTasks(chunks []chunk.Chunk, req question.Request, factor float64) []Task {
	if factor < 1 {
		factor = 1
	}
	var tasks []Task
	for _, c := range chunks {
		for _, t := range req.RequestedTypes() {
			n := int(math.Ceil(float64(req.Counts[t]) * factor / float64(len(chunks))))
			if n < 1 {
				n = 1
			}
			tasks = append(tasks, Task{Index: len(tasks), Chunk: c, Type: t, Count: n})
		}
	}
	return tasks
}

// Purpose returns the event log label for calls generating type t.
func Purpose(t question.Type) string {
	return llm.PurposeQuestionGen + ":" + string(t)
}

// Generator runs tasks against a provider with bounded parallelism.
type Generator struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// New creates a Generator. A nil logger discards output.
func New(provider llm.Provider, cfg Config, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	return &Generator{provider: provider, config: cfg, log: log}
}

type taskResult struct {
	ran    bool
	drafts []question.Draft
	log    []question.AttemptRecord
}

// Generate runs every task for the request. It never fails: call errors,
// parse errors and cancellations are recorded in the batch log. When ctx
// is cancelled or the batch budget expires, finished results are kept,
// pending tasks are skipped and the batch is marked partial.
func (g *Generator) Generate(ctx context.Context, chunks []chunk.Chunk, req question.Request) *Batch {
	start := time.Now()
	tasks := PlanTasks(chunks, req, g.config.OverGenerationFactor)

	var (
		batchCtx context.Context
		cancel   context.CancelFunc
	)
	if g.config.BatchTimeout > 0 {
		batchCtx, cancel = context.WithTimeout(ctx, g.config.BatchTimeout)
	} else {
		batchCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	results := make([]taskResult, len(tasks))
	var eg errgroup.Group
	eg.SetLimit(g.config.MaxConcurrency)

	for i := range tasks {
		if batchCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if batchCtx.Err() != nil {
				return nil
			}
			results[i] = g.runTask(batchCtx, tasks[i], req)
			return nil
		})
	}
	_ = eg.Wait()

	b := &Batch{Tasks: len(tasks)}
	for i, r := range results {
		if !r.ran {
			b.Partial = true
			b.Log = append(b.Log, question.AttemptRecord{
				ChunkID: tasks[i].Chunk.ID,
				Type:    tasks[i].Type,
				Kind:    question.KindCancelled,
				Message: "call skipped: batch stopped before it started",
			})
			continue
		}
		b.Completed++
		for _, d := range r.drafts {
			d.Seq = len(b.Drafts)
			b.Drafts = append(b.Drafts, d)
		}
		for _, rec := range r.log {
			if rec.Kind == question.KindCancelled {
				b.Partial = true
			}
			b.Log = append(b.Log, rec)
		}
	}
	if b.Partial {
		b.PartialReason = question.PartialBatchTimeout
		if ctx.Err() != nil {
			b.PartialReason = question.PartialCancelled
		}
	}

	g.log.Info("generation batch finished",
		"tasks", b.Tasks,
		"completed", b.Completed,
		"drafts", len(b.Drafts),
		"log_entries", len(b.Log),
		"partial", b.Partial,
		"partial_reason", b.PartialReason,
		"elapsed", time.Since(start),
	)
	return b
}

func (g *Generator) runTask(ctx context.Context, task Task, req question.Request) taskResult {
	res := taskResult{ran: true}
	record := func(kind question.ErrorKind, attempt int, msg string) {
		res.log = append(res.log, question.AttemptRecord{
			ChunkID: task.Chunk.ID,
			Type:    task.Type,
			Attempt: attempt,
			Kind:    kind,
			Message: msg,
		})
	}

	llmReq := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPrompt(task, req)},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}
	if g.config.StructuredOutput {
		llmReq.Schema = schemaFor(task.Type)
	}

	resp, err := g.provider.Generate(llm.WithPurpose(ctx, Purpose(task.Type)), llmReq)
	if err != nil {
		attempts := llm.Attempts(err)
		var invResp *llm.ErrInvalidResponse
		switch {
		case ctx.Err() != nil && llm.IsCancellation(err):
			record(question.KindCancelled, attempts, fmt.Sprintf("call cancelled: %v", err))
		case errors.As(err, &invResp):
			perr := &ResponseParseError{ChunkID: task.Chunk.ID, Type: task.Type, Err: err}
			record(question.KindResponseParse, attempts, perr.Error())
		default:
			merr := &ModelInvocationError{ChunkID: task.Chunk.ID, Type: task.Type, Attempts: attempts, Err: err}
			record(question.KindModelInvocation, attempts, merr.Error())
			g.log.Warn("generation call failed",
				"chunk_id", task.Chunk.ID,
				"type", task.Type,
				"attempts", attempts,
				"error", err,
			)
		}
		return res
	}

	attempt := max(resp.Attempts, 1)
	drafts, dropped, err := Parse(resp.Text(), task.Chunk.ID, task.Type)
	if err != nil {
		record(question.KindResponseParse, attempt, err.Error())
		g.log.Warn("unparseable completion", "chunk_id", task.Chunk.ID, "type", task.Type, "error", err)
		return res
	}
	for _, d := range dropped {
		record(question.KindItemDropped, attempt, fmt.Sprintf("item %d dropped: %s", d.Index, d.Reason))
	}
	for i := range drafts {
		if drafts[i].Topic == "" {
			drafts[i].Topic = task.Chunk.TopicHint
		}
		if drafts[i].Difficulty == "" && req.Difficulty != question.DifficultyMixed {
			drafts[i].Difficulty = req.Difficulty
		}
	}
	res.drafts = drafts
	return res
}
