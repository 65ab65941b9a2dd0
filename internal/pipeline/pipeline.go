// Package pipeline runs a generation request through assessment,
// chunking, generation, validation and aggregation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizgenius/internal/aggregate"
	"github.com/abhisek/quizgenius/internal/chunk"
	"github.com/abhisek/quizgenius/internal/llm"
	"github.com/abhisek/quizgenius/internal/logger"
	"github.com/abhisek/quizgenius/internal/quality"
	"github.com/abhisek/quizgenius/internal/question"
	"github.com/abhisek/quizgenius/internal/questiongen"
	"github.com/abhisek/quizgenius/internal/store"
	"github.com/abhisek/quizgenius/internal/suitability"
)

// Policy holds caller decisions the stages themselves never make.
type Policy struct {
	// RequireSuitable aborts requests whose text the assessor reports as
	// unsuitable. When false the report is advisory.
	RequireSuitable bool `yaml:"require_suitable"`
}

// Config gathers the configuration of every stage.
type Config struct {
	Suitability suitability.Config `yaml:"suitability"`
	Chunk       chunk.Config       `yaml:"chunk"`
	Generation  questiongen.Config `yaml:"generation"`
	Quality     quality.Config     `yaml:"quality"`
	Policy      Policy             `yaml:"policy"`
}

// DefaultConfig returns the defaults of every stage.
func DefaultConfig() Config {
	return Config{
		Suitability: suitability.DefaultConfig(),
		Chunk:       chunk.DefaultConfig(),
		Generation:  questiongen.DefaultConfig(),
		Quality:     quality.DefaultConfig(),
	}
}

// RunRecorder persists run summaries. *store.RunRepo implements it.
type RunRecorder interface {
	Save(ctx context.Context, rec store.RunRecord) error
}

// Pipeline is safe for concurrent use; each Run call owns its own state.
type Pipeline struct {
	cfg       Config
	assessor  *suitability.Assessor
	planner   *chunk.Planner
	generator *questiongen.Generator
	validator *quality.Validator
	sink      question.Sink
	runs      RunRecorder
	log       *logger.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSink stores every accepted question once a run completes.
func WithSink(s question.Sink) Option {
	return func(p *Pipeline) { p.sink = s }
}

// WithRunRecorder saves a summary of every run.
func WithRunRecorder(r RunRecorder) Option {
	return func(p *Pipeline) { p.runs = r }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// New builds a pipeline around provider.
func New(provider llm.Provider, cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, log: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	p.assessor = suitability.New(cfg.Suitability)
	p.planner = chunk.NewPlanner(cfg.Chunk, p.log)
	p.generator = questiongen.New(provider, cfg.Generation, p.log)
	p.validator = quality.New(cfg.Quality)
	return p
}

// Run is the record of one request's trip through the pipeline.
type Run struct {
	ID          string              `json:"id"`
	State       State               `json:"state"`
	Transitions []Transition        `json:"transitions"`
	Report      *suitability.Report `json:"report,omitempty"`
	Chunks      []chunk.Chunk       `json:"chunks,omitempty"`

	// Result is set once the run completes; aborted runs have none.
	Result *question.Result `json:"result,omitempty"`

	// StoredIDs holds the sink ids of accepted questions, in order.
	StoredIDs []string `json:"stored_ids,omitempty"`
}

func (r *Run) moveTo(s State) {
	if !r.State.CanTransition(s) {
		panic(fmt.Sprintf("pipeline: illegal transition %s -> %s", r.State, s))
	}
	r.Transitions = append(r.Transitions, Transition{From: r.State, To: s, At: time.Now()})
	r.State = s
}

// Run processes req. An invalid request returns only an error. Text with
// nothing to assess, or unsuitable text under RequireSuitable, returns an
// aborted run with a *suitability.ContentInsufficientError. Otherwise the
// run completes; cancellation of ctx yields a partial result rather than
// an error. A non-nil error alongside a completed run means persistence
// failed.
func (p *Pipeline) Run(ctx context.Context, req question.Request) (*Run, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}

	start := time.Now()
	run := &Run{ID: uuid.NewString(), State: StatePending}
	log := p.log.With("run_id", run.ID)

	run.moveTo(StateAssessing)
	report, err := p.assessor.Assess(req.SourceText)
	if err != nil {
		run.moveTo(StateAborted)
		log.Warn("run aborted", "error", err)
		return run, errors.Join(err, p.record(ctx, run, req, time.Since(start)))
	}
	run.Report = report
	if !report.Suitable {
		log.Warn("source text below suitability threshold",
			"score", report.OverallScore,
			"words", report.WordCount,
			"issues", report.Issues,
		)
		if p.cfg.Policy.RequireSuitable {
			run.moveTo(StateAborted)
			err := &suitability.ContentInsufficientError{
				Reason: fmt.Sprintf("suitability score %.2f with %d words does not meet the threshold", report.OverallScore, report.WordCount),
				Report: report,
			}
			return run, errors.Join(err, p.record(ctx, run, req, time.Since(start)))
		}
	}

	run.moveTo(StateChunking)
	run.Chunks = p.planner.Plan(req.SourceText)

	run.moveTo(StateGenerating)
	batch := p.generator.Generate(ctx, run.Chunks, req)

	run.moveTo(StateValidating)
	reviewed := p.validator.ReviewAll(batch.Drafts)

	run.moveTo(StateAggregating)
	res := aggregate.Aggregate(reviewed, req, aggregate.Meta{
		Log:           batch.Log,
		Elapsed:       time.Since(start),
		Partial:       batch.Partial,
		PartialReason: batch.PartialReason,
	})
	run.Result = &res
	run.moveTo(StateCompleted)

	log.Info("run completed",
		"chunks", len(run.Chunks),
		"drafts", len(batch.Drafts),
		"accepted", len(res.Accepted),
		"rejected", len(res.Rejected),
		"surplus", len(res.Surplus),
		"success_ratio", res.SuccessRatio,
		"log_entries", len(res.Log),
		"partial", res.Partial,
		"elapsed", res.Elapsed,
	)

	persistErr := p.persist(ctx, run, req)
	return run, errors.Join(persistErr, p.record(ctx, run, req, res.Elapsed))
}

// persist hands accepted questions to the sink. It runs detached from
// cancellation so a cancelled run still stores what it produced.
func (p *Pipeline) persist(ctx context.Context, run *Run, req question.Request) error {
	if p.sink == nil {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	meta := question.StoreMeta{RunID: run.ID, DocumentID: req.DocumentID, UserID: req.UserID}

	var errs []error
	for _, q := range run.Result.Accepted {
		id, err := p.sink.Store(ctx, meta, q)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		run.StoredIDs = append(run.StoredIDs, id)
	}
	if len(errs) > 0 {
		p.log.Error("storing accepted questions failed", "run_id", run.ID, "failed", len(errs))
		return fmt.Errorf("store accepted questions: %w", errors.Join(errs...))
	}
	return nil
}

func (p *Pipeline) record(ctx context.Context, run *Run, req question.Request, elapsed time.Duration) error {
	if p.runs == nil {
		return nil
	}
	rec := store.RunRecord{
		ID:         run.ID,
		CreatedAt:  req.CreatedAt,
		DocumentID: req.DocumentID,
		UserID:     req.UserID,
		State:      string(run.State),
		Requested:  req.TotalRequested(),
		Elapsed:    elapsed,
	}
	if res := run.Result; res != nil {
		rec.Accepted = len(res.Accepted)
		rec.Rejected = len(res.Rejected)
		rec.SuccessRatio = res.SuccessRatio
		rec.Partial = res.Partial
		rec.PartialReason = res.PartialReason
		rec.ErrorCount = len(res.Log)
	}
	if err := p.runs.Save(context.WithoutCancel(ctx), rec); err != nil {
		p.log.Error("saving run summary failed", "run_id", run.ID, "error", err)
		return fmt.Errorf("save run summary: %w", err)
	}
	return nil
}
