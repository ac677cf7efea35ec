// Package pipeline turns raw syllabus text into accessibility-adapted task
// lists through a two-pass generation flow: Pass 1 extracts structured
// assignments, Pass 2 rewrites them for the student's profile.
package pipeline

import (
	"context"
	"errors"
	"time"

	"vantage/internal/jsonrepair"
	"vantage/internal/llmclient"
	"vantage/internal/types"
)

// PipelineError wraps any stage failure so the HTTP boundary has a single
// failure mode to branch on. Unwrap preserves the underlying cause for
// errors.Is/As.
type PipelineError struct {
	Err error
}

func (e *PipelineError) Error() string { return "pipeline: " + e.Err.Error() }
func (e *PipelineError) Unwrap() error { return e.Err }

// Pipeline sequences extraction and translation over a shared generation
// client. Stateless per run; many runs may be in flight concurrently.
type Pipeline struct {
	llm    llmclient.TextClient
	repair *jsonrepair.Engine
	now    func() time.Time
}

// New builds a pipeline. The repair engine issues its last-resort call
// through the same client.
func New(client llmclient.TextClient) *Pipeline {
	return &Pipeline{
		llm:    client,
		repair: jsonrepair.New(client),
		now:    time.Now,
	}
}

// SetClock replaces the processedAt time source. Tests only.
func (p *Pipeline) SetClock(now func() time.Time) { p.now = now }

// Run executes Pass 1 then Pass 2 and shapes the result. Validation failures
// (ErrInputTooShort) surface unwrapped before any network call; every other
// stage error is re-raised as *PipelineError. No partial result is ever
// returned: a PipelineResult is either complete or does not exist.
func (p *Pipeline) Run(ctx context.Context, rawText string, profile types.CAPProfile) (*types.PipelineResult, error) {
	extracted, err := p.Extract(ctx, rawText)
	if err != nil {
		if errors.Is(err, ErrInputTooShort) {
			return nil, err
		}
		return nil, &PipelineError{Err: err}
	}

	tasks, err := p.Translate(ctx, extracted.Assignments, profile)
	if err != nil {
		return nil, &PipelineError{Err: err}
	}

	return &types.PipelineResult{
		CourseName:     extracted.CourseName,
		Instructor:     extracted.Instructor,
		Term:           extracted.Term,
		Tasks:          tasks,
		Policies:       extracted.Policies,
		ImportantDates: extracted.ImportantDates,
		ProcessedAt:    p.now().UTC(),
	}, nil
}
