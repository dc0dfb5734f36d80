package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/jobscan/internal/model"
)

// Step is one stage of a search pipeline.
type Step interface {
	// Do runs the step against the report. It may fill in fields of the
	// report and returns an error when the step failed.
	Do(ctx context.Context, report *model.SearchReport) error

	// Name identifies the step in logs and in report.PerformedSteps.
	Name() string
}

// FinalStep is a Step that still runs after the context is done, so partial
// results are not lost. It runs with the cancellation removed.
type FinalStep interface {
	Step
	RunsAfterCancel() bool
}

func runsAfterCancel(step Step) bool {
	fs, ok := step.(FinalStep)
	return ok && fs.RunsAfterCancel()
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError runs the remaining steps after a failure.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps going after a failing step.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against report. The context is checked before
// each step; once it is done the report is marked as cancelled and only
// final steps still run. The last step error is recorded on the report.
func (p *Pipeline) Execute(ctx context.Context, report *model.SearchReport) error {
	var firstErr, cancelErr error
	for _, step := range p.steps {
		stepCtx := ctx
		if err := ctx.Err(); err != nil {
			if cancelErr == nil {
				p.logger.Warn("pipeline cancelled",
					"step", step.Name(),
					"search", report.Name,
					"reason", err,
				)
				report.Cancelled = true
				cancelErr = err
			}
			if !runsAfterCancel(step) {
				continue
			}
			stepCtx = context.WithoutCancel(ctx)
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"search", report.Name,
		)

		if err := step.Do(stepCtx, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"search", report.Name,
				"error", err,
			)

			report.Error = err
			report.ErrorMessage = err.Error()

			if !p.continueOnError {
				return err
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"search", report.Name,
		)
		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}

	if cancelErr != nil {
		return cancelErr
	}
	return firstErr
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
