package buildlog

import (
	"time"

	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/pipeline"
)

// Summarize turns a finished pipeline context into a history record.
func Summarize(ctx *pipeline.PipelineContext, now time.Time) (Run, []ClassOutcome) {
	run := Run{
		ID:       ctx.RunID,
		File:     ctx.FilePath,
		Started:  ctx.Started,
		Duration: now.Sub(ctx.Started),
		Classes:  len(ctx.Reports),
	}
	for _, e := range ctx.Errors {
		if e.Severity == diagnostics.SeverityError {
			run.Errors++
		}
	}

	outcomes := make([]ClassOutcome, 0, len(ctx.Reports))
	for _, r := range ctx.Reports {
		o := ClassOutcome{Class: r.Class, Status: r.Status.String(), Artifacts: r.Artifacts}
		if r.Status == pipeline.StatusFailed {
			run.Failed++
			if r.Err != nil {
				o.Code, o.Message = string(r.Err.Code), r.Err.Message
			}
		}
		outcomes = append(outcomes, o)
	}
	return run, outcomes
}

// HistoryProcessor records the run when a history database is configured.
// History problems are logged and never fail the translation.
type HistoryProcessor struct{}

func (hp *HistoryProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	path := ctx.Config.HistoryPath()
	if path == "" {
		return ctx
	}
	store, err := Open(path)
	if err != nil {
		ctx.Logger.Printf("History disabled: %v", err)
		return ctx
	}
	defer store.Close()

	run, outcomes := Summarize(ctx, time.Now())
	if err := store.Record(run, outcomes); err != nil {
		ctx.Logger.Printf("Recording run %s failed: %v", run.ID, err)
	}
	return ctx
}
