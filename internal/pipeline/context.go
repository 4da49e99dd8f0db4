package pipeline

import (
	"io"
	"log"
	"time"

	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/classes"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/symbols"
	"github.com/google/uuid"
)

// PipelineContext is threaded through every stage.
type PipelineContext struct {
	RunID   uuid.UUID
	Started time.Time

	FilePath string
	Source   []byte // serialized tree; read from FilePath when nil
	Config   *config.Config
	Logger   *log.Logger

	SourceTree *ast.Node
	Scopes     *symbols.Scopes
	Registry   *classes.Registry
	// Classes holds the lowered class declarations in translation order.
	Classes []*ast.Node

	Artifacts []*Artifact
	Reports   []*ClassReport

	Errors []*diagnostics.DiagnosticError
}

func NewPipelineContext(filePath string, cfg *config.Config, logger *log.Logger) *PipelineContext {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &PipelineContext{
		RunID:    uuid.New(),
		Started:  time.Now(),
		FilePath: filePath,
		Config:   cfg,
		Logger:   logger,
	}
}

// AddError records a diagnostic and, when it names a class, marks that
// class failed.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	ctx.Errors = append(ctx.Errors, err)
	if err.Class == "" {
		return
	}
	r := ctx.Report(err.Class)
	if err.Severity == diagnostics.SeverityWarning {
		r.Warnings = append(r.Warnings, err)
		return
	}
	if r.Status != StatusFailed {
		r.Status = StatusFailed
		r.Err = err
	}
}

// HasErrors reports whether any error (not warning) was recorded.
func (ctx *PipelineContext) HasErrors() bool {
	return diagnostics.HasErrors(ctx.Errors)
}

// Report returns the report for class, creating it on first use.
func (ctx *PipelineContext) Report(class string) *ClassReport {
	for _, r := range ctx.Reports {
		if r.Class == class {
			return r
		}
	}
	r := &ClassReport{Class: class, Status: StatusPending}
	ctx.Reports = append(ctx.Reports, r)
	return r
}

// Failed reports whether class has been marked failed.
func (ctx *PipelineContext) Failed(class string) bool {
	for _, r := range ctx.Reports {
		if r.Class == class {
			return r.Status == StatusFailed
		}
	}
	return false
}

// AddArtifact appends an artifact and credits it to its class report.
func (ctx *PipelineContext) AddArtifact(a *Artifact) {
	ctx.Artifacts = append(ctx.Artifacts, a)
	if a.Class != "" {
		r := ctx.Report(a.Class)
		r.Artifacts = append(r.Artifacts, a.Name)
	}
}
