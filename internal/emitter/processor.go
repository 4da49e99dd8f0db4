package emitter

import (
	"errors"
	"fmt"

	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/pipeline"
	"github.com/funvibe/cpptrans/internal/token"
	"golang.org/x/sync/errgroup"
)

// EmitterProcessor prints every lowered class and the shared entry point
// and build script.
type EmitterProcessor struct{}

func (ep *EmitterProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Registry == nil || ctx.Scopes == nil {
		return ctx
	}

	opts := OptionsFrom(ctx.Config)
	em := New(ctx.Registry, ctx.Classes, opts)

	outputs := make([]*ClassOutput, len(ctx.Classes))
	errs := make([]error, len(ctx.Classes))
	var g errgroup.Group
	g.SetLimit(max(1, ctx.Config.EmitWorkers))
	for i, decl := range ctx.Classes {
		scopes := ctx.Scopes.Fork()
		g.Go(func() error {
			outputs[i], errs[i] = em.EmitClass(scopes, decl)
			return nil
		})
	}
	_ = g.Wait()

	var emitted []string
	var entry *ClassOutput
	for i, decl := range ctx.Classes {
		name := decl.Leaf(1)
		if err := errs[i]; err != nil {
			ctx.Logger.Printf("Emitting %s failed: %v", name, err)
			ctx.AddError(asDiagnostic(err).InClass(name))
			continue
		}
		if failed := ctx.Registry.FailedAncestor(name, ctx.Failed); failed != "" {
			ctx.AddError(diagnostics.NewError(diagnostics.ErrC001, decl.Pos,
				fmt.Sprintf("superclass %q of %q failed to translate", failed, name)).InClass(name))
			continue
		}

		out := outputs[i]
		for _, w := range out.Warnings {
			ctx.AddError(w.InClass(name))
		}
		ctx.AddArtifact(&pipeline.Artifact{Name: name + config.HeaderExt, Class: name,
			Kind: pipeline.HeaderArtifact, Content: []byte(out.Header)})
		ctx.AddArtifact(&pipeline.Artifact{Name: name + config.SourceExt, Class: name,
			Kind: pipeline.SourceArtifact, Content: []byte(out.Source)})
		ctx.Report(name).Advance(pipeline.StatusEmitted)
		ctx.Logger.Printf("Printed %s%s", name, config.SourceExt)

		emitted = append(emitted, name)
		if entry == nil && out.HasMain {
			entry = out
		}
	}

	ctx.AddArtifact(&pipeline.Artifact{Name: config.EntryFileName,
		Kind: pipeline.EntryArtifact, Content: []byte(Entry(entry, emitted, opts))})
	ctx.AddArtifact(&pipeline.Artifact{Name: ctx.Config.BuildScript,
		Kind: pipeline.ScriptArtifact, Content: []byte(Script(opts, emitted))})
	return ctx
}

func asDiagnostic(err error) *diagnostics.DiagnosticError {
	var de *diagnostics.DiagnosticError
	if errors.As(err, &de) {
		return de
	}
	return diagnostics.Wrap(diagnostics.ErrE001, token.Position{}, err)
}
