package lowering

import (
	"github.com/funvibe/cpptrans/internal/classes"
	"github.com/funvibe/cpptrans/internal/pipeline"
	"github.com/funvibe/cpptrans/internal/symbols"
)

// LoweringProcessor lowers the loaded source tree class by class.
type LoweringProcessor struct{}

func (lp *LoweringProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.SourceTree == nil {
		return ctx
	}

	if ctx.Scopes == nil {
		ctx.Scopes = symbols.NewScopes(ctx.FilePath)
	}
	if ctx.Registry == nil {
		ctx.Registry = classes.NewRegistry()
	}

	unit := New(ctx.Scopes, ctx.Registry).LowerUnit(ctx.SourceTree)
	for _, name := range unit.Order {
		ctx.Report(name)
	}
	for _, err := range unit.Errors {
		ctx.Logger.Printf("Lowering %s failed: %v", err.Class, err)
		ctx.AddError(err)
	}
	for _, cls := range unit.Classes {
		ctx.Report(cls.Leaf(1)).Advance(pipeline.StatusLowered)
	}
	ctx.Classes = unit.Classes
	return ctx
}
