// Package loader reads the serialized source tree handed over by the
// front end.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/pipeline"
	"github.com/funvibe/cpptrans/internal/token"
)

// IsSourceTree reports whether path has a recognized tree extension.
func IsSourceTree(path string) bool {
	return slices.Contains(config.SourceTreeExtensions, filepath.Ext(path))
}

// Load decodes and validates a source tree. Any failure is L001.
func Load(data []byte, file string) (*ast.Node, *diagnostics.DiagnosticError) {
	root, err := ast.Decode(data, file)
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrL001, token.Position{File: file}, err)
	}
	if !root.Is("CompilationUnit") {
		return nil, diagnostics.NewError(diagnostics.ErrL001, root.Pos,
			fmt.Sprintf("root node is %s, want CompilationUnit", root.Name))
	}
	if bad := ast.Validate(root); bad != nil {
		return nil, bad
	}
	return root, nil
}

// LoaderProcessor fills ctx.SourceTree from ctx.Source, reading
// ctx.FilePath when no source was supplied.
type LoaderProcessor struct{}

func (lp *LoaderProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Source == nil {
		data, err := os.ReadFile(ctx.FilePath)
		if err != nil {
			ctx.AddError(diagnostics.Wrap(diagnostics.ErrL001, token.Position{File: ctx.FilePath}, err))
			return ctx
		}
		ctx.Source = data
	}

	root, err := Load(ctx.Source, ctx.FilePath)
	if err != nil {
		ctx.Logger.Printf("Loading %s failed: %v", ctx.FilePath, err)
		ctx.AddError(err)
		return ctx
	}
	ctx.SourceTree = root
	return ctx
}
