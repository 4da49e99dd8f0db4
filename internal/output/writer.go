// Package output writes generated artifacts to the output directory.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/pipeline"
	"github.com/funvibe/cpptrans/internal/token"
)

const (
	fileMode   = 0o644
	scriptMode = 0o755
)

// Write stores one artifact under dir. The file is closed on every path,
// and a failed close is reported like a failed write.
func Write(dir string, a *pipeline.Artifact) (err error) {
	path := filepath.Join(dir, a.Name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if _, err := f.Write(a.Content); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if a.Kind == pipeline.ScriptArtifact {
		if err := f.Chmod(scriptMode); err != nil {
			return fmt.Errorf("chmod %s: %w", path, err)
		}
	}
	return nil
}

// WriterProcessor writes every artifact produced so far. A failed artifact
// is reported as W001 and the remaining artifacts are still written.
type WriterProcessor struct{}

func (wp *WriterProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if len(ctx.Artifacts) == 0 {
		return ctx
	}
	dir := ctx.Config.OutputPath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		ctx.AddError(diagnostics.Wrap(diagnostics.ErrW001, token.Position{File: dir}, err))
		return ctx
	}

	for _, a := range ctx.Artifacts {
		if err := Write(dir, a); err != nil {
			ctx.Logger.Printf("Writing %s failed: %v", a.Name, err)
			ctx.AddError(diagnostics.Wrap(diagnostics.ErrW001, token.Position{File: a.Name}, err).InClass(a.Class))
			continue
		}
		a.Written = true
	}

	for _, r := range ctx.Reports {
		if r.Status != pipeline.StatusEmitted {
			continue
		}
		written := true
		for _, a := range ctx.Artifacts {
			if a.Class == r.Class && !a.Written {
				written = false
			}
		}
		if written {
			r.Advance(pipeline.StatusWritten)
		}
	}
	return ctx
}
