package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/pipeline"
)

const pointTree = `
tag: CompilationUnit
children:
  - tag: ClassDeclaration
    loc: Point.java:1:1
    children:
      - [Modifiers, [Modifier, public]]
      - Point
      - null
      - null
      - null
      - [ClassBody,
          [FieldDeclaration, [Modifiers], [Type, [PrimitiveType, int], null],
            [Declarators, [Declarator, x, null, null]]]]
`

func isL001(err error) bool {
	return errors.Is(err, &diagnostics.DiagnosticError{Code: diagnostics.ErrL001})
}

func TestLoad(t *testing.T) {
	root, err := Load([]byte(pointTree), "point.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls := root.Node(0); cls.Leaf(1) != "Point" || cls.Pos.Line != 1 {
		t.Errorf("class = %s at %v", cls.Leaf(1), cls.Pos)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not yaml", "[unclosed"},
		{"wrong root", "[Block]"},
		{"bad arity", "[CompilationUnit, [ClassDeclaration, [Modifiers], A]]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.src), "bad.yaml")
			if err == nil || !isL001(err) {
				t.Errorf("got %v, want L001", err)
			}
		})
	}
}

func TestLoaderProcessorReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "point.yaml")
	if err := os.WriteFile(path, []byte(pointTree), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := (&LoaderProcessor{}).Process(pipeline.NewPipelineContext(path, nil, nil))
	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	if ctx.SourceTree == nil || string(ctx.Source) != pointTree {
		t.Error("source tree was not loaded from the file")
	}
}

func TestLoaderProcessorMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	ctx := (&LoaderProcessor{}).Process(pipeline.NewPipelineContext(path, nil, nil))
	if len(ctx.Errors) != 1 || !isL001(ctx.Errors[0]) {
		t.Fatalf("errors = %v, want one L001", ctx.Errors)
	}
	if ctx.SourceTree != nil {
		t.Error("tree set despite the read failure")
	}
}

func TestIsSourceTree(t *testing.T) {
	for path, want := range map[string]bool{
		"a.yaml": true, "a.yml": true, "a.json": true, "a.java": false, "yaml": false,
	} {
		if got := IsSourceTree(path); got != want {
			t.Errorf("IsSourceTree(%q) = %v, want %v", path, got, want)
		}
	}
}
