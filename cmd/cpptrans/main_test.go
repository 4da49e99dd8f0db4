package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/cpptrans/internal/ast"
	. "github.com/funvibe/cpptrans/internal/ast/asttest"
)

func writeTree(t *testing.T, dir string, unit *ast.Node) string {
	t.Helper()
	data, err := ast.Encode(unit)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "tree.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeConfig(t *testing.T, dir string) {
	t.Helper()
	cfg := "output_dir: out\nhistory: history.db\nemit_workers: 2\n"
	if err := os.WriteFile(filepath.Join(dir, "cpptrans.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
}

func helloUnit() *ast.Node {
	return Unit(
		Class("Greeter", "",
			Method(Mods("public"), "String", "greet", Params(), Return(Str("hello")))),
		Class("Main", "",
			Main(
				Local("Greeter", "g", NewObj("Greeter")),
				Println(Call(Id("g"), "greet")))),
	)
}

func TestTranslateWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	path := writeTree(t, dir, helloUnit())

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-quiet", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d\nstdout:\n%s\nstderr:\n%s", code, stdout.String(), stderr.String())
	}

	out := filepath.Join(dir, "out")
	for _, name := range []string{"Greeter.h", "Greeter.cc", "Main.h", "Main.cc", "main.cc"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}
	if !strings.Contains(stdout.String(), "Greeter") || !strings.Contains(stdout.String(), "written") {
		t.Errorf("report does not list written classes:\n%s", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("quiet run logged:\n%s", stderr.String())
	}

	stdout.Reset()
	if code := runInDir(t, dir, []string{"history"}, &stdout, &stderr); code != 0 {
		t.Fatalf("history exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "2 classes, 0 failed") {
		t.Errorf("history did not list the run:\n%s", stdout.String())
	}
}

func TestTranslateReportsFailures(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir)
	unit := Unit(
		Class("Main", "",
			Main(Expr(Call(nil, "missing", Int("1"))))),
	)
	path := writeTree(t, dir, unit)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"translate", "-quiet", path}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit %d, want 1\n%s", code, stdout.String())
	}
	if !strings.Contains(stdout.String(), "failed") || !strings.Contains(stdout.String(), "R001") {
		t.Errorf("report does not show the failure:\n%s", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "Main.h")); err == nil {
		t.Error("failed class must not be written")
	}
}

func TestDump(t *testing.T) {
	dir := t.TempDir()
	path := writeTree(t, dir, helloUnit())

	var stdout, stderr bytes.Buffer
	if code := run([]string{"dump", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "m_greet") {
		t.Errorf("lowered dump lacks mangled names:\n%s", stdout.String())
	}

	stdout.Reset()
	if code := run([]string{"dump", "-source", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if strings.Contains(stdout.String(), "m_greet") {
		t.Error("source dump should not be lowered")
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no tree", []string{"translate"}},
		{"two trees", []string{"a.yaml", "b.yaml"}},
		{"wrong extension", []string{"tree.txt"}},
		{"unknown flag", []string{"-bogus", "a.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != 2 {
				t.Errorf("exit %d, want 2", code)
			}
		})
	}
}

func runInDir(t *testing.T, dir string, args []string, stdout, stderr *bytes.Buffer) int {
	t.Helper()
	t.Chdir(dir)
	return run(args, stdout, stderr)
}
