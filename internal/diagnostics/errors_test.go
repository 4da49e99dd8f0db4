package diagnostics

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/funvibe/cpptrans/internal/token"
)

func TestDiagnosticErrorFormatting(t *testing.T) {
	err := NewError(ErrS001, token.Position{File: "Main.java", Line: 4, Column: 2}, "x already defined")
	want := "Main.java:4:2: error [S001]: x already defined"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	warn := NewWarning(ErrR001, token.Position{}, "no match")
	if !strings.HasPrefix(warn.Error(), "warning [R001]") {
		t.Errorf("got %q", warn.Error())
	}
}

func TestDiagnosticErrorMatching(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("writing A.h: %w", Wrap(ErrW001, token.Position{}, cause).InClass("A"))

	var de *DiagnosticError
	if !errors.As(err, &de) {
		t.Fatal("expected DiagnosticError in chain")
	}
	if de.Class != "A" {
		t.Errorf("class = %q, want A", de.Class)
	}
	if !errors.Is(err, &DiagnosticError{Code: ErrW001}) {
		t.Error("errors.Is should match by code")
	}
	if errors.Is(err, &DiagnosticError{Code: ErrS001}) {
		t.Error("errors.Is should not match a different code")
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable through Unwrap")
	}
}

func TestHasErrors(t *testing.T) {
	diags := []*DiagnosticError{NewWarning(ErrR001, token.Position{}, "w")}
	if HasErrors(diags) {
		t.Error("warnings alone are not errors")
	}
	diags = append(diags, NewError(ErrC001, token.Position{}, "e"))
	if !HasErrors(diags) {
		t.Error("expected HasErrors")
	}
}
