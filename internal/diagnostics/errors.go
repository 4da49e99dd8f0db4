package diagnostics

import (
	"fmt"

	"github.com/funvibe/cpptrans/internal/token"
)

type ErrorCode string

const (
	// Loader
	ErrL001 ErrorCode = "L001" // malformed source tree

	// Symbols
	ErrS001 ErrorCode = "S001" // duplicate symbol in one scope

	// Class registry
	ErrC001 ErrorCode = "C001" // lookup of an unregistered class

	// Overload resolution
	ErrR001 ErrorCode = "R001" // no applicable overload

	// Emission
	ErrE001 ErrorCode = "E001" // node the emitter cannot render

	// Output
	ErrW001 ErrorCode = "W001" // artifact could not be written
)

var errorTitles = map[ErrorCode]string{
	ErrL001: "malformed tree",
	ErrS001: "duplicate symbol",
	ErrC001: "unregistered class",
	ErrR001: "no applicable overload",
	ErrE001: "unsupported node",
	ErrW001: "write failed",
}

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// DiagnosticError is a located, coded translator error.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	Pos      token.Position
	Class    string // translated class the error belongs to, "" for unit-level
	Message  string
	Err      error // wrapped cause, if any
}

func NewError(code ErrorCode, pos token.Position, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Pos: pos, Message: msg}
}

func NewWarning(code ErrorCode, pos token.Position, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityWarning, Pos: pos, Message: msg}
}

// Wrap attaches an underlying cause.
func Wrap(code ErrorCode, pos token.Position, err error) *DiagnosticError {
	return &DiagnosticError{Code: code, Pos: pos, Message: err.Error(), Err: err}
}

// InClass records which class the error aborted and returns e.
func (e *DiagnosticError) InClass(name string) *DiagnosticError {
	if e.Class == "" {
		e.Class = name
	}
	return e
}

func (e *DiagnosticError) Error() string {
	prefix := ""
	if e.Pos.IsValid() || e.Pos.File != "" {
		prefix = e.Pos.String() + ": "
	}
	return fmt.Sprintf("%s%s [%s]: %s", prefix, e.Severity, e.Code, e.Message)
}

func (e *DiagnosticError) Unwrap() error {
	return e.Err
}

// Is matches another DiagnosticError by code, so errors.Is works against
// a bare &DiagnosticError{Code: ...} target.
func (e *DiagnosticError) Is(target error) bool {
	t, ok := target.(*DiagnosticError)
	return ok && t.Code == e.Code
}

// Title returns a short human name for the code.
func (c ErrorCode) Title() string {
	if t, ok := errorTitles[c]; ok {
		return t
	}
	return string(c)
}

// HasErrors reports whether any diagnostic is an error rather than a warning.
func HasErrors(diags []*DiagnosticError) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
