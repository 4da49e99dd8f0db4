package pipeline

import (
	"github.com/funvibe/cpptrans/internal/diagnostics"
)

type ArtifactKind int

const (
	HeaderArtifact ArtifactKind = iota
	SourceArtifact
	EntryArtifact
	ScriptArtifact
)

func (k ArtifactKind) String() string {
	switch k {
	case HeaderArtifact:
		return "header"
	case SourceArtifact:
		return "source"
	case EntryArtifact:
		return "entry"
	case ScriptArtifact:
		return "script"
	}
	return "unknown"
}

// Artifact is one generated output file.
type Artifact struct {
	Name    string
	Class   string // owning class, "" for shared artifacts
	Kind    ArtifactKind
	Content []byte
	Written bool
}

type ClassStatus int

const (
	StatusPending ClassStatus = iota
	StatusLowered
	StatusEmitted
	StatusWritten
	StatusFailed
)

func (s ClassStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusLowered:
		return "lowered"
	case StatusEmitted:
		return "emitted"
	case StatusWritten:
		return "written"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// ClassReport is the per-class outcome of a run.
type ClassReport struct {
	Class     string
	Status    ClassStatus
	Err       *diagnostics.DiagnosticError
	Warnings  []*diagnostics.DiagnosticError
	Artifacts []string
}

// Advance moves a report forward unless the class already failed.
func (r *ClassReport) Advance(s ClassStatus) {
	if r.Status != StatusFailed && s > r.Status {
		r.Status = s
	}
}
