// Package diag implements the diagnostic taxonomy and sink shared by every
// compilation stage, grounded on the teacher's internal/errors.SentraError
// (type + message + source location + call stack) but built around
// github.com/pkg/errors for causal-chain wrapping instead of a hand-rolled
// Error() string builder, per SPEC_FULL.md's ambient-stack section.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Severity mirrors the LSP DiagnosticSeverity enum named in spec.md §6.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Diagnostic is the {message, line, column, severity} shape spec.md §6
// requires, plus an optional suggestion line (spec.md §4.2, "each error
// carries a suggestion line").
type Diagnostic struct {
	Message    string
	Line       int
	Column     int
	File       string
	Severity   Severity
	Suggestion string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
	if d.Suggestion != "" {
		s += " (" + d.Suggestion + ")"
	}
	return s
}

// LSP converts d to the wire shape a language server publishes, per
// spec.md §6 ("Consumer converts to the LSP Diagnostic shape").
type LSP struct {
	Message  string `json:"message"`
	Severity int    `json:"severity"`
	Range    LSPRange `json:"range"`
}

type LSPRange struct {
	Start LSPPosition `json:"start"`
	End   LSPPosition `json:"end"`
}

type LSPPosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// severity+1 matches LSP's 1-indexed Error=1..Hint=4 enum.
func (d Diagnostic) ToLSP() LSP {
	pos := LSPPosition{Line: d.Line - 1, Character: d.Column - 1}
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Character < 0 {
		pos.Character = 0
	}
	return LSP{
		Message:  d.String(),
		Severity: int(d.Severity) + 1,
		Range:    LSPRange{Start: pos, End: pos},
	}
}

// Sink collects diagnostics reported during a single compilation. Ordering
// guarantee (spec.md §5): diagnostics are appended in the order reported,
// which is source order for a well-behaved single-pass stage.
type Sink struct {
	items []Diagnostic
}

func NewSink() *Sink { return &Sink{} }

func (s *Sink) Report(d Diagnostic) {
	s.items = append(s.items, d)
}

func (s *Sink) Errorf(file string, line, column int, format string, args ...interface{}) {
	s.Report(Diagnostic{Message: fmt.Sprintf(format, args...), Line: line, Column: column, File: file, Severity: Error})
}

func (s *Sink) HasErrors() bool {
	for _, d := range s.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (s *Sink) Diagnostics() []Diagnostic { return s.items }

func (s *Sink) Len() int { return len(s.items) }

// TypeCheckException is raised once, at the end of a compilation, when the
// sink is non-empty and contains at least one Error, per spec.md §7 item 2.
type TypeCheckException struct {
	Diagnostics []Diagnostic
}

func (e *TypeCheckException) Error() string {
	return fmt.Sprintf("type checking failed with %d diagnostic(s)", len(e.Diagnostics))
}

// NewTypeCheckException wraps the sink's collected diagnostics in a
// TypeCheckException, already carrying a stack via pkg/errors so a CLI
// caller can %+v it for a full trace back to the invoking command.
func NewTypeCheckException(diags []Diagnostic) error {
	return errors.WithStack(&TypeCheckException{Diagnostics: diags})
}

// BuildError reports a builder-stage failure (spec.md §7 item 3): an
// unpatched jump at finalize, break/continue outside a loop, or an unknown
// inline-assembly mnemonic treated as fatal by the caller.
type BuildError struct {
	Message string
	Offsets []int
}

func (e *BuildError) Error() string {
	if len(e.Offsets) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (offsets: %v)", e.Message, e.Offsets)
}

func NewBuildError(message string, offsets ...int) error {
	return errors.WithStack(&BuildError{Message: message, Offsets: offsets})
}
