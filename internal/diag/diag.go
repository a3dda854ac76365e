// Package diag implements the caller-supplied diagnostics sink described in
// spec §6: every stage reports (severity, span, message) tuples into it
// rather than returning ad hoc strings or writing straight to stderr.
package diag

import (
	"fmt"

	"github.com/ailang-mir/mlc/internal/rawast"
)

// Severity distinguishes hard errors from warnings (spec §7).
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

// Diagnostic is one reported (severity, span, message) tuple.
type Diagnostic struct {
	Severity Severity
	Span     rawast.Pos
	Err      error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Severity, d.Err)
}

// Sink collects diagnostics across every pipeline stage for one
// compilation unit. It is not safe for concurrent use, matching the
// single-owner threading described in spec §5.
type Sink struct {
	diags []Diagnostic
}

// NewSink creates an empty sink.
func NewSink() *Sink { return &Sink{} }

// Report records one diagnostic.
func (s *Sink) Report(sev Severity, span rawast.Pos, err error) {
	s.diags = append(s.diags, Diagnostic{Severity: sev, Span: span, Err: err})
}

// Errorf reports a formatted hard error.
func (s *Sink) Errorf(span rawast.Pos, format string, args ...interface{}) {
	s.Report(SeverityError, span, fmt.Errorf(format, args...))
}

// Warnf reports a formatted warning.
func (s *Sink) Warnf(span rawast.Pos, format string, args ...interface{}) {
	s.Report(SeverityWarning, span, fmt.Errorf(format, args...))
}

// All returns every diagnostic reported so far, in report order.
func (s *Sink) All() []Diagnostic { return s.diags }

// HasErrors reports whether any SeverityError diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the SeverityError diagnostics.
func (s *Sink) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range s.diags {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns only the SeverityWarning diagnostics.
func (s *Sink) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range s.diags {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}
