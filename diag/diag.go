// Package diag collects parser diagnostics and computes the overall
// verdict of an analysis pass. Parsers never print or return errors for
// malformed input; they record diagnostics here and the caller renders
// them.
package diag

import "fmt"

// NoOffset marks a diagnostic that is not tied to a byte offset.
const NoOffset = -1

// Severity of a single diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	default:
		return "UNKNOWN"
	}
}

// Diagnostic is a single finding. Offset is the byte offset within the
// analyzed buffer the finding refers to, or NoOffset.
type Diagnostic struct {
	Severity Severity
	Message  string
	Offset   int
}

// Verdict is the aggregate outcome of one parse pass.
type Verdict int

const (
	WellFormed Verdict = iota
	ValidWithWarnings
	Invalid
)

func (v Verdict) String() string {
	switch v {
	case WellFormed:
		return "well-formed"
	case ValidWithWarnings:
		return "valid with warnings"
	default:
		return "invalid"
	}
}

// Result is the immutable outcome of a parse pass.
type Result struct {
	Diagnostics  []Diagnostic
	ErrorCount   int
	WarningCount int
	Verdict      Verdict
}

// Report accumulates diagnostics during a parse pass. The zero value is
// ready to use. A Report is threaded explicitly through nested parse
// functions; it is not safe for concurrent use.
type Report struct {
	diags []Diagnostic
}

// Errorf records an error diagnostic. Use NoOffset when the finding has no
// meaningful byte offset.
func (r *Report) Errorf(offset int, format string, args ...any) {
	r.diags = append(r.diags, Diagnostic{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Offset:   offset,
	})
}

// Warnf records a warning diagnostic.
func (r *Report) Warnf(offset int, format string, args ...any) {
	r.diags = append(r.diags, Diagnostic{
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
		Offset:   offset,
	})
}

// Result finalizes the report. The verdict is WellFormed only with zero
// errors and zero warnings, ValidWithWarnings with zero errors, and
// Invalid otherwise.
func (r *Report) Result() Result {
	res := Result{Diagnostics: make([]Diagnostic, len(r.diags))}
	copy(res.Diagnostics, r.diags)
	for _, d := range r.diags {
		switch d.Severity {
		case SeverityError:
			res.ErrorCount++
		case SeverityWarning:
			res.WarningCount++
		}
	}
	switch {
	case res.ErrorCount == 0 && res.WarningCount == 0:
		res.Verdict = WellFormed
	case res.ErrorCount == 0:
		res.Verdict = ValidWithWarnings
	default:
		res.Verdict = Invalid
	}
	return res
}
