// Package diag collects and prints diagnostics about input netlists.
package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Severity of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Location points into an input file. The zero value means "no location".
type Location struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether l carries at least a file name.
func (l Location) IsValid() bool {
	return l.File != ""
}

func (l Location) String() string {
	switch {
	case !l.IsValid():
		return ""
	case l.Column > 0:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	case l.Line > 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	default:
		return l.File
	}
}

// Diagnostic is a single reported message.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
}

// Reporter prints diagnostics as they are reported, as coloured text or as
// one JSON object per line.
type Reporter struct {
	mu       sync.Mutex
	w        io.Writer
	json     bool
	errors   int
	warnings int
}

// NewReporter returns a reporter writing to w. format is "text" or "json";
// anything else falls back to text.
func NewReporter(w io.Writer, format string) *Reporter {
	return &Reporter{w: w, json: format == "json"}
}

// Error reports an error at loc.
func (r *Reporter) Error(loc Location, msg string) {
	r.report(Diagnostic{Severity: SeverityError, Message: msg, File: loc.File, Line: loc.Line, Column: loc.Column})
}

// Errorf reports an error without a location.
func (r *Reporter) Errorf(format string, args ...any) {
	r.report(Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

// Warning reports a warning at loc.
func (r *Reporter) Warning(loc Location, msg string) {
	r.report(Diagnostic{Severity: SeverityWarning, Message: msg, File: loc.File, Line: loc.Line, Column: loc.Column})
}

// HasErrors reports whether any error was reported.
func (r *Reporter) HasErrors() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors > 0
}

// Counts returns the number of errors and warnings reported so far.
func (r *Reporter) Counts() (errors, warnings int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors, r.warnings
}

func (r *Reporter) report(d Diagnostic) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.Severity == SeverityError {
		r.errors++
	} else {
		r.warnings++
	}
	if r.w == nil {
		return
	}
	if r.json {
		data, err := json.Marshal(d)
		if err != nil {
			return
		}
		fmt.Fprintf(r.w, "%s\n", data)
		return
	}
	level := color.New(color.FgYellow, color.Bold).SprintFunc()
	if d.Severity == SeverityError {
		level = color.New(color.FgRed, color.Bold).SprintFunc()
	}
	loc := Location{File: d.File, Line: d.Line, Column: d.Column}
	if loc.IsValid() {
		fmt.Fprintf(r.w, "%s: %s: %s\n", color.New(color.Bold).Sprint(loc), level(string(d.Severity)), d.Message)
	} else {
		fmt.Fprintf(r.w, "%s: %s\n", level(string(d.Severity)), d.Message)
	}
}
