package constraint

import (
	"errors"
	"fmt"
	"strings"
)

// Runtime issue codes that are not constraint names. A violated constraint uses the
// constraint name itself (MinValue, Pattern, ...) as its code.
const (
	CodeInvalidType = "invalid_type"
)

// Static diagnostic codes.
const (
	CodeInapplicable         = "inapplicable_category"
	CodeIncompatibleType     = "incompatible_type"
	CodeUnknownConstraint    = "unknown_constraint"
	CodeExclusiveConstraints = "exclusive_constraints"
	CodeInvalidLiteral       = "invalid_literal"
	CodeEmptyRange           = "empty_range"
)

// ErrUnsupported marks a value that contains a construct the walker cannot validate
// (a union-typed value under UnionUnsupported). It is never reported as valid.
var ErrUnsupported = errors.New("constraint: unsupported construct")

// ErrNilSchema is returned when validation is requested without a schema.
var ErrNilSchema = errors.New("constraint: nil schema")

// Issue is a single runtime violation.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // Constraint name, or CodeInvalidType.
	Message string
	// Params carries structured parameters (e.g., {"bound": 0, "actual": -1}).
	Params map[string]any
}

// Issues is a collection of runtime violations that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Diagnostic is a static schema error found by the checker.
type Diagnostic struct {
	Schema     string // Record schema (or named type) that declares the offending field.
	Path       string // JSON Pointer from the checked root; "*" marks array elements.
	Code       string
	Constraint string // Offending constraint name, when a single one is at fault.
	Message    string
}

func (d Diagnostic) String() string {
	s := d.Code + " at " + d.Path
	if d.Constraint != "" {
		s += " (" + d.Constraint + ")"
	}
	if d.Message != "" {
		s += ": " + d.Message
	}
	return s
}

// Diagnostics is an ordered batch of static errors; it implements error.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	if len(ds) == 0 {
		return ""
	}
	const maxShown = 3
	parts := make([]string, 0, maxShown+1)
	for i, d := range ds {
		if i == maxShown {
			parts = append(parts, fmt.Sprintf("... (total %d)", len(ds)))
			break
		}
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "; ")
}

// Codes returns the diagnostic codes in report order.
func (ds Diagnostics) Codes() []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Code)
	}
	return out
}

// AsDiagnostics extracts Diagnostics from an error using errors.As internally.
func AsDiagnostics(err error) (Diagnostics, bool) {
	if err == nil {
		return nil, false
	}
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Diagnostics, true
	}
	var ds Diagnostics
	if errors.As(err, &ds) {
		return ds, true
	}
	return nil, false
}

// SchemaError is returned when a schema failed its static check and therefore must not
// be used for runtime validation.
type SchemaError struct {
	Schema      string
	Diagnostics Diagnostics
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("constraint: schema %q rejected: %s", e.Schema, e.Diagnostics.Error())
}

func (e *SchemaError) Unwrap() error { return e.Diagnostics }
