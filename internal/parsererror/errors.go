// Package parsererror defines the error taxonomy shared by the statement parsers.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedInput matches, via errors.Is, every error that means a statement
// could not be turned into a complete ledger.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError reports a required field that failed to parse, or a
// document of unexpected shape. Location points at the fault ("row 4",
// "page 2", "offset 381").
type MalformedInputError struct {
	Parser   string
	Location string
	Field    string
	Value    string
	Err      error
}

func (e *MalformedInputError) Error() string {
	var b strings.Builder
	b.WriteString(e.Parser)
	b.WriteString(": malformed input")
	if e.Location != "" {
		b.WriteString(" at ")
		b.WriteString(e.Location)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": failed to parse %s='%s'", e.Field, e.Value)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedInput) hold.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// Row formats a 1-based record number as a Location.
func Row(n int) string {
	return fmt.Sprintf("row %d", n)
}

// ExternalToolError is returned when a conversion tool (ssconvert, pdftohtml)
// exits non-zero or produces no output. The parsers cannot tell a broken tool
// from a broken input, so it also matches ErrMalformedInput.
type ExternalToolError struct {
	Tool   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ExternalToolError) Error() string {
	msg := fmt.Sprintf("external tool %s failed: %v", e.Tool, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += fmt.Sprintf(" (stderr: %s)", stderr)
	}
	return msg
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

func (e *ExternalToolError) Is(target error) bool {
	return target == ErrMalformedInput
}

// ValidationError represents a validation failure
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}
