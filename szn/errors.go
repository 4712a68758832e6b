// ABOUTME: Error types for the SZN parser: syntax errors with source position and semantic errors.
// ABOUTME: ParseError wraps the underlying cause and supports errors.Is/errors.As unwrapping.
package szn

import "fmt"

// ParseError is raised when a line or statement cannot be parsed. It carries
// the 1-based line number where the statement started, the raw source line,
// and the underlying cause. Parsing aborts at the first ParseError.
type ParseError struct {
	Line    int
	RawLine string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse line #%d: %q: %v", e.Line, e.RawLine, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// SemanticError is raised for documents that tokenize and parse but violate a
// structural rule, such as declaring the environment block twice.
type SemanticError struct {
	Msg string
}

// Error implements the error interface.
func (e *SemanticError) Error() string {
	return e.Msg
}
