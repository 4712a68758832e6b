// ABOUTME: Static extraction of the TOPOLOGY string constant from Python test files.
// ABOUTME: Scans source text for a top-level assignment and decodes the string literal without executing anything.
package szn

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoTopology is returned when a Python file has no top-level TOPOLOGY
// string assignment.
var ErrNoTopology = errors.New("no TOPOLOGY constant found")

// topologyConstant is the module-level name test suites use to declare their
// topology description.
const topologyConstant = "TOPOLOGY"

// FindTopologyInPython reads a Python source file and returns the string
// value assigned to the top-level TOPOLOGY constant. The source is never
// executed: the assignment is located textually and the string literal is
// decoded in place. Returns ErrNoTopology when no such assignment exists.
func FindTopologyInPython(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ExtractTopology(string(src))
}

// ExtractTopology locates a top-level `TOPOLOGY = <string literal>`
// assignment in Python source text and returns the literal's value.
func ExtractTopology(src string) (string, error) {
	lines := strings.Split(src, "\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		// Top-level assignments start at column zero.
		if !strings.HasPrefix(line, topologyConstant) {
			continue
		}
		rest := line[len(topologyConstant):]
		// Reject names that merely share the prefix (TOPOLOGY2 = ...).
		if rest != "" && (isIdentPart(rune(rest[0])) || rest[0] == '_') {
			continue
		}
		rest = strings.TrimLeft(rest, " \t")
		if !strings.HasPrefix(rest, "=") {
			continue
		}
		if strings.HasPrefix(rest[1:], "=") {
			// Comparison, not assignment.
			continue
		}
		rest = strings.TrimLeft(rest[1:], " \t")

		// The literal may continue across lines for triple quotes; hand the
		// remainder of the file to the literal decoder.
		tail := rest
		if i+1 < len(lines) {
			tail = rest + "\n" + strings.Join(lines[i+1:], "\n")
		}
		value, err := decodePythonString(tail)
		if err != nil {
			return "", fmt.Errorf("TOPOLOGY assignment at line %d: %w", i+1, err)
		}
		return value, nil
	}

	return "", ErrNoTopology
}

// decodePythonString decodes a Python string literal at the start of src.
// Handles triple-quoted and single-line literals with either quote character
// and an optional r/b prefix. Escape handling covers the common sequences;
// raw strings are returned verbatim.
func decodePythonString(src string) (string, error) {
	raw := false
	for len(src) > 0 {
		switch src[0] {
		case 'r', 'R':
			raw = true
			src = src[1:]
			continue
		case 'b', 'B', 'u', 'U':
			src = src[1:]
			continue
		}
		break
	}

	if len(src) == 0 || (src[0] != '"' && src[0] != '\'') {
		return "", fmt.Errorf("assignment value is not a string literal")
	}
	quote := src[0]

	delim := string(quote)
	if strings.HasPrefix(src, strings.Repeat(string(quote), 3)) {
		delim = strings.Repeat(string(quote), 3)
	}
	body := src[len(delim):]

	end := findLiteralEnd(body, delim, raw)
	if end < 0 {
		return "", fmt.Errorf("unterminated string literal")
	}
	body = body[:end]

	// Single-line literals must not span lines.
	if len(delim) == 1 && strings.Contains(body, "\n") {
		return "", fmt.Errorf("unterminated string literal")
	}

	if raw {
		return body, nil
	}
	return unescapePython(body), nil
}

// findLiteralEnd returns the index of the closing delimiter, skipping
// backslash-escaped characters unless the literal is raw.
func findLiteralEnd(body, delim string, raw bool) int {
	for i := 0; i < len(body); i++ {
		if !raw && body[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(body[i:], delim) {
			return i
		}
	}
	return -1
}

// unescapePython resolves the escape sequences that realistically appear in
// topology constants. Unknown escapes are kept verbatim, as Python does.
func unescapePython(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case '\\':
			sb.WriteByte('\\')
		case '\'':
			sb.WriteByte('\'')
		case '"':
			sb.WriteByte('"')
		case '\n':
			// Line continuation: swallow the newline.
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
