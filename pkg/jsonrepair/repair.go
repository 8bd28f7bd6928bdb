// Package jsonrepair parses JSON fragments that a language model may have
// emitted truncated or structurally broken. A direct parse is attempted
// first; on failure the input is repaired (balancing braces and brackets,
// closing unterminated strings, stripping trailing commas) and parsed again.
package jsonrepair

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseError reports that input could not be parsed even after repair.
// Raw carries the original text.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("jsonrepair: cannot parse %q: %v", e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse unmarshals data into v, repairing the input if a direct parse fails.
func Parse(data string, v any) error {
	if err := json.Unmarshal([]byte(data), v); err == nil {
		return nil
	}

	repaired, err := Repair(data)
	if err != nil {
		return &ParseError{Raw: data, Err: err}
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return &ParseError{Raw: data, Err: err}
	}
	return nil
}

// Repair applies a best-effort structural fix to a JSON fragment and returns
// the repaired text. It runs in a single pass over the input plus a bounded
// amount of tail cleanup, so cost is linear in the input size. An error is
// returned when the result still is not valid JSON.
func Repair(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", errors.New("empty input")
	}

	var out []byte
	var closers []byte // pending '}' / ']' in open order
	inString := false
	escaped := false

	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]

		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			out = append(out, c)
		case '{':
			closers = append(closers, '}')
			out = append(out, c)
		case '[':
			closers = append(closers, ']')
			out = append(out, c)
		case '}', ']':
			if len(closers) > 0 && closers[len(closers)-1] == c {
				closers = closers[:len(closers)-1]
				out = trimTrailingComma(out)
				out = append(out, c)
			}
			// An unmatched closer is dropped.
		default:
			out = append(out, c)
		}
	}

	if inString {
		// Cut a dangling escape (possibly a partial \uXXXX) before closing
		// the string, otherwise the added quote would be escaped away.
		out = trimDanglingEscape(out, escaped)
		out = append(out, '"')
	}

	out = trimTrailingComma(out)

	// A value was promised but never produced, e.g. `{"a":`.
	if n := len(trimRightSpace(out)); n > 0 && out[n-1] == ':' {
		out = append(trimRightSpace(out), []byte("null")...)
	}

	for i := len(closers) - 1; i >= 0; i-- {
		out = append(out, closers[i])
	}

	if !json.Valid(out) {
		return "", fmt.Errorf("still invalid after repair: %s", out)
	}
	return string(out), nil
}

func trimRightSpace(b []byte) []byte {
	n := len(b)
	for n > 0 && (b[n-1] == ' ' || b[n-1] == '\t' || b[n-1] == '\n' || b[n-1] == '\r') {
		n--
	}
	return b[:n]
}

func trimTrailingComma(b []byte) []byte {
	t := trimRightSpace(b)
	if len(t) > 0 && t[len(t)-1] == ',' {
		return t[:len(t)-1]
	}
	return b
}

// trimDanglingEscape removes an incomplete escape sequence at the end of an
// unterminated string, including partial unicode escapes like `\u12`.
func trimDanglingEscape(b []byte, escaped bool) []byte {
	if escaped {
		return b[:len(b)-1]
	}
	// Look for `\u` followed by fewer than four hex digits at the tail.
	for back := 1; back <= 5 && back < len(b); back++ {
		i := len(b) - back
		if b[i] == '\\' {
			if i+1 < len(b) && b[i+1] == 'u' && len(b)-(i+2) < 4 {
				return b[:i]
			}
			return b
		}
		if !isHexDigit(b[i]) && b[i] != 'u' {
			return b
		}
	}
	return b
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
