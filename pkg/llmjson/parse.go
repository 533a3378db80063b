// Package llmjson extracts JSON payloads from free-form model output.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParse matches every ParseError via errors.Is.
var ErrParse = errors.New("model output is not usable json")

// ParseError reports why a model reply could not be decoded.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse model output: %s: %v", e.Reason, e.Err)
	}
	return "parse model output: " + e.Reason
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrParse, e.Err}
	}
	return []error{ErrParse}
}

// ParseObject decodes the outermost {...} span of raw.
func ParseObject(raw string) (map[string]any, error) {
	var out map[string]any
	if err := decodeSpan(raw, '{', '}', &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseArray decodes the outermost [...] span of raw.
func ParseArray(raw string) ([]any, error) {
	var out []any
	if err := decodeSpan(raw, '[', ']', &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeObject decodes the outermost {...} span of raw into T.
func DecodeObject[T any](raw string) (T, error) {
	var out T
	err := decodeSpan(raw, '{', '}', &out)
	return out, err
}

// DecodeArray decodes the outermost [...] span of raw into a slice of T.
func DecodeArray[T any](raw string) ([]T, error) {
	var out []T
	if err := decodeSpan(raw, '[', ']', &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Extract returns the span from the first open bracket to the last close bracket.
func Extract(raw string, open, close byte) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &ParseError{Reason: "empty output"}
	}
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start == -1 || end == -1 || end <= start {
		return "", &ParseError{Reason: fmt.Sprintf("no %c...%c span found (len=%d)", open, close, len(s))}
	}
	sub := s[start : end+1]
	if !balanced(sub, open, close) {
		return "", &ParseError{Reason: fmt.Sprintf("unbalanced %c...%c span (len=%d)", open, close, len(sub))}
	}
	return sub, nil
}

func decodeSpan(raw string, open, close byte, v any) error {
	sub, err := Extract(raw, open, close)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(sub), v); err != nil {
		return &ParseError{Reason: fmt.Sprintf("decode extracted span (len=%d)", len(sub)), Err: err}
	}
	return nil
}

// balanced counts open/close brackets outside string literals.
func balanced(s string, open, close byte) bool {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
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
		case open:
			depth++
		case close:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0 && !inString
}
