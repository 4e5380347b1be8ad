package llm

import (
	"errors"
	"strings"
)

var (
	errEmptyResponse   = errors.New("empty response from model")
	errMalformedOutput = errors.New("malformed model output")
)

// ExtractJSONBlock strips Markdown code fences and returns the first
// top-level {...} block of the content. Returns the remainder from the
// first '{' when no closing brace is found, leaving repair to RepairJSON.
func ExtractJSONBlock(content string) string {
	s := strings.TrimSpace(content)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if rest, ok := strings.CutPrefix(strings.TrimLeft(s, " "), "json"); ok {
			s = rest
		}
		if idx := strings.Index(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	s = s[start:]

	depth := 0
	inString := false
	escaped := false
	for i, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[:i+1]
				}
			}
		}
	}
	return s
}

// RepairJSON attempts a bounded repair of a truncated JSON object: close an
// unterminated string, then append missing closing braces. It never touches
// well-formed input.
func RepairJSON(payload string) string {
	s := strings.TrimRight(payload, " \t\n\r")
	if s == "" {
		return s
	}

	inString := false
	escaped := false
	depth := 0
	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
			}
		}
	}

	if inString {
		s += `"`
	}
	for ; depth > 0; depth-- {
		s += "}"
	}
	return s
}
