// Package aijson recovers structured JSON from noisy generative-model output.
//
// Model responses are not guaranteed well-formed: they arrive wrapped in
// markdown fences, surrounded by prose, or with almost-JSON defects such as
// comments, trailing commas and Python literals. Extraction runs an ordered
// list of deterministic rewrite-then-parse stages, cheapest first, and only
// fails once every stage has been exhausted.
package aijson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// candidatePreviewLimit bounds how much of a failed candidate is carried in
// errors, so malformed output cannot blow up log sizes.
const candidatePreviewLimit = 160

// FormatError reports that no recovery stage produced parseable data.
type FormatError struct {
	// Candidate is a truncated prefix of the last candidate string attempted.
	Candidate string
	// Err is the parse error from the final attempt.
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecoverable output format: %v (candidate prefix: %q)", e.Err, e.Candidate)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Extract parses text that is expected to be a JSON document, possibly
// fenced and possibly malformed, into v.
func Extract(text string, v any) error {
	candidate, err := recoverCandidate(text)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(candidate), v)
}

// ExtractFromFreeText parses a JSON document embedded in arbitrary
// surrounding prose into v. The earliest balanced top-level object or array
// span is isolated first; if neither exists the whole text is attempted.
func ExtractFromFreeText(text string, v any) error {
	span, ok := isolateSpan(text)
	if !ok {
		return Extract(text, v)
	}
	return Extract(span, v)
}

// recoverCandidate runs the rewrite stages until one yields valid JSON and
// returns that candidate string.
func recoverCandidate(text string) (string, error) {
	candidate := stripFence(text)
	if err := checkJSON(candidate); err == nil {
		return candidate, nil
	}

	candidate = repair(candidate)
	err := checkJSON(candidate)
	if err == nil {
		return candidate, nil
	}

	return "", &FormatError{Candidate: truncate(candidate), Err: err}
}

// checkJSON attempts a strict parse into a throwaway value, so a failed
// stage never leaves partial data behind in the caller's target.
func checkJSON(s string) error {
	var probe any
	return json.Unmarshal([]byte(s), &probe)
}

func truncate(s string) string {
	if len(s) > candidatePreviewLimit {
		return s[:candidatePreviewLimit]
	}
	return s
}

// stripFence removes a single leading/trailing markdown code fence, with an
// optional language tag on the opening fence, plus surrounding whitespace.
func stripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		// Drop a format hint like "json" directly after the fence.
		if idx := strings.IndexAny(trimmed, "\r\n"); idx >= 0 {
			firstLine := strings.TrimSpace(trimmed[:idx])
			if firstLine != "" && isFenceTag(firstLine) {
				trimmed = trimmed[idx:]
			}
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	return trimmed
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// isolateSpan finds the earliest balanced top-level {...} or [...] span.
func isolateSpan(text string) (string, bool) {
	objSpan, objStart, objOK := findBalanced(text, '{', '}')
	arrSpan, arrStart, arrOK := findBalanced(text, '[', ']')

	switch {
	case objOK && arrOK:
		if objStart < arrStart {
			return objSpan, true
		}
		return arrSpan, true
	case objOK:
		return objSpan, true
	case arrOK:
		return arrSpan, true
	default:
		return "", false
	}
}

// findBalanced returns the first span delimited by a matching open/close
// pair, tracking string literals and escapes so braces inside strings do not
// affect the depth count.
func findBalanced(text string, open, close byte) (string, int, bool) {
	start := -1
	depth := 0
	inString := false
	escape := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if start == -1 {
			if c == open {
				start = i
				depth = 1
			}
			continue
		}
		if inString {
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
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
			if depth == 0 {
				return text[start : i+1], start, true
			}
		}
	}
	return "", -1, false
}
