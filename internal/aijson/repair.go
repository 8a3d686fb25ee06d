package aijson

import "strings"

// ellipsis is the UTF-8 horizontal ellipsis models occasionally emit in
// place of omitted elements.
const ellipsis = "…"

// literalRewrites maps language-literal tokens that models leak from other
// ecosystems to their JSON equivalents.
var literalRewrites = map[string]string{
	"None":      "null",
	"True":      "true",
	"False":     "false",
	"undefined": "null",
}

// repair applies the deterministic almost-JSON rewrites: comment stripping,
// literal token rewriting, ellipsis removal, then trailing-comma removal.
// Content inside string literals is never touched.
func repair(s string) string {
	return stripTrailingCommas(rewriteTokens(s))
}

// rewriteTokens walks the input once, copying string literals verbatim and
// rewriting everything between them.
func rewriteTokens(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	inString := false
	escape := false

	for i := 0; i < len(s); {
		c := s[i]

		if inString {
			out.WriteByte(c)
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == '"':
				inString = false
			}
			i++
			continue
		}

		switch {
		case c == '"':
			inString = true
			out.WriteByte(c)
			i++

		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			// Line comment: drop to end of line.
			for i < len(s) && s[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			// Block comment: drop to the closing marker.
			end := strings.Index(s[i+2:], "*/")
			if end == -1 {
				i = len(s)
			} else {
				i += 2 + end + 2
			}

		case strings.HasPrefix(s[i:], ellipsis):
			i += len(ellipsis)

		case c == '.' && i+1 < len(s) && s[i+1] == '.':
			// A run of dots is an ellipsis token; single dots belong to
			// numbers and stay.
			for i < len(s) && s[i] == '.' {
				i++
			}

		case isWordByte(c):
			j := i
			for j < len(s) && isWordByte(s[j]) {
				j++
			}
			word := s[i:j]
			if replacement, ok := literalRewrites[word]; ok {
				out.WriteString(replacement)
			} else {
				out.WriteString(word)
			}
			i = j

		default:
			out.WriteByte(c)
			i++
		}
	}

	return out.String()
}

// stripTrailingCommas removes commas whose next non-whitespace byte closes a
// brace or bracket.
func stripTrailingCommas(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	inString := false
	escape := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			out.WriteByte(c)
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

		if c == '"' {
			inString = true
			out.WriteByte(c)
			continue
		}

		if c == ',' {
			j := i + 1
			for j < len(s) && isSpaceByte(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}

		out.WriteByte(c)
	}

	return out.String()
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
