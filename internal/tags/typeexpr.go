package tags

import (
	"strings"
	"unicode"
)

// splitType extracts a leading {type} expression from a tag value. Braces
// may nest ({{a: number}}). Returns the inner expression, the remaining
// text, and whether a type was present.
func splitType(value string) (expr, rest string, ok bool) {
	s := strings.TrimLeftFunc(value, unicode.IsSpace)
	if !strings.HasPrefix(s, "{") {
		return "", value, false
	}
	depth := 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[1:i]), strings.TrimSpace(s[i+1:]), true
			}
		}
	}
	// Unbalanced: treat the whole value as text.
	return "", value, false
}

// dataTypes turns a type expression into its union members:
// "(string|number)" becomes ["string", "number"]. Unions nested inside
// braces, brackets or angle brackets are kept whole.
func dataTypes(expr string) []string {
	expr = strings.TrimSpace(expr)
	for len(expr) > 1 && expr[0] == '(' && expr[len(expr)-1] == ')' {
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}
	if expr == "" {
		return nil
	}

	var out []string
	depth, start := 0, 0
	for i, r := range expr {
		switch r {
		case '(', '{', '[', '<':
			depth++
		case ')', '}', ']', '>':
			depth--
		case '|':
			if depth == 0 {
				if part := strings.TrimSpace(expr[start:i]); part != "" {
					out = append(out, part)
				}
				start = i + 1
			}
		}
	}
	if part := strings.TrimSpace(expr[start:]); part != "" {
		out = append(out, part)
	}
	return out
}

// splitWord returns the first whitespace separated word of s and the rest.
// A bracketed optional name such as "[name=default value]" counts as one
// word even when it contains spaces.
func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	if s[0] == '[' {
		depth := 0
		for i, r := range s {
			switch r {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					return s[:i+1], strings.TrimSpace(s[i+1:])
				}
			}
		}
	}
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}

// trimDash drops the conventional "- " separator between a name and its
// description.
func trimDash(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		return strings.TrimSpace(rest)
	}
	return s
}
