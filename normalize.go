package textdiff

import (
	"strings"
	"unicode"
)

// Normalize returns the comparison copy of lines under cfg. The result always
// has the same length as lines, so indices computed against it are valid
// against lines. When no flag is set lines itself is returned; lines is never
// modified.
func Normalize(lines []string, cfg DiffConfig) []string {
	var transform func(string) string

	switch {
	case cfg.IgnoreWhitespace:
		transform = removeWhitespace
	case cfg.CompactWhitespace && cfg.TrimWhitespace:
		transform = func(s string) string {
			return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
		}
	case cfg.CompactWhitespace:
		transform = compactWhitespace
	case cfg.TrimWhitespace:
		transform = func(s string) string {
			return strings.TrimFunc(s, unicode.IsSpace)
		}
	default:
		return lines
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = transform(line)
	}
	return out
}

func removeWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// compactWhitespace replaces every whitespace run, leading and trailing ones
// included, with a single space.
func compactWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inRun := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}

	return b.String()
}
