package textdiff

import "strings"

// PlatformSeparator returns the native line separator of the given GOOS.
// It is meant for the composition point of a program; nothing in this
// package consults the running platform.
func PlatformSeparator(goos string) LineSeparator {
	if goos == "windows" {
		return SeparatorCRLF
	}
	return SeparatorLF
}

// JoinLines is the inverse of splitting a source: lines joined with sep,
// followed by a final sep unless missingFinal is set.
func JoinLines(lines []string, sep LineSeparator, missingFinal bool) string {
	if len(lines) == 0 {
		return ""
	}

	s := strings.Join(lines, sep.Sequence())
	if !missingFinal {
		s += sep.Sequence()
	}
	return s
}

// digitCount returns the number of decimal digits of n.
func digitCount(n uint) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
