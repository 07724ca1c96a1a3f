package textdiff

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// NonPrinting selects how control characters are written.
type NonPrinting int

const (
	NonPrintingAsIs NonPrinting = iota
	NonPrintingEscape
	NonPrintingBox
	NonPrintingRemove
)

// boxGlyph replaces every control character under NonPrintingBox.
const boxGlyph = '□'

func (p NonPrinting) String() string {
	switch p {
	case NonPrintingAsIs:
		return "asis"
	case NonPrintingEscape:
		return "escape"
	case NonPrintingBox:
		return "box"
	case NonPrintingRemove:
		return "remove"
	default:
		return fmt.Sprintf("NonPrinting(%d)", int(p))
	}
}

func (p NonPrinting) valid() bool {
	return p >= NonPrintingAsIs && p <= NonPrintingRemove
}

// ParseNonPrinting parses "asis", "escape", "box" or "remove".
func ParseNonPrinting(name string) (NonPrinting, error) {
	for p := NonPrintingAsIs; p <= NonPrintingRemove; p++ {
		if lower(name) == p.String() {
			return p, nil
		}
	}
	return 0, &ConfigurationError{Field: "non-printing policy", Value: name}
}

var mnemonics = map[rune]string{
	0x00: `\0`,
	'\a': `\a`,
	'\b': `\b`,
	'\f': `\f`,
	'\n': `\n`,
	'\r': `\r`,
	'\v': `\v`,
	0x1B: `\e`,
}

// escapeRune returns the printable form of a control character.
func escapeRune(r rune) string {
	if m, ok := mnemonics[r]; ok {
		return m
	}
	if r <= 0xFF {
		return fmt.Sprintf("<%02X>", r)
	}
	return fmt.Sprintf("<U+%04X>", r)
}

// isNonPrinting reports control characters other than tab, which is handled
// by tab expansion.
func isNonPrinting(r rune) bool {
	return r != '\t' && unicode.IsControl(r)
}

// FormatLine applies the non-printing policy and expands tabs to the next
// multiple of tabWidth. Columns are counted in terminal cells, substitutions
// included. A tabWidth of 0 or less leaves tabs alone.
func FormatLine(s string, policy NonPrinting, tabWidth int) string {
	var b strings.Builder
	b.Grow(len(s))

	col := 0
	for _, r := range s {
		switch {
		case r == '\t' && tabWidth > 0:
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case r == '\t':
			b.WriteRune(r)
			col++
		case isNonPrinting(r) && policy == NonPrintingEscape:
			e := escapeRune(r)
			b.WriteString(e)
			col += len(e)
		case isNonPrinting(r) && policy == NonPrintingBox:
			b.WriteRune(boxGlyph)
			col += runewidth.RuneWidth(boxGlyph)
		case isNonPrinting(r) && policy == NonPrintingRemove:
		default:
			b.WriteRune(r)
			col += runewidth.RuneWidth(r)
		}
	}

	return b.String()
}

// ExpandTabs expands tabs in s without touching other characters.
func ExpandTabs(s string, tabWidth int) string {
	if tabWidth <= 0 || !strings.ContainsRune(s, '\t') {
		return s
	}
	return FormatLine(s, NonPrintingAsIs, tabWidth)
}

// LineNumberWidth returns the label width for a total-lines hint: the digit
// count of the hint, 1 for 0, and one extra column for negative hints.
func LineNumberWidth(hint int) int {
	switch {
	case hint == 0:
		return 1
	case hint < 0:
		return digitCount(uint(-(hint+1))+1) + 1
	default:
		return digitCount(uint(hint))
	}
}

// TextWriter renders change blocks as plain text.
type TextWriter struct {
	w           io.Writer
	nonPrinting NonPrinting
	tabWidth    int
	numberWidth int
}

// Makesure TextWriter implements the BlockWriter interface
var _ BlockWriter = &TextWriter{}

// NewTextWriter creates a writer; an invalid policy is a *ConfigurationError.
func NewTextWriter(w io.Writer, policy NonPrinting, tabWidth int) (*TextWriter, error) {
	tw := &TextWriter{w: w, tabWidth: tabWidth, numberWidth: 1}
	if err := tw.SetNonPrinting(policy); err != nil {
		return nil, err
	}
	return tw, nil
}

func (tw *TextWriter) SetNonPrinting(p NonPrinting) error {
	if !p.valid() {
		return &ConfigurationError{Field: "non-printing policy", Value: p.String()}
	}
	tw.nonPrinting = p
	return nil
}

func (tw *TextWriter) SetTabWidth(n int) {
	tw.tabWidth = n
}

func (tw *TextWriter) SetTotalLines(n int) {
	tw.numberWidth = LineNumberWidth(n)
}

// label formats the 1-based number of the line at index i.
func (tw *TextWriter) label(i int) string {
	return fmt.Sprintf("%0*d", tw.numberWidth, i+1)
}

func (tw *TextWriter) span(r Range) string {
	if r.Empty() {
		return tw.label(r.Begin-1) + "+0"
	}
	return tw.label(r.Begin) + "," + tw.label(r.End)
}

var blockTags = map[BlockType]string{
	BlockCommon:  "=",
	BlockOldOnly: "-",
	BlockNewOnly: "+",
	BlockChanged: "!",
	BlockWarning: "?",
}

func (tw *TextWriter) header(b ChangeBlock) error {
	_, err := fmt.Fprintf(tw.w, "%s %s %s\n", blockTags[b.Type], tw.span(b.Old), tw.span(b.New))
	return err
}

func (tw *TextWriter) line(prefix string, i int, text string) error {
	_, err := fmt.Fprintf(tw.w, "%s%s %s\n", prefix, tw.label(i), FormatLine(text, tw.nonPrinting, tw.tabWidth))
	return err
}

func (tw *TextWriter) WriteBlock(b ChangeBlock, oldLines, newLines []string) error {
	if err := tw.header(b); err != nil {
		return err
	}

	if b.Type == BlockCommon {
		for i, text := range oldLines {
			if err := tw.line("  ", b.Old.Begin+i, text); err != nil {
				return err
			}
		}
		return nil
	}

	for i, text := range oldLines {
		if err := tw.line("< ", b.Old.Begin+i, text); err != nil {
			return err
		}
	}
	for i, text := range newLines {
		if err := tw.line("> ", b.New.Begin+i, text); err != nil {
			return err
		}
	}
	return nil
}

func (tw *TextWriter) WriteWarning(b ChangeBlock, msg string) error {
	if err := tw.header(b); err != nil {
		return err
	}
	_, err := fmt.Fprintf(tw.w, "\\ %s\n", msg)
	return err
}
