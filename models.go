package textdiff

import "fmt"

const Version = "1.0.0"

// LineSeparator is the line ending convention of a text source.
type LineSeparator int

const (
	SeparatorLF LineSeparator = iota
	SeparatorCRLF
	SeparatorCR
)

// Sequence returns the characters that terminate a line.
func (s LineSeparator) Sequence() string {
	switch s {
	case SeparatorCRLF:
		return "\r\n"
	case SeparatorCR:
		return "\r"
	default:
		return "\n"
	}
}

func (s LineSeparator) String() string {
	switch s {
	case SeparatorLF:
		return "LF"
	case SeparatorCRLF:
		return "CRLF"
	case SeparatorCR:
		return "CR"
	default:
		return fmt.Sprintf("LineSeparator(%d)", int(s))
	}
}

// ParseLineSeparator parses "lf", "crlf" or "cr" (case-insensitive).
func ParseLineSeparator(name string) (LineSeparator, error) {
	switch lower(name) {
	case "lf":
		return SeparatorLF, nil
	case "crlf":
		return SeparatorCRLF, nil
	case "cr":
		return SeparatorCR, nil
	}
	return 0, &ConfigurationError{Field: "separator", Value: name}
}

// Defaults holds the platform derived fallbacks a LineSource uses when
// nothing was forced and nothing could be inferred.
type Defaults struct {
	Encoding  Encoding
	Separator LineSeparator
}

// DiffConfig selects the whitespace policy applied before comparison.
type DiffConfig struct {
	IgnoreWhitespace  bool
	CompactWhitespace bool
	TrimWhitespace    bool
}

// Range is an inclusive, 0-based line range. An empty range is encoded as
// End == Begin-1; Begin then is the position the range would start at.
type Range struct {
	Begin int
	End   int
}

// EmptyAt returns the empty range positioned at pos.
func EmptyAt(pos int) Range {
	return Range{Begin: pos, End: pos - 1}
}

// Len returns the number of lines covered; ranges with Begin > End are empty.
func (r Range) Len() int {
	if r.End < r.Begin {
		return 0
	}
	return r.End - r.Begin + 1
}

func (r Range) Empty() bool {
	return r.End < r.Begin
}

// Slice returns the lines of r; it returns nil for empty ranges.
func (r Range) Slice(lines []string) []string {
	if r.Empty() {
		return nil
	}
	return lines[r.Begin : r.End+1]
}

// OpKind is the kind of an edit operation.
type OpKind int

const (
	OpInsert OpKind = iota
	OpDelete
	OpReplace
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// EditOperation is one unit of an edit script. Both ranges are always set;
// the Old range of an insert and the New range of a delete are empty ranges
// positioned where the change happens.
type EditOperation struct {
	Kind OpKind
	Old  Range
	New  Range
}

// BlockType classifies a ChangeBlock.
type BlockType int

const (
	BlockCommon BlockType = iota
	BlockOldOnly
	BlockNewOnly
	BlockChanged
	BlockWarning
)

func (t BlockType) String() string {
	switch t {
	case BlockCommon:
		return "common"
	case BlockOldOnly:
		return "old-only"
	case BlockNewOnly:
		return "new-only"
	case BlockChanged:
		return "changed"
	case BlockWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// ChangeBlock is one renderable unit of diff output.
type ChangeBlock struct {
	Type BlockType
	Old  Range
	New  Range
}

func (b ChangeBlock) OldBegin() int { return b.Old.Begin }
func (b ChangeBlock) OldEnd() int   { return b.Old.End }
func (b ChangeBlock) NewBegin() int { return b.New.Begin }
func (b ChangeBlock) NewEnd() int   { return b.New.End }

// Side names one of the two compared sources.
type Side int

const (
	SideOld Side = iota
	SideNew
)

func (s Side) String() string {
	if s == SideNew {
		return "new"
	}
	return "old"
}

// Style selects how change blocks are rendered.
type Style int

const (
	// StyleNormal emits only the changed blocks.
	StyleNormal Style = iota
	// StyleFull also emits the unchanged lines between changes.
	StyleFull
)

// ParseStyle parses "normal" or "full".
func ParseStyle(name string) (Style, error) {
	switch lower(name) {
	case "normal", "":
		return StyleNormal, nil
	case "full":
		return StyleFull, nil
	}
	return 0, &ConfigurationError{Field: "style", Value: name}
}

func (s Style) String() string {
	if s == StyleFull {
		return "full"
	}
	return "normal"
}
