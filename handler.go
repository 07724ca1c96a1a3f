package textdiff

import (
	"io"
	"time"
)

// ByteProvider supplies the raw bytes of a text source. A LineSource never
// keeps a stream open; it calls Open again for every read. Implementations
// must be comparable with ==, pointer types are the usual choice.
type ByteProvider interface {
	Open() (io.ReadCloser, error)
	Name() string
	ModTime() time.Time
}

// EditScriptProvider computes the ordered edit operations turning a into b.
// Operations must not overlap and must be in ascending index order on both
// sides; lines not covered by an operation are matched.
type EditScriptProvider interface {
	EditScript(a, b []string) []EditOperation
}

// BlockWriter receives rendered change blocks.
type BlockWriter interface {
	// SetTotalLines fixes the width of all subsequent line number labels.
	SetTotalLines(n int)
	// WriteBlock writes one block together with the original lines it covers.
	WriteBlock(b ChangeBlock, oldLines, newLines []string) error
	// WriteWarning writes a Warning block and its one-line message.
	WriteWarning(b ChangeBlock, msg string) error
}
