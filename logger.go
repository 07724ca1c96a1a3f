package textdiff

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger is a simple logger that can write to a file and/or a console stream.
type Logger struct {
	detailed bool
	logFile  *os.File
	console  io.Writer
	mu       sync.Mutex
}

// NewLogger creates a new Logger instance. Detailed output goes to stderr so
// it never mixes with rendered diffs on stdout.
func NewLogger(detailed bool, logPath string) (*Logger, error) {
	var logFile *os.File
	var err error

	if logPath != "" {
		logFile, err = os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
	}

	return &Logger{
		detailed: detailed,
		logFile:  logFile,
		console:  os.Stderr,
	}, nil
}

// SetConsole redirects detailed output.
func (l *Logger) SetConsole(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.console = w
}

// Log writes a log message to the logger.
func (l *Logger) Log(format string, args ...interface{}) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf("[%s] %s\n", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))

	if l.logFile != nil {
		l.logFile.WriteString(msg)
	}

	if l.detailed && l.console != nil {
		io.WriteString(l.console, msg)
	}
}

func (l *Logger) Close() {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		l.logFile.Close()
		l.logFile = nil
	}
}
