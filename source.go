package textdiff

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/transform"
)

// inferenceWindow is the number of line endings looked at when guessing the
// separator of a source.
const inferenceWindow = 5

// LineSource materializes a ByteProvider into decoded lines. The line list
// is computed on first use and dropped whenever the encoding or the
// separator changes.
type LineSource struct {
	mu       sync.Mutex
	provider ByteProvider
	defaults Defaults

	encoding       Encoding
	encodingForced bool

	separator       LineSeparator
	separatorKnown  bool
	separatorForced bool

	lines                 []string
	loaded                bool
	missingFinalSeparator bool
}

// NewLineSource creates a source decoding p with d.Encoding.
func NewLineSource(p ByteProvider, d Defaults) *LineSource {
	return &LineSource{
		provider: p,
		defaults: d,
		encoding: d.Encoding,
	}
}

func (s *LineSource) Provider() ByteProvider {
	return s.provider
}

func (s *LineSource) Name() string {
	return s.provider.Name()
}

func (s *LineSource) Encoding() Encoding {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.encoding
}

func (s *LineSource) EncodingForced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.encodingForced
}

// ForceEncoding switches the decoding of the source to e. Setting the
// current encoding again does nothing. Unless the separator is overridden it
// is inferred again under e, which reads the source; if that read fails the
// source is left exactly as it was.
func (s *LineSource) ForceEncoding(e Encoding) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encoding.Equal(e) {
		return false, nil
	}

	sep, known := s.separator, s.separatorKnown
	if !s.separatorForced {
		inferred, err := s.inferSeparator(e)
		if err != nil {
			return false, err
		}
		sep, known = inferred, true
	}

	s.encoding = e
	s.encodingForced = true
	s.separator = sep
	s.separatorKnown = known
	s.clearCache()

	return true, nil
}

// Separator returns the separator in effect, inferring it if needed.
func (s *LineSource) Separator() (LineSeparator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.separatorKnown {
		sep, err := s.inferSeparator(s.encoding)
		if err != nil {
			return 0, err
		}
		s.separator = sep
		s.separatorKnown = true
	}

	return s.separator, nil
}

func (s *LineSource) SeparatorForced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.separatorForced
}

// ForceSeparator overrides separator inference with sep. The override
// sticks even when sep equals the inferred value, so later encoding changes
// keep it. It reports whether the separator in effect changed; a separator
// that was never inferred counts as a change.
func (s *LineSource) ForceSeparator(sep LineSeparator) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.separatorForced = true
	if s.separatorKnown && s.separator == sep {
		return false
	}

	s.separator = sep
	s.separatorKnown = true
	s.clearCache()

	return true
}

// ClearSeparatorOverride drops a ForceSeparator override and infers the
// separator again. It reports whether the separator in effect changed.
func (s *LineSource) ClearSeparatorOverride() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.separatorForced {
		return false, nil
	}

	sep, err := s.inferSeparator(s.encoding)
	if err != nil {
		return false, err
	}

	s.separatorForced = false
	if s.separatorKnown && s.separator == sep {
		return false, nil
	}

	s.separator = sep
	s.separatorKnown = true
	s.clearCache()

	return true, nil
}

// Lines returns the decoded lines without their separators. The returned
// slice is shared with the cache and must not be modified.
func (s *LineSource) Lines() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}
	return s.lines, nil
}

// MissingFinalSeparator reports whether the last line is not terminated by
// the separator.
func (s *LineSource) MissingFinalSeparator() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return false, err
	}
	return s.missingFinalSeparator, nil
}

// Invalidate drops the cached lines, e.g. after the underlying file changed.
// A separator that is not overridden will be inferred again.
func (s *LineSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.separatorForced {
		s.separatorKnown = false
	}
	s.clearCache()
}

func (s *LineSource) clearCache() {
	s.lines = nil
	s.loaded = false
	s.missingFinalSeparator = false
}

// load fills the cache. Callers hold s.mu.
func (s *LineSource) load() error {
	if s.loaded {
		return nil
	}

	text, err := s.decode(s.encoding)
	if err != nil {
		return err
	}

	sep := s.separator
	if !s.separatorKnown {
		t, _ := tallyEndings(strings.NewReader(text))
		sep = t.choose(s.defaults.Separator)
	}

	lines, missing := splitLines(text, sep.Sequence())

	s.separator = sep
	s.separatorKnown = true
	s.lines = lines
	s.missingFinalSeparator = missing
	s.loaded = true

	return nil
}

func (s *LineSource) open(enc Encoding) (io.ReadCloser, io.Reader, error) {
	rc, err := s.provider.Open()
	if err != nil {
		return nil, nil, &ReadError{Source: s.provider.Name(), Op: "open", Err: err}
	}
	return rc, transform.NewReader(rc, enc.decoder()), nil
}

func (s *LineSource) decode(enc Encoding) (string, error) {
	rc, r, err := s.open(enc)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", &ReadError{Source: s.provider.Name(), Op: "read", Err: err}
	}
	return string(data), nil
}

// inferSeparator reads only as much of the source as the inference window
// needs.
func (s *LineSource) inferSeparator(enc Encoding) (LineSeparator, error) {
	rc, r, err := s.open(enc)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	t, err := tallyEndings(bufio.NewReader(r))
	if err != nil {
		return 0, &ReadError{Source: s.provider.Name(), Op: "read", Err: err}
	}
	return t.choose(s.defaults.Separator), nil
}

type endingTally struct {
	cr, lf, crlf int
}

// choose prefers CRLF, then LF, then CR on ties.
func (t endingTally) choose(def LineSeparator) LineSeparator {
	switch {
	case t.cr+t.lf+t.crlf == 0:
		return def
	case t.crlf >= t.lf && t.crlf >= t.cr:
		return SeparatorCRLF
	case t.lf >= t.cr:
		return SeparatorLF
	default:
		return SeparatorCR
	}
}

// tallyEndings counts line endings until inferenceWindow of them have been
// seen or the input ends.
func tallyEndings(r io.RuneReader) (endingTally, error) {
	var t endingTally
	pendingCR := false

	for n := 0; n < inferenceWindow; {
		c, _, err := r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return t, err
		}

		if pendingCR {
			pendingCR = false
			if c == '\n' {
				t.crlf++
				n++
				continue
			}
			t.cr++
			n++
			if n == inferenceWindow {
				break
			}
		}

		switch c {
		case '\r':
			pendingCR = true
		case '\n':
			t.lf++
			n++
		}
	}

	if pendingCR {
		t.cr++
	}

	return t, nil
}

// splitLines cuts text at every occurrence of sep. A mismatch restarts the
// match at the current character, so a stray CR before a real CRLF stays in
// the line. The second result is true when text has a trailing fragment not
// terminated by sep.
func splitLines(text, sep string) ([]string, bool) {
	lines := []string{}
	start, matched := 0, 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != sep[matched] {
			matched = 0
		}
		if c != sep[matched] {
			continue
		}

		matched++
		if matched == len(sep) {
			lines = append(lines, text[start:i+1-len(sep)])
			start = i + 1
			matched = 0
		}
	}

	if start < len(text) {
		return append(lines, text[start:]), true
	}
	return lines, false
}
