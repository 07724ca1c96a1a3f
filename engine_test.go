package textdiff

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*Session, *int) {
	t.Helper()

	s, err := NewSession(nil, testDefaults)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	fired := 0
	s.Subscribe(func() { fired++ })
	return s, &fired
}

func TestSession_IdenticalSources(t *testing.T) {
	s, fired := newTestSession(t)

	s.SetSource(SideOld, newTestProvider("a", "1\n2\n3\n"))
	s.SetSource(SideNew, newTestProvider("b", "1\n2\n3\n"))
	require.Equal(t, 2, *fired)

	require.NoError(t, s.Diff())
	require.Equal(t, 3, *fired)
	require.True(t, s.HaveDiff())

	script, ok := s.Script()
	require.True(t, ok)
	require.Empty(t, script)

	full := &recordingWriter{}
	require.NoError(t, s.Render(full, StyleFull))
	require.Len(t, full.blocks, 1)
	require.Equal(t, ChangeBlock{Type: BlockCommon, Old: Range{0, 2}, New: Range{0, 2}}, full.blocks[0].Block)

	normal := &recordingWriter{}
	require.NoError(t, s.Render(normal, StyleNormal))
	require.Empty(t, normal.blocks)
}

func TestSession_NoopSettersDoNotNotify(t *testing.T) {
	s, fired := newTestSession(t)

	old := newTestProvider("a", "x\n")
	s.SetSource(SideOld, old)
	s.SetSource(SideNew, newTestProvider("b", "y\n"))
	require.NoError(t, s.Diff())
	*fired = 0

	s.SetSource(SideOld, old)
	s.SetIgnoreWhitespace(false)
	s.SetCompactWhitespace(false)
	s.SetTrimWhitespace(false)
	s.SetConfig(DiffConfig{})
	require.NoError(t, s.ForceEncoding(SideOld, UTF8))
	require.NoError(t, s.ClearSeparatorOverride(SideOld))

	require.Equal(t, 0, *fired)
	require.True(t, s.HaveDiff(), "no-op setters must keep the cached script")
}

func TestSession_SettersInvalidate(t *testing.T) {
	utf16, err := LookupEncoding("UTF-16LE")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(s *Session) error
	}{
		{"ignore whitespace", func(s *Session) error { s.SetIgnoreWhitespace(true); return nil }},
		{"compact whitespace", func(s *Session) error { s.SetCompactWhitespace(true); return nil }},
		{"trim whitespace", func(s *Session) error { s.SetTrimWhitespace(true); return nil }},
		{"config", func(s *Session) error { s.SetConfig(DiffConfig{TrimWhitespace: true}); return nil }},
		{"new source", func(s *Session) error { s.SetSource(SideNew, newTestProvider("c", "z\n")); return nil }},
		{"cleared source", func(s *Session) error { s.SetSource(SideNew, nil); return nil }},
		{"encoding", func(s *Session) error { return s.ForceEncoding(SideOld, utf16) }},
		{"separator", func(s *Session) error { return s.ForceSeparator(SideOld, SeparatorCR) }},
		{"reload", func(s *Session) error { s.Reload(); return nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fired := newTestSession(t)
			s.SetSource(SideOld, newTestProvider("a", "x\n"))
			s.SetSource(SideNew, newTestProvider("b", "y\n"))
			require.NoError(t, s.Diff())
			*fired = 0

			require.NoError(t, tt.mutate(s))
			require.Equal(t, 1, *fired)
			require.False(t, s.HaveDiff())

			_, ok := s.Script()
			require.False(t, ok)
			require.ErrorIs(t, s.Render(&recordingWriter{}, StyleNormal), ErrNoDiff)
		})
	}
}

func TestSession_IgnoreWhitespace(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetSource(SideOld, newTestProvider("a", "A B\n"))
	s.SetSource(SideNew, newTestProvider("b", "AB\n"))

	s.SetIgnoreWhitespace(true)
	require.NoError(t, s.Diff())
	script, _ := s.Script()
	require.Empty(t, script)

	s.SetIgnoreWhitespace(false)
	require.NoError(t, s.Diff())
	script, _ = s.Script()
	require.Equal(t, []EditOperation{{Kind: OpReplace, Old: Range{0, 0}, New: Range{0, 0}}}, script)

	// Rendering shows the original text, not the normalized one.
	w := &recordingWriter{}
	require.NoError(t, s.Render(w, StyleNormal))
	require.Equal(t, []string{"A B"}, w.blocks[0].Old)
	require.Equal(t, []string{"AB"}, w.blocks[0].New)
}

func TestSession_MissingSeparatorWarning(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetSource(SideOld, newTestProvider("a.txt", "line\n"))
	s.SetSource(SideNew, newTestProvider("b.txt", "line"))
	require.NoError(t, s.Diff())

	w := &recordingWriter{}
	require.NoError(t, s.Render(w, StyleNormal))
	require.Len(t, w.blocks, 1)
	require.Equal(t, BlockWarning, w.blocks[0].Block.Type)
	require.Contains(t, w.blocks[0].Msg, "new file")
	require.Contains(t, w.blocks[0].Msg, "b.txt")
}

func TestSession_DiffWithoutBothSources(t *testing.T) {
	s, fired := newTestSession(t)
	s.SetSource(SideOld, newTestProvider("a", "x\n"))
	*fired = 0

	require.NoError(t, s.Diff())
	require.False(t, s.HaveDiff())
	require.Equal(t, 0, *fired)

	require.ErrorIs(t, s.ForceSeparator(SideNew, SeparatorLF), ErrNoSource)
}

func TestSession_DiffFailure(t *testing.T) {
	s, fired := newTestSession(t)

	broken := newTestProvider("b", "y\n")
	s.SetSource(SideOld, newTestProvider("a", "x\n"))
	s.SetSource(SideNew, broken)
	require.NoError(t, s.Diff())

	broken.openErr = errors.New("unplugged")
	s.Reload()
	*fired = 0

	err := s.Diff()
	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	require.Equal(t, "b", readErr.Source)
	require.False(t, s.HaveDiff())
	require.Equal(t, 0, *fired)

	_, ok := s.Script()
	require.False(t, ok)
}

func TestSession_ListenerOrderAndReentrancy(t *testing.T) {
	s, err := NewSession(nil, testDefaults)
	require.NoError(t, err)
	defer s.Close()

	var calls []string
	s.Subscribe(func() { calls = append(calls, "first") })
	unsubscribe := s.Subscribe(func() { calls = append(calls, "second") })
	s.Subscribe(func() {
		// Listeners may read the session while being notified.
		calls = append(calls, "third")
		_ = s.HaveDiff()
		_ = s.Config()
	})

	s.SetTrimWhitespace(true)
	require.Equal(t, []string{"first", "second", "third"}, calls)

	unsubscribe()
	calls = nil
	s.SetTrimWhitespace(false)
	require.Equal(t, []string{"first", "third"}, calls)
}

func TestSession_ConfiguredEncoding(t *testing.T) {
	config := DefaultConfig()
	config.Encoding = "ISO-8859-1"

	s, err := NewSession(config, testDefaults)
	require.NoError(t, err)
	defer s.Close()

	s.SetSource(SideOld, newTestProvider("a", "caf\xe9\n"))
	s.SetSource(SideNew, newTestProvider("b", "café\n"))
	require.NoError(t, s.Diff())

	view, ok := s.Source(SideOld)
	require.True(t, ok)
	lines, err := view.Lines()
	require.NoError(t, err)
	require.Equal(t, []string{"café"}, lines)

	// The UTF-8 bytes of é read as Latin-1 are two different characters.
	script, _ := s.Script()
	require.Len(t, script, 1)
}

type countingScript struct {
	calls int
}

func (c *countingScript) EditScript(a, b []string) []EditOperation {
	c.calls++
	return nil
}

func TestSession_ScriptProvider(t *testing.T) {
	s, _ := newTestSession(t)
	provider := &countingScript{}
	s.SetScriptProvider(provider)

	s.SetSource(SideOld, newTestProvider("a", "x\n"))
	s.SetSource(SideNew, newTestProvider("b", "y\n"))
	require.NoError(t, s.Diff())
	require.Equal(t, 1, provider.calls)
}

func TestSession_SourceViewIsReadOnly(t *testing.T) {
	s, fired := newTestSession(t)

	_, ok := s.Source(SideOld)
	require.False(t, ok)

	s.SetSource(SideOld, newTestProvider("a", "1\n2\n3\n"))
	s.SetSource(SideNew, newTestProvider("b", "1\n2\n3\n"))
	require.NoError(t, s.Diff())
	*fired = 0

	view, ok := s.Source(SideOld)
	require.True(t, ok)
	require.Equal(t, "a", view.Name())
	require.False(t, view.SeparatorForced())

	sep, err := view.Separator()
	require.NoError(t, err)
	require.Equal(t, SeparatorLF, sep)

	// Scribbling over the returned lines does not reach the session.
	lines, err := view.Lines()
	require.NoError(t, err)
	lines[0] = "changed"

	require.Zero(t, *fired)
	require.True(t, s.HaveDiff())

	full := &recordingWriter{}
	require.NoError(t, s.Render(full, StyleFull))
	require.Equal(t, []string{"1", "2", "3"}, full.blocks[0].Old)

	// Changing how a side is split goes through the session.
	require.NoError(t, s.ForceSeparator(SideOld, SeparatorCR))
	require.Equal(t, 1, *fired)
	require.False(t, s.HaveDiff())
	require.True(t, view.SeparatorForced())
	require.ErrorIs(t, s.Render(&recordingWriter{}, StyleFull), ErrNoDiff)
}

// bufferProvider is a provider value that cannot be compared with ==.
type bufferProvider struct {
	name string
	data []byte
}

func (p bufferProvider) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(p.data)), nil
}

func (p bufferProvider) Name() string { return p.name }

func (p bufferProvider) ModTime() time.Time { return time.Time{} }

func TestSession_NonComparableProvider(t *testing.T) {
	s, fired := newTestSession(t)

	p := bufferProvider{name: "a", data: []byte("x\n")}
	require.NotPanics(t, func() {
		s.SetSource(SideOld, p)
		s.SetSource(SideOld, p)
	})
	require.Equal(t, 2, *fired)

	view, ok := s.Source(SideOld)
	require.True(t, ok)
	lines, err := view.Lines()
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, lines)
}

func TestSession_RenderDuringSetters(t *testing.T) {
	s, err := NewSession(nil, testDefaults)
	require.NoError(t, err)
	defer s.Close()

	s.SetSource(SideOld, newTestProvider("a", "1\r2\r3\r"))
	s.SetSource(SideNew, newTestProvider("b", "1\r2\r4\r"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = s.ForceSeparator(SideOld, SeparatorLF)
			_ = s.ClearSeparatorOverride(SideOld)
		}
	}()

	for i := 0; i < 200; i++ {
		require.NoError(t, s.Diff())
		err := s.Render(&recordingWriter{}, StyleFull)
		if err != nil {
			require.ErrorIs(t, err, ErrNoDiff)
		}
	}
	wg.Wait()
}
