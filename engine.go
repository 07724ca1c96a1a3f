package textdiff

import (
	"reflect"
	"slices"
	"sync"
	"time"
)

// Session is the entrypoint for the textdiff package. It owns the two
// sources being compared, the whitespace policy and the cached edit script.
// Every mutation that changes something drops the cached script and fires
// the change notification once; setting a value that is already in effect
// does neither.
type Session struct {
	mu       sync.Mutex
	defaults Defaults
	sources  [2]*LineSource
	config   DiffConfig
	scripter EditScriptProvider
	script   []EditOperation
	haveDiff bool
	changes  Notifier
	logger   *Logger
}

// NewSession creates a new Session instance. defaults are the platform
// encoding and separator; a non-empty config.Encoding replaces the former.
func NewSession(config *Configuration, defaults Defaults) (*Session, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Encoding != "" {
		enc, err := LookupEncoding(config.Encoding)
		if err != nil {
			return nil, err
		}
		defaults.Encoding = enc
	}

	logger, err := NewLogger(config.DetailedLogging, config.LogPath)
	if err != nil {
		return nil, err
	}

	return &Session{
		defaults: defaults,
		config:   config.DiffConfig(),
		scripter: NewLineScript(),
		logger:   logger,
	}, nil
}

// SetScriptProvider replaces the edit script collaborator.
func (s *Session) SetScriptProvider(p EditScriptProvider) {
	_ = s.mutate("script provider", func() (bool, error) {
		s.scripter = p
		return true, nil
	})
}

// Subscribe registers fn to be called after every invalidating mutation and
// after every successful Diff.
func (s *Session) Subscribe(fn func()) (unsubscribe func()) {
	return s.changes.Subscribe(fn)
}

// Close releases the session logger.
func (s *Session) Close() {
	s.logger.Close()
}

// mutate runs fn under the session lock and invalidates the cached script
// if fn reports a change. Listeners run after the lock is released so they
// may call back into the session.
func (s *Session) mutate(what string, fn func() (bool, error)) error {
	s.mu.Lock()
	changed, err := fn()
	if changed {
		s.script = nil
		s.haveDiff = false
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Log("Updating %s failed: %v", what, err)
		return err
	}

	if changed {
		s.logger.Log("Updated %s, diff invalidated", what)
		s.changes.Fire()
	}
	return nil
}

// Source returns a read-only view of side and whether a source is assigned.
func (s *Session) Source(side Side) (SourceView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.sources[side]
	return SourceView{src: src}, src != nil
}

// SetSource assigns p to side. A nil provider clears the slot.
func (s *Session) SetSource(side Side, p ByteProvider) {
	_ = s.mutate(side.String()+" source", func() (bool, error) {
		cur := s.sources[side]
		switch {
		case cur == nil && p == nil:
			return false, nil
		case cur != nil && p != nil && sameProvider(cur.Provider(), p):
			return false, nil
		case p == nil:
			s.sources[side] = nil
		default:
			s.sources[side] = NewLineSource(p, s.defaults)
		}
		return true, nil
	})
}

// sameProvider compares providers with == when their dynamic type allows it.
// Providers of a non-comparable type are never considered the same.
func sameProvider(a, b ByteProvider) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func (s *Session) Config() DiffConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.config
}

// SetConfig replaces all whitespace flags at once.
func (s *Session) SetConfig(cfg DiffConfig) {
	_ = s.mutate("whitespace policy", func() (bool, error) {
		if s.config == cfg {
			return false, nil
		}
		s.config = cfg
		return true, nil
	})
}

func (s *Session) SetIgnoreWhitespace(v bool) {
	_ = s.mutate("ignore whitespace", func() (bool, error) {
		if s.config.IgnoreWhitespace == v {
			return false, nil
		}
		s.config.IgnoreWhitespace = v
		return true, nil
	})
}

func (s *Session) SetCompactWhitespace(v bool) {
	_ = s.mutate("compact whitespace", func() (bool, error) {
		if s.config.CompactWhitespace == v {
			return false, nil
		}
		s.config.CompactWhitespace = v
		return true, nil
	})
}

func (s *Session) SetTrimWhitespace(v bool) {
	_ = s.mutate("trim whitespace", func() (bool, error) {
		if s.config.TrimWhitespace == v {
			return false, nil
		}
		s.config.TrimWhitespace = v
		return true, nil
	})
}

// ForceEncoding decodes side with e from now on.
func (s *Session) ForceEncoding(side Side, e Encoding) error {
	return s.mutate(side.String()+" encoding", func() (bool, error) {
		src := s.sources[side]
		if src == nil {
			return false, ErrNoSource
		}
		return src.ForceEncoding(e)
	})
}

// ForceSeparator overrides separator inference for side.
func (s *Session) ForceSeparator(side Side, sep LineSeparator) error {
	return s.mutate(side.String()+" separator", func() (bool, error) {
		src := s.sources[side]
		if src == nil {
			return false, ErrNoSource
		}
		return src.ForceSeparator(sep), nil
	})
}

// ClearSeparatorOverride returns side to separator inference.
func (s *Session) ClearSeparatorOverride(side Side) error {
	return s.mutate(side.String()+" separator", func() (bool, error) {
		src := s.sources[side]
		if src == nil {
			return false, ErrNoSource
		}
		return src.ClearSeparatorOverride()
	})
}

// Reload drops the cached lines of both sources so the next Diff reads them
// again.
func (s *Session) Reload() {
	_ = s.mutate("sources", func() (bool, error) {
		changed := false
		for _, src := range s.sources {
			if src != nil {
				src.Invalidate()
				changed = true
			}
		}
		return changed, nil
	})
}

// HaveDiff reports whether a script from a successful Diff is cached.
func (s *Session) HaveDiff() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.haveDiff
}

// Script returns a copy of the cached edit script.
func (s *Session) Script() ([]EditOperation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.haveDiff {
		return nil, false
	}
	return slices.Clone(s.script), true
}

// Diff compares both sources under the current whitespace policy and caches
// the result. It does nothing while either side has no source. On failure no
// script is cached and the *ReadError is returned unchanged.
func (s *Session) Diff() error {
	s.mu.Lock()

	oldSrc, newSrc := s.sources[SideOld], s.sources[SideNew]
	if oldSrc == nil || newSrc == nil {
		s.mu.Unlock()
		return nil
	}

	s.script = nil
	s.haveDiff = false

	oldLines, err := oldSrc.Lines()
	if err != nil {
		s.mu.Unlock()
		s.logger.Log("Error reading %s: %v", oldSrc.Name(), err)
		return err
	}

	newLines, err := newSrc.Lines()
	if err != nil {
		s.mu.Unlock()
		s.logger.Log("Error reading %s: %v", newSrc.Name(), err)
		return err
	}

	script := s.scripter.EditScript(Normalize(oldLines, s.config), Normalize(newLines, s.config))
	s.script = script
	s.haveDiff = true
	s.mu.Unlock()

	s.logger.Log("Compared %s (%d lines) with %s (%d lines): %d operations",
		oldSrc.Name(), len(oldLines), newSrc.Name(), len(newLines), len(script))
	s.changes.Fire()

	return nil
}

// Render writes the cached script to w in the given style. The script and
// the lines it refers to are snapshotted under one lock.
func (s *Session) Render(w BlockWriter, style Style) error {
	s.mu.Lock()
	if !s.haveDiff {
		s.mu.Unlock()
		return ErrNoDiff
	}
	script := s.script

	oldIn, err := renderInput(s.sources[SideOld])
	if err != nil {
		s.mu.Unlock()
		return err
	}

	newIn, err := renderInput(s.sources[SideNew])
	s.mu.Unlock()
	if err != nil {
		return err
	}

	return Render(w, script, oldIn, newIn, style)
}

func renderInput(src *LineSource) (RenderInput, error) {
	lines, err := src.Lines()
	if err != nil {
		return RenderInput{}, err
	}

	missing, err := src.MissingFinalSeparator()
	if err != nil {
		return RenderInput{}, err
	}

	return RenderInput{Name: src.Name(), Lines: slices.Clone(lines), MissingFinalSeparator: missing}, nil
}

// SourceView is a read-only handle on one side of a Session. Changing how a
// side is read goes through the Session setters.
type SourceView struct {
	src *LineSource
}

func (v SourceView) Name() string {
	if v.src == nil {
		return ""
	}
	return v.src.Name()
}

func (v SourceView) ModTime() time.Time {
	if v.src == nil {
		return time.Time{}
	}
	return v.src.Provider().ModTime()
}

func (v SourceView) Encoding() Encoding {
	if v.src == nil {
		return Encoding{}
	}
	return v.src.Encoding()
}

func (v SourceView) EncodingForced() bool {
	return v.src != nil && v.src.EncodingForced()
}

func (v SourceView) SeparatorForced() bool {
	return v.src != nil && v.src.SeparatorForced()
}

// Separator returns the forced or inferred separator of the side.
func (v SourceView) Separator() (LineSeparator, error) {
	if v.src == nil {
		return 0, ErrNoSource
	}
	return v.src.Separator()
}

// Lines returns a copy of the decoded lines of the side.
func (v SourceView) Lines() ([]string, error) {
	if v.src == nil {
		return nil, ErrNoSource
	}
	lines, err := v.src.Lines()
	if err != nil {
		return nil, err
	}
	return slices.Clone(lines), nil
}

func (v SourceView) MissingFinalSeparator() (bool, error) {
	if v.src == nil {
		return false, ErrNoSource
	}
	return v.src.MissingFinalSeparator()
}
