package textdiff

import (
	"bytes"
	"io"
	"os"
	"time"
)

// FileProvider reads a source from the file system.
type FileProvider struct {
	Path string
}

var _ ByteProvider = &FileProvider{}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (p *FileProvider) Open() (io.ReadCloser, error) {
	return os.Open(p.Path)
}

func (p *FileProvider) Name() string {
	return p.Path
}

// ModTime returns the zero time if the file cannot be stat'ed.
func (p *FileProvider) ModTime() time.Time {
	info, err := os.Stat(p.Path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// MemoryProvider serves a fixed byte slice.
type MemoryProvider struct {
	name    string
	data    []byte
	modTime time.Time
}

var _ ByteProvider = &MemoryProvider{}

func NewMemoryProvider(name string, data []byte) *MemoryProvider {
	return &MemoryProvider{name: name, data: data, modTime: time.Now()}
}

func (p *MemoryProvider) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(p.data)), nil
}

func (p *MemoryProvider) Name() string {
	return p.name
}

func (p *MemoryProvider) ModTime() time.Time {
	return p.modTime
}
