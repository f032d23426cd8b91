package zim

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ByteSource provides random access to archive bytes.
//
// Implementations exist for local files (via Open) and HTTP range
// requests (the http subpackage). ReadAt must be safe for concurrent use
// when WithConcurrency is greater than one. SourceID must return a stable
// identifier for the underlying content.
type ByteSource interface {
	io.ReaderAt
	Size() int64
	SourceID() string
}

// fileSource wraps *os.File to implement ByteSource.
// os.File has ReadAt but not Size, so we cache the size at construction.
type fileSource struct {
	file     *os.File
	size     int64
	sourceID string
}

func newFileSource(f *os.File) (*fileSource, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	absPath, err := filepath.Abs(f.Name())
	if err != nil {
		absPath = f.Name()
	}
	return &fileSource{
		file:     f,
		size:     info.Size(),
		sourceID: fmt.Sprintf("file:%s:%d:%d", absPath, info.Size(), info.ModTime().UnixNano()),
	}, nil
}

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

func (s *fileSource) Size() int64 {
	return s.size
}

func (s *fileSource) SourceID() string {
	return s.sourceID
}

// Open decodes the archive at path.
//
// A missing file is reported before any decoding as an *fs.PathError
// matching fs.ErrNotExist. The returned Archive owns the file; call
// Close to release it.
func Open(path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := newFileSource(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	a, err := New(src, opts...)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	a.closer = f
	return a, nil
}
