// Package testutil builds synthetic archives and in-memory byte sources for tests.
package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync/atomic"
)

// MockByteSource implements a simple in-memory byte source for tests.
type MockByteSource struct {
	data     []byte
	sourceID string
	reads    atomic.Int64
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	sum := sha256.Sum256(data)
	return &MockByteSource{
		data:     data,
		sourceID: "mock:" + hex.EncodeToString(sum[:]),
	}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	m.reads.Add(1)
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// SourceID returns a stable identifier for the source data.
func (m *MockByteSource) SourceID() string {
	return m.sourceID
}

// Reads returns the number of ReadAt calls served so far.
func (m *MockByteSource) Reads() int64 {
	return m.reads.Load()
}

// Bytes returns the backing slice for tests that need to mutate data.
func (m *MockByteSource) Bytes() []byte {
	return m.data
}
