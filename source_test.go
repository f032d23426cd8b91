package zim

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zim/internal/testutil"
)

func TestFileSource(t *testing.T) {
	t.Parallel()

	content := []byte("test file content")
	path := filepath.Join(t.TempDir(), "test.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	source, err := newFileSource(f)
	require.NoError(t, err)

	assert.Equal(t, int64(len(content)), source.Size())
	assert.True(t, strings.HasPrefix(source.SourceID(), "file:"))

	buf := make([]byte, 4)
	n, err := source.ReadAt(buf, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("file"), buf)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	data, layout := buildSample(t)
	path := filepath.Join(t.TempDir(), "sample.zim")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	a, err := Open(path, WithConcurrency(2))
	require.NoError(t, err)

	assert.Equal(t, layout.DirentPtrs, a.DirentPointers())
	d, err := a.MainPage()
	require.NoError(t, err)
	assert.Equal(t, "index.html", d.URL)

	require.NoError(t, a.Close())
	_, err = a.Dirent(0)
	require.Error(t, err, "reads after Close should fail")
}

func TestOpenNotFound(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "missing.zim"))
	require.ErrorIs(t, err, fs.ErrNotExist)

	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
}

func TestOpenInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.zim")
	require.NoError(t, os.WriteFile(path, make([]byte, HeaderSize), 0o644))

	_, err := Open(path)
	require.ErrorIs(t, err, ErrInvalidMagicNumber)
	assert.Contains(t, err.Error(), path)
}

func TestNewCloseWithoutFile(t *testing.T) {
	t.Parallel()

	data, _ := buildSample(t)
	a, err := New(testutil.NewMockByteSource(data))
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}
