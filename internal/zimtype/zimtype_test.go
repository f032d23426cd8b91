package zimtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		c     Compression
		valid bool
		name  string
	}{
		{0, false, "unknown"},
		{CompressionNone, true, "none"},
		{CompressionZip, true, "zip"},
		{CompressionBzip2, true, "bzip2"},
		{CompressionLzma, true, "lzma"},
		{CompressionZstd, true, "zstd"},
		{6, false, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.c.Valid(), "code %d", tt.c)
		assert.Equal(t, tt.name, tt.c.String(), "code %d", tt.c)
	}
}

func TestKindForMimeType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindRedirect, KindForMimeType(0xFFFF))
	assert.Equal(t, KindLinkTarget, KindForMimeType(0xFFFE))
	assert.Equal(t, KindDeleted, KindForMimeType(0xFFFD))
	assert.Equal(t, KindContent, KindForMimeType(0xFFFC))
	assert.Equal(t, KindContent, KindForMimeType(0))
	assert.Equal(t, "link-target", KindLinkTarget.String())
}

func TestHeaderMimeListEnd(t *testing.T) {
	t.Parallel()

	h := Header{PathPtrPos: 300, ClusterPtrPos: 200}
	assert.Equal(t, uint64(200), h.MimeListEnd())
	assert.False(t, h.HasTitleIndex())

	h.TitleIndexPos = 150
	assert.Equal(t, uint64(150), h.MimeListEnd())
	assert.True(t, h.HasTitleIndex())
}

func TestHeaderPages(t *testing.T) {
	t.Parallel()

	h := Header{MainPage: NoPage, LayoutPage: NoPage}
	assert.False(t, h.HasMainPage())
	assert.False(t, h.HasLayoutPage())

	h.MainPage = 0
	h.LayoutPage = 3
	assert.True(t, h.HasMainPage())
	assert.True(t, h.HasLayoutPage())
}

func TestClusterBlobs(t *testing.T) {
	t.Parallel()

	c := Cluster{Compression: CompressionNone, Offsets: []uint64{12, 22, 27}}
	assert.Equal(t, 4, c.OffsetWidth())
	assert.Equal(t, 2, c.BlobCount())

	start, end, err := c.BlobRange(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(22), start)
	assert.Equal(t, uint64(27), end)

	_, _, err = c.BlobRange(2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	decreasing := Cluster{Compression: CompressionNone, Offsets: []uint64{12, 30, 20}}
	_, ok := decreasing.BlobSize(1)
	assert.False(t, ok)

	single := Cluster{Compression: CompressionNone, Offsets: []uint64{2}}
	assert.Equal(t, 0, single.BlobCount())

	deferred := Cluster{Compression: CompressionZstd, Extended: true, Table: TableDeferred}
	assert.Equal(t, 8, deferred.OffsetWidth())
	assert.Equal(t, 0, deferred.BlobCount())
	_, ok = deferred.BlobSize(0)
	assert.False(t, ok)
	_, _, err = deferred.BlobRange(0)
	require.ErrorIs(t, err, ErrOffsetsDeferred)
	assert.Equal(t, "deferred", deferred.Table.String())
}

func TestDirentHelpers(t *testing.T) {
	t.Parallel()

	d := Dirent{Namespace: 0xE9, URL: "café", Data: DirentData{Kind: KindContent}}
	assert.Equal(t, 'é', d.NamespaceRune())
	assert.Equal(t, "café", d.EffectiveTitle())
	assert.True(t, d.IsContent())
	assert.False(t, d.IsRedirect())
	assert.False(t, d.IsLinkTarget())
	assert.False(t, d.IsDeleted())

	d.Title = "Cafe"
	assert.Equal(t, "Cafe", d.EffectiveTitle())
}
