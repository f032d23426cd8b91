package format

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zim/internal/testutil"
	"github.com/meigma/zim/internal/zimtype"
)

func sampleHeader() *zimtype.Header {
	return &zimtype.Header{
		MagicNumber:   zimtype.MagicNumber,
		MajorVersion:  6,
		MinorVersion:  3,
		UUID:          [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		ArticleCount:  42,
		ClusterCount:  7,
		PathPtrPos:    0x1000,
		TitleIndexPos: 0x2000,
		ClusterPtrPos: 0x3000,
		MimeListPos:   80,
		MainPage:      3,
		LayoutPage:    zimtype.NoPage,
		ChecksumPos:   0x9000,
	}
}

func TestDecodeHeader(t *testing.T) {
	t.Parallel()

	want := sampleHeader()
	r := bytes.NewReader(append(testutil.EncodeHeader(want), 0xAA, 0xBB))

	got, err := DecodeHeader(r)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 2, r.Len(), "header must consume exactly 80 bytes")
	assert.Equal(t, "6.3", got.Version())
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", got.UUIDString())
	assert.True(t, got.HasMainPage())
	assert.False(t, got.HasLayoutPage())
	assert.True(t, got.HasTitleIndex())
}

func TestDecodeHeader_InvalidMagic(t *testing.T) {
	t.Parallel()

	for _, magic := range [][]byte{
		{0, 0, 0, 0},
		{'Z', 'I', 'M', 0x05},
		{0x04, 'M', 'I', 'Z'},
	} {
		buf := testutil.EncodeHeader(sampleHeader())
		copy(buf, magic)
		_, err := DecodeHeader(bytes.NewReader(buf))
		require.ErrorIs(t, err, zimtype.ErrInvalidMagicNumber, "magic %x", magic)
	}
}

func TestDecodeHeader_ShortRead(t *testing.T) {
	t.Parallel()

	buf := testutil.EncodeHeader(sampleHeader())
	for _, n := range []int{0, 3, 4, 79} {
		_, err := DecodeHeader(bytes.NewReader(buf[:n]))
		require.ErrorIs(t, err, zimtype.ErrShortRead, "length %d", n)
		assert.NotErrorIs(t, err, zimtype.ErrInvalidMagicNumber)
	}
}
