package format

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zim/internal/zimtype"
)

func mimeHeader(start, end uint64) *zimtype.Header {
	return &zimtype.Header{
		MimeListPos:   start,
		PathPtrPos:    end,
		ClusterPtrPos: end + 100,
	}
}

func TestDecodeMimeList(t *testing.T) {
	t.Parallel()

	prefix := []byte("junk")
	list := []byte("text/html\x00image/png\x00")
	data := append(append([]byte{}, prefix...), list...)
	data = append(data, "trailing"...)

	r := bytes.NewReader(data)
	mimes, err := DecodeMimeList(r, mimeHeader(4, 24))
	require.NoError(t, err)
	assert.Equal(t, []string{"text/html", "image/png"}, mimes)
	assert.Equal(t, len("trailing"), r.Len(), "reader must stop at the region end")
}

func TestMimeListBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  zimtype.Header
		wantEnd uint64
		wantErr error
	}{
		{
			name:    "path pointer is smallest",
			header:  zimtype.Header{MimeListPos: 80, PathPtrPos: 120, ClusterPtrPos: 200, TitleIndexPos: 300},
			wantEnd: 120,
		},
		{
			name:    "cluster pointer is smallest",
			header:  zimtype.Header{MimeListPos: 80, PathPtrPos: 500, ClusterPtrPos: 200},
			wantEnd: 200,
		},
		{
			name:    "title index is smallest",
			header:  zimtype.Header{MimeListPos: 80, PathPtrPos: 500, ClusterPtrPos: 400, TitleIndexPos: 100},
			wantEnd: 100,
		},
		{
			name:    "zero title index is ignored",
			header:  zimtype.Header{MimeListPos: 80, PathPtrPos: 500, ClusterPtrPos: 400},
			wantEnd: 400,
		},
		{
			name:    "empty region",
			header:  zimtype.Header{MimeListPos: 80, PathPtrPos: 80, ClusterPtrPos: 400},
			wantErr: zimtype.ErrInvalidMimeListBounds,
		},
		{
			name:    "inverted region",
			header:  zimtype.Header{MimeListPos: 300, PathPtrPos: 200, ClusterPtrPos: 400},
			wantErr: zimtype.ErrInvalidMimeListBounds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			start, end, err := MimeListBounds(&tt.header)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.header.MimeListPos, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestParseMimeList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    []string
		wantErr error
	}{
		{name: "exact region", data: "text/html\x00image/png\x00", want: []string{"text/html", "image/png"}},
		{name: "empty entry terminates", data: "text/html\x00\x00image/png\x00", want: []string{"text/html"}},
		{name: "padding after terminator", data: "a/b\x00\x00\x00\x00", want: []string{"a/b"}},
		{name: "leading null", data: "\x00text/html\x00", want: nil},
		{name: "unterminated entry", data: "text/html\x00image/pn", wantErr: zimtype.ErrMimeListNotTerminated},
		{name: "invalid utf-8", data: "text/\xff\x00", wantErr: zimtype.ErrInvalidUTF8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseMimeList([]byte(tt.data))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeMimeList_ShortRead(t *testing.T) {
	t.Parallel()

	data := []byte("text/html\x00")
	_, err := DecodeMimeList(bytes.NewReader(data), mimeHeader(0, 1<<40))
	require.ErrorIs(t, err, zimtype.ErrShortRead)
}

func TestDecodeMimeList_InvalidBounds(t *testing.T) {
	t.Parallel()

	_, err := DecodeMimeList(bytes.NewReader(nil), mimeHeader(10, 10))
	require.ErrorIs(t, err, zimtype.ErrInvalidMimeListBounds)
}
