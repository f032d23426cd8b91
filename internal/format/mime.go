package format

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/meigma/zim/internal/zimtype"
)

// MimeListBounds returns the [start, end) region holding the MIME list.
func MimeListBounds(h *zimtype.Header) (start, end uint64, err error) {
	start = h.MimeListPos
	end = h.MimeListEnd()
	if end <= start {
		return 0, 0, fmt.Errorf("%w: start %d, end %d", zimtype.ErrInvalidMimeListBounds, start, end)
	}
	return start, end, nil
}

// DecodeMimeList seeks to the MIME list described by h, reads the whole
// bounded region and splits it into MIME type strings.
//
// On success r is positioned at the end of the region.
func DecodeMimeList(r io.ReadSeeker, h *zimtype.Header) ([]string, error) {
	start, end, err := MimeListBounds(h)
	if err != nil {
		return nil, err
	}
	if err := seekTo(r, start); err != nil {
		return nil, err
	}

	size := end - start
	if size > math.MaxInt64 {
		return nil, fmt.Errorf("%w: mime list of %d bytes", zimtype.ErrShortRead, size)
	}
	// Grow with the data actually present so a corrupt end offset cannot
	// force a huge allocation before the short read is detected.
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, int64(size))
	if err != nil {
		return nil, fmt.Errorf("read mime list (%d of %d bytes): %w", n, size, shortRead(err))
	}
	return ParseMimeList(buf.Bytes())
}

// ParseMimeList splits a NUL-separated MIME list.
//
// Scanning stops at an empty entry (a NUL at the cursor) or at the end of
// data. A non-empty entry without a terminating NUL is an error.
func ParseMimeList(data []byte) ([]string, error) {
	var mimes []string
	for pos := 0; pos < len(data); {
		if data[pos] == 0 {
			break
		}
		n := bytes.IndexByte(data[pos:], 0)
		if n < 0 {
			return nil, fmt.Errorf("%w: entry at byte %d", zimtype.ErrMimeListNotTerminated, pos)
		}
		entry := data[pos : pos+n]
		if !utf8.Valid(entry) {
			return nil, fmt.Errorf("%w: mime type %q", zimtype.ErrInvalidUTF8, entry)
		}
		mimes = append(mimes, string(entry))
		pos += n + 1
	}
	return mimes, nil
}
