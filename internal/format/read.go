package format

import (
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/meigma/zim/internal/zimtype"
)

// shortRead converts end-of-stream errors into ErrShortRead.
func shortRead(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", zimtype.ErrShortRead, err)
	}
	return err
}

// readFull fills buf from r.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return shortRead(err)
	}
	return nil
}

// seekTo positions r at the absolute offset off.
func seekTo(r io.Seeker, off uint64) error {
	if off > math.MaxInt64 {
		return fmt.Errorf("%w: offset %d out of range", zimtype.ErrShortRead, off)
	}
	if _, err := r.Seek(int64(off), io.SeekStart); err != nil {
		return fmt.Errorf("seek to %d: %w", off, err)
	}
	return nil
}

// readCString reads bytes up to and including a NUL terminator and
// returns them, without the terminator, as a UTF-8 string.
func readCString(r io.Reader) (string, error) {
	var out []byte
	if br, ok := r.(io.ByteReader); ok {
		for {
			b, err := br.ReadByte()
			if err != nil {
				return "", shortRead(err)
			}
			if b == 0 {
				break
			}
			out = append(out, b)
		}
	} else {
		var one [1]byte
		for {
			if err := readFull(r, one[:]); err != nil {
				return "", err
			}
			if one[0] == 0 {
				break
			}
			out = append(out, one[0])
		}
	}
	if !utf8.Valid(out) {
		return "", fmt.Errorf("%w: %q", zimtype.ErrInvalidUTF8, out)
	}
	return string(out), nil
}
