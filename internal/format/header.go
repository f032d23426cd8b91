package format

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/zim/internal/zimtype"
)

// DecodeHeader reads the 80-byte archive header from r.
//
// r must be positioned at the start of the archive. The magic number is
// checked before any other field is interpreted.
func DecodeHeader(r io.Reader) (*zimtype.Header, error) {
	var buf [zimtype.HeaderSize]byte
	if err := readFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	le := binary.LittleEndian
	magic := le.Uint32(buf[0:4])
	if magic != zimtype.MagicNumber {
		return nil, fmt.Errorf("%w: 0x%08x", zimtype.ErrInvalidMagicNumber, magic)
	}

	h := &zimtype.Header{
		MagicNumber:   magic,
		MajorVersion:  le.Uint16(buf[4:6]),
		MinorVersion:  le.Uint16(buf[6:8]),
		ArticleCount:  le.Uint32(buf[24:28]),
		ClusterCount:  le.Uint32(buf[28:32]),
		PathPtrPos:    le.Uint64(buf[32:40]),
		TitleIndexPos: le.Uint64(buf[40:48]),
		ClusterPtrPos: le.Uint64(buf[48:56]),
		MimeListPos:   le.Uint64(buf[56:64]),
		MainPage:      le.Uint32(buf[64:68]),
		LayoutPage:    le.Uint32(buf[68:72]),
		ChecksumPos:   le.Uint64(buf[72:80]),
	}
	copy(h.UUID[:], buf[8:24])
	return h, nil
}
