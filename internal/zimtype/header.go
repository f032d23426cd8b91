package zimtype

import (
	"encoding/hex"
	"fmt"
)

const (
	// MagicNumber is the little-endian value of the first four header bytes.
	MagicNumber uint32 = 0x044D495A

	// HeaderSize is the fixed size of the archive header in bytes.
	HeaderSize = 80

	// NoPage is the all-ones sentinel used by the main-page and layout-page fields.
	NoPage uint32 = 0xFFFFFFFF
)

// Header is the fixed 80-byte archive header.
//
// All position fields are absolute byte offsets into the archive.
type Header struct {
	MagicNumber   uint32
	MajorVersion  uint16
	MinorVersion  uint16
	UUID          [16]byte
	ArticleCount  uint32
	ClusterCount  uint32
	PathPtrPos    uint64
	TitleIndexPos uint64
	ClusterPtrPos uint64
	MimeListPos   uint64
	MainPage      uint32
	LayoutPage    uint32
	ChecksumPos   uint64
}

// Version returns the format version as "major.minor".
func (h *Header) Version() string {
	return fmt.Sprintf("%d.%d", h.MajorVersion, h.MinorVersion)
}

// UUIDString returns the archive identifier as lowercase hex.
func (h *Header) UUIDString() string {
	return hex.EncodeToString(h.UUID[:])
}

// HasMainPage reports whether the header names a main page.
func (h *Header) HasMainPage() bool {
	return h.MainPage != NoPage
}

// HasLayoutPage reports whether the layout-page field differs from the sentinel.
func (h *Header) HasLayoutPage() bool {
	return h.LayoutPage != NoPage
}

// HasTitleIndex reports whether the header records a title index position.
func (h *Header) HasTitleIndex() bool {
	return h.TitleIndexPos != 0
}

// MimeListEnd returns the exclusive end of the MIME list region: the
// smallest of the path pointer, cluster pointer and (when set) title
// index positions.
func (h *Header) MimeListEnd() uint64 {
	end := min(h.PathPtrPos, h.ClusterPtrPos)
	if h.TitleIndexPos != 0 {
		end = min(end, h.TitleIndexPos)
	}
	return end
}
