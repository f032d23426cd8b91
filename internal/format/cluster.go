package format

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/zim/internal/zimtype"
)

const (
	// MaxBlobs caps the offset table size derived from the first offset.
	// It guards allocation against corrupt input and is not a format limit.
	MaxBlobs = 1_000_000

	compressionMask = 0x0F
	extendedFlag    = 0x10
)

// DecodeClusterTag splits a cluster tag byte into compression and extended flag.
func DecodeClusterTag(tag byte) (zimtype.Compression, bool, error) {
	c := zimtype.Compression(tag & compressionMask)
	if !c.Valid() {
		return 0, false, fmt.Errorf("%w: %d", zimtype.ErrInvalidCompression, c)
	}
	return c, tag&extendedFlag != 0, nil
}

// DecodeCluster reads a cluster starting at its tag byte.
//
// For uncompressed clusters the offset table that follows the tag is
// decoded and r is left at the first blob byte. For compressed clusters
// only the tag is consumed and the cluster is returned in the
// TableDeferred state; the table sits inside the compressed payload.
func DecodeCluster(r io.Reader) (*zimtype.Cluster, error) {
	var tag [1]byte
	if err := readFull(r, tag[:]); err != nil {
		return nil, fmt.Errorf("read cluster tag: %w", err)
	}
	compression, extended, err := DecodeClusterTag(tag[0])
	if err != nil {
		return nil, err
	}

	c := &zimtype.Cluster{
		Compression: compression,
		Extended:    extended,
	}
	switch compression {
	case zimtype.CompressionNone:
		offsets, err := DecodeOffsetTable(r, extended)
		if err != nil {
			return nil, err
		}
		c.Table = zimtype.TableDecoded
		c.Offsets = offsets
	default:
		c.Table = zimtype.TableDeferred
	}
	return c, nil
}

// DecodeOffsetTable reads a self-describing blob offset table from r.
//
// Elements are 8 bytes wide when extended, otherwise 4 bytes, and are
// widened to uint64. The first element divided by the element width is
// the number of elements in the table. The first element is always
// returned, so a table whose first offset is smaller than one element
// decodes to that single offset.
func DecodeOffsetTable(r io.Reader, extended bool) ([]uint64, error) {
	width := 4
	if extended {
		width = 8
	}

	first, err := readOffset(r, width)
	if err != nil {
		return nil, fmt.Errorf("read first blob offset: %w", err)
	}
	count := first / uint64(width)
	if count > MaxBlobs {
		return nil, fmt.Errorf("%w: %d", zimtype.ErrTooManyBlobs, count)
	}

	total := int(max(count, 1))
	offsets := make([]uint64, 1, min(total, pointerChunk))
	offsets[0] = first
	if total == 1 {
		return offsets, nil
	}

	buf := make([]byte, min(total-1, pointerChunk)*width)
	for len(offsets) < total {
		n := min(total-len(offsets), pointerChunk)
		chunk := buf[:n*width]
		if err := readFull(r, chunk); err != nil {
			return nil, fmt.Errorf("read blob offset %d of %d: %w", len(offsets), total, err)
		}
		for i := 0; i < len(chunk); i += width {
			offsets = append(offsets, widen(chunk[i:i+width]))
		}
	}
	return offsets, nil
}

func readOffset(r io.Reader, width int) (uint64, error) {
	var buf [8]byte
	if err := readFull(r, buf[:width]); err != nil {
		return 0, err
	}
	return widen(buf[:width]), nil
}

func widen(b []byte) uint64 {
	if len(b) == 8 {
		return binary.LittleEndian.Uint64(b)
	}
	return uint64(binary.LittleEndian.Uint32(b))
}

// DecodeClusterAt seeks r to the absolute offset off and decodes the
// cluster found there. See DecodeCluster for the position r is left at.
func DecodeClusterAt(r io.ReadSeeker, off uint64) (*zimtype.Cluster, error) {
	if err := seekTo(r, off); err != nil {
		return nil, err
	}
	return DecodeCluster(r)
}
