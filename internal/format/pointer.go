package format

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	pointerSize = 8

	// pointerChunk bounds each read so the table grows only as data arrives.
	pointerChunk = 4096
)

// DecodePointerTable seeks to start and reads count little-endian u64
// offsets laid out back to back. Offsets are returned in file order.
func DecodePointerTable(r io.ReadSeeker, start uint64, count uint32) ([]uint64, error) {
	if err := seekTo(r, start); err != nil {
		return nil, err
	}

	total := int(count)
	ptrs := make([]uint64, 0, min(total, pointerChunk))
	buf := make([]byte, min(total, pointerChunk)*pointerSize)
	for len(ptrs) < total {
		n := min(total-len(ptrs), pointerChunk)
		chunk := buf[:n*pointerSize]
		if err := readFull(r, chunk); err != nil {
			return nil, fmt.Errorf("read pointer %d of %d at %d: %w", len(ptrs), total, start, err)
		}
		for i := range n {
			ptrs = append(ptrs, binary.LittleEndian.Uint64(chunk[i*pointerSize:]))
		}
	}
	return ptrs, nil
}
