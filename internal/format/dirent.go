package format

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/zim/internal/zimtype"
)

const direntPrefixSize = 8

// DecodeDirent reads one directory entry starting at its first byte.
//
// The variant payload is selected by the MIME-type code. For content
// dirents the code is not checked against the archive MIME list.
func DecodeDirent(r io.Reader) (*zimtype.Dirent, error) {
	var prefix [direntPrefixSize]byte
	if err := readFull(r, prefix[:]); err != nil {
		return nil, fmt.Errorf("read dirent prefix: %w", err)
	}

	le := binary.LittleEndian
	d := &zimtype.Dirent{
		MimeType:  le.Uint16(prefix[0:2]),
		ExtraLen:  prefix[2],
		Namespace: prefix[3],
		Revision:  le.Uint32(prefix[4:8]),
	}

	data, err := decodeDirentData(r, d.MimeType)
	if err != nil {
		return nil, err
	}
	d.Data = data

	if d.URL, err = readCString(r); err != nil {
		return nil, fmt.Errorf("read dirent url: %w", err)
	}
	if d.Title, err = readCString(r); err != nil {
		return nil, fmt.Errorf("read dirent title for %q: %w", d.URL, err)
	}

	d.Parameter = make([]byte, d.ExtraLen)
	if d.ExtraLen > 0 {
		if err := readFull(r, d.Parameter); err != nil {
			return nil, fmt.Errorf("read dirent parameter for %q: %w", d.URL, err)
		}
	}
	return d, nil
}

func decodeDirentData(r io.Reader, mimeType uint16) (zimtype.DirentData, error) {
	le := binary.LittleEndian
	kind := zimtype.KindForMimeType(mimeType)
	switch kind {
	case zimtype.KindRedirect:
		var buf [4]byte
		if err := readFull(r, buf[:]); err != nil {
			return zimtype.DirentData{}, fmt.Errorf("read redirect index: %w", err)
		}
		return zimtype.DirentData{Kind: kind, RedirectIndex: le.Uint32(buf[:])}, nil
	case zimtype.KindContent:
		var buf [8]byte
		if err := readFull(r, buf[:]); err != nil {
			return zimtype.DirentData{}, fmt.Errorf("read content location: %w", err)
		}
		return zimtype.DirentData{
			Kind:         kind,
			ClusterIndex: le.Uint32(buf[0:4]),
			BlobIndex:    le.Uint32(buf[4:8]),
		}, nil
	default:
		return zimtype.DirentData{Kind: kind}, nil
	}
}

// DecodeDirentAt seeks r to the absolute offset off and decodes the
// dirent found there.
func DecodeDirentAt(r io.ReadSeeker, off uint64) (*zimtype.Dirent, error) {
	if err := seekTo(r, off); err != nil {
		return nil, err
	}
	return DecodeDirent(r)
}
