// Package decompress opens the payload stream of a compressed cluster.
package decompress

import (
	"bufio"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/meigma/zim/internal/zimtype"
)

// DefaultMaxDecoderMemory is the default zstd decoder memory limit (256MB).
const DefaultMaxDecoderMemory = 256 << 20

// Open returns a reader over the decompressed payload read from r.
// r must be positioned just after the cluster tag byte. The release
// function must be called once the reader is no longer used.
//
// Decoder setup and read failures wrap ErrDecompression, including a
// compressed stream that ends before its codec expects. A clean end of
// the decompressed data is still io.EOF.
func (p *Pool) Open(c zimtype.Compression, r io.Reader) (io.Reader, func(), error) {
	var (
		dec     io.Reader
		release = func() {}
		err     error
	)
	switch c {
	case zimtype.CompressionNone:
		return r, release, nil
	case zimtype.CompressionZstd:
		dec, release, err = p.zstdReader(r)
	case zimtype.CompressionZip:
		dec, release, err = p.zlibReader(r)
	case zimtype.CompressionLzma:
		dec, err = xz.NewReader(bufio.NewReader(r))
	case zimtype.CompressionBzip2:
		dec = bzip2.NewReader(r)
	default:
		return nil, nil, fmt.Errorf("%w: %d", zimtype.ErrInvalidCompression, c)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", zimtype.ErrDecompression, c, err)
	}
	return &codecReader{r: dec, c: c}, release, nil
}

// codecReader labels codec failures with ErrDecompression. A stream cut
// short is reported without chaining io.ErrUnexpectedEOF so it is not
// mistaken for a short read of the decompressed data.
type codecReader struct {
	r io.Reader
	c zimtype.Compression
}

func (cr *codecReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	switch {
	case err == nil, err == io.EOF, errors.Is(err, zimtype.ErrDecompression):
	case errors.Is(err, io.ErrUnexpectedEOF):
		err = fmt.Errorf("%w: %s: truncated stream", zimtype.ErrDecompression, cr.c)
	default:
		err = fmt.Errorf("%w: %s: %w", zimtype.ErrDecompression, cr.c, err)
	}
	return n, err
}
