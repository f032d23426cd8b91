package zimtype

// Compression identifies the codec used for a cluster payload.
//
// The numeric values are the low nibble of the cluster tag byte.
type Compression uint8

const (
	CompressionNone  Compression = 1
	CompressionZip   Compression = 2
	CompressionBzip2 Compression = 3
	CompressionLzma  Compression = 4
	CompressionZstd  Compression = 5
)

// Valid reports whether c is one of the known compression codes.
func (c Compression) Valid() bool {
	return c >= CompressionNone && c <= CompressionZstd
}

// String returns the human-readable name of the compression algorithm.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZip:
		return "zip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionLzma:
		return "lzma"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}
