package testutil

import "github.com/meigma/zim/internal/zimtype"

// Bzip2Blobs are the blobs encoded in Bzip2Payload.
var Bzip2Blobs = [][]byte{[]byte("abc"), []byte("defg")}

// Bzip2Payload is EncodeOffsetTable(Bzip2Blobs, false) compressed with
// bzip2 (block size 900k). No bzip2 encoder is available to the tests,
// so the stream is checked in.
var Bzip2Payload = []byte{
	0x42, 0x5a, 0x68, 0x39, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0xb3, 0x48, 0xf1, 0x53, 0x00, 0x00,
	0x04, 0xe1, 0x00, 0x40, 0x04, 0x88, 0x00, 0x3f, 0x80, 0x20, 0x00, 0x22, 0x1a, 0x68, 0x0d, 0x08,
	0x06, 0x9a, 0x68, 0x10, 0x4b, 0x3a, 0x0f, 0x57, 0x9b, 0xcb, 0xc5, 0xdc, 0x91, 0x4e, 0x14, 0x24,
	0x2c, 0xd2, 0x3c, 0x54, 0xc0,
}

// Bzip2Cluster returns a bzip2 cluster holding Bzip2Blobs.
// Its offset table decodes to [12, 15, 19].
func Bzip2Cluster() TestCluster {
	raw := append([]byte{byte(zimtype.CompressionBzip2)}, Bzip2Payload...)
	return TestCluster{Compression: zimtype.CompressionBzip2, Blobs: Bzip2Blobs, Raw: raw}
}
