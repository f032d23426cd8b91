package testutil

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/meigma/zim/internal/zimtype"
)

// TestCluster describes a cluster to encode.
type TestCluster struct {
	Compression zimtype.Compression
	Extended    bool
	Blobs       [][]byte

	// Raw, when non-nil, is written verbatim instead of encoding the fields above.
	Raw []byte
}

// TestDirent describes a dirent to encode.
type TestDirent struct {
	MimeType      uint16
	Namespace     byte
	Revision      uint32
	ClusterIndex  uint32
	BlobIndex     uint32
	RedirectIndex uint32
	URL           string
	Title         string
	Parameter     []byte
}

// TestArchive describes a whole archive to encode.
type TestArchive struct {
	MajorVersion uint16
	MinorVersion uint16
	UUID         [16]byte
	MimeTypes    []string
	Clusters     []TestCluster
	Dirents      []TestDirent
	MainPage     uint32
	LayoutPage   uint32
}

// Layout records where BuildArchive placed each section.
type Layout struct {
	MimeListPos   uint64
	PathPtrPos    uint64
	ClusterPtrPos uint64
	ChecksumPos   uint64
	DirentPtrs    []uint64
	ClusterPtrs   []uint64
}

// EncodeHeader serializes h into its 80-byte form.
func EncodeHeader(h *zimtype.Header) []byte {
	buf := make([]byte, zimtype.HeaderSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], h.MagicNumber)
	le.PutUint16(buf[4:6], h.MajorVersion)
	le.PutUint16(buf[6:8], h.MinorVersion)
	copy(buf[8:24], h.UUID[:])
	le.PutUint32(buf[24:28], h.ArticleCount)
	le.PutUint32(buf[28:32], h.ClusterCount)
	le.PutUint64(buf[32:40], h.PathPtrPos)
	le.PutUint64(buf[40:48], h.TitleIndexPos)
	le.PutUint64(buf[48:56], h.ClusterPtrPos)
	le.PutUint64(buf[56:64], h.MimeListPos)
	le.PutUint32(buf[64:68], h.MainPage)
	le.PutUint32(buf[68:72], h.LayoutPage)
	le.PutUint64(buf[72:80], h.ChecksumPos)
	return buf
}

// EncodeMimeList serializes MIME types as NUL-terminated strings followed
// by an empty entry.
func EncodeMimeList(mimes []string) []byte {
	var buf bytes.Buffer
	for _, m := range mimes {
		buf.WriteString(m)
		buf.WriteByte(0)
	}
	buf.WriteByte(0)
	return buf.Bytes()
}

// EncodeOffsetTable serializes the blob offset table and blob data of an
// uncompressed cluster payload.
func EncodeOffsetTable(blobs [][]byte, extended bool) []byte {
	width := 4
	if extended {
		width = 8
	}
	var buf bytes.Buffer
	off := uint64((len(blobs) + 1) * width)
	writeOffset(&buf, off, width)
	for _, b := range blobs {
		off += uint64(len(b))
		writeOffset(&buf, off, width)
	}
	for _, b := range blobs {
		buf.Write(b)
	}
	return buf.Bytes()
}

func writeOffset(buf *bytes.Buffer, v uint64, width int) {
	var tmp [8]byte
	if width == 8 {
		binary.LittleEndian.PutUint64(tmp[:], v)
	} else {
		binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	}
	buf.Write(tmp[:width])
}

// EncodeCluster serializes a cluster: tag byte then payload, compressed
// with the cluster's codec. Bzip2 has no encoder available and is
// written uncompressed, which is only useful for deferred-state tests.
func EncodeCluster(tb testing.TB, c TestCluster) []byte {
	tb.Helper()
	if c.Raw != nil {
		return c.Raw
	}
	tag := byte(c.Compression)
	if c.Extended {
		tag |= 0x10
	}
	payload := EncodeOffsetTable(c.Blobs, c.Extended)

	var out bytes.Buffer
	out.WriteByte(tag)
	switch c.Compression {
	case zimtype.CompressionZstd:
		enc, err := zstd.NewWriter(&out)
		if err != nil {
			tb.Fatalf("zstd writer: %v", err)
		}
		writeAndClose(tb, enc, payload)
	case zimtype.CompressionZip:
		writeAndClose(tb, zlib.NewWriter(&out), payload)
	case zimtype.CompressionLzma:
		enc, err := xz.NewWriter(&out)
		if err != nil {
			tb.Fatalf("xz writer: %v", err)
		}
		writeAndClose(tb, enc, payload)
	default:
		out.Write(payload)
	}
	return out.Bytes()
}

type writeCloser interface {
	Write(p []byte) (int, error)
	Close() error
}

func writeAndClose(tb testing.TB, w writeCloser, payload []byte) {
	tb.Helper()
	if _, err := w.Write(payload); err != nil {
		tb.Fatalf("compress cluster: %v", err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("close compressor: %v", err)
	}
}

// EncodeDirent serializes a dirent. The payload written depends on MimeType.
func EncodeDirent(d TestDirent) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	var prefix [8]byte
	le.PutUint16(prefix[0:2], d.MimeType)
	prefix[2] = byte(len(d.Parameter))
	prefix[3] = d.Namespace
	le.PutUint32(prefix[4:8], d.Revision)
	buf.Write(prefix[:])

	var tmp [4]byte
	switch zimtype.KindForMimeType(d.MimeType) {
	case zimtype.KindRedirect:
		le.PutUint32(tmp[:], d.RedirectIndex)
		buf.Write(tmp[:])
	case zimtype.KindContent:
		le.PutUint32(tmp[:], d.ClusterIndex)
		buf.Write(tmp[:])
		le.PutUint32(tmp[:], d.BlobIndex)
		buf.Write(tmp[:])
	}
	buf.WriteString(d.URL)
	buf.WriteByte(0)
	buf.WriteString(d.Title)
	buf.WriteByte(0)
	buf.Write(d.Parameter)
	return buf.Bytes()
}

// BuildArchive lays out a complete archive:
// header, MIME list, dirent pointer table, cluster pointer table,
// dirents, clusters and a 16-byte checksum area.
func BuildArchive(tb testing.TB, a TestArchive) ([]byte, Layout) {
	tb.Helper()

	mimeList := EncodeMimeList(a.MimeTypes)
	dirents := make([][]byte, len(a.Dirents))
	for i, d := range a.Dirents {
		dirents[i] = EncodeDirent(d)
	}
	clusters := make([][]byte, len(a.Clusters))
	for i, c := range a.Clusters {
		clusters[i] = EncodeCluster(tb, c)
	}

	var l Layout
	l.MimeListPos = zimtype.HeaderSize
	l.PathPtrPos = l.MimeListPos + uint64(len(mimeList))
	l.ClusterPtrPos = l.PathPtrPos + uint64(8*len(dirents))
	pos := l.ClusterPtrPos + uint64(8*len(clusters))
	for _, d := range dirents {
		l.DirentPtrs = append(l.DirentPtrs, pos)
		pos += uint64(len(d))
	}
	for _, c := range clusters {
		l.ClusterPtrs = append(l.ClusterPtrs, pos)
		pos += uint64(len(c))
	}
	l.ChecksumPos = pos

	h := &zimtype.Header{
		MagicNumber:   zimtype.MagicNumber,
		MajorVersion:  a.MajorVersion,
		MinorVersion:  a.MinorVersion,
		UUID:          a.UUID,
		ArticleCount:  uint32(len(dirents)),
		ClusterCount:  uint32(len(clusters)),
		PathPtrPos:    l.PathPtrPos,
		ClusterPtrPos: l.ClusterPtrPos,
		MimeListPos:   l.MimeListPos,
		MainPage:      a.MainPage,
		LayoutPage:    a.LayoutPage,
		ChecksumPos:   l.ChecksumPos,
	}

	var out bytes.Buffer
	out.Write(EncodeHeader(h))
	out.Write(mimeList)
	for _, p := range l.DirentPtrs {
		writeOffset(&out, p, 8)
	}
	for _, p := range l.ClusterPtrs {
		writeOffset(&out, p, 8)
	}
	for _, d := range dirents {
		out.Write(d)
	}
	for _, c := range clusters {
		out.Write(c)
	}
	out.Write(make([]byte, 16))
	return out.Bytes(), l
}

// SampleArchive returns a small archive exercising every dirent kind,
// an uncompressed cluster, an extended cluster and a zstd cluster.
func SampleArchive() TestArchive {
	return TestArchive{
		MajorVersion: 6,
		MinorVersion: 1,
		UUID:         [16]byte{0: 0xde, 1: 0xad, 2: 0xbe, 3: 0xef, 15: 0x01},
		MimeTypes:    []string{"text/html", "image/png", "text/css"},
		Clusters: []TestCluster{
			{Compression: zimtype.CompressionNone, Blobs: [][]byte{[]byte("<p>hello</p>"), []byte("body{}")}},
			{Compression: zimtype.CompressionNone, Extended: true, Blobs: [][]byte{[]byte("PNG....")}},
			{Compression: zimtype.CompressionZstd, Blobs: [][]byte{[]byte("compressed one"), []byte("two")}},
		},
		Dirents: []TestDirent{
			{MimeType: 0, Namespace: 'C', Revision: 1, ClusterIndex: 0, BlobIndex: 0, URL: "index.html", Title: "Home"},
			{MimeType: 2, Namespace: 'C', ClusterIndex: 0, BlobIndex: 1, URL: "style.css"},
			{MimeType: 1, Namespace: 'C', ClusterIndex: 1, BlobIndex: 0, URL: "logo.png", Title: "Logo", Parameter: []byte{1, 2, 3}},
			{MimeType: zimtype.RedirectMimeType, Namespace: 'C', RedirectIndex: 0, URL: "home", Title: "Home (redirect)"},
			{MimeType: zimtype.LinkTargetMimeType, Namespace: 'C', URL: "anchor"},
			{MimeType: zimtype.DeletedMimeType, Namespace: 'C', URL: "gone", Title: "Gone"},
			{MimeType: 0, Namespace: 'C', ClusterIndex: 2, BlobIndex: 1, URL: "packed.html"},
		},
		MainPage:   0,
		LayoutPage: zimtype.NoPage,
	}
}
