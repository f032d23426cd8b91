package zimtype

// TableState records whether a cluster's blob-offset table was decoded.
type TableState uint8

const (
	// TableDecoded means Offsets holds the cluster's complete offset table.
	TableDecoded TableState = iota

	// TableDeferred means the cluster is compressed and its offset table
	// was not decoded. Offsets is empty.
	TableDeferred
)

// String returns the name of the table state.
func (s TableState) String() string {
	switch s {
	case TableDecoded:
		return "decoded"
	case TableDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// Cluster describes one cluster: its compression, offset width and,
// when decoded, the table of blob offsets relative to the start of the
// (uncompressed) cluster payload.
type Cluster struct {
	Compression Compression
	Extended    bool
	Table       TableState
	Offsets     []uint64
}

// Deferred reports whether the offset table was left undecoded.
func (c *Cluster) Deferred() bool {
	return c.Table == TableDeferred
}

// OffsetWidth returns the size in bytes of one offset table element.
func (c *Cluster) OffsetWidth() int {
	if c.Extended {
		return 8
	}
	return 4
}

// BlobCount returns the number of blobs bounded by the offset table.
// An N-entry table bounds N-1 blobs.
func (c *Cluster) BlobCount() int {
	if len(c.Offsets) == 0 {
		return 0
	}
	return len(c.Offsets) - 1
}

// BlobSize returns the size of blob i.
// ok is false when the cluster has no blob i, including deferred clusters,
// and when the offsets bounding blob i decrease.
func (c *Cluster) BlobSize(i int) (size uint64, ok bool) {
	if i < 0 || i+1 >= len(c.Offsets) || c.Offsets[i+1] < c.Offsets[i] {
		return 0, false
	}
	return c.Offsets[i+1] - c.Offsets[i], true
}

// BlobRange returns the [start, end) offsets of blob i within the
// cluster payload. It returns ErrOffsetsDeferred for deferred clusters
// and ErrIndexOutOfRange when the blob does not exist.
func (c *Cluster) BlobRange(i int) (start, end uint64, err error) {
	if c.Deferred() {
		return 0, 0, ErrOffsetsDeferred
	}
	if i < 0 || i+1 >= len(c.Offsets) {
		return 0, 0, ErrIndexOutOfRange
	}
	return c.Offsets[i], c.Offsets[i+1], nil
}
