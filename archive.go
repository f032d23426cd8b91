package zim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/zim/cache"
	"github.com/meigma/zim/internal/decompress"
	"github.com/meigma/zim/internal/format"
	"github.com/meigma/zim/internal/zimtype"
)

const (
	// MimeListWarnSize is the MIME list region size above which a warning
	// is logged. The size is not enforced.
	MimeListWarnSize = 64 << 10

	// direntReadAhead is the buffer size used when decoding one dirent.
	direntReadAhead = 512
)

// Archive is a decoded archive: header, MIME types, pointer tables and
// cluster offset tables. It is immutable once constructed and safe for
// concurrent use.
type Archive struct {
	source          ByteSource
	closer          io.Closer
	header          Header
	mimeTypes       []string
	clusterPointers []uint64
	clusters        []Cluster
	direntPointers  []uint64

	concurrency           int
	decompressClusters    bool
	maxDecoderMemory      uint64
	decoderConcurrencySet bool
	decoderConcurrency    int
	decoderLowmemSet      bool
	decoderLowmem         bool
	decoders              *decompress.Pool
	direntCacheSize       int
	dirents               *direntCache
	blockCache            *cache.BlockCache
	blockCacheOpts        []cache.WrapOption
	logger                *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// New decodes the archive held by source.
//
// Decoding runs in a fixed order: header, MIME list, cluster pointer
// table, every cluster's offset table, dirent pointer table. The first
// failure aborts construction and no Archive is returned.
func New(source ByteSource, opts ...Option) (*Archive, error) {
	if source == nil {
		return nil, errors.New("zim: nil source")
	}
	a := &Archive{
		concurrency:      1,
		maxDecoderMemory: decompress.DefaultMaxDecoderMemory,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.blockCache != nil {
		wrapped, err := a.blockCache.Wrap(source, a.blockCacheOpts...)
		if err != nil {
			return nil, err
		}
		source = wrapped
	}
	a.source = source

	if a.decompressClusters {
		poolOpts := []decompress.PoolOption{decompress.WithMaxMemory(a.maxDecoderMemory)}
		if a.decoderConcurrencySet {
			poolOpts = append(poolOpts, decompress.WithDecoderConcurrency(a.decoderConcurrency))
		}
		if a.decoderLowmemSet {
			poolOpts = append(poolOpts, decompress.WithDecoderLowmem(a.decoderLowmem))
		}
		a.decoders = decompress.NewPool(poolOpts...)
	}
	if a.direntCacheSize > 0 {
		dc, err := newDirentCache(a.direntCacheSize)
		if err != nil {
			return nil, err
		}
		a.dirents = dc
	}

	if err := a.load(); err != nil {
		return nil, err
	}
	return a, nil
}

// reader returns a fresh seekable view over the whole source.
func (a *Archive) reader() *io.SectionReader {
	return io.NewSectionReader(a.source, 0, a.source.Size())
}

func (a *Archive) load() error {
	logger := a.log().With("source", a.source.SourceID())
	r := a.reader()

	header, err := format.DecodeHeader(r)
	if err != nil {
		return err
	}
	a.header = *header
	logger.Debug("decoded header",
		"version", header.Version(),
		"articles", header.ArticleCount,
		"clusters", header.ClusterCount,
	)
	if header.HasLayoutPage() {
		logger.Warn("layout page field is not the all-ones sentinel", "layout_page", header.LayoutPage)
	}

	if start, end, err := format.MimeListBounds(header); err == nil && end-start > MimeListWarnSize {
		logger.Warn("mime list region is unusually large", "bytes", end-start)
	}
	mimes, err := format.DecodeMimeList(r, header)
	if err != nil {
		return fmt.Errorf("decode mime list: %w", err)
	}
	a.mimeTypes = mimes
	logger.Debug("decoded mime list", "count", len(mimes))

	clusterPtrs, err := format.DecodePointerTable(r, header.ClusterPtrPos, header.ClusterCount)
	if err != nil {
		return fmt.Errorf("decode cluster pointers: %w", err)
	}
	a.clusterPointers = clusterPtrs

	clusters, err := a.decodeClusters(r, clusterPtrs)
	if err != nil {
		return err
	}
	a.clusters = clusters

	deferred := 0
	for i := range clusters {
		if clusters[i].Deferred() {
			deferred++
		}
	}
	if deferred > 0 {
		logger.Warn("compressed cluster offset tables deferred", "clusters", deferred)
	}
	logger.Debug("decoded clusters", "count", len(clusters), "deferred", deferred)

	direntPtrs, err := format.DecodePointerTable(r, header.PathPtrPos, header.ArticleCount)
	if err != nil {
		return fmt.Errorf("decode dirent pointers: %w", err)
	}
	a.direntPointers = direntPtrs
	logger.Debug("decoded dirent pointers", "count", len(direntPtrs))
	return nil
}

// decodeClusters decodes the cluster at each pointer. With a concurrency
// of one the clusters are read in order through r; otherwise workers read
// through their own section readers.
func (a *Archive) decodeClusters(r io.ReadSeeker, ptrs []uint64) ([]Cluster, error) {
	clusters := make([]Cluster, len(ptrs))
	if a.concurrency <= 1 || len(ptrs) < 2 {
		for i, ptr := range ptrs {
			c, err := a.decodeCluster(r, ptr)
			if err != nil {
				return nil, fmt.Errorf("decode cluster %d at %d: %w", i, ptr, err)
			}
			clusters[i] = *c
		}
		return clusters, nil
	}

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, ptr := range ptrs {
		g.Go(func() error {
			c, err := a.decodeCluster(a.reader(), ptr)
			if err != nil {
				return fmt.Errorf("decode cluster %d at %d: %w", i, ptr, err)
			}
			clusters[i] = *c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return clusters, nil
}

// decodeCluster decodes the cluster at ptr and, when enabled, resolves a
// deferred offset table through the cluster's decompressor.
func (a *Archive) decodeCluster(r io.ReadSeeker, ptr uint64) (*Cluster, error) {
	c, err := format.DecodeClusterAt(r, ptr)
	if err != nil {
		return nil, err
	}
	if !c.Deferred() || a.decoders == nil {
		return c, nil
	}

	payload, release, err := a.decoders.Open(c.Compression, r)
	if err != nil {
		return nil, err
	}
	defer release()

	offsets, err := format.DecodeOffsetTable(payload, c.Extended)
	if err != nil {
		if errors.Is(err, zimtype.ErrShortRead) || errors.Is(err, zimtype.ErrTooManyBlobs) ||
			errors.Is(err, zimtype.ErrDecompression) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", zimtype.ErrDecompression, c.Compression, err)
	}
	c.Offsets = offsets
	c.Table = zimtype.TableDecoded
	return c, nil
}

// Close releases the file opened by Open. It is a no-op for archives
// created with New.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Header returns a copy of the archive header.
func (a *Archive) Header() Header {
	return a.header
}

// MimeTypes returns the MIME type list in table order.
func (a *Archive) MimeTypes() []string {
	return slices.Clone(a.mimeTypes)
}

// ClusterPointers returns the absolute offset of each cluster.
func (a *Archive) ClusterPointers() []uint64 {
	return slices.Clone(a.clusterPointers)
}

// DirentPointers returns the absolute offset of each dirent.
func (a *Archive) DirentPointers() []uint64 {
	return slices.Clone(a.direntPointers)
}

// ClusterCount returns the number of clusters.
func (a *Archive) ClusterCount() int {
	return len(a.clusters)
}

// DirentCount returns the number of dirents.
func (a *Archive) DirentCount() int {
	return len(a.direntPointers)
}

// Cluster returns cluster i, aligned with the cluster pointer table.
func (a *Archive) Cluster(i int) (Cluster, error) {
	if i < 0 || i >= len(a.clusters) {
		return Cluster{}, fmt.Errorf("cluster %d of %d: %w", i, len(a.clusters), ErrIndexOutOfRange)
	}
	c := a.clusters[i]
	c.Offsets = slices.Clone(c.Offsets)
	return c, nil
}

// Clusters iterates over the decoded clusters in pointer-table order.
func (a *Archive) Clusters() iter.Seq2[int, Cluster] {
	return func(yield func(int, Cluster) bool) {
		for i := range a.clusters {
			c := a.clusters[i]
			c.Offsets = slices.Clone(c.Offsets)
			if !yield(i, c) {
				return
			}
		}
	}
}

// Dirent decodes the dirent at index i of the dirent pointer table.
func (a *Archive) Dirent(i int) (*Dirent, error) {
	if i < 0 || i >= len(a.direntPointers) {
		return nil, fmt.Errorf("dirent %d of %d: %w", i, len(a.direntPointers), ErrIndexOutOfRange)
	}
	ptr := a.direntPointers[i]
	if a.dirents == nil {
		return a.DirentAt(ptr)
	}
	return a.dirents.get(i, func() (*Dirent, error) {
		return a.DirentAt(ptr)
	})
}

// DirentAt decodes the dirent starting at the absolute offset ptr.
func (a *Archive) DirentAt(ptr uint64) (*Dirent, error) {
	size := a.source.Size()
	if ptr >= uint64(size) {
		return nil, fmt.Errorf("dirent at %d: %w: archive is %d bytes", ptr, ErrShortRead, size)
	}
	sr := io.NewSectionReader(a.source, int64(ptr), size-int64(ptr))
	d, err := format.DecodeDirent(bufio.NewReaderSize(sr, direntReadAhead))
	if err != nil {
		return nil, fmt.Errorf("dirent at %d: %w", ptr, err)
	}
	return d, nil
}

// Dirents yields every dirent in pointer-table order and stops after the
// first error.
func (a *Archive) Dirents() iter.Seq2[*Dirent, error] {
	return func(yield func(*Dirent, error) bool) {
		for i := range a.direntPointers {
			d, err := a.Dirent(i)
			if !yield(d, err) || err != nil {
				return
			}
		}
	}
}

// MainPage decodes the dirent named by the header's main-page field.
func (a *Archive) MainPage() (*Dirent, error) {
	if !a.header.HasMainPage() {
		return nil, ErrNoMainPage
	}
	return a.Dirent(int(a.header.MainPage))
}

// MimeTypeOf returns the MIME type of a content dirent.
// ok is false for other dirent kinds and for codes outside the MIME list.
func (a *Archive) MimeTypeOf(d *Dirent) (mime string, ok bool) {
	if d == nil || !d.IsContent() || int(d.MimeType) >= len(a.mimeTypes) {
		return "", false
	}
	return a.mimeTypes[d.MimeType], true
}

// ClusterOf returns the cluster holding a content dirent's blob.
func (a *Archive) ClusterOf(d *Dirent) (Cluster, error) {
	if d == nil || !d.IsContent() {
		return Cluster{}, fmt.Errorf("dirent is not content: %w", ErrIndexOutOfRange)
	}
	return a.Cluster(int(d.Data.ClusterIndex))
}
