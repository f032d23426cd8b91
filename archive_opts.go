package zim

import (
	"log/slog"

	"github.com/meigma/zim/cache"
)

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger for decode diagnostics.
// By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// WithConcurrency sets how many clusters are decoded in parallel (default: 1).
//
// With 1, clusters are decoded in pointer-table order through a single
// reader. Larger values give each worker its own section reader over the
// ByteSource, whose ReadAt must then be safe for concurrent use.
// Values < 1 are treated as 1.
func WithConcurrency(n int) Option {
	return func(a *Archive) {
		a.concurrency = max(n, 1)
	}
}

// WithClusterDecompression controls whether the offset tables of
// compressed clusters are decoded (default: false).
//
// When false, compressed clusters are left in the TableDeferred state.
// When true, the payload is streamed through the matching decoder until
// the offset table has been read; blob data is never decompressed.
// A payload the codec cannot decode, including one cut short mid-stream,
// fails with ErrDecompression. A payload that decompresses cleanly but
// holds fewer bytes than its offset table declares fails with ErrShortRead.
func WithClusterDecompression(enabled bool) Option {
	return func(a *Archive) {
		a.decompressClusters = enabled
	}
}

// WithMaxDecoderMemory limits the maximum memory used by the zstd decoder.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(a *Archive) {
		a.maxDecoderMemory = limit
	}
}

// WithDecoderConcurrency sets the zstd decoder concurrency (default: 1).
// Values < 0 are treated as 0 (use GOMAXPROCS).
func WithDecoderConcurrency(n int) Option {
	return func(a *Archive) {
		if n < 0 {
			n = 0
		}
		a.decoderConcurrency = n
		a.decoderConcurrencySet = true
	}
}

// WithDecoderLowmem sets whether the zstd decoder should use low-memory mode (default: false).
func WithDecoderLowmem(enabled bool) Option {
	return func(a *Archive) {
		a.decoderLowmem = enabled
		a.decoderLowmemSet = true
	}
}

// WithDirentCache keeps up to size decoded dirents, keyed by index.
//
// Concurrent lookups of the same index share one decode. Cached dirents
// are shared between callers and must be treated as read-only.
// Values <= 0 disable the cache.
func WithDirentCache(size int) Option {
	return func(a *Archive) {
		a.direntCacheSize = size
	}
}

// WithBlockCache serves all reads through c, which keeps recently read
// blocks of the source in memory.
func WithBlockCache(c *cache.BlockCache, opts ...cache.WrapOption) Option {
	return func(a *Archive) {
		a.blockCache = c
		a.blockCacheOpts = opts
	}
}
