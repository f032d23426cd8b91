package decompress

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/meigma/zim/internal/zimtype"
)

// Pool opens compressed cluster payloads and recycles the decoders that
// support being reset onto a new stream (zstd and zlib). Xz and bzip2
// readers have no reset and are built per payload.
//
// A Pool is safe for concurrent use. A nil *Pool opens every payload
// with freshly built, default-configured decoders.
type Pool struct {
	zstdOpts []zstd.DOption
	readers  map[zimtype.Compression]*sync.Pool
	reused   atomic.Int64
}

type poolConfig struct {
	maxMemory   uint64
	concurrency int
	lowmem      bool
}

// PoolOption configures a Pool.
type PoolOption func(*poolConfig)

// WithMaxMemory caps the memory a zstd decoder may allocate for one
// frame. 0 disables the cap.
func WithMaxMemory(limit uint64) PoolOption {
	return func(c *poolConfig) {
		c.maxMemory = limit
	}
}

// WithDecoderConcurrency sets the number of goroutines each zstd decoder
// uses (default: 1). 0 means GOMAXPROCS; negative values are treated as 0.
func WithDecoderConcurrency(n int) PoolOption {
	return func(c *poolConfig) {
		c.concurrency = max(n, 0)
	}
}

// WithDecoderLowmem puts zstd decoders in low-memory mode.
func WithDecoderLowmem(enabled bool) PoolOption {
	return func(c *poolConfig) {
		c.lowmem = enabled
	}
}

// NewPool returns a Pool. Without options zstd decoders are limited to
// DefaultMaxDecoderMemory and decode on the calling goroutine.
func NewPool(opts ...PoolOption) *Pool {
	cfg := poolConfig{maxMemory: DefaultMaxDecoderMemory, concurrency: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	zstdOpts := []zstd.DOption{
		zstd.WithDecoderConcurrency(cfg.concurrency),
		zstd.WithDecoderLowmem(cfg.lowmem),
	}
	if cfg.maxMemory != 0 {
		zstdOpts = append(zstdOpts, zstd.WithDecoderMaxMemory(cfg.maxMemory))
	}
	return &Pool{
		zstdOpts: zstdOpts,
		readers: map[zimtype.Compression]*sync.Pool{
			zimtype.CompressionZstd: {},
			zimtype.CompressionZip:  {},
		},
	}
}

// Reused reports how many payloads were served by a recycled decoder.
func (p *Pool) Reused() int64 {
	if p == nil {
		return 0
	}
	return p.reused.Load()
}

// recycled returns an idle decoder for c, or nil.
func (p *Pool) recycled(c zimtype.Compression) any {
	if p == nil {
		return nil
	}
	return p.readers[c].Get()
}

// release returns a decoder for c to the pool.
func (p *Pool) release(c zimtype.Compression, dec any) func() {
	if p == nil {
		if closer, ok := dec.(interface{ Close() }); ok {
			return closer.Close
		}
		return func() {}
	}
	return func() { p.readers[c].Put(dec) }
}

func (p *Pool) zstdReader(r io.Reader) (io.Reader, func(), error) {
	if dec, ok := p.recycled(zimtype.CompressionZstd).(*zstd.Decoder); ok {
		if err := dec.Reset(r); err == nil {
			p.reused.Add(1)
			return dec, p.releaseZstd(dec), nil
		}
		dec.Close()
	}

	var opts []zstd.DOption
	if p != nil {
		opts = p.zstdOpts
	}
	dec, err := zstd.NewReader(r, opts...)
	if err != nil {
		return nil, nil, err
	}
	return dec, p.releaseZstd(dec), nil
}

// releaseZstd detaches dec from its stream before pooling it so the
// payload reader is not retained.
func (p *Pool) releaseZstd(dec *zstd.Decoder) func() {
	put := p.release(zimtype.CompressionZstd, dec)
	if p == nil {
		return put
	}
	return func() {
		_ = dec.Reset(nil) //nolint:errcheck // only clears the previous stream
		put()
	}
}

func (p *Pool) zlibReader(r io.Reader) (io.Reader, func(), error) {
	if zr, ok := p.recycled(zimtype.CompressionZip).(io.ReadCloser); ok {
		if err := zr.(zlib.Resetter).Reset(r, nil); err != nil {
			p.readers[zimtype.CompressionZip].Put(zr)
			return nil, nil, err
		}
		p.reused.Add(1)
		return zr, p.release(zimtype.CompressionZip, zr), nil
	}

	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return zr, func() { _ = zr.Close() }, nil
	}
	return zr, p.release(zimtype.CompressionZip, zr), nil
}
