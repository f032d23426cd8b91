package cache

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// ByteSource provides random access to data for block caching.
type ByteSource interface {
	io.ReaderAt

	// Size returns the total size of the data source in bytes.
	Size() int64

	// SourceID returns a unique identifier for this data source.
	// The ID is used as part of the cache key, so it must be stable
	// across calls and unique across different sources.
	SourceID() string
}

// RangeReader provides range reads for block fetches.
// Sources implementing it are read with a single range request per block.
type RangeReader interface {
	ReadRange(off, length int64) (io.ReadCloser, error)
}

const (
	// DefaultBlockSize is the default block size.
	DefaultBlockSize int64 = 64 << 10

	// DefaultMaxBlocks is the default number of resident blocks.
	DefaultMaxBlocks = 256

	// DefaultMaxBlocksPerRead caps cached blocks per ReadAt to avoid caching large sequential reads.
	DefaultMaxBlocksPerRead = 4
)

type blockKey struct {
	sourceID   string
	blockSize  int64
	blockIndex int64
}

// BlockCache keeps fixed-size blocks of wrapped sources in memory.
// The cache is safe for concurrent use and may be shared by several sources.
type BlockCache struct {
	blocks     *lru.Cache[blockKey, []byte]
	fetchGroup singleflight.Group
	hits       atomic.Int64
	misses     atomic.Int64
}

// NewBlockCache creates a cache holding at most maxBlocks blocks.
// Values <= 0 use DefaultMaxBlocks.
func NewBlockCache(maxBlocks int) (*BlockCache, error) {
	if maxBlocks <= 0 {
		maxBlocks = DefaultMaxBlocks
	}
	blocks, err := lru.New[blockKey, []byte](maxBlocks)
	if err != nil {
		return nil, fmt.Errorf("block cache: %w", err)
	}
	return &BlockCache{blocks: blocks}, nil
}

// WrapConfig controls block cache wrapping behavior.
type WrapConfig struct {
	// BlockSize is the size in bytes of each cached block.
	BlockSize int64

	// MaxBlocksPerRead is the maximum number of blocks that will be cached
	// for a single ReadAt call. Reads spanning more blocks bypass the cache.
	// Use 0 to disable the limit.
	MaxBlocksPerRead int
}

// DefaultWrapConfig returns the default block cache configuration.
func DefaultWrapConfig() WrapConfig {
	return WrapConfig{
		BlockSize:        DefaultBlockSize,
		MaxBlocksPerRead: DefaultMaxBlocksPerRead,
	}
}

// WrapOption configures block cache wrapping behavior.
type WrapOption func(*WrapConfig)

// WithBlockSize sets the block size used for caching.
func WithBlockSize(n int64) WrapOption {
	return func(cfg *WrapConfig) {
		cfg.BlockSize = n
	}
}

// WithMaxBlocksPerRead bypasses caching when a ReadAt spans more than n blocks.
// Values <= 0 disable the limit.
func WithMaxBlocksPerRead(n int) WrapOption {
	return func(cfg *WrapConfig) {
		cfg.MaxBlocksPerRead = n
	}
}

// Wrap returns a ByteSource that serves reads of src from cached blocks.
func (c *BlockCache) Wrap(src ByteSource, opts ...WrapOption) (ByteSource, error) {
	if src == nil {
		return nil, errors.New("block cache: source is nil")
	}
	cfg := DefaultWrapConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BlockSize <= 0 {
		return nil, errors.New("block cache: block size must be > 0")
	}
	if cfg.BlockSize > math.MaxInt {
		return nil, errors.New("block cache: block size exceeds max int")
	}
	if cfg.MaxBlocksPerRead < 0 {
		cfg.MaxBlocksPerRead = 0
	}
	sourceID := src.SourceID()
	if sourceID == "" {
		return nil, errors.New("block cache: source id is empty")
	}
	return &cachedSource{
		src:              src,
		cache:            c,
		sourceID:         sourceID,
		blockSize:        cfg.BlockSize,
		maxBlocksPerRead: cfg.MaxBlocksPerRead,
	}, nil
}

// Len returns the number of resident blocks.
func (c *BlockCache) Len() int {
	return c.blocks.Len()
}

// Stats returns the number of block hits and misses so far.
func (c *BlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Purge drops every resident block.
func (c *BlockCache) Purge() {
	c.blocks.Purge()
}

func (c *BlockCache) getBlock(key blockKey, blockLen int64, fetch func() ([]byte, error)) ([]byte, error) {
	if data, ok := c.blocks.Get(key); ok && int64(len(data)) == blockLen {
		c.hits.Add(1)
		return data, nil
	}
	group := key.sourceID + "|" + strconv.FormatInt(key.blockSize, 10) + "|" + strconv.FormatInt(key.blockIndex, 10)
	result, err, _ := c.fetchGroup.Do(group, func() (any, error) {
		if data, ok := c.blocks.Get(key); ok && int64(len(data)) == blockLen {
			c.hits.Add(1)
			return data, nil
		}
		c.misses.Add(1)
		data, err := fetch()
		if err != nil {
			return nil, err
		}
		if int64(len(data)) != blockLen {
			return nil, io.ErrUnexpectedEOF
		}
		c.blocks.Add(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil //nolint:errcheck // type assertion always succeeds when err is nil
}

// cachedSource wraps a ByteSource with block-level caching.
type cachedSource struct {
	src              ByteSource
	cache            *BlockCache
	sourceID         string
	blockSize        int64
	maxBlocksPerRead int
}

func (s *cachedSource) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, fmt.Errorf("read at %d: negative offset", off)
	}
	size := s.src.Size()
	if off >= size {
		return 0, io.EOF
	}

	expected := int64(len(p))
	if off+expected > size {
		expected = size - off
	}

	startBlock := off / s.blockSize
	endBlock := (off + expected - 1) / s.blockSize
	if s.maxBlocksPerRead > 0 && endBlock-startBlock+1 > int64(s.maxBlocksPerRead) {
		return s.src.ReadAt(p, off)
	}

	var n int64
	for blockIndex := startBlock; blockIndex <= endBlock; blockIndex++ {
		blockStart := blockIndex * s.blockSize
		blockEnd := min(blockStart+s.blockSize, size)
		blockLen := blockEnd - blockStart

		key := blockKey{sourceID: s.sourceID, blockSize: s.blockSize, blockIndex: blockIndex}
		data, err := s.cache.getBlock(key, blockLen, func() ([]byte, error) {
			return s.readBlockFromSource(blockStart, blockLen)
		})
		if err != nil {
			return int(n), err
		}

		copyStart := max(off, blockStart)
		copyEnd := min(off+expected, blockEnd)
		if length := copyEnd - copyStart; length > 0 {
			dst := copyStart - off
			src := copyStart - blockStart
			copy(p[dst:dst+length], data[src:src+length])
			n += length
		}
	}

	if expected < int64(len(p)) {
		return int(n), io.EOF
	}
	return int(n), nil
}

func (s *cachedSource) Size() int64 {
	return s.src.Size()
}

func (s *cachedSource) SourceID() string {
	return s.sourceID
}

func (s *cachedSource) readBlockFromSource(off, length int64) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}
	if rr, ok := s.src.(RangeReader); ok {
		rc, err := rr.ReadRange(off, length)
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, err
		}
		if int64(len(data)) != length {
			return nil, io.ErrUnexpectedEOF
		}
		return data, nil
	}

	buf := make([]byte, int(length))
	n, err := s.src.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if int64(n) != length {
		return nil, io.ErrUnexpectedEOF
	}
	return buf, nil
}
