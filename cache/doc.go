// Package cache provides an in-memory block cache for archive byte sources.
//
// Decoding an archive issues many small reads: the 80-byte header, pointer
// table chunks, one tag byte per cluster and a few dozen bytes per dirent.
// Against a remote source each read is a round-trip. BlockCache serves
// those reads from fixed-size blocks kept in an LRU, fetching each block
// from the underlying source at most once while it stays resident.
package cache
