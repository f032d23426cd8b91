// Package zim decodes the binary layout of ZIM offline-content archives.
//
// An archive consists of a fixed 80-byte header, a NUL-separated MIME type
// list, two pointer tables (one locating clusters, one locating directory
// entries), cluster blocks holding blob offset tables, and directory
// entries ("dirents") describing articles, redirects, link targets and
// tombstones.
//
// [Open] and [New] decode the header, MIME list, both pointer tables and
// every cluster's offset table into an immutable [Archive]. Dirents are
// decoded on demand with [Archive.Dirent].
//
// # Quick Start
//
//	a, err := zim.Open("wikipedia.zim")
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	d, err := a.Dirent(0)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(d.URL, d.EffectiveTitle())
//
// # Compressed clusters
//
// The offset table of a compressed cluster lives inside its compressed
// payload. By default such clusters are reported in the [TableDeferred]
// state with no offsets. [WithClusterDecompression] decodes those tables
// through zstd, zlib, xz or bzip2 decoders instead.
//
// # Remote archives
//
// Any [ByteSource] can back an archive. The http subpackage reads via
// range requests; the cache subpackage keeps recently read blocks in
// memory:
//
//	src, _ := http.NewSource("https://mirror.example/archive.zim")
//	bc, _ := cache.NewBlockCache(512)
//	a, err := zim.New(src, zim.WithBlockCache(bc))
package zim
