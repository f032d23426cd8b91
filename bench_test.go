package zim

import (
	"bytes"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meigma/zim/cache"
	zimhttp "github.com/meigma/zim/http"
	"github.com/meigma/zim/internal/testutil"
)

var (
	benchSinkArchive *Archive
	benchSinkDirent  *Dirent
)

// benchArchive returns an archive with the given number of clusters and
// one dirent per cluster. Every fourth cluster is zstd-compressed.
func benchArchive(tb testing.TB, clusters int) []byte {
	tb.Helper()
	a := testutil.SampleArchive()
	for i := range clusters {
		c := testutil.TestCluster{Compression: CompressionNone, Extended: i%2 == 1}
		if i%4 == 3 {
			c.Compression = CompressionZstd
		}
		for j := range 8 {
			c.Blobs = append(c.Blobs, bytes.Repeat([]byte{byte(j)}, 256))
		}
		a.Clusters = append(a.Clusters, c)
		a.Dirents = append(a.Dirents, testutil.TestDirent{
			Namespace:    'C',
			ClusterIndex: uint32(len(a.Clusters) - 1),
			URL:          fmt.Sprintf("article/%06d", i),
			Title:        fmt.Sprintf("Article %d", i),
		})
	}
	data, _ := testutil.BuildArchive(tb, a)
	return data
}

func BenchmarkNew(b *testing.B) {
	cases := []struct {
		name     string
		clusters int
		opts     []Option
	}{
		{name: "clusters=1k/sequential", clusters: 1000},
		{name: "clusters=1k/concurrency=8", clusters: 1000, opts: []Option{WithConcurrency(8)}},
		{name: "clusters=1k/decompress", clusters: 1000, opts: []Option{WithClusterDecompression(true)}},
		{
			name:     "clusters=1k/decompress/concurrency=8",
			clusters: 1000,
			opts:     []Option{WithClusterDecompression(true), WithConcurrency(8)},
		},
	}
	for _, bc := range cases {
		b.Run(bc.name, func(b *testing.B) {
			data := benchArchive(b, bc.clusters)
			src := testutil.NewMockByteSource(data)
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				a, err := New(src, bc.opts...)
				if err != nil {
					b.Fatal(err)
				}
				benchSinkArchive = a
			}
		})
	}
}

func BenchmarkDirent(b *testing.B) {
	data := benchArchive(b, 1000)
	cases := []struct {
		name string
		opts []Option
	}{
		{name: "uncached"},
		{name: "cached", opts: []Option{WithDirentCache(2048)}},
	}
	for _, bc := range cases {
		b.Run(bc.name, func(b *testing.B) {
			a, err := New(testutil.NewMockByteSource(data), bc.opts...)
			if err != nil {
				b.Fatal(err)
			}
			n := a.DirentCount()
			b.ReportAllocs()
			for i := 0; b.Loop(); i++ {
				d, err := a.Dirent(i % n)
				if err != nil {
					b.Fatal(err)
				}
				benchSinkDirent = d
			}
		})
	}
}

func BenchmarkNewHTTP(b *testing.B) {
	data := benchArchive(b, 1000)
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		nethttp.ServeContent(w, r, "bench.zim", time.Unix(0, 0), bytes.NewReader(data))
	}))
	b.Cleanup(server.Close)

	for _, blocks := range []int{0, cache.DefaultMaxBlocks} {
		b.Run(fmt.Sprintf("cache-blocks=%d", blocks), func(b *testing.B) {
			src, err := zimhttp.NewSource(server.URL)
			if err != nil {
				b.Fatal(err)
			}
			var opts []Option
			if blocks > 0 {
				bc, err := cache.NewBlockCache(blocks)
				if err != nil {
					b.Fatal(err)
				}
				opts = append(opts, WithBlockCache(bc))
			}
			b.ReportAllocs()
			for b.Loop() {
				a, err := New(src, opts...)
				if err != nil {
					b.Fatal(err)
				}
				benchSinkArchive = a
			}
			b.ReportMetric(float64(src.Requests())/float64(b.N), "requests/op")
		})
	}
}
