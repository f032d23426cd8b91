// zimdump decodes the structural metadata of a ZIM archive and prints it.
//
// The archive may be a local path or, with --url (or an http:// or
// https:// argument), a remote file served with range request support.
// Remote reads go through an in-memory block cache.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/felixge/fgprof"
	"github.com/spf13/pflag"

	"github.com/meigma/zim"
	"github.com/meigma/zim/cache"
	zimhttp "github.com/meigma/zim/http"
)

type config struct {
	clusters    bool
	dirents     int
	decompress  bool
	url         bool
	verbose     bool
	concurrency int
	cacheBlocks int
	cpuProfile  string
	fgProfile   string
	target      string
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if cfg.fgProfile != "" {
		fgFile, err := os.Create(cfg.fgProfile)
		if err != nil {
			return err
		}
		stopFG := fgprof.Start(fgFile, fgprof.FormatPprof)
		defer func() {
			if err := stopFG(); err != nil {
				fmt.Fprintf(stderr, "fgprof stop error: %v\n", err)
			}
			_ = fgFile.Close()
		}()
	}
	if cfg.cpuProfile != "" {
		cpuFile, err := os.Create(cfg.cpuProfile)
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			_ = cpuFile.Close()
			return err
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = cpuFile.Close()
		}()
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	a, err := openArchive(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return dump(stdout, a, cfg)
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config
	flagSet := pflag.NewFlagSet("zimdump", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&cfg.clusters, "clusters", false, "print every cluster's compression and offset table")
	flagSet.IntVar(&cfg.dirents, "dirents", 10, "number of dirents to print (-1 for all)")
	flagSet.BoolVar(&cfg.decompress, "decompress", false, "decode offset tables of compressed clusters")
	flagSet.BoolVar(&cfg.url, "url", false, "treat the argument as an HTTP URL")
	flagSet.BoolVarP(&cfg.verbose, "verbose", "v", false, "log decode stages to stderr")
	flagSet.IntVar(&cfg.concurrency, "concurrency", 1, "clusters decoded in parallel")
	flagSet.IntVar(&cfg.cacheBlocks, "cache-blocks", cache.DefaultMaxBlocks, "block cache size for remote archives")
	flagSet.StringVar(&cfg.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	flagSet.StringVar(&cfg.fgProfile, "fgprofile", "", "write fgprof (wall clock) profile to file")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "usage: zimdump [flags] <path|url>\n\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return cfg, err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return cfg, errors.New("expected exactly one archive path or URL")
	}
	cfg.target = flagSet.Arg(0)
	if strings.HasPrefix(cfg.target, "http://") || strings.HasPrefix(cfg.target, "https://") {
		cfg.url = true
	}
	return cfg, nil
}

func openArchive(cfg config, logger *slog.Logger) (*zim.Archive, error) {
	opts := []zim.Option{
		zim.WithLogger(logger),
		zim.WithConcurrency(cfg.concurrency),
		zim.WithClusterDecompression(cfg.decompress),
	}
	if !cfg.url {
		return zim.Open(cfg.target, opts...)
	}

	src, err := zimhttp.NewSource(cfg.target)
	if err != nil {
		return nil, err
	}
	bc, err := cache.NewBlockCache(cfg.cacheBlocks)
	if err != nil {
		return nil, err
	}
	opts = append(opts, zim.WithBlockCache(bc))
	a, err := zim.New(src, opts...)
	if err != nil {
		return nil, err
	}
	hits, misses := bc.Stats()
	logger.Debug("remote archive loaded",
		"requests", src.Requests(),
		"cache_hits", hits,
		"cache_misses", misses,
	)
	return a, nil
}

func dump(w io.Writer, a *zim.Archive, cfg config) error {
	h := a.Header()
	fmt.Fprintf(w, "version:        %s\n", h.Version())
	fmt.Fprintf(w, "uuid:           %s\n", h.UUIDString())
	fmt.Fprintf(w, "articles:       %d\n", h.ArticleCount)
	fmt.Fprintf(w, "clusters:       %d\n", h.ClusterCount)
	fmt.Fprintf(w, "mime list:      %d\n", h.MimeListPos)
	fmt.Fprintf(w, "path pointers:  %d\n", h.PathPtrPos)
	fmt.Fprintf(w, "title index:    %d\n", h.TitleIndexPos)
	fmt.Fprintf(w, "cluster ptrs:   %d\n", h.ClusterPtrPos)
	fmt.Fprintf(w, "checksum:       %d\n", h.ChecksumPos)
	if h.HasMainPage() {
		fmt.Fprintf(w, "main page:      %d\n", h.MainPage)
	} else {
		fmt.Fprintf(w, "main page:      none\n")
	}

	fmt.Fprintf(w, "\nmime types:\n")
	for i, m := range a.MimeTypes() {
		fmt.Fprintf(w, "  %3d  %s\n", i, m)
	}

	counts := make(map[zim.Compression]int)
	deferred := 0
	for i, c := range a.Clusters() {
		counts[c.Compression]++
		if c.Deferred() {
			deferred++
		}
		if cfg.clusters {
			fmt.Fprintf(w, "cluster %d: %s extended=%t table=%s blobs=%d\n",
				i, c.Compression, c.Extended, c.Table, c.BlobCount())
		}
	}
	fmt.Fprintf(w, "\ncluster compression:\n")
	for _, c := range []zim.Compression{
		zim.CompressionNone, zim.CompressionZip, zim.CompressionBzip2,
		zim.CompressionLzma, zim.CompressionZstd,
	} {
		if counts[c] > 0 {
			fmt.Fprintf(w, "  %-6s %d\n", c, counts[c])
		}
	}
	fmt.Fprintf(w, "  deferred %d\n", deferred)

	if cfg.dirents == 0 {
		return nil
	}
	fmt.Fprintf(w, "\ndirents:\n")
	limit := a.DirentCount()
	if cfg.dirents > 0 {
		limit = min(limit, cfg.dirents)
	}
	for i := range limit {
		d, err := a.Dirent(i)
		if err != nil {
			return err
		}
		printDirent(w, a, i, d)
	}
	return nil
}

func printDirent(w io.Writer, a *zim.Archive, i int, d *zim.Dirent) {
	prefix := fmt.Sprintf("  %5d  %c/%s", i, d.NamespaceRune(), d.URL)
	switch d.Data.Kind {
	case zim.KindContent:
		mime, ok := a.MimeTypeOf(d)
		if !ok {
			mime = fmt.Sprintf("mime#%d", d.MimeType)
		}
		fmt.Fprintf(w, "%s  %q  %s  cluster=%d blob=%d\n",
			prefix, d.EffectiveTitle(), mime, d.Data.ClusterIndex, d.Data.BlobIndex)
	case zim.KindRedirect:
		fmt.Fprintf(w, "%s  -> %d\n", prefix, d.Data.RedirectIndex)
	default:
		fmt.Fprintf(w, "%s  (%s)\n", prefix, d.Data.Kind)
	}
}
