//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/meigma/zim"
	"github.com/meigma/zim/internal/testutil"
)

const (
	servedDir   = "/usr/share/nginx/html"
	readyMarker = "ready.txt"
)

// Archives served by the shared container, by file name.
var fixtures = map[string]testutil.TestArchive{
	"sample.zim": testutil.SampleArchive(),
	"large.zim":  largeArchive(),
}

var (
	serverOnce sync.Once
	serverURL  string
	serverErr  error
	fixtureDir string
)

// getServer returns the base URL of the shared nginx container,
// starting it with every fixture archive on first use.
func getServer(tb testing.TB) string {
	tb.Helper()

	if os.Getenv("SKIP_DOCKER_TESTS") == "1" {
		tb.Skip("SKIP_DOCKER_TESTS is set")
	}

	serverOnce.Do(func() {
		fixtureDir, serverErr = os.MkdirTemp("", "zim-integration-")
		if serverErr != nil {
			return
		}
		serverErr = writeFixtures(tb, fixtureDir)
		if serverErr != nil {
			return
		}
		serverURL, serverErr = startServerContainer(context.Background(), fixtureDir)
	})

	if serverErr != nil {
		tb.Fatalf("start nginx container: %v", serverErr)
	}
	return serverURL
}

func writeFixtures(tb testing.TB, dir string) error {
	for name, a := range fixtures {
		data, _ := testutil.BuildArchive(tb, a)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return err
		}
	}
	return os.WriteFile(filepath.Join(dir, readyMarker), []byte("ok"), 0o644)
}

// startServerContainer starts nginx with dir's files in its web root and
// returns the http://host:port base URL.
func startServerContainer(ctx context.Context, dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	files := make([]testcontainers.ContainerFile, 0, len(entries))
	for _, e := range entries {
		files = append(files, testcontainers.ContainerFile{
			HostFilePath:      filepath.Join(dir, e.Name()),
			ContainerFilePath: servedDir + "/" + e.Name(),
			FileMode:          0o644,
		})
	}

	req := testcontainers.ContainerRequest{
		Image:        "nginx:alpine",
		ExposedPorts: []string{"80/tcp"},
		Files:        files,
		WaitingFor:   wait.ForHTTP("/" + readyMarker).WithPort("80/tcp").WithStatusCodeMatcher(isOKStatus),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start nginx container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve nginx host: %w", err)
	}
	port, err := container.MappedPort(ctx, "80/tcp")
	if err != nil {
		return "", fmt.Errorf("resolve nginx port: %w", err)
	}
	return fmt.Sprintf("http://%s:%s", host, port.Port()), nil
}

func isOKStatus(status int) bool {
	return status >= 200 && status < 300
}

// largeArchive returns an archive with enough clusters and dirents to
// span many cache blocks.
func largeArchive() testutil.TestArchive {
	a := testutil.SampleArchive()
	for i := range 200 {
		a.Clusters = append(a.Clusters, testutil.TestCluster{
			Compression: clusterCompression(i),
			Extended:    i%3 == 0,
			Blobs:       [][]byte{[]byte(fmt.Sprintf("blob-%d-a", i)), []byte(fmt.Sprintf("blob-%d-b", i))},
		})
		a.Dirents = append(a.Dirents, testutil.TestDirent{
			MimeType:     uint16(i % 3),
			Namespace:    'C',
			ClusterIndex: uint32(len(a.Clusters) - 1),
			BlobIndex:    uint32(i % 2),
			URL:          fmt.Sprintf("page/%04d.html", i),
			Title:        fmt.Sprintf("Page %d", i),
		})
	}
	return a
}

func newFixtureURL(tb testing.TB, name string) string {
	tb.Helper()
	_, ok := fixtures[name]
	require.True(tb, ok, "unknown fixture %s", name)
	return getServer(tb) + "/" + name
}

func clusterCompression(i int) zim.Compression {
	switch i % 4 {
	case 1:
		return zim.CompressionZstd
	case 2:
		return zim.CompressionZip
	case 3:
		return zim.CompressionLzma
	default:
		return zim.CompressionNone
	}
}
