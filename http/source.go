// Package http reads archives over HTTP range requests.
//
// A Source satisfies zim.ByteSource, so a remote archive can be decoded
// without downloading it. Each ReadAt is one range request; wrap the
// source with cache.BlockCache to coalesce the many small reads an
// archive decode performs.
package http //nolint:revive // intentional naming for domain clarity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"strconv"
	"strings"
	"sync/atomic"
)

// ErrRangeUnsupported is returned when the server ignores range requests.
var ErrRangeUnsupported = errors.New("range requests not supported")

// Source implements random access reads via HTTP range requests.
type Source struct {
	url                   string
	client                *nethttp.Client
	headers               nethttp.Header
	size                  int64
	etag                  string
	lastModified          string
	sourceID              string
	useConditionalHeaders bool
	requests              atomic.Int64
}

// Option configures a Source.
type Option func(*Source)

// WithClient sets the HTTP client used for requests.
func WithClient(client *nethttp.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithHeader sets a single header on each request.
func WithHeader(key, value string) Option {
	return func(s *Source) {
		if s.headers == nil {
			s.headers = make(nethttp.Header)
		}
		s.headers.Set(key, value)
	}
}

// WithSourceID overrides the default source identifier used for caching.
func WithSourceID(id string) Option {
	return func(s *Source) {
		s.sourceID = id
	}
}

// WithConditionalHeaders sends If-Match / If-Unmodified-Since with every
// range read so a file replaced on the server mid-decode is detected.
// Disabled by default because some mirrors reject conditional range requests.
func WithConditionalHeaders() Option {
	return func(s *Source) {
		s.useConditionalHeaders = true
	}
}

// NewSource creates a Source for url and probes the remote to determine
// the content size and cache validators.
func NewSource(url string, opts ...Option) (*Source, error) {
	s := &Source{
		url:    url,
		client: nethttp.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = nethttp.DefaultClient
	}

	if err := s.probe(); err != nil {
		return nil, fmt.Errorf("probe %s: %w", url, err)
	}
	if s.sourceID == "" {
		s.sourceID = s.defaultSourceID()
	}
	return s, nil
}

// Size returns the total size of the remote content.
func (s *Source) Size() int64 {
	return s.size
}

// SourceID returns a stable identifier for the remote content.
func (s *Source) SourceID() string {
	return s.sourceID
}

// Requests returns the number of HTTP requests issued, including probes.
func (s *Source) Requests() int64 {
	return s.requests.Load()
}

// ReadAt reads len(p) bytes starting at off. It implements [io.ReaderAt]:
// if fewer bytes are available it returns the count read and io.EOF.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, fmt.Errorf("read at %d: negative offset", off)
	}
	if off >= s.size {
		return 0, io.EOF
	}

	want := min(int64(len(p)), s.size-off)
	body, err := s.openRange(off, want)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	n, err := io.ReadFull(body, p[:want])
	if err != nil {
		return n, err
	}
	if want < int64(len(p)) {
		return n, io.EOF
	}
	return n, nil
}

// ReadRange returns a reader for [off, off+length), clipped to the
// content size. The caller must close it to release the connection.
func (s *Source) ReadRange(off, length int64) (io.ReadCloser, error) {
	if length < 0 {
		return nil, fmt.Errorf("read range length %d: negative length", length)
	}
	if off < 0 {
		return nil, fmt.Errorf("read range %d: negative offset", off)
	}
	if length == 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	if off >= s.size {
		return io.NopCloser(bytes.NewReader(nil)), io.EOF
	}
	return s.openRange(off, min(length, s.size-off))
}

// openRange issues a range GET for [off, off+length) and returns a body
// limited to length bytes. A precondition failure caused by the
// conditional headers is retried once without them.
func (s *Source) openRange(off, length int64) (io.ReadCloser, error) {
	end := off + length - 1
	resp, err := s.rangeRequest(off, end, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == nethttp.StatusPreconditionFailed && s.hasConditionalHeaders() {
		drain(resp.Body)
		if resp, err = s.rangeRequest(off, end, false); err != nil {
			return nil, err
		}
	}

	switch resp.StatusCode {
	case nethttp.StatusPartialContent:
		return &rangeReadCloser{body: resp.Body, reader: io.LimitReader(resp.Body, length)}, nil
	case nethttp.StatusRequestedRangeNotSatisfiable:
		drain(resp.Body)
		return nil, io.EOF
	case nethttp.StatusOK:
		drain(resp.Body)
		return nil, ErrRangeUnsupported
	default:
		drain(resp.Body)
		return nil, fmt.Errorf("range request failed: %s", resp.Status)
	}
}

func (s *Source) defaultSourceID() string {
	if s.etag != "" {
		return fmt.Sprintf("url:%s|etag:%s", s.url, s.etag)
	}
	if s.lastModified != "" {
		return fmt.Sprintf("url:%s|mod:%s|size:%d", s.url, s.lastModified, s.size)
	}
	return fmt.Sprintf("url:%s|size:%d", s.url, s.size)
}

// probe learns the content size from a one-byte range request, which also
// verifies that the server honors ranges.
func (s *Source) probe() error {
	resp, err := s.rangeRequest(0, 0, false)
	if err != nil {
		return err
	}
	defer drain(resp.Body)

	switch resp.StatusCode {
	case nethttp.StatusPartialContent:
	case nethttp.StatusOK:
		return ErrRangeUnsupported
	default:
		return fmt.Errorf("range probe failed: %s", resp.Status)
	}

	crange := resp.Header.Get("Content-Range")
	if crange == "" {
		return errors.New("range probe missing Content-Range")
	}
	size, err := parseContentRange(crange)
	if err != nil {
		return err
	}
	s.size = size
	s.etag = resp.Header.Get("ETag")
	s.lastModified = resp.Header.Get("Last-Modified")
	return nil
}

func (s *Source) rangeRequest(off, end int64, withConditions bool) (*nethttp.Response, error) {
	req, err := nethttp.NewRequestWithContext(context.Background(), nethttp.MethodGet, s.url, nethttp.NoBody)
	if err != nil {
		return nil, err
	}
	for key, values := range s.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "identity")
	}
	if withConditions && s.useConditionalHeaders {
		if s.etag != "" && req.Header.Get("If-Match") == "" {
			req.Header.Set("If-Match", s.etag)
		}
		if s.lastModified != "" && req.Header.Get("If-Unmodified-Since") == "" {
			req.Header.Set("If-Unmodified-Since", s.lastModified)
		}
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", off, end))
	s.requests.Add(1)
	return s.client.Do(req)
}

func (s *Source) hasConditionalHeaders() bool {
	return s.useConditionalHeaders && (s.etag != "" || s.lastModified != "")
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body) //nolint:errcheck // best-effort drain for connection reuse
	_ = body.Close()
}

// rangeReadCloser limits reads to the requested range and drains the
// body on close to enable connection reuse.
type rangeReadCloser struct {
	body   io.ReadCloser
	reader io.Reader
}

func (r *rangeReadCloser) Read(p []byte) (int, error) {
	return r.reader.Read(p)
}

func (r *rangeReadCloser) Close() error {
	drain(r.body)
	return nil
}

// parseContentRange extracts the total size from "bytes start-end/size".
func parseContentRange(value string) (int64, error) {
	value = strings.TrimSpace(value)
	rest, ok := strings.CutPrefix(value, "bytes ")
	if !ok {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	_, total, ok := strings.Cut(rest, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	size, err := strconv.ParseInt(total, 10, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("invalid Content-Range %q", value)
	}
	return size, nil
}
