// Package source opens GIF byte streams from files, standard input or HTTP
// and feeds them to a decoder in fixed-size chunks.
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression names the transport encoding detected by Open.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Source is an opened byte stream. Reads return the decompressed file.
type Source struct {
	Name string
	// Size is the number of bytes the stream will deliver, or -1 when it is
	// not known up front (standard input, chunked HTTP, compressed input).
	Size        int64
	Compression Compression

	r       io.Reader
	closers []func() error
}

func (s *Source) Read(p []byte) (int, error) { return s.r.Read(p) }

// Close releases the decompressor and the underlying file or response.
func (s *Source) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// Open opens name, which is "-" for standard input, an http(s) URL or a
// file path. Gzip and zstd streams are decompressed transparently. A nil
// client selects http.DefaultClient.
func Open(ctx context.Context, name string, client *http.Client) (*Source, error) {
	var (
		src *Source
		err error
	)
	switch {
	case name == "-":
		src = &Source{Name: "stdin", Size: -1, r: os.Stdin}
	case strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://"):
		src, err = openURL(ctx, name, client)
	default:
		src, err = openFile(name)
	}
	if err != nil {
		return nil, err
	}
	if err := src.decompress(); err != nil {
		src.Close()
		return nil, fmt.Errorf("source: %s: %w", name, err)
	}
	return src, nil
}

func openFile(name string) (*Source, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	size := int64(-1)
	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
		size = info.Size()
	}
	return &Source{Name: name, Size: size, r: f, closers: []func() error{f.Close}}, nil
}

func openURL(ctx context.Context, url string, client *http.Client) (*Source, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("source: failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: failed to make request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("source: %s: HTTP error: %d", url, resp.StatusCode)
	}
	return &Source{
		Name:    url,
		Size:    resp.ContentLength,
		r:       resp.Body,
		closers: []func() error{resp.Body.Close},
	}, nil
}

// decompress sniffs the stream's magic number and wraps it in the matching
// decompressor.
func (s *Source) decompress() error {
	br := bufio.NewReader(s.r)
	s.r = br
	magic, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return err
	}

	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return err
		}
		s.r = zr
		s.closers = append(s.closers, zr.Close)
		s.Compression = CompressionGzip
	case bytes.HasPrefix(magic, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return err
		}
		s.r = zr
		s.closers = append(s.closers, func() error {
			zr.Close()
			return nil
		})
		s.Compression = CompressionZstd
	default:
		return nil
	}
	s.Size = -1
	return nil
}
