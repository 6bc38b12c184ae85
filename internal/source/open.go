// Package source opens and streams the original data file. It hides whether
// the file is plain text or wrapped in a single-entry archive, and optionally
// decodes legacy character encodings, so the rest of the system only ever sees
// a stream of delimited lines.
package source

import (
	"archive/zip"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

type readCloser struct {
	io.Reader
	close func() error
}

func (r *readCloser) Close() error { return r.close() }

// Open returns a reader over the decoded contents of path. Supported
// wrappings, chosen by file extension:
//
//	.zip  single-entry archive; the entry is read in place, not extracted
//	.gz   gzip stream
//	.xz   xz stream
//
// Anything else is read as plain text. The caller owns the returned closer.
func Open(path string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return openZip(path)
	case ".gz":
		return openGzip(path)
	case ".xz":
		return openXz(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open source: %w", err)
		}
		return f, nil
	}
}

// openZip opens the single entry of a zip archive. An archive with any other
// number of entries is a malformed input: the tool has no way to know which
// entry is the dataset.
func openZip(path string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", path, err)
	}
	if len(zr.File) != 1 {
		_ = zr.Close()
		return nil, fmt.Errorf("zip %s has %d entries, expected exactly 1", path, len(zr.File))
	}
	entry, err := zr.File[0].Open()
	if err != nil {
		_ = zr.Close()
		return nil, fmt.Errorf("open zip entry %s in %s: %w", zr.File[0].Name, path, err)
	}
	return &readCloser{
		Reader: entry,
		close: func() error {
			_ = entry.Close()
			return zr.Close()
		},
	}, nil
}

func openGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open gzip %s: %w", path, err)
	}
	return &readCloser{
		Reader: gz,
		close: func() error {
			_ = gz.Close()
			return f.Close()
		},
	}, nil
}

func openXz(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	xr, err := xz.NewReader(bufio.NewReader(f))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open xz %s: %w", path, err)
	}
	return &readCloser{
		Reader: xr,
		close:  f.Close,
	}, nil
}

// Decode wraps rc with a decoder for the named character encoding. Empty,
// "utf-8" and "utf8" mean no transformation. Names are resolved through the
// IANA index, so e.g. "windows-1250" and "latin2" both work.
func Decode(rc io.ReadCloser, encoding string) (io.ReadCloser, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return rc, nil
	}
	enc, err := ianaindex.IANA.Encoding(encoding)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown source encoding %q", encoding)
	}
	return &readCloser{
		Reader: transform.NewReader(rc, enc.NewDecoder()),
		close:  rc.Close,
	}, nil
}
