package gldf

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// Compression selects the ZIP method used for written entries. Values match
// the ZIP method registry, so Zstandard rides on its assigned method id.
type Compression uint16

const (
	CompStore   Compression = 0
	CompDeflate Compression = 8
	CompZstd    Compression = 93
)

func (c Compression) zipMethod() (uint16, error) {
	switch c {
	case CompStore, CompDeflate, CompZstd:
		return uint16(c), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrCompression, c)
}

// Function variables for testing injection.
var (
	newFlateWriter = func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	}
	newZstdWriter = func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w)
	}
	newZstdReader = func(r io.Reader) (io.ReadCloser, error) {
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	}
)

// registerCompressors swaps in the klauspost deflate implementation and adds
// Zstandard under its ZIP method id.
func registerCompressors(zw *zip.Writer) {
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return newFlateWriter(out)
	})
	zw.RegisterCompressor(uint16(CompZstd), func(out io.Writer) (io.WriteCloser, error) {
		return newZstdWriter(out)
	})
}

func registerDecompressors(zr *zip.Reader) {
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
	zr.RegisterDecompressor(uint16(CompZstd), func(r io.Reader) io.ReadCloser {
		rc, err := newZstdReader(r)
		if err != nil {
			return errorReadCloser{err}
		}
		return rc
	})
}

// errorReadCloser surfaces a decompressor construction failure at read time,
// since the zip decompressor hook cannot return an error.
type errorReadCloser struct{ err error }

func (e errorReadCloser) Read([]byte) (int, error) { return 0, e.err }
func (e errorReadCloser) Close() error             { return nil }
