// Package zwrap wraps writers and readers so output whose name ends in
// ".gz" is compressed on the way out and decompressed on the way back in.
// Close always closes the compressor first, then the underlying stream.

package zwrap

import (
	"compress/gzip"
	"errors"
	"io"
	"strings"
)

const GzSuffix = ".gz"

// IsGz says whether a file name asks for compression.
func IsGz(name string) bool { return strings.HasSuffix(name, GzSuffix) }

// WcGzip is what we hand back for writing.
type WcGzip struct {
	wc   io.WriteCloser
	zwrt *gzip.Writer
}

// Write goes to the compressor if there is one.
func (w *WcGzip) Write(p []byte) (int, error) {
	if w.zwrt != nil {
		return w.zwrt.Write(p)
	}
	return w.wc.Write(p)
}

// Close flushes and closes the compressor, then the backing writer.
// The backing writer is closed even if the compressor failed.
func (w *WcGzip) Close() error {
	if w.zwrt == nil {
		return w.wc.Close()
	}
	e1 := w.zwrt.Close()
	e2 := w.wc.Close()
	return errors.Join(e1, e2)
}

// WrapWriter compresses everything written to wc.
func WrapWriter(wc io.WriteCloser) *WcGzip {
	return &WcGzip{wc: wc, zwrt: gzip.NewWriter(wc)}
}

// WrapWriterName only compresses if name ends in .gz.
func WrapWriterName(wc io.WriteCloser, name string) io.WriteCloser {
	if IsGz(name) {
		return WrapWriter(wc)
	}
	return wc
}

// RcGzip is the reading side.
type RcGzip struct {
	rc   io.ReadCloser
	zrdr *gzip.Reader
}

// Read makes sure we read from the compressed stream and
// not the underlying stream.
func (r *RcGzip) Read(p []byte) (int, error) {
	if r.zrdr != nil {
		return r.zrdr.Read(p)
	}
	return r.rc.Read(p)
}

// Close closes the decompressor, then the backing stream.
func (r *RcGzip) Close() error {
	if r.zrdr == nil {
		return r.rc.Close()
	}
	e1 := r.zrdr.Close()
	e2 := r.rc.Close()
	return errors.Join(e1, e2)
}

// Wrap takes a source and wraps it in a decompressor.
func Wrap(rc io.ReadCloser) (*RcGzip, error) {
	var rz RcGzip
	var err error
	rz.rc = rc
	rz.zrdr, err = gzip.NewReader(rc)
	return &rz, err
}
