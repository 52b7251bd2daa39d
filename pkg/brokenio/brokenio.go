// brokenio is a wrapper around an io.WriteCloser. It lets us provoke
// write and close failures so we can see that errors get back to the
// caller and are not swallowed.
// Typical use: in a test, get a writer from somewhere and write
// w = brokenio.NewWriter(w). Everything works as before until the
// byte limit is passed, then writes fail.

package brokenio

import (
	"errors"
	"fmt"
	"io"
)

// ErrBroken is returned, wrapped, by every provoked failure.
var ErrBroken = errors.New("brokenio: provoked failure")

// A BrknWrtClsr counts what goes through and fails once more than
// failAfter bytes have been asked for. A negative failAfter means
// writes never fail.
type BrknWrtClsr struct {
	wrt_orig  io.Writer
	failAfter int
	failClose bool
	nCalled   int
	nByte     int
	verbose   bool
}

// dfltWriter sets default values for a new brokenio writer.
var dfltWriter = BrknWrtClsr{
	failAfter: -1,
}

// SetFailAfter sets the number of bytes that will be written before
// failing.
func (w *BrknWrtClsr) SetFailAfter(n int) { w.failAfter = n }

// SetFailClose makes Close return an error.
func (w *BrknWrtClsr) SetFailClose(b bool) { w.failClose = b }

// SetVerbose sets the verbosity flag to true or false
func (w *BrknWrtClsr) SetVerbose(newV bool) { w.verbose = newV }

// NBytes is how much really got written.
func (w *BrknWrtClsr) NBytes() int { return w.nByte }

// NewWriter returns a new writer wrapped around the old one.
func NewWriter(wIn io.Writer) *BrknWrtClsr {
	var wOut = dfltWriter
	wOut.wrt_orig = wIn
	return &wOut
}

// Write passes data through until the limit is reached. The part
// that fits is written, then we return a short count and an error.
func (w *BrknWrtClsr) Write(p []byte) (int, error) {
	w.nCalled++
	if w.failAfter < 0 || w.nByte+len(p) <= w.failAfter {
		n, err := w.wrt_orig.Write(p)
		w.nByte += n
		return n, err
	}
	room := w.failAfter - w.nByte
	n, err := w.wrt_orig.Write(p[:room])
	w.nByte += n
	if err != nil {
		return n, err
	}
	return n, fmt.Errorf("%w after %d bytes", ErrBroken, w.nByte)
}

// Close closes the original if it can be closed.
func (w *BrknWrtClsr) Close() error {
	if w.verbose {
		fmt.Println("Closing", w.nCalled, "calls and", w.nByte, "bytes")
	}
	var err error
	if c, ok := w.wrt_orig.(io.Closer); ok {
		err = c.Close()
	}
	if w.failClose {
		return fmt.Errorf("%w on close", ErrBroken)
	}
	return err
}
