package sgsim

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/andrew-torda/sgsim/pkg/outputs"
	. "github.com/andrew-torda/sgsim/pkg/seq/common"
	"github.com/andrew-torda/sgsim/pkg/zwrap"
)

// withFile creates name, lets fn write to it through a buffer and then
// closes it. Names ending in .gz are compressed. The first error wins,
// a failed close counts as a failed write.
func withFile(ctx context.Context, out outputs.Outputs, name string, fn func(w *bufio.Writer) error) (err error) {
	wc, err := out.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	wc = zwrap.WrapWriterName(wc, name)
	bw := bufio.NewWriter(wc)
	if err = fn(bw); err == nil {
		err = bw.Flush()
	}
	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// writeFasta writes one two line record.
func writeFasta(w io.Writer, e Entry) error {
	_, err := fmt.Fprintf(w, "%c%s\n%s\n", FastaCmmt, e.Header, e.Seq)
	return err
}

// writeFastq writes one four line record.
func writeFastq(w io.Writer, r Read) error {
	_, err := fmt.Fprintf(w, "%c%s\n%s\n%c\n%s\n", FastqCmmt, r.Header, r.Seq, FastqSep, r.Qual)
	return err
}

// writeCounts writes key<TAB>count lines in key order.
func writeCounts(w io.Writer, c *Counts) error {
	for _, k := range c.order {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", k, c.n[k]); err != nil {
			return err
		}
	}
	return nil
}
