// Readers for fasta and fastq formatted bytes.

package seq

import (
	"bytes"
	"errors"
	"fmt"

	. "github.com/andrew-torda/sgsim/pkg/seq/common"
)

const NL = '\n'

// lines splits b on newlines, without the trailing empty line and
// with any carriage returns removed.
func lines(b []byte) [][]byte {
	ll := bytes.Split(b, []byte{NL})
	if n := len(ll); n > 0 && len(ll[n-1]) == 0 {
		ll = ll[:n-1]
	}
	for i := range ll {
		ll[i] = bytes.TrimSuffix(ll[i], []byte{'\r'})
	}
	return ll
}

// ParseFasta reads fasta formatted bytes. A sequence may be spread
// over several lines. White space in sequences is dropped.
func ParseFasta(b []byte, seqgrp *SeqGrp) error {
	var cur *seq
	for i, l := range lines(b) {
		if len(l) > 0 && l[0] == FastaCmmt {
			seqgrp.seqs = append(seqgrp.seqs, seq{cmmt: string(l[1:])})
			cur = &seqgrp.seqs[len(seqgrp.seqs)-1]
			continue
		}
		if cur == nil {
			return fmt.Errorf("line %d: sequence before first comment", i+1)
		}
		cur.seq = append(cur.seq, bytes.Join(bytes.Fields(l), nil)...)
	}
	for _, s := range seqgrp.seqs {
		if len(s.seq) == 0 {
			return errors.New("Zero length sequence after " + s.cmmt)
		}
	}
	return nil
}

// ParseFastq reads four line fastq records. We do not allow sequences
// to wrap over lines.
func ParseFastq(b []byte, seqgrp *SeqGrp) error {
	ll := lines(b)
	if len(ll)%4 != 0 {
		return fmt.Errorf("fastq has %d lines, not a multiple of 4", len(ll))
	}
	for i := 0; i < len(ll); i += 4 {
		h, s, sep, q := ll[i], ll[i+1], ll[i+2], ll[i+3]
		if len(h) == 0 || h[0] != FastqCmmt {
			return fmt.Errorf("line %d: want %c, got %q", i+1, FastqCmmt, h)
		}
		if len(sep) == 0 || sep[0] != FastqSep {
			return fmt.Errorf("line %d: want %c separator, got %q", i+3, FastqSep, sep)
		}
		if len(q) != len(s) {
			return fmt.Errorf("record %s: sequence length %d, quality length %d", h[1:], len(s), len(q))
		}
		seqgrp.seqs = append(seqgrp.seqs, seq{
			cmmt: string(h[1:]),
			seq:  bytes.Clone(s),
			qual: bytes.Clone(q),
		})
	}
	return nil
}
