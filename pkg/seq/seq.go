// 20 Dec 2017

// Package seq reads back the fasta and fastq files we write.
// The whole file is mapped into memory with mmap and then cut into
// records. Sequences and comments are copied out of the mapping, so
// nothing points into it once the file is unmapped.
// Files whose name ends in .gz are decompressed first.
package seq

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	. "github.com/andrew-torda/sgsim/pkg/seq/common"
	"github.com/andrew-torda/sgsim/pkg/zwrap"
)

// seq is one record. Fasta records have no quality string.
type seq struct {
	cmmt string
	seq  []byte
	qual []byte
}

// Function GetSeq returns the sequence as a byte slice
func (s seq) GetSeq() []byte { return s.seq }

// Function GetCmmt returns the comment without the leading ">" or "@"
func (s seq) GetCmmt() string { return s.cmmt }

// GetQual returns the quality string. It is nil for fasta.
func (s seq) GetQual() []byte { return s.qual }

// Function Len
func (s seq) Len() int { return len(s.seq) }

// SeqGrp is a group of sequences in the order they were read.
type SeqGrp struct {
	seqs []seq
}

// GetNSeq returns the number of sequences in a group.
func (seqgrp *SeqGrp) GetNSeq() int { return len(seqgrp.seqs) }

// GetSeqSlc gives back the slice of sequences.
func (seqgrp *SeqGrp) GetSeqSlc() []seq { return seqgrp.seqs }

// Seqs returns just the sequences as strings.
func (seqgrp *SeqGrp) Seqs() []string {
	r := make([]string, len(seqgrp.seqs))
	for i, s := range seqgrp.seqs {
		r[i] = string(s.seq)
	}
	return r
}

// byMmap maps fname and hands the bytes to fn. An empty file is
// not mapped, fn just gets a nil slice.
func byMmap(fname string, fn func([]byte) error) error {
	fp, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer fp.Close()
	fi, err := fp.Stat()
	if err != nil {
		return err
	}
	if fi.Size() == 0 {
		return fn(nil)
	}
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("mmap %s: %w", fname, err)
	}
	defer mm.Unmap()
	if !zwrap.IsGz(fname) {
		return fn(mm)
	}
	zr, err := zwrap.Wrap(io.NopCloser(bytes.NewReader(mm)))
	if err != nil {
		return fmt.Errorf("%s: %w", fname, err)
	}
	defer zr.Close()
	b, err := io.ReadAll(zr)
	if err != nil {
		return fmt.Errorf("decompressing %s: %w", fname, err)
	}
	return fn(b)
}

// Readfile reads a fasta or fastq file. The format is decided by the
// first character, ">" or "@". An empty file gives an empty group.
func Readfile(fname string) (*SeqGrp, error) {
	seqgrp := new(SeqGrp)
	err := byMmap(fname, func(b []byte) error {
		if len(b) == 0 {
			return nil
		}
		switch b[0] {
		case FastaCmmt:
			return ParseFasta(b, seqgrp)
		case FastqCmmt:
			return ParseFastq(b, seqgrp)
		}
		return fmt.Errorf("%s: unknown format starting with %q", fname, b[0])
	})
	return seqgrp, err
}
