package sgsim

import (
	"fmt"
	"math/rand"
)

// Read is one generated read. Seq is prefix + Source + suffix, before
// the sentinel is written. Index says which element of the choice
// list Source came from.
type Read struct {
	Header string
	Seq    []byte
	Qual   []byte
	Source string
	Index  int
}

// ReadGen hands out reads one at a time, so the caller can write
// them as they come.
type ReadGen struct {
	cfg *Config
	lib []string
	rnd *rand.Rand
	i   int
}

// NewReadGen sets up a generator that chooses from lib. lib must not be
// empty if cfg.ReadNum > 0, Validate checks that.
func NewReadGen(cfg *Config, lib []string, rnd *rand.Rand) *ReadGen {
	return &ReadGen{cfg: cfg, lib: lib, rnd: rnd}
}

// Next returns the next read, or false once cfg.ReadNum have been made.
// Random numbers are drawn in a fixed order: library choice, prefix,
// suffix, quality, then any mismatches.
func (g *ReadGen) Next() (Read, bool) {
	cfg := g.cfg
	if g.i >= cfg.ReadNum {
		return Read{}, false
	}
	ndx := g.rnd.Intn(len(g.lib))
	l := g.lib[ndx]
	prefix := getseq(cfg.Offset, cfg.Bases, g.rnd)
	suffix := getseq(cfg.ReadSize-cfg.Offset-len(l), cfg.Bases, g.rnd)

	s := make([]byte, 0, cfg.ReadSize)
	s = append(s, prefix...)
	s = append(s, l...)
	s = append(s, suffix...)

	r := Read{
		Header: fmt.Sprintf("seq.%s.%d", l, g.i),
		Seq:    s,
		Qual:   getseq(cfg.ReadSize, cfg.Qual, g.rnd),
		Source: l,
		Index:  ndx,
	}
	if cfg.Mismatch > 0 {
		mutate(s[cfg.Offset:cfg.Offset+len(l)], cfg.Mismatch, cfg.Bases, g.rnd)
	}
	if cfg.Reverse {
		revComp(s)
	}
	g.i++
	return r, true
}

// GenReads makes all the reads at once.
func GenReads(cfg *Config, lib []string, rnd *rand.Rand) []Read {
	g := NewReadGen(cfg, lib, rnd)
	reads := make([]Read, 0, cfg.ReadNum)
	for r, ok := g.Next(); ok; r, ok = g.Next() {
		reads = append(reads, r)
	}
	return reads
}

// mutate changes n different positions of s, each to some other symbol
// from bases. No symbol may appear twice in bases.
func mutate(s []byte, n int, bases string, rnd *rand.Rand) {
	last := bases[len(bases)-1]
	for _, p := range rnd.Perm(len(s))[:n] {
		c := bases[rnd.Intn(len(bases)-1)]
		if c == s[p] {
			c = last
		}
		s[p] = c
	}
}

var cmplmnt = [256]byte{
	'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C', 'U': 'A', 'N': 'N',
	'a': 't', 't': 'a', 'c': 'g', 'g': 'c', 'u': 'a', 'n': 'n',
}

// revComp reverse complements s in place. Symbols we do not know are
// left as they are.
func revComp(s []byte) {
	for i, j := 0, len(s)-1; i <= j; i, j = i+1, j-1 {
		a, b := s[i], s[j]
		if c := cmplmnt[a]; c != 0 {
			a = c
		}
		if c := cmplmnt[b]; c != 0 {
			b = c
		}
		s[i], s[j] = b, a
	}
}
