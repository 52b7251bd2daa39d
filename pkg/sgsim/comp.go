package sgsim

import (
	"fmt"
	"io"

	"github.com/andrew-torda/matrix"
)

// comp counts how many of each symbol appear at each read position.
// counts.Mat looks like [number_of_symbols][read_length]. It is a
// float32 matrix so it can be normalised in place.
type comp struct {
	syms    []byte
	mapping [256]int // mapping['C'] is the row for C, -1 if not counted
	counts  *matrix.FMatrix2d
	ncol    int
	nread   int
}

// newComp has a row for each base and one for the sentinel.
func newComp(cfg *Config) *comp {
	c := &comp{}
	for i := range c.mapping {
		c.mapping[i] = -1
	}
	add := func(s byte) {
		if c.mapping[s] == -1 {
			c.mapping[s] = len(c.syms)
			c.syms = append(c.syms, s)
		}
	}
	for i := 0; i < len(cfg.Bases); i++ {
		add(cfg.Bases[i])
	}
	add(cfg.Sentinel)
	if cfg.Reverse {
		for i := 0; i < len(cfg.Bases); i++ {
			if b := cmplmnt[cfg.Bases[i]]; b != 0 {
				add(b)
			}
		}
	}
	c.ncol = cfg.ReadSize
	c.counts = matrix.NewFMatrix2d(len(c.syms), c.ncol)
	return c
}

// add tallies one read. Symbols without a row are skipped.
func (c *comp) add(s []byte) {
	for i, b := range s {
		if row := c.mapping[b]; row >= 0 {
			c.counts.Mat[row][i]++
		}
	}
	c.nread++
}

// frac turns counts into fractions of the number of reads.
func (c *comp) frac() {
	if c.nread == 0 {
		return
	}
	n := float32(c.nread)
	for _, row := range c.counts.Mat {
		for j := range row {
			row[j] /= n
		}
	}
}

// write puts out a tab separated table, a header line with positions,
// then one line per symbol.
func (c *comp) write(w io.Writer) error {
	c.frac()
	ncol := c.ncol
	if _, err := io.WriteString(w, "sym"); err != nil {
		return err
	}
	for j := 0; j < ncol; j++ {
		if _, err := fmt.Fprintf(w, "\t%d", j); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	for i, row := range c.counts.Mat {
		if _, err := fmt.Fprintf(w, "%c", c.syms[i]); err != nil {
			return err
		}
		for _, x := range row {
			if _, err := fmt.Fprintf(w, "\t%.4f", x); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
