// 14 Oct 2026

package sgsim

import (
	"bufio"
	"context"
	"log"
	"math/rand"

	"github.com/andrew-torda/sgsim/pkg/outputs"
)

// Summary is what a run made.
type Summary struct {
	NEntry int      // library entries written
	NKey   int      // lines in the count table
	NRead  int      // reads written
	Files  []string // in the order they were written
	Dest   string
}

// Run generates and writes everything. The stages are strictly in
// order: library, reads, counts, then the optional gene map and
// composition table. Each file is open only during its own stage.
// Nothing is cleaned up if a stage fails.
func Run(ctx context.Context, cfg *Config, rnd *rand.Rand, out outputs.Outputs) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sum := &Summary{Dest: out.Describe()}
	vlog := func(format string, a ...any) {
		if cfg.Vbsty > 1 {
			log.Printf(format, a...)
		}
	}

	lib := GenLibrary(cfg, rnd)
	counts := NewCounts()
	err := withFile(ctx, out, cfg.LibFile, func(w *bufio.Writer) error {
		for _, e := range lib {
			if err := ctx.Err(); err != nil {
				return err
			}
			if cfg.KeyByHeader {
				counts.Add(e.Header)
			} else {
				counts.Add(e.Seq)
			}
			if err := writeFasta(w, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return sum, err
	}
	sum.NEntry = len(lib)
	sum.Files = append(sum.Files, cfg.LibFile)
	vlog("%d library entries, %d distinct keys in %s", len(lib), counts.Len(), cfg.LibFile)

	// choices[i] is the sequence a read may embed, keys[i] the count
	// table entry it is credited to.
	var choices, keys []string
	if cfg.KeyByHeader {
		for _, e := range lib {
			choices = append(choices, e.Seq)
			keys = append(keys, e.Header)
		}
	} else {
		choices = counts.Keys()
		keys = choices
	}

	var cmp *comp
	if cfg.CompFile != "" {
		cmp = newComp(cfg)
	}
	gen := NewReadGen(cfg, choices, rnd)
	err = withFile(ctx, out, cfg.ReadFile, func(w *bufio.Writer) error {
		for r, ok := gen.Next(); ok; r, ok = gen.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			counts.Inc(keys[r.Index])
			r.Seq[cfg.SentinelPos] = cfg.Sentinel
			if cmp != nil {
				cmp.add(r.Seq)
			}
			if err := writeFastq(w, r); err != nil {
				return err
			}
			sum.NRead++
		}
		return nil
	})
	if err != nil {
		return sum, err
	}
	sum.Files = append(sum.Files, cfg.ReadFile)
	vlog("%d reads in %s", sum.NRead, cfg.ReadFile)

	err = withFile(ctx, out, cfg.CountFile, func(w *bufio.Writer) error {
		return writeCounts(w, counts)
	})
	if err != nil {
		return sum, err
	}
	sum.NKey = counts.Len()
	sum.Files = append(sum.Files, cfg.CountFile)

	if cfg.GeneFile != "" {
		err = withFile(ctx, out, cfg.GeneFile, func(w *bufio.Writer) error {
			return writeGeneMap(w, lib, cfg.GuidesPerGene)
		})
		if err != nil {
			return sum, err
		}
		sum.Files = append(sum.Files, cfg.GeneFile)
	}
	if cmp != nil {
		err = withFile(ctx, out, cfg.CompFile, func(w *bufio.Writer) error {
			return cmp.write(w)
		})
		if err != nil {
			return sum, err
		}
		sum.Files = append(sum.Files, cfg.CompFile)
	}
	return sum, nil
}
