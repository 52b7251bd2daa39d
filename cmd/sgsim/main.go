// 14 Oct 2026

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/andrew-torda/sgsim/pkg/outputs"
	. "github.com/andrew-torda/sgsim/pkg/seq/common"
	"github.com/andrew-torda/sgsim/pkg/sgsim"
)

// mymain is separate from main so deferred calls run before we exit.
func mymain(argv []string) int {
	f := flag.NewFlagSet("sgsim", flag.ExitOnError)
	cfg := sgsim.DefaultConfig()
	var iseed int64
	var dest string

	f.IntVar(&cfg.LibNum, "nlib", cfg.LibNum, "number of library sequences")
	f.IntVar(&cfg.LibSize, "llib", cfg.LibSize, "length of library sequences")
	f.IntVar(&cfg.ReadNum, "nread", cfg.ReadNum, "number of reads")
	f.IntVar(&cfg.ReadSize, "lread", cfg.ReadSize, "length of reads")
	f.IntVar(&cfg.Offset, "off", cfg.Offset, "bases before the embedded sequence")
	f.Int64Var(&iseed, "r", 0, "random number seed, 0 for the clock")
	f.StringVar(&dest, "o", "", "output directory or s3://bucket/prefix")
	f.StringVar(&cfg.LibFile, "lib", cfg.LibFile, "library file name")
	f.StringVar(&cfg.ReadFile, "reads", cfg.ReadFile, "reads file name")
	f.StringVar(&cfg.CountFile, "counts", cfg.CountFile, "count table file name")
	f.StringVar(&cfg.GeneFile, "g", "", "gene map file name")
	f.IntVar(&cfg.GuidesPerGene, "guides", cfg.GuidesPerGene, "library sequences per gene")
	f.StringVar(&cfg.CompFile, "c", "", "base composition file name")
	f.IntVar(&cfg.Mismatch, "m", 0, "substitutions in each embedded sequence")
	f.BoolVar(&cfg.Reverse, "rev", false, "reverse complement reads")
	f.BoolVar(&cfg.KeyByHeader, "k", false, "count by library header, not sequence")
	f.IntVar(&cfg.Vbsty, "v", 0, "verbosity")
	if err := f.Parse(argv); err != nil {
		fmt.Fprintln(f.Output(), err)
		return ExitUsageError
	}
	if f.NArg() != 0 {
		fmt.Fprintln(f.Output(), "unexpected arguments", f.Args())
		f.Usage()
		return ExitUsageError
	}
	if iseed == 0 {
		iseed = time.Now().UnixNano()
	}
	if cfg.Vbsty > 0 {
		log.Println("random number seed", iseed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := outputs.Open(ctx, dest)
	if err != nil {
		fmt.Fprintln(os.Stderr, "output destination:", err)
		return ExitFailure
	}
	rnd := rand.New(rand.NewSource(iseed))
	sum, err := sgsim.Run(ctx, cfg, rnd, out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		var cerr *sgsim.ConfigError
		if errors.As(err, &cerr) {
			return ExitUsageError
		}
		return ExitFailure
	}
	if cfg.Vbsty > 0 {
		log.Printf("wrote %d library entries (%d count keys), %d reads to %s: %v",
			sum.NEntry, sum.NKey, sum.NRead, sum.Dest, sum.Files)
	}
	return ExitSuccess
}

func main() {
	os.Exit(mymain(os.Args[1:]))
}
