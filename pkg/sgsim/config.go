// 14 Oct 2026

package sgsim

import (
	"fmt"
	"strings"

	. "github.com/andrew-torda/sgsim/pkg/seq/common"
)

// Defaults. The output names are what sgcount's example directory
// expects.
const (
	DfltBases       = "ACGT"
	DfltQual        = "12345"
	DfltLibNum      = 100
	DfltLibSize     = 20
	DfltReadNum     = 1000
	DfltReadSize    = 80
	DfltOffset      = 0
	DfltSentinelPos = 2
	DfltGuides      = 4
	DfltLibFile     = "library.fa"
	DfltReadFile    = "sequence.fq"
	DfltCountFile   = "counts.txt"
)

// Config is everything a run needs. The zero value is not useful, start
// from DefaultConfig().
type Config struct {
	Bases       string // alphabet for library and flanking bases
	Qual        string // alphabet for quality strings
	LibNum      int    // number of library entries
	LibSize     int    // length of each library sequence
	ReadNum     int    // number of reads
	ReadSize    int    // total length of each read
	Offset      int    // bases before the embedded library sequence
	Sentinel    byte   // written over every read at SentinelPos
	SentinelPos int    // absolute, not relative to Offset

	Mismatch      int  // substitutions inside the embedded sequence
	Reverse       bool // reverse complement reads before the sentinel
	KeyByHeader   bool // count by library header, not by sequence
	GuidesPerGene int  // library entries per gene in the gene map

	LibFile   string
	ReadFile  string
	CountFile string
	GeneFile  string // optional
	CompFile  string // optional

	Vbsty int
}

// DefaultConfig gives the settings of the original example generator.
func DefaultConfig() *Config {
	return &Config{
		Bases:         DfltBases,
		Qual:          DfltQual,
		LibNum:        DfltLibNum,
		LibSize:       DfltLibSize,
		ReadNum:       DfltReadNum,
		ReadSize:      DfltReadSize,
		Offset:        DfltOffset,
		Sentinel:      SentinelChar,
		SentinelPos:   DfltSentinelPos,
		GuidesPerGene: DfltGuides,
		LibFile:       DfltLibFile,
		ReadFile:      DfltReadFile,
		CountFile:     DfltCountFile,
	}
}

// ConfigError says which setting is unusable.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bad configuration: %s: %s", e.Field, e.Msg)
}

func cfgErr(field, format string, a ...any) *ConfigError {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, a...)}
}

// SuffixLen is the number of random bases after the embedded sequence.
func (cfg *Config) SuffixLen() int { return cfg.ReadSize - cfg.Offset - cfg.LibSize }

// Validate checks the settings before anything is generated, so a bad
// combination fails at once with a message instead of half way through.
func (cfg *Config) Validate() error {
	nonNeg := []struct {
		name string
		v    int
	}{
		{"LibNum", cfg.LibNum}, {"LibSize", cfg.LibSize},
		{"ReadNum", cfg.ReadNum}, {"ReadSize", cfg.ReadSize},
		{"Offset", cfg.Offset}, {"SentinelPos", cfg.SentinelPos},
		{"Mismatch", cfg.Mismatch},
	}
	for _, x := range nonNeg {
		if x.v < 0 {
			return cfgErr(x.name, "%d is negative", x.v)
		}
	}
	if cfg.Bases == "" {
		return cfgErr("Bases", "empty alphabet")
	}
	if cfg.Qual == "" {
		return cfgErr("Qual", "empty alphabet")
	}
	if cfg.SuffixLen() < 0 {
		return cfgErr("Offset", "offset %d + library length %d is more than read length %d",
			cfg.Offset, cfg.LibSize, cfg.ReadSize)
	}
	if cfg.ReadNum > 0 {
		if cfg.LibNum == 0 {
			return cfgErr("LibNum", "%d reads asked for, but the library is empty", cfg.ReadNum)
		}
		if cfg.SentinelPos >= cfg.ReadSize {
			return cfgErr("SentinelPos", "position %d is outside reads of length %d",
				cfg.SentinelPos, cfg.ReadSize)
		}
	}
	if cfg.Mismatch > cfg.LibSize {
		return cfgErr("Mismatch", "%d mismatches in a library sequence of length %d",
			cfg.Mismatch, cfg.LibSize)
	}
	if cfg.Mismatch > 0 {
		if len(cfg.Bases) < 2 {
			return cfgErr("Mismatch", "need at least two bases to make a substitution")
		}
		if i := strings.IndexFunc(cfg.Bases, func(r rune) bool {
			return strings.Count(cfg.Bases, string(r)) > 1
		}); i >= 0 {
			return cfgErr("Bases", "%c appears more than once, substitutions need distinct bases", cfg.Bases[i])
		}
	}
	if cfg.GeneFile != "" && cfg.GuidesPerGene < 1 {
		return cfgErr("GuidesPerGene", "%d guides per gene", cfg.GuidesPerGene)
	}
	files := []struct{ name, v string }{
		{"LibFile", cfg.LibFile}, {"ReadFile", cfg.ReadFile}, {"CountFile", cfg.CountFile},
	}
	for _, f := range files {
		if f.v == "" {
			return cfgErr(f.name, "no file name")
		}
	}
	return nil
}
