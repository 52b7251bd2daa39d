package sgsim

import (
	"fmt"
	"math/rand"
)

// Entry is one library sequence with its header, lib.<i>.
type Entry struct {
	Header string
	Seq    string
}

// getseq returns n symbols drawn uniformly, with replacement, from alph.
func getseq(n int, alph string, rnd *rand.Rand) []byte {
	ret := make([]byte, n)
	l := len(alph)
	for i := range ret {
		ret[i] = alph[rnd.Intn(l)]
	}
	return ret
}

// GenLibrary makes cfg.LibNum random sequences of length cfg.LibSize.
// Nothing stops two entries coming out the same.
func GenLibrary(cfg *Config, rnd *rand.Rand) []Entry {
	lib := make([]Entry, cfg.LibNum)
	for i := range lib {
		lib[i] = Entry{
			Header: fmt.Sprintf("lib.%d", i),
			Seq:    string(getseq(cfg.LibSize, cfg.Bases, rnd)),
		}
	}
	return lib
}
