package sgsim

import (
	"fmt"
	"io"
)

// writeGeneMap assigns consecutive library entries to made up genes,
// perGene at a time. Lines are gene<TAB>header, the layout sgcount
// reads with -g.
func writeGeneMap(w io.Writer, lib []Entry, perGene int) error {
	for i, e := range lib {
		if _, err := fmt.Fprintf(w, "gene.%d\t%s\n", i/perGene, e.Header); err != nil {
			return err
		}
	}
	return nil
}
