// 14 Oct 2026

/*
Sgsim makes test data for sgRNA counting programs like sgcount.
It writes a library of random guide sequences, reads which each carry one
of the guides, and the true number of reads made from each guide.

Usage:

	sgsim [flags]

With no flags you get the classic example set: 100 guides of length 20,
1000 reads of length 80 with the guide at the start, written to
library.fa, sequence.fq and counts.txt in the current directory.
Every read has an N at position 2 (counting from 0), wherever the guide is.
Give an output name ending in .gz and the file is compressed.

The flags are:

	-nlib n
		number of library sequences (100)
	-llib n
		length of library sequences (20)
	-nread n
		number of reads (1000)
	-lread n
		length of reads (80)
	-off n
		bases in front of the embedded guide (0)
	-r seed
		random number seed. 0 takes one from the clock, so runs differ.
	-o dest
		where files go. A directory, or s3://bucket/prefix.
		For S3 see SGSIM_S3_REGION, SGSIM_S3_ENDPOINT, SGSIM_S3_PATH_STYLE
		and the usual AWS credential variables.
	-lib, -reads, -counts name
		output file names
	-g name
		also write a gene to guide map
	-guides n
		guides per gene in the gene map (4)
	-c name
		also write per position base composition of the reads
	-m n
		substitute n bases in each embedded guide
	-rev
		reverse complement the reads
	-k
		count by library header, so identical guides are kept apart
	-v n
		verbosity

Counts are normally keyed by sequence, so if two library entries come out
identical they share one line in counts.txt.
*/
package main
