package sgsim_test

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/andrew-torda/sgsim/pkg/brokenio"
	"github.com/andrew-torda/sgsim/pkg/outputs"
	"github.com/andrew-torda/sgsim/pkg/seq"
	"github.com/andrew-torda/sgsim/pkg/sgsim"
)

const iseed int64 = 1637

func newRnd() *rand.Rand { return rand.New(rand.NewSource(iseed)) }

// countLine is one line of the count table
type countLine struct {
	key string
	n   int
}

func parseCounts(t *testing.T, b []byte) []countLine {
	t.Helper()
	var ret []countLine
	for _, l := range strings.Split(strings.TrimSuffix(string(b), "\n"), "\n") {
		if l == "" {
			continue
		}
		f := strings.Split(l, "\t")
		if len(f) != 2 {
			t.Fatalf("count line %q does not have two fields", l)
		}
		n, err := strconv.Atoi(f[1])
		if err != nil {
			t.Fatal(err)
		}
		ret = append(ret, countLine{f[0], n})
	}
	return ret
}

// runDir does a run into a temporary directory and reads the three
// files back.
func runDir(t *testing.T, cfg *sgsim.Config) (*sgsim.Summary, *seq.SeqGrp, *seq.SeqGrp, []countLine) {
	t.Helper()
	d, err := outputs.NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sum, err := sgsim.Run(context.Background(), cfg, newRnd(), d)
	if err != nil {
		t.Fatal(err)
	}
	lib, err := seq.Readfile(d.Path(cfg.LibFile))
	if err != nil {
		t.Fatal("reading library back:", err)
	}
	reads, err := seq.Readfile(d.Path(cfg.ReadFile))
	if err != nil {
		t.Fatal("reading reads back:", err)
	}
	b, err := os.ReadFile(d.Path(cfg.CountFile))
	if err != nil {
		t.Fatal(err)
	}
	return sum, lib, reads, parseCounts(t, b)
}

// TestDefaults runs with the default settings and checks everything we
// can say about the output.
func TestDefaults(t *testing.T) {
	cfg := sgsim.DefaultConfig()
	sum, lib, reads, counts := runDir(t, cfg)

	if lib.GetNSeq() != cfg.LibNum || sum.NEntry != cfg.LibNum {
		t.Fatalf("library has %d entries, wanted %d", lib.GetNSeq(), cfg.LibNum)
	}
	for i, s := range lib.GetSeqSlc() {
		if want := "lib." + strconv.Itoa(i); s.GetCmmt() != want {
			t.Fatalf("header %q, wanted %q", s.GetCmmt(), want)
		}
		if s.Len() != cfg.LibSize {
			t.Fatalf("library seq length %d, wanted %d", s.Len(), cfg.LibSize)
		}
		if strings.Trim(string(s.GetSeq()), cfg.Bases) != "" {
			t.Fatalf("library seq %s has symbols outside %s", s.GetSeq(), cfg.Bases)
		}
	}

	keys := make(map[string]int)
	total := 0
	for _, c := range counts {
		keys[c.key] = c.n
		total += c.n
	}
	if total != cfg.ReadNum {
		t.Fatalf("counts add up to %d, wanted %d", total, cfg.ReadNum)
	}
	if len(keys) != len(counts) {
		t.Fatal("repeated key in count table")
	}

	libset := make(map[string]bool)
	for _, s := range lib.Seqs() {
		libset[s] = true
	}
	if len(libset) != len(keys) {
		t.Fatalf("%d distinct library sequences, %d count keys", len(libset), len(keys))
	}
	for s := range libset {
		if _, ok := keys[s]; !ok {
			t.Fatalf("library sequence %s not in count table", s)
		}
	}

	if reads.GetNSeq() != cfg.ReadNum || sum.NRead != cfg.ReadNum {
		t.Fatalf("got %d reads, wanted %d", reads.GetNSeq(), cfg.ReadNum)
	}
	seen := make(map[string]int)
	for i, r := range reads.GetSeqSlc() {
		s, q := string(r.GetSeq()), string(r.GetQual())
		if len(s) != cfg.ReadSize || len(q) != cfg.ReadSize {
			t.Fatalf("read %d lengths %d %d", i, len(s), len(q))
		}
		if strings.Trim(q, cfg.Qual) != "" {
			t.Fatalf("quality %s has symbols outside %s", q, cfg.Qual)
		}
		if s[cfg.SentinelPos] != 'N' {
			t.Fatalf("read %d has %c at sentinel position", i, s[cfg.SentinelPos])
		}
		f := strings.Split(r.GetCmmt(), ".")
		if len(f) != 3 || f[0] != "seq" || f[2] != strconv.Itoa(i) {
			t.Fatalf("bad read header %s", r.GetCmmt())
		}
		src := f[1]
		if _, ok := keys[src]; !ok {
			t.Fatalf("read header %s names a sequence not in the count table", r.GetCmmt())
		}
		// offset is 0, so after the sentinel the embedded part still
		// matches except at position 2.
		emb := s[cfg.Offset : cfg.Offset+cfg.LibSize]
		if emb[:2] != src[:2] || emb[3:] != src[3:] {
			t.Fatalf("read %d does not embed %s", i, src)
		}
		seen[src]++
	}
	for k, n := range keys {
		if seen[k] != n {
			t.Fatalf("%s counted %d times, but %d reads name it", k, n, seen[k])
		}
	}
	if want := []string{"library.fa", "sequence.fq", "counts.txt"}; strings.Join(sum.Files, " ") != strings.Join(want, " ") {
		t.Fatalf("files %v", sum.Files)
	}
}

// TestNoReads has M == 0. The reads file is empty and every count is 0.
func TestNoReads(t *testing.T) {
	cfg := sgsim.DefaultConfig()
	cfg.ReadNum = 0
	sum, _, reads, counts := runDir(t, cfg)
	if reads.GetNSeq() != 0 || sum.NRead != 0 {
		t.Fatal("reads written with ReadNum 0")
	}
	if len(counts) == 0 {
		t.Fatal("count table empty")
	}
	for _, c := range counts {
		if c.n != 0 {
			t.Fatalf("count %d for %s with no reads", c.n, c.key)
		}
	}
}

// TestCollapse uses one base long sequences, so at most four of the
// 100 entries can be distinct and duplicates must share a bucket.
func TestCollapse(t *testing.T) {
	cfg := sgsim.DefaultConfig()
	cfg.LibSize = 1
	cfg.SentinelPos = 0
	sum, lib, _, counts := runDir(t, cfg)
	if len(counts) > 4 || sum.NKey != len(counts) {
		t.Fatalf("%d count keys from one base sequences", len(counts))
	}
	total := 0
	for _, c := range counts {
		total += c.n
	}
	if total != cfg.ReadNum {
		t.Fatalf("collapsed counts add up to %d", total)
	}
	// keys come out in the order first seen in the library
	var order []string
	got := make(map[string]bool)
	for _, s := range lib.Seqs() {
		if !got[s] {
			got[s] = true
			order = append(order, s)
		}
	}
	for i, c := range counts {
		if c.key != order[i] {
			t.Fatalf("count key %d is %s, wanted %s", i, c.key, order[i])
		}
	}
}

// TestKeyByHeader keeps duplicates apart by counting headers.
func TestKeyByHeader(t *testing.T) {
	cfg := sgsim.DefaultConfig()
	cfg.LibSize = 1
	cfg.KeyByHeader = true
	_, _, _, counts := runDir(t, cfg)
	if len(counts) != cfg.LibNum {
		t.Fatalf("%d keys, wanted one per entry", len(counts))
	}
	total := 0
	for i, c := range counts {
		if c.key != "lib."+strconv.Itoa(i) {
			t.Fatalf("key %s in position %d", c.key, i)
		}
		total += c.n
	}
	if total != cfg.ReadNum {
		t.Fatalf("counts add up to %d", total)
	}
}

func TestSeedRepeats(t *testing.T) {
	cfg := sgsim.DefaultConfig()
	cfg.ReadNum = 50
	var got [2][]byte
	for i := range got {
		m := outputs.NewMemory()
		if _, err := sgsim.Run(context.Background(), cfg, newRnd(), m); err != nil {
			t.Fatal(err)
		}
		got[i], _ = m.Get(cfg.ReadFile)
	}
	if string(got[0]) != string(got[1]) || len(got[0]) == 0 {
		t.Fatal("same seed gave different reads")
	}
}

func TestGzOutput(t *testing.T) {
	cfg := sgsim.DefaultConfig()
	cfg.ReadNum = 20
	cfg.LibFile = "library.fa.gz"
	cfg.ReadFile = "sequence.fq.gz"
	_, lib, reads, _ := runDir(t, cfg)
	if lib.GetNSeq() != cfg.LibNum || reads.GetNSeq() != cfg.ReadNum {
		t.Fatalf("gz round trip gave %d and %d records", lib.GetNSeq(), reads.GetNSeq())
	}
}

func TestExtras(t *testing.T) {
	cfg := sgsim.DefaultConfig()
	cfg.LibNum = 10
	cfg.GuidesPerGene = 4
	cfg.GeneFile = "genemap.tsv"
	cfg.CompFile = "comp.tsv"
	m := outputs.NewMemory()
	sum, err := sgsim.Run(context.Background(), cfg, newRnd(), m)
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Files) != 5 {
		t.Fatalf("wrote %v", sum.Files)
	}
	g, _ := m.Get("genemap.tsv")
	gl := strings.Split(strings.TrimSpace(string(g)), "\n")
	if len(gl) != cfg.LibNum || gl[0] != "gene.0\tlib.0" || gl[4] != "gene.1\tlib.4" || gl[9] != "gene.2\tlib.9" {
		t.Fatalf("gene map wrong:\n%s", g)
	}

	c, _ := m.Get("comp.tsv")
	cl := strings.Split(strings.TrimSpace(string(c)), "\n")
	if len(cl) != 6 { // header, ACGT, N
		t.Fatalf("composition has %d lines", len(cl))
	}
	if f := strings.Split(cl[0], "\t"); len(f) != cfg.ReadSize+1 || f[0] != "sym" {
		t.Fatalf("composition header wrong %q", cl[0])
	}
	nrow := strings.Split(cl[5], "\t")
	if nrow[0] != "N" || nrow[cfg.SentinelPos+1] != "1.0000" || nrow[1] != "0.0000" {
		t.Fatalf("sentinel row wrong %q", cl[5])
	}
}

func TestReverse(t *testing.T) {
	cfg := sgsim.DefaultConfig()
	cfg.ReadNum = 100
	cfg.Reverse = true
	_, _, reads, _ := runDir(t, cfg)
	rc := strings.NewReplacer("A", "T", "T", "A", "C", "G", "G", "C")
	for _, r := range reads.GetSeqSlc() {
		src := strings.Split(r.GetCmmt(), ".")[1]
		var b strings.Builder
		for i := len(src) - 1; i >= 0; i-- {
			b.WriteByte(src[i])
		}
		want := rc.Replace(b.String())
		s := string(r.GetSeq())
		if got := s[len(s)-cfg.LibSize:]; got != want {
			t.Fatalf("read %s ends %s, wanted %s", r.GetCmmt(), got, want)
		}
		if s[cfg.SentinelPos] != 'N' {
			t.Fatal("sentinel missing after reverse complement")
		}
	}
}

func TestMismatch(t *testing.T) {
	cfg := sgsim.DefaultConfig()
	cfg.ReadNum = 200
	cfg.Offset = 10
	cfg.Mismatch = 1
	_, _, reads, _ := runDir(t, cfg)
	for _, r := range reads.GetSeqSlc() {
		src := strings.Split(r.GetCmmt(), ".")[1]
		emb := string(r.GetSeq())[cfg.Offset : cfg.Offset+cfg.LibSize]
		ndiff := 0
		for i := range emb {
			if emb[i] != src[i] {
				ndiff++
			}
		}
		if ndiff != 1 {
			t.Fatalf("read %s has %d differences, wanted 1", r.GetCmmt(), ndiff)
		}
	}
}

func TestBadConfig(t *testing.T) {
	cfg := sgsim.DefaultConfig()
	cfg.Offset = 70
	m := outputs.NewMemory()
	_, err := sgsim.Run(context.Background(), cfg, newRnd(), m)
	var cerr *sgsim.ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "Offset" {
		t.Fatalf("wanted offset config error, got %v", err)
	}
	if len(m.Names()) != 0 {
		t.Fatal("files written despite bad configuration")
	}
}

// brokenOut hands out writers that fail after limit bytes, or on
// close if failClose is set.
type brokenOut struct {
	*outputs.Memory
	victim    string
	limit     int
	failClose bool
}

func (b *brokenOut) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	w, err := b.Memory.Create(ctx, name)
	if err != nil || name != b.victim {
		return w, err
	}
	bw := brokenio.NewWriter(w)
	if b.failClose {
		bw.SetFailClose(true)
	} else {
		bw.SetFailAfter(b.limit)
	}
	return bw, nil
}

func TestWriteFails(t *testing.T) {
	cfg := sgsim.DefaultConfig()
	for _, victim := range []string{cfg.LibFile, cfg.ReadFile, cfg.CountFile} {
		out := &brokenOut{Memory: outputs.NewMemory(), victim: victim, limit: 100}
		_, err := sgsim.Run(context.Background(), cfg, newRnd(), out)
		if !errors.Is(err, brokenio.ErrBroken) {
			t.Fatalf("%s: wanted provoked error, got %v", victim, err)
		}
		if !strings.Contains(err.Error(), victim) {
			t.Fatalf("error %q does not name %s", err, victim)
		}
	}
}

// TestCloseFailsGz has the backing writer of a compressed file fail
// on close. The error still has to unwrap to the cause.
func TestCloseFailsGz(t *testing.T) {
	cfg := sgsim.DefaultConfig()
	cfg.CountFile = "counts.txt.gz"
	for _, victim := range []string{cfg.LibFile, cfg.CountFile} {
		gz := strings.HasSuffix(victim, ".gz")
		out := &brokenOut{Memory: outputs.NewMemory(), victim: victim, failClose: gz, limit: 100}
		_, err := sgsim.Run(context.Background(), cfg, newRnd(), out)
		if !errors.Is(err, brokenio.ErrBroken) {
			t.Fatalf("%s: wanted provoked error, got %v", victim, err)
		}
		if !strings.Contains(err.Error(), victim) {
			t.Fatalf("error %q does not name %s", err, victim)
		}
	}
}

// TestSentinelInPrefix puts the embedded sequence well after position
// 2, so the N lands in the random prefix and the embedded part is intact.
func TestSentinelInPrefix(t *testing.T) {
	cfg := sgsim.DefaultConfig()
	cfg.ReadNum = 200
	cfg.Offset = 10
	_, _, reads, _ := runDir(t, cfg)
	for _, r := range reads.GetSeqSlc() {
		s := string(r.GetSeq())
		if s[cfg.SentinelPos] != 'N' {
			t.Fatalf("read %s has %c at sentinel position", r.GetCmmt(), s[cfg.SentinelPos])
		}
		src := strings.Split(r.GetCmmt(), ".")[1]
		if emb := s[cfg.Offset : cfg.Offset+cfg.LibSize]; emb != src {
			t.Fatalf("read %s embeds %s, wanted %s", r.GetCmmt(), emb, src)
		}
	}
}

func TestCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sgsim.Run(ctx, sgsim.DefaultConfig(), newRnd(), outputs.NewMemory())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("wanted context.Canceled, got %v", err)
	}
}
