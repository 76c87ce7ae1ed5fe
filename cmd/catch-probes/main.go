// Command catch-probes is a thin reference wiring of the probe-design
// engine: it reads candidate probes and a target genome from FASTA files,
// builds a k-mer index tuned for the requested mismatch/threshold budget,
// and prints every cover range found for every probe.
//
// Usage:
//
//	catch-probes -probes probes.fa -target genome.fa.gz
//
// If -probes is omitted, candidate probes are instead generated from
// -target itself via a sliding window (see the -probe-length and
// -probe-stride flags), mirroring the dataset-collaborator's usual mode of
// operation.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/OasisYE/catch/candidateprobes"
	"github.com/OasisYE/catch/cover"
	"github.com/OasisYE/catch/encoding/fasta"
	"github.com/OasisYE/catch/kmerindex"
	"github.com/OasisYE/catch/pool"
	"github.com/OasisYE/catch/probe"
)

func openFasta(path string) (fasta.Fasta, error) {
	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close(ctx)
	return fasta.New(f.Reader(ctx))
}

func loadProbesFromFasta(path string) ([]probe.Probe, error) {
	f, err := openFasta(path)
	if err != nil {
		return nil, err
	}
	var probes []probe.Probe
	for _, name := range f.SeqNames() {
		n, err := f.Len(name)
		if err != nil {
			return nil, err
		}
		s, err := f.Get(name, 0, n)
		if err != nil {
			return nil, err
		}
		p, err := probe.FromString(s)
		if err != nil {
			return nil, err
		}
		probes = append(probes, p)
	}
	return probes, nil
}

func generateProbesFromTarget(target fasta.Fasta, opts candidateprobes.Opts) ([]probe.Probe, error) {
	var seqs []string
	for _, name := range target.SeqNames() {
		n, err := target.Len(name)
		if err != nil {
			return nil, err
		}
		s, err := target.Get(name, 0, n)
		if err != nil {
			return nil, err
		}
		if len(s) < opts.ProbeLength {
			continue
		}
		seqs = append(seqs, s)
	}
	return candidateprobes.FromSequences(seqs, opts)
}

func main() {
	var (
		probesPath  = flag.String("probes", "", "FASTA file of candidate probes. If empty, probes are generated from -target by a sliding window.")
		targetPath  = flag.String("target", "", "FASTA file (optionally gzipped) of the target sequence(s) to scan.")
		mismatches  = flag.Int("mismatches", 0, "maximum Hamming mismatches tolerated within a cover window")
		lcfThres    = flag.Int("lcf-thres", 0, "minimum length of a cover window; defaults to the probe length when 0")
		island      = flag.Int("island-with-exact-match", 0, "if nonzero, require an exact-match run of at least this length within the cover window")
		minK        = flag.Int("min-k", 20, "minimum k-mer length for the pigeonhole index builder")
		randomK     = flag.Int("random-k", 20, "k-mer length used by the randomized builder if pigeonhole can't meet -min-k")
		nativeDict  = flag.Bool("use-native-dict", false, "back the frozen index with a plain Go map instead of the packed sharded table")
		nWorkers    = flag.Int("workers", 0, "number of worker goroutines; 0 selects runtime.NumCPU()")
		seed        = flag.Int64("seed", 1, "seed for the randomized index builder's RNG")
		probeLength = flag.Int("probe-length", 100, "candidate probe length, when generating probes from -target")
		probeStride = flag.Int("probe-stride", 50, "candidate probe stride, when generating probes from -target")
	)
	flag.Parse()

	cleanup := grail.Init()
	defer cleanup()

	if *targetPath == "" {
		log.Fatal("catch-probes: -target is required")
	}
	target, err := openFasta(*targetPath)
	if err != nil {
		log.Fatalf("catch-probes: opening target: %v", err)
	}

	var probes []probe.Probe
	if *probesPath != "" {
		probes, err = loadProbesFromFasta(*probesPath)
		if err != nil {
			log.Fatalf("catch-probes: loading probes: %v", err)
		}
	} else {
		cpOpts := candidateprobes.DefaultOpts()
		cpOpts.ProbeLength = *probeLength
		cpOpts.ProbeStride = *probeStride
		probes, err = generateProbesFromTarget(target, cpOpts)
		if err != nil {
			log.Fatalf("catch-probes: generating candidate probes: %v", err)
		}
	}
	if len(probes) == 0 {
		log.Fatal("catch-probes: no probes to search for")
	}
	log.Printf("catch-probes: searching with %d probes", len(probes))

	thres := *lcfThres
	if thres == 0 {
		thres = minProbeLen(probes)
	}

	rng := rand.New(rand.NewSource(*seed))
	idx, err := kmerindex.BuildForCovers(probes, *mismatches, thres, minK, randomK, rng)
	if err != nil {
		log.Fatalf("catch-probes: building index: %v", err)
	}
	shared := kmerindex.Freeze(idx, *nativeDict)

	coverFn := cover.MakeCoverFn(cover.Params{
		Mismatches:           *mismatches,
		LCFThres:             thres,
		IslandWithExactMatch: *island,
	})

	p := pool.New()
	if err := p.Open(shared, probes, coverFn, *nWorkers); err != nil {
		log.Fatalf("catch-probes: opening pool: %v", err)
	}
	defer p.Close()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for _, name := range target.SeqNames() {
		n, err := target.Len(name)
		if err != nil {
			log.Fatalf("catch-probes: %v", err)
		}
		seq, err := target.Get(name, 0, n)
		if err != nil {
			log.Fatalf("catch-probes: %v", err)
		}
		found, err := p.Find(seq)
		if err != nil {
			log.Fatalf("catch-probes: finding covers in %s: %v", name, err)
		}
		for _, prb := range probes {
			for _, r := range found[prb] {
				fmt.Fprintf(out, "%s\t%d\t%d\t%s\n", name, r.Start, r.End, prb.String())
			}
		}
	}
}

func minProbeLen(probes []probe.Probe) int {
	min := probes[0].Len()
	for _, p := range probes[1:] {
		if p.Len() < min {
			min = p.Len()
		}
	}
	return min
}
