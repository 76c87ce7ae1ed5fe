package kmerindex

import (
	"math/rand"
	"runtime"
	"sync"

	farm "github.com/dgryski/go-farm"

	"github.com/OasisYE/catch/probe"
)

// parallelBuildThreshold is the probe-library size above which BuildRandom
// fans k-mer registration out across goroutines rather than running
// single-threaded. Below it, goroutine setup overhead dominates.
const parallelBuildThreshold = 2000

// RandomOpts controls the randomized builder.
type RandomOpts struct {
	// K is the k-mer length.
	K int
	// NumKmersPerProbe is the number of k-mer offsets drawn, with
	// replacement, from each probe.
	NumKmersPerProbe int
	// IncludePositions selects whether postings carry (probe, offset)
	// pairs or bare probe sets.
	IncludePositions bool
}

// BuildRandom builds a KmerIndex by drawing, for each probe, NumKmersPerProbe
// offsets uniformly at random (with replacement) from the probe's valid
// k-mer start positions, and registering the k-mer found at each offset.
// rng is consulted only from the calling goroutine, so a given rng state
// always produces the same index regardless of whether the registration
// phase below runs sequentially or in parallel.
func BuildRandom(probes []probe.Probe, opts RandomOpts, rng *rand.Rand) *KmerIndex {
	type job struct {
		id   ProbeID
		seed int64
	}
	jobs := make([]job, 0, len(probes))
	for i, p := range probes {
		if p.Len() < opts.K {
			continue
		}
		jobs = append(jobs, job{ProbeID(i), rng.Int63()})
	}

	builder := newPostingBuilder(opts.IncludePositions)
	register := func(j job) {
		p := probes[j.id]
		localRand := rand.New(rand.NewSource(j.seed))
		maxOffset := p.Len() - opts.K
		seq := p.Bytes()
		for i := 0; i < opts.NumKmersPerProbe; i++ {
			offset := localRand.Intn(maxOffset + 1)
			kmer := string(seq[offset : offset+opts.K])
			builder.add(kmer, j.id, uint32(offset))
		}
	}

	if len(jobs) < parallelBuildThreshold {
		for _, j := range jobs {
			register(j)
		}
		return &KmerIndex{K: opts.K, Postings: builder.build()}
	}

	// Sharded channel + WaitGroup fan-out, following the pattern
	// fusion/gene_db.go uses to produce kmers for a gene library in
	// parallel: a bounded queue of work items is drained by a fixed pool
	// of goroutines, each independently registering results into the
	// (lock-protected) shared builder.
	jobCh := make(chan job, 1024)
	wg := sync.WaitGroup{}
	for w := 0; w < runtime.NumCPU(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				register(j)
			}
		}()
	}
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()

	return &KmerIndex{K: opts.K, Postings: builder.build()}
}

// hashKmer hashes a k-mer the same way the packed SharedKmerIndex shards
// its table, so that both can reuse one sharding scheme if ever compared.
func hashKmer(kmer string) uint64 {
	return farm.Hash64WithSeed([]byte(kmer), 0)
}
