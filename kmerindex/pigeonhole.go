package kmerindex

import (
	"math"

	"github.com/pkg/errors"

	"github.com/OasisYE/catch/probe"
)

// ErrPigeonholeRequiresTooSmallKmerSize is returned by BuildPigeonhole when
// no block size satisfying both the mismatch budget and the caller's
// minimum k-mer size exists. The dispatcher in dispatch.go is the only
// layer that should catch this error and fall back to BuildRandom.
var ErrPigeonholeRequiresTooSmallKmerSize = errors.New("kmerindex: pigeonhole partition requires a k-mer size smaller than the caller's minimum")

// PigeonholeOpts controls the pigeonhole builder.
type PigeonholeOpts struct {
	// Mismatches is the number of mismatches the resulting index must
	// tolerate without false negatives.
	Mismatches int
	// MinK is the smallest acceptable block size.
	MinK int
	// IncludePositions selects whether postings carry (probe, offset)
	// pairs or bare probe sets.
	IncludePositions bool
}

// pigeonholeK returns the block size chosen for a pigeonhole partition
// tolerating `mismatches` mismatches: the largest k such that every probe
// in probes has at least mismatches+1 full, disjoint blocks of length k.
func pigeonholeK(probes []probe.Probe, mismatches int) int {
	k := math.MaxInt32
	for _, p := range probes {
		candidate := p.Len() / (mismatches + 1)
		if candidate < k {
			k = candidate
		}
	}
	return k
}

// BuildPigeonhole builds a KmerIndex by partitioning each probe into
// Mismatches+1 disjoint blocks of a single block size k (the largest size
// for which every probe has that many full blocks), and registering each
// block. By the pigeonhole principle, any window matching a probe with at
// most Mismatches mismatches must match at least one of the probe's blocks
// exactly, so the resulting index has no false negatives for that mismatch
// budget.
//
// It returns ErrPigeonholeRequiresTooSmallKmerSize if the chosen k would be
// smaller than opts.MinK.
func BuildPigeonhole(probes []probe.Probe, opts PigeonholeOpts) (*KmerIndex, error) {
	if len(probes) == 0 {
		return nil, errors.New("kmerindex: BuildPigeonhole requires at least one probe")
	}
	k := pigeonholeK(probes, opts.Mismatches)
	if k < opts.MinK {
		return nil, ErrPigeonholeRequiresTooSmallKmerSize
	}

	builder := newPostingBuilder(opts.IncludePositions)
	nBlocks := opts.Mismatches + 1
	for i, p := range probes {
		seq := p.Bytes()
		for b := 0; b < nBlocks; b++ {
			offset := b * k
			if offset+k > len(seq) {
				break
			}
			kmer := string(seq[offset : offset+k])
			builder.add(kmer, ProbeID(i), uint32(offset))
		}
	}
	return &KmerIndex{K: k, Postings: builder.build()}, nil
}
