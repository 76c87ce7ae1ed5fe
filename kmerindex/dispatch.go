package kmerindex

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/OasisYE/catch/probe"
)

// falseNegativeBudget bounds the probability that BuildForCovers's
// randomized fallback fails to sample a given true k-mer occurrence of a
// probe, per the "constant index build time per probe" rationale: n is
// chosen so that 1-(1-k/L)^n exceeds 1-falseNegativeBudget.
const falseNegativeBudget = 1e-6

// derivedNumKmersPerProbe returns a number of random draws per probe that
// makes missing any single true k-mer position vanishingly unlikely, given
// a k-mer length k and a probe length probeLen.
func derivedNumKmersPerProbe(k, probeLen int) int {
	if probeLen <= 0 || k <= 0 || k >= probeLen {
		return 1
	}
	frac := float64(k) / float64(probeLen)
	denom := math.Log(1 - frac)
	if denom == 0 {
		return 1
	}
	n := math.Ceil(math.Log(falseNegativeBudget) / denom)
	if n < 1 {
		n = 1
	}
	return int(n)
}

func minProbeLenAtLeast(probes []probe.Probe, k int) int {
	min := math.MaxInt32
	for _, p := range probes {
		if p.Len() >= k && p.Len() < min {
			min = p.Len()
		}
	}
	if min == math.MaxInt32 {
		return k
	}
	return min
}

// BuildForCovers is the dispatcher used to build an index intended to find
// probe covers in a target sequence: it always includes positions, since
// the cover predicate needs per-occurrence alignment.
//
// If minK is non-nil, it tries BuildPigeonhole first (using mismatches and
// minK); this is the only layer permitted to catch
// ErrPigeonholeRequiresTooSmallKmerSize and recover from it. If pigeonhole
// is skipped or fails that way, it falls back to BuildRandom using k (which
// must be non-nil in that case) and a derived sample count.
func BuildForCovers(probes []probe.Probe, mismatches, lcfThres int, minK, k *int, rng *rand.Rand) (*KmerIndex, error) {
	if minK != nil {
		idx, err := BuildPigeonhole(probes, PigeonholeOpts{
			Mismatches:       mismatches,
			MinK:             *minK,
			IncludePositions: true,
		})
		if err == nil {
			return idx, nil
		}
		if err != ErrPigeonholeRequiresTooSmallKmerSize {
			return nil, err
		}
		// fall through to the randomized builder below.
	}
	if k == nil {
		return nil, errors.New("kmerindex: BuildForCovers requires k when pigeonhole is unavailable")
	}
	n := derivedNumKmersPerProbe(*k, minProbeLenAtLeast(probes, *k))
	return BuildRandom(probes, RandomOpts{
		K:                *k,
		NumKmersPerProbe: n,
		IncludePositions: true,
	}, rng), nil
}
