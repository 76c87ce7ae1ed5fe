package pool

import (
	"github.com/biogo/store/llrb"

	"github.com/OasisYE/catch/cover"
	"github.com/OasisYE/catch/kmerindex"
	"github.com/OasisYE/catch/probe"
)

// scanResult accumulates the set of cover ranges discovered for each probe
// by one worker's chunk of k-mer start positions. Using a set keyed on the
// full range (not just start) collapses exact duplicate discoveries while
// retaining distinct, overlapping ranges for the same probe.
type scanResult map[kmerindex.ProbeID]map[cover.Range]struct{}

func newScanResult() scanResult {
	return make(scanResult)
}

func (r scanResult) add(id kmerindex.ProbeID, rng cover.Range) {
	set, ok := r[id]
	if !ok {
		set = make(map[cover.Range]struct{})
		r[id] = set
	}
	set[rng] = struct{}{}
}

func (r scanResult) merge(other scanResult) {
	for id, set := range other {
		dst, ok := r[id]
		if !ok {
			dst = make(map[cover.Range]struct{}, len(set))
			r[id] = dst
		}
		for rng := range set {
			dst[rng] = struct{}{}
		}
	}
}

// scanChunk scans k-mer start positions in [kmerStart, kmerEnd) of sequence,
// looking each k-mer up in index and invoking coverFn for every candidate
// (probe, offset) pair. probes is indexed by kmerindex.ProbeID.
func scanChunk(sequence string, kmerStart, kmerEnd int, index kmerindex.SharedKmerIndex, coverFn cover.Fn, probes []probe.Probe) scanResult {
	result := newScanResult()
	k := index.K()
	for i := kmerStart; i < kmerEnd; i++ {
		post, ok := index.Get(sequence[i : i+k])
		if !ok {
			continue
		}
		if post.HasPositions {
			for j, id := range post.Probes {
				tryCover(result, id, int(post.Offsets[j]), i, i+k, sequence, probes, coverFn)
			}
		} else {
			for _, id := range post.Probes {
				tryCover(result, id, 0, i, i+k, sequence, probes, coverFn)
			}
		}
	}
	return result
}

func tryCover(result scanResult, id kmerindex.ProbeID, kmerStartInProbe, kmerStartInSeq, kmerEndInSeq int, sequence string, probes []probe.Probe, coverFn cover.Fn) {
	if int(id) < 0 || int(id) >= len(probes) {
		return
	}
	p := probes[id]
	rng, ok := coverFn(p.String(), sequence, kmerStartInProbe, kmerStartInSeq, kmerEndInSeq, len(sequence))
	if !ok {
		return
	}
	result.add(id, cover.Range{Start: rng.Start, End: rng.End})
}

// rangeItem orders cover.Range values by start ascending, ties by end
// ascending, for insertion into a llrb.Tree.
type rangeItem struct {
	start, end int
}

func (r rangeItem) Compare(c llrb.Comparable) int {
	o := c.(rangeItem)
	if r.start != o.start {
		return r.start - o.start
	}
	return r.end - o.end
}

// sortedRanges returns the ranges in set ordered by start, ties by end.
func sortedRanges(set map[cover.Range]struct{}) []cover.Range {
	tree := llrb.Tree{}
	for r := range set {
		tree.Insert(rangeItem{r.Start, r.End})
	}
	out := make([]cover.Range, 0, tree.Len())
	tree.Do(func(c llrb.Comparable) bool {
		it := c.(rangeItem)
		out = append(out, cover.Range{Start: it.start, End: it.end})
		return true
	})
	return out
}
