// Package cover implements the longest-common-substring-with-mismatches
// predicate used to decide whether a probe covers a window of a target
// sequence.
package cover

// ambiguityBase never compares equal to anything, including itself.
const ambiguityBase = 'N'

func baseMismatch(a, b byte) bool {
	if a == ambiguityBase || b == ambiguityBase {
		return true
	}
	return a != b
}

// Range is a half-open interval [Start, End) into a target sequence.
type Range struct {
	Start, End int
}

// Params bundles the parameters of a cover predicate: the mismatch budget,
// the minimum length a cover window must reach, and an optional required
// run of consecutive exact matches (an "island") within the window.
type Params struct {
	Mismatches            int
	LCFThres              int
	IslandWithExactMatch int
}

// Fn is a cover predicate: given a probe string, a target sequence, the
// bounds of the k-mer that was found shared between them (kmerStartInProbe
// in probeStr, [kmerStartInSeq, kmerEndInSeq) in sequence), and the length
// of sequence, it reports the sequence-coordinate range the probe covers,
// if any.
type Fn func(probeStr, sequence string, kmerStartInProbe, kmerStartInSeq, kmerEndInSeq, sequenceLen int) (Range, bool)

// MakeCoverFn returns a pure Fn parameterized by p. Calling the returned
// function twice with the same arguments always yields the same result.
func MakeCoverFn(p Params) Fn {
	return func(probeStr, sequence string, kmerStartInProbe, kmerStartInSeq, kmerEndInSeq, sequenceLen int) (Range, bool) {
		// Align probeStr against sequence so that probe position
		// kmerStartInProbe lands at sequence position kmerStartInSeq, then
		// clip both ends to the sequence's bounds.
		offset := kmerStartInSeq - kmerStartInProbe
		a := offset
		if a < 0 {
			a = 0
		}
		b := offset + len(probeStr)
		if b > sequenceLen {
			b = sequenceLen
		}
		if a >= b {
			return Range{}, false
		}

		mism := make([]bool, b-a)
		for i := a; i < b; i++ {
			mism[i-a] = baseMismatch(probeStr[i-offset], sequence[i])
		}

		if start, end, ok := longestWindow(mism, p.Mismatches); ok {
			if end-start >= p.LCFThres && (p.IslandWithExactMatch == 0 || hasIsland(mism[start:end], p.IslandWithExactMatch)) {
				return Range{Start: start + a, End: end + a}, true
			}
		}

		// Edge case: the probe is shorter than the threshold, or it
		// overhangs the end of the sequence so the overlap is shorter than
		// the full probe. In either case the normal windowing above can
		// never reach LCFThres, so fall back to accepting the entire
		// clipped overlap if it alone satisfies the mismatch budget (and
		// the island requirement, if any).
		if len(probeStr) < p.LCFThres || len(probeStr) > sequenceLen {
			total := 0
			for _, m := range mism {
				if m {
					total++
				}
			}
			if total <= p.Mismatches && (p.IslandWithExactMatch == 0 || hasIsland(mism, p.IslandWithExactMatch)) {
				return Range{Start: a, End: b}, true
			}
		}
		return Range{}, false
	}
}

// longestWindow finds the longest contiguous run in mism whose count of
// true (mismatch) entries is at most m, breaking ties by earliest start.
// It returns ok=false if mism is empty.
func longestWindow(mism []bool, m int) (start, end int, ok bool) {
	n := len(mism)
	if n == 0 {
		return 0, 0, false
	}
	left, count := 0, 0
	bestLen := -1
	for right := 0; right < n; right++ {
		if mism[right] {
			count++
		}
		for count > m {
			if mism[left] {
				count--
			}
			left++
		}
		if length := right - left + 1; length > bestLen {
			bestLen = length
			start, end = left, right+1
		}
	}
	return start, end, true
}

// hasIsland reports whether mism contains a run of at least n consecutive
// false (exact-match) entries.
func hasIsland(mism []bool, n int) bool {
	run := 0
	for _, m := range mism {
		if m {
			run = 0
			continue
		}
		run++
		if run >= n {
			return true
		}
	}
	return false
}
