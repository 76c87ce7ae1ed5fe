// Package candidateprobes generates lists of likely-redundant candidate
// probes from a target sequence: a sliding window of fixed length and
// stride, skipping windows that contain a long run of ambiguous 'N' bases
// and instead adding probes flanking each such run.
package candidateprobes

import (
	"github.com/pkg/errors"

	"github.com/OasisYE/catch/probe"
)

// Opts controls candidate-probe generation.
type Opts struct {
	// ProbeLength is the length, in bases, of every generated probe.
	ProbeLength int
	// ProbeStride is the spacing between consecutive window starts.
	ProbeStride int
	// MinNStringLength is the shortest run of 'N' bases that disqualifies a
	// window (and triggers flanking probes instead).
	MinNStringLength int
	// AddProbeForEndBases, when the sequence length isn't a multiple of
	// ProbeStride, adds one extra probe anchored at the sequence's end so
	// its trailing bases are covered.
	AddProbeForEndBases bool
	// LegacyMode reproduces a historical defect in probe placement: at the
	// single window position where start % ProbeLength == ProbeStride, a
	// window is rejected only if it contains the exact substring "N" at
	// all (by simple containment), rather than by the normal N-run check.
	// This changes which windows are accepted at that one position; it
	// does not alter cover semantics anywhere else. Off by default.
	LegacyMode bool
}

// DefaultOpts returns the historical default parameters: 100bp probes on a
// 50bp stride, rejecting windows with 2 or more consecutive N's, with
// end-base coverage enabled and LegacyMode off.
func DefaultOpts() Opts {
	return Opts{
		ProbeLength:         100,
		ProbeStride:         50,
		MinNStringLength:    2,
		AddProbeForEndBases: true,
	}
}

// nRun is a half-open run of consecutive 'N' bases.
type nRun struct {
	start, end int
}

// findNRuns returns every maximal run of 'N' bases in seq of length at
// least minLen, in order of occurrence.
func findNRuns(seq string, minLen int) []nRun {
	var runs []nRun
	i := 0
	for i < len(seq) {
		if seq[i] != 'N' {
			i++
			continue
		}
		j := i
		for j < len(seq) && seq[j] == 'N' {
			j++
		}
		if j-i >= minLen {
			runs = append(runs, nRun{i, j})
		}
		i = j
	}
	return runs
}

func hasNRun(s string, minLen int) bool {
	run := 0
	for i := 0; i < len(s); i++ {
		if s[i] == 'N' {
			run++
			if run >= minLen {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

func containsN(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == 'N' {
			return true
		}
	}
	return false
}

// windowAt reports the subsequence seq[start:end] as a probe candidate, and
// whether it should be accepted.
func windowAt(seq string, start, end int, isBugLocation bool, opts Opts) (string, bool) {
	sub := seq[start:end]
	if opts.LegacyMode && isBugLocation {
		return sub, !containsN(sub)
	}
	return sub, !hasNRun(sub, opts.MinNStringLength)
}

// FromSequence generates candidate probes from a single sequence. Duplicate
// probes may be present in the result.
func FromSequence(seq string, opts Opts) ([]probe.Probe, error) {
	if opts.ProbeLength > len(seq) {
		return nil, errors.Errorf("candidateprobes: probe length %d exceeds sequence length %d", opts.ProbeLength, len(seq))
	}

	var raw []string
	for start := 0; start+opts.ProbeLength <= len(seq); start += opts.ProbeStride {
		isBugLocation := start%opts.ProbeLength == opts.ProbeStride
		if s, ok := windowAt(seq, start, start+opts.ProbeLength, isBugLocation, opts); ok {
			raw = append(raw, s)
		}
	}
	if len(seq)%opts.ProbeStride != 0 && opts.AddProbeForEndBases {
		start := len(seq) - opts.ProbeLength
		if s, ok := windowAt(seq, start, len(seq), false, opts); ok {
			raw = append(raw, s)
		}
	}

	for _, run := range findNRuns(seq, opts.MinNStringLength) {
		if run.start-opts.ProbeLength >= 0 {
			if s, ok := windowAt(seq, run.start-opts.ProbeLength, run.start, false, opts); ok {
				raw = append(raw, s)
			}
		}
		if run.end+opts.ProbeLength <= len(seq) {
			if s, ok := windowAt(seq, run.end, run.end+opts.ProbeLength, false, opts); ok {
				raw = append(raw, s)
			}
		}
	}

	probes := make([]probe.Probe, 0, len(raw))
	for _, s := range raw {
		p, err := probe.FromString(s)
		if err != nil {
			return nil, err
		}
		probes = append(probes, p)
	}
	return probes, nil
}

// FromSequences generates candidate probes from each of seqs and
// concatenates the results, in order. Duplicate probes, within or across
// sequences, may be present in the result.
func FromSequences(seqs []string, opts Opts) ([]probe.Probe, error) {
	if len(seqs) == 0 {
		return nil, errors.New("candidateprobes: at least one sequence is required")
	}
	var all []probe.Probe
	for _, seq := range seqs {
		ps, err := FromSequence(seq, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, ps...)
	}
	return all, nil
}
