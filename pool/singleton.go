package pool

import (
	"github.com/OasisYE/catch/cover"
	"github.com/OasisYE/catch/kmerindex"
	"github.com/OasisYE/catch/probe"
)

// defaultPool is the process-wide Pool backing OpenPool, FindProbeCoversInSequence,
// and ClosePool. It is a convenience layered on top of the explicit Pool
// type above, not the only way to use this package: callers that need more
// than one pool open at a time (e.g. tests, or a process searching two
// libraries concurrently) should construct their own *Pool with New
// instead.
var defaultPool = New()

// OpenPool opens the process-wide default pool. See (*Pool).Open.
func OpenPool(index kmerindex.SharedKmerIndex, probes []probe.Probe, coverFn cover.Fn, nWorkers int) error {
	return defaultPool.Open(index, probes, coverFn, nWorkers)
}

// FindProbeCoversInSequence scans sequence using the process-wide default
// pool. See (*Pool).Find.
func FindProbeCoversInSequence(sequence string) (map[probe.Probe][]cover.Range, error) {
	return defaultPool.Find(sequence)
}

// ClosePool closes the process-wide default pool. See (*Pool).Close.
func ClosePool() error {
	return defaultPool.Close()
}
