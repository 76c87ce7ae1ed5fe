// Package pool implements the parallel probe-finding worker pool: given a
// frozen k-mer index and a cover predicate, it scans target sequences and
// reports, for every probe, the ranges it covers.
package pool

import (
	"runtime"
	"sync"

	"github.com/grailbio/base/errors"

	"github.com/OasisYE/catch/cover"
	"github.com/OasisYE/catch/kmerindex"
	"github.com/OasisYE/catch/probe"
)

// Pool is a group of worker goroutines sharing a frozen index and cover
// predicate across repeated calls to Find. Its lifecycle is
// absent -> open -> find* -> closed -> absent; the zero value is an unopened
// Pool ready for Open.
type Pool struct {
	mu       sync.Mutex
	open     bool
	nWorkers int
	index    kmerindex.SharedKmerIndex
	probes   []probe.Probe
	coverFn  cover.Fn
}

// New returns an unopened Pool.
func New() *Pool {
	return &Pool{}
}

// Open installs index, probes (indexed by kmerindex.ProbeID, as produced by
// the builder that built index), and coverFn as read-only, process-wide
// references for subsequent Find calls. nWorkers <= 0 selects
// runtime.NumCPU(). Open fails with ErrPoolAlreadyOpen if the pool is
// already open.
func (p *Pool) Open(index kmerindex.SharedKmerIndex, probes []probe.Probe, coverFn cover.Fn, nWorkers int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open {
		return ErrPoolAlreadyOpen
	}
	if nWorkers <= 0 {
		nWorkers = runtime.NumCPU()
	}
	p.index = index
	p.probes = probes
	p.coverFn = coverFn
	p.nWorkers = nWorkers
	p.open = true
	return nil
}

// Close tears the pool down, releasing its references to index, probes, and
// coverFn. Close fails with ErrPoolNotOpen if the pool is not open.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return ErrPoolNotOpen
	}
	p.open = false
	p.index = nil
	p.probes = nil
	p.coverFn = nil
	return nil
}

type workChunk struct {
	kmerStart, kmerEnd int
}

// Find scans sequence with a sliding k-mer window, consults the installed
// index for each window, and confirms candidates with the installed cover
// predicate. The returned ranges for each probe are sorted by start
// ascending, ties by end, with duplicate ranges collapsed. Find fails with
// ErrPoolNotOpen if the pool is not open; it may otherwise be called
// repeatedly while the pool stays open.
func (p *Pool) Find(sequence string) (map[probe.Probe][]cover.Range, error) {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return nil, ErrPoolNotOpen
	}
	index, probes, coverFn, nWorkers := p.index, p.probes, p.coverFn, p.nWorkers
	p.mu.Unlock()

	k := index.K()
	n := len(sequence)
	if n < k {
		return map[probe.Probe][]cover.Range{}, nil
	}
	numKmerStarts := n - k + 1

	chunkSize := (numKmerStarts + nWorkers - 1) / nWorkers
	if chunkSize < 1 {
		chunkSize = 1
	}
	var chunks []workChunk
	for start := 0; start < numKmerStarts; start += chunkSize {
		end := start + chunkSize
		if end > numKmerStarts {
			end = numKmerStarts
		}
		chunks = append(chunks, workChunk{kmerStart: start, kmerEnd: end})
	}

	workCh := make(chan workChunk, len(chunks))
	for _, c := range chunks {
		workCh <- c
	}
	close(workCh)

	resultsCh := make(chan scanResult, len(chunks))
	var workerErr errors.Once
	var wg sync.WaitGroup
	for i := 0; i < nWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					workerErr.Set(errors.E("pool: worker panic", errors.Errorf("%v", r)))
				}
			}()
			for c := range workCh {
				resultsCh <- scanChunk(sequence, c.kmerStart, c.kmerEnd, index, coverFn, probes)
			}
		}()
	}
	wg.Wait()
	close(resultsCh)
	if err := workerErr.Err(); err != nil {
		return nil, err
	}

	merged := newScanResult()
	for r := range resultsCh {
		merged.merge(r)
	}

	out := make(map[probe.Probe][]cover.Range, len(merged))
	for id, set := range merged {
		if int(id) < 0 || int(id) >= len(probes) {
			continue
		}
		out[probes[id]] = sortedRanges(set)
	}
	return out, nil
}
