// Package kmerindex builds maps from k-mers to the probes that contain
// them. Two builders are provided: a randomized builder that samples a
// fixed number of k-mers per probe, and a pigeonhole builder that
// guarantees zero false negatives for a bounded number of mismatches.
package kmerindex

// ProbeID is a dense, zero-based index into the probe library a KmerIndex
// was built from.
type ProbeID int

// Posting is the set of probe occurrences registered for one k-mer key.
// When HasPositions is false, Probes holds the (deduplicated) set of probes
// containing the k-mer, and Offsets is unused. When HasPositions is true,
// Probes[i] and Offsets[i] together describe one occurrence: probe
// Probes[i] contains the k-mer starting at Offsets[i]. The pair
// (Probes[i], Offsets[i]) is unique within a posting, but the same ProbeID
// may appear more than once (at different offsets).
type Posting struct {
	HasPositions bool
	Probes       []ProbeID
	Offsets      []uint32
}

// KmerIndex maps k-mers of a fixed length K to the probes that contain
// them. It is the mutable, build-time representation; see SharedKmerIndex
// for the frozen, worker-shareable form.
type KmerIndex struct {
	K        int
	Postings map[string]Posting
}

// Get returns the posting for kmer, and whether it was present.
func (idx *KmerIndex) Get(kmer string) (Posting, bool) {
	p, ok := idx.Postings[kmer]
	return p, ok
}
