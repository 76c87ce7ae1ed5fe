package kmerindex

// SharedKmerIndex is the frozen, read-only form of a KmerIndex suitable for
// sharing across worker goroutines: once Freeze returns one, neither its
// postings nor its backing storage are ever mutated again.
type SharedKmerIndex interface {
	// Get returns the posting registered for kmer, and whether one exists.
	// kmer must have length K(); behavior is otherwise unspecified.
	Get(kmer string) (Posting, bool)
	// K returns the k-mer length this index was built with.
	K() int
}

// nativeSharedIndex backs a SharedKmerIndex directly with a Go map, itself
// a form of open-addressed hash table. This is the "native open-addressing
// hash map when portable" mode.
type nativeSharedIndex struct {
	k        int
	postings map[string]Posting
}

func (n *nativeSharedIndex) Get(kmer string) (Posting, bool) {
	p, ok := n.postings[kmer]
	return p, ok
}

func (n *nativeSharedIndex) K() int { return n.k }

// Freeze converts a build-time KmerIndex into a SharedKmerIndex. When
// useNativeDict is true, the index is backed by Go's built-in map;
// otherwise it is repacked into a sharded, fixed-capacity linear-probing
// table (see packed.go) intended for cheap, zero-copy sharing between
// goroutines via a single shared pointer.
func Freeze(idx *KmerIndex, useNativeDict bool) SharedKmerIndex {
	if useNativeDict {
		return &nativeSharedIndex{k: idx.K, postings: idx.Postings}
	}
	return newPackedSharedIndex(idx)
}
