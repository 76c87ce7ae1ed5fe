package kmerindex

import (
	"sort"
	"sync"
)

// postingBuilder accumulates postings per k-mer while a KmerIndex is being
// constructed, enforcing the set semantics required of a posting: a given
// (ProbeID) or (ProbeID, offset) pair is registered at most once per k-mer.
// It is safe for concurrent use.
type postingBuilder struct {
	includePositions bool

	mu   sync.Mutex
	seen map[string]map[uint64]struct{}
}

func newPostingBuilder(includePositions bool) *postingBuilder {
	return &postingBuilder{
		includePositions: includePositions,
		seen:             make(map[string]map[uint64]struct{}),
	}
}

func packPostingKey(id ProbeID, offset uint32, includePositions bool) uint64 {
	if !includePositions {
		return uint64(id)
	}
	return uint64(uint32(id))<<32 | uint64(offset)
}

func (b *postingBuilder) add(kmer string, id ProbeID, offset uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.seen[kmer]
	if !ok {
		set = make(map[uint64]struct{})
		b.seen[kmer] = set
	}
	set[packPostingKey(id, offset, b.includePositions)] = struct{}{}
}

// build freezes the accumulated postings into a KmerIndex.Postings map,
// sorting each posting by (ProbeID, offset) so index construction is
// deterministic regardless of how postings were registered.
func (b *postingBuilder) build() map[string]Posting {
	result := make(map[string]Posting, len(b.seen))
	for kmer, set := range b.seen {
		keys := make([]uint64, 0, len(set))
		for k := range set {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

		post := Posting{HasPositions: b.includePositions}
		post.Probes = make([]ProbeID, len(keys))
		if b.includePositions {
			post.Offsets = make([]uint32, len(keys))
		}
		for i, k := range keys {
			if b.includePositions {
				post.Probes[i] = ProbeID(int32(k >> 32))
				post.Offsets[i] = uint32(k)
			} else {
				post.Probes[i] = ProbeID(k)
			}
		}
		result[kmer] = post
	}
	return result
}
