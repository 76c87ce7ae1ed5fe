package kmerindex

import "github.com/OasisYE/catch/circular"

// nPackedShards is the number of shards in a packed SharedKmerIndex. A
// k-mer's shard is selected by the low byte of its farm hash, and its
// in-shard slot by higher bits of the same hash -- this mirrors how
// fusion/kmer_index.go shards its gene index, but using plain Go slices
// rather than a hand-managed mmap'd arena: a goroutine pool shares memory
// natively, so there is no process-fork boundary to optimize for here.
const nPackedShards = 256

type packedEntry struct {
	kmer    string
	posting Posting
	valid   bool
}

type packedShard struct {
	entries []packedEntry
	mask    int
}

// packedSharedIndex is the packed (non-native-dict) SharedKmerIndex
// backing store: nPackedShards independent linear-probing tables, each
// sized to the next power of two above twice its key count (a ~50% load
// factor).
type packedSharedIndex struct {
	k      int
	shards [nPackedShards]packedShard
}

func newPackedSharedIndex(idx *KmerIndex) *packedSharedIndex {
	p := &packedSharedIndex{k: idx.K}

	buckets := make([][]string, nPackedShards)
	for kmer := range idx.Postings {
		h := hashKmer(kmer)
		shard := h & (nPackedShards - 1)
		buckets[shard] = append(buckets[shard], kmer)
	}

	for s := 0; s < nPackedShards; s++ {
		keys := buckets[s]
		if len(keys) == 0 {
			continue
		}
		size := circular.NextExp2(len(keys) * 2)
		entries := make([]packedEntry, size)
		mask := size - 1
		for _, kmer := range keys {
			h := hashKmer(kmer)
			pos := int(h>>8) & mask
			for entries[pos].valid {
				pos = (pos + 1) & mask
			}
			entries[pos] = packedEntry{kmer: kmer, posting: idx.Postings[kmer], valid: true}
		}
		p.shards[s] = packedShard{entries: entries, mask: mask}
	}
	return p
}

func (p *packedSharedIndex) K() int { return p.k }

func (p *packedSharedIndex) Get(kmer string) (Posting, bool) {
	h := hashKmer(kmer)
	shard := &p.shards[h&(nPackedShards-1)]
	if len(shard.entries) == 0 {
		return Posting{}, false
	}
	pos := int(h>>8) & shard.mask
	for {
		e := &shard.entries[pos]
		if !e.valid {
			return Posting{}, false
		}
		if e.kmer == kmer {
			return e.posting, true
		}
		pos = (pos + 1) & shard.mask
	}
}
