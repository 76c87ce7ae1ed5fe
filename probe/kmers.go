package probe

import (
	"encoding/binary"
	"math/rand"
	"sync"

	"github.com/blainsmith/seahash"
)

const numKmerSetCacheShards = 1024

type kmerSetKey struct {
	id uint64
	k  int
}

type kmerSetShard struct {
	mu   sync.Mutex
	sets map[kmerSetKey]map[string]struct{}
}

// KmerSetCache memoizes the k-mer sets of probes, sharded by a seahash of
// the probe identifier and k so that concurrent callers working on
// different probes never contend on the same lock. The zero value is ready
// to use.
//
// This mirrors the sharded, mutex-protected map that
// encoding/bamprovider's concurrentMap uses to pair up mate records
// concurrently: many independent keys, one lock per shard rather than one
// lock for the whole cache, with the shard chosen by a seahash of the key.
type KmerSetCache struct {
	shards [numKmerSetCacheShards]kmerSetShard
}

func (key kmerSetKey) shard() uint64 {
	var buf [12]byte
	binary.LittleEndian.PutUint64(buf[0:8], key.id)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(key.k))
	return seahash.Sum64(buf[:]) % numKmerSetCacheShards
}

func (c *KmerSetCache) kmerSet(p Probe, k int) map[string]struct{} {
	key := kmerSetKey{id: p.id, k: k}
	shard := &c.shards[key.shard()]

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if shard.sets == nil {
		shard.sets = make(map[kmerSetKey]map[string]struct{})
	}
	set, ok := shard.sets[key]
	if !ok {
		kmers := p.ConstructKmers(k)
		set = make(map[string]struct{}, len(kmers))
		for _, km := range kmers {
			set[km] = struct{}{}
		}
		shard.sets[key] = set
	}
	return set
}

func kmerSetNoCache(p Probe, k int) map[string]struct{} {
	kmers := p.ConstructKmers(k)
	set := make(map[string]struct{}, len(kmers))
	for _, km := range kmers {
		set[km] = struct{}{}
	}
	return set
}

// SharesSomeKmers probabilistically tests whether p and other share a
// k-mer. It draws numKmers offsets, with replacement, uniformly at random
// from p's k-mer positions (using rng, which callers must seed explicitly
// for reproducibility) and reports whether any of the corresponding k-mers
// of p also occurs somewhere in other. When a shared k-mer is found, it is
// returned as the second result; otherwise the second result is "".
//
// If cache is non-nil, other's k-mer set is memoized in it across calls
// (keyed by other's identifier and k), avoiding repeated O(|other|)
// decomposition when the same probe is tested against many others. If
// cache is nil, other's k-mer set is recomputed on every call.
func (p Probe) SharesSomeKmers(other Probe, k, numKmers int, rng *rand.Rand, cache *KmerSetCache) (bool, string) {
	maxOffset := len(p.str) - k
	if maxOffset < 0 {
		return false, ""
	}
	var otherKmers map[string]struct{}
	if cache != nil {
		otherKmers = cache.kmerSet(other, k)
	} else {
		otherKmers = kmerSetNoCache(other, k)
	}
	for i := 0; i < numKmers; i++ {
		offset := rng.Intn(maxOffset + 1)
		km := p.str[offset : offset+k]
		if _, ok := otherKmers[km]; ok {
			return true, km
		}
	}
	return false, ""
}
