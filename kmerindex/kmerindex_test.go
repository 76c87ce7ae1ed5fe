package kmerindex_test

import (
	"math/rand"
	"testing"

	"github.com/OasisYE/catch/kmerindex"
	"github.com/OasisYE/catch/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProbe(t *testing.T, s string) probe.Probe {
	t.Helper()
	p, err := probe.FromString(s)
	require.NoError(t, err)
	return p
}

func probeIDs(post kmerindex.Posting) []int {
	ids := make([]int, len(post.Probes))
	for i, id := range post.Probes {
		ids[i] = int(id)
	}
	return ids
}

func TestBuildRandomSharedKmer(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := mustProbe(t, "ABCDEFG")
	b := mustProbe(t, "XYZDEFH")
	probes := []probe.Probe{a, b}

	idx := kmerindex.BuildRandom(probes, kmerindex.RandomOpts{K: 3, NumKmersPerProbe: 50}, rng)

	assert.ElementsMatch(t, []int{0, 1}, probeIDs(idx.Postings["DEF"]))
	assert.ElementsMatch(t, []int{0}, probeIDs(idx.Postings["ABC"]))
	assert.ElementsMatch(t, []int{1}, probeIDs(idx.Postings["XYZ"]))
	assert.ElementsMatch(t, []int{0}, probeIDs(idx.Postings["EFG"]))
	assert.ElementsMatch(t, []int{1}, probeIDs(idx.Postings["EFH"]))
}

func TestBuildRandomPositions(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := mustProbe(t, "ABCDEFGABC")
	b := mustProbe(t, "XYZDEFHGHI")
	probes := []probe.Probe{a, b}

	idx := kmerindex.BuildRandom(probes, kmerindex.RandomOpts{K: 3, NumKmersPerProbe: 50, IncludePositions: true}, rng)

	assertPosting := func(kmer string, want ...[2]int) {
		post, ok := idx.Get(kmer)
		require.True(t, ok, kmer)
		require.True(t, post.HasPositions)
		got := make([][2]int, len(post.Probes))
		for i := range post.Probes {
			got[i] = [2]int{int(post.Probes[i]), int(post.Offsets[i])}
		}
		assert.ElementsMatch(t, want, got, kmer)
	}
	assertPosting("ABC", [2]int{0, 0}, [2]int{0, 7})
	assertPosting("DEF", [2]int{0, 3}, [2]int{1, 3})
	assertPosting("XYZ", [2]int{1, 0})
	assertPosting("EFG", [2]int{0, 4})
	assertPosting("EFH", [2]int{1, 4})
}

func TestBuildPigeonholeNoMismatches(t *testing.T) {
	a := mustProbe(t, "ABCDEFGHIJ")
	b := mustProbe(t, "ZYXWVUTSRQ")
	probes := []probe.Probe{a, b}

	idx, err := kmerindex.BuildPigeonhole(probes, kmerindex.PigeonholeOpts{Mismatches: 0, MinK: 5})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0}, probeIDs(idx.Postings[a.String()]))
	assert.ElementsMatch(t, []int{1}, probeIDs(idx.Postings[b.String()]))
}

func TestBuildPigeonholeTooSmallK(t *testing.T) {
	a := mustProbe(t, "ABCDEFGHIJ")
	b := mustProbe(t, "ZYXWVUTSRQ")
	probes := []probe.Probe{a, b}

	_, err := kmerindex.BuildPigeonhole(probes, kmerindex.PigeonholeOpts{Mismatches: 1, MinK: 6})
	assert.Equal(t, kmerindex.ErrPigeonholeRequiresTooSmallKmerSize, err)

	_, err = kmerindex.BuildPigeonhole(probes, kmerindex.PigeonholeOpts{Mismatches: 3, MinK: 3})
	assert.Equal(t, kmerindex.ErrPigeonholeRequiresTooSmallKmerSize, err)
}

func TestBuildPigeonholeOneMismatch(t *testing.T) {
	a := mustProbe(t, "ABCDEFGHIJ")
	b := mustProbe(t, "ZYXWVUTSRQ")
	probes := []probe.Probe{a, b}

	idx, err := kmerindex.BuildPigeonhole(probes, kmerindex.PigeonholeOpts{Mismatches: 1, MinK: 2})
	require.NoError(t, err)
	assert.Len(t, idx.Postings, 4)
	assert.ElementsMatch(t, []int{0}, probeIDs(idx.Postings["ABCDE"]))
	assert.ElementsMatch(t, []int{0}, probeIDs(idx.Postings["FGHIJ"]))
	assert.ElementsMatch(t, []int{1}, probeIDs(idx.Postings["ZYXWV"]))
	assert.ElementsMatch(t, []int{1}, probeIDs(idx.Postings["UTSRQ"]))
}

func TestBuildPigeonholeSharedBlock(t *testing.T) {
	a := mustProbe(t, "ABCDEFGHIJ")
	b := mustProbe(t, "ZYXWVABCDE")
	probes := []probe.Probe{a, b}

	idx, err := kmerindex.BuildPigeonhole(probes, kmerindex.PigeonholeOpts{Mismatches: 1, MinK: 2})
	require.NoError(t, err)
	assert.Len(t, idx.Postings, 3)
	assert.ElementsMatch(t, []int{0, 1}, probeIDs(idx.Postings["ABCDE"]))
	assert.ElementsMatch(t, []int{0}, probeIDs(idx.Postings["FGHIJ"]))
	assert.ElementsMatch(t, []int{1}, probeIDs(idx.Postings["ZYXWV"]))
}

func TestBuildPigeonholePositions(t *testing.T) {
	a := mustProbe(t, "ABCDEFGH")
	b := mustProbe(t, "ZYXWVUAB")
	probes := []probe.Probe{a, b}

	idx, err := kmerindex.BuildPigeonhole(probes, kmerindex.PigeonholeOpts{Mismatches: 3, MinK: 2, IncludePositions: true})
	require.NoError(t, err)
	assert.Len(t, idx.Postings, 7)

	assertPosting := func(kmer string, want ...[2]int) {
		post, ok := idx.Get(kmer)
		require.True(t, ok, kmer)
		got := make([][2]int, len(post.Probes))
		for i := range post.Probes {
			got[i] = [2]int{int(post.Probes[i]), int(post.Offsets[i])}
		}
		assert.ElementsMatch(t, want, got, kmer)
	}
	assertPosting("AB", [2]int{0, 0}, [2]int{1, 6})
	assertPosting("CD", [2]int{0, 2})
	assertPosting("EF", [2]int{0, 4})
	assertPosting("GH", [2]int{0, 6})
	assertPosting("ZY", [2]int{1, 0})
	assertPosting("XW", [2]int{1, 2})
	assertPosting("VU", [2]int{1, 4})
}

func TestFreezeNativeAndPackedAgree(t *testing.T) {
	a := mustProbe(t, "ABCDEFGH")
	b := mustProbe(t, "ZYXWVUAB")
	probes := []probe.Probe{a, b}

	idx, err := kmerindex.BuildPigeonhole(probes, kmerindex.PigeonholeOpts{Mismatches: 3, MinK: 2, IncludePositions: true})
	require.NoError(t, err)

	native := kmerindex.Freeze(idx, true)
	packed := kmerindex.Freeze(idx, false)

	assert.Equal(t, idx.K, native.K())
	assert.Equal(t, idx.K, packed.K())

	for kmer, want := range idx.Postings {
		gotNative, ok := native.Get(kmer)
		require.True(t, ok, kmer)
		assert.Equal(t, want, gotNative)

		gotPacked, ok := packed.Get(kmer)
		require.True(t, ok, kmer)
		assert.Equal(t, want, gotPacked)
	}
	_, ok := packed.Get("NOTAKEY!")
	assert.False(t, ok)
	_, ok = native.Get("NOTAKEY!")
	assert.False(t, ok)
}

func TestBuildForCoversPrefersPigeonhole(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := mustProbe(t, "GHIJXL")
	b := mustProbe(t, "BTUVWX")
	c := mustProbe(t, "ACEFHJ")
	probes := []probe.Probe{a, b, c}

	minK, k := 3, 4
	idx, err := kmerindex.BuildForCovers(probes, 1, 6, &minK, &k, rng)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.K)

	minK2 := 4
	idx2, err := kmerindex.BuildForCovers(probes, 1, 6, &minK2, &k, rng)
	require.NoError(t, err)
	assert.Equal(t, 4, idx2.K)
}
