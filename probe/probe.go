// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package probe implements the fixed-length nucleotide vector at the core
// of the probe-design engine: construction from a string, Hamming-distance
// comparisons tolerant of the 'N' ambiguity code, reverse-complement, and
// k-mer decomposition.
package probe

import (
	"github.com/OasisYE/catch/biosimd"
	"github.com/minio/highwayhash"
	"github.com/pkg/errors"
)

// ambiguityBase is the one base that never compares equal to anything,
// including itself.
const ambiguityBase = 'N'

// identifierKey is the fixed, process-wide HighwayHash key used to compute
// Probe identifiers. There's no secrecy requirement here -- the hash only
// needs to be stable and well distributed across the lifetime of the
// process, so a zero key is as good as any other.
var identifierKey = make([]byte, highwayhash.Size)

// Probe is an immutable, fixed-length nucleotide sequence. The zero value is
// not useful; construct one with FromString.
//
// A Probe holds only a string and a cached hash, so it is comparable and
// usable as a map key: two Probes built from equal base vectors compare ==.
// It is safe to copy and to share across goroutines.
type Probe struct {
	str string
	id  uint64
}

// FromString parses s into a Probe. s must be non-empty and consist only of
// ASCII letters; in practice these are the bases A, C, G, T and the
// ambiguity code N, but the type does not otherwise interpret the alphabet.
func FromString(s string) (Probe, error) {
	if len(s) == 0 {
		return Probe{}, errors.New("probe: empty sequence")
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
			return Probe{}, errors.Errorf("probe: non-alphabetic byte %q at position %d in %q", c, i, s)
		}
	}
	return newProbeFromString(s), nil
}

// newProbeFromString builds a Probe from an already-validated string.
func newProbeFromString(s string) Probe {
	h, err := highwayhash.New64(identifierKey)
	if err != nil {
		// identifierKey is a fixed 32-byte slice; this can never fail.
		panic(err)
	}
	h.Write([]byte(s))
	return Probe{str: s, id: h.Sum64()}
}

// String returns the probe's sequence as a string.
func (p Probe) String() string { return p.str }

// Len returns the number of bases in the probe.
func (p Probe) Len() int { return len(p.str) }

// Bytes returns a fresh copy of the probe's base vector. Callers are free to
// modify the returned slice; it shares no storage with p.
func (p Probe) Bytes() []byte { return []byte(p.str) }

// Equal reports whether p and other have identical base vectors.
func (p Probe) Equal(other Probe) bool { return p.str == other.str }

// Identifier returns a stable 64-bit hash of the probe's base vector. It is
// not a substitute for Equal -- two distinct sequences could in principle
// collide -- but it is well suited to sharding and memoization keys.
func (p Probe) Identifier() uint64 { return p.id }

func baseMismatch(a, b byte) bool {
	if a == ambiguityBase || b == ambiguityBase {
		return true
	}
	return a != b
}

// Mismatches returns the number of positions at which p and other differ.
// p and other must have equal length. An 'N' base never matches anything,
// including another 'N'.
func (p Probe) Mismatches(other Probe) (int, error) {
	if len(p.str) != len(other.str) {
		return 0, errors.Errorf("probe: Mismatches requires equal length probes, got %d and %d", len(p.str), len(other.str))
	}
	n := 0
	for i := 0; i < len(p.str); i++ {
		if baseMismatch(p.str[i], other.str[i]) {
			n++
		}
	}
	return n, nil
}

// MismatchesAtOffset compares the overlapping region of p and other after
// shifting p by d positions relative to other, and returns the number of
// mismatches in that overlap. p and other must have equal length n, and d
// must satisfy |d| < n.
//
// Concretely, for each position i in [max(0,d), min(n,n+d)), it compares
// p[i] against other[i-d].
func (p Probe) MismatchesAtOffset(other Probe, d int) (int, error) {
	n := len(p.str)
	if n != len(other.str) {
		return 0, errors.Errorf("probe: MismatchesAtOffset requires equal length probes, got %d and %d", n, len(other.str))
	}
	if d <= -n || d >= n {
		return 0, errors.Errorf("probe: MismatchesAtOffset offset %d out of range (-%d, %d)", d, n, n)
	}
	start := d
	if start < 0 {
		start = 0
	}
	end := n + d
	if end > n {
		end = n
	}
	mismatches := 0
	for i := start; i < end; i++ {
		if baseMismatch(p.str[i], other.str[i-d]) {
			mismatches++
		}
	}
	return mismatches, nil
}

// MinMismatchesWithinShift returns the minimum of MismatchesAtOffset(other,
// d) over d in [-shift, shift]. p and other must have equal length.
func (p Probe) MinMismatchesWithinShift(other Probe, shift int) (int, error) {
	n := len(p.str)
	if n != len(other.str) {
		return 0, errors.Errorf("probe: MinMismatchesWithinShift requires equal length probes, got %d and %d", n, len(other.str))
	}
	best := -1
	for d := -shift; d <= shift; d++ {
		if d <= -n || d >= n {
			continue
		}
		m, err := p.MismatchesAtOffset(other, d)
		if err != nil {
			return 0, err
		}
		if best == -1 || m < best {
			best = m
		}
	}
	if best == -1 {
		// shift was large enough that every offset was out of range; the
		// only remaining offset is 0.
		return p.Mismatches(other)
	}
	return best, nil
}

// ReverseComplement returns a new Probe holding the reverse complement of p:
// the sequence is reversed and each base is complemented (A<->T, C<->G);
// anything else, including N, maps to N.
func (p Probe) ReverseComplement() Probe {
	src := []byte(p.str)
	dst := make([]byte, len(src))
	biosimd.ReverseComp8NoValidate(dst, src)
	return newProbeFromString(string(dst))
}

// WithPrependedStr returns a new Probe whose sequence is s followed by p's
// sequence.
func (p Probe) WithPrependedStr(s string) Probe {
	return newProbeFromString(s + p.str)
}

// WithAppendedStr returns a new Probe whose sequence is p's sequence
// followed by s.
func (p Probe) WithAppendedStr(s string) Probe {
	return newProbeFromString(p.str + s)
}

// ConstructKmers returns the |p|-k+1 length-k substrings of p, in order of
// occurrence. The result may contain duplicates.
func (p Probe) ConstructKmers(k int) []string {
	if k <= 0 || k > len(p.str) {
		return nil
	}
	n := len(p.str) - k + 1
	kmers := make([]string, n)
	for i := 0; i < n; i++ {
		kmers[i] = p.str[i : i+k]
	}
	return kmers
}
