package lsh

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math/bits"
)

// Hasher maps an arbitrary token to a uniform 64-bit value. Signers accept
// raw string tokens through this seam so callers can swap in a different
// hash family without touching the permutation or accumulator logic.
type Hasher func(token string) uint64

// DefaultHasher hashes a token with 64-bit FNV-1a, the same non-cryptographic
// hash the teacher codebase uses for shingling and band-key hashing. FNV-1a
// needs no setup cost per call and its avalanche behavior is good enough for
// the only property banding actually depends on: determinism, not
// adversarial collision resistance.
func DefaultHasher(token string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	return h.Sum64()
}

// hashAll maps a token slice through a Hasher, preserving order.
func hashAll(tokens []string, h Hasher) []uint64 {
	out := make([]uint64, len(tokens))
	for i, t := range tokens {
		out[i] = h(t)
	}
	return out
}

// bandKey hashes one band's row of lanes into a single bucket key. The
// lanes are packed into a canonical little-endian byte sequence first so
// that two equal row slices always hash identically regardless of the
// lane width in use.
func bandKey(lanes []uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, l := range lanes {
		binary.LittleEndian.PutUint64(buf[:], l)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// bandKeyString is bandKey's string-keyed counterpart, used where the
// bucket table is keyed by string rather than uint64 (e.g. SimHash bands,
// whose row width differs from a MinHash lane).
func bandKeyString(h hash.Hash64, lanes []uint64) string {
	h.Reset()
	var buf [8]byte
	for _, l := range lanes {
		binary.LittleEndian.PutUint64(buf[:], l)
		_, _ = h.Write(buf[:])
	}
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], h.Sum64())
	return string(out[:])
}

const mersennePrime = (uint64(1) << 61) - 1

// reduceMersenne61 folds any 64-bit value down into [0, mersennePrime).
func reduceMersenne61(v uint64) uint64 {
	for v > mersennePrime {
		v = (v >> 61) + (v & mersennePrime)
	}
	if v == mersennePrime {
		return 0
	}
	return v
}

// mulModMersenne61 computes (a*h) mod (2^61-1) without intermediate
// overflow, for a a coefficient already reduced mod p and h an arbitrary
// 64-bit token hash.
func mulModMersenne61(a, h uint64) uint64 {
	hi, lo := bits.Mul64(a, h)
	hiR := reduceMersenne61(hi)
	loR := reduceMersenne61(lo)
	// 2^64 = 8 * (2^61) = 8*(p+1) ≡ 8 (mod p), so folding the high half
	// back in is just an 8x scale-and-add.
	sum, carry := bits.Add64(loR, 8*hiR, 0)
	if carry == 1 {
		sum, _ = bits.Add64(sum, 8, 0)
	}
	return reduceMersenne61(sum)
}
