package lsh

import (
	"fmt"
	"math/rand"
)

// MinHashSigner produces fixed-length MinHash signatures from token sets,
// using K independent linear permutations of a 64-bit token hash. Two
// signatures are only comparable (EstimateJaccard means anything) when
// they were produced by signers sharing the same seed: the seed owns the
// permutation coefficients, and different seeds produce different,
// unrelated permutation families.
type MinHashSigner struct {
	k      int
	width  Width
	seed   int64
	hasher Hasher
	a, b   []uint64

	rejectEmpty bool
}

// MinHashOption configures a MinHashSigner at construction time.
type MinHashOption func(*MinHashSigner)

// WithHasher overrides the default FNV-1a token hasher.
func WithHasher(h Hasher) MinHashOption {
	return func(s *MinHashSigner) { s.hasher = h }
}

// WithRejectEmptyInput makes Sign return ErrEmptyInput for a zero-length
// token set instead of producing an all-saturated signature. SignHashes
// returns no error and is not affected.
func WithRejectEmptyInput() MinHashOption {
	return func(s *MinHashSigner) { s.rejectEmpty = true }
}

// NewMinHashSigner builds a signer with k = B*R lanes of the given width,
// deriving its K permutation coefficient pairs deterministically from
// seed. Two signers built from the same (k, width, seed) always produce
// identical coefficients and therefore comparable signatures.
func NewMinHashSigner(k int, width Width, seed int64, opts ...MinHashOption) (*MinHashSigner, error) {
	if k <= 0 {
		return nil, fmt.Errorf("lsh: minhash k must be positive: %w", ErrInvalidParams)
	}
	if !width.valid() {
		return nil, fmt.Errorf("lsh: minhash width %d unsupported: %w", width, ErrInvalidParams)
	}

	s := &MinHashSigner{
		k:      k,
		width:  width,
		seed:   seed,
		hasher: DefaultHasher,
	}
	for _, opt := range opts {
		opt(s)
	}

	rng := rand.New(rand.NewSource(seed))
	s.a = make([]uint64, k)
	s.b = make([]uint64, k)
	for i := 0; i < k; i++ {
		var a uint64
		for a == 0 {
			a = rng.Uint64() % mersennePrime
		}
		s.a[i] = a
		s.b[i] = rng.Uint64() % mersennePrime
	}
	return s, nil
}

// K returns the signature length this signer produces.
func (s *MinHashSigner) K() int { return s.k }

// Width returns the lane width this signer produces.
func (s *MinHashSigner) Width() Width { return s.width }

// Seed returns the seed this signer's permutation family was derived
// from. Two signers are comparable only if Seed and K and Width all match.
func (s *MinHashSigner) Seed() int64 { return s.seed }

// Sign builds a signature from a token slice using the signer's hasher.
func (s *MinHashSigner) Sign(tokens []string) (Signature, error) {
	if len(tokens) == 0 && s.rejectEmpty {
		return Signature{}, ErrEmptyInput
	}
	return s.SignHashes(hashAll(tokens, s.hasher)), nil
}

// SignHashes builds a signature directly from pre-hashed 64-bit tokens,
// skipping the signer's hasher. Useful when callers already hold hashed
// shingles (e.g. from a shared tokenizer) or want a non-default hash.
func (s *MinHashSigner) SignHashes(hashes []uint64) Signature {
	mask := s.width.mask()
	sat := s.width.Saturation()
	lanes := make([]uint64, s.k)
	for i := range lanes {
		lanes[i] = sat
	}
	for _, h := range hashes {
		for i := 0; i < s.k; i++ {
			v := (mulModMersenne61(s.a[i], h) + s.b[i]) % mersennePrime
			v &= mask
			if v < lanes[i] {
				lanes[i] = v
			}
		}
	}
	return Signature{Width: s.width, Lanes: lanes}
}

// SignStream builds a signature from a pull-style iterator, for corpora
// too large to materialize as a token slice up front. next returns
// (token, true) until exhausted, then (_, false).
func (s *MinHashSigner) SignStream(next func() (string, bool)) Signature {
	mask := s.width.mask()
	sat := s.width.Saturation()
	lanes := make([]uint64, s.k)
	for i := range lanes {
		lanes[i] = sat
	}
	for {
		tok, ok := next()
		if !ok {
			break
		}
		h := s.hasher(tok)
		for i := 0; i < s.k; i++ {
			v := (mulModMersenne61(s.a[i], h) + s.b[i]) % mersennePrime
			v &= mask
			if v < lanes[i] {
				lanes[i] = v
			}
		}
	}
	return Signature{Width: s.width, Lanes: lanes}
}

// EstimateBandRows searches (B, R) pairs with B*R == numHashes for the
// split that minimizes the combined false-positive/false-negative
// probability mass around the similarity threshold, using the same
// S-curve integral approach as the MinHash-LSH literature: for a fixed
// total lane count, tighter banding (more rows per band) pushes the
// "candidate" probability curve P(s) = 1-(1-s^R)^B closer to a step
// function at the threshold.
func EstimateBandRows(numHashes int, threshold float64) (bands, rows int) {
	bestB, bestR := 1, numHashes
	bestScore := sCurveError(1, numHashes, threshold)
	for r := 1; r <= numHashes; r++ {
		if numHashes%r != 0 {
			continue
		}
		b := numHashes / r
		score := sCurveError(b, r, threshold)
		if score < bestScore {
			bestScore = score
			bestB, bestR = b, r
		}
	}
	return bestB, bestR
}

// sCurveError integrates false-positive mass below the threshold plus
// false-negative mass above it, using a fixed-step numerical integral —
// the same technique the minhashlsh optimalKL search uses.
func sCurveError(b, r int, threshold float64) float64 {
	const steps = 200
	const step = 1.0 / steps
	var fp, fn float64
	for i := 0; i < steps; i++ {
		s := (float64(i) + 0.5) * step
		p := candidateProbability(b, r, s)
		if s < threshold {
			fp += p * step
		} else {
			fn += (1 - p) * step
		}
	}
	return fp + fn
}

// candidateProbability is the banded-LSH S-curve: the probability that at
// least one band matches exactly given per-lane agreement probability s.
func candidateProbability(b, r int, s float64) float64 {
	return 1 - pow1MinusPow(s, r, b)
}

// pow1MinusPow computes (1-s^r)^b without needing math.Pow's edge-case
// handling for s in [0,1].
func pow1MinusPow(s float64, r, b int) float64 {
	sr := 1.0
	for i := 0; i < r; i++ {
		sr *= s
	}
	base := 1 - sr
	out := 1.0
	for i := 0; i < b; i++ {
		out *= base
	}
	return out
}
