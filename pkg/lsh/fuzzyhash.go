package lsh

import (
	"fmt"

	"github.com/glaslos/tlsh"
)

// FuzzyDigest wraps a TLSH fuzzy hash: a locality-sensitive digest over
// raw bytes rather than a token or feature set, useful for near-duplicate
// detection on binary blobs where tokenization doesn't apply.
type FuzzyDigest struct {
	hash *tlsh.TLSH
	raw  string
}

// String returns the digest's canonical hex representation.
func (d FuzzyDigest) String() string {
	if d.hash == nil {
		return ""
	}
	return d.raw
}

// Distance returns the TLSH distance between two digests (0 = identical,
// larger = more different; unbounded above, but rarely exceeds a few
// hundred for real content).
func (d FuzzyDigest) Distance(other FuzzyDigest) (int, error) {
	if d.hash == nil || other.hash == nil {
		return 0, ErrEmptySignature
	}
	return d.hash.Diff(other.hash), nil
}

// fuzzyMaxDistance is used to normalize Distance into a [0,1] similarity;
// TLSH distances for genuinely related content rarely exceed this.
const fuzzyMaxDistance = 300.0

// EstimateSimilarity converts TLSH distance into a [0,1] similarity score,
// clamped at zero for very dissimilar content.
func (d FuzzyDigest) EstimateSimilarity(other FuzzyDigest) (float64, error) {
	dist, err := d.Distance(other)
	if err != nil {
		return 0, err
	}
	sim := 1 - float64(dist)/fuzzyMaxDistance
	if sim < 0 {
		sim = 0
	}
	return sim, nil
}

// FuzzyHashSigner produces FuzzyDigests from raw byte content. TLSH
// requires a minimum content size (the library's own floor, typically
// around 50 bytes with enough distinct trigrams); shorter content returns
// ErrEmptyInput rather than a degenerate digest.
type FuzzyHashSigner struct {
	minDataSize int
}

// FuzzyHashOption configures a FuzzyHashSigner.
type FuzzyHashOption func(*FuzzyHashSigner)

// WithMinDataSize overrides the minimum content length required to
// compute a digest.
func WithMinDataSize(n int) FuzzyHashOption {
	return func(s *FuzzyHashSigner) { s.minDataSize = n }
}

// NewFuzzyHashSigner builds a signer with sensible defaults.
func NewFuzzyHashSigner(opts ...FuzzyHashOption) *FuzzyHashSigner {
	s := &FuzzyHashSigner{minDataSize: 50}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign computes a FuzzyDigest over content.
func (s *FuzzyHashSigner) Sign(content []byte) (FuzzyDigest, error) {
	if len(content) < s.minDataSize {
		return FuzzyDigest{}, fmt.Errorf("lsh: content shorter than %d bytes: %w", s.minDataSize, ErrEmptyInput)
	}
	h, err := tlsh.HashBytes(content)
	if err != nil {
		return FuzzyDigest{}, fmt.Errorf("lsh: tlsh hash: %w", err)
	}
	return FuzzyDigest{hash: h, raw: h.String()}, nil
}
