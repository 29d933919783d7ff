package lsh

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
)

// SimHashIndex bands a fixed-width SimSignature into Bands groups of
// contiguous bits, bucketing on the exact bit pattern of each band and
// refining candidates by full Hamming distance. This trades MinHash's
// Jaccard estimator for a Hamming/cosine one over the same banding shape.
type SimHashIndex struct {
	mu sync.RWMutex

	bands, rows int // rows = bits per band
	width       SimWidth
	maxDistance int // refinement cutoff in Hamming distance
	factory     ContainerFactory

	buckets    []map[string]IDContainer
	signatures map[ID]SimSignature
}

// NewSimHashIndex builds an empty SimHash index splitting a width-bit
// fingerprint into bands groups of rows contiguous bits each
// (bands*rows must equal width). maxDistance is the Hamming-distance
// refinement cutoff used by Query (inclusive).
func NewSimHashIndex(bands, rows int, width SimWidth, maxDistance int, opts ...IndexOption) (*SimHashIndex, error) {
	if bands <= 0 || rows <= 0 {
		return nil, fmt.Errorf("lsh: bands and rows must be positive: %w", ErrInvalidParams)
	}
	if !width.valid() {
		return nil, fmt.Errorf("lsh: width %d unsupported: %w", width, ErrInvalidParams)
	}
	if bands*rows != int(width) {
		return nil, fmt.Errorf("lsh: bands*rows (%d) must equal width (%d): %w", bands*rows, width, ErrInvalidParams)
	}
	if maxDistance < 0 {
		return nil, fmt.Errorf("lsh: maxDistance must be non-negative: %w", ErrInvalidParams)
	}

	settings := indexSettings{factory: SmallVectorFactory}
	for _, opt := range opts {
		opt(&settings)
	}

	idx := &SimHashIndex{
		bands:       bands,
		rows:        rows,
		width:       width,
		maxDistance: maxDistance,
		factory:     settings.factory,
		buckets:     make([]map[string]IDContainer, bands),
		signatures:  make(map[ID]SimSignature),
	}
	for b := range idx.buckets {
		idx.buckets[b] = make(map[string]IDContainer)
	}
	return idx, nil
}

func (idx *SimHashIndex) bandBits(sig SimSignature, b int) []uint64 {
	// Extract rows contiguous bits starting at b*rows, returned as a
	// single-lane slice so bandKeyString's packer can hash it uniformly.
	start := b * idx.rows
	var v uint64
	for i := 0; i < idx.rows; i++ {
		bitPos := start + i
		word := sig.Bits[bitPos/64]
		bit := (word >> uint(bitPos%64)) & 1
		v |= bit << uint(i)
	}
	return []uint64{v}
}

func (idx *SimHashIndex) validate(sig SimSignature) error {
	if len(sig.Bits) == 0 {
		return ErrEmptySignature
	}
	if sig.Width != idx.width {
		return fmt.Errorf("lsh: signature width %d, index expects %d: %w", sig.Width, idx.width, ErrSignatureMismatch)
	}
	return nil
}

// Insert adds id with fingerprint sig. Returns ErrDuplicateID, unchanged,
// if id is already present.
func (idx *SimHashIndex) Insert(id ID, sig SimSignature) error {
	if err := idx.validate(sig); err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.signatures[id]; exists {
		return ErrDuplicateID
	}

	h := fnv.New64a()
	for b := 0; b < idx.bands; b++ {
		key := bandKeyString(h, idx.bandBits(sig, b))
		bucket, ok := idx.buckets[b][key]
		if !ok {
			bucket = idx.factory()
			idx.buckets[b][key] = bucket
		}
		bucket.AddIfAbsent(id)
	}
	idx.signatures[id] = sig
	return nil
}

// Remove deletes id from the index and returns its stored fingerprint.
// Returns ErrUnknownID if not present.
func (idx *SimHashIndex) Remove(id ID) (SimSignature, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	sig, ok := idx.signatures[id]
	if !ok {
		return SimSignature{}, ErrUnknownID
	}

	h := fnv.New64a()
	for b := 0; b < idx.bands; b++ {
		key := bandKeyString(h, idx.bandBits(sig, b))
		if bucket, ok := idx.buckets[b][key]; ok {
			bucket.Remove(id)
			if bucket.Len() == 0 {
				delete(idx.buckets[b], key)
			}
		}
	}
	delete(idx.signatures, id)
	return sig, nil
}

// Contains reports whether id is currently indexed.
func (idx *SimHashIndex) Contains(id ID) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.signatures[id]
	return ok
}

// Len returns the number of indexed items.
func (idx *SimHashIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.signatures)
}

// Query returns every indexed id within the index's maxDistance Hamming
// distance of sig, refined from the banded candidate union.
func (idx *SimHashIndex) Query(sig SimSignature) ([]ID, error) {
	scored, err := idx.QueryReturnSimilarity(sig)
	if err != nil {
		return nil, err
	}
	ids := make([]ID, len(scored))
	for i, s := range scored {
		ids[i] = s.ID
	}
	return ids, nil
}

// QueryOne returns the first indexed id within maxDistance of sig, or
// ok=false if none qualify. Unlike Query/QueryReturnSimilarity it does not
// rank the full candidate set: it short-circuits the banded candidate scan
// on the first hit, for callers that only need a yes/no match.
func (idx *SimHashIndex) QueryOne(sig SimSignature) (ScoredID, bool, error) {
	if err := idx.validate(sig); err != nil {
		return ScoredID{}, false, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	h := fnv.New64a()
	for b := 0; b < idx.bands; b++ {
		key := bandKeyString(h, idx.bandBits(sig, b))
		bucket, ok := idx.buckets[b][key]
		if !ok {
			continue
		}
		var found ScoredID
		var hit bool
		bucket.Each(func(id ID) {
			if hit {
				return
			}
			other := idx.signatures[id]
			if sig.HammingDistance(other) <= idx.maxDistance {
				found = ScoredID{ID: id, Score: sig.EstimateSimilarity(other)}
				hit = true
			}
		})
		if hit {
			return found, true, nil
		}
	}
	return ScoredID{}, false, nil
}

// QueryReturnSimilarity returns scored candidates within maxDistance,
// sorted by descending estimated similarity.
func (idx *SimHashIndex) QueryReturnSimilarity(sig SimSignature) ([]ScoredID, error) {
	if err := idx.validate(sig); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	h := fnv.New64a()
	seen := make(map[ID]struct{})
	for b := 0; b < idx.bands; b++ {
		key := bandKeyString(h, idx.bandBits(sig, b))
		if bucket, ok := idx.buckets[b][key]; ok {
			bucket.Each(func(id ID) { seen[id] = struct{}{} })
		}
	}

	out := make([]ScoredID, 0, len(seen))
	for id := range seen {
		other := idx.signatures[id]
		if sig.HammingDistance(other) <= idx.maxDistance {
			out = append(out, ScoredID{ID: id, Score: sig.EstimateSimilarity(other)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
