package lsh

import (
	"fmt"
	"sort"
	"sync"
)

// ScoredID pairs a candidate id with its estimated similarity to the query.
type ScoredID struct {
	ID    ID
	Score float64
}

// MinHashIndex is a banded MinHash index: signatures are split into Bands
// groups of Rows lanes each, and items sharing an exact band slice land in
// the same bucket. Mutation (Insert/Remove) is single-threaded by
// contract; concurrent readers (Query and friends) are safe as long as no
// mutation is in flight (see package-level concurrency note in spec).
type MinHashIndex struct {
	mu sync.RWMutex

	bands, rows int
	width       Width
	seed        int64
	threshold   float64
	factory     ContainerFactory

	rejectSaturated bool

	buckets    []map[uint64]IDContainer
	signatures map[ID]Signature
}

// NewMinHashIndex builds an empty index with the given band/row split,
// lane width, owning seed, and default similarity threshold used by Query.
// seed must match the seed of any MinHashSigner whose signatures are
// inserted; indices built from different seeds are not interchangeable.
func NewMinHashIndex(bands, rows int, width Width, seed int64, threshold float64, opts ...IndexOption) (*MinHashIndex, error) {
	if bands <= 0 || rows <= 0 {
		return nil, fmt.Errorf("lsh: bands and rows must be positive: %w", ErrInvalidParams)
	}
	if !width.valid() {
		return nil, fmt.Errorf("lsh: width %d unsupported: %w", width, ErrInvalidParams)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("lsh: threshold must be in [0,1]: %w", ErrInvalidParams)
	}

	settings := indexSettings{factory: SmallVectorFactory}
	for _, opt := range opts {
		opt(&settings)
	}

	idx := &MinHashIndex{
		bands:           bands,
		rows:            rows,
		width:           width,
		seed:            seed,
		threshold:       threshold,
		factory:         settings.factory,
		rejectSaturated: settings.rejectSaturated,
		buckets:         make([]map[uint64]IDContainer, bands),
		signatures:      make(map[ID]Signature),
	}
	for b := range idx.buckets {
		idx.buckets[b] = make(map[uint64]IDContainer)
	}
	return idx, nil
}

// K returns bands*rows, the expected signature length.
func (idx *MinHashIndex) K() int { return idx.bands * idx.rows }

// Seed returns the seed this index's signer family must share.
func (idx *MinHashIndex) Seed() int64 { return idx.seed }

func (idx *MinHashIndex) validate(sig Signature) error {
	if len(sig.Lanes) == 0 {
		return ErrEmptySignature
	}
	if len(sig.Lanes) != idx.K() {
		return fmt.Errorf("lsh: signature has %d lanes, index expects %d: %w", len(sig.Lanes), idx.K(), ErrWrongSignatureLength)
	}
	if sig.Width != idx.width {
		return fmt.Errorf("lsh: signature width %s, index expects %s: %w", sig.Width, idx.width, ErrSignatureMismatch)
	}
	return nil
}

// Insert adds id with signature sig. Returns ErrDuplicateID, unchanged,
// if id is already present. Returns ErrEmptySignature if sig has no lanes,
// ErrWrongSignatureLength if its lane count is not the index's K, and
// ErrSignatureMismatch if its width differs from the index's. Single
// mutating call; not safe to run concurrently with another Insert/Remove
// or with a Query on the same index.
func (idx *MinHashIndex) Insert(id ID, sig Signature) error {
	if err := idx.validate(sig); err != nil {
		return err
	}
	if idx.rejectSaturated && sig.IsSaturated() {
		return fmt.Errorf("lsh: all-saturated signature rejected: %w", ErrEmptySignature)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.signatures[id]; exists {
		return ErrDuplicateID
	}

	for b := 0; b < idx.bands; b++ {
		row := sig.Lanes[b*idx.rows : (b+1)*idx.rows]
		key := bandKey(row)
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

// Remove deletes id from the index and returns its stored signature.
// Returns ErrUnknownID if id was never present. Atomic: either every
// band's bucket entry for id is removed, or (on the not-present case)
// nothing is touched.
func (idx *MinHashIndex) Remove(id ID) (Signature, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	sig, ok := idx.signatures[id]
	if !ok {
		return Signature{}, ErrUnknownID
	}

	for b := 0; b < idx.bands; b++ {
		row := sig.Lanes[b*idx.rows : (b+1)*idx.rows]
		key := bandKey(row)
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
func (idx *MinHashIndex) Contains(id ID) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.signatures[id]
	return ok
}

// Signature returns the stored signature for id, for re-querying or
// exact-similarity refinement by the caller. ok is false if id is unknown.
func (idx *MinHashIndex) Signature(id ID) (sig Signature, ok bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	sig, ok = idx.signatures[id]
	return
}

// Len returns the number of indexed items.
func (idx *MinHashIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.signatures)
}

// candidates unions bucket membership across every band that sig hits,
// without touching any mutation state. Read-only; safe for concurrent use
// alongside other reads.
func (idx *MinHashIndex) candidates(sig Signature) map[ID]struct{} {
	seen := make(map[ID]struct{})
	for b := 0; b < idx.bands; b++ {
		row := sig.Lanes[b*idx.rows : (b+1)*idx.rows]
		key := bandKey(row)
		if bucket, ok := idx.buckets[b][key]; ok {
			bucket.Each(func(id ID) { seen[id] = struct{}{} })
		}
	}
	return seen
}

// Query returns every indexed id estimated to be at least as similar to
// sig as the index's threshold, refined by exact lane agreement over the
// union of banded candidates (never a full scan).
func (idx *MinHashIndex) Query(sig Signature) ([]ID, error) {
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

// QueryReturnSimilarity is Query's scored variant: every candidate whose
// estimated Jaccard similarity to sig is at or above the threshold is
// returned alongside that score, sorted by descending score.
func (idx *MinHashIndex) QueryReturnSimilarity(sig Signature) ([]ScoredID, error) {
	if err := idx.validate(sig); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	cands := idx.candidates(sig)
	out := make([]ScoredID, 0, len(cands))
	for id := range cands {
		other := idx.signatures[id]
		score := sig.EstimateJaccard(other)
		if score >= idx.threshold {
			out = append(out, ScoredID{ID: id, Score: score})
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

// QueryTopK returns at most k candidates above the index's threshold, by
// descending similarity.
func (idx *MinHashIndex) QueryTopK(sig Signature, k int) ([]ScoredID, error) {
	scored, err := idx.QueryReturnSimilarity(sig)
	if err != nil {
		return nil, err
	}
	if k >= 0 && k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}
