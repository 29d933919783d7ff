package lsh

import "github.com/corpuskit/lshindex/internal/parallel"

// RawItem pairs an id with the raw tokens a MinHashSigner should sign.
type RawItem struct {
	ID     ID
	Tokens []string
}

// firstIntraBatchDuplicate returns the index of the first item whose id
// repeats an earlier item in the same batch, or -1 if ids are unique.
func firstIntraBatchDuplicate(items []RawItem) int {
	seen := make(map[ID]struct{}, len(items))
	for i, item := range items {
		if _, dup := seen[item.ID]; dup {
			return i
		}
		seen[item.ID] = struct{}{}
	}
	return -1
}

// duplicateBatchErrors reports ErrDuplicateID against the first repeated id
// in the batch and leaves every other slot nil: a duplicate id within a
// single bulk call fails the whole call rather than partially committing.
func duplicateBatchErrors(n, dup int) []error {
	out := make([]error, n)
	out[dup] = ErrDuplicateID
	return out
}

// BulkInsert signs and inserts every item sequentially. Prefer
// ParallelBulkInsert for corpora large enough that signature construction
// dominates wall time. A repeated id within items fails the whole call
// (ErrDuplicateID against the first repeat) without inserting anything.
func BulkInsert(signer *MinHashSigner, idx *MinHashIndex, items []RawItem) []error {
	if dup := firstIntraBatchDuplicate(items); dup >= 0 {
		return duplicateBatchErrors(len(items), dup)
	}

	out := make([]error, len(items))
	for i, item := range items {
		sig, err := signer.Sign(item.Tokens)
		if err != nil {
			out[i] = err
			continue
		}
		out[i] = idx.Insert(item.ID, sig)
	}
	return out
}

// ParallelBulkInsert builds every item's signature concurrently on pool —
// the expensive, embarrassingly parallel step — then folds each
// signature into idx one at a time on the calling goroutine, honoring
// the index's single-coordinator mutation contract. A repeated id within
// items fails the whole call (ErrDuplicateID against the first repeat)
// without signing or inserting anything.
func ParallelBulkInsert(pool *parallel.Pool, signer *MinHashSigner, idx *MinHashIndex, items []RawItem) []error {
	if dup := firstIntraBatchDuplicate(items); dup >= 0 {
		return duplicateBatchErrors(len(items), dup)
	}

	sigs := make([]Signature, len(items))
	signErrs := make([]error, len(items))

	for i, item := range items {
		i, item := i, item
		_ = pool.Submit(func() error {
			sig, err := signer.Sign(item.Tokens)
			sigs[i] = sig
			signErrs[i] = err
			return err
		})
	}
	pool.Wait()

	out := make([]error, len(items))
	for i, item := range items {
		if signErrs[i] != nil {
			out[i] = signErrs[i]
			continue
		}
		out[i] = idx.Insert(item.ID, sigs[i])
	}
	return out
}

// ParallelBulkQuery runs a batch of queries concurrently. Safe as long as
// no Insert/Remove is in flight against idx for the duration of the call,
// per the index's concurrency contract (multi-reader, single-writer).
func ParallelBulkQuery(pool *parallel.Pool, idx *MinHashIndex, queries []Signature) ([][]ID, []error) {
	results := make([][]ID, len(queries))
	errs := make([]error, len(queries))

	for i, q := range queries {
		i, q := i, q
		_ = pool.Submit(func() error {
			ids, err := idx.Query(q)
			results[i] = ids
			errs[i] = err
			return err
		})
	}
	pool.Wait()
	return results, errs
}

// ParallelBulkFilterDuplicates builds every item's signature concurrently,
// then decides each item's fate sequentially in input order: item i is
// queried against idx as it stands at that point in the batch — including
// any earlier items from this same call that were already inserted — and
// kept only if nothing matched. The insert decision is intentionally
// serialized: parallelizing it would make "is this a duplicate of an
// earlier item in the same batch" depend on goroutine scheduling instead
// of input order.
func ParallelBulkFilterDuplicates(pool *parallel.Pool, signer *MinHashSigner, idx *MinHashIndex, items []RawItem) ([]bool, []error) {
	sigs := make([]Signature, len(items))
	signErrs := make([]error, len(items))

	for i, item := range items {
		i, item := i, item
		_ = pool.Submit(func() error {
			sig, err := signer.Sign(item.Tokens)
			sigs[i] = sig
			signErrs[i] = err
			return err
		})
	}
	pool.Wait()

	kept := make([]bool, len(items))
	errs := make([]error, len(items))
	for i, item := range items {
		if signErrs[i] != nil {
			errs[i] = signErrs[i]
			continue
		}
		hits, err := idx.Query(sigs[i])
		if err != nil {
			errs[i] = err
			continue
		}
		if len(hits) > 0 {
			continue
		}
		if err := idx.Insert(item.ID, sigs[i]); err != nil {
			errs[i] = err
			continue
		}
		kept[i] = true
	}
	return kept, errs
}
