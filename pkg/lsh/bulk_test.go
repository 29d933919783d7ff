package lsh

import (
	"testing"

	"github.com/corpuskit/lshindex/internal/parallel"
)

func rawItemsFromCorpus() []RawItem {
	items := make([]RawItem, 0, len(fiveDocCorpus))
	for id, text := range fiveDocCorpus {
		items = append(items, RawItem{ID: id, Tokens: docTokens(text)})
	}
	return items
}

func TestBulkInsertSequential(t *testing.T) {
	signer, err := NewMinHashSigner(126, Width32, 1234)
	if err != nil {
		t.Fatalf("NewMinHashSigner: %v", err)
	}
	idx, err := NewMinHashIndex(42, 3, Width32, 1234, 0.5)
	if err != nil {
		t.Fatalf("NewMinHashIndex: %v", err)
	}

	errs := BulkInsert(signer, idx, rawItemsFromCorpus())
	for i, err := range errs {
		if err != nil {
			t.Errorf("item %d: %v", i, err)
		}
	}
	if idx.Len() != len(fiveDocCorpus) {
		t.Errorf("Len() = %d, want %d", idx.Len(), len(fiveDocCorpus))
	}
}

func TestParallelBulkInsertMatchesSequential(t *testing.T) {
	signer, _ := NewMinHashSigner(126, Width32, 1234)
	idx, err := NewMinHashIndex(42, 3, Width32, 1234, 0.5)
	if err != nil {
		t.Fatalf("NewMinHashIndex: %v", err)
	}

	pool, err := parallel.New(parallel.Options{Size: 4, PreAlloc: true, MaxBlocking: 100})
	if err != nil {
		t.Fatalf("parallel.New: %v", err)
	}
	defer pool.Release()

	errs := ParallelBulkInsert(pool, signer, idx, rawItemsFromCorpus())
	for i, err := range errs {
		if err != nil {
			t.Errorf("item %d: %v", i, err)
		}
	}
	if idx.Len() != len(fiveDocCorpus) {
		t.Errorf("Len() = %d, want %d", idx.Len(), len(fiveDocCorpus))
	}
}

func TestBulkInsertRejectsIntraBatchDuplicateID(t *testing.T) {
	signer, err := NewMinHashSigner(126, Width32, 1234)
	if err != nil {
		t.Fatalf("NewMinHashSigner: %v", err)
	}
	idx, err := NewMinHashIndex(42, 3, Width32, 1234, 0.5)
	if err != nil {
		t.Fatalf("NewMinHashIndex: %v", err)
	}

	items := []RawItem{
		{ID: "a", Tokens: docTokens(fiveDocCorpus["doc1"])},
		{ID: "b", Tokens: docTokens(fiveDocCorpus["doc4"])},
		{ID: "a", Tokens: docTokens(fiveDocCorpus["doc5"])},
	}

	errs := BulkInsert(signer, idx, items)
	if errs[2] != ErrDuplicateID {
		t.Errorf("errs[2] = %v, want ErrDuplicateID (first duplicate in input order)", errs[2])
	}
	if errs[0] != nil || errs[1] != nil {
		t.Errorf("non-duplicate slots should be nil, got %v", errs)
	}
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0: a batch-level duplicate must fail the whole call, not partially commit", idx.Len())
	}
}

func TestParallelBulkInsertRejectsIntraBatchDuplicateID(t *testing.T) {
	signer, _ := NewMinHashSigner(126, Width32, 1234)
	idx, err := NewMinHashIndex(42, 3, Width32, 1234, 0.5)
	if err != nil {
		t.Fatalf("NewMinHashIndex: %v", err)
	}

	pool, err := parallel.New(parallel.Options{Size: 4, PreAlloc: true, MaxBlocking: 100})
	if err != nil {
		t.Fatalf("parallel.New: %v", err)
	}
	defer pool.Release()

	items := []RawItem{
		{ID: "a", Tokens: docTokens(fiveDocCorpus["doc1"])},
		{ID: "a", Tokens: docTokens(fiveDocCorpus["doc4"])},
	}

	errs := ParallelBulkInsert(pool, signer, idx, items)
	if errs[1] != ErrDuplicateID {
		t.Errorf("errs[1] = %v, want ErrDuplicateID", errs[1])
	}
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0: a batch-level duplicate must fail the whole call", idx.Len())
	}
}

func TestParallelBulkQuery(t *testing.T) {
	signer, idx := buildFiveDocIndex(t)

	pool, err := parallel.New(parallel.Options{Size: 4, PreAlloc: true, MaxBlocking: 100})
	if err != nil {
		t.Fatalf("parallel.New: %v", err)
	}
	defer pool.Release()

	queries := make([]Signature, 0, len(fiveDocCorpus))
	ids := make([]ID, 0, len(fiveDocCorpus))
	for id, text := range fiveDocCorpus {
		sig, err := signer.Sign(docTokens(text))
		if err != nil {
			t.Fatalf("Sign(%s): %v", id, err)
		}
		queries = append(queries, sig)
		ids = append(ids, id)
	}

	results, errs := ParallelBulkQuery(pool, idx, queries)
	for i, err := range errs {
		if err != nil {
			t.Errorf("query %d: %v", i, err)
		}
	}
	for i, hits := range results {
		found := false
		for _, h := range hits {
			if h == ids[i] {
				found = true
			}
		}
		if !found {
			t.Errorf("query %d (%s) should at least return itself, got %v", i, ids[i], hits)
		}
	}
}

func TestParallelBulkFilterDuplicatesKeepsFirstOccurrence(t *testing.T) {
	signer, err := NewMinHashSigner(126, Width32, 1234)
	if err != nil {
		t.Fatalf("NewMinHashSigner: %v", err)
	}
	idx, err := NewMinHashIndex(42, 3, Width32, 1234, 0.5)
	if err != nil {
		t.Fatalf("NewMinHashIndex: %v", err)
	}

	pool, err := parallel.New(parallel.Options{Size: 4, PreAlloc: true, MaxBlocking: 100})
	if err != nil {
		t.Fatalf("parallel.New: %v", err)
	}
	defer pool.Release()

	items := []RawItem{
		{ID: "a", Tokens: docTokens(fiveDocCorpus["doc1"])},
		{ID: "b", Tokens: docTokens(fiveDocCorpus["doc1"])},
		{ID: "c", Tokens: docTokens(fiveDocCorpus["doc4"])},
	}

	kept, errs := ParallelBulkFilterDuplicates(pool, signer, idx, items)
	for i, err := range errs {
		if err != nil {
			t.Errorf("item %d: %v", i, err)
		}
	}
	if !kept[0] {
		t.Errorf("first occurrence (a) should be kept")
	}
	if kept[1] {
		t.Errorf("second occurrence (b), a near-duplicate of a, should be dropped")
	}
	if !kept[2] {
		t.Errorf("unrelated item (c) should be kept")
	}
}
