package lsh

import (
	"reflect"
	"testing"
)

// fiveDocCorpus mirrors the worked scenario: five short documents, three
// near-duplicates of each other and two clearly distinct outliers.
var fiveDocCorpus = map[ID]string{
	"doc1": "the quick brown fox jumps over the lazy dog",
	"doc2": "the quick brown fox jumps over the lazy cat",
	"doc3": "the quick brown fox leaps over the lazy dog",
	"doc4": "completely unrelated content about gardening tools",
	"doc5": "a totally different subject involving space travel",
}

func buildFiveDocIndex(t *testing.T) (*MinHashSigner, *MinHashIndex) {
	t.Helper()
	const bands, rows, seed = 42, 3, int64(1234)
	signer, err := NewMinHashSigner(bands*rows, Width32, seed)
	if err != nil {
		t.Fatalf("NewMinHashSigner: %v", err)
	}
	idx, err := NewMinHashIndex(bands, rows, Width32, seed, 0.5)
	if err != nil {
		t.Fatalf("NewMinHashIndex: %v", err)
	}
	for id, text := range fiveDocCorpus {
		sig, err := signer.Sign(docTokens(text))
		if err != nil {
			t.Fatalf("Sign(%s): %v", id, err)
		}
		if err := idx.Insert(id, sig); err != nil {
			t.Fatalf("Insert(%s): %v", id, err)
		}
	}
	return signer, idx
}

func TestMinHashIndexFindsNearDuplicates(t *testing.T) {
	signer, idx := buildFiveDocIndex(t)

	sig, _ := signer.Sign(docTokens(fiveDocCorpus["doc1"]))
	hits, err := idx.Query(sig)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	found := make(map[ID]bool)
	for _, id := range hits {
		found[id] = true
	}
	if !found["doc1"] {
		t.Errorf("query for doc1 should at least return doc1 itself")
	}
	if found["doc4"] || found["doc5"] {
		t.Errorf("unrelated docs should not surface as near-duplicates: hits=%v", hits)
	}
}

func TestMinHashIndexDuplicateInsertLeavesStateUnchanged(t *testing.T) {
	_, idx := buildFiveDocIndex(t)

	before := idx.Len()
	sig, ok := idx.Signature("doc1")
	if !ok {
		t.Fatalf("doc1 missing")
	}

	err := idx.Insert("doc1", sig)
	if err != ErrDuplicateID {
		t.Fatalf("Insert duplicate error = %v, want ErrDuplicateID", err)
	}
	if idx.Len() != before {
		t.Errorf("Len changed after rejected duplicate insert: %d -> %d", before, idx.Len())
	}
}

func TestMinHashIndexRemoveRoundTrip(t *testing.T) {
	_, idx := buildFiveDocIndex(t)

	if !idx.Contains("doc2") {
		t.Fatalf("doc2 should be present before removal")
	}
	want, ok := idx.Signature("doc2")
	if !ok {
		t.Fatalf("doc2 signature missing before removal")
	}
	got, err := idx.Remove("doc2")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Remove returned signature %+v, want %+v", got, want)
	}
	if idx.Contains("doc2") {
		t.Errorf("doc2 should be gone after Remove")
	}
	if _, ok := idx.Signature("doc2"); ok {
		t.Errorf("Signature should not resolve doc2 after Remove")
	}
	ids, err := idx.Query(want)
	if err != nil {
		t.Fatalf("Query after remove: %v", err)
	}
	for _, id := range ids {
		if id == "doc2" {
			t.Errorf("Query should omit doc2 after Remove")
		}
	}
}

func TestMinHashIndexRemoveUnknownID(t *testing.T) {
	_, idx := buildFiveDocIndex(t)
	if _, err := idx.Remove("no-such-id"); err != ErrUnknownID {
		t.Errorf("Remove unknown id error = %v, want ErrUnknownID", err)
	}
}

func TestMinHashIndexWrongSignatureLength(t *testing.T) {
	_, idx := buildFiveDocIndex(t)
	bad := Signature{Width: Width32, Lanes: make([]uint64, 5)}
	if err := idx.Insert("bad", bad); err == nil {
		t.Errorf("expected error for wrong signature length")
	}
}

func TestMinHashIndexEmptySignature(t *testing.T) {
	_, idx := buildFiveDocIndex(t)
	bad := Signature{Width: Width32}
	if err := idx.Insert("empty", bad); err != ErrEmptySignature {
		t.Errorf("Insert empty signature error = %v, want ErrEmptySignature", err)
	}
}

func TestMinHashIndexRejectSaturatedOption(t *testing.T) {
	const bands, rows, seed = 10, 2, int64(9)
	idx, err := NewMinHashIndex(bands, rows, Width32, seed, 0.5, WithRejectSaturatedSignatures())
	if err != nil {
		t.Fatalf("NewMinHashIndex: %v", err)
	}
	signer, _ := NewMinHashSigner(bands*rows, Width32, seed)
	sat, _ := signer.Sign(nil)

	if err := idx.Insert("x", sat); err == nil {
		t.Errorf("expected saturated signature to be rejected")
	}
}

func TestMinHashIndexQueryTopK(t *testing.T) {
	signer, idx := buildFiveDocIndex(t)
	sig, _ := signer.Sign(docTokens(fiveDocCorpus["doc1"]))

	top, err := idx.QueryTopK(sig, 1)
	if err != nil {
		t.Fatalf("QueryTopK: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("QueryTopK(1) returned %d results", len(top))
	}
	if top[0].ID != "doc1" {
		t.Errorf("top result = %s, want doc1 (exact self-match)", top[0].ID)
	}
}
