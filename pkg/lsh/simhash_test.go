package lsh

import "testing"

func TestSimHashIdenticalDocumentsAreBitIdentical(t *testing.T) {
	signer, err := NewSimHashSigner(SimWidth64)
	if err != nil {
		t.Fatalf("NewSimHashSigner: %v", err)
	}

	tokens := docTokens("the quick brown fox jumps over the lazy dog")
	sig1, err := signer.Sign(tokens)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sig2, err := signer.Sign(tokens)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if sig1.HammingDistance(sig2) != 0 {
		t.Errorf("identical documents should produce bit-identical fingerprints, distance = %d", sig1.HammingDistance(sig2))
	}
	if got := sig1.EstimateSimilarity(sig2); got != 1.0 {
		t.Errorf("EstimateSimilarity of identical docs = %v, want 1.0", got)
	}
}

func TestSimHashDissimilarDocumentsDiverge(t *testing.T) {
	signer, _ := NewSimHashSigner(SimWidth64)

	sigA, _ := signer.Sign(docTokens("alpha beta gamma delta epsilon"))
	sigB, _ := signer.Sign(docTokens("gardening tools require regular maintenance"))

	if got := sigA.EstimateSimilarity(sigB); got > 0.9 {
		t.Errorf("EstimateSimilarity of unrelated docs unexpectedly high: %v", got)
	}
}

func TestSimHash128BitWidth(t *testing.T) {
	signer, err := NewSimHashSigner(SimWidth128)
	if err != nil {
		t.Fatalf("NewSimHashSigner(128): %v", err)
	}
	sig, err := signer.Sign(docTokens("some moderately long piece of text for hashing"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sig.Bits) != 2 {
		t.Fatalf("128-bit signature should back two uint64 words, got %d", len(sig.Bits))
	}
}

func TestSimHashWeightedFeatures(t *testing.T) {
	signer, _ := NewSimHashSigner(SimWidth64)

	heavy := []WeightedFeature{{Token: "dominant", Weight: 100}, {Token: "minor", Weight: 1}}
	light := []WeightedFeature{{Token: "dominant", Weight: 1}, {Token: "minor", Weight: 100}}

	sigHeavy, _ := signer.SignWeighted(heavy)
	sigLight, _ := signer.SignWeighted(light)

	if sigHeavy.HammingDistance(sigLight) == 0 {
		t.Errorf("flipping feature weights should change the fingerprint")
	}
}

func TestSimHashRejectEmptyInput(t *testing.T) {
	signer, _ := NewSimHashSigner(SimWidth64, WithSimRejectEmptyInput())
	if _, err := signer.SignWeighted(nil); err != ErrEmptyInput {
		t.Errorf("SignWeighted(nil) error = %v, want ErrEmptyInput", err)
	}
}

func TestSimHashInvalidWidth(t *testing.T) {
	if _, err := NewSimHashSigner(SimWidth(32)); err == nil {
		t.Errorf("expected error for unsupported width")
	}
}
