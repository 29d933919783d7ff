package lsh

import "errors"

// Sentinel errors returned by index and signer operations. The index never
// logs; every failure mode is a returned error value, checked with
// errors.Is at the call site.
var (
	// ErrDuplicateID is returned by Insert when the id is already present.
	// The index is left unchanged.
	ErrDuplicateID = errors.New("lsh: id already present")

	// ErrUnknownID is returned by Remove when the id is not present.
	ErrUnknownID = errors.New("lsh: unknown id")

	// ErrWrongSignatureLength is returned when a signature's lane count
	// does not match the index's configured K = B*R.
	ErrWrongSignatureLength = errors.New("lsh: signature length does not match index bands*rows")

	// ErrSignatureMismatch is returned when two signatures being compared
	// were produced with different widths or band/row layouts.
	ErrSignatureMismatch = errors.New("lsh: signatures are not comparable")

	// ErrEmptyInput is returned by MinHash and SimHash signers asked to sign
	// zero tokens or zero features, if built with WithRejectEmptyInput or
	// WithSimRejectEmptyInput, and wrapped by FuzzyHashSigner.Sign for
	// content below its minimum size.
	ErrEmptyInput = errors.New("lsh: empty input")

	// ErrEmptySignature is returned when an index operation receives a
	// signature with zero lanes.
	ErrEmptySignature = errors.New("lsh: empty signature")

	// ErrInvalidParams is returned by constructors given nonsensical
	// band/row/width/seed combinations.
	ErrInvalidParams = errors.New("lsh: invalid parameters")

	// ErrSeedMismatch names signatures produced by signers with different
	// seeds. No operation in this package returns it: a Signature carries
	// no seed, so seed parity is not checked when comparing or indexing.
	ErrSeedMismatch = errors.New("lsh: signatures come from different seeds")
)
