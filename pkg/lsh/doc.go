// Package lsh implements a banded locality-sensitive-hashing index for
// near-duplicate detection and clustering over text corpora.
//
// Two signature families are supported: MinHash signatures, which estimate
// Jaccard similarity between token sets, and SimHash signatures, which
// estimate cosine similarity between weighted feature vectors. Both are
// split into bands of fixed row width and indexed so that items sharing a
// band land in the same bucket, making query a matter of unioning bucket
// membership across bands rather than scanning every stored item.
package lsh
