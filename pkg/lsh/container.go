package lsh

// ID identifies a stored item. The index never interprets an ID beyond
// equality and hashing; callers own the namespace.
type ID string

// IDContainer is the capability contract every bucket value implements.
// Index code only ever reaches a bucket's contents through this
// interface, so swapping container implementations never touches banding
// or query logic.
type IDContainer interface {
	// AddIfAbsent inserts id, returning false if it was already present.
	AddIfAbsent(id ID) bool
	// Remove deletes id, returning false if it was not present.
	Remove(id ID) bool
	// Contains reports membership.
	Contains(id ID) bool
	// Each calls fn for every stored id, in unspecified order. Each must
	// not be called concurrently with a mutating method on the same
	// container.
	Each(fn func(ID))
	// Len returns the number of stored ids.
	Len() int
}

// HashedSetContainer stores ids in a Go map: O(1) add/remove/contains,
// highest per-entry overhead. The right default for buckets expected to
// grow large or churn heavily.
type HashedSetContainer struct {
	m map[ID]struct{}
}

// NewHashedSetContainer returns an empty HashedSetContainer.
func NewHashedSetContainer() *HashedSetContainer {
	return &HashedSetContainer{m: make(map[ID]struct{})}
}

func (c *HashedSetContainer) AddIfAbsent(id ID) bool {
	if _, ok := c.m[id]; ok {
		return false
	}
	c.m[id] = struct{}{}
	return true
}

func (c *HashedSetContainer) Remove(id ID) bool {
	if _, ok := c.m[id]; !ok {
		return false
	}
	delete(c.m, id)
	return true
}

func (c *HashedSetContainer) Contains(id ID) bool {
	_, ok := c.m[id]
	return ok
}

func (c *HashedSetContainer) Each(fn func(ID)) {
	for id := range c.m {
		fn(id)
	}
}

func (c *HashedSetContainer) Len() int { return len(c.m) }

// DenseSequenceContainer stores ids in an append-only slice plus a
// presence index, favoring iteration speed and memory locality over
// remove cost (Remove does a swap-to-end-and-truncate). Suited to buckets
// that are built once and queried heavily but rarely shrink.
type DenseSequenceContainer struct {
	ids   []ID
	index map[ID]int
}

// NewDenseSequenceContainer returns an empty DenseSequenceContainer.
func NewDenseSequenceContainer() *DenseSequenceContainer {
	return &DenseSequenceContainer{index: make(map[ID]int)}
}

func (c *DenseSequenceContainer) AddIfAbsent(id ID) bool {
	if _, ok := c.index[id]; ok {
		return false
	}
	c.index[id] = len(c.ids)
	c.ids = append(c.ids, id)
	return true
}

func (c *DenseSequenceContainer) Remove(id ID) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	last := len(c.ids) - 1
	moved := c.ids[last]
	c.ids[i] = moved
	c.ids = c.ids[:last]
	delete(c.index, id)
	if i != last {
		c.index[moved] = i
	}
	return true
}

func (c *DenseSequenceContainer) Contains(id ID) bool {
	_, ok := c.index[id]
	return ok
}

func (c *DenseSequenceContainer) Each(fn func(ID)) {
	for _, id := range c.ids {
		fn(id)
	}
}

func (c *DenseSequenceContainer) Len() int { return len(c.ids) }

// smallVectorInlineCap is the number of ids a SmallVectorContainer holds
// inline before spilling to a map-backed overflow. Most LSH buckets hold
// only a handful of members, so this avoids a map allocation for the
// common case.
const smallVectorInlineCap = 8

// SmallVectorContainer stores up to smallVectorInlineCap ids inline in an
// array with no heap allocation beyond the container itself, spilling into
// a HashedSetContainer once that capacity is exceeded. This is the
// container of choice for the overwhelming majority of buckets, which end
// up with only a few members.
type SmallVectorContainer struct {
	inline    [smallVectorInlineCap]ID
	inlineLen int
	spill     *HashedSetContainer
}

// NewSmallVectorContainer returns an empty SmallVectorContainer.
func NewSmallVectorContainer() *SmallVectorContainer {
	return &SmallVectorContainer{}
}

func (c *SmallVectorContainer) AddIfAbsent(id ID) bool {
	if c.Contains(id) {
		return false
	}
	if c.spill == nil && c.inlineLen < smallVectorInlineCap {
		c.inline[c.inlineLen] = id
		c.inlineLen++
		return true
	}
	if c.spill == nil {
		c.spill = NewHashedSetContainer()
		for i := 0; i < c.inlineLen; i++ {
			c.spill.AddIfAbsent(c.inline[i])
		}
		c.inlineLen = 0
	}
	return c.spill.AddIfAbsent(id)
}

func (c *SmallVectorContainer) Remove(id ID) bool {
	if c.spill != nil {
		return c.spill.Remove(id)
	}
	for i := 0; i < c.inlineLen; i++ {
		if c.inline[i] == id {
			c.inline[i] = c.inline[c.inlineLen-1]
			c.inlineLen--
			return true
		}
	}
	return false
}

func (c *SmallVectorContainer) Contains(id ID) bool {
	if c.spill != nil {
		return c.spill.Contains(id)
	}
	for i := 0; i < c.inlineLen; i++ {
		if c.inline[i] == id {
			return true
		}
	}
	return false
}

func (c *SmallVectorContainer) Each(fn func(ID)) {
	if c.spill != nil {
		c.spill.Each(fn)
		return
	}
	for i := 0; i < c.inlineLen; i++ {
		fn(c.inline[i])
	}
}

func (c *SmallVectorContainer) Len() int {
	if c.spill != nil {
		return c.spill.Len()
	}
	return c.inlineLen
}

// ContainerFactory builds a fresh, empty IDContainer for a new bucket.
// Indexes take one at construction so every bucket is created by the
// caller's chosen container type.
type ContainerFactory func() IDContainer

// indexSettings holds the options shared by MinHashIndex and SimHashIndex
// construction. RejectSaturated only has meaning for MinHashIndex; a
// SimHashIndex silently ignores it.
type indexSettings struct {
	factory         ContainerFactory
	rejectSaturated bool
}

// IndexOption configures an index at construction.
type IndexOption func(*indexSettings)

// WithContainerFactory overrides the default bucket container (small
// vector, inline-then-spill).
func WithContainerFactory(f ContainerFactory) IndexOption {
	return func(s *indexSettings) { s.factory = f }
}

// WithRejectSaturatedSignatures makes a MinHashIndex's Insert reject
// all-saturated signatures (the signer never observed a token) with
// ErrEmptySignature, instead of indexing them as a legitimate entry. The
// default accepts them; this is one of the open configuration points the
// spec leaves to callers. No-op on a SimHashIndex.
func WithRejectSaturatedSignatures() IndexOption {
	return func(s *indexSettings) { s.rejectSaturated = true }
}

// SmallVectorFactory is the default ContainerFactory: right for the
// common case of small, rarely-overflowing buckets.
func SmallVectorFactory() IDContainer { return NewSmallVectorContainer() }

// HashedSetFactory builds HashedSetContainers, for corpora expected to
// produce large, hot buckets.
func HashedSetFactory() IDContainer { return NewHashedSetContainer() }

// DenseSequenceFactory builds DenseSequenceContainers, for build-once,
// query-heavy, rarely-mutated buckets.
func DenseSequenceFactory() IDContainer { return NewDenseSequenceContainer() }
