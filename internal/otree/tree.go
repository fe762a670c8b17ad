// Package otree implements an in-memory B+ tree over (key, payload) pairs
// that answers order-statistic queries (rank of a key, key at a rank) in
// O(log n) and supports splitting and joining whole subtrees by key or by
// rank. It is the per-worker backing store for the selection protocol and
// the reservoir engine: every weighted sample in this module is, underneath,
// a float64 exponential-clock key paired with an int32 item id sitting in
// one of these trees.
package otree

// Item is one (key, payload) pair, used by BulkLoad and by callers walking
// an iterator range.
type Item struct {
	Key     float64
	Payload int32
}

// Tree is an order-statistic B+ tree. The zero value is not usable; build
// one with New or BulkLoad.
type Tree struct {
	root node

	head *leafNode
	tail *leafNode

	leafCap  int
	innerCap int

	// SelfVerify makes every mutating call end with a full Verify(). It is
	// off by default because Verify() is linear in the tree size; tests
	// that want the stronger guarantee turn it on explicitly.
	SelfVerify bool
}

// DefaultCapacity is the node fan-out used when a caller does not have a
// reason to pick a different one.
const DefaultCapacity = 64

// New creates an empty tree with the given leaf and inner node capacities.
// Both must be at least 4 so that a post-split or post-join node can still
// hold at least two children without special-casing degenerate widths.
func New(leafCap, innerCap int) *Tree {
	if leafCap < 4 || innerCap < 4 {
		panic("otree: leafCap and innerCap must each be >= 4")
	}
	return &Tree{leafCap: leafCap, innerCap: innerCap}
}

// NewDefault creates an empty tree using DefaultCapacity for both leaf and
// inner nodes.
func NewDefault() *Tree {
	return New(DefaultCapacity, DefaultCapacity)
}

// Size returns the number of (key, payload) pairs currently stored.
func (t *Tree) Size() int64 {
	if t.root == nil {
		return 0
	}
	return t.root.count()
}

// Empty reports whether the tree holds no elements.
func (t *Tree) Empty() bool {
	return t.root == nil
}

// Clear discards every element, resetting the tree to empty.
func (t *Tree) Clear() {
	t.root = nil
	t.head = nil
	t.tail = nil
}

// Begin returns an iterator at the smallest element, or an invalid
// past-the-end iterator if the tree is empty.
func (t *Tree) Begin() Iterator {
	if t.head == nil {
		return Iterator{}
	}
	return Iterator{leafp: t.head, slot: 0}
}

// End returns the past-the-end iterator.
func (t *Tree) End() Iterator {
	if t.tail == nil {
		return Iterator{}
	}
	return Iterator{leafp: t.tail, slot: len(t.tail.keys)}
}

func (t *Tree) verifyIfEnabled() {
	if t.SelfVerify {
		t.Verify()
	}
}
