package otree

// Iterator walks the tree's leaf-level linked list in sorted key order.
// The zero value represents both Begin() and End() on an empty tree.
type Iterator struct {
	leafp *leafNode
	slot  int
}

// Valid reports whether the iterator refers to a real element, as opposed
// to a past-the-end (or empty-tree) position.
func (it Iterator) Valid() bool {
	return it.leafp != nil && it.slot < len(it.leafp.keys)
}

// Key returns the key at the iterator's position. Valid() must be true.
func (it Iterator) Key() float64 {
	return it.leafp.keys[it.slot]
}

// Payload returns the payload at the iterator's position. Valid() must be
// true.
func (it Iterator) Payload() int32 {
	return it.leafp.payloads[it.slot]
}

// Equal reports whether two iterators refer to the same slot.
func (it Iterator) Equal(other Iterator) bool {
	return it.leafp == other.leafp && it.slot == other.slot
}

// Next returns the iterator one position forward. Calling Next on the
// past-the-end iterator returns it unchanged.
func (it Iterator) Next() Iterator {
	if it.leafp == nil {
		return it
	}
	if it.slot+1 < len(it.leafp.keys) {
		return Iterator{it.leafp, it.slot + 1}
	}
	if it.leafp.next != nil {
		return Iterator{it.leafp.next, 0}
	}
	return Iterator{it.leafp, len(it.leafp.keys)}
}

// Prev returns the iterator one position back. Calling Prev on Begin() is
// not meaningful and returns its argument unchanged — callers must check
// against Begin() themselves, mirroring the usual iterator contract.
func (it Iterator) Prev() Iterator {
	if it.leafp == nil {
		return it
	}
	if it.slot > 0 {
		return Iterator{it.leafp, it.slot - 1}
	}
	if it.leafp.prev != nil {
		return Iterator{it.leafp.prev, len(it.leafp.prev.keys) - 1}
	}
	return it
}
