package otree

import "govetachun/resvoir/pkg/utils"

// SplitAtKey partitions the tree into (elements <= key, elements > key)
// and returns the two halves as independent trees. t is consumed: it must
// not be used again after this call.
func (t *Tree) SplitAtKey(key float64) (*Tree, *Tree) {
	if t.root == nil {
		return &Tree{leafCap: t.leafCap, innerCap: t.innerCap}, &Tree{leafCap: t.leafCap, innerCap: t.innerCap}
	}

	left, right := splitRecursive(t.root, key)

	if left.root != nil {
		left.head = t.head
		left.tail.next = nil
	}
	if right.root != nil {
		right.head.prev = nil
	}
	left.leafCap, left.innerCap = t.leafCap, t.innerCap
	right.leafCap, right.innerCap = t.leafCap, t.innerCap
	return left, right
}

// SplitAtRank partitions the tree into its k smallest elements (by rank,
// not by key) and the remainder. t is consumed.
func (t *Tree) SplitAtRank(k int64) (*Tree, *Tree) {
	size := t.Size()
	utils.Assert(k >= 0 && k <= size, "otree: SplitAtRank rank out of range")

	if k == 0 {
		return &Tree{leafCap: t.leafCap, innerCap: t.innerCap}, t
	}
	if k == size {
		return t, &Tree{leafCap: t.leafCap, innerCap: t.innerCap}
	}

	splitKey := t.FindRank(k - 1).Key()
	left, right := t.SplitAtKey(splitKey)

	// SplitAtKey partitions by value, so every element equal to splitKey
	// landed in left; if that left it holding more than the k elements we
	// wanted, strip the surplus off left's tail in one backward pass over
	// the duplicate run, then insert those elements into right one at a
	// time.
	surplus := left.Size() - k
	if surplus > 0 {
		moveTailSurplus(left, right, surplus)
	}
	return left, right
}

// moveTailSurplus relocates the last n elements of left (all sharing the
// same key, the one SplitAtKey just partitioned on) onto the front of
// right.
func moveTailSurplus(left, right *Tree, n int64) {
	tail := left.tail
	moved := make([]Item, 0, n)
	remaining := n
	for remaining > 0 {
		take := int64(len(tail.keys))
		if take > remaining {
			take = remaining
		}
		start := int64(len(tail.keys)) - take
		for i := start; i < int64(len(tail.keys)); i++ {
			moved = append(moved, Item{Key: tail.keys[i], Payload: tail.payloads[i]})
		}
		tail.keys = tail.keys[:start]
		tail.payloads = tail.payloads[:start]
		remaining -= take

		emptied := len(tail.keys) == 0
		prev := tail.prev
		if emptied {
			if prev != nil {
				prev.next = tail.next
			} else {
				left.head = tail.next
			}
			if tail.next != nil {
				tail.next.prev = prev
			}
			left.tail = prev
		}
		if remaining > 0 {
			utils.Assert(prev != nil, "otree: duplicate run exceeds total tree size")
			tail = prev
		}
	}
	left.root = pruneEmpty(left.root)
	if left.root == nil {
		left.head, left.tail = nil, nil
	}

	for i := len(moved) - 1; i >= 0; i-- {
		right.Insert(moved[i].Key, moved[i].Payload)
	}
}

// pruneEmpty drops emptied leaves (left behind by moveTailSurplus, which
// shrinks leaf slices directly rather than going through eraseAtRank) from
// the inner-node structure above them, recomputing subtree sizes and
// separators and collapsing any inner node left with a single child, the
// same rules eraseAtRank applies.
func pruneEmpty(n node) node {
	if n == nil {
		return nil
	}
	switch cur := n.(type) {
	case *leafNode:
		if len(cur.keys) == 0 {
			return nil
		}
		return cur
	case *innerNode:
		kept := make([]node, 0, len(cur.children))
		for _, c := range cur.children {
			if pc := pruneEmpty(c); pc != nil {
				kept = append(kept, pc)
			}
		}
		switch len(kept) {
		case 0:
			return nil
		case 1:
			return kept[0]
		default:
			seps := make([]float64, len(kept)-1)
			for i := 0; i < len(kept)-1; i++ {
				seps[i] = maxKey(kept[i])
			}
			cur.children = kept
			cur.seps = seps
			recomputeSubtreeSize(cur)
			return cur
		}
	default:
		panic("otree: unreachable node type")
	}
}

func splitRecursive(n node, key float64) (*Tree, *Tree) {
	switch cur := n.(type) {
	case *leafNode:
		return splitLeaf(cur, key)
	case *innerNode:
		idx := descendIndexUpper(cur.seps, key)
		leftPre := wrapChildren(cur.lvl, cur.children[:idx])
		rightPre := wrapChildren(cur.lvl, cur.children[idx+1:])
		bottomLeft, bottomRight := splitRecursive(cur.children[idx], key)
		left := joinTrees(leftPre, bottomLeft)
		right := joinTrees(bottomRight, rightPre)
		return left, right
	default:
		panic("otree: unreachable node type")
	}
}

func splitLeaf(l *leafNode, key float64) (*Tree, *Tree) {
	pos := upperBoundFloat(l.keys, key)
	left := &Tree{}
	right := &Tree{}

	switch {
	case pos == 0:
		right.root, right.head, right.tail = l, l, l
	case pos == len(l.keys):
		left.root, left.head, left.tail = l, l, l
	default:
		rightLeaf := &leafNode{
			keys:     append([]float64{}, l.keys[pos:]...),
			payloads: append([]int32{}, l.payloads[pos:]...),
			next:     l.next,
			prev:     l,
		}
		if l.next != nil {
			l.next.prev = rightLeaf
		}
		l.next = rightLeaf
		l.keys = l.keys[:pos]
		l.payloads = l.payloads[:pos]

		left.root, left.head, left.tail = l, l, l
		right.root, right.head, right.tail = rightLeaf, rightLeaf, rightLeaf
	}
	return left, right
}

// wrapChildren builds a standalone tree from a contiguous run of an inner
// node's children, collapsing to a single child (or to the empty tree)
// when there is nothing to wrap with.
func wrapChildren(lvl uint16, children []node) *Tree {
	t := &Tree{}
	switch len(children) {
	case 0:
		return t
	case 1:
		t.root = children[0]
	default:
		seps := make([]float64, len(children)-1)
		for i := 0; i < len(children)-1; i++ {
			seps[i] = maxKey(children[i])
		}
		inner := &innerNode{lvl: lvl, children: append([]node{}, children...), seps: seps}
		recomputeSubtreeSize(inner)
		t.root = inner
	}
	t.head = leftmostLeaf(t.root)
	t.tail = rightmostLeaf(t.root)
	return t
}
