package otree

// Insert adds (key, payload) to the tree. Duplicate keys are permitted and
// are placed after any existing equal keys (stable insertion order).
func (t *Tree) Insert(key float64, payload int32) {
	if t.root == nil {
		l := &leafNode{keys: []float64{key}, payloads: []int32{payload}}
		t.root = l
		t.head, t.tail = l, l
		t.verifyIfEnabled()
		return
	}

	newChild, sep, split := insertNode(t.root, key, payload, t.leafCap, t.innerCap)
	if split {
		newRoot := &innerNode{
			lvl:      t.root.level() + 1,
			children: []node{t.root, newChild},
			seps:     []float64{sep},
		}
		recomputeSubtreeSize(newRoot)
		t.root = newRoot
	}
	if t.tail != nil {
		for t.tail.next != nil {
			t.tail = t.tail.next
		}
	}
	t.verifyIfEnabled()
}

// insertNode inserts into the subtree rooted at n, returning the
// newly-created sibling (and the separator key for it) if n overflowed and
// had to split.
func insertNode(n node, key float64, payload int32, leafCap, innerCap int) (node, float64, bool) {
	switch cur := n.(type) {
	case *leafNode:
		return insertLeaf(cur, key, payload, leafCap)
	case *innerNode:
		return insertInner(cur, key, payload, leafCap, innerCap)
	default:
		panic("otree: unreachable node type")
	}
}

func insertLeaf(l *leafNode, key float64, payload int32, leafCap int) (node, float64, bool) {
	pos := upperBoundFloat(l.keys, key)
	l.keys = insertFloatAt(l.keys, pos, key)
	l.payloads = insertInt32At(l.payloads, pos, payload)

	if len(l.keys) <= leafCap {
		return nil, 0, false
	}

	mid := (len(l.keys) + 1) / 2
	right := &leafNode{
		keys:     append([]float64{}, l.keys[mid:]...),
		payloads: append([]int32{}, l.payloads[mid:]...),
		next:     l.next,
		prev:     l,
	}
	if l.next != nil {
		l.next.prev = right
	}
	l.next = right
	l.keys = l.keys[:mid]
	l.payloads = l.payloads[:mid]

	return right, l.keys[len(l.keys)-1], true
}

func insertInner(n *innerNode, key float64, payload int32, leafCap, innerCap int) (node, float64, bool) {
	idx := descendIndexUpper(n.seps, key)
	newChild, sep, childSplit := insertNode(n.children[idx], key, payload, leafCap, innerCap)
	if childSplit {
		n.seps = insertFloatAt(n.seps, idx, sep)
		children := make([]node, len(n.children)+1)
		copy(children[:idx+1], n.children[:idx+1])
		children[idx+1] = newChild
		copy(children[idx+2:], n.children[idx+1:])
		n.children = children
	}
	recomputeSubtreeSize(n)

	if len(n.children) <= innerCap {
		return nil, 0, false
	}
	return splitInnerOverflow(n)
}

func splitInnerOverflow(n *innerNode) (node, float64, bool) {
	total := len(n.children)
	mid := (total + 1) / 2

	right := &innerNode{
		lvl:      n.lvl,
		children: append([]node{}, n.children[mid:]...),
		seps:     append([]float64{}, n.seps[mid:]...),
	}
	sep := n.seps[mid-1]
	n.children = n.children[:mid]
	n.seps = n.seps[:mid-1]

	recomputeSubtreeSize(n)
	recomputeSubtreeSize(right)

	return right, sep, true
}
