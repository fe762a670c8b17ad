package otree

import "govetachun/resvoir/pkg/utils"

// Verify walks the whole tree and panics (via utils.Assert) on the first
// broken invariant: sorted keys within and across leaves, separators equal
// to their child's maximum key, subtree sizes matching their children, and
// a head/tail leaf chain consistent with the tree's size. It does not check
// minimum node occupancy — this package does not guarantee a half-full
// floor after Join or after the duplicate-surplus move inside SplitAtRank
// (see DESIGN.md), so that check would fail on perfectly correct trees.
func (t *Tree) Verify() {
	if t.root == nil {
		utils.Assert(t.head == nil && t.tail == nil, "otree: empty tree must have nil head/tail")
		return
	}

	verifyNode(t.root)

	var prev *leafNode
	var n int64
	for l := t.head; l != nil; l = l.next {
		utils.Assert(l.prev == prev, "otree: leaf back-link mismatch")
		utils.Assert(len(l.keys) > 0, "otree: leaf in chain must not be empty")
		for i := 1; i < len(l.keys); i++ {
			utils.Assert(l.keys[i-1] <= l.keys[i], "otree: leaf keys not sorted")
		}
		if prev != nil {
			utils.Assert(prev.keys[len(prev.keys)-1] <= l.keys[0], "otree: leaf chain keys out of order across leaves")
		}
		n += int64(len(l.keys))
		prev = l
	}
	utils.Assert(prev == t.tail, "otree: tail pointer mismatch")
	utils.Assert(n == t.Size(), "otree: leaf chain length mismatch with cached size")
}

// verifyNode checks the subtree rooted at n and returns its maximum key,
// used by the caller to confirm a parent's separator.
func verifyNode(n node) float64 {
	switch cur := n.(type) {
	case *leafNode:
		utils.Assert(len(cur.keys) > 0, "otree: leaf must not be empty")
		for i := 1; i < len(cur.keys); i++ {
			utils.Assert(cur.keys[i-1] <= cur.keys[i], "otree: leaf keys not sorted")
		}
		return cur.keys[len(cur.keys)-1]
	case *innerNode:
		utils.Assert(len(cur.children) > 0, "otree: inner node must have at least one child")
		utils.Assert(len(cur.seps) == len(cur.children)-1, "otree: separator count mismatch")
		var total int64
		var last float64
		for i, c := range cur.children {
			mx := verifyNode(c)
			total += c.count()
			if i < len(cur.seps) {
				utils.Assert(cur.seps[i] == mx, "otree: separator does not equal child max key")
			}
			last = mx
		}
		utils.Assert(total == cur.subtreeSize, "otree: cached subtree size mismatch")
		return last
	default:
		panic("otree: unreachable node type")
	}
}
