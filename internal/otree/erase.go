package otree

import "govetachun/resvoir/pkg/utils"

// EraseAt removes the element the iterator refers to. it must have come
// from this tree and still be valid. Removing the head or tail leaf fixes
// up the tree's head/tail pointers; an inner node left with a single child
// collapses into that child, and one left with none is pruned from its
// parent. This package does not rebalance by merging or redistributing
// with a sibling on underflow (see DESIGN.md) — nodes may end up below the
// usual half-full occupancy target after a long run of erases, but ranks
// and ordering stay exact.
func (t *Tree) EraseAt(it Iterator) {
	utils.Assert(it.Valid(), "otree: EraseAt requires a valid iterator")
	r := t.RankOf(it)
	t.eraseAtRank(&t.root, r)
	t.verifyIfEnabled()
}

func (t *Tree) eraseAtRank(n *node, r int64) {
	switch cur := (*n).(type) {
	case *leafNode:
		idx := int(r)
		cur.keys = append(cur.keys[:idx], cur.keys[idx+1:]...)
		cur.payloads = append(cur.payloads[:idx], cur.payloads[idx+1:]...)
		if len(cur.keys) == 0 {
			if cur.prev != nil {
				cur.prev.next = cur.next
			} else {
				t.head = cur.next
			}
			if cur.next != nil {
				cur.next.prev = cur.prev
			} else {
				t.tail = cur.prev
			}
			*n = nil
		}
	case *innerNode:
		idx, localRank := locateChildByRank(cur.children, r)
		t.eraseAtRank(&cur.children[idx], localRank)
		if cur.children[idx] == nil {
			removeChildAt(cur, idx)
		}
		switch len(cur.children) {
		case 0:
			*n = nil
		case 1:
			*n = cur.children[0]
		default:
			recomputeSubtreeSize(cur)
		}
	default:
		panic("otree: unreachable node type")
	}
}

// locateChildByRank finds the child holding local rank r and the rank
// local to that child.
func locateChildByRank(children []node, r int64) (int, int64) {
	var cum int64
	for i, c := range children {
		cnt := c.count()
		if r < cum+cnt {
			return i, r - cum
		}
		cum += cnt
	}
	last := len(children) - 1
	return last, children[last].count() - 1
}

// removeChildAt drops children[idx] and the one separator that referenced
// it, keeping seps[i] == max(children[i]) for every remaining i.
func removeChildAt(n *innerNode, idx int) {
	if idx < len(n.children)-1 {
		n.seps = append(n.seps[:idx], n.seps[idx+1:]...)
	} else if idx > 0 {
		n.seps = append(n.seps[:idx-1], n.seps[idx:]...)
	}
	n.children = append(n.children[:idx], n.children[idx+1:]...)
}
