package otree

import "govetachun/resvoir/pkg/utils"

// BulkLoad builds a tree directly from items, which must already be sorted
// by key. Leaves are filled as evenly as possible (remainder spread across
// the first few leaves) rather than packed to leafCap and left with a thin
// final leaf, and the levels above are built the same way one tier at a
// time, giving a tree no taller than inserting the same items one by one
// while also skipping every intermediate split.
func BulkLoad(leafCap, innerCap int, items []Item) *Tree {
	t := &Tree{leafCap: leafCap, innerCap: innerCap}
	if len(items) == 0 {
		return t
	}
	for i := 1; i < len(items); i++ {
		utils.Assert(items[i-1].Key <= items[i].Key, "otree: BulkLoad requires sorted input")
	}

	numLeaves := (len(items) + leafCap - 1) / leafCap
	leaves := make([]*leafNode, numLeaves)
	base := len(items) / numLeaves
	rem := len(items) % numLeaves
	pos := 0
	for i := 0; i < numLeaves; i++ {
		cnt := base
		if i < rem {
			cnt++
		}
		l := &leafNode{keys: make([]float64, cnt), payloads: make([]int32, cnt)}
		for j := 0; j < cnt; j++ {
			l.keys[j] = items[pos+j].Key
			l.payloads[j] = items[pos+j].Payload
		}
		pos += cnt
		leaves[i] = l
		if i > 0 {
			leaves[i-1].next = l
			l.prev = leaves[i-1]
		}
	}
	t.head, t.tail = leaves[0], leaves[len(leaves)-1]

	level := make([]node, len(leaves))
	for i, l := range leaves {
		level[i] = l
	}

	var lvl uint16
	for len(level) > 1 {
		lvl++
		var next []node
		numInner := (len(level) + innerCap - 1) / innerCap
		innerBase := len(level) / numInner
		innerRem := len(level) % numInner
		i := 0
		for g := 0; g < numInner; g++ {
			end := i + innerBase
			if g < innerRem {
				end++
			}
			chunk := level[i:end]
			seps := make([]float64, len(chunk)-1)
			for j := 0; j < len(chunk)-1; j++ {
				seps[j] = maxKey(chunk[j])
			}
			inner := &innerNode{lvl: lvl, children: append([]node{}, chunk...), seps: seps}
			recomputeSubtreeSize(inner)
			next = append(next, inner)
			i = end
		}
		level = next
	}
	t.root = level[0]
	t.verifyIfEnabled()
	return t
}
