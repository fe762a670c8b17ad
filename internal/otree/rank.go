package otree

import "govetachun/resvoir/pkg/utils"

// FindRank returns an iterator to the element at zero-based rank r, i.e.
// the element that would be at position r if the tree were materialized as
// a sorted slice. r == Size() returns End().
func (t *Tree) FindRank(r int64) Iterator {
	size := t.Size()
	utils.Assert(r >= 0 && r <= size, "otree: FindRank rank out of range")
	if t.root == nil || r == size {
		return t.End()
	}
	return findRankNode(t.root, r)
}

func findRankNode(n node, r int64) Iterator {
	switch cur := n.(type) {
	case *leafNode:
		return Iterator{leafp: cur, slot: int(r)}
	case *innerNode:
		idx, localRank := locateChildByRank(cur.children, r)
		return findRankNode(cur.children[idx], localRank)
	default:
		panic("otree: unreachable node type")
	}
}

// RankOfLowerBound returns the rank of, and an iterator to, the first
// element with key >= key (i.e. the number of elements strictly less than
// key).
func (t *Tree) RankOfLowerBound(key float64) (int64, Iterator) {
	if t.root == nil {
		return 0, t.End()
	}
	return rankOfBoundNode(t.root, key, false)
}

// RankOfUpperBound returns the rank of, and an iterator to, the first
// element with key > key (i.e. the number of elements less than or equal
// to key).
func (t *Tree) RankOfUpperBound(key float64) (int64, Iterator) {
	if t.root == nil {
		return 0, t.End()
	}
	return rankOfBoundNode(t.root, key, true)
}

func rankOfBoundNode(n node, key float64, upper bool) (int64, Iterator) {
	switch cur := n.(type) {
	case *leafNode:
		var slot int
		if upper {
			slot = upperBoundFloat(cur.keys, key)
		} else {
			slot = lowerBoundFloat(cur.keys, key)
		}
		return int64(slot), Iterator{leafp: cur, slot: slot}
	case *innerNode:
		var idx int
		if upper {
			idx = descendIndexUpper(cur.seps, key)
		} else {
			idx = descendIndex(cur.seps, key)
		}
		var cum int64
		for i := 0; i < idx; i++ {
			cum += cur.children[i].count()
		}
		r, it := rankOfBoundNode(cur.children[idx], key, upper)
		return cum + r, it
	default:
		panic("otree: unreachable node type")
	}
}

// RankOf returns the global rank of a valid iterator obtained from this
// tree. Cost is O(log n + d) where d counts over how many equal-keyed
// elements it sits past the start of its key's run.
func (t *Tree) RankOf(it Iterator) int64 {
	utils.Assert(it.Valid(), "otree: RankOf requires a valid iterator")
	rank, cur := t.RankOfLowerBound(it.Key())
	for !cur.Equal(it) {
		cur = cur.Next()
		rank++
	}
	return rank
}
