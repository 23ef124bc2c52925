package orderbook

import (
	"github.com/shopspring/decimal"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"

	"github.com/lightningcore/matchcore/domain"
)

// Tree is one side of a Book's price ladder: an ordered map from price to
// PriceLevel. The BUY side orders descending by price, the SELL side
// ascending; key ordering is authoritative for matching choice.
//
// Grounded on the teacher's ShardedPriceTree, which already used
// gods/v2/trees/redblacktree as its outer ordered map of buckets. That
// implementation's inner Bucket layer indexed price levels into a fixed
// 128-slot array via "price & bucketMask" — a trick that only works for a
// bounded range of integer tick prices. Client-submitted decimal.Decimal
// prices have no such fixed range to shard over, so the bucket layer is
// dropped and the red-black tree holds PriceLevel nodes directly: still
// O(log N) insert/delete with O(1) best-price access via the tree's
// leftmost node under a side-specific comparator.
type Tree struct {
	rb         *rbt.Tree[decimal.Decimal, *PriceLevel]
	descending bool
}

// NewTree creates an empty price tree. descending=true orders BUY-side
// (highest price first); descending=false orders SELL-side (lowest first).
func NewTree(descending bool) *Tree {
	cmp := func(a, b decimal.Decimal) int {
		c := a.Cmp(b)
		if descending {
			return -c
		}
		return c
	}
	return &Tree{rb: rbt.NewWith[decimal.Decimal, *PriceLevel](cmp), descending: descending}
}

// Insert adds an order at its price, creating the price level if needed, and
// returns the level it landed in.
func (t *Tree) Insert(o *domain.Order) *PriceLevel {
	level, found := t.rb.Get(o.Price)
	if !found {
		level = newPriceLevel(o.Price)
		t.rb.Put(o.Price, level)
	}
	level.append(o)
	return level
}

// Remove removes an order from its price level, deleting the level if it
// becomes empty.
func (t *Tree) Remove(o *domain.Order) {
	level, found := t.rb.Get(o.Price)
	if !found {
		return
	}
	if empty := level.removeOrder(o); empty {
		t.rb.Remove(o.Price)
	}
}

// DropLevelIfEmpty removes the price level from the tree if it has no
// remaining members. Called by the matcher after filling the level's orders
// in place (it does not go through Remove, since it already holds the level).
func (t *Tree) DropLevelIfEmpty(level *PriceLevel) {
	if level.Orders.Len() == 0 {
		t.rb.Remove(level.Price)
	}
}

// BestLevel returns the best (matching-order) price level, or nil if empty.
func (t *Tree) BestLevel() *PriceLevel {
	node := t.rb.Left()
	if node == nil {
		return nil
	}
	return node.Value
}

// IsEmpty reports whether the tree holds no price levels.
func (t *Tree) IsEmpty() bool {
	return t.rb.Empty()
}

// WalkLevels iterates levels in matching order, calling fn for each. It
// stops early the first time fn returns false.
func (t *Tree) WalkLevels(fn func(*PriceLevel) bool) {
	it := t.rb.Iterator()
	for it.Next() {
		if !fn(it.Value()) {
			return
		}
	}
}

// Depth returns up to maxLevels price levels in matching order.
func (t *Tree) Depth(maxLevels int) []*PriceLevel {
	if maxLevels <= 0 || t.rb.Empty() {
		return nil
	}
	out := make([]*PriceLevel, 0, maxLevels)
	it := t.rb.Iterator()
	for it.Next() && len(out) < maxLevels {
		out = append(out, it.Value())
	}
	return out
}
