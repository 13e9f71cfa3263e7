package ntree

// A node is either a leaf holding one attribute vector for its whole
// extent, or an internal node owning exactly 2^D children that tile
// its extent via midpoint bisection on every axis. A nil children
// slice is the leaf discriminant; attrs is only valid on leaves.
type node struct {
	attrs    []float64
	children []*node
}

func newLeaf(attrs []float64) *node {
	return &node{attrs: append([]float64(nil), attrs...)}
}

func (n *node) isLeaf() bool {
	return n.children == nil
}

// extent locates a node in the discrete index space: org is the
// per-axis cell index of the low corner, size the cell count per axis.
// The root covers [0, 2^maxDepth) on every axis; each child halves
// size. size is never below 1.
type extent struct {
	org  []int
	size int
}

// child returns the extent of the child selected by ci, where bit i of
// ci picks the high half along axis i.
func (e extent) child(ci int) extent {
	half := e.size / 2
	org := make([]int, len(e.org))
	for i := range e.org {
		org[i] = e.org[i]
		if ci&(1<<i) != 0 {
			org[i] += half
		}
	}
	return extent{org: org, size: half}
}

// contains reports whether the extent lies fully inside rect.
func (e extent) contains(rect [][2]int) bool {
	for i := range rect {
		if rect[i][0] > e.org[i] || e.org[i]+e.size > rect[i][1] {
			return false
		}
	}
	return true
}

// clip intersects rect with the extent, reporting false when the
// intersection is empty on any axis.
func (e extent) clip(rect [][2]int) ([][2]int, bool) {
	out := make([][2]int, len(rect))
	for i := range rect {
		lo := max(rect[i][0], e.org[i])
		hi := min(rect[i][1], e.org[i]+e.size)
		if hi <= lo {
			return nil, false
		}
		out[i] = [2]int{lo, hi}
	}
	return out, true
}

func rectShape(rect [][2]int) []int {
	shape := make([]int, len(rect))
	for i := range rect {
		shape[i] = rect[i][1] - rect[i][0]
	}
	return shape
}

// read returns the dense content of rect, which must already be
// clipped to the node extent. A leaf tiles its attribute vector over
// the whole rect; an internal node assembles the blocks read from the
// children overlapping rect, low halves before high halves.
func (n *node) read(ext extent, rect [][2]int, arity int) *Dense {
	out := newDense(rectShape(rect), arity)

	if n.isLeaf() {
		out.fill(n.attrs)
		return out
	}

	for ci, child := range n.children {
		cext := ext.child(ci)
		crect, ok := cext.clip(rect)
		if !ok {
			continue
		}

		offset := make([]int, len(rect))
		for i := range rect {
			offset[i] = crect[i][0] - rect[i][0]
		}
		out.setBlock(offset, child.read(cext, crect, arity))
	}

	return out
}

// write assigns attrs to every cell of rect, which must already be
// clipped to the node extent. A node fully covered by rect collapses
// to a single leaf, discarding any subtree. At the finest resolution
// (size 1) the whole cell is overwritten even when rect resulted from
// a narrower coordinate span. Otherwise the node splits if needed,
// recurses into the overlapping children and re-merges so the tree is
// minimal again before returning.
func (n *node) write(ext extent, rect [][2]int, attrs []float64) {
	if ext.size == 1 || ext.contains(rect) {
		n.children = nil
		n.attrs = append([]float64(nil), attrs...)
		return
	}

	if n.isLeaf() {
		n.split(len(ext.org))
	}

	for ci, child := range n.children {
		cext := ext.child(ci)
		crect, ok := cext.clip(rect)
		if !ok {
			continue
		}
		child.write(cext, crect, attrs)
	}

	n.merge()
}

// split turns a leaf into an internal node with 2^D leaf children,
// each starting from this node's current attributes so that splitting
// never introduces defaults where data existed.
func (n *node) split(dims int) {
	children := make([]*node, 1<<dims)
	for i := range children {
		children[i] = newLeaf(n.attrs)
	}
	n.children = children
	n.attrs = nil
	instrumentSplit()
}

// merge collapses the node into a leaf when every child is a leaf with
// the same attribute vector, reporting whether the node is a leaf once
// the call returns. Children untouched by the current write are
// already minimal, so inspecting direct children is enough: a write
// unwinding through merge at every level yields the post-order
// consolidation of the whole touched path.
func (n *node) merge() bool {
	if n.isLeaf() {
		return true
	}

	first := n.children[0]
	if !first.isLeaf() {
		return false
	}
	for _, child := range n.children[1:] {
		if !child.isLeaf() || !equalAttrs(child.attrs, first.attrs) {
			return false
		}
	}

	n.attrs = first.attrs
	n.children = nil
	instrumentMerge()
	return true
}

func (n *node) leafCount() int {
	if n.isLeaf() {
		return 1
	}
	count := 0
	for _, child := range n.children {
		count += child.leafCount()
	}
	return count
}

func (n *node) depth() int {
	if n.isLeaf() {
		return 0
	}
	deepest := 0
	for _, child := range n.children {
		if d := child.depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

func equalAttrs(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
