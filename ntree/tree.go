// Package ntree implements an N-dimensional binary space partitioning
// tree storing a fixed-length attribute vector per cell: a quadtree in
// 2D, an octree in 3D. The tree maps a bounded continuous space to a
// discrete address space of fixed maximum depth and keeps itself
// minimal: after every write, sibling leaves carrying the same
// attributes are merged back into their parent.
package ntree

import (
	"math"
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// maxSupportedDepth caps subdivision so cell counts stay well within
// int range on every axis.
const maxSupportedDepth = 30

// Config gathers the construction parameters of a Tree.
type Config struct {
	// Bounds is the half-open [min, max) extent of the indexed space on
	// each axis. Its length fixes the number of dimensions. Required.
	Bounds [][2]float64

	// MaxDepth is the subdivision depth ceiling. When zero it is
	// derived from Resolution.
	MaxDepth int

	// Resolution is the requested minimum cell size, either one value
	// per axis or a single value applied to all axes. Ignored when
	// MaxDepth is set. When both are empty the resolution defaults to
	// 1 on every axis.
	Resolution []float64

	// DefaultAttributes is the attribute vector carried by untouched
	// cells. Its length fixes the attribute arity. Required.
	DefaultAttributes []float64

	// Arity optionally declares the expected attribute arity. When set
	// it must match the length of DefaultAttributes.
	Arity int
}

// Tree is the public entry point of the store. A single RWMutex guards
// the whole tree: writes take exclusive access, reads share it.
type Tree struct {
	dims     int
	bounds   [][2]float64
	res      []float64
	maxDepth int
	cells    int
	arity    int
	defaults []float64

	mutex sync.RWMutex
	root  *node
}

// New validates the configuration, derives the depth/resolution pair
// and returns a tree holding a single default-valued root leaf.
func New(cfg Config) (*Tree, error) {
	dims := len(cfg.Bounds)
	if dims == 0 {
		return nil, errors.New("tree bounds are empty").
			WithType(ErrTypeConfig)
	}

	bounds := make([][2]float64, dims)
	for i, b := range cfg.Bounds {
		if b[1]-b[0] <= 0 {
			return nil, errors.New("tree bounds span is not positive").
				WithType(ErrTypeConfig).
				WithTag("axis", i).
				WithTag("min", b[0]).
				WithTag("max", b[1])
		}
		bounds[i] = b
	}

	if len(cfg.DefaultAttributes) == 0 {
		return nil, errors.New("default attributes are empty").
			WithType(ErrTypeConfig)
	}
	if cfg.Arity != 0 && cfg.Arity != len(cfg.DefaultAttributes) {
		return nil, errors.New("attribute arity does not match default attributes").
			WithType(ErrTypeConfig).
			WithTag("arity", cfg.Arity).
			WithTag("default_attributes", len(cfg.DefaultAttributes))
	}

	maxDepth := cfg.MaxDepth
	if maxDepth < 0 {
		return nil, errors.New("max depth is negative").
			WithType(ErrTypeConfig).
			WithTag("max_depth", maxDepth)
	}
	if maxDepth == 0 {
		res, err := requestedResolution(cfg.Resolution, dims)
		if err != nil {
			return nil, err
		}
		for i := range bounds {
			steps := (bounds[i][1] - bounds[i][0]) / res[i]
			if d := int(math.Ceil(math.Log2(steps))); d > maxDepth {
				maxDepth = d
			}
		}
		if maxDepth < 0 {
			maxDepth = 0
		}
	}
	if maxDepth > maxSupportedDepth {
		return nil, errors.New("max depth is too large").
			WithType(ErrTypeConfig).
			WithTag("max_depth", maxDepth).
			WithTag("supported", maxSupportedDepth)
	}

	cells := 1 << maxDepth

	// The effective resolution is always the exact finest cell size.
	res := make([]float64, dims)
	for i := range bounds {
		res[i] = (bounds[i][1] - bounds[i][0]) / float64(cells)
	}

	return &Tree{
		dims:     dims,
		bounds:   bounds,
		res:      res,
		maxDepth: maxDepth,
		cells:    cells,
		arity:    len(cfg.DefaultAttributes),
		defaults: append([]float64(nil), cfg.DefaultAttributes...),
		root:     newLeaf(cfg.DefaultAttributes),
	}, nil
}

func requestedResolution(res []float64, dims int) ([]float64, error) {
	switch len(res) {
	case 0:
		res = []float64{1}
	case 1, dims:
	default:
		return nil, errors.New("resolution does not match tree dimensions").
			WithType(ErrTypeConfig).
			WithTag("resolution", len(res)).
			WithTag("dimensions", dims)
	}

	out := make([]float64, dims)
	for i := range out {
		r := res[0]
		if len(res) == dims {
			r = res[i]
		}
		if r <= 0 {
			return nil, errors.New("resolution is not positive").
				WithType(ErrTypeConfig).
				WithTag("axis", i).
				WithTag("resolution", r)
		}
		out[i] = r
	}
	return out, nil
}

// Dims returns the number of spatial axes.
func (t *Tree) Dims() int {
	return t.dims
}

// Bounds returns the half-open extent of the indexed space.
func (t *Tree) Bounds() [][2]float64 {
	return append([][2]float64(nil), t.bounds...)
}

// Resolution returns the finest cell size per axis.
func (t *Tree) Resolution() []float64 {
	return append([]float64(nil), t.res...)
}

// MaxDepth returns the subdivision depth ceiling.
func (t *Tree) MaxDepth() int {
	return t.maxDepth
}

// Arity returns the attribute vector length stored per cell.
func (t *Tree) Arity() int {
	return t.arity
}

// DefaultAttributes returns the attribute vector of untouched cells.
func (t *Tree) DefaultAttributes() []float64 {
	return append([]float64(nil), t.defaults...)
}

// Get returns the dense content of the region at the finest
// resolution, tiling coarse leaves over every discretized cell they
// cover.
func (t *Tree) Get(region Region) (*Dense, error) {
	rect, err := t.normalize(region)
	if err != nil {
		return nil, err
	}

	t.mutex.RLock()
	defer t.mutex.RUnlock()

	instrumentRead()
	return t.root.read(t.rootExtent(), rect, t.arity), nil
}

// Set writes the same attribute vector to every discretized cell of
// the region, subdividing and re-merging as needed. The tree is left
// unchanged when the region or the attributes are rejected.
func (t *Tree) Set(region Region, attrs []float64) error {
	if len(attrs) != t.arity {
		return errors.New("attribute arity mismatch").
			WithType(ErrTypeConfig).
			WithTag("arity", t.arity).
			WithTag("attributes", len(attrs))
	}

	rect, err := t.normalize(region)
	if err != nil {
		return err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.root.write(t.rootExtent(), rect, attrs)
	instrumentWrite()
	return nil
}

// Delete resets the region to the tree default attributes. Deletions
// are routed through the same write path as Set so that merge reclaims
// the nodes they empty.
func (t *Tree) Delete(region Region) error {
	rect, err := t.normalize(region)
	if err != nil {
		return err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.root.write(t.rootExtent(), rect, t.defaults)
	instrumentDelete()
	return nil
}

// A Leaf is a snapshot of one leaf cell reported by Walk.
type Leaf struct {
	Bounds     [][2]float64
	Depth      int
	Attributes []float64
}

// Walk visits every leaf in child order, low halves before high
// halves, until fn returns false.
func (t *Tree) Walk(fn func(Leaf) bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	t.walkNode(t.root, t.rootExtent(), 0, fn)
}

func (t *Tree) walkNode(n *node, ext extent, depth int, fn func(Leaf) bool) bool {
	if n.isLeaf() {
		return fn(Leaf{
			Bounds:     t.extentBounds(ext),
			Depth:      depth,
			Attributes: append([]float64(nil), n.attrs...),
		})
	}
	for ci, child := range n.children {
		if !t.walkNode(child, ext.child(ci), depth+1, fn) {
			return false
		}
	}
	return true
}

// LeafCount returns the number of leaves.
func (t *Tree) LeafCount() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.root.leafCount()
}

// Depth returns the depth of the deepest node.
func (t *Tree) Depth() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.root.depth()
}

// CheckMinimality scans the whole tree and returns an invariant error
// when an internal node exists below the maximum depth or carries
// 2^D identical leaf children that merge should have collapsed.
func (t *Tree) CheckMinimality() error {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.checkNode(t.root, t.cells, 0)
}

func (t *Tree) checkNode(n *node, size, depth int) error {
	if n.isLeaf() {
		return nil
	}
	if size <= 1 {
		return errors.New("internal node below the maximum depth").
			WithType(ErrTypeInvariant).
			WithTag("depth", depth)
	}
	if len(n.children) != 1<<t.dims {
		return errors.New("internal node with wrong child count").
			WithType(ErrTypeInvariant).
			WithTag("children", len(n.children)).
			WithTag("expected", 1<<t.dims)
	}

	uniform := true
	for _, child := range n.children {
		if !child.isLeaf() || !equalAttrs(child.attrs, n.children[0].attrs) {
			uniform = false
			break
		}
	}
	if uniform {
		return errors.New("internal node with identical leaf children").
			WithType(ErrTypeInvariant).
			WithTag("depth", depth)
	}

	for _, child := range n.children {
		if err := t.checkNode(child, size/2, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) rootExtent() extent {
	return extent{org: make([]int, t.dims), size: t.cells}
}

func (t *Tree) extentBounds(ext extent) [][2]float64 {
	bounds := make([][2]float64, t.dims)
	for i := range bounds {
		lo := t.bounds[i][0]
		bounds[i] = [2]float64{
			lo + float64(ext.org[i])*t.res[i],
			lo + float64(ext.org[i]+ext.size)*t.res[i],
		}
	}
	return bounds
}

// normalize converts a user region to per-axis half-open cell index
// intervals at the finest resolution, validating it against the tree
// bounds before any mutation happens.
func (t *Tree) normalize(region Region) ([][2]int, error) {
	if len(region) > t.dims {
		instrumentBoundsError()
		return nil, errors.New("region has more axes than the tree").
			WithType(ErrTypeOutOfBounds).
			WithTag("region", len(region)).
			WithTag("dimensions", t.dims)
	}

	rect := make([][2]int, t.dims)
	for i := range rect {
		var ax Axis
		if i < len(region) {
			ax = region[i]
		}
		lo, hi := t.bounds[i][0], t.bounds[i][1]

		if ax.point {
			if ax.start < lo || ax.start >= hi {
				instrumentBoundsError()
				return nil, errors.New("point is out of bounds").
					WithType(ErrTypeOutOfBounds).
					WithTag("axis", i).
					WithTag("coordinate", ax.start)
			}
			c := int((ax.start - lo) / t.res[i])
			if c >= t.cells {
				c = t.cells - 1
			}
			rect[i] = [2]int{c, c + 1}
			continue
		}

		start, stop := lo, hi
		if ax.hasStart {
			start = ax.start
		}
		if ax.hasStop {
			stop = ax.stop
		}
		if start < lo || stop > hi {
			instrumentBoundsError()
			return nil, errors.New("region is out of bounds").
				WithType(ErrTypeOutOfBounds).
				WithTag("axis", i).
				WithTag("start", start).
				WithTag("stop", stop)
		}
		if stop <= start {
			instrumentBoundsError()
			return nil, errors.New("region is empty").
				WithType(ErrTypeOutOfBounds).
				WithTag("axis", i).
				WithTag("start", start).
				WithTag("stop", stop)
		}

		cs := int(math.Floor((start - lo) / t.res[i]))
		ce := int(math.Ceil((stop - lo) / t.res[i]))
		if ce > t.cells {
			ce = t.cells
		}
		if ce <= cs {
			ce = cs + 1
		}
		rect[i] = [2]int{cs, ce}
	}
	return rect, nil
}
