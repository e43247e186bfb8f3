package loctree

import (
	"sync"

	"github.com/pkg/errors"
)

// Kind is the variant of a tree node.
type Kind int

const (
	// Empty holds no locations.
	Empty Kind = iota
	// Single holds one location, possibly more than once.
	Single
	// Split divides the plane into four quadrants around a split point.
	Split
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Single:
		return "single"
	case Split:
		return "split"
	}
	return "unknown"
}

// Quadrant order used everywhere in this package: nw, ne, sw, se.
const (
	nw = iota
	ne
	sw
	se
)

// Tree is an immutable region quadtree over a fixed set of locations.
// A Tree is safe for concurrent use by multiple goroutines.
type Tree struct {
	kind  Kind
	loc   Location // the location of a Single, the split point of a Split
	count int
	quads *[4]Tree
}

// BuildOptions tunes construction.
type BuildOptions struct {
	// Parallel is the minimum number of locations a split must cover for its
	// four quadrants to be built concurrently. Zero disables it.
	Parallel int
}

// Build returns a tree containing exactly the given locations.
func Build(locs []Location) (*Tree, error) {
	return BuildWithOptions(locs, BuildOptions{})
}

// BuildWithOptions is like Build but accepts construction options. The
// resulting tree does not depend on the options.
func BuildWithOptions(locs []Location, opts BuildOptions) (*Tree, error) {
	for i, loc := range locs {
		if !finite(loc) {
			return nil, errors.Wrapf(ErrNonFinite,
				"location %d is (%v, %v)", i, loc.X, loc.Y)
		}
	}
	own := make([]Location, len(locs))
	copy(own, locs)
	tr := new(Tree)
	tr.build(own, make([]Location, len(own)), opts.Parallel)
	return tr, nil
}

// quadrant returns which side of at the location belongs to. Points on a
// splitting line go north and west, so the split point itself is nw.
// Boundary priority is nw > ne > sw > se.
func quadrant(loc, at Location) int {
	q := nw
	if loc.X > at.X {
		q |= 1
	}
	if loc.Y > at.Y {
		q |= 2
	}
	return q
}

func tally(locs []Location, at Location) (counts [4]int) {
	for _, loc := range locs {
		counts[quadrant(loc, at)]++
	}
	return counts
}

func extent(locs []Location) (lo, hi Location) {
	lo, hi = locs[0], locs[0]
	for _, loc := range locs[1:] {
		lo.X, lo.Y = min(lo.X, loc.X), min(lo.Y, loc.Y)
		hi.X, hi.Y = max(hi.X, loc.X), max(hi.Y, loc.Y)
	}
	return lo, hi
}

// build fills n from locs. Both locs and scratch are reordered in place;
// children receive disjoint subslices of them.
func (n *Tree) build(locs, scratch []Location, parallel int) {
	switch len(locs) {
	case 0:
		return
	case 1:
		n.kind, n.loc, n.count = Single, locs[0], 1
		return
	}
	at := centroid(locs)
	counts := tally(locs, at)
	if counts[nw] == len(locs) || counts[se] == len(locs) ||
		counts[ne] == len(locs) || counts[sw] == len(locs) {
		// Either every location is the same point or rounding moved the
		// mean to an extreme. Splitting at the lower corner separates any
		// two locations that differ.
		lo, hi := extent(locs)
		if lo == hi {
			n.kind, n.loc, n.count = Single, locs[0], len(locs)
			return
		}
		at = lo
		counts = tally(locs, at)
	}

	var offs [4]int
	for q := 1; q < 4; q++ {
		offs[q] = offs[q-1] + counts[q-1]
	}
	pos := offs
	for _, loc := range locs {
		q := quadrant(loc, at)
		scratch[pos[q]] = loc
		pos[q]++
	}
	copy(locs, scratch)

	n.kind, n.loc, n.count = Split, at, len(locs)
	n.quads = new([4]Tree)
	if parallel > 0 && len(locs) >= parallel {
		var wg sync.WaitGroup
		wg.Add(4)
		for q := 0; q < 4; q++ {
			go func(q int) {
				defer wg.Done()
				s, e := offs[q], offs[q]+counts[q]
				n.quads[q].build(locs[s:e], scratch[s:e], parallel)
			}(q)
		}
		wg.Wait()
		return
	}
	for q := 0; q < 4; q++ {
		s, e := offs[q], offs[q]+counts[q]
		n.quads[q].build(locs[s:e], scratch[s:e], parallel)
	}
}

// Kind returns the variant of the node.
func (n *Tree) Kind() Kind { return n.kind }

// Loc returns the location held by a Single node.
func (n *Tree) Loc() Location { return n.loc }

// At returns the split point of a Split node.
func (n *Tree) At() Location { return n.loc }

// Count returns how many times a Single node holds its location. For other
// kinds it is the same as Len.
func (n *Tree) Count() int { return n.count }

// Len returns the number of locations in the tree.
func (n *Tree) Len() int { return n.count }

// Quad returns the child in quadrant q (0=nw, 1=ne, 2=sw, 3=se) of a Split
// node, or nil for other kinds.
func (n *Tree) Quad(q int) *Tree {
	if n.quads == nil {
		return nil
	}
	return &n.quads[q]
}

// NW returns the north-west child of a Split node.
func (n *Tree) NW() *Tree { return n.Quad(nw) }

// NE returns the north-east child of a Split node.
func (n *Tree) NE() *Tree { return n.Quad(ne) }

// SW returns the south-west child of a Split node.
func (n *Tree) SW() *Tree { return n.Quad(sw) }

// SE returns the south-east child of a Split node.
func (n *Tree) SE() *Tree { return n.Quad(se) }

// Equal reports whether two trees have the same shape, split points and
// locations.
func (n *Tree) Equal(o *Tree) bool {
	if n.kind != o.kind || n.count != o.count {
		return false
	}
	switch n.kind {
	case Empty:
		return true
	case Single:
		return n.loc == o.loc
	}
	if n.loc != o.loc {
		return false
	}
	for q := 0; q < 4; q++ {
		if !n.quads[q].Equal(&o.quads[q]) {
			return false
		}
	}
	return true
}

// quad returns the bounds of quadrant q of a split at at within bounds.
func quad(bounds Region, at Location, q int) Region {
	switch q {
	case nw:
		return bounds.NW(at)
	case ne:
		return bounds.NE(at)
	case sw:
		return bounds.SW(at)
	default:
		return bounds.SE(at)
	}
}

// FindLocationsInRegion returns every location in the tree that lies within
// region. Locations are returned depth first in nw, ne, sw, se order.
func (n *Tree) FindLocationsInRegion(region Region) []Location {
	locs := []Location{}
	n.search(Everywhere, region, func(loc Location) bool {
		locs = append(locs, loc)
		return true
	})
	return locs
}

// Search calls iter for every location within region, in the same order as
// FindLocationsInRegion, until iter returns false.
func (n *Tree) Search(region Region, iter func(loc Location) bool) {
	n.search(Everywhere, region, iter)
}

func (n *Tree) search(bounds, region Region, iter func(loc Location) bool,
) bool {
	switch n.kind {
	case Empty:
		return true
	case Single:
		if IsInRegion(n.loc, region) {
			for i := 0; i < n.count; i++ {
				if !iter(n.loc) {
					return false
				}
			}
		}
		return true
	}
	if !Overlap(bounds, region) {
		return true
	}
	for q := 0; q < 4; q++ {
		if !n.quads[q].search(quad(bounds, n.loc, q), region, iter) {
			return false
		}
	}
	return true
}

// Scan iterates through all locations in the tree in search order.
func (n *Tree) Scan(iter func(loc Location) bool) {
	n.scan(iter)
}

func (n *Tree) scan(iter func(loc Location) bool) bool {
	switch n.kind {
	case Empty:
		return true
	case Single:
		for i := 0; i < n.count; i++ {
			if !iter(n.loc) {
				return false
			}
		}
		return true
	}
	for q := 0; q < 4; q++ {
		if !n.quads[q].scan(iter) {
			return false
		}
	}
	return true
}

// Bounds returns the smallest region containing every location, and false
// when the tree is empty.
func (n *Tree) Bounds() (Region, bool) {
	if n.count == 0 {
		return Region{}, false
	}
	var lo, hi Location
	first := true
	n.scan(func(loc Location) bool {
		if first {
			lo, hi, first = loc, loc, false
			return true
		}
		lo.X, lo.Y = min(lo.X, loc.X), min(lo.Y, loc.Y)
		hi.X, hi.Y = max(hi.X, loc.X), max(hi.Y, loc.Y)
		return true
	})
	return Region{X1: lo.X, X2: hi.X, Y1: lo.Y, Y2: hi.Y}, true
}
