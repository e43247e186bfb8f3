package loctree

import (
	"cmp"
	"math"
	"slices"

	"github.com/pkg/errors"
)

// ClosestInfo is the running result of a nearest-neighbour search.
type ClosestInfo struct {
	Loc   Location // closest location found so far
	Dist  float64  // distance to Loc, +Inf when nothing was found
	Found bool
	Calcs int // exact distance evaluations performed
}

// NoInfo is a search result with nothing found and no work done.
var NoInfo = ClosestInfo{Dist: math.Inf(1)}

type quadDist struct {
	q      int
	bounds Region
	dist   float64
}

// ClosestInTree returns the closer of best and the closest location in the
// tree to loc. bounds must contain every location in the tree. Calcs is the
// sum of best.Calcs and the number of distances computed here.
func (n *Tree) ClosestInTree(loc Location, bounds Region, best ClosestInfo,
) ClosestInfo {
	if DistanceMoreThan(loc, bounds, best.Dist) {
		return best
	}
	switch n.kind {
	case Empty:
		return best
	case Single:
		best.Calcs++
		if d := Distance(n.loc, loc); !best.Found || d < best.Dist {
			best.Loc, best.Dist, best.Found = n.loc, d, true
		}
		return best
	}

	// Visit the nearest quadrants first so that the far ones are more
	// likely to be pruned.
	var order [4]quadDist
	for q := 0; q < 4; q++ {
		b := quad(bounds, n.loc, q)
		order[q] = quadDist{q, b, distToRegion(loc, b)}
	}
	slices.SortStableFunc(order[:], func(a, b quadDist) int {
		return cmp.Compare(a.dist, b.dist)
	})
	for _, o := range order {
		if best.Found && best.Dist == 0 {
			break
		}
		best = n.quads[o.q].ClosestInTree(loc, o.bounds, best)
	}
	return best
}

// FindClosest searches the tree independently for each of the given
// locations and returns the best result overall. Calcs is summed over every
// search.
func (n *Tree) FindClosest(locs []Location) (ClosestInfo, error) {
	if len(locs) == 0 {
		return NoInfo, errors.Wrap(ErrEmptyInput, "no locations passed in")
	}
	if n.kind == Empty {
		return NoInfo, errors.Wrap(ErrEmptyInput, "no locations in the tree")
	}
	closest := NoInfo
	calcs := 0
	for i, loc := range locs {
		if !finite(loc) {
			return NoInfo, errors.Wrapf(ErrNonFinite,
				"query location %d is (%v, %v)", i, loc.X, loc.Y)
		}
		cl := n.ClosestInTree(loc, Everywhere, NoInfo)
		calcs += cl.Calcs
		if !closest.Found || cl.Dist < closest.Dist {
			closest = cl
		}
	}
	closest.Calcs = calcs
	return closest, nil
}

// FindClosestInTree returns the location in the tree that is closest to any
// of the given locations, paired with that distance.
func (n *Tree) FindClosestInTree(locs []Location) (Location, float64, error) {
	cl, err := n.FindClosest(locs)
	if err != nil {
		return Location{}, 0, err
	}
	return cl.Loc, cl.Dist, nil
}
