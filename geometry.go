package loctree

import (
	"math"

	"github.com/pkg/errors"
)

// Location is a point on the plane.
type Location struct {
	X, Y float64
}

// Region is an axis-aligned rectangle. Any bound may be infinite. A region
// includes all four of its sides.
type Region struct {
	X1, X2, Y1, Y2 float64
}

// Everywhere is the region covering the entire plane.
var Everywhere = Region{
	X1: math.Inf(-1), X2: math.Inf(1),
	Y1: math.Inf(-1), Y2: math.Inf(1),
}

// Centroid returns the coordinate-wise mean of the given locations.
func Centroid(locs []Location) (Location, error) {
	if len(locs) == 0 {
		return Location{}, errors.Wrap(ErrEmptyInput, "centroid")
	}
	return centroid(locs), nil
}

func centroid(locs []Location) Location {
	var sx, sy float64
	for _, loc := range locs {
		sx += loc.X
		sy += loc.Y
	}
	n := float64(len(locs))
	return Location{sx / n, sy / n}
}

// IsInRegion returns true when loc is inside region or on its boundary.
func IsInRegion(loc Location, region Region) bool {
	return region.X1 <= loc.X && loc.X <= region.X2 &&
		region.Y1 <= loc.Y && loc.Y <= region.Y2
}

// LocationsInRegion returns the locations that fall within the region, in
// their original order.
func LocationsInRegion(locs []Location, region Region) []Location {
	var in []Location
	for _, loc := range locs {
		if IsInRegion(loc, region) {
			in = append(in, loc)
		}
	}
	return in
}

// Overlap returns true when the two regions share at least one point.
func Overlap(a, b Region) bool {
	if b.X1 > a.X2 || b.X2 < a.X1 {
		return false
	}
	if b.Y1 > a.Y2 || b.Y2 < a.Y1 {
		return false
	}
	return true
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Location) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// DistanceSq returns the squared Euclidean distance between a and b.
func DistanceSq(a, b Location) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// DistanceMoreThan returns true when every point of region is farther than
// threshold from loc. The comparison is between plain Euclidean distances,
// not squared ones, so it stays exact for coordinates near the float64
// range limits.
func DistanceMoreThan(loc Location, region Region, threshold float64) bool {
	if math.IsInf(threshold, 1) {
		return false
	}
	if threshold < 0 {
		return true
	}
	return distToRegion(loc, region) > threshold
}

// DistanceToRegion returns the squared distance from loc to the nearest point
// of region, or zero when loc is inside it. Both operands are required.
func DistanceToRegion(loc *Location, region *Region) (float64, error) {
	if loc == nil || region == nil {
		return 0, errors.Wrap(ErrUndefinedOperand, "distance to region")
	}
	return distToRegionSq(*loc, *region), nil
}

// distToRegionSq classifies loc into one of the nine zones around r.
func distToRegionSq(loc Location, r Region) float64 {
	inX := loc.X >= r.X1 && loc.X <= r.X2
	inY := loc.Y >= r.Y1 && loc.Y <= r.Y2
	switch {
	case inX && inY:
		return 0
	case inX:
		if loc.Y > r.Y2 {
			return sq(loc.Y - r.Y2)
		}
		return sq(r.Y1 - loc.Y)
	case inY:
		if loc.X > r.X2 {
			return sq(loc.X - r.X2)
		}
		return sq(r.X1 - loc.X)
	}
	var dx, dy float64
	if loc.X > r.X2 {
		dx = loc.X - r.X2
	} else {
		dx = r.X1 - loc.X
	}
	if loc.Y > r.Y2 {
		dy = loc.Y - r.Y2
	} else {
		dy = r.Y1 - loc.Y
	}
	return dx*dx + dy*dy
}

func sq(v float64) float64 { return v * v }

// distToRegion is the unsquared distance from loc to r.
func distToRegion(loc Location, r Region) float64 {
	var dx, dy float64
	if loc.X < r.X1 {
		dx = r.X1 - loc.X
	} else if loc.X > r.X2 {
		dx = loc.X - r.X2
	}
	if loc.Y < r.Y1 {
		dy = r.Y1 - loc.Y
	} else if loc.Y > r.Y2 {
		dy = loc.Y - r.Y2
	}
	return math.Hypot(dx, dy)
}

// NW returns the part of r that is west of and north of at.
func (r Region) NW(at Location) Region {
	return Region{X1: r.X1, X2: at.X, Y1: r.Y1, Y2: at.Y}
}

// NE returns the part of r that is east of and north of at.
func (r Region) NE(at Location) Region {
	return Region{X1: at.X, X2: r.X2, Y1: r.Y1, Y2: at.Y}
}

// SW returns the part of r that is west of and south of at.
func (r Region) SW(at Location) Region {
	return Region{X1: r.X1, X2: at.X, Y1: at.Y, Y2: r.Y2}
}

// SE returns the part of r that is east of and south of at.
func (r Region) SE(at Location) Region {
	return Region{X1: at.X, X2: r.X2, Y1: at.Y, Y2: r.Y2}
}

func (r Region) minmax() (min, max [2]float64) {
	return [2]float64{r.X1, r.Y1}, [2]float64{r.X2, r.Y2}
}

func finite(loc Location) bool {
	return !math.IsNaN(loc.X) && !math.IsInf(loc.X, 0) &&
		!math.IsNaN(loc.Y) && !math.IsInf(loc.Y, 0)
}
