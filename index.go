package loctree

import (
	"math"

	"github.com/tidwall/geoindex"
	"github.com/tidwall/geoindex/algo"
	"github.com/tidwall/geoindex/child"
)

// indexView exposes a tree through geoindex.Interface. The tree cannot
// change, so the mutating methods panic.
type indexView struct {
	tr *Tree
}

var _ geoindex.Interface = indexView{}

// Index returns a geoindex wrapper around the tree. Only the read
// operations of the returned index may be used.
func (n *Tree) Index() *geoindex.Index {
	return geoindex.Wrap(indexView{n})
}

// Nearby calls iter for every location in the tree, ordered from nearest to
// farthest from target, until iter returns false.
func (n *Tree) Nearby(target Location, iter func(loc Location, dist float64) bool) {
	p := [2]float64{target.X, target.Y}
	n.Index().Nearby(
		algo.Box(p, p, false, nil),
		func(_, _ [2]float64, data interface{}, dist float64) bool {
			return iter(data.(Location), math.Sqrt(dist))
		},
	)
}

func (v indexView) Insert(min, max [2]float64, data interface{}) {
	panic("loctree: insert into immutable tree")
}

func (v indexView) Delete(min, max [2]float64, data interface{}) {
	panic("loctree: delete from immutable tree")
}

func (v indexView) Replace(
	oldMin, oldMax [2]float64, oldData interface{},
	newMin, newMax [2]float64, newData interface{},
) {
	panic("loctree: replace in immutable tree")
}

func point(loc Location) [2]float64 {
	return [2]float64{loc.X, loc.Y}
}

// Search the tree for locations inside the rect param
func (v indexView) Search(
	min, max [2]float64,
	iter func(min, max [2]float64, data interface{}) bool,
) {
	region := Region{X1: min[0], X2: max[0], Y1: min[1], Y2: max[1]}
	v.tr.Search(region, func(loc Location) bool {
		p := point(loc)
		return iter(p, p, loc)
	})
}

func (v indexView) Scan(iter func(min, max [2]float64, data interface{}) bool) {
	v.tr.Scan(func(loc Location) bool {
		p := point(loc)
		return iter(p, p, loc)
	})
}

func (v indexView) Len() int {
	return v.tr.Len()
}

func (v indexView) Bounds() (min, max [2]float64) {
	r, ok := v.tr.Bounds()
	if !ok {
		return min, max
	}
	return r.minmax()
}

type rnode struct {
	bounds Region
	node   *Tree
}

// Children returns all children for parent node. A nil parent yields the
// root, bounded by the whole plane.
func (v indexView) Children(parent interface{}, reuse []child.Child) (
	children []child.Child,
) {
	children = reuse[:0]
	if parent == nil {
		if v.tr.Len() > 0 {
			min, max := Everywhere.minmax()
			children = append(children, child.Child{
				Min:  min,
				Max:  max,
				Data: &rnode{Everywhere, v.tr},
				Item: false,
			})
		}
		return children
	}
	n, ok := parent.(*rnode)
	if !ok {
		return children
	}
	switch n.node.kind {
	case Single:
		p := point(n.node.loc)
		for i := 0; i < n.node.count; i++ {
			children = append(children, child.Child{
				Min:  p,
				Max:  p,
				Data: n.node.loc,
				Item: true,
			})
		}
	case Split:
		for q := 0; q < 4; q++ {
			c := &n.node.quads[q]
			if c.count == 0 {
				continue
			}
			b := quad(n.bounds, n.node.loc, q)
			min, max := b.minmax()
			children = append(children, child.Child{
				Min:  min,
				Max:  max,
				Data: &rnode{b, c},
				Item: false,
			})
		}
	}
	return children
}
