package campus

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/campusmaps/loctree"
)

var (
	// ErrDuplicateBuilding is returned when two buildings share a short name.
	ErrDuplicateBuilding = errors.New("campus: duplicate building")
	// ErrUnknownBuilding is returned for a short name not in the catalog.
	ErrUnknownBuilding = errors.New("campus: unknown building")
)

// Neighbor is a building paired with its distance from a query point.
type Neighbor struct {
	Building Building `json:"building"`
	Dist     float64  `json:"dist"`
}

// Catalog is an immutable set of buildings indexed by location. Build a new
// catalog to change the set.
type Catalog struct {
	log      *zap.Logger
	metrics  *Metrics
	parallel int

	tree      *loctree.Tree
	buildings []Building
	byShort   map[string]int
	byLoc     map[loctree.Location][]int
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Catalog) { c.log = log }
}

// WithMetrics sets the collectors updated by queries.
func WithMetrics(m *Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// WithParallelBuild builds quadrants covering at least n buildings
// concurrently.
func WithParallelBuild(n int) Option {
	return func(c *Catalog) { c.parallel = n }
}

// NewCatalog indexes the given buildings.
func NewCatalog(buildings []Building, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		log:       zap.NewNop(),
		buildings: append([]Building(nil), buildings...),
		byShort:   make(map[string]int, len(buildings)),
		byLoc:     make(map[loctree.Location][]int, len(buildings)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}

	locs := make([]loctree.Location, 0, len(c.buildings))
	for i, b := range c.buildings {
		if _, ok := c.byShort[b.ShortName]; ok {
			return nil, errors.Wrapf(ErrDuplicateBuilding, "%q", b.ShortName)
		}
		c.byShort[b.ShortName] = i
		c.byLoc[b.Location] = append(c.byLoc[b.Location], i)
		locs = append(locs, b.Location)
	}
	tree, err := loctree.BuildWithOptions(locs,
		loctree.BuildOptions{Parallel: c.parallel})
	if err != nil {
		return nil, errors.Wrap(err, "index buildings")
	}
	c.tree = tree
	c.metrics.Buildings.Set(float64(len(c.buildings)))
	c.log.Info("indexed buildings",
		zap.Int("buildings", len(c.buildings)),
		zap.Int("locations", len(c.byLoc)))
	return c, nil
}

// Len returns the number of buildings.
func (c *Catalog) Len() int { return len(c.buildings) }

// Buildings returns every building in the order given to NewCatalog.
func (c *Catalog) Buildings() []Building {
	return append([]Building(nil), c.buildings...)
}

// Lookup returns the building with the given short name.
func (c *Catalog) Lookup(short string) (Building, bool) {
	i, ok := c.byShort[short]
	if !ok {
		return Building{}, false
	}
	return c.buildings[i], true
}

// Locations returns the locations of the named buildings.
func (c *Catalog) Locations(shorts []string) ([]loctree.Location, error) {
	locs := make([]loctree.Location, 0, len(shorts))
	for _, s := range shorts {
		b, ok := c.Lookup(s)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownBuilding, "%q", s)
		}
		locs = append(locs, b.Location)
	}
	return locs, nil
}

// InRegion returns the buildings inside region. Buildings sharing a
// location are returned together, in catalog order.
func (c *Catalog) InRegion(region loctree.Region) []Building {
	c.metrics.Queries.WithLabelValues("region").Inc()
	found := []Building{}
	seen := make(map[loctree.Location]bool)
	c.tree.Search(region, func(loc loctree.Location) bool {
		if seen[loc] {
			return true
		}
		seen[loc] = true
		for _, i := range c.byLoc[loc] {
			found = append(found, c.buildings[i])
		}
		return true
	})
	c.log.Debug("region query",
		zap.Float64("x1", region.X1), zap.Float64("x2", region.X2),
		zap.Float64("y1", region.Y1), zap.Float64("y2", region.Y2),
		zap.Int("found", len(found)))
	return found
}

// Closest returns the building closest to any of the given points and its
// distance to the nearest of them.
func (c *Catalog) Closest(points []loctree.Location) (Building, float64, error) {
	c.metrics.Queries.WithLabelValues("closest").Inc()
	cl, err := c.tree.FindClosest(points)
	if err != nil {
		return Building{}, 0, errors.Wrap(err, "closest building")
	}
	c.metrics.Evaluations.Observe(float64(cl.Calcs))
	b := c.buildings[c.byLoc[cl.Loc][0]]
	c.log.Debug("closest query",
		zap.Int("points", len(points)),
		zap.String("building", b.ShortName),
		zap.Float64("dist", cl.Dist),
		zap.Int("calcs", cl.Calcs))
	return b, cl.Dist, nil
}

// Nearest returns up to k buildings ordered by distance from point.
func (c *Catalog) Nearest(point loctree.Location, k int) []Neighbor {
	c.metrics.Queries.WithLabelValues("nearest").Inc()
	found := []Neighbor{}
	if k <= 0 {
		return found
	}
	seen := make(map[loctree.Location]bool)
	c.tree.Nearby(point, func(loc loctree.Location, dist float64) bool {
		if seen[loc] {
			return true
		}
		seen[loc] = true
		for _, i := range c.byLoc[loc] {
			if len(found) == k {
				return false
			}
			found = append(found, Neighbor{c.buildings[i], dist})
		}
		return len(found) < k
	})
	return found
}
