package loctree

import (
	"cmp"
	"math"
	"math/rand"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/cities"
	"github.com/tidwall/lotsa"
)

var seed int64

func init() {
	seed = time.Now().UnixNano()
	println("seed:", seed)
}

func empty() *Tree { return &Tree{} }

func single(x, y float64) *Tree {
	return &Tree{kind: Single, loc: Location{x, y}, count: 1}
}

func split(x, y float64, qnw, qne, qsw, qse *Tree) *Tree {
	return &Tree{
		kind:  Split,
		loc:   Location{x, y},
		count: qnw.count + qne.count + qsw.count + qse.count,
		quads: &[4]Tree{*qnw, *qne, *qsw, *qse},
	}
}

func mustBuild(t testing.TB, locs []Location) *Tree {
	tr, err := Build(locs)
	require.NoError(t, err)
	return tr
}

func randPoints(rng *rand.Rand, n int) []Location {
	locs := make([]Location, n)
	for i := range locs {
		locs[i] = Location{rng.Float64()*200 - 100, rng.Float64()*200 - 100}
	}
	return locs
}

// cityPoints returns the world cities as longitude/latitude locations.
func cityPoints() []Location {
	locs := make([]Location, len(cities.Cities))
	for i, c := range cities.Cities {
		locs[i] = Location{c.Longitude, c.Latitude}
	}
	return locs
}

// lonLatPoints returns random locations covering the globe.
func lonLatPoints(rng *rand.Rand, n int) []Location {
	locs := make([]Location, n)
	for i := range locs {
		locs[i] = Location{rng.Float64()*360 - 180, rng.Float64()*180 - 90}
	}
	return locs
}

// gridPoints returns integer points, many of them on the same lines, plus a
// duplicate of every tenth point.
func gridPoints(side int) []Location {
	var locs []Location
	for x := 0; x < side; x++ {
		for y := 0; y < side; y++ {
			locs = append(locs, Location{float64(x), float64(y)})
			if (x*side+y)%10 == 0 {
				locs = append(locs, Location{float64(x), float64(y)})
			}
		}
	}
	return locs
}

func sortLocs(locs []Location) []Location {
	out := append([]Location{}, locs...)
	slices.SortFunc(out, func(a, b Location) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Y, b.Y)
	})
	return out
}

func TestBuild(t *testing.T) {
	require.Equal(t, empty(), mustBuild(t, nil))
	require.Equal(t, Empty, mustBuild(t, []Location{}).Kind())

	require.Equal(t, single(1, 1), mustBuild(t, []Location{{1, 1}}))
	require.Equal(t, single(2, 2), mustBuild(t, []Location{{2, 2}}))

	require.Equal(t,
		split(2, 2, single(1, 1), empty(), empty(), single(3, 3)),
		mustBuild(t, []Location{{1, 1}, {3, 3}}))
	require.Equal(t,
		split(2, 2, empty(), single(3, 1), single(1, 3), empty()),
		mustBuild(t, []Location{{1, 3}, {3, 1}}))

	require.Equal(t,
		split(4, 4,
			split(2, 2, single(1, 1), empty(), empty(), single(3, 3)),
			empty(),
			empty(),
			split(6, 6, single(5, 5), empty(), empty(), single(7, 7))),
		mustBuild(t, []Location{{1, 1}, {3, 3}, {5, 5}, {7, 7}}))

	require.Equal(t,
		split(4, 4,
			split(2, 2, single(1, 1), empty(), empty(), single(3, 3)),
			split(6, 2, empty(), single(7, 1), single(5, 3), empty()),
			split(2, 6, empty(), single(3, 5), single(1, 7), empty()),
			split(6, 6, single(5, 5), empty(), empty(), single(7, 7))),
		mustBuild(t, []Location{
			{1, 1}, {3, 3}, {5, 3}, {7, 1},
			{1, 7}, {3, 5}, {5, 5}, {7, 7}}))
}

func TestBuildAccessors(t *testing.T) {
	tr := mustBuild(t, []Location{{1, 1}, {3, 3}})
	require.Equal(t, Split, tr.Kind())
	require.Equal(t, "split", tr.Kind().String())
	require.Equal(t, Location{2, 2}, tr.At())
	require.Equal(t, 2, tr.Len())
	require.Equal(t, Location{1, 1}, tr.NW().Loc())
	require.Equal(t, Empty, tr.NE().Kind())
	require.Equal(t, Empty, tr.SW().Kind())
	require.Equal(t, Location{3, 3}, tr.SE().Loc())
	require.Nil(t, tr.NW().NW())

	r, ok := tr.Bounds()
	require.True(t, ok)
	require.Equal(t, Region{X1: 1, X2: 3, Y1: 1, Y2: 3}, r)
	_, ok = empty().Bounds()
	require.False(t, ok)
}

func TestBuildBoundaryTies(t *testing.T) {
	// centroid is (1, 1): every point lies on a splitting line
	tr := mustBuild(t, []Location{{1, 0}, {0, 1}, {1, 1}, {2, 1}, {1, 2}})
	require.Equal(t, Location{1, 1}, tr.At())
	// on x = 1 going west, on y = 1 going north
	require.Equal(t, 3, tr.NW().Len())
	require.Equal(t, 1, tr.NE().Len())
	require.Equal(t, 1, tr.SW().Len())
	require.Equal(t, 0, tr.SE().Len())
	require.Equal(t, Location{2, 1}, tr.NE().Loc())
	require.Equal(t, Location{1, 2}, tr.SW().Loc())
}

func TestBuildDuplicates(t *testing.T) {
	tr := mustBuild(t, []Location{{1, 1}, {1, 1}})
	require.Equal(t, Single, tr.Kind())
	require.Equal(t, 2, tr.Count())

	// the mean of three 0.1s is not exactly 0.1
	tr = mustBuild(t, []Location{{0.1, 0.1}, {0.1, 0.1}, {0.1, 0.1}})
	require.Equal(t, Single, tr.Kind())
	require.Equal(t, 3, tr.Count())
	require.Equal(t, []Location{{0.1, 0.1}, {0.1, 0.1}, {0.1, 0.1}},
		tr.FindLocationsInRegion(Everywhere))

	tr = mustBuild(t, []Location{{5, 5}, {1, 1}, {5, 5}, {5, 5}})
	require.Equal(t, 4, tr.Len())
	require.Equal(t, []Location{{5, 5}, {5, 5}, {5, 5}},
		tr.FindLocationsInRegion(Region{X1: 4, X2: 6, Y1: 4, Y2: 6}))
}

func TestBuildNonFinite(t *testing.T) {
	_, err := Build([]Location{{1, 1}, {math.NaN(), 0}})
	require.True(t, errors.Is(err, ErrNonFinite))
	_, err = Build([]Location{{0, math.Inf(1)}})
	require.True(t, errors.Is(err, ErrNonFinite))
}

func TestBuildDoesNotAlias(t *testing.T) {
	locs := []Location{{1, 1}, {3, 3}, {2, 5}}
	tr := mustBuild(t, locs)
	locs[0] = Location{100, 100}
	require.Equal(t, []Location{{1, 1}},
		tr.FindLocationsInRegion(Region{X1: 0, X2: 1, Y1: 0, Y2: 1}))
}

func TestPartitionExact(t *testing.T) {
	rng := rand.New(rand.NewSource(seed))
	inputs := [][]Location{
		randPoints(rng, 1000),
		gridPoints(20),
		cityPoints(),
		{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 3}, {0, 4}},
		{{-1, 2}, {0, 2}, {1, 2}, {2, 2}, {3, 2}},
	}
	for _, locs := range inputs {
		tr := mustBuild(t, locs)
		require.Equal(t, len(locs), tr.Len())
		var got []Location
		tr.Scan(func(loc Location) bool {
			got = append(got, loc)
			return true
		})
		require.Equal(t, sortLocs(locs), sortLocs(got))

		shuffled := slices.Clone(locs)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got = mustBuild(t, shuffled).FindLocationsInRegion(Everywhere)
		require.Equal(t, sortLocs(locs), sortLocs(got))
	}
}

func TestBuildDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(seed))
	locs := append(randPoints(rng, 5000), gridPoints(30)...)
	a := mustBuild(t, locs)
	b := mustBuild(t, locs)
	require.True(t, a.Equal(b))
	require.Equal(t, a, b)

	p, err := BuildWithOptions(locs, BuildOptions{Parallel: 64})
	require.NoError(t, err)
	require.True(t, a.Equal(p))

	other := mustBuild(t, locs[1:])
	require.False(t, a.Equal(other))
}

func TestFindLocationsInRegion(t *testing.T) {
	r := Region{X1: 1, X2: 3, Y1: 1, Y2: 3}
	require.Equal(t, []Location{},
		mustBuild(t, nil).FindLocationsInRegion(Region{X1: 1, X2: 2, Y1: 1, Y2: 2}))

	require.Equal(t, []Location{},
		mustBuild(t, []Location{{0, 0}}).FindLocationsInRegion(r))
	require.Equal(t, []Location{{2, 2}},
		mustBuild(t, []Location{{2, 2}}).FindLocationsInRegion(r))

	require.Equal(t, []Location{{2, 2}},
		mustBuild(t, []Location{{0, 0}, {2, 2}}).FindLocationsInRegion(r))
	require.Equal(t, []Location{{1, 1}, {2, 2}, {3, 3}},
		mustBuild(t, []Location{
			{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4},
		}).FindLocationsInRegion(r))
	require.Equal(t, []Location{{2, 2}, {1, 3}},
		mustBuild(t, []Location{
			{0, 4}, {1, 3}, {2, 2}, {3, 4}, {4, 0},
		}).FindLocationsInRegion(r))

	far := Region{X1: 50, X2: 60, Y1: 50, Y2: 60}
	require.Equal(t, []Location{},
		mustBuild(t, gridPoints(10)).FindLocationsInRegion(far))
}

func TestSearchStops(t *testing.T) {
	tr := mustBuild(t, gridPoints(10))
	n := 0
	tr.Search(Everywhere, func(loc Location) bool {
		n++
		return n < 5
	})
	require.Equal(t, 5, n)
}

func TestFindLocationsInRegionRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(seed))
	for _, locs := range [][]Location{
		append(randPoints(rng, 3000), gridPoints(15)...),
		cityPoints(),
	} {
		tr := mustBuild(t, locs)
		for i := 0; i < 500; i++ {
			x1 := rng.Float64()*400 - 200
			y1 := rng.Float64()*220 - 110
			r := Region{X1: x1, X2: x1 + rng.Float64()*40, Y1: y1, Y2: y1 + rng.Float64()*40}
			if i%50 == 0 {
				r.X1 = math.Inf(-1)
			}
			if i%70 == 0 {
				r.Y2 = math.Inf(1)
			}
			got := tr.FindLocationsInRegion(r)
			want := LocationsInRegion(locs, r)
			require.Equal(t, sortLocs(want), sortLocs(got))
		}
	}
}

func TestConcurrentReads(t *testing.T) {
	rng := rand.New(rand.NewSource(seed))
	locs := randPoints(rng, 2000)
	tr := mustBuild(t, locs)
	queries := randPoints(rng, 400)
	var fails int64
	lotsa.Ops(len(queries), 8, func(i, _ int) {
		q := queries[i]
		r := Region{X1: q.X, X2: q.X + 20, Y1: q.Y, Y2: q.Y + 20}
		if len(tr.FindLocationsInRegion(r)) != len(LocationsInRegion(locs, r)) {
			atomic.AddInt64(&fails, 1)
		}
		_, d, err := tr.FindClosestInTree([]Location{q})
		if err != nil || d != bruteClosest(locs, []Location{q}) {
			atomic.AddInt64(&fails, 1)
		}
	})
	require.Zero(t, atomic.LoadInt64(&fails))
}

func BenchmarkBuild(b *testing.B) {
	rng := rand.New(rand.NewSource(seed))
	locs := randPoints(rng, 100_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Build(locs)
	}
}

func BenchmarkBuildParallel(b *testing.B) {
	rng := rand.New(rand.NewSource(seed))
	locs := randPoints(rng, 100_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = BuildWithOptions(locs, BuildOptions{Parallel: 4096})
	}
}

func BenchmarkFindLocationsInRegion(b *testing.B) {
	rng := rand.New(rand.NewSource(seed))
	tr := mustBuild(b, randPoints(rng, 100_000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, y := float64(i%180-90), float64((i*7)%180-90)
		tr.FindLocationsInRegion(Region{X1: x, X2: x + 5, Y1: y, Y2: y + 5})
	}
}
