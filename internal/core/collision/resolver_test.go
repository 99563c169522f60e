package collision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riftcore/riftcore/internal/core/geom"
	"github.com/riftcore/riftcore/internal/core/model"
)

type testBody struct {
	id     model.EntityID
	pos    geom.Vec2
	radius float64
	mass   float64
}

func (b *testBody) ID() model.EntityID      { return b.id }
func (b *testBody) Position() geom.Vec2     { return b.pos }
func (b *testBody) SetPosition(p geom.Vec2) { b.pos = p }
func (b *testBody) Radius() float64         { return b.radius }
func (b *testBody) Mass() float64           { return b.mass }

func body(id model.EntityID, x, y, radius, mass float64) *testBody {
	return &testBody{id: id, pos: geom.Vec2{X: x, Y: y}, radius: radius, mass: mass}
}

func TestEqualMassPairSplitsSeparationEvenly(t *testing.T) {
	// radius 20 each, centers 10 apart: 30 of overlap, 15 moved each
	a := body(1, 0, 0, 20, 50)
	b := body(2, 10, 0, 20, 50)

	r := NewResolver(Config{BroadPhase: false})
	r.Resolve([]Body{a, b})

	require.InDelta(t, -15, a.pos.X, 1e-9)
	require.InDelta(t, 25, b.pos.X, 1e-9)
	require.InDelta(t, 40, geom.Dist(a.pos, b.pos), 1e-9)
}

func TestInfiniteMassBodyNeverMoves(t *testing.T) {
	structure := body(1, 0, 0, 40, math.Inf(1))
	unit := body(2, 40, 0, 10, 50) // overlap of 10

	r := NewResolver(Config{BroadPhase: false})
	r.Resolve([]Body{structure, unit})

	require.Equal(t, geom.Vec2{}, structure.pos)
	require.InDelta(t, 50, unit.pos.X, 1e-9)
	require.InDelta(t, 0, unit.pos.Y, 1e-9)
}

func TestTwoInfiniteMassBodiesStayPut(t *testing.T) {
	a := body(1, 0, 0, 30, math.Inf(1))
	b := body(2, 10, 0, 30, math.Inf(1))

	r := NewResolver(Config{BroadPhase: false})
	r.Resolve([]Body{a, b})

	require.Equal(t, geom.Vec2{}, a.pos)
	require.Equal(t, geom.Vec2{X: 10}, b.pos)
}

func TestSeparatedPairsAreAtLeastRadiusSumApart(t *testing.T) {
	bodies := []Body{
		body(1, 0, 0, 20, 50),
		body(2, 5, 3, 15, 80),
		body(3, -8, 2, 10, 30),
		body(4, 500, 500, 25, 50), // not involved
	}
	r := NewResolver(Config{MaxSeparation: 1000, BroadPhase: false})
	// deep stacks need a few passes; each pass is capped and convergent
	for i := 0; i < 10; i++ {
		r.Resolve(bodies)
	}
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			d := geom.Dist(bodies[i].Position(), bodies[j].Position())
			require.GreaterOrEqual(t, d, bodies[i].Radius()+bodies[j].Radius()-1e-6,
				"pair %d/%d still overlapping", i, j)
		}
	}
}

func TestResolveIsIdempotentOnResolvedPositions(t *testing.T) {
	a := body(1, 0, 0, 20, 50)
	b := body(2, 10, 0, 20, 50)

	r := NewResolver(Config{BroadPhase: false})
	r.Resolve([]Body{a, b})
	pa, pb := a.pos, b.pos

	r.Resolve([]Body{a, b})
	require.Equal(t, pa, a.pos)
	require.Equal(t, pb, b.pos)
}

func TestMaxSeparationCapsSingleStep(t *testing.T) {
	a := body(1, 0, 0, 20, 50)
	b := body(2, 2, 0, 20, 50) // overlap of 38, 19 per body uncapped

	r := NewResolver(Config{MaxSeparation: 5, BroadPhase: false})
	r.Resolve([]Body{a, b})

	require.InDelta(t, 5, geom.Dist(geom.Vec2{}, a.pos), 1e-9)
	require.InDelta(t, 5, geom.Dist(geom.Vec2{X: 2}, b.pos), 1e-9)
}

func TestCoincidentCentersSeparateDeterministically(t *testing.T) {
	run := func() (geom.Vec2, geom.Vec2) {
		a := body(7, 100, 100, 10, 50)
		b := body(8, 100, 100, 10, 50)
		r := NewResolver(Config{BroadPhase: false})
		r.Resolve([]Body{a, b})
		return a.pos, b.pos
	}

	a1, b1 := run()
	a2, b2 := run()
	require.Equal(t, a1, a2)
	require.Equal(t, b1, b2)
	require.InDelta(t, 20, geom.Dist(a1, b1), 1e-9)
}

func TestGridAndNaiveStrategiesAgreeOnIsolatedPairs(t *testing.T) {
	makePairs := func() []Body {
		var bodies []Body
		var id model.EntityID = 1
		for i := 0; i < 20; i++ {
			// isolated overlapping pairs, far from each other
			baseX := float64(i) * 1000
			bodies = append(bodies,
				body(id, baseX, 0, 20, 50),
				body(id+1, baseX+12, 5, 18, 70),
			)
			id += 2
		}
		return bodies
	}

	naive := makePairs()
	NewResolver(Config{BroadPhase: false}).Resolve(naive)

	grid := makePairs()
	NewResolver(Config{BroadPhase: true, CellSize: 64}).Resolve(grid)

	for i := range naive {
		require.InDelta(t, naive[i].Position().X, grid[i].Position().X, 1e-9, "body %d", i)
		require.InDelta(t, naive[i].Position().Y, grid[i].Position().Y, 1e-9, "body %d", i)
	}
}

func TestGridFindsPairsAcrossCellBoundaries(t *testing.T) {
	// cell size far smaller than the bodies forces cross-cell candidate scans
	a := body(1, 0, 0, 20, 50)
	b := body(2, 30, 0, 20, 50)

	r := NewResolver(Config{BroadPhase: true, CellSize: 8})
	r.Resolve([]Body{a, b})

	require.InDelta(t, 40, geom.Dist(a.pos, b.pos), 1e-9)
}

func TestNonOverlappingBodiesUntouched(t *testing.T) {
	a := body(1, 0, 0, 20, 50)
	b := body(2, 100, 0, 20, 50)

	r := NewResolver(DefaultConfig())
	r.Resolve([]Body{a, b})

	require.Equal(t, geom.Vec2{}, a.pos)
	require.Equal(t, geom.Vec2{X: 100}, b.pos)
}
