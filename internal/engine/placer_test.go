package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/holefit/internal/geometry"
	"github.com/piwi3910/holefit/internal/model"
)

// testAttempt returns an attempt on p with the given per-vertex back
// adjacency, ready for calling individual strategies.
func testAttempt(p *model.Problem, order []int, back [][]model.Neighbor, seed int64) *attempt {
	a := newAttempt(p, quickConfig(seed, 1), rand.New(rand.NewSource(seed)), nil)
	a.order = order
	a.back = back
	return a
}

func TestHoleVertexUniformAndSkipsUsed(t *testing.T) {
	p := mustProblem(t, lHole(), []geometry.Point{pt(0, 0), pt(1, 1)}, nil, 0)
	a := testAttempt(p, []int{0, 1}, [][]model.Neighbor{nil, nil}, 4)
	a.pose[0] = pt(0, 0)

	const draws = 60000
	counts := make(map[geometry.Point]int)
	for i := 0; i < draws; i++ {
		z, ok := a.holeVertex(1, 1)
		require.True(t, ok)
		counts[z]++
	}

	assert.Zero(t, counts[pt(0, 0)], "occupied hole vertex picked")
	assert.Len(t, counts, 5)
	for z, n := range counts {
		assert.InDelta(t, draws/5, n, 600, "vertex %v", z)
	}
}

func TestHoleVertexNoneFeasible(t *testing.T) {
	p := tooLongProblem(t)
	a := testAttempt(p, []int{0, 1}, [][]model.Neighbor{nil, {{Vertex: 0, Edge: 0}}}, 1)
	a.pose[0] = pt(0, 0)

	_, ok := a.holeVertex(1, 1)
	assert.False(t, ok)
}

func TestTetheredStaysWithinBounds(t *testing.T) {
	p := mustProblem(t, lHole(), []geometry.Point{pt(0, 0), pt(10, 0)}, []model.Edge{{U: 0, V: 1}}, 100000)
	require.Equal(t, int64(90), p.MinNorm(0))
	require.Equal(t, int64(110), p.MaxNorm(0))

	a := testAttempt(p, []int{0, 1}, [][]model.Neighbor{nil, {{Vertex: 0, Edge: 0}}}, 2)
	a.pose[0] = pt(2, 2)

	norms := make(map[float64]bool)
	for i := 0; i < 1000; i++ {
		d := geometry.Dist2(a.tethered(a.back[1][0]), a.pose[0])
		n := math.Round(d)
		require.InDelta(t, n, d, 1e-6)
		require.GreaterOrEqual(t, n, 90.0)
		require.LessOrEqual(t, n, 110.0)
		norms[n] = true
	}
	assert.Greater(t, len(norms), 1)
}

// pinnedProblem is a 3-4-5 triangle: c sits 5 away from both a and b.
func pinnedProblem(t *testing.T) (*model.Problem, *attempt) {
	p := mustProblem(t, squareHole(),
		[]geometry.Point{pt(0, 0), pt(6, 0), pt(3, 4)},
		[]model.Edge{{U: 0, V: 2}, {U: 1, V: 2}, {U: 0, V: 1}}, 0)
	back := [][]model.Neighbor{nil, nil, {{Vertex: 0, Edge: 0}, {Vertex: 1, Edge: 1}}}
	return p, testAttempt(p, []int{0, 1, 2}, back, 5)
}

func TestPinnedIntersectsRings(t *testing.T) {
	_, a := pinnedProblem(t)
	a.pose[0], a.pose[1] = pt(0, 0), pt(6, 0)

	seen := make(map[float64]bool)
	for i := 0; i < 200; i++ {
		z, ok := a.pinned(2)
		require.True(t, ok)
		assert.InDelta(t, 3, z.X, 1e-9)
		assert.InDelta(t, 4, math.Abs(z.Y), 1e-9)
		seen[math.Copysign(1, z.Y)] = true
	}
	assert.Len(t, seen, 2, "both intersections are proposed")
}

func TestPinnedFallsBackToTethered(t *testing.T) {
	_, a := pinnedProblem(t)
	a.pose[0], a.pose[1] = pt(5, 5), pt(5, 5)

	for i := 0; i < 100; i++ {
		z, ok := a.pinned(2)
		require.True(t, ok)
		assert.InDelta(t, 25, geometry.Dist2(z, pt(5, 5)), 1e-6)
	}
}

func TestPinnedFailsWhenRingsMiss(t *testing.T) {
	_, a := pinnedProblem(t)
	a.pose[0], a.pose[1] = pt(0, 0), pt(20, 0)

	_, ok := a.pinned(2)
	assert.False(t, ok)
}

func TestFreeSamplesThinHole(t *testing.T) {
	// A one-unit-wide diagonal strip: well under 1% of its bounding box.
	p := mustProblem(t,
		[]geometry.Point{pt(0, 0), pt(1, 0), pt(1000, 999), pt(1000, 1000), pt(999, 1000), pt(0, 1)},
		[]geometry.Point{pt(0, 0)}, nil, 0)
	a := testAttempt(p, []int{0}, [][]model.Neighbor{nil}, 6)

	for i := 0; i < 500; i++ {
		z, ok := a.free()
		require.True(t, ok)
		assert.True(t, p.Hole().ContainsPoint(z), "point %v", z)
	}
}

func TestPlaceBacktracksWithoutRetrying(t *testing.T) {
	// Six lattice points for the first vertex; the second can never fit, so
	// every distinct first position costs one full local session below it.
	p := mustProblem(t,
		[]geometry.Point{pt(0, 0), pt(2, 0), pt(0, 2)},
		[]geometry.Point{pt(0, 0), pt(20, 0)}, []model.Edge{{U: 0, V: 1}}, 0)
	require.Len(t, p.Hole().Lattice(), 6)

	cfg := quickConfig(8, 1)
	cfg.ProbHole = 0
	cfg.MaxLocalSteps = 50
	cfg.MaxTotalSteps = 1000000
	a := newAttempt(p, cfg, rand.New(rand.NewSource(8)), nil)

	assert.Nil(t, a.run())
	assert.False(t, a.exhausted, "a local budget running out is not a global abort")

	local := int64(cfg.MaxLocalSteps)
	steps := a.steps()
	require.Zero(t, steps%local)
	sessions := steps/local - 1
	assert.GreaterOrEqual(t, sessions, int64(2), "backtracked to the first vertex")
	assert.LessOrEqual(t, sessions, int64(6), "a rounded position was tried twice")
}
