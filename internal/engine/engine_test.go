package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/piwi3910/holefit/internal/geometry"
	"github.com/piwi3910/holefit/internal/model"
)

func pt(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

func squareHole() []geometry.Point {
	return []geometry.Point{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10)}
}

func lHole() []geometry.Point {
	return []geometry.Point{pt(0, 0), pt(10, 0), pt(10, 4), pt(4, 4), pt(4, 10), pt(0, 10)}
}

func mustProblem(t *testing.T, hole []geometry.Point, vertices []geometry.Point, edges []model.Edge, epsilon int64) *model.Problem {
	t.Helper()
	p, err := model.NewProblem(hole, model.Figure{Vertices: vertices, Edges: edges}, epsilon)
	require.NoError(t, err)
	return p
}

// singleEdgeProblem is the unit square with one edge of length 10.
func singleEdgeProblem(t *testing.T) *model.Problem {
	return mustProblem(t, squareHole(), []geometry.Point{pt(0, 0), pt(10, 0)}, []model.Edge{{U: 0, V: 1}}, 0)
}

// cycleProblem is a figure identical to the square hole.
func cycleProblem(t *testing.T) *model.Problem {
	return mustProblem(t, squareHole(), squareHole(),
		[]model.Edge{{U: 0, V: 1}, {U: 1, V: 2}, {U: 2, V: 3}, {U: 3, V: 0}}, 0)
}

// tooLongProblem has an edge longer than the square's diagonal.
func tooLongProblem(t *testing.T) *model.Problem {
	return mustProblem(t, squareHole(), []geometry.Point{pt(0, 0), pt(20, 0)}, []model.Edge{{U: 0, V: 1}}, 0)
}

// triangleProblem is a small triangle with a tail that has to fit in the L.
func triangleProblem(t *testing.T) *model.Problem {
	return mustProblem(t, lHole(),
		[]geometry.Point{pt(0, 0), pt(3, 0), pt(0, 3), pt(0, 6)},
		[]model.Edge{{U: 0, V: 1}, {U: 1, V: 2}, {U: 2, V: 0}, {U: 2, V: 3}},
		100000)
}

func quickConfig(seed int64, numPoses int) model.SearchConfig {
	cfg := model.DefaultSearchConfig()
	cfg.Seed = seed
	cfg.NumPoses = numPoses
	cfg.MaxTotalSteps = 20000
	return cfg
}
