package geometry

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) Point { return Point{X: x, Y: y} }

func TestSign(t *testing.T) {
	assert.Equal(t, 0, Sign(0))
	assert.Equal(t, 0, Sign(1e-9))
	assert.Equal(t, 0, Sign(-1e-9))
	assert.Equal(t, 1, Sign(1e-6))
	assert.Equal(t, -1, Sign(-2))
}

func TestOrientation(t *testing.T) {
	s := Segment{A: pt(0, 0), B: pt(10, 0)}
	assert.Equal(t, 0, Orientation(s, pt(5, 0)))
	assert.Equal(t, 0, Orientation(s, pt(20, 0)))
	assert.NotEqual(t, Orientation(s, pt(5, 1)), Orientation(s, pt(5, -1)))
}

func TestIntersects(t *testing.T) {
	cases := []struct {
		name string
		a, b Segment
		want Intersection
	}{
		{"crossing", Segment{pt(0, 0), pt(2, 2)}, Segment{pt(0, 2), pt(2, 0)}, Crossing},
		{"t-junction", Segment{pt(0, 0), pt(2, 0)}, Segment{pt(1, 0), pt(1, 5)}, Touching},
		{"shared endpoint", Segment{pt(0, 0), pt(2, 0)}, Segment{pt(2, 0), pt(2, 5)}, Touching},
		{"parallel", Segment{pt(0, 0), pt(1, 0)}, Segment{pt(0, 1), pt(1, 1)}, Separate},
		{"apart", Segment{pt(0, 0), pt(1, 1)}, Segment{pt(5, 0), pt(6, -3)}, Separate},
		{"collinear overlap", Segment{pt(0, 0), pt(4, 0)}, Segment{pt(2, 0), pt(6, 0)}, Touching},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Intersects(tc.a, tc.b))
			assert.Equal(t, tc.want, Intersects(tc.b, tc.a), "classification must be symmetric")
			assert.Equal(t, tc.want, Intersects(tc.a.Reverse(), tc.b))
		})
	}
}

func TestOnSegment(t *testing.T) {
	s := Segment{A: pt(0, 0), B: pt(4, 4)}
	assert.True(t, OnSegment(s, pt(2, 2)))
	assert.True(t, OnSegment(s, pt(4, 4)))
	assert.False(t, OnSegment(s, pt(5, 5)))
	assert.False(t, OnSegment(s, pt(2, 3)))
}

func TestRoundAndIntegral(t *testing.T) {
	assert.Equal(t, pt(3, -3), Round(pt(2.5, -2.5)))
	assert.True(t, IsIntegral(pt(3, -7)))
	assert.False(t, IsIntegral(pt(3.5, 0)))
}

func TestPolar(t *testing.T) {
	p := Polar(2, math.Pi/2)
	assert.InDelta(t, 0, p.X, 1e-12)
	assert.InDelta(t, 2, p.Y, 1e-12)
	assert.InDelta(t, 4, Norm(p), 1e-12)
}

func TestBoundingBox(t *testing.T) {
	r := BoundingBox([]Point{pt(3, 1), pt(-2, 5), pt(0, -4)})
	assert.Equal(t, pt(-2, -4), r.Min)
	assert.Equal(t, pt(3, 5), r.Max)
}

func TestCircleIntersections_TwoPoints(t *testing.T) {
	zs := CircleIntersections(Circle{pt(0, 0), 5}, Circle{pt(8, 0), 5})
	require.Len(t, zs, 2)
	assert.InDelta(t, 4, zs[0].X, 1e-9)
	assert.InDelta(t, 3, zs[0].Y, 1e-9)
	assert.InDelta(t, 4, zs[1].X, 1e-9)
	assert.InDelta(t, -3, zs[1].Y, 1e-9)
}

func TestCircleIntersections_Tangent(t *testing.T) {
	outer := CircleIntersections(Circle{pt(0, 0), 3}, Circle{pt(5, 0), 2})
	require.Len(t, outer, 1)
	assert.InDelta(t, 3, outer[0].X, 1e-9)
	assert.InDelta(t, 0, outer[0].Y, 1e-9)

	inner := CircleIntersections(Circle{pt(0, 0), 1}, Circle{pt(2, 0), 3})
	require.Len(t, inner, 1)
	assert.InDelta(t, -1, inner[0].X, 1e-9)
}

func TestCircleIntersections_None(t *testing.T) {
	assert.Empty(t, CircleIntersections(Circle{pt(0, 0), 1}, Circle{pt(10, 0), 1}))
	assert.Empty(t, CircleIntersections(Circle{pt(0, 0), 1}, Circle{pt(0.5, 0), 5}))
	assert.Empty(t, CircleIntersections(Circle{pt(1, 1), 2}, Circle{pt(1, 1), 2}), "coincident centers")
}

func TestCircleIntersections_ZeroRadius(t *testing.T) {
	zs := CircleIntersections(Circle{pt(0, 0), 0}, Circle{pt(3, 4), 5})
	require.Len(t, zs, 1)
	assert.Equal(t, pt(0, 0), zs[0])
}

func TestCircleIntersections_Symmetric(t *testing.T) {
	c1 := Circle{pt(1, 2), 7}
	c2 := Circle{pt(9, -3), 6}

	ab := CircleIntersections(c1, c2)
	ba := CircleIntersections(c2, c1)
	require.Len(t, ab, 2)
	require.Len(t, ba, 2)

	byX := func(zs []Point) {
		sort.Slice(zs, func(i, j int) bool { return Less(zs[i], zs[j]) })
	}
	byX(ab)
	byX(ba)
	for i := range ab {
		assert.InDelta(t, ab[i].X, ba[i].X, 1e-9)
		assert.InDelta(t, ab[i].Y, ba[i].Y, 1e-9)
		assert.InDelta(t, 49, Dist2(ab[i], c1.Center), 1e-6)
		assert.InDelta(t, 36, Dist2(ab[i], c2.Center), 1e-6)
	}
}
