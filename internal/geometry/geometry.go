// Package geometry holds the numeric kernel shared by the containment index,
// the placer and the validator: tolerant sign tests, segment intersection
// classification and circle-circle intersection.
package geometry

import (
	"math"

	"github.com/jbeda/geom"
)

// Epsilon is the dead zone used by Sign. Every orientation test goes through
// it, so it is the only knob controlling numeric robustness.
const Epsilon = 1e-8

// Point is a 2D coordinate. Pose points always carry integral values.
type Point = geom.Coord

// Sign classifies x as -1, 0 or +1, treating |x| < Epsilon as zero.
func Sign(x float64) int {
	if x >= Epsilon {
		return +1
	}
	if x <= -Epsilon {
		return -1
	}
	return 0
}

// Cross returns the z component of a × b.
func Cross(a, b Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Norm returns the squared magnitude of p.
func Norm(p Point) float64 {
	return p.X*p.X + p.Y*p.Y
}

// Dist2 returns the squared distance between a and b.
func Dist2(a, b Point) float64 {
	return Norm(a.Minus(b))
}

// Polar builds the point at distance r from the origin at angle theta.
func Polar(r, theta float64) Point {
	return Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

// Round snaps p to the nearest integer point, halves away from zero.
func Round(p Point) Point {
	return Point{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// IsIntegral reports whether both coordinates are whole numbers.
func IsIntegral(p Point) bool {
	return p.X == math.Trunc(p.X) && p.Y == math.Trunc(p.Y)
}

// Less orders points lexicographically by X, then Y.
func Less(a, b Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return a.Plus(b).Times(0.5)
}

// mul multiplies a and b as complex numbers.
func mul(a, b Point) Point {
	return Point{X: a.X*b.X - a.Y*b.Y, Y: a.X*b.Y + a.Y*b.X}
}

// conj returns the complex conjugate of p.
func conj(p Point) Point {
	return Point{X: p.X, Y: -p.Y}
}

// BoundingBox returns the smallest rectangle holding every point.
func BoundingBox(points []Point) geom.Rect {
	if len(points) == 0 {
		return geom.Rect{}
	}
	r := geom.Rect{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r.ExpandToContainCoord(p)
	}
	return r
}
