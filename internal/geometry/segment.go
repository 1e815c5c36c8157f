package geometry

import "math"

// Segment is the closed line segment from A to B.
type Segment struct {
	A, B Point
}

// Intersection classifies how two segments meet.
type Intersection int

const (
	Separate Intersection = iota // No common point
	Touching                     // An endpoint lies on the other segment, or collinear contact
	Crossing                     // The segments properly cross
)

func (i Intersection) String() string {
	switch i {
	case Touching:
		return "touching"
	case Crossing:
		return "crossing"
	default:
		return "separate"
	}
}

// Reverse returns the segment with its endpoints swapped.
func (s Segment) Reverse() Segment {
	return Segment{A: s.B, B: s.A}
}

// Orientation returns the side of s on which p lies: the sign of the cross
// product of (p - A) and (B - A).
func Orientation(s Segment, p Point) int {
	return Sign(Cross(p.Minus(s.A), s.B.Minus(s.A)))
}

// Intersects classifies the relation between a and b as
// 1 - max(signA, signB), where signA is the product of the orientations of
// b's endpoints relative to a, and symmetrically for signB.
func Intersects(a, b Segment) Intersection {
	signA := Orientation(a, b.A) * Orientation(a, b.B)
	signB := Orientation(b, a.A) * Orientation(b, a.B)
	m := signA
	if signB > m {
		m = signB
	}
	return Intersection(1 - m)
}

// OnSegment reports whether p lies on s, endpoints included.
func OnSegment(s Segment, p Point) bool {
	if Orientation(s, p) != 0 {
		return false
	}
	return p.X >= math.Min(s.A.X, s.B.X)-Epsilon && p.X <= math.Max(s.A.X, s.B.X)+Epsilon &&
		p.Y >= math.Min(s.A.Y, s.B.Y)-Epsilon && p.Y <= math.Max(s.A.Y, s.B.Y)+Epsilon
}
