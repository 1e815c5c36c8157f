package geometry

import "math"

// Circle is a center and a radius.
type Circle struct {
	Center Point
	Radius float64
}

// CircleIntersections returns the points where c1 and c2 meet: none, one for
// tangent circles, or two. Two points come back as the rotation of the
// center line followed by its conjugate, so callers that pick between them
// with a seeded random source stay reproducible.
func CircleIntersections(c1, c2 Circle) []Point {
	delta := c2.Center.Minus(c1.Center)
	d := delta.Magnitude()
	if d < Epsilon {
		return nil
	}

	if c1.Radius < Epsilon {
		if Sign(c2.Radius-d) == 0 {
			return []Point{c1.Center}
		}
		return nil
	}

	a := c1.Radius / d
	b := c2.Radius / d
	cos := (a*a + 1.0 - b*b) / (2.0 * a)

	switch {
	case Sign(cos+1.0) < 0 || Sign(cos-1.0) > 0:
		return nil
	case Sign(cos-1.0) == 0:
		return []Point{c1.Center.Plus(delta.Times(a))}
	case Sign(cos+1.0) == 0:
		return []Point{c1.Center.Minus(delta.Times(a))}
	}

	w := Polar(a, math.Acos(cos))
	return []Point{
		c1.Center.Plus(mul(w, delta)),
		c1.Center.Plus(mul(conj(w), delta)),
	}
}
