package model

import (
	"math"

	"github.com/pkg/errors"

	"github.com/piwi3910/holefit/internal/geometry"
)

// Pose assigns a position to every figure vertex, indexed like the figure.
type Pose []geometry.Point

// FromFigure returns a pose that places every vertex at its original spot.
func FromFigure(p *Problem) Pose {
	return append(Pose(nil), p.Vertices()...)
}

// Clone returns an independent copy.
func (pose Pose) Clone() Pose {
	return append(Pose(nil), pose...)
}

// CheckShape verifies that pose has one point per figure vertex.
func (pose Pose) CheckShape(p *Problem) error {
	if len(pose) != p.NumVertices() {
		return errors.Wrapf(ErrInvalidPose, "pose has %d vertices, figure has %d", len(pose), p.NumVertices())
	}
	return nil
}

// Translate shifts every vertex by (dx, dy).
func (pose Pose) Translate(dx, dy float64) Pose {
	out := make(Pose, len(pose))
	d := geometry.Point{X: dx, Y: dy}
	for i, v := range pose {
		out[i] = v.Plus(d)
	}
	return out
}

// Rotate turns the pose by deg degrees counter-clockwise around center.
func (pose Pose) Rotate(center geometry.Point, deg float64) Pose {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	out := make(Pose, len(pose))
	for i, v := range pose {
		d := v.Minus(center)
		out[i] = geometry.Point{
			X: center.X + d.X*cos - d.Y*sin,
			Y: center.Y + d.X*sin + d.Y*cos,
		}
	}
	return out
}

// Round snaps every vertex to the nearest lattice point.
func (pose Pose) Round() Pose {
	return pose.apply(math.Round)
}

// Floor snaps every vertex down.
func (pose Pose) Floor() Pose {
	return pose.apply(math.Floor)
}

// Ceil snaps every vertex up.
func (pose Pose) Ceil() Pose {
	return pose.apply(math.Ceil)
}

func (pose Pose) apply(f func(float64) float64) Pose {
	out := make(Pose, len(pose))
	for i, v := range pose {
		out[i] = geometry.Point{X: f(v.X), Y: f(v.Y)}
	}
	return out
}

// MirrorVertex moves a vertex of degree 2 to the mirror image of its current
// spot across the line through its two neighbors. Both edge lengths are
// preserved.
func (pose Pose) MirrorVertex(p *Problem, v int) (Pose, error) {
	if v < 0 || v >= len(pose) {
		return nil, errors.Wrapf(ErrInvalidPose, "vertex %d out of range", v)
	}
	nb := p.Neighbors(v)
	if len(nb) != 2 {
		return nil, errors.Wrapf(ErrInvalidPose, "vertex %d has degree %d, want 2", v, len(nb))
	}
	a, b := pose[nb[0].Vertex], pose[nb[1].Vertex]
	out := pose.Clone()
	out[v] = reflectAcross(pose[v], a, b)
	return out, nil
}

// ReflectVertex moves a vertex of degree 1 around its only neighbor to the
// diametrically opposite spot.
func (pose Pose) ReflectVertex(p *Problem, v int) (Pose, error) {
	if v < 0 || v >= len(pose) {
		return nil, errors.Wrapf(ErrInvalidPose, "vertex %d out of range", v)
	}
	nb := p.Neighbors(v)
	if len(nb) != 1 {
		return nil, errors.Wrapf(ErrInvalidPose, "vertex %d has degree %d, want 1", v, len(nb))
	}
	c := pose[nb[0].Vertex]
	out := pose.Clone()
	out[v] = c.Times(2).Minus(pose[v])
	return out, nil
}

// SnapToHole moves every vertex lying within radius of a hole vertex onto
// the closest such hole vertex.
func (pose Pose) SnapToHole(h *Hole, radius float64) Pose {
	r2 := radius * radius
	out := pose.Clone()
	for i, v := range pose {
		best := math.Inf(1)
		for _, hv := range h.Vertices() {
			if d := geometry.Dist2(v, hv); d <= r2 && d < best {
				best = d
				out[i] = hv
			}
		}
	}
	return out
}

// reflectAcross mirrors p across the line through a and b. When a and b
// coincide the point is mirrored through a instead.
func reflectAcross(p, a, b geometry.Point) geometry.Point {
	dir := b.Minus(a)
	n := geometry.Norm(dir)
	if n == 0 {
		return a.Times(2).Minus(p)
	}
	d := p.Minus(a)
	t := (d.X*dir.X + d.Y*dir.Y) / n
	foot := a.Plus(dir.Times(t))
	return foot.Times(2).Minus(p)
}
