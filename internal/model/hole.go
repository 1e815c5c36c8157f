package model

import (
	"math"
	"sort"
	"sync"

	"github.com/jbeda/geom"
	"github.com/pkg/errors"

	"github.com/piwi3910/holefit/internal/geometry"
)

// maxGridCells caps the lattice precomputed for a hole.
const maxGridCells = 1 << 26

// CellState classifies a point relative to the hole.
type CellState uint8

const (
	Outside CellState = iota
	Border
	Inside
)

func (s CellState) String() string {
	switch s {
	case Inside:
		return "inside"
	case Border:
		return "border"
	default:
		return "outside"
	}
}

// Hole is a simple polygon with a precomputed classification of every
// integer lattice point inside its bounding box.
type Hole struct {
	vertices []geometry.Point
	borders  []geometry.Segment
	bounds   geom.Rect

	xmin, ymin int
	width      int
	height     int
	grid       []CellState

	// rays are far-away targets used for parity tests; alternatives are
	// tried in order when a ray grazes a hole vertex.
	rays []geometry.Point

	latticeOnce sync.Once
	lattice     []geometry.Point
}

// NewHole builds the containment index for the polygon given by vertices.
func NewHole(vertices []geometry.Point) (*Hole, error) {
	if len(vertices) < 3 {
		return nil, errors.Wrapf(ErrInvalidProblem, "hole needs at least 3 vertices, got %d", len(vertices))
	}
	for i, v := range vertices {
		if !geometry.IsIntegral(v) {
			return nil, errors.Wrapf(ErrInvalidProblem, "hole vertex %d (%g, %g) is not integral", i, v.X, v.Y)
		}
	}

	h := &Hole{
		vertices: append([]geometry.Point(nil), vertices...),
		borders:  make([]geometry.Segment, len(vertices)),
		bounds:   geometry.BoundingBox(vertices),
	}
	for i := range vertices {
		h.borders[i] = geometry.Segment{A: vertices[i], B: vertices[(i+1)%len(vertices)]}
	}

	h.xmin = int(math.Floor(h.bounds.Min.X))
	h.ymin = int(math.Floor(h.bounds.Min.Y))
	h.width = int(math.Ceil(h.bounds.Max.X)) - h.xmin + 1
	h.height = int(math.Ceil(h.bounds.Max.Y)) - h.ymin + 1
	if int64(h.width)*int64(h.height) > maxGridCells {
		return nil, errors.Wrapf(ErrInvalidProblem, "hole bounding box %dx%d is too large", h.width, h.height)
	}

	far := h.bounds.Max.X + 1e6
	for k := 0; k < 8; k++ {
		h.rays = append(h.rays, geometry.Point{
			X: far + float64(k)*7919,
			Y: 0.5 + float64(k)*0.1234567,
		})
	}

	h.grid = make([]CellState, h.width*h.height)
	for y := 0; y < h.height; y++ {
		for x := 0; x < h.width; x++ {
			p := geometry.Point{X: float64(h.xmin + x), Y: float64(h.ymin + y)}
			h.grid[y*h.width+x] = h.classify(p)
		}
	}

	return h, nil
}

// classify computes the state of p from scratch.
func (h *Hole) classify(p geometry.Point) CellState {
	for _, b := range h.borders {
		if geometry.OnSegment(b, p) {
			return Border
		}
	}

	for _, target := range h.rays {
		ray := geometry.Segment{A: p, B: target}
		inside := false
		grazed := false
		for _, b := range h.borders {
			switch geometry.Intersects(ray, b) {
			case geometry.Crossing:
				inside = !inside
			case geometry.Touching:
				grazed = true
			}
			if grazed {
				break
			}
		}
		if grazed {
			continue
		}
		if inside {
			return Inside
		}
		return Outside
	}

	// Every ray grazed a vertex. Treat the point as on the border.
	return Border
}

// State classifies p. Integral points inside the bounding box are answered
// from the precomputed grid.
func (h *Hole) State(p geometry.Point) CellState {
	if p.X < h.bounds.Min.X || p.X > h.bounds.Max.X || p.Y < h.bounds.Min.Y || p.Y > h.bounds.Max.Y {
		return Outside
	}
	if geometry.IsIntegral(p) {
		return h.grid[(int(p.Y)-h.ymin)*h.width+int(p.X)-h.xmin]
	}
	return h.classify(p)
}

// ContainsPoint reports whether p is inside the hole or on its border.
func (h *Hole) ContainsPoint(p geometry.Point) bool {
	return h.State(p) != Outside
}

// ContainsSegment reports whether every point of s is inside the hole or on
// its border. The segment may run along the border and touch hole vertices
// but never cross a border edge.
func (h *Hole) ContainsSegment(s geometry.Segment) bool {
	qa, qb := h.State(s.A), h.State(s.B)
	if qa == Outside || qb == Outside {
		return false
	}

	touching := make([]geometry.Point, 0, 4)
	if qa == Border {
		touching = append(touching, s.A)
	}
	if qb == Border {
		touching = append(touching, s.B)
	}
	for _, b := range h.borders {
		switch geometry.Intersects(s, b) {
		case geometry.Crossing:
			return false
		case geometry.Touching:
			if geometry.OnSegment(s, b.A) {
				touching = append(touching, b.A)
			}
			if geometry.OnSegment(s, b.B) {
				touching = append(touching, b.B)
			}
		}
	}

	sort.Slice(touching, func(i, j int) bool { return geometry.Less(touching[i], touching[j]) })
	for i := 1; i < len(touching); i++ {
		if touching[i-1] == touching[i] {
			continue
		}
		if h.State(geometry.Midpoint(touching[i-1], touching[i])) == Outside {
			return false
		}
	}
	return true
}

// Vertices returns the hole polygon.
func (h *Hole) Vertices() []geometry.Point { return h.vertices }

// Borders returns the closed boundary as segments; border i runs from vertex
// i to vertex i+1.
func (h *Hole) Borders() []geometry.Segment { return h.borders }

// Bounds returns the bounding box of the hole.
func (h *Hole) Bounds() geom.Rect { return h.bounds }

// Lattice returns every integer point that is inside or on the hole, in
// row-major order. The slice is computed once and shared; callers must not
// modify it.
func (h *Hole) Lattice() []geometry.Point {
	h.latticeOnce.Do(func() {
		for y := 0; y < h.height; y++ {
			for x := 0; x < h.width; x++ {
				if h.grid[y*h.width+x] != Outside {
					h.lattice = append(h.lattice, geometry.Point{X: float64(h.xmin + x), Y: float64(h.ymin + y)})
				}
			}
		}
	})
	return h.lattice
}
