package model

import (
	"math"

	"github.com/pkg/errors"

	"github.com/piwi3910/holefit/internal/geometry"
)

// EpsilonDivisor converts the integer epsilon of a problem into a fraction.
const EpsilonDivisor = 1e6

var (
	// ErrInvalidProblem is returned for structurally broken problem input.
	ErrInvalidProblem = errors.New("invalid problem")
	// ErrInvalidHint is returned for hints that cannot apply to the problem.
	ErrInvalidHint = errors.New("invalid hint")
	// ErrInvalidPose is returned for pose input that does not match the problem.
	ErrInvalidPose = errors.New("invalid pose")
)

// Edge joins two figure vertices. It is unordered.
type Edge struct {
	U int `json:"u"`
	V int `json:"v"`
}

// Other returns the endpoint of e opposite to v.
func (e Edge) Other(v int) int {
	if e.U == v {
		return e.V
	}
	return e.U
}

// Figure is the linked shape that has to be posed inside the hole.
type Figure struct {
	Vertices []geometry.Point
	Edges    []Edge
}

// Neighbor is one entry of a vertex's adjacency list.
type Neighbor struct {
	Vertex int // The vertex on the other side of the edge
	Edge   int // Index into Figure.Edges
}

// Problem bundles a hole, a figure and the stretch tolerance. It is
// immutable once built and safe to share between goroutines.
type Problem struct {
	hole    *Hole
	figure  Figure
	epsilon int64

	origNorm []float64
	minNorm  []int64
	maxNorm  []int64
	adj      [][]Neighbor
}

// NewProblem validates the input and precomputes per-edge length bounds and
// the adjacency lists.
func NewProblem(holeVertices []geometry.Point, figure Figure, epsilon int64) (*Problem, error) {
	if epsilon < 0 {
		return nil, errors.Wrapf(ErrInvalidProblem, "negative epsilon %d", epsilon)
	}
	hole, err := NewHole(holeVertices)
	if err != nil {
		return nil, err
	}

	n := len(figure.Vertices)
	for i, e := range figure.Edges {
		if e.U < 0 || e.U >= n || e.V < 0 || e.V >= n {
			return nil, errors.Wrapf(ErrInvalidProblem,
				"edge %d (%d, %d) references a vertex outside [0, %d)", i, e.U, e.V, n)
		}
		if e.U == e.V {
			return nil, errors.Wrapf(ErrInvalidProblem, "edge %d is a self-loop on vertex %d", i, e.U)
		}
	}

	p := &Problem{
		hole: hole,
		figure: Figure{
			Vertices: append([]geometry.Point(nil), figure.Vertices...),
			Edges:    append([]Edge(nil), figure.Edges...),
		},
		epsilon:  epsilon,
		origNorm: make([]float64, len(figure.Edges)),
		minNorm:  make([]int64, len(figure.Edges)),
		maxNorm:  make([]int64, len(figure.Edges)),
		adj:      make([][]Neighbor, n),
	}

	for i, e := range p.figure.Edges {
		d := geometry.Dist2(p.figure.Vertices[e.U], p.figure.Vertices[e.V])
		p.origNorm[i] = d
		p.minNorm[i], p.maxNorm[i] = normBounds(d, epsilon)
		p.adj[e.U] = append(p.adj[e.U], Neighbor{Vertex: e.V, Edge: i})
		p.adj[e.V] = append(p.adj[e.V], Neighbor{Vertex: e.U, Edge: i})
	}

	return p, nil
}

// maxNormBound caps MaxNorm so that bounds and their spans fit in an int64.
const maxNormBound = 1 << 60

// normBounds returns ceil(d*(1-eps)) and floor(d*(1+eps)) with
// eps = epsilon/1e6. Integral lengths use exact integer arithmetic so that
// boundary lengths are not lost to rounding; that path only runs while
// d*(1e6+epsilon) fits in an int64.
func normBounds(d float64, epsilon int64) (int64, int64) {
	const div = int64(EpsilonDivisor)
	if d == math.Trunc(d) && d < 1e12 && epsilon <= div {
		di := int64(d)
		lo := ceilDiv(di*(div-epsilon), div)
		hi := di * (div + epsilon) / div
		if lo < 0 {
			lo = 0
		}
		return lo, hi
	}
	eps := float64(epsilon) / EpsilonDivisor
	lo := math.Min(math.Max(0, math.Ceil(d*(1-eps))), maxNormBound)
	hi := math.Min(math.Floor(d*(1+eps)), maxNormBound)
	return int64(lo), int64(hi)
}

// ceilDiv divides rounding toward positive infinity. b must be positive.
func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && a > 0 {
		q++
	}
	return q
}

// Hole returns the containment index of the hole.
func (p *Problem) Hole() *Hole { return p.hole }

// Figure returns the original figure. Callers must not modify it.
func (p *Problem) Figure() Figure { return p.figure }

// Epsilon returns the tolerance in parts per million.
func (p *Problem) Epsilon() int64 { return p.epsilon }

// NumVertices returns the number of figure vertices.
func (p *Problem) NumVertices() int { return len(p.figure.Vertices) }

// Vertices returns the original figure vertices.
func (p *Problem) Vertices() []geometry.Point { return p.figure.Vertices }

// Edges returns the figure edges.
func (p *Problem) Edges() []Edge { return p.figure.Edges }

// Neighbors returns the adjacency list of v.
func (p *Problem) Neighbors(v int) []Neighbor { return p.adj[v] }

// Degree returns the number of edges incident to v.
func (p *Problem) Degree(v int) int { return len(p.adj[v]) }

// OrigNorm returns the squared original length of edge e.
func (p *Problem) OrigNorm(e int) float64 { return p.origNorm[e] }

// MinNorm returns the smallest admissible integral squared length of edge e.
func (p *Problem) MinNorm(e int) int64 { return p.minNorm[e] }

// MaxNorm returns the largest admissible integral squared length of edge e.
func (p *Problem) MaxNorm(e int) int64 { return p.maxNorm[e] }

// IsValidNorm reports whether a posed squared length d is within tolerance
// for edge e: |d - d0| * 1e6 <= epsilon * d0.
func (p *Problem) IsValidNorm(e int, d float64) bool {
	d0 := p.origNorm[e]
	return math.Abs(d-d0)*EpsilonDivisor <= float64(p.epsilon)*d0
}
