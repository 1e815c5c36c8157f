package importer

import (
	"fmt"
	"math"

	"k8s.io/klog/v2"

	"github.com/piwi3910/holefit/internal/geometry"
	"github.com/piwi3910/holefit/internal/model"
)

// ProblemResult holds the results of a drawing import.
type ProblemResult struct {
	Problem  *model.Problem
	Errors   []string
	Warnings []string
}

// segment is a drawn line between two points, before rounding.
type segment struct {
	start geometry.Point
	end   geometry.Point
}

// figureBuilder turns drawn segments into figure vertices and edges. Endpoints
// are rounded to the lattice and merged when they land on the same point.
type figureBuilder struct {
	result   *ProblemResult
	vertices []geometry.Point
	index    map[geometry.Point]int
	edges    map[[2]int]bool
	figure   model.Figure
	rounded  int
}

func newFigureBuilder(result *ProblemResult) *figureBuilder {
	return &figureBuilder{
		result: result,
		index:  map[geometry.Point]int{},
		edges:  map[[2]int]bool{},
	}
}

func (b *figureBuilder) snap(p geometry.Point) geometry.Point {
	r := geometry.Round(p)
	if r != p {
		b.rounded++
	}
	return r
}

func (b *figureBuilder) vertex(p geometry.Point) int {
	p = b.snap(p)
	if i, ok := b.index[p]; ok {
		return i
	}
	i := len(b.figure.Vertices)
	b.index[p] = i
	b.figure.Vertices = append(b.figure.Vertices, p)
	return i
}

func (b *figureBuilder) addSegment(s segment) {
	u, v := b.vertex(s.start), b.vertex(s.end)
	if u == v {
		b.result.Warnings = append(b.result.Warnings,
			fmt.Sprintf("Skipped zero-length edge at (%g, %g)", b.figure.Vertices[u].X, b.figure.Vertices[u].Y))
		return
	}
	key := [2]int{u, v}
	if v < u {
		key = [2]int{v, u}
	}
	if b.edges[key] {
		b.result.Warnings = append(b.result.Warnings,
			fmt.Sprintf("Skipped duplicate edge %d-%d", key[0], key[1]))
		return
	}
	b.edges[key] = true
	b.figure.Edges = append(b.figure.Edges, model.Edge{U: u, V: v})
}

// holeFrom rounds an outline to the lattice and drops repeated points.
func (b *figureBuilder) holeFrom(outline []geometry.Point) []geometry.Point {
	var hole []geometry.Point
	for _, p := range outline {
		p = b.snap(p)
		if len(hole) > 0 && hole[len(hole)-1] == p {
			continue
		}
		hole = append(hole, p)
	}
	if len(hole) > 1 && hole[0] == hole[len(hole)-1] {
		hole = hole[:len(hole)-1]
	}
	return hole
}

// build assembles the problem, recording any failure in the result.
func (b *figureBuilder) build(source string, hole []geometry.Point, epsilon int64) {
	if b.rounded > 0 {
		b.result.Warnings = append(b.result.Warnings,
			fmt.Sprintf("Rounded %d non-integral coordinates to the nearest lattice point", b.rounded))
	}
	if len(hole) < 3 {
		b.result.Errors = append(b.result.Errors, "Hole outline needs at least 3 distinct vertices")
		return
	}
	if len(b.figure.Edges) == 0 {
		b.result.Errors = append(b.result.Errors, "No figure edges found")
		return
	}

	p, err := model.NewProblem(hole, b.figure, epsilon)
	if err != nil {
		b.result.Errors = append(b.result.Errors, fmt.Sprintf("Cannot build problem: %v", err))
		return
	}
	b.result.Problem = p

	for _, w := range b.result.Warnings {
		klog.Warningf("%s import: %s", source, w)
	}
	klog.V(1).Infof("%s import: hole with %d vertices, figure with %d vertices and %d edges",
		source, len(hole), p.NumVertices(), len(p.Edges()))
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b geometry.Point, tolerance float64) bool {
	return geometry.Norm(a.Minus(b)) <= tolerance
}

// chainSegments connects segments end to end and returns the longest closed
// outline found, or nil if none closes.
func chainSegments(segs []segment, tolerance float64) []geometry.Point {
	used := make([]bool, len(segs))
	var best []geometry.Point

	for start := range segs {
		if used[start] {
			continue
		}
		chain := []geometry.Point{segs[start].start, segs[start].end}
		used[start] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
				} else if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
				} else {
					continue
				}
				used[i] = true
				changed = true
				break
			}
		}

		if len(chain) < 4 || !pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			continue
		}
		chain = chain[:len(chain)-1]
		if outlineArea(chain) > outlineArea(best) {
			best = chain
		}
	}
	return best
}

// outlineArea computes the absolute area of a polygon using the shoelace formula.
func outlineArea(o []geometry.Point) float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		area += geometry.Cross(o[i], o[(i+1)%n])
	}
	return math.Abs(area) / 2
}
