package model

import (
	"fmt"
	"math"

	"github.com/piwi3910/holefit/internal/geometry"
)

// ViolationType names the kind of rule a pose breaks.
type ViolationType string

const (
	ViolationVertexCount   ViolationType = "wrong_vertex_count"
	ViolationVertexOutside ViolationType = "vertex_outside_hole"
	ViolationEdgeOutside   ViolationType = "not_inside_hole"
	ViolationLength        ViolationType = "invalid_length"
)

// Violation is one broken rule of a pose.
type Violation struct {
	Type    ViolationType `json:"type"`
	Edge    *[2]int       `json:"edge,omitempty"`
	Vertex  *int          `json:"vertex,omitempty"`
	Message string        `json:"message"`
}

// Report is the outcome of FullValidate. Dislikes is set only for valid poses.
type Report struct {
	Errors   []Violation `json:"errors"`
	Dislikes *int64      `json:"dislikes,omitempty"`
}

// Valid reports whether the pose had no violations.
func (r Report) Valid() bool { return len(r.Errors) == 0 }

// IsValid reports whether pose satisfies every length and containment rule.
func (p *Problem) IsValid(pose Pose) bool {
	if len(pose) != p.NumVertices() {
		return false
	}
	for i, e := range p.figure.Edges {
		a, b := pose[e.U], pose[e.V]
		if !p.IsValidNorm(i, geometry.Dist2(a, b)) {
			return false
		}
		if !p.hole.ContainsSegment(geometry.Segment{A: a, B: b}) {
			return false
		}
	}
	for v := range pose {
		if len(p.adj[v]) == 0 && !p.hole.ContainsPoint(pose[v]) {
			return false
		}
	}
	return true
}

// Dislikes sums, over hole vertices, the squared distance to the nearest
// pose vertex, truncated to an integer. An empty pose scores zero.
func (p *Problem) Dislikes(pose Pose) int64 {
	if len(pose) == 0 {
		return 0
	}
	var total float64
	for _, h := range p.hole.Vertices() {
		best := math.Inf(1)
		for _, v := range pose {
			if d := geometry.Dist2(h, v); d < best {
				best = d
			}
		}
		total += best
	}
	return int64(total)
}

// FullValidate lists every violation of pose. Unlike IsValid it does not
// stop at the first problem.
func (p *Problem) FullValidate(pose Pose) Report {
	report := Report{Errors: []Violation{}}

	if len(pose) != p.NumVertices() {
		report.Errors = append(report.Errors, Violation{
			Type:    ViolationVertexCount,
			Message: fmt.Sprintf("pose has %d vertices, figure has %d", len(pose), p.NumVertices()),
		})
		return report
	}

	for v, pt := range pose {
		if !p.hole.ContainsPoint(pt) {
			v := v
			report.Errors = append(report.Errors, Violation{
				Type:    ViolationVertexOutside,
				Vertex:  &v,
				Message: fmt.Sprintf("vertex %d at (%g, %g) is outside the hole", v, pt.X, pt.Y),
			})
		}
	}

	for i, e := range p.figure.Edges {
		a, b := pose[e.U], pose[e.V]
		edge := [2]int{e.U, e.V}
		if !p.hole.ContainsSegment(geometry.Segment{A: a, B: b}) {
			report.Errors = append(report.Errors, Violation{
				Type:    ViolationEdgeOutside,
				Edge:    &edge,
				Message: fmt.Sprintf("edge (%d, %d) leaves the hole", e.U, e.V),
			})
		}
		if d := geometry.Dist2(a, b); !p.IsValidNorm(i, d) {
			report.Errors = append(report.Errors, Violation{
				Type: ViolationLength,
				Edge: &edge,
				Message: fmt.Sprintf("edge (%d, %d) has squared length %g, allowed [%d, %d]",
					e.U, e.V, d, p.minNorm[i], p.maxNorm[i]),
			})
		}
	}

	if report.Valid() {
		d := p.Dislikes(pose)
		report.Dislikes = &d
	}
	return report
}
