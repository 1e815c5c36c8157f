package model

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/piwi3910/holefit/internal/geometry"
)

// ProblemFile is the on-disk layout of a problem. Unknown fields such as
// bonuses are ignored.
type ProblemFile struct {
	Hole   [][2]float64 `json:"hole"`
	Figure struct {
		Vertices [][2]float64 `json:"vertices"`
		Edges    [][2]int     `json:"edges"`
	} `json:"figure"`
	Epsilon int64 `json:"epsilon"`
}

// PoseFile is the on-disk layout of a pose.
type PoseFile struct {
	Vertices [][2]float64 `json:"vertices"`
}

// ParseProblem decodes and validates a problem.
func ParseProblem(data []byte) (*Problem, error) {
	var f ProblemFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(ErrInvalidProblem, "decode: %v", err)
	}
	return f.Build()
}

// Build turns the file layout into a validated Problem.
func (f ProblemFile) Build() (*Problem, error) {
	fig := Figure{
		Vertices: toPoints(f.Figure.Vertices),
		Edges:    make([]Edge, len(f.Figure.Edges)),
	}
	for i, e := range f.Figure.Edges {
		fig.Edges[i] = Edge{U: e[0], V: e[1]}
	}
	return NewProblem(toPoints(f.Hole), fig, f.Epsilon)
}

// MarshalProblem encodes p in the problem file layout.
func MarshalProblem(p *Problem) ([]byte, error) {
	var f ProblemFile
	f.Hole = fromPoints(p.Hole().Vertices())
	f.Figure.Vertices = fromPoints(p.Vertices())
	f.Figure.Edges = make([][2]int, len(p.Edges()))
	for i, e := range p.Edges() {
		f.Figure.Edges[i] = [2]int{e.U, e.V}
	}
	f.Epsilon = p.Epsilon()
	return json.MarshalIndent(f, "", "  ")
}

// ParsePose decodes a pose. Its shape is not checked against any problem.
func ParsePose(data []byte) (Pose, error) {
	var f PoseFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(ErrInvalidPose, "decode: %v", err)
	}
	return Pose(toPoints(f.Vertices)), nil
}

// MarshalJSON encodes the pose as {"vertices": [[x, y], ...]}.
func (pose Pose) MarshalJSON() ([]byte, error) {
	return json.Marshal(PoseFile{Vertices: fromPoints(pose)})
}

// UnmarshalJSON decodes {"vertices": [[x, y], ...]}.
func (pose *Pose) UnmarshalJSON(data []byte) error {
	var f PoseFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*pose = Pose(toPoints(f.Vertices))
	return nil
}

func toPoints(xs [][2]float64) []geometry.Point {
	out := make([]geometry.Point, len(xs))
	for i, x := range xs {
		out[i] = geometry.Point{X: x[0], Y: x[1]}
	}
	return out
}

func fromPoints(ps []geometry.Point) [][2]float64 {
	out := make([][2]float64, len(ps))
	for i, p := range ps {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}
