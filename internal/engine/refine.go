package engine

import (
	"context"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/piwi3910/holefit/internal/geometry"
	"github.com/piwi3910/holefit/internal/model"
)

// RefineConfig controls hill-climbing refinement.
type RefineConfig struct {
	Steps       int     `json:"steps"`
	Seed        int64   `json:"seed"`
	FlipWeight  float64 `json:"flip_weight"`  // Relative weight of vertex flips
	ShiftWeight float64 `json:"shift_weight"` // Relative weight of whole-pose shifts
}

// DefaultRefineConfig returns the stock refinement settings.
func DefaultRefineConfig() RefineConfig {
	return RefineConfig{
		Steps:       100000,
		Seed:        1,
		FlipWeight:  75,
		ShiftWeight: 25,
	}
}

// RefineResult is the outcome of Refine.
type RefineResult struct {
	Pose     model.Pose
	Dislikes int64
	Accepted int // Mutations kept
	Improved int // Mutations that lowered dislikes
}

// Refine improves a valid pose by random local moves. A move is kept when
// the pose stays valid and its dislikes do not rise. The returned pose is
// never worse than the input.
func Refine(ctx context.Context, p *model.Problem, pose model.Pose, cfg RefineConfig) (RefineResult, error) {
	if err := pose.CheckShape(p); err != nil {
		return RefineResult{}, err
	}
	if !p.IsValid(pose) {
		return RefineResult{}, errors.Wrap(model.ErrInvalidPose, "refinement needs a valid starting pose")
	}
	if cfg.FlipWeight < 0 || cfg.ShiftWeight < 0 || cfg.FlipWeight+cfg.ShiftWeight <= 0 {
		return RefineResult{}, errors.Errorf("refine weights %g/%g must be non-negative with a positive sum",
			cfg.FlipWeight, cfg.ShiftWeight)
	}

	m := newMutator(p, cfg)
	cur := pose.Clone()
	res := RefineResult{Pose: cur.Clone(), Dislikes: p.Dislikes(cur)}
	score := res.Dislikes

	for step := 0; step < cfg.Steps && score > 0; step++ {
		if step%1000 == 0 {
			if err := ctx.Err(); err != nil {
				res.Pose, res.Dislikes = cur, score
				return res, errors.Wrap(err, "refinement interrupted")
			}
			klog.V(2).Infof("refine step %d: dislikes %d", step, score)
		}

		next, ok := m.mutate(cur)
		if !ok || !p.IsValid(next) {
			continue
		}
		d := p.Dislikes(next)
		if d > score {
			continue
		}
		res.Accepted++
		if d < score {
			res.Improved++
			klog.V(1).Infof("refine step %d: dislikes %d -> %d", step, score, d)
		}
		cur, score = next, d
	}

	res.Pose, res.Dislikes = cur, score
	return res, nil
}

type mutator struct {
	prob   *model.Problem
	rng    *rand.Rand
	pFlip  float64
	sigmaX float64
	sigmaY float64
}

func newMutator(p *model.Problem, cfg RefineConfig) *mutator {
	b := p.Hole().Bounds()
	return &mutator{
		prob:   p,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		pFlip:  cfg.FlipWeight / (cfg.FlipWeight + cfg.ShiftWeight),
		sigmaX: (b.Max.X - b.Min.X) / 2,
		sigmaY: (b.Max.Y - b.Min.Y) / 2,
	}
}

// mutate returns a changed copy of pose, or false when the chosen move does
// not apply.
func (m *mutator) mutate(pose model.Pose) (model.Pose, bool) {
	if m.rng.Float64() < m.pFlip {
		return m.flip(pose)
	}
	dx := math.Round(m.rng.NormFloat64() * m.sigmaX)
	dy := math.Round(m.rng.NormFloat64() * m.sigmaY)
	if dx == 0 && dy == 0 {
		return nil, false
	}
	return pose.Translate(dx, dy), true
}

// flip moves one random vertex while keeping its edges in tolerance. A leaf
// swings to a random angle around its neighbor; a vertex with two edges
// jumps to the other intersection of the rings through it.
func (m *mutator) flip(pose model.Pose) (model.Pose, bool) {
	if len(pose) == 0 {
		return nil, false
	}
	v := m.rng.Intn(len(pose))
	nb := m.prob.Neighbors(v)

	var z geometry.Point
	switch len(nb) {
	case 1:
		c := pose[nb[0].Vertex]
		r := math.Sqrt(geometry.Dist2(pose[v], c))
		z = c.Plus(geometry.Polar(r, m.rng.Float64()*2*math.Pi-math.Pi))
	case 2:
		a, b := pose[nb[0].Vertex], pose[nb[1].Vertex]
		zs := geometry.CircleIntersections(
			geometry.Circle{Center: a, Radius: math.Sqrt(geometry.Dist2(a, pose[v]))},
			geometry.Circle{Center: b, Radius: math.Sqrt(geometry.Dist2(b, pose[v]))},
		)
		if len(zs) != 2 {
			return nil, false
		}
		z = zs[0]
		if geometry.Dist2(pose[v], zs[1]) > geometry.Dist2(pose[v], zs[0]) {
			z = zs[1]
		}
	default:
		return nil, false
	}

	z = geometry.Round(z)
	for _, n := range nb {
		if !m.prob.IsValidNorm(n.Edge, geometry.Dist2(z, pose[n.Vertex])) {
			return nil, false
		}
	}
	out := pose.Clone()
	out[v] = z
	return out, true
}
