package engine

import (
	"math"
	"math/rand"

	"github.com/piwi3910/holefit/internal/geometry"
	"github.com/piwi3910/holefit/internal/model"
)

// stopCheckInterval is how many steps pass between abort checks.
const stopCheckInterval = 64

// strategy selects how candidates for a vertex are generated.
type strategy int

const (
	strategyFree     strategy = iota // No placed neighbor: sample the hole
	strategyTethered                 // One placed neighbor: sample a ring around it
	strategyPinned                   // Two or more: intersect two rings
)

func (s strategy) String() string {
	switch s {
	case strategyTethered:
		return "tethered"
	case strategyPinned:
		return "pinned"
	default:
		return "free"
	}
}

// attempt is the whole state of one placement attempt. Nothing in it is
// shared with other attempts.
type attempt struct {
	prob *model.Problem
	cfg  model.SearchConfig
	rng  *rand.Rand

	order    []int
	back     [][]model.Neighbor
	strategy []strategy
	pose     model.Pose

	stepsLeft int64
	exhausted bool
	stop      func() bool
}

// newAttempt plans an order and prepares a pose buffer with the hints
// already in place.
func newAttempt(p *model.Problem, cfg model.SearchConfig, rng *rand.Rand, stop func() bool) *attempt {
	order, back := planOrder(p, cfg.Hints, rng)

	a := &attempt{
		prob:      p,
		cfg:       cfg,
		rng:       rng,
		order:     order,
		back:      back,
		strategy:  make([]strategy, p.NumVertices()),
		pose:      make(model.Pose, p.NumVertices()),
		stepsLeft: cfg.MaxTotalSteps,
		stop:      stop,
	}
	for v, b := range back {
		switch {
		case len(b) == 0:
			a.strategy[v] = strategyFree
		case len(b) == 1:
			a.strategy[v] = strategyTethered
		default:
			a.strategy[v] = strategyPinned
		}
	}
	for _, h := range cfg.Hints {
		a.pose[h.Vertex] = h.Point
	}
	return a
}

// run places every non-hint vertex. It returns the finished pose, or nil when
// the attempt failed or ran out of budget.
func (a *attempt) run() model.Pose {
	if !a.place(len(a.cfg.Hints)) {
		return nil
	}
	return a.pose.Clone()
}

// steps returns how many candidate steps the attempt consumed.
func (a *attempt) steps() int64 {
	return a.cfg.MaxTotalSteps - a.stepsLeft
}

func (a *attempt) place(i int) bool {
	if i == len(a.order) {
		return true
	}
	v := a.order[i]
	tried := make(map[geometry.Point]bool)

	for local := 0; local < a.cfg.MaxLocalSteps; local++ {
		if a.stepsLeft <= 0 {
			a.exhausted = true
			return false
		}
		if a.stop != nil && a.stepsLeft%stopCheckInterval == 0 && a.stop() {
			a.exhausted = true
			return false
		}
		a.stepsLeft--

		z, ok := a.candidate(i, v)
		if !ok {
			continue
		}
		z = geometry.Round(z)
		if tried[z] {
			continue
		}
		tried[z] = true

		if !fits(a.prob, a.pose, a.back[v], z) {
			continue
		}
		a.pose[v] = z
		if a.place(i + 1) {
			return true
		}
		if a.exhausted {
			return false
		}
	}
	return false
}

// candidate proposes an unrounded position for v, the vertex at order
// position i.
func (a *attempt) candidate(i, v int) (geometry.Point, bool) {
	if a.rng.Float64() < a.cfg.ProbHole {
		if z, ok := a.holeVertex(i, v); ok {
			return z, true
		}
	}

	switch a.strategy[v] {
	case strategyTethered:
		return a.tethered(a.back[v][0]), true
	case strategyPinned:
		return a.pinned(v)
	default:
		return a.free()
	}
}

// holeVertex picks uniformly among the hole vertices that no earlier vertex
// occupies and that v could be placed on.
func (a *attempt) holeVertex(i, v int) (geometry.Point, bool) {
	used := make(map[geometry.Point]bool, i)
	for _, u := range a.order[:i] {
		used[a.pose[u]] = true
	}

	var pick geometry.Point
	count := 0
	for _, h := range a.prob.Hole().Vertices() {
		if used[h] || !fits(a.prob, a.pose, a.back[v], h) {
			continue
		}
		count++
		if a.rng.Intn(count) == 0 {
			pick = h
		}
	}
	return pick, count > 0
}

// free picks a uniformly random lattice point of the hole.
func (a *attempt) free() (geometry.Point, bool) {
	points := a.prob.Hole().Lattice()
	if len(points) == 0 {
		return geometry.Point{}, false
	}
	return points[a.rng.Intn(len(points))], true
}

func (a *attempt) tethered(u model.Neighbor) geometry.Point {
	r := math.Sqrt(a.randomNorm(u.Edge))
	theta := a.rng.Float64()*2*math.Pi - math.Pi
	return a.pose[u.Vertex].Plus(geometry.Polar(r, theta))
}

// pinned intersects the rings around the first placed neighbor and the next
// one sitting at a different position. Without such a pair the vertex is
// treated as tethered.
func (a *attempt) pinned(v int) (geometry.Point, bool) {
	u := a.back[v][0]
	for _, t := range a.back[v][1:] {
		if a.pose[t.Vertex] == a.pose[u.Vertex] {
			continue
		}
		zs := geometry.CircleIntersections(
			geometry.Circle{Center: a.pose[u.Vertex], Radius: math.Sqrt(a.randomNorm(u.Edge))},
			geometry.Circle{Center: a.pose[t.Vertex], Radius: math.Sqrt(a.randomNorm(t.Edge))},
		)
		switch len(zs) {
		case 0:
			return geometry.Point{}, false
		case 1:
			return zs[0], true
		default:
			return zs[a.rng.Intn(2)], true
		}
	}
	return a.tethered(u), true
}

// randomNorm draws an admissible integral squared length for edge e.
func (a *attempt) randomNorm(e int) float64 {
	lo, hi := a.prob.MinNorm(e), a.prob.MaxNorm(e)
	if hi < lo {
		return a.prob.OrigNorm(e)
	}
	return float64(lo + a.rng.Int63n(hi-lo+1))
}

// fits reports whether v can sit at z given the already placed neighbors in
// back. A vertex with no placed neighbor only has to be in the hole.
func fits(p *model.Problem, pose model.Pose, back []model.Neighbor, z geometry.Point) bool {
	if len(back) == 0 {
		return p.Hole().ContainsPoint(z)
	}
	for _, nb := range back {
		w := pose[nb.Vertex]
		if !p.IsValidNorm(nb.Edge, geometry.Dist2(z, w)) {
			return false
		}
		if !p.Hole().ContainsSegment(geometry.Segment{A: w, B: z}) {
			return false
		}
	}
	return true
}

// hintsFit checks every hint against the hints before it.
func hintsFit(p *model.Problem, hints []model.Hint) bool {
	pose := make(model.Pose, p.NumVertices())
	index := make(map[int]int, len(hints))
	for i, h := range hints {
		var back []model.Neighbor
		for _, nb := range p.Neighbors(h.Vertex) {
			if j, ok := index[nb.Vertex]; ok && j < i {
				back = append(back, nb)
			}
		}
		if !fits(p, pose, back, h.Point) {
			return false
		}
		pose[h.Vertex] = h.Point
		index[h.Vertex] = i
	}
	return true
}
