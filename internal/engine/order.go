package engine

import (
	"math/rand"

	"github.com/piwi3910/holefit/internal/model"
)

// planOrder returns a placement order and, for every vertex, the neighbors
// that precede it in that order. Hint vertices come first in hint order;
// after that the unplaced vertex with the most placed neighbors is taken
// next, ties broken uniformly at random.
func planOrder(p *model.Problem, hints []model.Hint, rng *rand.Rand) ([]int, [][]model.Neighbor) {
	n := p.NumVertices()
	order := make([]int, 0, n)
	back := make([][]model.Neighbor, n)
	placed := make([]bool, n)

	fix := func(u int) {
		placed[u] = true
		order = append(order, u)

		nb := append([]model.Neighbor(nil), p.Neighbors(u)...)
		rng.Shuffle(len(nb), func(i, j int) { nb[i], nb[j] = nb[j], nb[i] })
		for _, x := range nb {
			if !placed[x.Vertex] {
				back[x.Vertex] = append(back[x.Vertex], model.Neighbor{Vertex: u, Edge: x.Edge})
			}
		}
	}

	for _, h := range hints {
		fix(h.Vertex)
	}

	ties := make([]int, 0, n)
	for len(order) < n {
		best := -1
		ties = ties[:0]
		for v := 0; v < n; v++ {
			if placed[v] {
				continue
			}
			switch d := len(back[v]); {
			case d > best:
				best = d
				ties = append(ties[:0], v)
			case d == best:
				ties = append(ties, v)
			}
		}
		fix(ties[rng.Intn(len(ties))])
	}

	return order, back
}
