package engine

import (
	"context"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/piwi3910/holefit/internal/model"
)

// MaxBijectionVertices caps the figure size SolveBijection will enumerate.
const MaxBijectionVertices = 10

// ErrTooLarge is returned when exhaustive enumeration would not finish.
var ErrTooLarge = errors.New("figure too large for exhaustive search")

// SolveBijection looks for a pose that puts every figure vertex on a
// distinct hole vertex, which scores zero dislikes. It only applies when the
// figure and the hole have the same number of vertices; otherwise it reports
// no pose without searching. Assignments are tried in lexicographic order
// and the first valid one wins.
func SolveBijection(ctx context.Context, p *model.Problem) (model.Pose, bool, error) {
	n := p.NumVertices()
	hole := p.Hole().Vertices()
	if n != len(hole) {
		klog.V(1).Infof("bijection: figure has %d vertices, hole has %d", n, len(hole))
		return nil, false, nil
	}
	if n > MaxBijectionVertices {
		return nil, false, errors.Wrapf(ErrTooLarge, "%d vertices, limit %d", n, MaxBijectionVertices)
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	pose := make(model.Pose, n)

	for count := 0; ; count++ {
		if count%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, false, errors.Wrap(err, "bijection search interrupted")
			}
		}
		for i, h := range perm {
			pose[i] = hole[h]
		}
		if p.IsValid(pose) {
			klog.V(1).Infof("bijection: found assignment after %d permutations", count+1)
			return pose.Clone(), true, nil
		}
		if !nextPermutation(perm) {
			return nil, false, nil
		}
	}
}

// nextPermutation advances xs to the next permutation in lexicographic order
// and reports false after the last one.
func nextPermutation(xs []int) bool {
	i := len(xs) - 2
	for i >= 0 && xs[i] >= xs[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(xs) - 1
	for xs[j] <= xs[i] {
		j--
	}
	xs[i], xs[j] = xs[j], xs[i]
	for l, r := i+1, len(xs)-1; l < r; l, r = l+1, r-1 {
		xs[l], xs[r] = xs[r], xs[l]
	}
	return true
}
