// Package engine searches for poses: a randomized backtracking placer run
// under a multi-restart driver, plus hill-climbing refinement and an
// exhaustive solver for small figures that must cover every hole vertex.
package engine

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"k8s.io/klog/v2"

	"github.com/piwi3910/holefit/internal/model"
)

// Attempt records the outcome of one restart.
type Attempt struct {
	Restart  int   `json:"restart"`
	Found    bool  `json:"found"`
	Dislikes int64 `json:"dislikes"`
	Steps    int64 `json:"steps"`
}

// Result is the outcome of a search. Pose is nil when no restart produced
// a pose; that is a normal outcome, not an error.
type Result struct {
	Name        string
	Pose        model.Pose
	Dislikes    int64
	BestRestart int
	Attempts    []Attempt
	Elapsed     time.Duration
}

// Found reports whether any restart produced a pose.
func (r Result) Found() bool { return r.Pose != nil }

// TotalSteps sums the candidate steps over all recorded restarts.
func (r Result) TotalSteps() int64 {
	var total int64
	for _, a := range r.Attempts {
		total += a.Steps
	}
	return total
}

// Summary condenses the result for archiving.
func (r Result) Summary() model.RunSummary {
	s := model.RunSummary{
		Found:       r.Found(),
		Dislikes:    r.Dislikes,
		BestRestart: r.BestRestart,
		Restarts:    len(r.Attempts),
		TotalSteps:  r.TotalSteps(),
		Elapsed:     r.Elapsed.String(),
	}
	for _, a := range r.Attempts {
		if a.Found {
			s.Successes++
		}
	}
	return s
}

// Progress is reported while a search runs.
type Progress struct {
	Name         string `json:"name"`
	Done         int    `json:"done"`
	Total        int    `json:"total"`
	Found        bool   `json:"found"`
	BestDislikes int64  `json:"best_dislikes"`
	BestRestart  int    `json:"best_restart"`
}

// Solver runs the multi-restart search on one problem.
type Solver struct {
	Problem *model.Problem
	Config  model.SearchConfig
	Name    string

	// OnProgress, when set, is called after restarts finish, at most once
	// per ProgressInterval. It is never called concurrently.
	OnProgress       func(Progress)
	ProgressInterval time.Duration
}

// NewSolver checks cfg against p and returns a ready solver.
func NewSolver(p *model.Problem, cfg model.SearchConfig) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := p.CheckHints(cfg.Hints); err != nil {
		return nil, err
	}
	return &Solver{Problem: p, Config: cfg, Name: model.NewRunName()}, nil
}

// Solve is a shorthand for NewSolver followed by Solver.Solve.
func Solve(ctx context.Context, p *model.Problem, cfg model.SearchConfig) (Result, error) {
	s, err := NewSolver(p, cfg)
	if err != nil {
		return Result{BestRestart: -1}, err
	}
	return s.Solve(ctx)
}

// restartSeed derives the seed of restart i from the run seed.
func restartSeed(seed int64, i int) int64 {
	return int64(uint64(seed) ^ (uint64(i)+1)*0x9e3779b97f4a7c15)
}

// workerCount is the number of goroutines Solve starts: never more than
// there are restarts to run.
func workerCount(cfg model.SearchConfig) int {
	if cfg.Workers < cfg.NumPoses {
		return cfg.Workers
	}
	return cfg.NumPoses
}

// runRestart performs restart i in isolation.
func (s *Solver) runRestart(i int, stop func() bool) (model.Pose, Attempt) {
	rng := rand.New(rand.NewSource(restartSeed(s.Config.Seed, i)))
	a := newAttempt(s.Problem, s.Config, rng, stop)
	pose := a.run()

	rec := Attempt{Restart: i, Steps: a.steps()}
	if pose != nil {
		rec.Found = true
		rec.Dislikes = s.Problem.Dislikes(pose)
	}
	return pose, rec
}

// Solve runs up to Config.NumPoses restarts and returns the best pose found.
// Restarts run on Config.Workers goroutines; the result does not depend on
// the worker count. A pose with zero dislikes ends the search early. When ctx
// is cancelled the best result so far is returned along with ctx.Err().
func (s *Solver) Solve(ctx context.Context) (Result, error) {
	start := time.Now()
	cfg := s.Config
	total := cfg.NumPoses

	if !hintsFit(s.Problem, cfg.Hints) {
		klog.Warningf("%s: hints cannot be placed together, no pose possible", s.Name)
		return Result{Name: s.Name, BestRestart: -1, Elapsed: time.Since(start)}, nil
	}

	var (
		mu       sync.Mutex
		poses    = make([]model.Pose, total)
		attempts = make([]Attempt, total)
		finished = make([]bool, total)
		done     int
		best     = -1
		stopAt   atomic.Int64
	)
	stopAt.Store(int64(total))

	interval := rate.Inf
	if s.ProgressInterval > 0 {
		interval = rate.Every(s.ProgressInterval)
	}
	limiter := rate.NewLimiter(interval, 1)

	better := func(i int) bool {
		if best < 0 {
			return true
		}
		if attempts[i].Dislikes != attempts[best].Dislikes {
			return attempts[i].Dislikes < attempts[best].Dislikes
		}
		return i < best
	}

	report := func(i int, pose model.Pose, rec Attempt) {
		mu.Lock()
		defer mu.Unlock()

		poses[i], attempts[i], finished[i] = pose, rec, true
		done++
		if rec.Found {
			if better(i) {
				best = i
				klog.V(1).Infof("%s: restart %d found a pose with %d dislikes after %d steps", s.Name, i, rec.Dislikes, rec.Steps)
			}
			if rec.Dislikes == 0 {
				for {
					cur := stopAt.Load()
					if int64(i) >= cur || stopAt.CompareAndSwap(cur, int64(i)) {
						break
					}
				}
			}
		} else {
			klog.V(2).Infof("%s: restart %d found no pose after %d steps", s.Name, i, rec.Steps)
		}

		if s.OnProgress != nil && limiter.Allow() {
			s.OnProgress(s.progress(done, total, best, attempts))
		}
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workerCount(cfg); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if int64(i) > stopAt.Load() || ctx.Err() != nil {
					continue
				}
				stop := func() bool { return int64(i) > stopAt.Load() || ctx.Err() != nil }
				pose, rec := s.runRestart(i, stop)
				report(i, pose, rec)
			}
		}()
	}

feed:
	for i := 0; i < total; i++ {
		if int64(i) > stopAt.Load() {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	// Only restarts up to the first zero count, and only those that ran to
	// completion; this is exactly what a single worker would have produced.
	last := int(stopAt.Load())
	if last >= total {
		last = total - 1
	}
	res := Result{Name: s.Name, BestRestart: -1}
	for i := 0; i <= last; i++ {
		if !finished[i] {
			continue
		}
		res.Attempts = append(res.Attempts, attempts[i])
		if !attempts[i].Found {
			continue
		}
		if res.Pose == nil || attempts[i].Dislikes < res.Dislikes {
			res.Pose = poses[i]
			res.Dislikes = attempts[i].Dislikes
			res.BestRestart = i
		}
	}
	res.Elapsed = time.Since(start)

	if s.OnProgress != nil {
		s.OnProgress(s.progress(len(res.Attempts), total, res.BestRestart, attempts))
	}

	if res.Found() {
		klog.Infof("%s: best pose from restart %d with %d dislikes (%d restarts, %d steps, %s)",
			s.Name, res.BestRestart, res.Dislikes, len(res.Attempts), res.TotalSteps(), res.Elapsed)
	} else {
		klog.Infof("%s: no pose found in %d restarts (%d steps, %s)",
			s.Name, len(res.Attempts), res.TotalSteps(), res.Elapsed)
	}

	if err := ctx.Err(); err != nil {
		return res, errors.Wrap(err, "search interrupted")
	}
	return res, nil
}

func (s *Solver) progress(done, total, best int, attempts []Attempt) Progress {
	p := Progress{Name: s.Name, Done: done, Total: total, BestRestart: best}
	if best >= 0 {
		p.Found = true
		p.BestDislikes = attempts[best].Dislikes
	}
	return p
}
