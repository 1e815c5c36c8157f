package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"
	"k8s.io/klog/v2"

	"github.com/piwi3910/holefit/internal/engine"
	"github.com/piwi3910/holefit/internal/export"
	"github.com/piwi3910/holefit/internal/importer"
	"github.com/piwi3910/holefit/internal/model"
	"github.com/piwi3910/holefit/internal/project"
)

type solveCmd struct {
	problem    string
	configFile string
	hintsFile  string
	out        string
	keepBest   bool
	refine     int
	trace      string
	archive    string
	progress   bool

	seed          int64
	numPoses      int
	workers       int
	maxTotalSteps int64
	maxLocalSteps int
	probHole      float64

	// set records which search flags were given explicitly.
	set map[string]bool
}

func registerSolve(app *kingpin.Application, c *cli, commands map[string]func(context.Context) error) {
	s := &solveCmd{set: map[string]bool{}, refine: -1}
	cmd := app.Command("solve", "Search for a pose with the lowest dislikes.")
	cmd.Arg("problem", "Problem JSON file.").Required().ExistingFileVar(&s.problem)
	cmd.Flag("config", "Search settings JSON; flags override it.").ExistingFileVar(&s.configFile)
	cmd.Flag("hints", "Pinned vertices as JSON, CSV or XLSX.").ExistingFileVar(&s.hintsFile)
	cmd.Flag("out", "Write the pose here instead of stdout.").StringVar(&s.out)
	cmd.Flag("keep-best", "With --out, only replace a worse or invalid pose.").BoolVar(&s.keepBest)
	cmd.Flag("refine", "Hill-climbing steps after the search (default from preferences).").IntVar(&s.refine)
	cmd.Flag("trace", "Write the per-restart trace to this XLSX file.").StringVar(&s.trace)
	cmd.Flag("archive", "Write a run record to this JSON file.").StringVar(&s.archive)
	cmd.Flag("progress", "Print progress while searching.").BoolVar(&s.progress)

	mark := func(name string) kingpin.Action {
		return func(*kingpin.ParseContext) error {
			s.set[name] = true
			return nil
		}
	}
	cmd.Flag("seed", "Random seed.").Action(mark("seed")).Int64Var(&s.seed)
	cmd.Flag("num-poses", "Number of restarts.").Action(mark("num-poses")).IntVar(&s.numPoses)
	cmd.Flag("workers", "Restarts run in parallel.").Action(mark("workers")).IntVar(&s.workers)
	cmd.Flag("max-total-steps", "Candidate budget per restart.").Action(mark("max-total-steps")).Int64Var(&s.maxTotalSteps)
	cmd.Flag("max-local-steps", "Candidate budget per vertex visit.").Action(mark("max-local-steps")).IntVar(&s.maxLocalSteps)
	cmd.Flag("prob-hole", "Chance of trying a hole vertex first.").Action(mark("prob-hole")).Float64Var(&s.probHole)

	commands[cmd.FullCommand()] = func(ctx context.Context) error {
		return s.run(ctx, c, os.Stdout)
	}
}

// searchConfig layers preferences, --config and explicit flags.
func (s *solveCmd) searchConfig(c *cli) (model.SearchConfig, error) {
	cfg := c.cfg.Search
	if s.configFile != "" {
		var err error
		if cfg, err = project.LoadSearchConfig(s.configFile); err != nil {
			return cfg, err
		}
	}
	if s.set["seed"] {
		cfg.Seed = s.seed
	}
	if s.set["num-poses"] {
		cfg.NumPoses = s.numPoses
	}
	if s.set["workers"] {
		cfg.Workers = s.workers
	}
	if s.set["max-total-steps"] {
		cfg.MaxTotalSteps = s.maxTotalSteps
	}
	if s.set["max-local-steps"] {
		cfg.MaxLocalSteps = s.maxLocalSteps
	}
	if s.set["prob-hole"] {
		cfg.ProbHole = s.probHole
	}
	if s.hintsFile != "" {
		hints, err := loadHints(s.hintsFile)
		if err != nil {
			return cfg, err
		}
		cfg.Hints = hints
	}
	return cfg, nil
}

func (s *solveCmd) run(ctx context.Context, c *cli, stdout io.Writer) error {
	prob, err := project.LoadProblem(s.problem)
	if err != nil {
		return err
	}
	cfg, err := s.searchConfig(c)
	if err != nil {
		return err
	}
	solver, err := engine.NewSolver(prob, cfg)
	if err != nil {
		return err
	}
	if s.progress {
		solver.ProgressInterval = time.Duration(c.cfg.ProgressInterval) * time.Millisecond
		solver.OnProgress = func(p engine.Progress) {
			best := "none"
			if p.Found {
				best = fmt.Sprint(p.BestDislikes)
			}
			fmt.Fprintf(os.Stderr, "%s: %d/%d restarts, best %s\n", p.Name, p.Done, p.Total, best)
		}
	}

	res, solveErr := solver.Solve(ctx)
	if solveErr != nil && !errors.Is(solveErr, context.Canceled) {
		return solveErr
	}
	if solveErr != nil {
		klog.Warningf("%s: interrupted, keeping the best pose so far", res.Name)
	}

	steps := c.cfg.RefineSteps
	if s.refine >= 0 {
		steps = s.refine
	}
	if res.Found() && steps > 0 && solveErr == nil {
		rc := engine.DefaultRefineConfig()
		rc.Steps, rc.Seed = steps, cfg.Seed
		ref, err := engine.Refine(ctx, prob, res.Pose, rc)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		if ref.Pose != nil && ref.Dislikes < res.Dislikes {
			klog.Infof("%s: refinement lowered dislikes %d -> %d", res.Name, res.Dislikes, ref.Dislikes)
			res.Pose, res.Dislikes = ref.Pose, ref.Dislikes
		}
	}

	if s.trace != "" {
		if err := export.ExportTrace(s.trace, res); err != nil {
			return err
		}
	}
	if s.archive != "" {
		rec := model.NewRunRecord(res.Name, s.problem, cfg, res.Summary(), res.Pose)
		if err := project.SaveRun(s.archive, rec); err != nil {
			return err
		}
	}

	summary := res.Summary()
	if !res.Found() {
		return exitError{code: exitNoPose, msg: fmt.Sprintf("%s %s: no pose found in %d restarts (%d steps)",
			c.au.Yellow("no solution"), res.Name, summary.Restarts, summary.TotalSteps)}
	}
	fmt.Fprintf(os.Stderr, "%s %s: %d dislikes from restart %d (%d/%d restarts succeeded, %s)\n",
		c.au.Green("solved"), res.Name, res.Dislikes, res.BestRestart,
		summary.Successes, summary.Restarts, summary.Elapsed)

	return s.writePose(prob, res.Pose, stdout)
}

func (s *solveCmd) writePose(prob *model.Problem, pose model.Pose, stdout io.Writer) error {
	if s.out == "" {
		return writeJSON(stdout, pose)
	}
	if !s.keepBest {
		return project.SavePose(s.out, pose)
	}
	outcome, err := project.SavePoseIfBetter(s.out, prob, pose)
	if err != nil {
		return err
	}
	if outcome.Written {
		klog.Infof("wrote %s (%d dislikes)", s.out, outcome.NewDislikes)
	} else {
		klog.Infof("kept %s: its %d dislikes beat %d", s.out, outcome.OldDislikes, outcome.NewDislikes)
	}
	return nil
}

// loadHints reads pinned vertices from JSON ([[v, [x, y]], ...]), CSV or XLSX.
func loadHints(path string) ([]model.Hint, error) {
	var result importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read hints: %w", err)
		}
		var hints []model.Hint
		if err := json.Unmarshal(data, &hints); err != nil {
			return nil, errors.Wrapf(model.ErrInvalidHint, "%s: %v", path, err)
		}
		return hints, nil
	case ".xlsx":
		result = importer.ImportHintsExcel(path)
	default:
		result = importer.ImportHintsCSV(path)
	}
	if len(result.Errors) > 0 {
		return nil, errors.Wrapf(model.ErrInvalidHint, "%s:\n  %s", path, strings.Join(result.Errors, "\n  "))
	}
	return result.Hints, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
