package ui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"k8s.io/klog/v2"

	"github.com/piwi3910/holefit/internal/engine"
	"github.com/piwi3910/holefit/internal/geometry"
	"github.com/piwi3910/holefit/internal/model"
)

// snapRadius is how far Snap to Hole reaches for a hole vertex.
const snapRadius = 1.5

// ─── History ───────────────────────────────────────────────

func (a *App) undo() {
	snap, ok := a.history.Undo(MakeSnapshot(a.pose, "current"))
	if !ok {
		return
	}
	a.pose = snap.Pose
	a.refreshAll()
}

func (a *App) redo() {
	snap, ok := a.history.Redo(MakeSnapshot(a.pose, "current"))
	if !ok {
		return
	}
	a.pose = snap.Pose
	a.refreshAll()
}

// ─── Pose edits ────────────────────────────────────────────

func (a *App) resetPose() {
	if a.requirePose() {
		a.setPose(model.FromFigure(a.prob), "Reset")
	}
}

func (a *App) roundPose() {
	if a.requirePose() {
		a.setPose(a.pose.Round(), "Round")
	}
}

func (a *App) snapPose() {
	if a.requirePose() {
		a.setPose(a.pose.SnapToHole(a.prob.Hole(), snapRadius), "Snap to hole")
	}
}

// Translate shifts the whole pose.
func (a *App) Translate(dx, dy float64) {
	if a.requirePose() {
		a.setPose(a.pose.Translate(dx, dy), fmt.Sprintf("Translate %g, %g", dx, dy))
	}
}

// Rotate turns the pose about the selected vertex, or about the centre of
// its bounding box when nothing is selected.
func (a *App) Rotate(deg float64) {
	if !a.requirePose() {
		return
	}
	a.setPose(a.pose.Rotate(a.pivot(), deg), fmt.Sprintf("Rotate %g°", deg))
}

func (a *App) pivot() geometry.Point {
	if v := a.canvas.Selected(); v >= 0 && v < len(a.pose) {
		return a.pose[v]
	}
	b := geometry.BoundingBox(a.pose)
	return geometry.Point{
		X: math.Round((b.Min.X + b.Max.X) / 2),
		Y: math.Round((b.Min.Y + b.Max.Y) / 2),
	}
}

func (a *App) mirrorSelected() {
	a.editSelected("Mirror", a.pose.MirrorVertex)
}

func (a *App) reflectSelected() {
	a.editSelected("Reflect", a.pose.ReflectVertex)
}

func (a *App) editSelected(label string, edit func(*model.Problem, int) (model.Pose, error)) {
	if !a.requirePose() {
		return
	}
	v := a.canvas.Selected()
	if v < 0 {
		dialog.ShowInformation("No vertex selected", "Click a pose vertex first.", a.window)
		return
	}
	pose, err := edit(a.prob, v)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.setPose(pose, fmt.Sprintf("%s vertex %d", label, v))
}

// ─── Search ────────────────────────────────────────────────

// startRun marks a background job as running and returns its context.
func (a *App) startRun() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.progress.SetValue(0)
	a.progress.Show()
	a.refreshStatus()
	return ctx
}

// endRun must be called on the UI goroutine.
func (a *App) endRun() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.progress.Hide()
	a.refreshStatus()
}

func (a *App) cancelRun() {
	if a.cancel != nil {
		klog.V(1).Info("cancelling background run")
		a.cancel()
	}
}

func (a *App) runSolve() {
	if !a.requirePose() {
		return
	}
	cfg := a.config.Search
	cfg.Hints = a.hints
	solver, err := engine.NewSolver(a.prob, cfg)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	solver.ProgressInterval = 100 * time.Millisecond
	solver.OnProgress = func(pr engine.Progress) {
		fyne.Do(func() {
			a.progress.SetValue(float64(pr.Done) / float64(pr.Total))
			if pr.Found {
				a.status.SetText(fmt.Sprintf("%s: %d/%d restarts, best %d dislikes", pr.Name, pr.Done, pr.Total, pr.BestDislikes))
			} else {
				a.status.SetText(fmt.Sprintf("%s: %d/%d restarts, no pose yet", pr.Name, pr.Done, pr.Total))
			}
		})
	}

	ctx := a.startRun()
	refineSteps := a.config.RefineSteps
	go func() {
		res, err := solver.Solve(ctx)
		if err == nil && res.Found() && refineSteps > 0 {
			rc := engine.DefaultRefineConfig()
			rc.Steps = refineSteps
			rc.Seed = cfg.Seed
			if ref, rerr := engine.Refine(ctx, solver.Problem, res.Pose, rc); rerr == nil {
				res.Pose, res.Dislikes = ref.Pose, ref.Dislikes
			}
		}
		fyne.Do(func() {
			a.finishSolve(res, err)
		})
	}()
}

// finishSolve shows the outcome of a search. A cancelled search still
// offers its best pose.
func (a *App) finishSolve(res engine.Result, err error) {
	a.endRun()
	if err != nil && !errors.Is(err, context.Canceled) {
		dialog.ShowError(err, a.window)
		return
	}
	if !res.Found() {
		dialog.ShowInformation("No pose found",
			fmt.Sprintf("%s tried %d restarts without a valid pose.", res.Name, len(res.Attempts)), a.window)
		return
	}
	a.setPose(res.Pose, "Solve "+res.Name)
}

func (a *App) runRefine() {
	if !a.requirePose() {
		return
	}
	if !a.prob.IsValid(a.pose) {
		dialog.ShowInformation("Invalid pose", "Refinement starts from a valid pose. Solve or fix the pose first.", a.window)
		return
	}
	rc := engine.DefaultRefineConfig()
	if a.config.RefineSteps > 0 {
		rc.Steps = a.config.RefineSteps
	}
	rc.Seed = a.config.Search.Seed
	prob, start := a.prob, a.pose.Clone()

	ctx := a.startRun()
	go func() {
		res, err := engine.Refine(ctx, prob, start, rc)
		fyne.Do(func() {
			a.finishRefine(res, err)
		})
	}()
}

func (a *App) finishRefine(res engine.RefineResult, err error) {
	a.endRun()
	if err != nil && !errors.Is(err, context.Canceled) {
		dialog.ShowError(err, a.window)
		return
	}
	if res.Pose == nil || res.Improved == 0 {
		dialog.ShowInformation("Refine", "No improvement found.", a.window)
		return
	}
	a.setPose(res.Pose, fmt.Sprintf("Refine to %d dislikes", res.Dislikes))
}

func (a *App) runBijection() {
	if !a.requirePose() {
		return
	}
	prob := a.prob
	ctx := a.startRun()
	go func() {
		pose, ok, err := engine.SolveBijection(ctx, prob)
		fyne.Do(func() {
			a.endRun()
			switch {
			case err != nil:
				dialog.ShowError(err, a.window)
			case !ok:
				dialog.ShowInformation("No match", "No assignment of figure vertices to hole vertices fits.", a.window)
			default:
				a.setPose(pose, "Match hole vertices")
			}
		})
	}()
}
