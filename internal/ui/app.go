// Package ui provides the holefit viewer: a window that draws a hole with a
// pose, edits the pose by hand and runs the solver on it.
package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"k8s.io/klog/v2"

	"github.com/piwi3910/holefit/internal/model"
	"github.com/piwi3910/holefit/internal/project"
	"github.com/piwi3910/holefit/internal/ui/widgets"
)

const recentLimit = 10

var errBusy = errors.New("wait for the running search to finish or cancel it")

// App holds all application state and UI references.
type App struct {
	window     fyne.Window
	config     model.AppConfig
	configPath string
	theme      *HoleFitTheme

	prob     *model.Problem
	probPath string
	pose     model.Pose
	hints    []model.Hint
	history  *History

	// cancel stops the running search or refinement, if any.
	cancel context.CancelFunc

	// UI references for dynamic updates
	canvas   *widgets.PoseCanvas
	status   *widget.Label
	progress *widget.ProgressBar
	buttons  map[string]*widget.Button
}

// NewApp creates the viewer for window. Preferences are saved back to
// configPath when they change; an empty path keeps them in memory.
func NewApp(window fyne.Window, cfg model.AppConfig, configPath string) *App {
	return &App{
		window:     window,
		config:     cfg,
		configPath: configPath,
		theme:      NewHoleFitTheme(cfg.Theme),
		history:    NewHistory(),
		buttons:    map[string]*widget.Button{},
	}
}

// Theme returns the theme the application should use.
func (a *App) Theme() fyne.Theme { return a.theme }

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	var recent []*fyne.MenuItem
	for _, path := range a.config.RecentProblems {
		path := path
		recent = append(recent, fyne.NewMenuItem(filepath.Base(path), func() {
			a.showIfError(a.OpenProblem(path))
		}))
	}
	openRecent := fyne.NewMenuItem("Open Recent", nil)
	openRecent.ChildMenu = fyne.NewMenu("", recent...)
	openRecent.Disabled = len(recent) == 0

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Problem...", a.openProblemDialog),
		openRecent,
		fyne.NewMenuItem("Open Pose...", a.openPoseDialog),
		fyne.NewMenuItem("Save Pose...", a.savePoseDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Problem from DXF/SVG...", a.importDrawingDialog),
		fyne.NewMenuItem("Import Hints from CSV/Excel...", a.importHintsDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PDF Report...", a.exportPDFDialog),
		fyne.NewMenuItem("Export PNG...", a.exportPNGDialog),
		fyne.NewMenuItem("Export DXF...", a.exportDXFDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			a.window.Close()
		}),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", a.undo),
		fyne.NewMenuItem("Redo", a.redo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset to Figure", a.resetPose),
		fyne.NewMenuItem("Round", a.roundPose),
		fyne.NewMenuItem("Translate...", a.translateDialog),
		fyne.NewMenuItem("Rotate...", a.rotateDialog),
		fyne.NewMenuItem("Snap to Hole", a.snapPose),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Mirror Selected Vertex", a.mirrorSelected),
		fyne.NewMenuItem("Reflect Selected Vertex", a.reflectSelected),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Solve", a.runSolve),
		fyne.NewMenuItem("Refine", a.runRefine),
		fyne.NewMenuItem("Match Hole Vertices", a.runBijection),
		fyne.NewMenuItem("Cancel", a.cancelRun),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Hints", func() {
			a.hints = nil
			a.refreshStatus()
		}),
		fyne.NewMenuItem("Settings...", a.showSettingsDialog),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", a.showAboutDialog),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, toolsMenu, helpMenu))
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About holefit",
		"holefit: fit a stretchable figure into a hole\n\n"+
			"Open a problem, then solve it or move the pose by hand.\n"+
			"Red edges break a length or containment rule.",
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	a.canvas = widgets.NewPoseCanvas(640, 480)
	a.canvas.OnVertexTapped = func(v int) {
		a.refreshStatus()
	}
	a.status = widget.NewLabel("")
	a.status.Wrapping = fyne.TextWrapWord
	a.progress = widget.NewProgressBar()
	a.progress.Hide()

	button := func(key, label string, icon fyne.Resource, tapped func()) *widget.Button {
		b := widget.NewButtonWithIcon(label, icon, tapped)
		a.buttons[key] = b
		return b
	}

	toolbar := container.NewVBox(
		widget.NewLabelWithStyle("File", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		button("open", "Open Problem", theme.FolderOpenIcon(), a.openProblemDialog),
		button("openPose", "Open Pose", theme.FileIcon(), a.openPoseDialog),
		button("save", "Save Pose", theme.DocumentSaveIcon(), a.savePoseDialog),
		button("pdf", "Export PDF", theme.DocumentPrintIcon(), a.exportPDFDialog),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Search", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		button("solve", "Solve", theme.MediaPlayIcon(), a.runSolve),
		button("refine", "Refine", theme.MediaFastForwardIcon(), a.runRefine),
		button("cancel", "Cancel", theme.MediaStopIcon(), a.cancelRun),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Edit", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(2,
			button("undo", "Undo", theme.ContentUndoIcon(), a.undo),
			button("redo", "Redo", theme.ContentRedoIcon(), a.redo),
		),
		button("round", "Round", theme.ViewRefreshIcon(), a.roundPose),
		button("translate", "Translate", theme.MoveDownIcon(), a.translateDialog),
		button("rotate", "Rotate", theme.ViewRestoreIcon(), a.rotateDialog),
		button("snap", "Snap to Hole", theme.ZoomFitIcon(), a.snapPose),
	)

	bottom := container.NewVBox(a.progress, a.status)
	a.refreshAll()
	return container.NewBorder(nil, bottom, container.NewVScroll(toolbar), nil, a.canvas)
}

// OpenProblem loads a problem, shows its figure as the starting pose and
// records it in the recent list.
func (a *App) OpenProblem(path string) error {
	if a.cancel != nil {
		return errBusy
	}
	p, err := project.LoadProblem(path)
	if err != nil {
		return err
	}
	a.setProblem(p, path)

	a.config.AddRecentProblem(path, recentLimit)
	a.saveConfig()
	a.SetupMenus()
	return nil
}

// OpenPose loads a pose for the current problem, keeping the old one on the
// undo stack.
func (a *App) OpenPose(path string) error {
	if a.prob == nil {
		return fmt.Errorf("open a problem before loading a pose")
	}
	pose, err := project.LoadPose(path)
	if err != nil {
		return err
	}
	if err := pose.CheckShape(a.prob); err != nil {
		return err
	}
	a.setPose(pose, "Open "+filepath.Base(path))
	return nil
}

func (a *App) setProblem(p *model.Problem, path string) {
	a.prob = p
	a.probPath = path
	a.pose = model.FromFigure(p)
	a.hints = nil
	a.history.Clear()
	a.canvas.Select(-1)
	a.window.SetTitle("holefit - " + filepath.Base(path))
	klog.V(1).Infof("opened %s: %d hole vertices, %d figure vertices", path, len(p.Hole().Vertices()), p.NumVertices())
	a.refreshAll()
}

// setPose records the current pose for undo and shows pose instead.
func (a *App) setPose(pose model.Pose, label string) {
	a.history.Push(MakeSnapshot(a.pose, label))
	a.pose = pose
	a.refreshAll()
}

func (a *App) refreshAll() {
	if a.canvas == nil {
		return
	}
	var report model.Report
	if a.prob != nil {
		report = a.prob.FullValidate(a.pose)
	}
	a.canvas.Set(a.prob, a.pose, report)
	a.refreshStatus()
}

// StatusText describes the current problem and pose in one line.
func (a *App) StatusText() string {
	if a.prob == nil {
		return "No problem loaded"
	}
	parts := []string{
		project.ProblemID(a.probPath),
		fmt.Sprintf("%d vertices, %d edges, epsilon %d", a.prob.NumVertices(), len(a.prob.Edges()), a.prob.Epsilon()),
	}
	report := a.prob.FullValidate(a.pose)
	if report.Valid() {
		parts = append(parts, fmt.Sprintf("valid, %d dislikes", *report.Dislikes))
	} else {
		parts = append(parts, fmt.Sprintf("%d violations", len(report.Errors)))
	}
	if len(a.hints) > 0 {
		parts = append(parts, fmt.Sprintf("%d hints", len(a.hints)))
	}
	if v := a.canvas.Selected(); v >= 0 && v < len(a.pose) {
		parts = append(parts, fmt.Sprintf("vertex %d at (%g, %g)", v, a.pose[v].X, a.pose[v].Y))
	}
	return strings.Join(parts, "  |  ")
}

func (a *App) refreshStatus() {
	a.status.SetText(a.StatusText())

	running := a.cancel != nil
	loaded := a.prob != nil
	for key, b := range a.buttons {
		enabled := loaded && !running
		switch key {
		case "open":
			enabled = !running
		case "cancel":
			enabled = running
		case "undo":
			enabled = enabled && a.history.CanUndo()
		case "redo":
			enabled = enabled && a.history.CanRedo()
		}
		if enabled {
			b.Enable()
		} else {
			b.Disable()
		}
	}
}

func (a *App) saveConfig() {
	if a.configPath == "" {
		return
	}
	if err := project.SaveAppConfig(a.configPath, a.config); err != nil {
		klog.Warningf("failed to save preferences: %v", err)
	}
}

func (a *App) showIfError(err error) {
	if err != nil {
		dialog.ShowError(err, a.window)
	}
}

// requirePose shows a notice and returns false when there is nothing to edit.
func (a *App) requirePose() bool {
	if a.prob == nil {
		dialog.ShowInformation("No problem", "Open a problem first.", a.window)
		return false
	}
	if a.cancel != nil {
		dialog.ShowError(errBusy, a.window)
		return false
	}
	return true
}
