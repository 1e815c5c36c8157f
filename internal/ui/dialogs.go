package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"k8s.io/klog/v2"

	"github.com/piwi3910/holefit/internal/export"
	"github.com/piwi3910/holefit/internal/importer"
	"github.com/piwi3910/holefit/internal/project"
)

// ─── Open / Save ───────────────────────────────────────────

func (a *App) openProblemDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		a.showIfError(a.OpenProblem(reader.URI().Path()))
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

func (a *App) openPoseDialog() {
	if !a.requirePose() {
		return
	}
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		a.showIfError(a.OpenPose(reader.URI().Path()))
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

func (a *App) savePoseDialog() {
	if !a.requirePose() {
		return
	}
	a.saveDialog(project.ProblemID(a.probPath)+".json", func(path string) error {
		return project.SavePose(path, a.pose)
	})
}

// saveDialog asks for a destination and runs write on it.
func (a *App) saveDialog(defaultName string, write func(path string) error) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := write(path); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		klog.V(1).Infof("wrote %s", path)
		dialog.ShowInformation("Saved", fmt.Sprintf("Saved to %s", path), a.window)
	}, a.window)
	d.SetFileName(defaultName)
	d.Show()
}

// ─── Export ────────────────────────────────────────────────

func (a *App) exportPDFDialog() {
	if !a.requirePose() {
		return
	}
	a.saveDialog(project.ProblemID(a.probPath)+".pdf", func(path string) error {
		return export.ExportPDF(path, a.prob, a.pose, a.prob.FullValidate(a.pose))
	})
}

func (a *App) exportPNGDialog() {
	if !a.requirePose() {
		return
	}
	a.saveDialog(project.ProblemID(a.probPath)+".png", func(path string) error {
		return export.RenderPNG(path, a.prob, a.pose, 8)
	})
}

func (a *App) exportDXFDialog() {
	if !a.requirePose() {
		return
	}
	a.saveDialog(project.ProblemID(a.probPath)+".dxf", func(path string) error {
		return export.ExportDXF(path, a.prob, a.pose)
	})
}

// ─── Import ────────────────────────────────────────────────

// importDrawingDialog builds a problem from a DXF or SVG drawing. The
// drawing carries no tolerance, so it is asked for first.
func (a *App) importDrawingDialog() {
	if a.cancel != nil {
		dialog.ShowError(errBusy, a.window)
		return
	}
	epsilon := widget.NewEntry()
	epsilon.SetText("0")
	dialog.ShowForm("Import Drawing", "Choose File", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Epsilon (millionths)", epsilon)},
		func(ok bool) {
			if !ok {
				return
			}
			eps, err := strconv.ParseInt(strings.TrimSpace(epsilon.Text), 10, 64)
			if err != nil || eps < 0 {
				dialog.ShowError(fmt.Errorf("epsilon must be a non-negative integer"), a.window)
				return
			}
			d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
				if err != nil || reader == nil {
					return
				}
				defer reader.Close()
				a.importDrawing(reader.URI().Path(), eps)
			}, a.window)
			d.SetFilter(storage.NewExtensionFileFilter([]string{".dxf", ".svg"}))
			d.Show()
		}, a.window)
}

func (a *App) importDrawing(path string, epsilon int64) {
	var result importer.ProblemResult
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		result = importer.ImportSVG(path, epsilon)
	} else {
		result = importer.ImportDXF(path, epsilon)
	}
	if len(result.Errors) > 0 || result.Problem == nil {
		dialog.ShowError(fmt.Errorf("Errors encountered during import:\n\n%s", strings.Join(result.Errors, "\n")), a.window)
		return
	}
	a.setProblem(result.Problem, path)

	msg := fmt.Sprintf("Imported a hole of %d vertices and a figure of %d edges.",
		len(result.Problem.Hole().Vertices()), len(result.Problem.Edges()))
	if len(result.Warnings) > 0 {
		msg += "\n\n" + strings.Join(result.Warnings, "\n")
	}
	dialog.ShowInformation("Import Complete", msg, a.window)
}

func (a *App) importHintsDialog() {
	if !a.requirePose() {
		return
	}
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		a.handleHintsResult(a.importHints(reader.URI().Path()))
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".tsv", ".txt", ".xlsx"}))
	d.Show()
}

func (a *App) importHints(path string) importer.ImportResult {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return importer.ImportHintsExcel(path)
	}
	return importer.ImportHintsCSV(path)
}

func (a *App) handleHintsResult(result importer.ImportResult) {
	if len(result.Errors) > 0 {
		dialog.ShowError(fmt.Errorf("Errors encountered during import:\n\n%s", strings.Join(result.Errors, "\n")), a.window)
	}
	if len(result.Hints) == 0 {
		return
	}
	if err := a.prob.CheckHints(result.Hints); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.hints = result.Hints
	a.refreshStatus()

	msg := fmt.Sprintf("Pinned %d vertices for the next search.", len(result.Hints))
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\n\nHowever, %d rows had errors and were skipped.", len(result.Errors))
	}
	dialog.ShowInformation("Import Complete", msg, a.window)
}

// ─── Pose edits ────────────────────────────────────────────

// floatForm asks for named numbers and passes them to apply in order.
func (a *App) floatForm(title string, labels, defaults []string, apply func([]float64)) {
	entries := make([]*widget.Entry, len(labels))
	items := make([]*widget.FormItem, len(labels))
	for i, l := range labels {
		entries[i] = widget.NewEntry()
		entries[i].SetText(defaults[i])
		items[i] = widget.NewFormItem(l, entries[i])
	}
	dialog.ShowForm(title, "Apply", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		vals := make([]float64, len(entries))
		for i, e := range entries {
			v, err := strconv.ParseFloat(strings.TrimSpace(e.Text), 64)
			if err != nil {
				dialog.ShowError(fmt.Errorf("%s: %q is not a number", labels[i], e.Text), a.window)
				return
			}
			vals[i] = v
		}
		apply(vals)
	}, a.window)
}

func (a *App) translateDialog() {
	if !a.requirePose() {
		return
	}
	a.floatForm("Translate Pose", []string{"dx", "dy"}, []string{"0", "0"}, func(v []float64) {
		a.Translate(v[0], v[1])
	})
}

func (a *App) rotateDialog() {
	if !a.requirePose() {
		return
	}
	a.floatForm("Rotate Pose", []string{"Degrees"}, []string{"90"}, func(v []float64) {
		a.Rotate(v[0])
	})
}
