package ui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/holefit/internal/model"
)

var themeNames = []string{"system", "light", "dark"}

// showSettingsDialog edits the search defaults and preferences. Entries
// that do not parse keep their previous value.
func (a *App) showSettingsDialog() {
	cfg := a.config

	intEntry := func(val int64, set func(int64)) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(strconv.FormatInt(val, 10))
		e.OnChanged = func(text string) {
			if v, err := strconv.ParseInt(text, 10, 64); err == nil {
				set(v)
			}
		}
		e.Validator = func(text string) error {
			_, err := strconv.ParseInt(text, 10, 64)
			return err
		}
		return e
	}

	probHole := widget.NewSlider(0, 1)
	probHole.Step = 0.05
	probHole.Value = cfg.Search.ProbHole
	probLabel := widget.NewLabel(fmt.Sprintf("%.2f", cfg.Search.ProbHole))
	probHole.OnChanged = func(v float64) {
		cfg.Search.ProbHole = v
		probLabel.SetText(fmt.Sprintf("%.2f", v))
	}

	searchSection := widget.NewCard("Search", "Defaults for Solve",
		container.NewGridWithColumns(2,
			widget.NewLabel("Seed"), intEntry(cfg.Search.Seed, func(v int64) { cfg.Search.Seed = v }),
			widget.NewLabel("Restarts"), intEntry(int64(cfg.Search.NumPoses), func(v int64) { cfg.Search.NumPoses = int(v) }),
			widget.NewLabel("Workers"), intEntry(int64(cfg.Search.Workers), func(v int64) { cfg.Search.Workers = int(v) }),
			widget.NewLabel("Steps per Restart"), intEntry(cfg.Search.MaxTotalSteps, func(v int64) { cfg.Search.MaxTotalSteps = v }),
			widget.NewLabel("Steps per Vertex"), intEntry(int64(cfg.Search.MaxLocalSteps), func(v int64) { cfg.Search.MaxLocalSteps = int(v) }),
			widget.NewLabel("Hole Vertex Preference"), container.NewBorder(nil, nil, nil, probLabel, probHole),
		))

	refineSection := widget.NewCard("Refine", "0 refines with the default step count and skips refinement after Solve",
		container.NewGridWithColumns(2,
			widget.NewLabel("Steps"), intEntry(int64(cfg.RefineSteps), func(v int64) { cfg.RefineSteps = int(v) }),
		))

	themeSelect := widget.NewSelect(themeNames, func(name string) {
		cfg.Theme = name
	})
	themeSelect.SetSelected(cfg.Theme)
	if themeSelect.Selected == "" {
		themeSelect.SetSelected("system")
	}
	appearanceSection := widget.NewCard("Appearance", "",
		container.NewGridWithColumns(2,
			widget.NewLabel("Theme"), themeSelect,
		))

	content := container.NewVScroll(container.NewVBox(searchSection, refineSection, appearanceSection))
	content.SetMinSize(fyne.NewSize(420, 420))

	d := dialog.NewCustomConfirm("Settings", "Save", "Cancel", content, func(ok bool) {
		if !ok {
			return
		}
		if err := a.applySettings(cfg); err != nil {
			dialog.ShowError(err, a.window)
		}
	}, a.window)
	d.Show()
}

// applySettings validates cfg, makes it current and persists it.
func (a *App) applySettings(cfg model.AppConfig) error {
	if err := cfg.Search.Validate(); err != nil {
		return err
	}
	if cfg.RefineSteps < 0 {
		return fmt.Errorf("refine steps must not be negative, got %d", cfg.RefineSteps)
	}
	a.config = cfg
	a.theme.SetVariantName(cfg.Theme)
	if app := fyne.CurrentApp(); app != nil {
		app.Settings().SetTheme(a.theme)
	}
	a.saveConfig()
	a.refreshStatus()
	return nil
}
