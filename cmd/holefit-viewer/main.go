// holefit-viewer draws a hole with a pose and lets you edit, solve and
// refine it by hand.
//
// Build:
//   go build -o holefit-viewer ./cmd/holefit-viewer
//
// Usage:
//   holefit-viewer [-v=1] [PROBLEM.json [POSE.json]]
package main

import (
	"flag"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"k8s.io/klog/v2"

	"github.com/piwi3910/holefit/internal/model"
	"github.com/piwi3910/holefit/internal/project"
	"github.com/piwi3910/holefit/internal/ui"
)

func main() {
	klog.InitFlags(nil)
	configPath := flag.String("config", project.DefaultConfigPath(), "preferences file")
	flag.Parse()
	defer klog.Flush()

	cfg, err := project.LoadAppConfig(*configPath)
	if err != nil {
		klog.Warningf("failed to load preferences from %s, using defaults: %v", *configPath, err)
		cfg = model.DefaultAppConfig()
	}

	application := app.NewWithID("com.piwi3910.holefit")
	window := application.NewWindow("holefit")

	appUI := ui.NewApp(window, cfg, *configPath)
	application.Settings().SetTheme(appUI.Theme())
	appUI.SetupMenus()
	window.SetContent(appUI.Build())
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	if args := flag.Args(); len(args) > 0 {
		if err := appUI.OpenProblem(args[0]); err != nil {
			klog.Errorf("failed to open %s: %v", args[0], err)
		} else if len(args) > 1 {
			if err := appUI.OpenPose(args[1]); err != nil {
				klog.Errorf("failed to open %s: %v", args[1], err)
			}
		}
	}

	window.ShowAndRun()
}
