// holefit fits a stretchable figure into a hole.
//
// Build:
//   go build -o holefit ./cmd/holefit
//
// Examples:
//   holefit solve problems/42.json --num-poses 5000 --workers 8 --out solutions/42.json --keep-best
//   holefit eval problems/42.json solutions/42.json
//   holefit render problems/42.json solutions/42.json --png 42.png --imgcat
//   holefit serve --addr localhost:8080
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/logrusorgru/aurora"
	"gopkg.in/alecthomas/kingpin.v2"
	"k8s.io/klog/v2"

	"github.com/piwi3910/holefit/internal/model"
	"github.com/piwi3910/holefit/internal/project"
)

// Exit codes besides 0 and 1.
const (
	exitNoPose  = 2 // search or bijection finished without a pose
	exitInvalid = 3 // eval found violations
)

// exitError carries a non-zero exit status without being a failure to report.
type exitError struct {
	code int
	msg  string
}

func (e exitError) Error() string { return e.msg }

// cli holds the parsed global flags shared by every command.
type cli struct {
	appConfigPath string
	verbosity     int
	color         string

	cfg model.AppConfig
	au  aurora.Aurora
}

func main() {
	klog.InitFlags(nil)
	code := run(os.Args[1:])
	klog.Flush()
	os.Exit(code)
}

func run(args []string) int {
	c := &cli{}
	app := kingpin.New("holefit", "Fit a stretchable figure into a hole.")
	app.HelpFlag.Short('h')
	app.Flag("app-config", "Preferences file with default search settings and directories.").
		Default(project.DefaultConfigPath()).StringVar(&c.appConfigPath)
	app.Flag("verbosity", "Log verbosity (klog -v).").Short('v').Default("0").IntVar(&c.verbosity)
	app.Flag("color", "Color output: auto, always or never.").Default("auto").EnumVar(&c.color, "auto", "always", "never")

	commands := map[string]func(context.Context) error{}
	registerSolve(app, c, commands)
	registerTools(app, c, commands)
	registerServe(app, c, commands)

	selected, err := app.Parse(args)
	if err != nil {
		app.Usage(args)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := flag.Set("v", strconv.Itoa(c.verbosity)); err != nil {
		klog.Warningf("failed to set verbosity: %v", err)
	}

	c.cfg, err = project.LoadAppConfig(c.appConfigPath)
	if err != nil {
		klog.Warningf("failed to load preferences from %s, using defaults: %v", c.appConfigPath, err)
		c.cfg = model.DefaultAppConfig()
	}
	c.au = aurora.NewAurora(useColor(c.color))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands[selected](ctx); err != nil {
		if e, ok := err.(exitError); ok {
			if e.msg != "" {
				fmt.Fprintln(os.Stderr, e.msg)
			}
			return e.code
		}
		fmt.Fprintln(os.Stderr, c.au.Red("error:"), err)
		return 1
	}
	return 0
}

// useColor resolves the --color mode; auto colors only terminals.
func useColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	info, err := os.Stderr.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
