package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/piwi3910/holefit/internal/engine"
	"github.com/piwi3910/holefit/internal/export"
	"github.com/piwi3910/holefit/internal/importer"
	"github.com/piwi3910/holefit/internal/model"
	"github.com/piwi3910/holefit/internal/project"
)

func registerTools(app *kingpin.Application, c *cli, commands map[string]func(context.Context) error) {
	registerEval(app, c, commands)
	registerRefine(app, c, commands)
	registerBijection(app, c, commands)
	registerStats(app, c, commands)
	registerRender(app, c, commands)
	registerImport(app, c, commands)
	registerCompare(app, c, commands)
	registerRuns(app, c, commands)
}

// loadProblemAndPose reads a problem and a pose meant for it.
func loadProblemAndPose(problemPath, posePath string) (*model.Problem, model.Pose, error) {
	prob, err := project.LoadProblem(problemPath)
	if err != nil {
		return nil, nil, err
	}
	pose, err := project.LoadPose(posePath)
	if err != nil {
		return nil, nil, err
	}
	return prob, pose, nil
}

// ─── eval ──────────────────────────────────────────────────

func registerEval(app *kingpin.Application, c *cli, commands map[string]func(context.Context) error) {
	var problem, pose string
	cmd := app.Command("eval", "Print the validation report of a pose.")
	cmd.Arg("problem", "Problem JSON file.").Required().ExistingFileVar(&problem)
	cmd.Arg("pose", "Pose JSON file.").Required().ExistingFileVar(&pose)

	commands[cmd.FullCommand()] = func(context.Context) error {
		prob, p, err := loadProblemAndPose(problem, pose)
		if err != nil {
			return err
		}
		return evalPose(c, prob, p, os.Stdout, os.Stderr)
	}
}

// evalPose writes the report JSON to stdout and a readable summary to
// stderr. Violations give exitInvalid.
func evalPose(c *cli, prob *model.Problem, pose model.Pose, stdout, stderr io.Writer) error {
	report := prob.FullValidate(pose)
	if err := writeJSON(stdout, report); err != nil {
		return err
	}
	if report.Valid() {
		fmt.Fprintf(stderr, "%s %d dislikes\n", c.au.Green("valid"), *report.Dislikes)
		return nil
	}
	fmt.Fprintf(stderr, "%s %d violations\n", c.au.Red("invalid"), len(report.Errors))
	for _, v := range report.Errors {
		fmt.Fprintf(stderr, "  %s %s\n", c.au.Yellow(string(v.Type)), v.Message)
	}
	return exitError{code: exitInvalid}
}

// ─── refine ────────────────────────────────────────────────

func registerRefine(app *kingpin.Application, c *cli, commands map[string]func(context.Context) error) {
	var problem, pose, out string
	rc := engine.DefaultRefineConfig()
	cmd := app.Command("refine", "Lower the dislikes of a valid pose by hill climbing.")
	cmd.Arg("problem", "Problem JSON file.").Required().ExistingFileVar(&problem)
	cmd.Arg("pose", "Valid pose JSON file.").Required().ExistingFileVar(&pose)
	cmd.Flag("steps", "Mutations to try.").Default(fmt.Sprint(rc.Steps)).IntVar(&rc.Steps)
	cmd.Flag("seed", "Random seed.").Default(fmt.Sprint(rc.Seed)).Int64Var(&rc.Seed)
	cmd.Flag("out", "Write the pose here instead of stdout.").StringVar(&out)

	commands[cmd.FullCommand()] = func(ctx context.Context) error {
		prob, p, err := loadProblemAndPose(problem, pose)
		if err != nil {
			return err
		}
		res, err := engine.Refine(ctx, prob, p, rc)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s %d dislikes (%d accepted, %d improving moves)\n",
			c.au.Green("refined"), res.Dislikes, res.Accepted, res.Improved)
		if out != "" {
			return project.SavePose(out, res.Pose)
		}
		return writeJSON(os.Stdout, res.Pose)
	}
}

// ─── bijection ─────────────────────────────────────────────

func registerBijection(app *kingpin.Application, c *cli, commands map[string]func(context.Context) error) {
	var problem, out string
	cmd := app.Command("bijection", "Place every figure vertex on its own hole vertex.")
	cmd.Arg("problem", "Problem JSON file.").Required().ExistingFileVar(&problem)
	cmd.Flag("out", "Write the pose here instead of stdout.").StringVar(&out)

	commands[cmd.FullCommand()] = func(ctx context.Context) error {
		prob, err := project.LoadProblem(problem)
		if err != nil {
			return err
		}
		pose, ok, err := engine.SolveBijection(ctx, prob)
		if err != nil {
			return err
		}
		if !ok {
			return exitError{code: exitNoPose, msg: fmt.Sprint(c.au.Yellow("no solution"), ": no vertex matching fits")}
		}
		if out != "" {
			return project.SavePose(out, pose)
		}
		return writeJSON(os.Stdout, pose)
	}
}

// ─── stats ─────────────────────────────────────────────────

func registerStats(app *kingpin.Application, c *cli, commands map[string]func(context.Context) error) {
	var files []string
	var xlsx string
	cmd := app.Command("stats", "Summarize problem sizes.")
	cmd.Arg("problems", "Problem JSON files.").Required().ExistingFilesVar(&files)
	cmd.Flag("xlsx", "Also write the table to this workbook.").StringVar(&xlsx)

	commands[cmd.FullCommand()] = func(context.Context) error {
		stats, err := collectStats(files)
		if err != nil {
			return err
		}
		if err := printStats(os.Stdout, stats); err != nil {
			return err
		}
		if xlsx != "" {
			return export.ExportStats(xlsx, stats)
		}
		return nil
	}
}

func collectStats(files []string) ([]model.ProblemStats, error) {
	stats := make([]model.ProblemStats, 0, len(files))
	for _, f := range files {
		p, err := project.LoadProblem(f)
		if err != nil {
			return nil, err
		}
		stats = append(stats, model.Summarize(project.ProblemID(f), p))
	}
	return stats, nil
}

func printStats(w io.Writer, stats []model.ProblemStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "id\thole\tvertices\tedges\tepsilon\twidth\theight\tlattice\t")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%g\t%g\t%d\t\n",
			s.ID, s.HoleVertices, s.FigVertices, s.FigEdges, s.Epsilon, s.Width, s.Height, s.LatticePoints)
	}
	return tw.Flush()
}

// ─── render ────────────────────────────────────────────────

func registerRender(app *kingpin.Application, c *cli, commands map[string]func(context.Context) error) {
	var problem, pose, png, pdf, dxf string
	var scale float64
	var imgcat bool
	cmd := app.Command("render", "Draw a problem and optionally a pose.")
	cmd.Arg("problem", "Problem JSON file.").Required().ExistingFileVar(&problem)
	cmd.Arg("pose", "Pose JSON file.").ExistingFileVar(&pose)
	cmd.Flag("png", "Write a PNG image.").StringVar(&png)
	cmd.Flag("scale", "PNG pixels per unit.").Default("8").Float64Var(&scale)
	cmd.Flag("imgcat", "Show the PNG in the terminal.").BoolVar(&imgcat)
	cmd.Flag("pdf", "Write a PDF report (needs a pose).").StringVar(&pdf)
	cmd.Flag("dxf", "Write a DXF drawing (needs a pose).").StringVar(&dxf)

	commands[cmd.FullCommand()] = func(context.Context) error {
		if png == "" && pdf == "" && dxf == "" {
			return errors.New("nothing to render: pass --png, --pdf or --dxf")
		}
		prob, err := project.LoadProblem(problem)
		if err != nil {
			return err
		}
		var p model.Pose
		if pose != "" {
			if p, err = project.LoadPose(pose); err != nil {
				return err
			}
		}

		if png != "" {
			if err := export.RenderPNG(png, prob, p, scale); err != nil {
				return err
			}
			if imgcat {
				if err := export.ShowInTerminal(png); err != nil {
					return err
				}
			}
		}
		if (pdf != "" || dxf != "") && p == nil {
			return errors.New("--pdf and --dxf need a pose")
		}
		if pdf != "" {
			if err := export.ExportPDF(pdf, prob, p, prob.FullValidate(p)); err != nil {
				return err
			}
		}
		if dxf != "" {
			if err := export.ExportDXF(dxf, prob, p); err != nil {
				return err
			}
		}
		return nil
	}
}

// ─── import ────────────────────────────────────────────────

func registerImport(app *kingpin.Application, c *cli, commands map[string]func(context.Context) error) {
	cmd := app.Command("import", "Build a problem from a drawing.")
	for _, format := range []string{"dxf", "svg"} {
		format := format
		var file, out string
		var epsilon int64
		sub := cmd.Command(format, fmt.Sprintf("Read the hole and figure from a %s file.", strings.ToUpper(format)))
		sub.Arg("file", "Drawing to read.").Required().ExistingFileVar(&file)
		sub.Flag("epsilon", "Length tolerance in millionths.").Default("0").Int64Var(&epsilon)
		sub.Flag("out", "Write the problem here instead of stdout.").StringVar(&out)

		commands[sub.FullCommand()] = func(context.Context) error {
			var result importer.ProblemResult
			if format == "svg" {
				result = importer.ImportSVG(file, epsilon)
			} else {
				result = importer.ImportDXF(file, epsilon)
			}
			return writeImported(c, result, out, os.Stdout, os.Stderr)
		}
	}
}

func writeImported(c *cli, result importer.ProblemResult, out string, stdout, stderr io.Writer) error {
	for _, w := range result.Warnings {
		fmt.Fprintln(stderr, c.au.Yellow("warning:"), w)
	}
	if len(result.Errors) > 0 || result.Problem == nil {
		return errors.Wrap(model.ErrInvalidProblem, strings.Join(result.Errors, "; "))
	}
	if out != "" {
		return project.SaveProblem(out, result.Problem)
	}
	data, err := model.MarshalProblem(result.Problem)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(data))
	return err
}

// ─── compare ───────────────────────────────────────────────

func registerCompare(app *kingpin.Application, c *cli, commands map[string]func(context.Context) error) {
	var problem string
	cmd := app.Command("compare", "Run the search under a few variations of the settings.")
	cmd.Arg("problem", "Problem JSON file.").Required().ExistingFileVar(&problem)

	commands[cmd.FullCommand()] = func(ctx context.Context) error {
		prob, err := project.LoadProblem(problem)
		if err != nil {
			return err
		}
		results, err := engine.CompareScenarios(ctx, engine.BuildDefaultScenarios(c.cfg.Search), prob)
		if err != nil {
			return err
		}
		return printComparison(os.Stdout, results)
	}
}

func printComparison(w io.Writer, results []engine.ComparisonResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "scenario\tdislikes\tsuccess rate\tsteps")
	for _, r := range results {
		dislikes := "-"
		if r.Found {
			dislikes = fmt.Sprint(r.Dislikes)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t%d\n", r.Scenario.Name, dislikes, r.SuccessRate, r.TotalSteps)
	}
	return tw.Flush()
}

// ─── runs ──────────────────────────────────────────────────

func registerRuns(app *kingpin.Application, c *cli, commands map[string]func(context.Context) error) {
	var dir string
	cmd := app.Command("runs", "List archived search runs.")
	cmd.Arg("dir", "Archive directory (default from preferences).").StringVar(&dir)

	commands[cmd.FullCommand()] = func(context.Context) error {
		if dir == "" {
			dir = c.cfg.ArchiveDir
		}
		runs, err := project.ListRuns(dir)
		if err != nil {
			return err
		}
		return printRuns(os.Stdout, runs)
	}
}

func printRuns(w io.Writer, runs []model.RunRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tname\tcreated\tproblem\tdislikes\trestarts")
	for _, r := range runs {
		dislikes := "-"
		if r.Summary.Found {
			dislikes = fmt.Sprint(r.Summary.Dislikes)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			r.ID, r.Name, r.CreatedAt, r.ProblemPath, dislikes, r.Summary.Restarts)
	}
	return tw.Flush()
}
