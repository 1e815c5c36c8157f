package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/logrusorgru/aurora"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/holefit/internal/engine"
	"github.com/piwi3910/holefit/internal/geometry"
	"github.com/piwi3910/holefit/internal/importer"
	"github.com/piwi3910/holefit/internal/model"
	"github.com/piwi3910/holefit/internal/project"
)

func pt(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

func testCLI() *cli {
	return &cli{cfg: model.DefaultAppConfig(), au: aurora.NewAurora(false)}
}

// squareProblem is one edge of length 10 in a 10x10 square.
func squareProblem(t *testing.T) *model.Problem {
	t.Helper()
	p, err := model.NewProblem(
		[]geometry.Point{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10)},
		model.Figure{Vertices: []geometry.Point{pt(0, 0), pt(10, 0)}, Edges: []model.Edge{{U: 0, V: 1}}},
		0)
	require.NoError(t, err)
	return p
}

func writeProblem(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "1.json")
	require.NoError(t, project.SaveProblem(path, squareProblem(t)))
	return path
}

func TestEvalPose(t *testing.T) {
	c := testCLI()
	p := squareProblem(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, evalPose(c, p, model.Pose{pt(0, 0), pt(10, 0)}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), `"dislikes": 200`)
	assert.Equal(t, "valid 200 dislikes\n", stderr.String())

	stdout.Reset()
	stderr.Reset()
	err := evalPose(c, p, model.Pose{pt(0, 0), pt(5, 0)}, &stdout, &stderr)
	var exit exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, exitInvalid, exit.code)
	assert.Contains(t, stdout.String(), "invalid_length")
	assert.True(t, strings.HasPrefix(stderr.String(), "invalid 1 violations\n"))
}

func TestLoadHints(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "hints.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[[1, [10, 0]]]`), 0644))
	hints, err := loadHints(jsonPath)
	require.NoError(t, err)
	require.Len(t, hints, 1)
	assert.Equal(t, 1, hints[0].Vertex)
	assert.Equal(t, pt(10, 0), hints[0].Point)

	csvPath := filepath.Join(dir, "hints.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("vertex,x,y\n0,0,0\n1,10,0\n"), 0644))
	hints, err = loadHints(csvPath)
	require.NoError(t, err)
	assert.Len(t, hints, 2)

	badPath := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(badPath, []byte("vertex,x,y\n0,zero,0\n"), 0644))
	_, err = loadHints(badPath)
	assert.ErrorIs(t, err, model.ErrInvalidHint)
}

func TestSearchConfigLayers(t *testing.T) {
	c := testCLI()
	c.cfg.Search.NumPoses = 11
	dir := t.TempDir()

	configPath := filepath.Join(dir, "search.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"workers": 3, "seed": 5}`), 0644))

	s := &solveCmd{configFile: configPath, seed: 9, set: map[string]bool{"seed": true}}
	cfg, err := s.searchConfig(c)
	require.NoError(t, err)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, 3, cfg.Workers)
	// --config replaces the preferences wholesale, so unset fields take defaults.
	assert.Equal(t, model.DefaultSearchConfig().NumPoses, cfg.NumPoses)

	s = &solveCmd{set: map[string]bool{}}
	cfg, err = s.searchConfig(c)
	require.NoError(t, err)
	assert.Equal(t, 11, cfg.NumPoses)
}

func TestSolveWritesPose(t *testing.T) {
	c := testCLI()
	dir := t.TempDir()
	out := filepath.Join(dir, "out.json")

	s := &solveCmd{
		problem:  writeProblem(t, dir),
		out:      out,
		keepBest: true,
		refine:   0,
		archive:  filepath.Join(dir, "run.json"),
		trace:    filepath.Join(dir, "trace.xlsx"),
		numPoses: 5,
		set:      map[string]bool{"num-poses": true},
	}
	require.NoError(t, s.run(context.Background(), c, &bytes.Buffer{}))

	pose, err := project.LoadPose(out)
	require.NoError(t, err)
	assert.True(t, squareProblem(t).IsValid(pose))

	rec, err := project.LoadRun(s.archive)
	require.NoError(t, err)
	assert.True(t, rec.Summary.Found)
	assert.Equal(t, 5, rec.Config.NumPoses)

	_, err = os.Stat(s.trace)
	assert.NoError(t, err)
}

func TestSolveToStdout(t *testing.T) {
	c := testCLI()
	s := &solveCmd{problem: writeProblem(t, t.TempDir()), refine: -1, numPoses: 2, set: map[string]bool{"num-poses": true}}

	var stdout bytes.Buffer
	require.NoError(t, s.run(context.Background(), c, &stdout))
	pose, err := model.ParsePose(stdout.Bytes())
	require.NoError(t, err)
	assert.Len(t, pose, 2)
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printStats(&buf, []model.ProblemStats{model.Summarize("1", squareProblem(t))}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"1", "4", "2", "1", "0", "10", "10", "121"}, strings.Fields(lines[1]))
}

func TestWriteImported(t *testing.T) {
	c := testCLI()

	var stdout, stderr bytes.Buffer
	result := importer.ProblemResult{Problem: squareProblem(t), Warnings: []string{"Rounded 1 non-integral coordinates to the nearest lattice point"}}
	require.NoError(t, writeImported(c, result, "", &stdout, &stderr))
	p, err := model.ParseProblem(stdout.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumVertices())
	assert.Contains(t, stderr.String(), "warning: Rounded 1")

	err = writeImported(c, importer.ProblemResult{Errors: []string{"No figure edges found"}}, "", &stdout, &stderr)
	assert.ErrorIs(t, err, model.ErrInvalidProblem)
}

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	problem := writeProblem(t, dir)
	prefs := filepath.Join(dir, "missing-config.json")

	good := filepath.Join(dir, "good.json")
	require.NoError(t, project.SavePose(good, model.Pose{pt(0, 0), pt(10, 0)}))
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, project.SavePose(bad, model.Pose{pt(0, 0), pt(20, 0)}))

	assert.Equal(t, 0, run([]string{"--app-config", prefs, "--color", "never", "eval", problem, good}))
	assert.Equal(t, exitInvalid, run([]string{"--app-config", prefs, "--color", "never", "eval", problem, bad}))
	assert.Equal(t, 1, run([]string{"--app-config", prefs, "no-such-command"}))
	assert.Equal(t, 1, run([]string{"--app-config", prefs, "render", problem}))
}

func TestPrintRuns(t *testing.T) {
	rec := model.NewRunRecord("brave-otter", "problems/1.json", model.DefaultSearchConfig(),
		model.RunSummary{Found: true, Dislikes: 42, Restarts: 3}, nil)

	var buf bytes.Buffer
	require.NoError(t, printRuns(&buf, []model.RunRecord{rec}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	fields := strings.Fields(lines[1])
	assert.Equal(t, []string{rec.ID, "brave-otter", rec.CreatedAt, "problems/1.json", "42", "3"}, fields)
}

func TestPrintComparison(t *testing.T) {
	results := []engine.ComparisonResult{
		{Scenario: engine.ComparisonScenario{Name: "Seed 2"}, Found: true, Dislikes: 7, SuccessRate: 50, TotalSteps: 90},
		{Scenario: engine.ComparisonScenario{Name: "Slow"}, SuccessRate: 0, TotalSteps: 10},
	}
	var buf bytes.Buffer
	require.NoError(t, printComparison(&buf, results))
	out := buf.String()
	assert.Contains(t, out, "50.0%")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"Slow", "-", "0.0%", "10"}, strings.Fields(lines[2]))
}
