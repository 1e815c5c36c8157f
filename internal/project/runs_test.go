package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/holefit/internal/model"
)

func TestSaveAndLoadRun(t *testing.T) {
	dir := t.TempDir()
	rec := model.NewRunRecord("calm-lynx", "problems/3.json", model.DefaultSearchConfig(),
		model.RunSummary{Found: true, Dislikes: 42, BestRestart: 3, Restarts: 10, Successes: 4},
		model.Pose{pt(1, 2), pt(3, 4)})

	path := RunPath(dir, rec)
	assert.Equal(t, "calm-lynx-"+rec.ID+".json", filepath.Base(path))

	require.NoError(t, SaveRun(path, rec))
	loaded, err := LoadRun(path)
	require.NoError(t, err)
	assert.Equal(t, rec, loaded)
}

func TestLoadRunErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRun(filepath.Join(dir, "nope.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json}"), 0644))
	_, err = LoadRun(bad)
	assert.Error(t, err)

	noID := filepath.Join(dir, "noid.json")
	require.NoError(t, os.WriteFile(noID, []byte(`{"name": "x"}`), 0644))
	_, err = LoadRun(noID)
	assert.Error(t, err)
}

func TestListRuns(t *testing.T) {
	dir := t.TempDir()

	runs, err := ListRuns(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, runs)

	a := model.NewRunRecord("a", "p.json", model.DefaultSearchConfig(), model.RunSummary{}, nil)
	a.CreatedAt = "2024-01-02T00:00:00Z"
	b := model.NewRunRecord("b", "p.json", model.DefaultSearchConfig(), model.RunSummary{}, nil)
	b.CreatedAt = "2024-01-01T00:00:00Z"
	require.NoError(t, SaveRun(RunPath(dir, a), a))
	require.NoError(t, SaveRun(RunPath(dir, b), b))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.json"), []byte("[]"), 0644))

	runs, err = ListRuns(dir)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].Name)
	assert.Equal(t, "a", runs[1].Name)
}
