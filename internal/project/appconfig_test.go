package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/holefit/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.Search.NumPoses = 250
	cfg.Theme = "dark"
	cfg.RefineSteps = 5000
	cfg.RecentProblems = []string{"/tmp/1.json", "/tmp/2.json"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.Search.NumPoses != 250 {
		t.Errorf("expected NumPoses=250, got %d", loaded.Search.NumPoses)
	}
	if loaded.Theme != "dark" {
		t.Errorf("expected Theme=dark, got %s", loaded.Theme)
	}
	if loaded.RefineSteps != 5000 {
		t.Errorf("expected RefineSteps=5000, got %d", loaded.RefineSteps)
	}
	if len(loaded.RecentProblems) != 2 {
		t.Errorf("expected 2 recent problems, got %d", len(loaded.RecentProblems))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.Search.MaxLocalSteps != defaults.Search.MaxLocalSteps {
		t.Errorf("expected default local steps %d, got %d", defaults.Search.MaxLocalSteps, cfg.Search.MaxLocalSteps)
	}
	if cfg.Theme != "system" {
		t.Errorf("expected theme=system, got %s", cfg.Theme)
	}
}

func TestLoadAppConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"theme": "light", "search": {"seed": 9}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.Theme != "light" {
		t.Errorf("expected theme=light, got %s", cfg.Theme)
	}
	if cfg.Search.Seed != 9 {
		t.Errorf("expected seed=9, got %d", cfg.Search.Seed)
	}
	if cfg.Search.NumPoses != model.DefaultSearchConfig().NumPoses {
		t.Errorf("expected default NumPoses, got %d", cfg.Search.NumPoses)
	}
	if cfg.ListenAddr != model.DefaultAppConfig().ListenAddr {
		t.Errorf("expected default listen address, got %s", cfg.ListenAddr)
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := os.WriteFile(path, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadAppConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "dir", "config.json")

	cfg := model.DefaultAppConfig()
	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if filepath.Base(path) != "config.json" {
		t.Errorf("expected config.json, got %s", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != ".holefit" {
		t.Errorf("expected .holefit directory, got %s", filepath.Dir(path))
	}
}

func TestLoadAppConfigRepairsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"theme": "neon", "search": {"seed": 4, "workers": 0, "prob_hole": 3}, "refine_steps": -5, "max_num_poses": 0, "recent_problems": ["a.json"]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	defaults := model.DefaultAppConfig()
	if cfg.Search.Workers != defaults.Search.Workers || cfg.Search.ProbHole != defaults.Search.ProbHole {
		t.Errorf("expected default search settings, got %+v", cfg.Search)
	}
	if err := cfg.Search.Validate(); err != nil {
		t.Errorf("repaired search settings are invalid: %v", err)
	}
	if cfg.Theme != "system" {
		t.Errorf("expected theme=system, got %s", cfg.Theme)
	}
	if cfg.RefineSteps != 0 {
		t.Errorf("expected refine_steps=0, got %d", cfg.RefineSteps)
	}
	if cfg.MaxNumPoses != defaults.MaxNumPoses {
		t.Errorf("expected default max_num_poses, got %d", cfg.MaxNumPoses)
	}
	if len(cfg.RecentProblems) != 1 || cfg.RecentProblems[0] != "a.json" {
		t.Errorf("expected recent problems kept, got %v", cfg.RecentProblems)
	}
}
