package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/piwi3910/holefit/internal/model"
)

// RunPath returns the archive file for rec inside dir.
func RunPath(dir string, rec model.RunRecord) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.json", rec.Name, rec.ID))
}

// SaveRun archives a run record as JSON at path.
func SaveRun(path string, rec model.RunRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	return writeFile(path, data)
}

// LoadRun reads an archived run record.
func LoadRun(path string) (model.RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RunRecord{}, fmt.Errorf("failed to read run record: %w", err)
	}
	var rec model.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.RunRecord{}, fmt.Errorf("failed to parse run record: %w", err)
	}
	if rec.ID == "" {
		return model.RunRecord{}, fmt.Errorf("invalid run record: missing id field")
	}
	return rec, nil
}

// ListRuns loads every run record in dir, oldest first. Files that are not
// run records are skipped. A missing directory yields an empty list.
func ListRuns(dir string) ([]model.RunRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.RunRecord{}, nil
		}
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := []model.RunRecord{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		rec, err := LoadRun(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		runs = append(runs, rec)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].CreatedAt < runs[j].CreatedAt })
	return runs, nil
}
