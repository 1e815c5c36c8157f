package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/holefit/internal/model"
)

// LoadProblem reads and validates a problem file.
func LoadProblem(path string) (*model.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file: %w", err)
	}
	p, err := model.ParseProblem(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse problem %s: %w", path, err)
	}
	return p, nil
}

// SaveProblem writes p in the problem file layout.
func SaveProblem(path string, p *model.Problem) error {
	data, err := model.MarshalProblem(p)
	if err != nil {
		return fmt.Errorf("failed to marshal problem: %w", err)
	}
	return writeFile(path, data)
}

// ProblemID derives a problem identifier from its file name, e.g. "42" for
// "problems/42.json".
func ProblemID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// LoadPose reads a pose file.
func LoadPose(path string) (model.Pose, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pose file: %w", err)
	}
	pose, err := model.ParsePose(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pose %s: %w", path, err)
	}
	return pose, nil
}

// SavePose writes a pose file.
func SavePose(path string, pose model.Pose) error {
	data, err := json.MarshalIndent(pose, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pose: %w", err)
	}
	return writeFile(path, data)
}

// LoadSearchConfig reads a search configuration. Missing fields keep their
// defaults; a missing file yields DefaultSearchConfig.
func LoadSearchConfig(path string) (model.SearchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultSearchConfig(), nil
		}
		return model.SearchConfig{}, fmt.Errorf("failed to read search config: %w", err)
	}
	var cfg model.SearchConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.SearchConfig{}, fmt.Errorf("failed to parse search config: %w", err)
	}
	return cfg, nil
}

// SaveSearchConfig writes a search configuration.
func SaveSearchConfig(path string, cfg model.SearchConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal search config: %w", err)
	}
	return writeFile(path, data)
}

// SaveOutcome tells what SavePoseIfBetter did.
type SaveOutcome struct {
	Written     bool
	OldValid    bool
	OldDislikes int64
	NewDislikes int64
}

// SavePoseIfBetter writes pose to path unless the file already holds a valid
// pose with dislikes no higher than pose's. A missing, unreadable or invalid
// existing file is always replaced. Invalid poses are never written.
func SavePoseIfBetter(path string, p *model.Problem, pose model.Pose) (SaveOutcome, error) {
	if !p.IsValid(pose) {
		return SaveOutcome{}, fmt.Errorf("refusing to save pose: %w", model.ErrInvalidPose)
	}
	out := SaveOutcome{NewDislikes: p.Dislikes(pose)}

	if old, err := LoadPose(path); err == nil && p.IsValid(old) {
		out.OldValid = true
		out.OldDislikes = p.Dislikes(old)
		if out.OldDislikes <= out.NewDislikes {
			return out, nil
		}
	}

	if err := SavePose(path, pose); err != nil {
		return out, err
	}
	out.Written = true
	return out, nil
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
