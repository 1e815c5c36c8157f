package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/piwi3910/holefit/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.holefit/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".holefit")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
// Fields missing from the file keep their defaults.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	config := model.DefaultAppConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, err
	}
	// Ensure RecentProblems is never nil
	if config.RecentProblems == nil {
		config.RecentProblems = []string{}
	}
	repairAppConfig(path, &config)
	return config, nil
}

// repairAppConfig replaces settings that a hand-edited file left unusable
// with their defaults, so a bad value never reaches a search.
func repairAppConfig(path string, config *model.AppConfig) {
	defaults := model.DefaultAppConfig()
	if err := config.Search.Validate(); err != nil {
		klog.Warningf("%s: %v, using default search settings", path, err)
		hints := config.Search.Hints
		config.Search = defaults.Search
		config.Search.Hints = hints
	}
	if config.RefineSteps < 0 {
		config.RefineSteps = defaults.RefineSteps
	}
	if config.ProgressInterval < 0 {
		config.ProgressInterval = defaults.ProgressInterval
	}
	if config.MaxNumPoses < 1 {
		config.MaxNumPoses = defaults.MaxNumPoses
	}
	if config.MaxTotalSteps < 1 {
		config.MaxTotalSteps = defaults.MaxTotalSteps
	}
	switch config.Theme {
	case "light", "dark", "system":
	default:
		config.Theme = defaults.Theme
	}
}
