package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default search settings applied to new runs
	Search SearchConfig `json:"search"`

	// Refinement defaults
	RefineSteps int `json:"refine_steps"` // 0 = skip refinement

	// Locations
	ProblemDir  string `json:"problem_dir"`
	SolutionDir string `json:"solution_dir"`
	ArchiveDir  string `json:"archive_dir"`

	// Server
	ListenAddr       string `json:"listen_addr"`
	ProgressInterval int    `json:"progress_interval_ms"` // Minimum gap between progress events

	// Upper bounds on a single search requested over HTTP
	MaxNumPoses   int   `json:"max_num_poses"`
	MaxTotalSteps int64 `json:"max_total_steps"`

	// Application preferences
	RecentProblems []string `json:"recent_problems"`
	Theme          string   `json:"theme"` // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching DefaultSearchConfig().
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Search:           DefaultSearchConfig(),
		RefineSteps:      0,
		ProblemDir:       "problems",
		SolutionDir:      "solutions",
		ArchiveDir:       "runs",
		ListenAddr:       "localhost:8080",
		ProgressInterval: 250,
		MaxNumPoses:      100000,
		MaxTotalSteps:    10000000,
		RecentProblems:   []string{},
		Theme:            "system",
	}
}

// AddRecentProblem moves path to the front of the recent list, keeping at
// most limit entries.
func (c *AppConfig) AddRecentProblem(path string, limit int) {
	recent := []string{path}
	for _, p := range c.RecentProblems {
		if p != path && len(recent) < limit {
			recent = append(recent, p)
		}
	}
	c.RecentProblems = recent
}
