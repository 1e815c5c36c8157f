package model

import (
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
)

func init() {
	// Run names only need to be told apart by a human; they never feed the search.
	petname.NonDeterministicMode()
}

// NewRunName returns a short readable name such as "brave-otter".
func NewRunName() string {
	return petname.Generate(2, "-")
}

// RunSummary condenses a search result for archiving.
type RunSummary struct {
	Found       bool   `json:"found"`
	Dislikes    int64  `json:"dislikes"`
	BestRestart int    `json:"best_restart"` // -1 when nothing was found
	Restarts    int    `json:"restarts"`
	Successes   int    `json:"successes"`
	TotalSteps  int64  `json:"total_steps"`
	Elapsed     string `json:"elapsed"`
}

// RunRecord is an archived search run.
type RunRecord struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	CreatedAt   string       `json:"created_at"`
	ProblemPath string       `json:"problem_path"`
	Config      SearchConfig `json:"config"`
	Summary     RunSummary   `json:"summary"`
	Pose        Pose         `json:"pose,omitempty"`
}

// NewRunRecord stamps a new record with a fresh ID and the current time.
func NewRunRecord(name, problemPath string, cfg SearchConfig, summary RunSummary, pose Pose) RunRecord {
	if name == "" {
		name = NewRunName()
	}
	return RunRecord{
		ID:          uuid.New().String()[:8],
		Name:        name,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		ProblemPath: problemPath,
		Config:      cfg,
		Summary:     summary,
		Pose:        pose.Clone(),
	}
}
