package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/holefit/internal/model"
)

// ComparisonScenario defines a named search configuration to compare.
type ComparisonScenario struct {
	Name   string
	Config model.SearchConfig
}

// ComparisonResult holds the search result and computed statistics for a
// single scenario.
type ComparisonResult struct {
	Scenario    ComparisonScenario
	Result      Result
	Found       bool
	Dislikes    int64
	Successes   int
	SuccessRate float64 // Percentage of restarts that produced a pose
	TotalSteps  int64
}

// CompareScenarios runs the search for each scenario and returns the results
// in scenario order. This enables side-by-side comparison of different
// search parameters (e.g., hole preference, budgets, seeds).
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, p *model.Problem) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := Solve(ctx, p, scenario.Config)
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		summary := result.Summary()
		rate := 0.0
		if summary.Restarts > 0 {
			rate = float64(summary.Successes) / float64(summary.Restarts) * 100.0
		}

		results = append(results, ComparisonResult{
			Scenario:    scenario,
			Result:      result,
			Found:       summary.Found,
			Dislikes:    summary.Dislikes,
			Successes:   summary.Successes,
			SuccessRate: rate,
			TotalSteps:  summary.TotalSteps,
		})
	}

	return results, nil
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the given configuration, varying key parameters to show what-if alternatives.
func BuildDefaultScenarios(base model.SearchConfig) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:   "Current Settings",
			Config: base,
		},
	}

	// Scenario: never snap to hole vertices
	if base.ProbHole > 0 {
		noHole := base
		noHole.ProbHole = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "No Hole Preference",
			Config: noHole,
		})
	}

	// Scenario: always try hole vertices first
	if base.ProbHole < 1 {
		allHole := base
		allHole.ProbHole = 1
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "Always Prefer Hole",
			Config: allHole,
		})
	}

	// Scenario: more patience per vertex
	wide := base
	wide.MaxLocalSteps = base.MaxLocalSteps * 2
	scenarios = append(scenarios, ComparisonScenario{
		Name:   fmt.Sprintf("Local Budget %d", wide.MaxLocalSteps),
		Config: wide,
	})

	// Scenario: different seed
	reseeded := base
	reseeded.Seed = base.Seed + 1
	scenarios = append(scenarios, ComparisonScenario{
		Name:   fmt.Sprintf("Seed %d", reseeded.Seed),
		Config: reseeded,
	})

	return scenarios
}
