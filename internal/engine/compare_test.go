package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaultScenarios(t *testing.T) {
	base := quickConfig(1, 10)
	scenarios := BuildDefaultScenarios(base)

	require.Len(t, scenarios, 5)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, base, scenarios[0].Config)
	assert.Equal(t, 0.0, scenarios[1].Config.ProbHole)
	assert.Equal(t, 1.0, scenarios[2].Config.ProbHole)
	assert.Equal(t, 100, scenarios[3].Config.MaxLocalSteps)
	assert.Equal(t, int64(2), scenarios[4].Config.Seed)

	base.ProbHole = 0
	assert.Len(t, BuildDefaultScenarios(base), 4)
}

func TestCompareScenarios(t *testing.T) {
	p := singleEdgeProblem(t)
	scenarios := BuildDefaultScenarios(quickConfig(1, 10))

	results, err := CompareScenarios(context.Background(), scenarios, p)
	require.NoError(t, err)
	require.Len(t, results, len(scenarios))

	for i, r := range results {
		assert.Equal(t, scenarios[i].Name, r.Scenario.Name)
		assert.Equal(t, r.Result.Found(), r.Found)
		assert.GreaterOrEqual(t, r.SuccessRate, 0.0)
		assert.LessOrEqual(t, r.SuccessRate, 100.0)
		if r.Found {
			assert.True(t, p.IsValid(r.Result.Pose))
		}
	}
}

func TestCompareScenarios_InvalidConfig(t *testing.T) {
	p := singleEdgeProblem(t)
	bad := quickConfig(1, 10)
	bad.Workers = 0

	_, err := CompareScenarios(context.Background(), []ComparisonScenario{{Name: "broken", Config: bad}}, p)
	assert.Error(t, err)
}
