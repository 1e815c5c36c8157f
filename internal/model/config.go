package model

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/piwi3910/holefit/internal/geometry"
)

// Hint pins a figure vertex to a fixed point before the search starts.
type Hint struct {
	Vertex int
	Point  geometry.Point
}

// MarshalJSON encodes a hint as [vertex, [x, y]].
func (h Hint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{h.Vertex, [2]float64{h.Point.X, h.Point.Y}})
}

// UnmarshalJSON decodes a hint from [vertex, [x, y]].
func (h *Hint) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return errors.Errorf("hint must be [vertex, [x, y]], got %d elements", len(raw))
	}
	var xy [2]float64
	if err := json.Unmarshal(raw[0], &h.Vertex); err != nil {
		return errors.Wrap(err, "hint vertex")
	}
	if err := json.Unmarshal(raw[1], &xy); err != nil {
		return errors.Wrap(err, "hint point")
	}
	h.Point = geometry.Point{X: xy[0], Y: xy[1]}
	return nil
}

// SearchConfig controls one run of the multi-restart search.
type SearchConfig struct {
	Hints         []Hint  `json:"hints"`
	Seed          int64   `json:"seed"`
	ProbHole      float64 `json:"prob_hole"`       // Chance of trying a hole vertex first
	NumPoses      int     `json:"num_poses"`       // Restart budget
	MaxTotalSteps int64   `json:"max_total_steps"` // Candidate budget per restart
	MaxLocalSteps int     `json:"max_local_steps"` // Candidate budget per vertex visit
	Workers       int     `json:"workers"`
}

// DefaultSearchConfig returns the stock search settings.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Hints:         []Hint{},
		Seed:          1,
		ProbHole:      0.5,
		NumPoses:      1000,
		MaxTotalSteps: 1000000,
		MaxLocalSteps: 50,
		Workers:       1,
	}
}

// UnmarshalJSON fills fields missing from data with their defaults.
func (c *SearchConfig) UnmarshalJSON(data []byte) error {
	type plain SearchConfig
	cfg := plain(DefaultSearchConfig())
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	*c = SearchConfig(cfg)
	return nil
}

// Validate checks the budgets and the probability range.
func (c SearchConfig) Validate() error {
	switch {
	case c.ProbHole < 0 || c.ProbHole > 1:
		return errors.Errorf("prob_hole %g is outside [0, 1]", c.ProbHole)
	case c.NumPoses < 1:
		return errors.Errorf("num_poses must be at least 1, got %d", c.NumPoses)
	case c.MaxTotalSteps < 1:
		return errors.Errorf("max_total_steps must be at least 1, got %d", c.MaxTotalSteps)
	case c.MaxLocalSteps < 1:
		return errors.Errorf("max_local_steps must be at least 1, got %d", c.MaxLocalSteps)
	case c.Workers < 1:
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// CheckHints verifies that every hint names a distinct vertex of p and an
// integral point.
func (p *Problem) CheckHints(hints []Hint) error {
	seen := make(map[int]bool, len(hints))
	for i, h := range hints {
		if h.Vertex < 0 || h.Vertex >= p.NumVertices() {
			return errors.Wrapf(ErrInvalidHint, "hint %d names vertex %d, figure has %d", i, h.Vertex, p.NumVertices())
		}
		if seen[h.Vertex] {
			return errors.Wrapf(ErrInvalidHint, "hint %d repeats vertex %d", i, h.Vertex)
		}
		if !geometry.IsIntegral(h.Point) {
			return errors.Wrapf(ErrInvalidHint, "hint %d point (%g, %g) is not integral", i, h.Point.X, h.Point.Y)
		}
		seen[h.Vertex] = true
	}
	return nil
}
