package model

// ProblemStats describes the size of a problem.
type ProblemStats struct {
	ID            string  `json:"id"`
	HoleVertices  int     `json:"hole_vertices"`
	FigVertices   int     `json:"figure_vertices"`
	FigEdges      int     `json:"figure_edges"`
	Epsilon       int64   `json:"epsilon"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	LatticePoints int     `json:"lattice_points"` // Integer points inside or on the hole
}

// Summarize collects ProblemStats for p.
func Summarize(id string, p *Problem) ProblemStats {
	b := p.Hole().Bounds()
	return ProblemStats{
		ID:            id,
		HoleVertices:  len(p.Hole().Vertices()),
		FigVertices:   p.NumVertices(),
		FigEdges:      len(p.Edges()),
		Epsilon:       p.Epsilon(),
		Width:         b.Max.X - b.Min.X,
		Height:        b.Max.Y - b.Min.Y,
		LatticePoints: len(p.Hole().Lattice()),
	}
}
