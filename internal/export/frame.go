// Package export writes problems and poses to PDF reports, PNG images, DXF
// drawings and Excel workbooks.
package export

import (
	"math"

	"github.com/jbeda/geom"

	"github.com/piwi3910/holefit/internal/geometry"
	"github.com/piwi3910/holefit/internal/model"
)

// rgb is a color on the 0-255 scale.
type rgb struct {
	R, G, B int
}

var (
	holeFill    = rgb{R: 235, G: 235, B: 235}
	holeStroke  = rgb{R: 60, G: 60, B: 60}
	edgeOK      = rgb{R: 76, G: 175, B: 80}
	edgeBad     = rgb{R: 244, G: 67, B: 54}
	vertexColor = rgb{R: 33, G: 150, B: 243}
)

func (c rgb) unit() (float64, float64, float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// frame maps problem coordinates into a target box, keeping aspect ratio.
type frame struct {
	bounds  geom.Rect
	scale   float64
	offsetX float64
	offsetY float64
}

// newFrame fits the hole and pose into a w x h box at (x, y).
func newFrame(prob *model.Problem, pose model.Pose, x, y, w, h float64) frame {
	pts := append([]geometry.Point{}, prob.Hole().Vertices()...)
	pts = append(pts, pose...)
	b := geometry.BoundingBox(pts)

	bw := math.Max(b.Max.X-b.Min.X, 1)
	bh := math.Max(b.Max.Y-b.Min.Y, 1)
	scale := math.Min(w/bw, h/bh)
	return frame{
		bounds:  b,
		scale:   scale,
		offsetX: x + (w-bw*scale)/2,
		offsetY: y + (h-bh*scale)/2,
	}
}

func (f frame) at(p geometry.Point) (float64, float64) {
	return f.offsetX + (p.X-f.bounds.Min.X)*f.scale, f.offsetY + (p.Y-f.bounds.Min.Y)*f.scale
}

// badEdges collects the edges a report flags.
func badEdges(report model.Report) map[[2]int]bool {
	bad := map[[2]int]bool{}
	for _, v := range report.Errors {
		if v.Edge != nil {
			bad[*v.Edge] = true
		}
	}
	return bad
}

// edgeColor picks the stroke for edge e given the flagged set.
func edgeColor(e model.Edge, bad map[[2]int]bool) rgb {
	if bad[[2]int{e.U, e.V}] {
		return edgeBad
	}
	return edgeOK
}
