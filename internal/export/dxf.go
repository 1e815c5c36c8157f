package export

import (
	"fmt"

	"github.com/yofu/dxf"

	"github.com/piwi3910/holefit/internal/importer"
	"github.com/piwi3910/holefit/internal/model"
)

// PoseLayer is the DXF layer holding the pose edges.
const PoseLayer = "POSE"

// ExportDXF writes the hole as a closed LWPOLYLINE on the HOLE layer and
// each pose edge as a LINE on the POSE layer. The file can be read back
// with importer.ImportDXF.
func ExportDXF(path string, prob *model.Problem, pose model.Pose) error {
	if err := pose.CheckShape(prob); err != nil {
		return fmt.Errorf("cannot export pose: %w", err)
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(importer.HoleLayer, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add hole layer: %w", err)
	}
	var vertices [][]float64
	for _, v := range prob.Hole().Vertices() {
		vertices = append(vertices, []float64{v.X, v.Y})
	}
	if _, err := d.LwPolyline(true, vertices...); err != nil {
		return fmt.Errorf("failed to draw hole: %w", err)
	}

	if _, err := d.AddLayer(PoseLayer, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add pose layer: %w", err)
	}
	for _, e := range prob.Edges() {
		a, b := pose[e.U], pose[e.V]
		if _, err := d.Line(a.X, a.Y, 0, b.X, b.Y, 0); err != nil {
			return fmt.Errorf("failed to draw edge (%d, %d): %w", e.U, e.V, err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
