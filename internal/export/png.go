package export

import (
	"fmt"
	"math"
	"os"

	"github.com/fogleman/gg"
	imgcat "github.com/martinlindhe/imgcat/lib"

	"github.com/piwi3910/holefit/internal/model"
)

// Padding around the drawing, in pixels.
const pngPadding = 20

// maxPNGSide bounds the image size whatever the scale.
const maxPNGSide = 4096

// RenderPNG draws the hole and, if pose is non-empty, the pose over it.
// scale is pixels per problem unit.
func RenderPNG(path string, prob *model.Problem, pose model.Pose, scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", scale)
	}
	if len(pose) > 0 {
		if err := pose.CheckShape(prob); err != nil {
			return fmt.Errorf("cannot render pose: %w", err)
		}
	}

	f := newFrame(prob, pose, 0, 0, 1, 1)
	bw := math.Max(f.bounds.Max.X-f.bounds.Min.X, 1)
	bh := math.Max(f.bounds.Max.Y-f.bounds.Min.Y, 1)
	scale = math.Min(scale, maxPNGSide/math.Max(bw, bh))

	width := int(scale*bw) + pngPadding*2
	height := int(scale*bh) + pngPadding*2
	f = newFrame(prob, pose, pngPadding, pngPadding, scale*bw, scale*bh)

	c := gg.NewContext(width, height)
	c.SetRGB(1, 1, 1)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()

	for i, v := range prob.Hole().Vertices() {
		x, y := f.at(v)
		if i == 0 {
			c.MoveTo(x, y)
		} else {
			c.LineTo(x, y)
		}
	}
	c.ClosePath()
	c.SetRGB(holeFill.unit())
	c.FillPreserve()
	c.SetRGB(holeStroke.unit())
	c.SetLineWidth(2)
	c.Stroke()

	if len(pose) > 0 {
		bad := badEdges(prob.FullValidate(pose))
		c.SetLineWidth(2)
		for _, e := range prob.Edges() {
			x1, y1 := f.at(pose[e.U])
			x2, y2 := f.at(pose[e.V])
			c.DrawLine(x1, y1, x2, y2)
			c.SetRGB(edgeColor(e, bad).unit())
			c.Stroke()
		}
		c.SetRGB(vertexColor.unit())
		for _, p := range pose {
			x, y := f.at(p)
			c.DrawCircle(x, y, 3)
			c.Fill()
		}
	}

	if err := c.SavePNG(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ShowInTerminal prints a PNG inline using the iTerm image protocol.
func ShowInTerminal(path string) error {
	if err := imgcat.CatFile(path, os.Stdout); err != nil {
		return fmt.Errorf("failed to display %s: %w", path, err)
	}
	return nil
}
