package widgets

import (
	"fmt"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/holefit/internal/geometry"
	"github.com/piwi3910/holefit/internal/model"
)

const (
	canvasPadding = 16
	vertexRadius  = 4
	tapRadius     = 10
)

var (
	holeFill     = color.NRGBA{R: 235, G: 235, B: 235, A: 255}
	holeStroke   = color.NRGBA{R: 60, G: 60, B: 60, A: 255}
	edgeOK       = color.NRGBA{R: 76, G: 175, B: 80, A: 255}
	edgeBad      = color.NRGBA{R: 244, G: 67, B: 54, A: 255}
	vertexFill   = color.NRGBA{R: 33, G: 150, B: 243, A: 255}
	vertexBad    = color.NRGBA{R: 244, G: 67, B: 54, A: 255}
	selectedRing = color.NRGBA{R: 255, G: 152, B: 0, A: 255}
)

// View maps problem coordinates onto the widget, keeping aspect ratio.
type View struct {
	Min     geometry.Point
	Scale   float32
	OffsetX float32
	OffsetY float32
}

// FitView fits pts into a w x h area with padding on every side.
func FitView(pts []geometry.Point, w, h float32) View {
	if len(pts) == 0 {
		return View{Scale: 1}
	}
	b := geometry.BoundingBox(pts)
	bw := math.Max(b.Max.X-b.Min.X, 1)
	bh := math.Max(b.Max.Y-b.Min.Y, 1)
	aw := math.Max(float64(w)-2*canvasPadding, 1)
	ah := math.Max(float64(h)-2*canvasPadding, 1)
	scale := math.Min(aw/bw, ah/bh)
	return View{
		Min:     b.Min,
		Scale:   float32(scale),
		OffsetX: float32((float64(w) - bw*scale) / 2),
		OffsetY: float32((float64(h) - bh*scale) / 2),
	}
}

// At converts a problem point to a widget position.
func (v View) At(p geometry.Point) fyne.Position {
	return fyne.NewPos(
		v.OffsetX+float32(p.X-v.Min.X)*v.Scale,
		v.OffsetY+float32(p.Y-v.Min.Y)*v.Scale,
	)
}

// NearestVertex returns the pose vertex drawn within radius of pos, or -1.
func (v View) NearestVertex(pose model.Pose, pos fyne.Position, radius float32) int {
	best, bestD := -1, radius*radius
	for i, p := range pose {
		at := v.At(p)
		dx, dy := at.X-pos.X, at.Y-pos.Y
		if d := dx*dx + dy*dy; d <= bestD {
			best, bestD = i, d
		}
	}
	return best
}

// PoseCanvas draws a hole with a pose on top. Edges flagged by the current
// report are drawn red; tapping a vertex selects it.
type PoseCanvas struct {
	widget.BaseWidget

	OnVertexTapped func(v int)

	prob     *model.Problem
	pose     model.Pose
	report   model.Report
	selected int
	minSize  fyne.Size
}

// NewPoseCanvas creates an empty canvas of at least minW x minH.
func NewPoseCanvas(minW, minH float32) *PoseCanvas {
	pc := &PoseCanvas{selected: -1, minSize: fyne.NewSize(minW, minH)}
	pc.ExtendBaseWidget(pc)
	return pc
}

// Set replaces what is drawn. A nil pose shows the hole alone.
func (pc *PoseCanvas) Set(prob *model.Problem, pose model.Pose, report model.Report) {
	pc.prob = prob
	pc.pose = pose
	pc.report = report
	if pc.selected >= len(pose) {
		pc.selected = -1
	}
	pc.Refresh()
}

// Selected returns the highlighted vertex, or -1.
func (pc *PoseCanvas) Selected() int { return pc.selected }

// Select highlights vertex v; -1 clears the selection.
func (pc *PoseCanvas) Select(v int) {
	pc.selected = v
	pc.Refresh()
}

// Tapped implements fyne.Tappable.
func (pc *PoseCanvas) Tapped(ev *fyne.PointEvent) {
	if pc.prob == nil || pc.pose == nil {
		return
	}
	v := pc.view(pc.Size()).NearestVertex(pc.pose, ev.Position, tapRadius)
	pc.Select(v)
	if v >= 0 && pc.OnVertexTapped != nil {
		pc.OnVertexTapped(v)
	}
}

func (pc *PoseCanvas) view(size fyne.Size) View {
	pts := append([]geometry.Point{}, pc.prob.Hole().Vertices()...)
	pts = append(pts, pc.pose...)
	return FitView(pts, size.Width, size.Height)
}

func (pc *PoseCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &poseCanvasRenderer{pc: pc}
	r.rebuild(pc.Size())
	return r
}

type poseCanvasRenderer struct {
	pc      *PoseCanvas
	size    fyne.Size
	objects []fyne.CanvasObject
}

func (r *poseCanvasRenderer) rebuild(size fyne.Size) {
	r.size = size
	r.objects = nil

	bg := canvas.NewRectangle(color.Transparent)
	bg.Resize(size)
	r.objects = append(r.objects, bg)

	pc := r.pc
	if pc.prob == nil {
		hint := canvas.NewText("Open a problem to begin", holeStroke)
		hint.Move(fyne.NewPos(canvasPadding, canvasPadding))
		r.objects = append(r.objects, hint)
		return
	}
	view := pc.view(size)

	hole := pc.prob.Hole().Vertices()
	for i := range hole {
		a, b := view.At(hole[i]), view.At(hole[(i+1)%len(hole)])
		line := canvas.NewLine(holeStroke)
		line.StrokeWidth = 2
		line.Position1, line.Position2 = a, b
		r.objects = append(r.objects, line)
	}
	for _, p := range hole {
		dot := canvas.NewCircle(holeFill)
		dot.StrokeColor = holeStroke
		dot.StrokeWidth = 1
		at := view.At(p)
		dot.Move(fyne.NewPos(at.X-2, at.Y-2))
		dot.Resize(fyne.NewSize(4, 4))
		r.objects = append(r.objects, dot)
	}

	if pc.pose == nil || pc.pose.CheckShape(pc.prob) != nil {
		return
	}

	badEdge := map[[2]int]bool{}
	badVertex := map[int]bool{}
	for _, v := range pc.report.Errors {
		if v.Edge != nil {
			badEdge[*v.Edge] = true
		}
		if v.Vertex != nil {
			badVertex[*v.Vertex] = true
		}
	}

	for _, e := range pc.prob.Edges() {
		col := edgeOK
		if badEdge[[2]int{e.U, e.V}] {
			col = edgeBad
		}
		line := canvas.NewLine(col)
		line.StrokeWidth = 2
		line.Position1, line.Position2 = view.At(pc.pose[e.U]), view.At(pc.pose[e.V])
		r.objects = append(r.objects, line)
	}

	for i, p := range pc.pose {
		fill := vertexFill
		if badVertex[i] {
			fill = vertexBad
		}
		dot := canvas.NewCircle(fill)
		if i == pc.selected {
			dot.StrokeColor = selectedRing
			dot.StrokeWidth = 2
		}
		at := view.At(p)
		dot.Move(fyne.NewPos(at.X-vertexRadius, at.Y-vertexRadius))
		dot.Resize(fyne.NewSize(2*vertexRadius, 2*vertexRadius))
		r.objects = append(r.objects, dot)
	}

	if pc.selected >= 0 {
		p := pc.pose[pc.selected]
		label := canvas.NewText(fmt.Sprintf("%d (%g, %g)", pc.selected, p.X, p.Y), selectedRing)
		label.TextSize = 10
		at := view.At(p)
		label.Move(fyne.NewPos(at.X+vertexRadius+2, at.Y-14))
		r.objects = append(r.objects, label)
	}
}

func (r *poseCanvasRenderer) Layout(size fyne.Size) {
	if size != r.size {
		r.rebuild(size)
	}
}

func (r *poseCanvasRenderer) Refresh()                     { r.rebuild(r.pc.Size()) }
func (r *poseCanvasRenderer) Destroy()                     {}
func (r *poseCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *poseCanvasRenderer) MinSize() fyne.Size           { return r.pc.minSize }
