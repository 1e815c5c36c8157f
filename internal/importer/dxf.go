package importer

import (
	"fmt"
	"math"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/holefit/internal/geometry"
)

// HoleLayer is the DXF layer holding the hole outline.
const HoleLayer = "HOLE"

// chainTolerance is the endpoint distance at which hole LINEs are joined.
const chainTolerance = 0.01

// ImportDXF builds a problem from a DXF drawing. The hole is the LWPOLYLINE
// on the HOLE layer, or failing that the largest LWPOLYLINE in the drawing;
// without any polyline, LINEs on the HOLE layer are chained into the outline.
// All other LINEs become figure edges. Coordinates are rounded to integers.
func ImportDXF(path string, epsilon int64) ProblemResult {
	result := ProblemResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var (
		polylines  []*entity.LwPolyline
		holeLines  []segment
		figureSegs []segment
		skipped    = map[string]int{}
	)
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if len(e.Vertices) < 3 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			polylines = append(polylines, e)

		case *entity.Line:
			seg := segment{
				start: geometry.Point{X: e.Start[0], Y: e.Start[1]},
				end:   geometry.Point{X: e.End[0], Y: e.End[1]},
			}
			if onHoleLayer(e) {
				holeLines = append(holeLines, seg)
			} else {
				figureSegs = append(figureSegs, seg)
			}

		default:
			skipped[fmt.Sprintf("%T", ent)]++
		}
	}
	for kind, n := range skipped {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped %d unsupported %s entities", n, strings.TrimPrefix(kind, "*entity.")))
	}

	b := newFigureBuilder(&result)
	var outline []geometry.Point
	if hole := pickHolePolyline(polylines); hole != nil {
		outline = polylineOutline(hole, &result)
		if len(polylines) > 1 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Ignored %d extra LWPOLYLINE entities", len(polylines)-1))
		}
		if len(holeLines) > 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Ignored %d LINEs on layer %s", len(holeLines), HoleLayer))
		}
	} else {
		outline = chainSegments(holeLines, chainTolerance)
		if outline == nil {
			result.Errors = append(result.Errors, "No closed hole outline found in DXF file")
			return result
		}
	}

	hole := b.holeFrom(outline)
	for _, s := range figureSegs {
		b.addSegment(s)
	}
	b.build("dxf", hole, epsilon)
	return result
}

func onHoleLayer(e entity.Entity) bool {
	l := e.Layer()
	return l != nil && strings.EqualFold(l.Name(), HoleLayer)
}

// pickHolePolyline prefers a polyline on the HOLE layer, then the largest.
func pickHolePolyline(polylines []*entity.LwPolyline) *entity.LwPolyline {
	var best *entity.LwPolyline
	bestArea := -1.0
	for _, lw := range polylines {
		if onHoleLayer(lw) {
			return lw
		}
		if a := outlineArea(rawVertices(lw)); a > bestArea {
			best, bestArea = lw, a
		}
	}
	return best
}

func rawVertices(lw *entity.LwPolyline) []geometry.Point {
	pts := make([]geometry.Point, len(lw.Vertices))
	for i, v := range lw.Vertices {
		pts[i] = geometry.Point{X: v[0], Y: v[1]}
	}
	return pts
}

// polylineOutline returns the polyline vertices. Holes are straight-edged, so
// bulges are reported and flattened to their chords.
func polylineOutline(lw *entity.LwPolyline, result *ProblemResult) []geometry.Point {
	bulged := 0
	for _, b := range lw.Bulges {
		if math.Abs(b) > 1e-9 {
			bulged++
		}
	}
	if bulged > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Flattened %d arc segments of the hole outline to straight edges", bulged))
	}
	return rawVertices(lw)
}
