package importer

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/JoshVarga/svgparser"

	"github.com/piwi3910/holefit/internal/geometry"
)

// ImportSVG builds a problem from an SVG drawing. The hole is the <polygon>
// with id "hole", or the first <polygon> in document order. Every <line> and
// every leg of a <polyline> becomes a figure edge. Coordinates are taken in
// user units and rounded to integers.
func ImportSVG(path string, epsilon int64) ProblemResult {
	result := ProblemResult{}

	f, err := os.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open SVG file: %v", err))
		return result
	}
	defer f.Close()

	root, err := svgparser.Parse(f, true)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse SVG: %v", err))
		return result
	}

	polygons := root.FindAll("polygon")
	if len(polygons) == 0 {
		result.Errors = append(result.Errors, "No <polygon> element found for the hole")
		return result
	}
	holeEl := polygons[0]
	for _, el := range polygons {
		if strings.EqualFold(el.Attributes["id"], "hole") {
			holeEl = el
			break
		}
	}
	if len(polygons) > 1 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Ignored %d extra <polygon> elements", len(polygons)-1))
	}

	outline, err := parsePoints(holeEl.Attributes["points"])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid hole points: %v", err))
		return result
	}

	b := newFigureBuilder(&result)
	hole := b.holeFrom(outline)

	for i, el := range root.FindAll("line") {
		s, err := lineSegment(el.Attributes)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: %v", i+1, err))
			continue
		}
		b.addSegment(s)
	}
	for i, el := range root.FindAll("polyline") {
		pts, err := parsePoints(el.Attributes["points"])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Polyline %d: %v", i+1, err))
			continue
		}
		for j := 0; j+1 < len(pts); j++ {
			b.addSegment(segment{start: pts[j], end: pts[j+1]})
		}
	}
	if len(result.Errors) > 0 {
		return result
	}

	b.build("svg", hole, epsilon)
	return result
}

// parsePoints parses an SVG points list such as "0,0 10,0 10,10".
func parsePoints(s string) ([]geometry.Point, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("odd number of coordinates in %q", s)
	}
	pts := make([]geometry.Point, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q", fields[i])
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q", fields[i+1])
		}
		pts = append(pts, geometry.Point{X: x, Y: y})
	}
	return pts, nil
}

func lineSegment(attrs map[string]string) (segment, error) {
	var c [4]float64
	for i, name := range []string{"x1", "y1", "x2", "y2"} {
		// Missing line coordinates default to 0.
		raw := strings.TrimSpace(attrs[name])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return segment{}, fmt.Errorf("invalid %s %q", name, raw)
		}
		c[i] = v
	}
	return segment{
		start: geometry.Point{X: c[0], Y: c[1]},
		end:   geometry.Point{X: c[2], Y: c[3]},
	}, nil
}
