package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"k8s.io/klog/v2"

	"github.com/piwi3910/holefit/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	sideWidth    = 95.0
	qrSize       = 40.0
)

// ExportPDF writes a one-page report: the hole with the pose drawn over it,
// problem statistics, the violation list and a QR code carrying the pose
// JSON. Edges flagged by report are drawn in red.
func ExportPDF(path string, prob *model.Problem, pose model.Pose, report model.Report) error {
	if len(pose) == 0 {
		return fmt.Errorf("no pose to export")
	}
	if err := pose.CheckShape(prob); err != nil {
		return fmt.Errorf("cannot export pose: %w", err)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Pose report: %d violations", len(report.Errors))
	if report.Valid() && report.Dislikes != nil {
		title = fmt.Sprintf("Pose report: valid, %d dislikes", *report.Dislikes)
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight - sideWidth - 5
	drawHeight := pageHeight - drawAreaTop - marginBottom
	f := newFrame(prob, pose, marginLeft, drawAreaTop, drawWidth, drawHeight)
	drawHole(pdf, prob, f)
	drawPose(pdf, prob, pose, report, f)

	sideX := pageWidth - marginRight - sideWidth
	y := drawStats(pdf, prob, pose, sideX, drawAreaTop)
	drawViolations(pdf, report, sideX, y+4, pageHeight-marginBottom-qrSize-4)

	if err := drawQR(pdf, "pose", pose, sideX, pageHeight-marginBottom-qrSize, qrSize); err != nil {
		// Large poses overflow QR capacity; the report is still useful without it.
		klog.Warningf("pdf export: skipping QR code: %v", err)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.SetXY(sideX, pageHeight-marginBottom-5)
		pdf.CellFormat(sideWidth, 4, "Pose too large for a QR code", "", 0, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom+4)
	pdf.CellFormat(drawWidth, 4, "Generated by holefit", "", 0, "L", false, 0, "")

	return pdf.OutputFileAndClose(path)
}

func drawHole(pdf *fpdf.Fpdf, prob *model.Problem, f frame) {
	var pts []fpdf.PointType
	for _, v := range prob.Hole().Vertices() {
		x, y := f.at(v)
		pts = append(pts, fpdf.PointType{X: x, Y: y})
	}
	pdf.SetFillColor(holeFill.R, holeFill.G, holeFill.B)
	pdf.SetDrawColor(holeStroke.R, holeStroke.G, holeStroke.B)
	pdf.SetLineWidth(0.5)
	pdf.Polygon(pts, "FD")
}

func drawPose(pdf *fpdf.Fpdf, prob *model.Problem, pose model.Pose, report model.Report, f frame) {
	bad := badEdges(report)
	pdf.SetLineWidth(0.4)
	for _, e := range prob.Edges() {
		c := edgeColor(e, bad)
		pdf.SetDrawColor(c.R, c.G, c.B)
		x1, y1 := f.at(pose[e.U])
		x2, y2 := f.at(pose[e.V])
		pdf.Line(x1, y1, x2, y2)
	}

	r := math.Max(0.4, math.Min(1.2, f.scale/4))
	pdf.SetFillColor(vertexColor.R, vertexColor.G, vertexColor.B)
	for _, p := range pose {
		x, y := f.at(p)
		pdf.Circle(x, y, r, "F")
	}
}

// drawStats prints the problem summary and returns the next free y.
func drawStats(pdf *fpdf.Fpdf, prob *model.Problem, pose model.Pose, x, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(x, y)
	pdf.CellFormat(sideWidth, 6, "Problem", "", 0, "L", false, 0, "")
	y += 7

	b := prob.Hole().Bounds()
	items := []struct {
		label string
		value string
	}{
		{"Hole vertices", fmt.Sprintf("%d", len(prob.Hole().Vertices()))},
		{"Hole size", fmt.Sprintf("%.0f x %.0f", b.Max.X-b.Min.X, b.Max.Y-b.Min.Y)},
		{"Figure vertices", fmt.Sprintf("%d", prob.NumVertices())},
		{"Figure edges", fmt.Sprintf("%d", len(prob.Edges()))},
		{"Epsilon", fmt.Sprintf("%d", prob.Epsilon())},
		{"Dislikes", fmt.Sprintf("%d", prob.Dislikes(pose))},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range items {
		pdf.SetXY(x+2, y)
		pdf.CellFormat(40, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(40, 5, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		y += 5
	}
	return y
}

// drawViolations lists report errors until maxY, then summarizes the rest.
func drawViolations(pdf *fpdf.Fpdf, report model.Report, x, y, maxY float64) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(x, y)
	if report.Valid() {
		pdf.SetTextColor(0, 120, 0)
		pdf.CellFormat(sideWidth, 6, "No violations", "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		return
	}

	pdf.SetTextColor(200, 0, 0)
	pdf.CellFormat(sideWidth, 6, fmt.Sprintf("Violations (%d)", len(report.Errors)), "", 0, "L", false, 0, "")
	y += 7

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(0, 0, 0)
	for i, v := range report.Errors {
		if y+4 > maxY {
			pdf.SetXY(x+2, y)
			pdf.CellFormat(sideWidth-2, 4, fmt.Sprintf("... and %d more", len(report.Errors)-i), "", 0, "L", false, 0, "")
			return
		}
		pdf.SetXY(x+2, y)
		pdf.CellFormat(sideWidth-2, 4, "- "+v.Message, "", 0, "L", false, 0, "")
		y += 4
	}
}
