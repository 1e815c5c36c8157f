package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/holefit/internal/engine"
	"github.com/piwi3910/holefit/internal/model"
)

// ExportTrace writes one row per finished restart plus a summary sheet.
func ExportTrace(path string, result engine.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Restarts"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := [][]interface{}{{"Restart", "Found", "Dislikes", "Steps"}}
	for _, a := range result.Attempts {
		var dislikes interface{}
		if a.Found {
			dislikes = a.Dislikes
		}
		rows = append(rows, []interface{}{a.Restart, a.Found, dislikes, a.Steps})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}

	summary := result.Summary()
	if _, err := f.NewSheet("Summary"); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	best := interface{}("none")
	if summary.Found {
		best = summary.Dislikes
	}
	err := writeRows(f, "Summary", [][]interface{}{
		{"Run", result.Name},
		{"Restarts", summary.Restarts},
		{"Successes", summary.Successes},
		{"Best dislikes", best},
		{"Best restart", summary.BestRestart},
		{"Total steps", summary.TotalSteps},
		{"Elapsed", summary.Elapsed},
	})
	if err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ExportStats writes one row of problem statistics per problem.
func ExportStats(path string, stats []model.ProblemStats) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Problems"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := [][]interface{}{{"ID", "Hole vertices", "Figure vertices", "Figure edges", "Epsilon", "Width", "Height", "Lattice points"}}
	for _, s := range stats {
		rows = append(rows, []interface{}{s.ID, s.HoleVertices, s.FigVertices, s.FigEdges, s.Epsilon, s.Width, s.Height, s.LatticePoints})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writeRows fills sheet from A1 and bolds the first row.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}
	return nil
}
