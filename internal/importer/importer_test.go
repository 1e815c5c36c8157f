package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/holefit/internal/geometry"
	"github.com/piwi3910/holefit/internal/model"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "vertex,x,y\n0,1,2\n1,3,4\n", ','},
		{"semicolon", "vertex;x;y\n0;1;2\n1;3;4\n", ';'},
		{"tab", "vertex\tx\ty\n0\t1\t2\n1\t3\t4\n", '\t'},
		{"pipe", "vertex|x|y\n0|1|2\n1|3|4\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectCSVDelimiter([]byte(tt.data))
			if got != tt.want {
				t.Errorf("expected %q delimiter, got %q", tt.want, got)
			}
		})
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Vertex", "X", "Y"})

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping != (ColumnMapping{Vertex: 0, X: 1, Y: 2}) {
		t.Errorf("unexpected mapping %+v", mapping)
	}
}

func TestDetectColumns_ReorderedAliases(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"PY", "Index", "pos x"})

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping != (ColumnMapping{Vertex: 1, X: 2, Y: 0}) {
		t.Errorf("unexpected mapping %+v", mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"3", "10", "20"})

	if isHeader {
		t.Error("expected no header")
	}
	if mapping != (ColumnMapping{Vertex: 0, X: 1, Y: 2}) {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── Hint CSV Tests ────────────────────────────────────────

func TestImportHintsCSVFromReader_WithHeaders(t *testing.T) {
	result := ImportHintsCSVFromReader(strings.NewReader("vertex,x,y\n0,10,20\n3,-4,5\n"), ',')

	require.Empty(t, result.Errors)
	assert.Equal(t, []model.Hint{
		{Vertex: 0, Point: geometry.Point{X: 10, Y: 20}},
		{Vertex: 3, Point: geometry.Point{X: -4, Y: 5}},
	}, result.Hints)
	assert.Contains(t, result.Warnings, "Detected header row, skipping")
}

func TestImportHintsCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportHintsCSVFromReader(strings.NewReader("2;7;8\n\n5;1.0;2\n"), ';')

	require.Empty(t, result.Errors)
	require.Len(t, result.Hints, 2)
	assert.Equal(t, 5, result.Hints[1].Vertex)
	assert.Equal(t, geometry.Point{X: 1, Y: 2}, result.Hints[1].Point)
}

func TestImportHintsCSVFromReader_UnknownHeaderSkipped(t *testing.T) {
	result := ImportHintsCSVFromReader(strings.NewReader("which,col,row\n1,2,3\n"), ',')

	require.Empty(t, result.Errors)
	require.Len(t, result.Hints, 1)
	assert.Equal(t, 1, result.Hints[0].Vertex)
}

func TestImportHintsCSVFromReader_RowErrors(t *testing.T) {
	data := "vertex,x,y\n" +
		"0,1,2\n" +
		"a,1,2\n" +
		"1,1.5,2\n" +
		"2,3\n" +
		"-1,0,0\n" +
		"0,5,5\n" +
		"4,4,4\n"
	result := ImportHintsCSVFromReader(strings.NewReader(data), ',')

	assert.Len(t, result.Hints, 2)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "Line 3")
	assert.Contains(t, result.Errors[1], "expected an integer")
	assert.Contains(t, result.Errors[2], "Missing y")
	assert.Contains(t, result.Errors[3], "Invalid vertex")
	assert.Contains(t, result.Errors[4], "already pinned on Line 2")
}

func TestImportHintsCSVFromReader_MissingColumn(t *testing.T) {
	result := ImportHintsCSVFromReader(strings.NewReader("vertex,x\n0,1\n"), ',')

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Y")
	assert.Empty(t, result.Hints)
}

func TestImportHintsCSVFromReader_Empty(t *testing.T) {
	result := ImportHintsCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

func TestImportHintsCSV_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hints.csv")
	require.NoError(t, os.WriteFile(path, []byte("v\tx\ty\n1\t2\t3\n"), 0644))

	result := ImportHintsCSV(path)

	require.Empty(t, result.Errors)
	require.Len(t, result.Hints, 1)
	assert.Contains(t, result.Warnings, "Detected tab delimiter")
}

func TestImportHintsCSV_FileErrors(t *testing.T) {
	result := ImportHintsCSV("/nonexistent/path/hints.csv")
	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}

	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0644))
	result = ImportHintsCSV(path)
	if len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Hint Excel Tests ──────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hints.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportHintsExcel(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"X", "Y", "Vertex"},
		{10, 20, 0},
		{0, 5, 2},
	})

	result := ImportHintsExcel(path)

	require.Empty(t, result.Errors)
	assert.Equal(t, []model.Hint{
		{Vertex: 0, Point: geometry.Point{X: 10, Y: 20}},
		{Vertex: 2, Point: geometry.Point{X: 0, Y: 5}},
	}, result.Hints)
}

func TestImportHintsExcel_FileNotFound(t *testing.T) {
	result := ImportHintsExcel("/nonexistent/path/hints.xlsx")
	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

// ─── Chaining Tests ────────────────────────────────────────

func TestChainSegments(t *testing.T) {
	p := func(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }
	segs := []segment{
		{p(0, 0), p(4, 0)},
		{p(4, 4), p(4, 0)},
		{p(4, 4), p(0, 4)},
		{p(0, 4), p(0.001, 0)},
		{p(10, 10), p(11, 11)},
	}

	outline := chainSegments(segs, chainTolerance)

	require.Len(t, outline, 4)
	assert.InDelta(t, 16.0, outlineArea(outline), 0.01)
	assert.Nil(t, chainSegments(segs[:3], chainTolerance))
}
