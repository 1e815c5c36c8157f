package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/holefit/internal/geometry"
)

func writeSVG(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.svg")
	doc := `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100">` + body + `</svg>`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	return path
}

func TestImportSVG(t *testing.T) {
	path := writeSVG(t, `
		<polygon points="0,0 20,0 20,20 0,20"/>
		<line x1="2" y1="2" x2="8" y2="2"/>
		<polyline points="8,2 8,10 2,2"/>`)

	result := ImportSVG(path, 500)

	require.Empty(t, result.Errors)
	p := result.Problem
	require.NotNil(t, p)
	assert.Len(t, p.Hole().Vertices(), 4)
	assert.Equal(t, 3, p.NumVertices())
	assert.Len(t, p.Edges(), 3)
	assert.Equal(t, geometry.Point{X: 8, Y: 10}, p.Vertices()[2])
}

func TestImportSVG_PrefersHoleID(t *testing.T) {
	path := writeSVG(t, `
		<polygon points="0,0 1,0 1,1"/>
		<polygon id="hole" points="0 0 30 0 30 30"/>
		<line x1="1" y1="1" x2="5" y2="1"/>`)

	result := ImportSVG(path, 0)

	require.Empty(t, result.Errors)
	require.NotNil(t, result.Problem)
	assert.Equal(t, geometry.Point{X: 30, Y: 30}, result.Problem.Hole().Vertices()[2])
	assert.Contains(t, result.Warnings, "Ignored 1 extra <polygon> elements")
}

func TestImportSVG_Errors(t *testing.T) {
	result := ImportSVG(filepath.Join(t.TempDir(), "none.svg"), 0)
	assert.NotEmpty(t, result.Errors)

	result = ImportSVG(writeSVG(t, `<line x1="0" y1="0" x2="1" y2="1"/>`), 0)
	assert.Contains(t, result.Errors, "No <polygon> element found for the hole")

	result = ImportSVG(writeSVG(t, `<polygon points="0,0 5,0 5"/><line x1="0" y1="0" x2="1" y2="1"/>`), 0)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "Invalid hole points")

	result = ImportSVG(writeSVG(t, `<polygon points="0,0 5,0 5,5"/><line x1="a" y1="0" x2="1" y2="1"/>`), 0)
	require.NotEmpty(t, result.Errors)
	assert.Nil(t, result.Problem)
}

func TestParsePoints(t *testing.T) {
	pts, err := parsePoints(" 1,2  3 4,\n5,6 ")
	require.NoError(t, err)
	assert.Equal(t, []geometry.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}, pts)

	_, err = parsePoints("1,x")
	assert.Error(t, err)
}
