package tables

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdfsheet/pkg/pdf"
)

type fakePage struct {
	number  int
	objects pdf.Objects
	err     error
}

func (p *fakePage) GetPageNumber() int               { return p.number }
func (p *fakePage) GetWidth() float64                { return 612 }
func (p *fakePage) GetHeight() float64               { return 792 }
func (p *fakePage) GetRotation() int                 { return 0 }
func (p *fakePage) GetBBox() pdf.BoundingBox         { return pdf.BoundingBox{X1: 612, Y1: 792} }
func (p *fakePage) GetObjects() (pdf.Objects, error) { return p.objects, p.err }
func (p *fakePage) ExtractText(opts ...pdf.TextExtractionOption) (string, error) {
	return pdf.ExtractText(p.objects.Chars, opts...), p.err
}

// glyphs lays out text left to right, 6pt per glyph, 10pt high
func glyphs(text string, x, top float64) []pdf.CharObject {
	var chars []pdf.CharObject
	for i, r := range text {
		x0 := x + float64(i)*6
		chars = append(chars, pdf.CharObject{
			Text: string(r), FontSize: 10,
			X0: x0, X1: x0 + 6, Y0: top, Y1: top + 10,
		})
	}
	return chars
}

func hline(y, x0, x1 float64) pdf.LineObject {
	return pdf.LineObject{X0: x0, Y0: y, X1: x1, Y1: y, LineWidth: 1}
}

func vline(x, y0, y1 float64) pdf.LineObject {
	return pdf.LineObject{X0: x, Y0: y0, X1: x, Y1: y1, LineWidth: 1}
}

// twoByTwo is a ruled grid with columns at x=100,200,300 and rows at
// y=100,130,170 holding [["A","B"],["C\rD","E"]]
func twoByTwo() pdf.Objects {
	var chars []pdf.CharObject
	chars = append(chars, glyphs("A", 140, 108)...)
	chars = append(chars, glyphs("B", 240, 108)...)
	chars = append(chars, glyphs("C", 140, 135)...)
	chars = append(chars, glyphs("D", 140, 150)...)
	chars = append(chars, glyphs("E", 240, 140)...)
	return pdf.Objects{
		Chars: chars,
		Lines: []pdf.LineObject{
			hline(100, 100, 300), hline(130, 100, 300), hline(170, 100, 300),
			vline(100, 100, 170), vline(200, 100, 170), vline(300, 100, 170),
		},
	}
}

func TestExtractRuledGrid(t *testing.T) {
	page := &fakePage{number: 1, objects: twoByTwo()}

	tables, err := NewSpreadsheetAlgorithm().Extract(page)
	require.NoError(t, err)
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, 1, table.PageNumber)
	assert.Equal(t, 2, table.RowCount())
	assert.Equal(t, 2, table.ColCount())
	assert.Equal(t, [][]string{{"A", "B"}, {"C\rD", "E"}}, table.Texts())
	assert.Equal(t, pdf.BoundingBox{X0: 100, Y0: 100, X1: 300, Y1: 170}, table.BBox)

	cell, ok := table.Cell(1, 0)
	require.True(t, ok)
	assert.Equal(t, []string{"C", "D"}, cell.Lines())
	assert.False(t, cell.IsPlaceholder())
}

func TestExtractRectangleRulings(t *testing.T) {
	objects := twoByTwo()
	objects.Lines = nil
	// thin filled rectangles drawn slightly off the grid, as generators do
	for _, y := range []float64{99.6, 129.8, 169.7} {
		objects.Rects = append(objects.Rects, pdf.RectObject{X0: 99.5, Y0: y, X1: 300.5, Y1: y + 0.6, Filled: true})
	}
	for _, x := range []float64{99.7, 199.6, 299.8} {
		objects.Rects = append(objects.Rects, pdf.RectObject{X0: x, Y0: 99.5, X1: x + 0.6, Y1: 170.5, Filled: true})
	}

	tables, err := NewSpreadsheetAlgorithm().Extract(&fakePage{number: 3, objects: objects})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{{"A", "B"}, {"C\rD", "E"}}, tables[0].Texts())
}

func TestExtractCellBorders(t *testing.T) {
	// every cell stroked as its own rectangle
	objects := twoByTwo()
	objects.Lines = nil
	objects.Rects = []pdf.RectObject{
		{X0: 100, Y0: 100, X1: 200, Y1: 130, LineWidth: 1},
		{X0: 200, Y0: 100, X1: 300, Y1: 130, LineWidth: 1},
		{X0: 100, Y0: 130, X1: 200, Y1: 170, LineWidth: 1},
		{X0: 200, Y0: 130, X1: 300, Y1: 170, LineWidth: 1},
	}

	tables, err := NewSpreadsheetAlgorithm().Extract(&fakePage{number: 1, objects: objects})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{{"A", "B"}, {"C\rD", "E"}}, tables[0].Texts())
}

func TestExtractWithoutRulings(t *testing.T) {
	objects := twoByTwo()
	objects.Lines = nil

	tables, err := NewSpreadsheetAlgorithm().Extract(&fakePage{number: 2, objects: objects})
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestExtractOpenFrame(t *testing.T) {
	// horizontal rules only never close a cell
	objects := pdf.Objects{Lines: []pdf.LineObject{
		hline(100, 100, 300), hline(130, 100, 300), hline(170, 100, 300),
	}}

	algorithm := NewSpreadsheetAlgorithm()
	tables, err := algorithm.Extract(&fakePage{number: 1, objects: objects})
	require.NoError(t, err)
	assert.Empty(t, tables)

	tabular, err := algorithm.IsTabular(&fakePage{number: 1, objects: objects})
	require.NoError(t, err)
	assert.False(t, tabular)
}

func TestExtractMergedHeader(t *testing.T) {
	var chars []pdf.CharObject
	chars = append(chars, glyphs("Title", 180, 108)...)
	chars = append(chars, glyphs("x", 140, 140)...)
	chars = append(chars, glyphs("y", 240, 140)...)
	objects := pdf.Objects{
		Chars: chars,
		Lines: []pdf.LineObject{
			hline(100, 100, 300), hline(130, 100, 300), hline(160, 100, 300),
			vline(100, 100, 160), vline(300, 100, 160), vline(200, 130, 160),
		},
	}

	tables, err := NewSpreadsheetAlgorithm().Extract(&fakePage{number: 1, objects: objects})
	require.NoError(t, err)
	require.Len(t, tables, 1)

	rows := tables[0].Rows()
	require.Len(t, rows, 2)
	require.Len(t, rows[0], 2)
	assert.Equal(t, "Title", rows[0][0].Text())
	assert.True(t, rows[0][1].IsPlaceholder())
	assert.Equal(t, "", rows[0][1].Text())
	assert.Equal(t, []string{"x", "y"}, []string{rows[1][0].Text(), rows[1][1].Text()})
}

func TestExtractSeparateTables(t *testing.T) {
	lower := twoByTwo()
	var objects pdf.Objects
	objects.Lines = append(objects.Lines,
		hline(400, 100, 300), hline(430, 100, 300),
		vline(100, 400, 430), vline(300, 400, 430))
	objects.Chars = append(objects.Chars, glyphs("Footer", 150, 410)...)
	objects.Lines = append(objects.Lines, lower.Lines...)
	objects.Chars = append(objects.Chars, lower.Chars...)

	tables, err := NewSpreadsheetAlgorithm().Extract(&fakePage{number: 1, objects: objects})
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, [][]string{{"A", "B"}, {"C\rD", "E"}}, tables[0].Texts())
	assert.Equal(t, [][]string{{"Footer"}}, tables[1].Texts())
}

func TestExtractWordGaps(t *testing.T) {
	objects := twoByTwo()
	objects.Chars = append(glyphs("Hi", 110, 108), glyphs("there", 130, 108)...)

	tables, err := NewSpreadsheetAlgorithm().Extract(&fakePage{number: 1, objects: objects})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "Hi there", tables[0].Texts()[0][0])
}

func TestExtractInvalidGeometry(t *testing.T) {
	objects := twoByTwo()
	objects.Lines = append(objects.Lines, hline(math.NaN(), 100, 300))

	_, err := NewSpreadsheetAlgorithm().Extract(&fakePage{number: 4, objects: objects})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeometry)
	assert.Contains(t, err.Error(), "page 4")
}

func TestExtractPageError(t *testing.T) {
	_, err := NewSpreadsheetAlgorithm().Extract(&fakePage{number: 2, err: pdf.ErrContent})
	assert.ErrorIs(t, err, pdf.ErrContent)
}

func TestExtractUnicodeNorm(t *testing.T) {
	objects := twoByTwo()
	// "e" followed by a combining acute accent
	objects.Chars = []pdf.CharObject{
		{Text: "e", X0: 140, X1: 146, Y0: 108, Y1: 118},
		{Text: "\u0301", X0: 146, X1: 146.5, Y0: 108, Y1: 118},
	}

	tables, err := NewSpreadsheetAlgorithm(WithUnicodeNorm("NFC")).Extract(&fakePage{number: 1, objects: objects})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "\u00e9", tables[0].Texts()[0][0])
}

func TestAnalyzeLayout(t *testing.T) {
	layout, err := NewSpreadsheetAlgorithm().Analyze(&fakePage{number: 1, objects: twoByTwo()})
	require.NoError(t, err)

	horizontal, vertical := layout.Rulings()
	assert.Len(t, horizontal, 3)
	assert.Len(t, vertical, 3)
	assert.Len(t, layout.Cells(), 4)
	assert.Len(t, layout.Areas(), 1)
}

func TestAlgorithmInterface(t *testing.T) {
	var algorithm Algorithm = NewSpreadsheetAlgorithm()
	_, err := algorithm.Extract(&fakePage{number: 1, err: errors.New("boom")})
	assert.EqualError(t, err, "failed to read page 1: boom")
}
