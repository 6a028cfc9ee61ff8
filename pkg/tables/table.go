package tables

import (
	"sort"
	"strings"

	"github.com/pyhub-apps/pdfsheet/pkg/pdf"
)

// LineSeparator joins the text lines of a multi-line cell
const LineSeparator = "\r"

// Cell is a rectangular text container at one row/column position of a
// table
type Cell struct {
	BBox    pdf.BoundingBox
	Row     int
	Col     int
	RawText string

	placeholder bool
}

// Text returns the cell text with its lines joined by LineSeparator
func (c Cell) Text() string {
	return c.RawText
}

// Lines returns the text lines of the cell
func (c Cell) Lines() []string {
	if c.RawText == "" {
		return nil
	}
	return strings.Split(c.RawText, LineSeparator)
}

// IsPlaceholder reports whether the cell fills a gap in the grid rather than
// a ruled area on the page
func (c Cell) IsPlaceholder() bool {
	return c.placeholder
}

type cellKey struct {
	row, col int
}

// Table is a grid of cells detected in one spreadsheet area of a page
type Table struct {
	PageNumber int
	BBox       pdf.BoundingBox

	cells map[cellKey]Cell
	rows  int
	cols  int
}

// NewTable builds a table from cells whose Row and Col are already set. A
// later cell at the same position replaces an earlier one.
func NewTable(pageNumber int, cells []Cell) *Table {
	t := &Table{
		PageNumber: pageNumber,
		cells:      make(map[cellKey]Cell, len(cells)),
	}
	for _, c := range cells {
		if c.Row < 0 || c.Col < 0 {
			continue
		}
		if len(t.cells) == 0 {
			t.BBox = c.BBox
		} else {
			t.BBox = t.BBox.Union(c.BBox)
		}
		t.cells[cellKey{c.Row, c.Col}] = c
		t.rows = max(t.rows, c.Row+1)
		t.cols = max(t.cols, c.Col+1)
	}
	return t
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return t.rows
}

// ColCount returns the number of columns of the widest row
func (t *Table) ColCount() int {
	return t.cols
}

// Cell returns the cell at row, col
func (t *Table) Cell(row, col int) (Cell, bool) {
	c, ok := t.cells[cellKey{row, col}]
	return c, ok
}

// Cells returns the detected cells in reading order
func (t *Table) Cells() []Cell {
	cells := make([]Cell, 0, len(t.cells))
	for _, c := range t.cells {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	return cells
}

// Rows returns the grid top to bottom, each row left to right and as wide
// as the table. Positions no ruled cell covers hold empty placeholders.
func (t *Table) Rows() [][]Cell {
	rows := make([][]Cell, t.rows)
	for r := range rows {
		row := make([]Cell, t.cols)
		for c := range row {
			if cell, ok := t.cells[cellKey{r, c}]; ok {
				row[c] = cell
			} else {
				row[c] = Cell{Row: r, Col: c, placeholder: true}
			}
		}
		rows[r] = row
	}
	return rows
}

// Texts returns the cell texts of Rows
func (t *Table) Texts() [][]string {
	rows := t.Rows()
	texts := make([][]string, len(rows))
	for i, row := range rows {
		texts[i] = make([]string, len(row))
		for j, c := range row {
			texts[i][j] = c.Text()
		}
	}
	return texts
}

// FromTexts builds a table with one cell per entry of rows
func FromTexts(pageNumber int, rows [][]string) *Table {
	var cells []Cell
	for r, row := range rows {
		for c, text := range row {
			cells = append(cells, Cell{Row: r, Col: c, RawText: text})
		}
	}
	return NewTable(pageNumber, cells)
}
