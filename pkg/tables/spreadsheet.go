package tables

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/rtree"
	"go.uber.org/zap"

	"github.com/pyhub-apps/pdfsheet/pkg/pdf"
)

// ErrGeometry is returned when a page reports coordinates that are not
// finite numbers
var ErrGeometry = errors.New("tables: invalid page geometry")

// Algorithm extracts the tables of a page
type Algorithm interface {
	Extract(page pdf.Page) ([]*Table, error)
}

// SpreadsheetAlgorithm detects tables whose cells are fully bounded by
// ruling lines (lattice mode)
type SpreadsheetAlgorithm struct {
	// SnapTolerance merges coordinates closer than this
	SnapTolerance float64
	// JoinTolerance merges collinear rulings separated by at most this gap
	JoinTolerance float64
	// IntersectionTolerance is how far a ruling may stop short of another
	// and still cross it
	IntersectionTolerance float64
	// MinRulingLength drops rulings shorter than this
	MinRulingLength float64
	// ThinRect is the thickness below which a rectangle is a single ruling
	ThinRect float64
	// AxisTolerance is how far a line may deviate from horizontal or
	// vertical
	AxisTolerance float64
	// LineTolerance groups glyphs into text lines
	LineTolerance float64
	// WordGap is the horizontal gap that inserts a space
	WordGap float64
	// UnicodeNorm normalizes cell text ("NFC", "NFKC", ...)
	UnicodeNorm string

	logger *zap.Logger
}

// Option is a function that modifies the spreadsheet algorithm
type Option func(*SpreadsheetAlgorithm)

// WithSnapTolerance sets the coordinate snapping tolerance
func WithSnapTolerance(tolerance float64) Option {
	return func(a *SpreadsheetAlgorithm) {
		a.SnapTolerance = tolerance
	}
}

// WithIntersectionTolerance sets how far rulings may miss each other
func WithIntersectionTolerance(tolerance float64) Option {
	return func(a *SpreadsheetAlgorithm) {
		a.IntersectionTolerance = tolerance
	}
}

// WithTextTolerance sets the line and word tolerances of cell text
func WithTextTolerance(line, wordGap float64) Option {
	return func(a *SpreadsheetAlgorithm) {
		a.LineTolerance = line
		a.WordGap = wordGap
	}
}

// WithUnicodeNorm normalizes cell text
func WithUnicodeNorm(form string) Option {
	return func(a *SpreadsheetAlgorithm) {
		a.UnicodeNorm = form
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *SpreadsheetAlgorithm) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewSpreadsheetAlgorithm creates the algorithm with default tolerances
func NewSpreadsheetAlgorithm(opts ...Option) *SpreadsheetAlgorithm {
	a := &SpreadsheetAlgorithm{
		SnapTolerance:         2,
		JoinTolerance:         1,
		IntersectionTolerance: 1,
		MinRulingLength:       1,
		ThinRect:              2,
		AxisTolerance:         1,
		LineTolerance:         pdf.DefaultYTolerance,
		WordGap:               pdf.DefaultXTolerance,
		logger:                zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Extract returns the tables of page, top to bottom then left to right. A
// page without rulings or without closed cells has no tables.
func (a *SpreadsheetAlgorithm) Extract(page pdf.Page) ([]*Table, error) {
	objects, err := page.GetObjects()
	if err != nil {
		return nil, fmt.Errorf("failed to read page %d: %w", page.GetPageNumber(), err)
	}

	layout, err := a.analyze(objects)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page.GetPageNumber(), err)
	}

	tables := make([]*Table, 0, len(layout.areas))
	for _, area := range layout.areas {
		tables = append(tables, a.buildTable(page.GetPageNumber(), area, objects.Chars))
	}

	a.logger.Debug("spreadsheet extraction",
		zap.Int("page", page.GetPageNumber()),
		zap.Int("horizontal_rulings", len(layout.horizontal)),
		zap.Int("vertical_rulings", len(layout.vertical)),
		zap.Int("intersections", len(layout.intersections)),
		zap.Int("cells", len(layout.cells)),
		zap.Int("tables", len(tables)))
	return tables, nil
}

// IsTabular reports whether the page has at least one spreadsheet area
func (a *SpreadsheetAlgorithm) IsTabular(page pdf.Page) (bool, error) {
	objects, err := page.GetObjects()
	if err != nil {
		return false, fmt.Errorf("failed to read page %d: %w", page.GetPageNumber(), err)
	}
	layout, err := a.analyze(objects)
	if err != nil {
		return false, fmt.Errorf("page %d: %w", page.GetPageNumber(), err)
	}
	return len(layout.areas) > 0, nil
}

// Layout is the intermediate geometry of a page
type Layout struct {
	horizontal    []Ruling
	vertical      []Ruling
	intersections []intersection
	cells         []pdf.BoundingBox
	areas         [][]pdf.BoundingBox
}

// Rulings returns the collapsed horizontal and vertical rulings
func (l *Layout) Rulings() (horizontal, vertical []Ruling) {
	return l.horizontal, l.vertical
}

// Cells returns every closed cell found on the page
func (l *Layout) Cells() []pdf.BoundingBox {
	return l.cells
}

// Areas returns the cells grouped by spreadsheet area
func (l *Layout) Areas() [][]pdf.BoundingBox {
	return l.areas
}

// Analyze exposes the ruling and cell geometry of a page for diagnosis
func (a *SpreadsheetAlgorithm) Analyze(page pdf.Page) (*Layout, error) {
	objects, err := page.GetObjects()
	if err != nil {
		return nil, fmt.Errorf("failed to read page %d: %w", page.GetPageNumber(), err)
	}
	return a.analyze(objects)
}

func (a *SpreadsheetAlgorithm) analyze(objects pdf.Objects) (*Layout, error) {
	if !validGeometry(objects) {
		return nil, ErrGeometry
	}

	horizontal, vertical := collectRulings(objects, a.AxisTolerance, a.ThinRect)
	snapRulings(horizontal, vertical, a.SnapTolerance)

	layout := &Layout{
		horizontal: collapseRulings(horizontal, a.JoinTolerance, a.MinRulingLength),
		vertical:   collapseRulings(vertical, a.JoinTolerance, a.MinRulingLength),
	}
	if len(layout.horizontal) < 2 || len(layout.vertical) < 2 {
		return layout, nil
	}

	index := a.findIntersections(layout)
	layout.cells = a.findCells(layout.intersections, index)
	layout.areas = groupCells(layout.cells, a.SnapTolerance)
	return layout, nil
}

// intersection is a crossing of horizontal ruling H and vertical ruling V
type intersection struct {
	X, Y float64
	H, V int
}

// findIntersections records every crossing and indexes it by position
func (a *SpreadsheetAlgorithm) findIntersections(layout *Layout) *rtree.RTreeG[int] {
	var tr rtree.RTreeG[int]
	tol := a.IntersectionTolerance

	for vi, v := range layout.vertical {
		tr.Insert(
			[2]float64{v.Position - tol, v.Start - tol},
			[2]float64{v.Position + tol, v.End + tol},
			vi)
	}

	var points []intersection
	for hi, h := range layout.horizontal {
		tr.Search(
			[2]float64{h.Start - tol, h.Position},
			[2]float64{h.End + tol, h.Position},
			func(_, _ [2]float64, vi int) bool {
				points = append(points, intersection{X: layout.vertical[vi].Position, Y: h.Position, H: hi, V: vi})
				return true
			})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Y != points[j].Y {
			return points[i].Y < points[j].Y
		}
		return points[i].X < points[j].X
	})
	layout.intersections = points

	var index rtree.RTreeG[int]
	for i, p := range points {
		index.Insert([2]float64{p.X, p.Y}, [2]float64{p.X, p.Y}, i)
	}
	return &index
}

// findCells takes each intersection as a top-left corner and closes the
// smallest rectangle whose four sides run along single rulings
func (a *SpreadsheetAlgorithm) findCells(points []intersection, index *rtree.RTreeG[int]) []pdf.BoundingBox {
	byH := make(map[int][]intersection)
	byV := make(map[int][]intersection)
	for _, p := range points {
		byH[p.H] = append(byH[p.H], p) // sorted by X
		byV[p.V] = append(byV[p.V], p) // sorted by Y
	}

	var cells []pdf.BoundingBox
	for _, topLeft := range points {
		var rights, bottoms []intersection
		for _, p := range byH[topLeft.H] {
			if p.X > topLeft.X {
				rights = append(rights, p)
			}
		}
		for _, p := range byV[topLeft.V] {
			if p.Y > topLeft.Y {
				bottoms = append(bottoms, p)
			}
		}

	search:
		for _, right := range rights {
			for _, bottom := range bottoms {
				if a.closes(points, index, right, bottom) {
					cells = append(cells, pdf.BoundingBox{
						X0: topLeft.X, Y0: topLeft.Y,
						X1: right.X, Y1: bottom.Y,
					})
					break search
				}
			}
		}
	}
	return cells
}

// closes reports whether an intersection at (right.X, bottom.Y) lies on
// the vertical ruling of right and the horizontal ruling of bottom
func (a *SpreadsheetAlgorithm) closes(points []intersection, index *rtree.RTreeG[int], right, bottom intersection) bool {
	found := false
	index.Search(
		[2]float64{right.X, bottom.Y},
		[2]float64{right.X, bottom.Y},
		func(_, _ [2]float64, i int) bool {
			if points[i].V == right.V && points[i].H == bottom.H {
				found = true
				return false
			}
			return true
		})
	return found
}

// groupCells collects cells that share an edge or a corner into areas,
// sorted top to bottom then left to right
func groupCells(cells []pdf.BoundingBox, tolerance float64) [][]pdf.BoundingBox {
	if len(cells) == 0 {
		return nil
	}

	var tr rtree.RTreeG[int]
	for i, c := range cells {
		tr.Insert([2]float64{c.X0, c.Y0}, [2]float64{c.X1, c.Y1}, i)
	}

	parent := make([]int, len(cells))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i, c := range cells {
		tr.Search(
			[2]float64{c.X0 - tolerance, c.Y0 - tolerance},
			[2]float64{c.X1 + tolerance, c.Y1 + tolerance},
			func(_, _ [2]float64, j int) bool {
				if ri, rj := find(i), find(j); ri != rj {
					parent[rj] = ri
				}
				return true
			})
	}

	groups := make(map[int][]pdf.BoundingBox)
	var roots []int
	for i, c := range cells {
		root := find(i)
		if _, ok := groups[root]; !ok {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], c)
	}

	areas := make([][]pdf.BoundingBox, 0, len(roots))
	for _, root := range roots {
		areas = append(areas, groups[root])
	}
	sort.SliceStable(areas, func(i, j int) bool {
		bi, bj := bounds(areas[i]), bounds(areas[j])
		if bi.Y0 != bj.Y0 {
			return bi.Y0 < bj.Y0
		}
		return bi.X0 < bj.X0
	})
	return areas
}

func bounds(cells []pdf.BoundingBox) pdf.BoundingBox {
	b := cells[0]
	for _, c := range cells[1:] {
		b = b.Union(c)
	}
	return b
}

// buildTable places each cell of an area on the grid formed by the distinct
// cell tops and lefts, and fills it with the glyphs centred inside it
func (a *SpreadsheetAlgorithm) buildTable(pageNumber int, area []pdf.BoundingBox, chars []pdf.CharObject) *Table {
	var tops, lefts []float64
	for _, c := range area {
		tops = append(tops, c.Y0)
		lefts = append(lefts, c.X0)
	}
	tops = uniqueSorted(tops)
	lefts = uniqueSorted(lefts)

	area = append([]pdf.BoundingBox(nil), area...)
	sort.SliceStable(area, func(i, j int) bool {
		if area[i].Y0 != area[j].Y0 {
			return area[i].Y0 < area[j].Y0
		}
		return area[i].X0 < area[j].X0
	})

	used := make([]bool, len(chars))
	cells := make([]Cell, 0, len(area))
	for _, box := range area {
		var inside []pdf.CharObject
		for i, ch := range chars {
			if used[i] {
				continue
			}
			center := ch.GetBBox().Center()
			if box.Contains(center.X, center.Y) {
				inside = append(inside, ch)
				used[i] = true
			}
		}
		cells = append(cells, Cell{
			BBox:    box,
			Row:     sort.SearchFloat64s(tops, box.Y0),
			Col:     sort.SearchFloat64s(lefts, box.X0),
			RawText: a.cellText(inside),
		})
	}
	return NewTable(pageNumber, cells)
}

// cellText joins the trimmed text lines of a cell with LineSeparator
func (a *SpreadsheetAlgorithm) cellText(chars []pdf.CharObject) string {
	lines := pdf.TextLines(chars, a.WordGap, a.LineTolerance)
	return pdf.NormalizeText(strings.Join(lines, LineSeparator), a.UnicodeNorm)
}

func uniqueSorted(values []float64) []float64 {
	sort.Float64s(values)
	var out []float64
	for _, v := range values {
		if len(out) == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
