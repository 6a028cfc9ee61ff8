package tables

import (
	"math"
	"sort"

	"github.com/pyhub-apps/pdfsheet/pkg/pdf"
)

// Orientation of a ruling
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// String returns the orientation name
func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Ruling is an axis-aligned rule drawn on the page. Position is the y of a
// horizontal ruling or the x of a vertical one; Start and End bound its
// extent along the other axis.
type Ruling struct {
	Orientation Orientation
	Position    float64
	Start       float64
	End         float64
}

// Length returns the extent of the ruling
func (r Ruling) Length() float64 {
	return r.End - r.Start
}

// BBox returns the ruling as a zero-thickness box
func (r Ruling) BBox() pdf.BoundingBox {
	if r.Orientation == Vertical {
		return pdf.BoundingBox{X0: r.Position, Y0: r.Start, X1: r.Position, Y1: r.End}
	}
	return pdf.BoundingBox{X0: r.Start, Y0: r.Position, X1: r.End, Y1: r.Position}
}

// collectRulings turns stroked lines and rectangle edges into rulings.
// Oblique lines are dropped. A rectangle thinner than thin along one axis is
// a drawn rule and yields a single ruling along its centre line.
func collectRulings(objects pdf.Objects, axisTolerance, thin float64) (horizontal, vertical []Ruling) {
	for _, l := range objects.Lines {
		switch {
		case math.Abs(l.Y0-l.Y1) <= axisTolerance:
			horizontal = append(horizontal, Ruling{
				Orientation: Horizontal,
				Position:    (l.Y0 + l.Y1) / 2,
				Start:       math.Min(l.X0, l.X1),
				End:         math.Max(l.X0, l.X1),
			})
		case math.Abs(l.X0-l.X1) <= axisTolerance:
			vertical = append(vertical, Ruling{
				Orientation: Vertical,
				Position:    (l.X0 + l.X1) / 2,
				Start:       math.Min(l.Y0, l.Y1),
				End:         math.Max(l.Y0, l.Y1),
			})
		}
	}

	for _, r := range objects.Rects {
		w, h := r.X1-r.X0, r.Y1-r.Y0
		switch {
		case w <= thin && h <= thin:
			// a dot, not a rule
		case h <= thin:
			horizontal = append(horizontal, Ruling{Orientation: Horizontal, Position: (r.Y0 + r.Y1) / 2, Start: r.X0, End: r.X1})
		case w <= thin:
			vertical = append(vertical, Ruling{Orientation: Vertical, Position: (r.X0 + r.X1) / 2, Start: r.Y0, End: r.Y1})
		default:
			horizontal = append(horizontal,
				Ruling{Orientation: Horizontal, Position: r.Y0, Start: r.X0, End: r.X1},
				Ruling{Orientation: Horizontal, Position: r.Y1, Start: r.X0, End: r.X1})
			vertical = append(vertical,
				Ruling{Orientation: Vertical, Position: r.X0, Start: r.Y0, End: r.Y1},
				Ruling{Orientation: Vertical, Position: r.X1, Start: r.Y0, End: r.Y1})
		}
	}
	return horizontal, vertical
}

// snapRulings moves coordinates that lie within tolerance of each other onto
// a shared value, so that rules meant to meet do meet
func snapRulings(horizontal, vertical []Ruling, tolerance float64) {
	xs := make([]float64, 0, len(vertical)+2*len(horizontal))
	ys := make([]float64, 0, len(horizontal)+2*len(vertical))
	for _, r := range vertical {
		xs = append(xs, r.Position)
		ys = append(ys, r.Start, r.End)
	}
	for _, r := range horizontal {
		ys = append(ys, r.Position)
		xs = append(xs, r.Start, r.End)
	}
	snapX := newSnapper(xs, tolerance)
	snapY := newSnapper(ys, tolerance)

	for i := range vertical {
		vertical[i].Position = snapX.snap(vertical[i].Position)
		vertical[i].Start = snapY.snap(vertical[i].Start)
		vertical[i].End = snapY.snap(vertical[i].End)
	}
	for i := range horizontal {
		horizontal[i].Position = snapY.snap(horizontal[i].Position)
		horizontal[i].Start = snapX.snap(horizontal[i].Start)
		horizontal[i].End = snapX.snap(horizontal[i].End)
	}
}

// snapper maps values onto the centres of tolerance-wide clusters
type snapper struct {
	bounds  []float64 // upper bound of each cluster
	centers []float64
}

func newSnapper(values []float64, tolerance float64) snapper {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var s snapper
	var sum float64
	var n int
	for i, v := range sorted {
		if i > 0 && v-sorted[i-1] > tolerance {
			s.bounds = append(s.bounds, sorted[i-1])
			s.centers = append(s.centers, sum/float64(n))
			sum, n = 0, 0
		}
		sum += v
		n++
	}
	if n > 0 {
		s.bounds = append(s.bounds, sorted[len(sorted)-1])
		s.centers = append(s.centers, sum/float64(n))
	}
	return s
}

func (s snapper) snap(v float64) float64 {
	i := sort.SearchFloat64s(s.bounds, v)
	if i < len(s.centers) {
		return s.centers[i]
	}
	return v
}

// collapseRulings merges collinear rulings whose extents overlap or are
// separated by at most join, and drops rulings shorter than minLength
func collapseRulings(rulings []Ruling, join, minLength float64) []Ruling {
	if len(rulings) == 0 {
		return nil
	}

	sorted := make([]Ruling, len(rulings))
	copy(sorted, rulings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position < sorted[j].Position
		}
		return sorted[i].Start < sorted[j].Start
	})

	var merged []Ruling
	for _, r := range sorted {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.Position == r.Position && r.Start <= last.End+join {
				last.End = math.Max(last.End, r.End)
				continue
			}
		}
		merged = append(merged, r)
	}

	result := merged[:0]
	for _, r := range merged {
		if r.Length() >= minLength {
			result = append(result, r)
		}
	}
	return result
}

// validGeometry reports whether every coordinate is finite
func validGeometry(objects pdf.Objects) bool {
	finite := func(vs ...float64) bool {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
		return true
	}
	for _, l := range objects.Lines {
		if !finite(l.X0, l.Y0, l.X1, l.Y1) {
			return false
		}
	}
	for _, r := range objects.Rects {
		if !finite(r.X0, r.Y0, r.X1, r.Y1) {
			return false
		}
	}
	return true
}
