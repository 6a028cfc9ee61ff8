package pdf

import (
	"math"
	"sort"
	"time"
)

// Tolerance for floating point comparisons
const FloatTolerance = 0.1

// DeduplicateLines removes duplicate lines based on coordinates
func DeduplicateLines(lines []LineObject) []LineObject {
	if len(lines) == 0 {
		return lines
	}

	// Normalize direction so reversed duplicates sort together
	normalized := make([]LineObject, len(lines))
	for i, l := range lines {
		if l.X1 < l.X0 || (abs(l.X1-l.X0) < FloatTolerance && l.Y1 < l.Y0) {
			l.X0, l.Y0, l.X1, l.Y1 = l.X1, l.Y1, l.X0, l.Y0
		}
		normalized[i] = l
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		a, b := normalized[i], normalized[j]
		if math.Abs(a.Y0-b.Y0) > FloatTolerance {
			return a.Y0 < b.Y0
		}
		if math.Abs(a.X0-b.X0) > FloatTolerance {
			return a.X0 < b.X0
		}
		if math.Abs(a.Y1-b.Y1) > FloatTolerance {
			return a.Y1 < b.Y1
		}
		return a.X1 < b.X1
	})

	result := []LineObject{normalized[0]}
	for _, curr := range normalized[1:] {
		if !linesEqual(result[len(result)-1], curr) {
			result = append(result, curr)
		}
	}
	return result
}

// linesEqual checks if two normalized lines are essentially the same
func linesEqual(a, b LineObject) bool {
	return math.Abs(a.X0-b.X0) < FloatTolerance &&
		math.Abs(a.Y0-b.Y0) < FloatTolerance &&
		math.Abs(a.X1-b.X1) < FloatTolerance &&
		math.Abs(a.Y1-b.Y1) < FloatTolerance
}

// DeduplicateRects removes rectangles reported twice, e.g. once by the text
// backend and once by the content stream scan
func DeduplicateRects(rects []RectObject) []RectObject {
	if len(rects) == 0 {
		return rects
	}

	sorted := make([]RectObject, len(rects))
	copy(sorted, rects)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y0-sorted[j].Y0) > FloatTolerance {
			return sorted[i].Y0 < sorted[j].Y0
		}
		return sorted[i].X0 < sorted[j].X0
	})

	result := []RectObject{sorted[0]}
	for _, curr := range sorted[1:] {
		last := &result[len(result)-1]
		if rectsEqual(*last, curr) {
			// keep the richer description
			last.Filled = last.Filled || curr.Filled
			last.LineWidth = max(last.LineWidth, curr.LineWidth)
			continue
		}
		result = append(result, curr)
	}
	return result
}

// rectsEqual checks if two rectangles are essentially the same
func rectsEqual(a, b RectObject) bool {
	return math.Abs(a.X0-b.X0) < FloatTolerance &&
		math.Abs(a.Y0-b.Y0) < FloatTolerance &&
		math.Abs(a.X1-b.X1) < FloatTolerance &&
		math.Abs(a.Y1-b.Y1) < FloatTolerance
}

// parsePDFDate parses the D:YYYYMMDDHHmmSS prefix of a PDF date string
func parsePDFDate(dateStr string) time.Time {
	if len(dateStr) >= 2 && dateStr[:2] == "D:" {
		dateStr = dateStr[2:]
	}
	layouts := []struct {
		layout string
		n      int
	}{
		{"20060102150405", 14},
		{"200601021504", 12},
		{"20060102", 8},
		{"2006", 4},
	}
	for _, l := range layouts {
		if len(dateStr) < l.n {
			continue
		}
		if t, err := time.Parse(l.layout, dateStr[:l.n]); err == nil {
			return t
		}
	}
	return time.Time{}
}
