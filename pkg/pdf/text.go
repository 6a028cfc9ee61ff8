package pdf

import (
	"sort"
	"strings"
)

// Default tolerances for grouping glyphs into words and lines
const (
	DefaultXTolerance = 3.0
	DefaultYTolerance = 3.0
)

// ExtractText joins glyphs into text: lines top to bottom separated by "\n",
// words separated by a single space
func ExtractText(chars []CharObject, opts ...TextExtractionOption) string {
	options := &textExtractionConfig{
		XTolerance: DefaultXTolerance,
		YTolerance: DefaultYTolerance,
	}
	for _, opt := range opts {
		opt(options)
	}

	lines := TextLines(chars, options.XTolerance, options.YTolerance)
	return NormalizeText(strings.Join(lines, "\n"), options.UnicodeNorm)
}

// TextLines groups glyphs into lines whose tops lie within yTolerance of the
// line's first glyph, and returns each line's text with a space wherever the
// horizontal gap between glyphs exceeds xTolerance. Lines are trimmed and
// empty lines dropped.
func TextLines(chars []CharObject, xTolerance, yTolerance float64) []string {
	if len(chars) == 0 {
		return nil
	}

	sorted := make([]CharObject, len(chars))
	copy(sorted, chars)
	sortCharsByPosition(sorted)

	var lines []string
	var currentLine []CharObject
	var lineTop float64

	for _, char := range sorted {
		if len(currentLine) > 0 && abs(char.Y0-lineTop) > yTolerance {
			if text := extractLineText(currentLine, xTolerance); text != "" {
				lines = append(lines, text)
			}
			currentLine = nil
		}
		if len(currentLine) == 0 {
			lineTop = char.Y0
		}
		currentLine = append(currentLine, char)
	}
	if text := extractLineText(currentLine, xTolerance); text != "" {
		lines = append(lines, text)
	}
	return lines
}

// extractLineText extracts text from a line of characters
func extractLineText(chars []CharObject, xTolerance float64) string {
	if len(chars) == 0 {
		return ""
	}

	sorted := make([]CharObject, len(chars))
	copy(sorted, chars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X0 < sorted[j].X0
	})

	var b strings.Builder
	var lastX1 float64
	for i, char := range sorted {
		if i > 0 && char.X0-lastX1 > xTolerance {
			b.WriteByte(' ')
		}
		b.WriteString(char.Text)
		if i == 0 || char.X1 > lastX1 {
			lastX1 = char.X1
		}
	}
	return strings.TrimSpace(b.String())
}

// sortCharsByPosition sorts characters top-to-bottom, then left-to-right
func sortCharsByPosition(chars []CharObject) {
	sort.SliceStable(chars, func(i, j int) bool {
		if abs(chars[i].Y0-chars[j].Y0) >= 1 {
			return chars[i].Y0 < chars[j].Y0
		}
		return chars[i].X0 < chars[j].X0
	})
}

// CharsWithin returns the glyphs whose centre lies inside bbox
func CharsWithin(chars []CharObject, bbox BoundingBox) []CharObject {
	var within []CharObject
	for _, char := range chars {
		c := char.GetBBox().Center()
		if bbox.Contains(c.X, c.Y) {
			within = append(within, char)
		}
	}
	return within
}
