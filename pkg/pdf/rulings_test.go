package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanPaths(t *testing.T) {
	tests := []struct {
		name    string
		content string
		lines   []LineObject
		rects   []RectObject
	}{
		{
			name:    "filled rectangle under a transform",
			content: "q 2 0 0 2 10 10 cm 0 0 5 5 re f Q",
			rects:   []RectObject{{X0: 10, Y0: 10, X1: 20, Y1: 20, Filled: true}},
		},
		{
			name:    "stroked segment",
			content: "1.5 w 0 0 m 100 0 l S",
			lines:   []LineObject{{X0: 0, Y0: 0, X1: 100, Y1: 0, LineWidth: 1.5}},
		},
		{
			name:    "closed quad filled",
			content: "0 0 m 10 0 l 10 10 l 0 10 l h f",
			rects:   []RectObject{{X0: 0, Y0: 0, X1: 10, Y1: 10, Filled: true}},
		},
		{
			name:    "stroked rectangle",
			content: "2 w 5 5 10 20 re S",
			rects:   []RectObject{{X0: 5, Y0: 5, X1: 15, Y1: 25, LineWidth: 2}},
		},
		{
			name:    "curves are not rulings",
			content: "0 0 m 10 10 20 10 30 0 c S",
		},
		{
			name:    "discarded path",
			content: "0 0 10 10 re n",
		},
		{
			name:    "graphics state restored",
			content: "q 1 0 0 1 50 50 cm Q 0 0 m 0 10 l S",
			lines:   []LineObject{{X0: 0, Y0: 0, X1: 0, Y1: 10, LineWidth: 1}},
		},
		{
			name:    "text and inline images skipped",
			content: "BT /F1 10 Tf (re f) Tj ET BI /W 1 /H 1 ID \x00\xff EI 0 0 m 5 0 l S",
			lines:   []LineObject{{X0: 0, Y0: 0, X1: 5, Y1: 0, LineWidth: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, rects := scanPaths([]byte(tt.content))
			assert.Equal(t, tt.lines, lines)
			assert.Equal(t, tt.rects, rects)
		})
	}
}

func TestTokenize(t *testing.T) {
	tokens := tokenize([]byte("% comment\n/Name 1 -2.5 (a (nested) \\) string) <48656c6c6f> [1 2] << /K 1 >> re"))
	assert.Equal(t, []string{"/Name", "1", "-2.5", "()", "<>", "[", "1", "2", "]", "<<", "/K", "1", ">>", "re"}, tokens)
}

func TestDeduplicateLines(t *testing.T) {
	lines := DeduplicateLines([]LineObject{
		{X0: 0, Y0: 0, X1: 10, Y1: 0},
		{X0: 10, Y0: 0, X1: 0, Y1: 0.05},
		{X0: 0, Y0: 5, X1: 10, Y1: 5},
	})
	require.Len(t, lines, 2)
	assert.Equal(t, LineObject{X0: 0, Y0: 0, X1: 10, Y1: 0}, lines[0])
}

func TestDeduplicateRects(t *testing.T) {
	rects := DeduplicateRects([]RectObject{
		{X0: 0, Y0: 0, X1: 10, Y1: 10},
		{X0: 0.05, Y0: 0, X1: 10, Y1: 10, Filled: true, LineWidth: 2},
		{X0: 20, Y0: 0, X1: 30, Y1: 10},
	})
	require.Len(t, rects, 2)
	assert.True(t, rects[0].Filled)
	assert.Equal(t, 2.0, rects[0].LineWidth)
	assert.Empty(t, DeduplicateRects(nil))
}

func TestParsePDFDate(t *testing.T) {
	assert.Equal(t, 2024, parsePDFDate("D:20240315120000+02'00'").Year())
	assert.Equal(t, 15, parsePDFDate("D:20240315").Day())
	assert.Equal(t, 2019, parsePDFDate("2019").Year())
	assert.True(t, parsePDFDate("garbage").IsZero())
	assert.True(t, parsePDFDate("").IsZero())
}
