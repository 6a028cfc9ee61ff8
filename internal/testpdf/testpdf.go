// Package testpdf writes small uncompressed PDF files with ruled grids for
// tests. Coordinates are in top-left page space on a US Letter page.
package testpdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	pageWidth  = 612.0
	pageHeight = 792.0

	fontSize   = 10.0
	lineHeight = 12.0
	ruleWidth  = 0.5
)

// Text is a string drawn in Courier 10pt with its baseline at Baseline
type Text struct {
	X        float64
	Baseline float64
	S        string
}

// Rule is a filled rectangle
type Rule struct {
	X, Y, W, H float64
}

// Page is the content of one page
type Page struct {
	Texts []Text
	Rules []Rule
}

// AddText draws s with its baseline at (x, baseline)
func (p *Page) AddText(x, baseline float64, s string) {
	p.Texts = append(p.Texts, Text{X: x, Baseline: baseline, S: s})
}

// AddGrid draws a fully ruled grid with its top-left corner at (x, y) and
// writes cells into it. A "\r" in a cell starts a new text line.
func (p *Page) AddGrid(x, y float64, colWidths, rowHeights []float64, cells [][]string) {
	var width, height float64
	for _, w := range colWidths {
		width += w
	}
	for _, h := range rowHeights {
		height += h
	}

	top := y
	for _, h := range append([]float64{0}, rowHeights...) {
		top += h
		p.Rules = append(p.Rules, Rule{X: x, Y: top - ruleWidth/2, W: width, H: ruleWidth})
	}
	left := x
	for _, w := range append([]float64{0}, colWidths...) {
		left += w
		p.Rules = append(p.Rules, Rule{X: left - ruleWidth/2, Y: y, W: ruleWidth, H: height})
	}

	top = y
	for r, row := range cells {
		left = x
		for c, cell := range row {
			for i, line := range strings.Split(cell, "\r") {
				p.AddText(left+4, top+14+float64(i)*lineHeight, line)
			}
			if c < len(colWidths) {
				left += colWidths[c]
			}
		}
		if r < len(rowHeights) {
			top += rowHeights[r]
		}
	}
}

// content renders the page content stream in PDF user space
func (p *Page) content() []byte {
	var b bytes.Buffer
	for _, r := range p.Rules {
		fmt.Fprintf(&b, "%.2f %.2f %.2f %.2f re f\n", r.X, pageHeight-r.Y-r.H, r.W, r.H)
	}
	for _, t := range p.Texts {
		fmt.Fprintf(&b, "BT /F1 %.0f Tf 1 0 0 1 %.2f %.2f Tm (%s) Tj ET\n",
			fontSize, t.X, pageHeight-t.Baseline, escape(t.S))
	}
	return b.Bytes()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// Build returns a complete PDF with the given pages and document title
func Build(title string, pages ...Page) []byte {
	var objects []string

	// 1 catalog, 2 pages, 3 font, 4 info, then a page and a content stream
	// per page
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 5+2*i)
	}
	widths := strings.TrimSpace(strings.Repeat("600 ", 95))

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths ["+widths+"] >>",
		fmt.Sprintf("<< /Title (%s) /Producer (pdfsheet tests) >>", escape(title)),
	)
	for i, p := range pages {
		content := p.content()
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.0f %.0f] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
				pageWidth, pageHeight, 6+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R /Info 4 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}

// Write builds a PDF into the test's temporary directory and returns its
// path
func Write(t testing.TB, title string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pdf")
	if err := os.WriteFile(path, Build(title, pages...), 0o600); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

// SampleTable is the two-row table used across tests: [["A","B"],["C\rD","E"]]
func SampleTable() Page {
	var p Page
	p.AddGrid(100, 100, []float64{100, 100}, []float64{40, 40}, [][]string{
		{"A", "B"},
		{"C\rD", "E"},
	})
	return p
}

// TextOnly is a page with prose and no rulings
func TextOnly() Page {
	var p Page
	p.AddText(72, 100, "No tables on this page")
	return p
}
