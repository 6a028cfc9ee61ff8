package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/pyhub-apps/pdfsheet/pkg/pdf"
	"github.com/pyhub-apps/pdfsheet/pkg/tables"
)

func main() {
	var (
		pdfPath    = flag.String("pdf", "", "Path to PDF file")
		pages      = flag.Int("pages", 0, "Number of pages to inspect (0 for all)")
		snap       = flag.Float64("snap", 2, "Snap tolerance for ruling positions")
		noGeometry = flag.Bool("no-geometry", false, "Skip the pdfcpu geometry pass")
		verbose    = flag.Bool("v", false, "Print every ruling and cell")
	)
	flag.Parse()

	if *pdfPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	logger := zap.NewNop()
	if *verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
		defer logger.Sync()
	}

	opts := []pdf.LoadOption{pdf.WithLogger(logger)}
	if *noGeometry {
		opts = append(opts, pdf.WithoutGeometry())
	}
	doc, err := pdf.Open(*pdfPath, opts...)
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	defer doc.Close()

	fmt.Printf("Document has %d pages\n\n", doc.PageCount())

	algorithm := tables.NewSpreadsheetAlgorithm(
		tables.WithSnapTolerance(*snap),
		tables.WithLogger(logger),
	)

	limit := doc.PageCount()
	if *pages > 0 && *pages < limit {
		limit = *pages
	}
	it := doc.Pages(pdf.WithExhaustion(pdf.ExhaustionStop))
	for i := 0; i < limit; i++ {
		page, err := it.Next()
		if err != nil {
			log.Printf("Failed to get page %d: %v", i+1, err)
			break
		}
		inspectPage(os.Stdout, algorithm, page, *verbose)
	}
}

func inspectPage(w io.Writer, algorithm *tables.SpreadsheetAlgorithm, page pdf.Page, verbose bool) {
	fmt.Fprintf(w, "=== Page %d (%.0f x %.0f) ===\n", page.GetPageNumber(), page.GetWidth(), page.GetHeight())

	layout, err := algorithm.Analyze(page)
	if err != nil {
		fmt.Fprintf(w, "  Analysis failed: %v\n\n", err)
		return
	}

	horizontal, vertical := layout.Rulings()
	fmt.Fprintf(w, "  Rulings: %d horizontal, %d vertical\n", len(horizontal), len(vertical))
	fmt.Fprintf(w, "  Cells: %d in %d area(s)\n", len(layout.Cells()), len(layout.Areas()))

	if verbose {
		for _, r := range append(append([]tables.Ruling(nil), horizontal...), vertical...) {
			fmt.Fprintf(w, "    %-10s at %7.2f from %7.2f to %7.2f\n", r.Orientation, r.Position, r.Start, r.End)
		}
		for _, c := range layout.Cells() {
			fmt.Fprintf(w, "    cell (%.2f, %.2f) to (%.2f, %.2f)\n", c.X0, c.Y0, c.X1, c.Y1)
		}
	}

	found, err := algorithm.Extract(page)
	if err != nil {
		fmt.Fprintf(w, "  Extraction failed: %v\n\n", err)
		return
	}
	for j, table := range found {
		fmt.Fprintf(w, "\n  Table %d:\n", j+1)
		fmt.Fprintf(w, "    Dimensions: %d rows x %d columns\n", table.RowCount(), table.ColCount())
		fmt.Fprintf(w, "    BBox: (%.2f, %.2f) to (%.2f, %.2f)\n",
			table.BBox.X0, table.BBox.Y0, table.BBox.X1, table.BBox.Y1)
		printTable(w, table.Texts())
	}
	fmt.Fprintln(w)
}

// printTable prints rows in a box, measuring cells in terminal columns so
// wide glyphs stay aligned
func printTable(w io.Writer, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	colWidths := make([]int, len(rows[0]))
	for _, row := range rows {
		for j, cell := range row {
			colWidths[j] = max(colWidths[j], runewidth.StringWidth(cleanCell(cell)))
		}
	}

	// Ensure minimum width, cap at 30 for readability
	for i := range colWidths {
		colWidths[i] = min(max(colWidths[i], 3), 30)
	}

	printSeparator(w, colWidths)
	for i, row := range rows {
		fmt.Fprint(w, "    |")
		for j, width := range colWidths {
			cell := runewidth.Truncate(cleanCell(row[j]), width, "...")
			fmt.Fprintf(w, " %s |", runewidth.FillRight(cell, width))
		}
		fmt.Fprintln(w)

		// Separator after header (first row)
		if i == 0 {
			printSeparator(w, colWidths)
		}
	}
	printSeparator(w, colWidths)
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, tables.LineSeparator, " "))
}

// printSeparator prints a table separator line
func printSeparator(w io.Writer, colWidths []int) {
	fmt.Fprint(w, "    +")
	for _, width := range colWidths {
		fmt.Fprint(w, strings.Repeat("-", width+2)+"+")
	}
	fmt.Fprintln(w)
}
