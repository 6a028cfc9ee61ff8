package pdfsheet

import (
	"errors"
	"strings"
	"testing"

	"github.com/pyhub-apps/pdfsheet/internal/testpdf"
)

func TestOpenPDF(t *testing.T) {
	path := testpdf.Write(t, "Sample", testpdf.SampleTable(), testpdf.TextOnly())

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open PDF: %v", err)
	}
	defer doc.Close()

	if doc.PageCount() != 2 {
		t.Errorf("Expected 2 pages, got %d", doc.PageCount())
	}
	if doc.Metadata().Title != "Sample" {
		t.Errorf("Expected title 'Sample', got %q", doc.Metadata().Title)
	}
}

func TestExtractTables(t *testing.T) {
	path := testpdf.Write(t, "Sample", testpdf.SampleTable(), testpdf.TextOnly())

	tables, err := ExtractTables(path, 0)
	if err != nil {
		t.Fatalf("Failed to extract tables: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("Expected 1 table, got %d", len(tables))
	}

	table := tables[0]
	if table.PageNumber != 1 {
		t.Errorf("Expected table on page 1, got %d", table.PageNumber)
	}
	if table.RowCount() != 2 || table.ColCount() != 2 {
		t.Errorf("Expected 2x2 table, got %dx%d", table.RowCount(), table.ColCount())
	}

	var rows []string
	for _, row := range table.Texts() {
		rows = append(rows, strings.Join(row, "|"))
	}
	if got := strings.Join(rows, "\n"); got != "A|B\nC\rD|E" {
		t.Errorf("Unexpected table text: %q", got)
	}
}

func TestOpenOptionsAndIterator(t *testing.T) {
	path := testpdf.Write(t, "Sample", testpdf.SampleTable())

	if _, err := ExtractTables(path+".missing", 0); err == nil {
		t.Error("Expected error for missing file")
	}

	algorithm := NewSpreadsheetAlgorithm(WithSnapTolerance(0.5))
	doc, err := Open(path, WithoutGeometry())
	if err != nil {
		t.Fatalf("Failed to open PDF: %v", err)
	}
	defer doc.Close()

	it := doc.Pages()
	if _, err := it.Next(); err != nil {
		t.Fatalf("Failed to get page: %v", err)
	}
	if _, err := it.Next(); !errors.Is(err, ErrPagesExhausted) {
		t.Errorf("Expected ErrPagesExhausted, got %v", err)
	}

	page, err := doc.GetPage(0)
	if err != nil {
		t.Fatalf("Failed to get page: %v", err)
	}
	tabular, err := algorithm.IsTabular(page)
	if err != nil {
		t.Fatalf("IsTabular failed: %v", err)
	}
	if !tabular {
		t.Error("Expected the ruled page to be tabular")
	}
}
