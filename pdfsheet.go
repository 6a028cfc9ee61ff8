// Package pdfsheet extracts ruled (spreadsheet-style) tables from PDF pages
package pdfsheet

import (
	"fmt"

	"github.com/pyhub-apps/pdfsheet/pkg/pdf"
	"github.com/pyhub-apps/pdfsheet/pkg/tables"
)

// Re-export types from the pdf and tables packages for the public API
type (
	Document             = pdf.Document
	Page                 = pdf.Page
	PageIterator         = pdf.PageIterator
	Objects              = pdf.Objects
	CharObject           = pdf.CharObject
	LineObject           = pdf.LineObject
	RectObject           = pdf.RectObject
	BoundingBox          = pdf.BoundingBox
	LoadOption           = pdf.LoadOption
	TextExtractionOption = pdf.TextExtractionOption
	Table                = tables.Table
	Cell                 = tables.Cell
	Frame                = tables.Frame
	Catalog              = tables.Catalog
	SpreadsheetAlgorithm = tables.SpreadsheetAlgorithm
)

// Re-export option functions
var (
	WithPassword      = pdf.WithPassword
	WithLogger        = pdf.WithLogger
	WithoutGeometry   = pdf.WithoutGeometry
	WithExhaustion    = pdf.WithExhaustion
	WithXTolerance    = pdf.WithXTolerance
	WithYTolerance    = pdf.WithYTolerance
	WithSnapTolerance = tables.WithSnapTolerance
	WithTextTolerance = tables.WithTextTolerance
)

// Re-export sentinel errors
var (
	ErrFormat         = pdf.ErrFormat
	ErrPagesExhausted = pdf.ErrPagesExhausted
	ErrGeometry       = tables.ErrGeometry
)

// Open opens a PDF file and returns a Document
func Open(filepath string, opts ...LoadOption) (Document, error) {
	return pdf.Open(filepath, opts...)
}

// NewSpreadsheetAlgorithm creates the ruling-based table extractor
func NewSpreadsheetAlgorithm(opts ...tables.Option) *SpreadsheetAlgorithm {
	return tables.NewSpreadsheetAlgorithm(opts...)
}

// ExtractTables opens filepath and returns the tables of its first pages
// pages, or of every page when pages is zero
func ExtractTables(filepath string, pages int, opts ...LoadOption) ([]*Table, error) {
	doc, err := Open(filepath, opts...)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if pages <= 0 || pages > doc.PageCount() {
		pages = doc.PageCount()
	}

	algorithm := NewSpreadsheetAlgorithm()
	it := doc.Pages()
	var found []*Table
	for i := 0; i < pages; i++ {
		page, err := it.Next()
		if err != nil {
			return nil, err
		}
		pageTables, err := algorithm.Extract(page)
		if err != nil {
			return nil, fmt.Errorf("failed to extract tables: %w", err)
		}
		found = append(found, pageTables...)
	}
	return found, nil
}
