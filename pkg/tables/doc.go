// Package tables detects ruled tables on PDF pages.
//
// SpreadsheetAlgorithm works in lattice mode: it builds horizontal and
// vertical rulings from the stroked lines and rectangles of a page, finds
// where they cross, closes every rectangle whose sides run along single
// rulings, and groups touching cells into tables. Cell text is the glyphs
// centred in the cell, one text line per visual line, joined with "\r".
//
// Frame and Catalog give a header/record view over extracted tables with
// fuzzy column lookup.
package tables
