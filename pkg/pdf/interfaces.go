package pdf

// Document represents a loaded PDF document
type Document interface {
	// Metadata returns the PDF metadata
	Metadata() Metadata

	// PageCount returns the total number of pages
	PageCount() int

	// GetPage returns a specific page by index (0-based)
	GetPage(index int) (Page, error)

	// Pages returns a lazy, forward-only sequence over the document's pages
	Pages(opts ...IteratorOption) *PageIterator

	// Close releases resources associated with the document
	Close() error
}

// Page represents a single page in a PDF document
type Page interface {
	// GetPageNumber returns the page number (1-based)
	GetPageNumber() int

	// GetWidth returns the page width
	GetWidth() float64

	// GetHeight returns the page height
	GetHeight() float64

	// GetRotation returns the page rotation in degrees
	GetRotation() int

	// GetBBox returns the page bounding box
	GetBBox() BoundingBox

	// GetObjects returns the glyphs, stroked lines and rectangles of the page
	GetObjects() (Objects, error)

	// ExtractText extracts plain text from the page
	ExtractText(opts ...TextExtractionOption) (string, error)
}

// Object represents a positioned PDF object (char, line or rect)
type Object interface {
	// GetType returns the object type
	GetType() ObjectType

	// GetBBox returns the object's bounding box
	GetBBox() BoundingBox
}
