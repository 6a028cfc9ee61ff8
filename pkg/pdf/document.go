package pdf

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// defaultMediaBox is US Letter, used when a page carries no usable MediaBox
var defaultMediaBox = BoundingBox{X0: 0, Y0: 0, X1: 612, Y1: 792}

// document implements Document over a text backend and an optional pdfcpu
// geometry backend. The backends are not safe for concurrent use, so every
// call into them holds mu.
type document struct {
	mu       sync.Mutex
	text     textSource
	geometry *pdfcpuGeometry
	metadata Metadata
	logger   *zap.Logger
	pages    map[int]*page
	closer   io.Closer
	closed   bool
}

// Open opens a PDF file and returns a Document that owns the file; Close
// releases both
func Open(path string, opts ...LoadOption) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	doc, err := Load(f, info.Size(), opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	doc.(*document).closer = f
	return doc, nil
}

// Load parses a PDF byte stream. The text backend is ledongthuc/pdf with
// dslipak/pdf as fallback; pdfcpu adds page geometry, stroked rulings and
// metadata when it can read the file. The reader must stay valid until the
// document is closed.
func Load(r io.ReaderAt, size int64, opts ...LoadOption) (Document, error) {
	config := newLoadConfig(opts...)
	logger := config.Logger

	text, err := openTextSource(r, size, config.Password, logger)
	if err != nil {
		return nil, err
	}

	doc := &document{
		text:   text,
		logger: logger,
		pages:  make(map[int]*page),
	}

	if config.Geometry {
		geometry, err := newPDFCPUGeometry(r, size, config.Password)
		if err != nil {
			logger.Warn("pdfcpu cannot read document, rulings limited to text backend rectangles",
				zap.Error(err))
		} else {
			doc.geometry = geometry
			doc.metadata = geometry.Metadata()
			if geometry.PageCount() != text.NumPage() {
				logger.Warn("backends disagree on page count",
					zap.String("backend", text.Name()),
					zap.Int("text_pages", text.NumPage()),
					zap.Int("pdfcpu_pages", geometry.PageCount()))
			}
		}
	}

	logger.Debug("document loaded",
		zap.String("backend", text.Name()),
		zap.Int("pages", text.NumPage()),
		zap.Bool("geometry", doc.geometry != nil))
	return doc, nil
}

// openTextSource tries each text backend in turn
func openTextSource(r io.ReaderAt, size int64, password string, logger *zap.Logger) (textSource, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty input", ErrFormat)
	}

	source, errLedongthuc := newLedongthucSource(r, size, password)
	if errLedongthuc == nil {
		return source, nil
	}
	logger.Debug("ledongthuc backend failed, trying dslipak", zap.Error(errLedongthuc))

	source, errDslipak := newDslipakSource(r, size, password)
	if errDslipak == nil {
		return source, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrFormat, multierr.Combine(errLedongthuc, errDslipak))
}

// Metadata returns the PDF metadata
func (d *document) Metadata() Metadata {
	return d.metadata
}

// PageCount returns the total number of pages
func (d *document) PageCount() int {
	return d.text.NumPage()
}

// GetPage returns a specific page by index (0-based)
func (d *document) GetPage(index int) (Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	count := d.text.NumPage()
	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: index %d not in [0, %d)", ErrPageOutOfRange, index, count)
	}
	if p, ok := d.pages[index]; ok {
		return p, nil
	}

	p := d.newPage(index + 1)
	d.pages[index] = p
	return p, nil
}

// Pages returns a lazy, forward-only sequence over the document's pages
func (d *document) Pages(opts ...IteratorOption) *PageIterator {
	return NewPageIterator(d, opts...)
}

// Close releases resources associated with the document. It is safe to call
// more than once.
func (d *document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	d.pages = nil
	d.geometry = nil
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// newPage resolves the page box, preferring pdfcpu's inherited attributes
// over the page's own entries. Callers hold mu.
func (d *document) newPage(pageNumber int) *page {
	p := &page{
		doc:        d,
		pageNumber: pageNumber,
		mediaBox:   defaultMediaBox,
	}

	if box, ok := d.text.MediaBox(pageNumber); ok {
		p.mediaBox = box
	}
	p.rotation = d.text.Rotation(pageNumber)

	if d.geometry != nil {
		geometry, err := d.geometry.Page(pageNumber)
		if err != nil {
			d.logger.Warn("pdfcpu cannot read page, rulings limited to text backend rectangles",
				zap.Int("page", pageNumber), zap.Error(err))
		} else {
			p.mediaBox = geometry.MediaBox
			p.rotation = geometry.Rotation
			p.geometry = &geometry
		}
	}
	return p
}
