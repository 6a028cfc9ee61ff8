package pdf

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Glyph boxes span from 80% of the font size above the baseline to 20%
// below it
const (
	ascentRatio  = 0.8
	descentRatio = 0.2
)

// page implements Page. Objects are read on first use and cached.
type page struct {
	doc        *document
	pageNumber int
	mediaBox   BoundingBox // PDF user space
	rotation   int
	geometry   *pageGeometry

	once    sync.Once
	objects Objects
	err     error
}

// GetPageNumber returns the page number (1-based)
func (p *page) GetPageNumber() int {
	return p.pageNumber
}

// GetWidth returns the page width
func (p *page) GetWidth() float64 {
	return p.mediaBox.Width()
}

// GetHeight returns the page height
func (p *page) GetHeight() float64 {
	return p.mediaBox.Height()
}

// GetRotation returns the page rotation in degrees
func (p *page) GetRotation() int {
	return p.rotation
}

// GetBBox returns the page bounding box
func (p *page) GetBBox() BoundingBox {
	return BoundingBox{X0: 0, Y0: 0, X1: p.GetWidth(), Y1: p.GetHeight()}
}

// GetObjects returns the glyphs, stroked lines and rectangles of the page in
// top-left page space
func (p *page) GetObjects() (Objects, error) {
	p.once.Do(func() {
		p.objects, p.err = p.loadObjects()
	})
	return p.objects, p.err
}

func (p *page) loadObjects() (Objects, error) {
	p.doc.mu.Lock()
	if p.doc.closed {
		p.doc.mu.Unlock()
		return Objects{}, ErrClosed
	}
	content, err := p.doc.text.Content(p.pageNumber)
	p.doc.mu.Unlock()
	if err != nil {
		return Objects{}, err
	}

	var objects Objects
	objects.Chars = make([]CharObject, 0, len(content.Glyphs))
	for _, g := range content.Glyphs {
		if strings.TrimSpace(g.S) == "" {
			continue
		}
		x0, baseline := p.toPage(g.X, g.Y)
		objects.Chars = append(objects.Chars, CharObject{
			Text:     g.S,
			Font:     g.Font,
			FontSize: g.FontSize,
			X0:       x0,
			Y0:       baseline - ascentRatio*g.FontSize,
			X1:       x0 + g.W,
			Y1:       baseline + descentRatio*g.FontSize,
		})
	}

	var lines []LineObject
	var rects []RectObject
	if p.geometry != nil {
		for _, l := range p.geometry.Lines {
			x0, y0 := p.toPage(l.X0, l.Y0)
			x1, y1 := p.toPage(l.X1, l.Y1)
			lines = append(lines, LineObject{X0: x0, Y0: y0, X1: x1, Y1: y1, LineWidth: l.LineWidth})
		}
		for _, r := range p.geometry.Rects {
			rect := p.rectToPage(r.X0, r.Y0, r.X1, r.Y1)
			rect.LineWidth = r.LineWidth
			rect.Filled = r.Filled
			rects = append(rects, rect)
		}
	} else {
		// the text backend records re operands without the CTM, which is
		// only right for simple generators; used when pdfcpu is unavailable
		for _, r := range content.Rects {
			rects = append(rects, p.rectToPage(r.X0, r.Y0, r.X1, r.Y1))
		}
	}
	objects.Lines = DeduplicateLines(lines)
	objects.Rects = DeduplicateRects(rects)

	p.doc.logger.Debug("page objects",
		zap.Int("page", p.pageNumber),
		zap.Int("chars", len(objects.Chars)),
		zap.Int("lines", len(objects.Lines)),
		zap.Int("rects", len(objects.Rects)))
	return objects, nil
}

// toPage converts a user-space point to top-left page space
func (p *page) toPage(x, y float64) (float64, float64) {
	return x - p.mediaBox.X0, p.mediaBox.Y1 - y
}

func (p *page) rectToPage(x0, y0, x1, y1 float64) RectObject {
	ax, ay := p.toPage(x0, y0)
	bx, by := p.toPage(x1, y1)
	return RectObject{
		X0: min(ax, bx),
		Y0: min(ay, by),
		X1: max(ax, bx),
		Y1: max(ay, by),
	}
}

// ExtractText extracts plain text from the page
func (p *page) ExtractText(opts ...TextExtractionOption) (string, error) {
	objects, err := p.GetObjects()
	if err != nil {
		return "", err
	}
	return ExtractText(objects.Chars, opts...), nil
}
