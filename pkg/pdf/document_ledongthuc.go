package pdf

import (
	"fmt"
	"io"

	lpdf "github.com/ledongthuc/pdf"
)

// textSource is a backend that reports glyph positions and re-operator
// rectangles per page, in PDF user space
type textSource interface {
	Name() string
	NumPage() int
	MediaBox(pageNumber int) (BoundingBox, bool)
	Rotation(pageNumber int) int
	Content(pageNumber int) (rawContent, error)
}

// rawContent is one page's content in PDF user space (bottom-left origin)
type rawContent struct {
	Glyphs []rawGlyph
	Rects  []BoundingBox
}

// rawGlyph is a positioned glyph; Y is the baseline
type rawGlyph struct {
	Font     string
	FontSize float64
	X, Y, W  float64
	S        string
}

// passwordFunc returns the password once, then "" so the backend stops asking
func passwordFunc(password string) func() string {
	if password == "" {
		return nil
	}
	tried := false
	return func() string {
		if tried {
			return ""
		}
		tried = true
		return password
	}
}

// ledongthucSource implements textSource using the ledongthuc/pdf library
type ledongthucSource struct {
	reader *lpdf.Reader
}

// newLedongthucSource parses the byte stream with ledongthuc/pdf
func newLedongthucSource(r io.ReaderAt, size int64, password string) (_ textSource, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("ledongthuc: %v", rec)
		}
	}()

	reader, err := lpdf.NewReaderEncrypted(r, size, passwordFunc(password))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
	}
	return &ledongthucSource{reader: reader}, nil
}

// Name returns the backend name
func (s *ledongthucSource) Name() string {
	return "ledongthuc"
}

// NumPage returns the number of pages
func (s *ledongthucSource) NumPage() int {
	return s.reader.NumPage()
}

// MediaBox returns the page's own MediaBox entry
func (s *ledongthucSource) MediaBox(pageNumber int) (BoundingBox, bool) {
	mediaBox := s.reader.Page(pageNumber).V.Key("MediaBox")
	if mediaBox.Kind() != lpdf.Array || mediaBox.Len() != 4 {
		return BoundingBox{}, false
	}
	return BoundingBox{
		X0: mediaBox.Index(0).Float64(),
		Y0: mediaBox.Index(1).Float64(),
		X1: mediaBox.Index(2).Float64(),
		Y1: mediaBox.Index(3).Float64(),
	}, true
}

// Rotation returns the page's own Rotate entry
func (s *ledongthucSource) Rotation(pageNumber int) int {
	rotate := s.reader.Page(pageNumber).V.Key("Rotate")
	if rotate.Kind() == lpdf.Integer {
		return int(rotate.Int64())
	}
	return 0
}

// Content interprets the page content stream
func (s *ledongthucSource) Content(pageNumber int) (content rawContent, err error) {
	// the library reports malformed streams by panicking
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: page %d: %v", ErrContent, pageNumber, rec)
		}
	}()

	page := s.reader.Page(pageNumber)
	if page.V.IsNull() {
		return rawContent{}, fmt.Errorf("%w: page %d is null", ErrContent, pageNumber)
	}

	c := page.Content()
	content.Glyphs = make([]rawGlyph, 0, len(c.Text))
	for _, text := range c.Text {
		content.Glyphs = append(content.Glyphs, rawGlyph{
			Font:     text.Font,
			FontSize: text.FontSize,
			X:        text.X,
			Y:        text.Y,
			W:        text.W,
			S:        text.S,
		})
	}
	for _, rect := range c.Rect {
		content.Rects = append(content.Rects, BoundingBox{
			X0: min(rect.Min.X, rect.Max.X),
			Y0: min(rect.Min.Y, rect.Max.Y),
			X1: max(rect.Min.X, rect.Max.X),
			Y1: max(rect.Min.Y, rect.Max.Y),
		})
	}
	return content, nil
}
