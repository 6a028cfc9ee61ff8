package pdf

import (
	"fmt"
	"io"

	gopdf "github.com/dslipak/pdf"
)

// dslipakSource implements textSource using the dslipak/pdf library. It is
// the fallback when ledongthuc/pdf rejects a file.
type dslipakSource struct {
	reader *gopdf.Reader
}

// newDslipakSource parses the byte stream with dslipak/pdf
func newDslipakSource(r io.ReaderAt, size int64, password string) (_ textSource, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("dslipak: %v", rec)
		}
	}()

	reader, err := gopdf.NewReaderEncrypted(r, size, passwordFunc(password))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with dslipak: %w", err)
	}
	return &dslipakSource{reader: reader}, nil
}

// Name returns the backend name
func (s *dslipakSource) Name() string {
	return "dslipak"
}

// NumPage returns the number of pages
func (s *dslipakSource) NumPage() int {
	return s.reader.NumPage()
}

// MediaBox returns the page's own MediaBox entry
func (s *dslipakSource) MediaBox(pageNumber int) (BoundingBox, bool) {
	mediaBox := s.reader.Page(pageNumber).V.Key("MediaBox")
	if mediaBox.Kind() != gopdf.Array || mediaBox.Len() != 4 {
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
func (s *dslipakSource) Rotation(pageNumber int) int {
	rotate := s.reader.Page(pageNumber).V.Key("Rotate")
	if rotate.Kind() == gopdf.Integer {
		return int(rotate.Int64())
	}
	return 0
}

// Content interprets the page content stream
func (s *dslipakSource) Content(pageNumber int) (content rawContent, err error) {
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
