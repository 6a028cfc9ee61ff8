package pdf

import (
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var disableConfigDir sync.Once

// pdfcpuGeometry reads page boxes, metadata and the path operators of the
// content streams through pdfcpu
type pdfcpuGeometry struct {
	ctx *model.Context
}

// pageGeometry is what pdfcpu reports for one page, in PDF user space
type pageGeometry struct {
	MediaBox BoundingBox
	Rotation int
	Lines    []LineObject
	Rects    []RectObject
}

// newPDFCPUGeometry reads and validates the byte stream with relaxed validation
func newPDFCPUGeometry(r io.ReaderAt, size int64, password string) (_ *pdfcpuGeometry, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdfcpu: %v", rec)
		}
	}()

	// pdfcpu would otherwise create a config directory under the user's home
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}

	ctx, err := api.ReadContext(io.NewSectionReader(r, 0, size), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}
	return &pdfcpuGeometry{ctx: ctx}, nil
}

// PageCount returns the number of pages pdfcpu sees
func (g *pdfcpuGeometry) PageCount() int {
	return g.ctx.PageCount
}

// Page returns the box, rotation and painted paths of a page (1-based)
func (g *pdfcpuGeometry) Page(pageNumber int) (_ pageGeometry, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: page %d: %v", ErrContent, pageNumber, rec)
		}
	}()

	if pageNumber < 1 || pageNumber > g.ctx.PageCount {
		return pageGeometry{}, fmt.Errorf("page number %d out of range [1, %d]", pageNumber, g.ctx.PageCount)
	}

	pageDict, _, attrs, err := g.ctx.PageDict(pageNumber, false)
	if err != nil {
		return pageGeometry{}, fmt.Errorf("failed to get page dict: %w", err)
	}

	geometry := pageGeometry{MediaBox: defaultMediaBox}
	if attrs != nil {
		if attrs.MediaBox != nil {
			geometry.MediaBox = BoundingBox{
				X0: attrs.MediaBox.LL.X,
				Y0: attrs.MediaBox.LL.Y,
				X1: attrs.MediaBox.UR.X,
				Y1: attrs.MediaBox.UR.Y,
			}
		}
		geometry.Rotation = attrs.Rotate
	} else if rot, ok := pageDict["Rotate"].(types.Integer); ok {
		geometry.Rotation = int(rot)
	}

	content, err := g.content(pageDict)
	if err != nil {
		return geometry, err
	}
	geometry.Lines, geometry.Rects = scanPaths(content)
	return geometry, nil
}

// content returns the decoded and concatenated content streams of a page
func (g *pdfcpuGeometry) content(pageDict types.Dict) ([]byte, error) {
	contents := pageDict["Contents"]
	if contents == nil {
		return nil, nil
	}

	var streams [][]byte
	switch v := contents.(type) {
	case *types.IndirectRef:
		stream, err := g.stream(*v)
		if err != nil {
			return nil, err
		}
		streams = append(streams, stream)
	case types.IndirectRef:
		stream, err := g.stream(v)
		if err != nil {
			return nil, err
		}
		streams = append(streams, stream)
	case types.Array:
		for _, item := range v {
			var ref types.IndirectRef
			switch r := item.(type) {
			case *types.IndirectRef:
				ref = *r
			case types.IndirectRef:
				ref = r
			default:
				continue
			}
			// a broken part of a split stream should not hide the rest
			stream, err := g.stream(ref)
			if err != nil {
				continue
			}
			streams = append(streams, stream)
		}
	}
	return combineContentStreams(streams), nil
}

// stream dereferences and decodes a single content stream
func (g *pdfcpuGeometry) stream(ref types.IndirectRef) ([]byte, error) {
	streamDict, _, err := g.ctx.DereferenceStreamDict(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference stream: %w", err)
	}
	if streamDict == nil {
		return nil, nil
	}
	if len(streamDict.Content) == 0 {
		if err := streamDict.Decode(); err != nil {
			return nil, fmt.Errorf("failed to decode stream: %w", err)
		}
	}
	return streamDict.Content, nil
}

// combineContentStreams concatenates content streams; a page may split its
// operators across several streams
func combineContentStreams(streams [][]byte) []byte {
	var combined []byte
	for _, stream := range streams {
		combined = append(combined, stream...)
		combined = append(combined, '\n')
	}
	return combined
}

// Metadata reads the document information dictionary
func (g *pdfcpuGeometry) Metadata() Metadata {
	if g.ctx.Info == nil {
		return Metadata{}
	}
	dict, err := g.ctx.DereferenceDict(*g.ctx.Info)
	if err != nil || dict == nil {
		return Metadata{}
	}
	return Metadata{
		Title:        getStringFromDict(dict, "Title"),
		Author:       getStringFromDict(dict, "Author"),
		Subject:      getStringFromDict(dict, "Subject"),
		Creator:      getStringFromDict(dict, "Creator"),
		Producer:     getStringFromDict(dict, "Producer"),
		CreationDate: parsePDFDate(getStringFromDict(dict, "CreationDate")),
		ModDate:      parsePDFDate(getStringFromDict(dict, "ModDate")),
	}
}

// getStringFromDict decodes a text string entry (PDFDocEncoding or UTF-16)
func getStringFromDict(dict types.Dict, key string) string {
	switch v := dict[key].(type) {
	case types.StringLiteral:
		if s, err := types.StringLiteralToString(v); err == nil {
			return s
		}
		return string(v)
	case types.HexLiteral:
		if s, err := types.HexLiteralToString(v); err == nil {
			return s
		}
		return string(v)
	default:
		return ""
	}
}
