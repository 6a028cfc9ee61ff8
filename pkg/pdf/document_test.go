package pdf

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdfsheet/internal/testpdf"
)

func openSample(t *testing.T, opts ...LoadOption) Document {
	t.Helper()
	path := testpdf.Write(t, "Sample", testpdf.SampleTable(), testpdf.TextOnly())
	doc, err := Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = doc.Close() })
	return doc
}

func charText(chars []CharObject) string {
	var b strings.Builder
	for _, c := range chars {
		b.WriteString(c.Text)
	}
	return b.String()
}

func TestOpenSample(t *testing.T) {
	doc := openSample(t)

	assert.Equal(t, 2, doc.PageCount())
	assert.Equal(t, "Sample", doc.Metadata().Title)

	page, err := doc.GetPage(0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.GetPageNumber())
	assert.InDelta(t, 612, page.GetWidth(), 0.01)
	assert.InDelta(t, 792, page.GetHeight(), 0.01)
	assert.Equal(t, 0, page.GetRotation())
	assert.Equal(t, BoundingBox{X1: 612, Y1: 792}, page.GetBBox())

	objects, err := page.GetObjects()
	require.NoError(t, err)
	assert.Equal(t, "ABCDE", charText(objects.Chars))
	assert.Len(t, objects.Rects, 6)

	a := objects.Chars[0]
	assert.InDelta(t, 104, a.X0, 0.01)
	assert.InDelta(t, 110, a.X1, 0.01)
	assert.InDelta(t, 106, a.Y0, 0.01)
	assert.InDelta(t, 116, a.Y1, 0.01)
	assert.InDelta(t, 10, a.FontSize, 0.01)

	for _, r := range objects.Rects {
		assert.True(t, r.Filled)
		thin := r.X1-r.X0 < 1 || r.Y1-r.Y0 < 1
		assert.True(t, thin, "rule %+v should be thin", r)
	}

	// cached
	again, err := doc.GetPage(0)
	require.NoError(t, err)
	assert.Same(t, page, again)
}

func TestOpenWithoutGeometry(t *testing.T) {
	doc := openSample(t, WithoutGeometry())

	assert.Equal(t, Metadata{}, doc.Metadata())

	page, err := doc.GetPage(0)
	require.NoError(t, err)
	objects, err := page.GetObjects()
	require.NoError(t, err)
	assert.Len(t, objects.Rects, 6)
	assert.Empty(t, objects.Lines)
}

func TestExtractPageText(t *testing.T) {
	doc := openSample(t)

	page, err := doc.GetPage(1)
	require.NoError(t, err)
	text, err := page.ExtractText()
	require.NoError(t, err)
	assert.Equal(t, "No tables on this page", text)

	page, err = doc.GetPage(0)
	require.NoError(t, err)
	text, err = page.ExtractText()
	require.NoError(t, err)
	assert.Equal(t, "A B\nC E\nD", text)
}

func TestGetPageOutOfRange(t *testing.T) {
	doc := openSample(t)

	for _, index := range []int{-1, 2} {
		_, err := doc.GetPage(index)
		assert.ErrorIs(t, err, ErrPageOutOfRange)
	}
}

func TestPageIteratorExhaustion(t *testing.T) {
	doc := openSample(t)

	t.Run("fail", func(t *testing.T) {
		it := doc.Pages()
		for i := 1; i <= 2; i++ {
			require.True(t, it.HasNext())
			page, err := it.Next()
			require.NoError(t, err)
			assert.Equal(t, i, page.GetPageNumber())
		}
		assert.False(t, it.HasNext())
		_, err := it.Next()
		assert.ErrorIs(t, err, ErrPagesExhausted)
		assert.Contains(t, err.Error(), "page 3 requested, document has 2")
	})

	t.Run("stop", func(t *testing.T) {
		it := doc.Pages(WithExhaustion(ExhaustionStop), WithStartPage(2))
		page, err := it.Next()
		require.NoError(t, err)
		assert.Equal(t, 2, page.GetPageNumber())
		_, err = it.Next()
		assert.Equal(t, io.EOF, err)
	})
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("hello, this is plainly not a PDF document at all")},
		{"truncated", testpdf.Build("x", testpdf.TextOnly())[:200]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(bytes.NewReader(tt.data), int64(len(tt.data)))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(t.TempDir() + "/missing.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCloseIsIdempotent(t *testing.T) {
	path := testpdf.Write(t, "Sample", testpdf.SampleTable())
	doc, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, doc.Close())
	require.NoError(t, doc.Close())

	_, err = doc.GetPage(0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLoadFromMemory(t *testing.T) {
	data := testpdf.Build("Memory", testpdf.SampleTable())
	doc, err := Load(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, 1, doc.PageCount())
	page, err := doc.GetPage(0)
	require.NoError(t, err)
	objects, err := page.GetObjects()
	require.NoError(t, err)
	assert.Equal(t, "ABCDE", charText(objects.Chars))
}
