package pdf

import (
	"fmt"
	"io"
)

// PageIterator is a lazy, forward-only sequence of pages. Pages are fetched
// from the document only when pulled with Next.
type PageIterator struct {
	doc        Document
	next       int
	exhaustion Exhaustion
}

// NewPageIterator creates an iterator over any Document. The default
// past-the-end policy is ExhaustionFail.
func NewPageIterator(doc Document, opts ...IteratorOption) *PageIterator {
	config := &iteratorConfig{Exhaustion: ExhaustionFail}
	for _, opt := range opts {
		opt(config)
	}
	return &PageIterator{
		doc:        doc,
		next:       config.Start,
		exhaustion: config.Exhaustion,
	}
}

// HasNext reports whether Next will return a page
func (it *PageIterator) HasNext() bool {
	return it.next < it.doc.PageCount()
}

// Next returns the next page. Past the last page it returns an error wrapping
// ErrPagesExhausted, or io.EOF when the iterator uses ExhaustionStop.
func (it *PageIterator) Next() (Page, error) {
	if !it.HasNext() {
		if it.exhaustion == ExhaustionStop {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: page %d requested, document has %d",
			ErrPagesExhausted, it.next+1, it.doc.PageCount())
	}

	page, err := it.doc.GetPage(it.next)
	if err != nil {
		return nil, err
	}
	it.next++
	return page, nil
}
