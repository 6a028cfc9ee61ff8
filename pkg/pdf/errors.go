package pdf

import "errors"

var (
	// ErrFormat is returned when no backend can parse the byte stream as a PDF.
	ErrFormat = errors.New("pdf: unsupported or malformed document")

	// ErrPageOutOfRange is returned by GetPage for an index outside [0, PageCount).
	ErrPageOutOfRange = errors.New("pdf: page index out of range")

	// ErrPagesExhausted is returned by PageIterator.Next when the sequence has no
	// more pages and the iterator uses ExhaustionFail.
	ErrPagesExhausted = errors.New("pdf: page sequence exhausted")

	// ErrContent wraps failures while interpreting a page content stream.
	ErrContent = errors.New("pdf: cannot interpret page content")

	// ErrClosed is returned when a page is requested from a closed document.
	ErrClosed = errors.New("pdf: document closed")
)
