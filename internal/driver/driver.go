// Package driver runs spreadsheet table extraction over the first pages of
// a PDF and writes the tables as text.
package driver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pyhub-apps/pdfsheet/internal/config"
	"github.com/pyhub-apps/pdfsheet/pkg/pdf"
	"github.com/pyhub-apps/pdfsheet/pkg/tables"
)

// Driver extracts tables page by page according to a Config
type Driver struct {
	cfg       *config.Config
	algorithm tables.Algorithm
	logger    *zap.Logger
}

// Option configures a Driver
type Option func(*Driver)

// WithAlgorithm replaces the spreadsheet algorithm
func WithAlgorithm(algorithm tables.Algorithm) Option {
	return func(d *Driver) {
		d.algorithm = algorithm
	}
}

// WithLogger sets the logger of the driver and of the document it opens
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a driver. The configuration is used as given; Run and Lookup
// validate it first.
func New(cfg *config.Config, opts ...Option) *Driver {
	d := &Driver{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.algorithm == nil {
		d.algorithm = tables.NewSpreadsheetAlgorithm(
			tables.WithUnicodeNorm(cfg.UnicodeNorm),
			tables.WithLogger(d.logger),
		)
	}
	return d
}

// Run validates cfg and writes the tables of its first PageLimit pages to w
func Run(ctx context.Context, cfg *config.Config, w io.Writer, opts ...Option) error {
	if err := cfg.Validate(); err != nil {
		return newError(KindConfig, 0, err)
	}
	return New(cfg, opts...).Run(ctx, w)
}

// Run opens the configured document and writes its tables to w
func (d *Driver) Run(ctx context.Context, w io.Writer) error {
	return d.withDocument(func(doc pdf.Document) error {
		return d.Extract(ctx, doc, w)
	})
}

// withDocument opens the configured file, loads it and closes both after fn
func (d *Driver) withDocument(fn func(pdf.Document) error) error {
	f, err := os.Open(d.cfg.Path)
	if err != nil {
		return newError(KindIO, 0, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return newError(KindIO, 0, err)
	}

	opts := append(d.cfg.LoadOptions(), pdf.WithLogger(d.logger))
	doc, err := pdf.Load(f, info.Size(), opts...)
	if err != nil {
		if errors.Is(err, pdf.ErrFormat) {
			return newError(KindFormat, 0, err)
		}
		return newError(KindIO, 0, err)
	}
	defer doc.Close()

	d.logger.Info("document loaded",
		zap.String("path", d.cfg.Path),
		zap.Int("pages", doc.PageCount()),
		zap.Int("page_limit", d.cfg.PageLimit))
	return fn(doc)
}

// Extract writes the tables of the first PageLimit pages of doc to w in the
// configured format. Output is flushed after every page, so pages written
// before a failure reach w.
func (d *Driver) Extract(ctx context.Context, doc pdf.Document, w io.Writer) (err error) {
	bw := bufio.NewWriter(w)
	r, err := newRenderer(d.cfg.Format, bw)
	if err != nil {
		return newError(KindConfig, 0, err)
	}
	defer func() {
		if cerr := r.close(); cerr != nil && err == nil {
			err = newError(KindIO, 0, cerr)
		}
		if ferr := bw.Flush(); ferr != nil && err == nil {
			err = newError(KindIO, 0, ferr)
		}
	}()

	return d.forEachPage(ctx, doc, d.cfg.PageLimit, d.cfg.Exhaustion, func(pageNumber int, pageTables []*tables.Table) error {
		if err := r.page(pageNumber, pageTables); err != nil {
			return newError(KindIO, pageNumber, err)
		}
		if err := bw.Flush(); err != nil {
			return newError(KindIO, pageNumber, err)
		}
		return nil
	})
}

type pageResult struct {
	number int
	tables []*tables.Table
	err    error
}

// forEachPage pulls up to limit pages in order and calls fn with the
// tables of each. Pages are extracted in batches of Workers; fn always
// sees them in page order.
func (d *Driver) forEachPage(ctx context.Context, doc pdf.Document, limit int, exhaustion pdf.Exhaustion, fn func(int, []*tables.Table) error) error {
	it := pdf.NewPageIterator(doc, pdf.WithExhaustion(exhaustion))
	workers := max(d.cfg.Workers, 1)

	for pulled := 0; pulled < limit; {
		if err := ctx.Err(); err != nil {
			return err
		}

		size := min(workers, limit-pulled)
		batch := make([]pdf.Page, 0, size)
		var pullErr error
		for len(batch) < size {
			page, err := it.Next()
			if err != nil {
				pullErr = err
				break
			}
			batch = append(batch, page)
		}

		for _, res := range d.extractBatch(batch, workers) {
			if res.err != nil {
				return newError(KindExtraction, res.number, res.err)
			}
			d.logger.Debug("page extracted",
				zap.Int("page", res.number),
				zap.Int("tables", len(res.tables)))
			if err := fn(res.number, res.tables); err != nil {
				return err
			}
		}
		pulled += len(batch)

		switch {
		case pullErr == nil:
		case errors.Is(pullErr, io.EOF):
			d.logger.Info("document has fewer pages than requested",
				zap.Int("pages", doc.PageCount()),
				zap.Int("page_limit", limit))
			return nil
		case errors.Is(pullErr, pdf.ErrPagesExhausted):
			return newError(KindExhausted, pulled+1, pullErr)
		default:
			return newError(KindFormat, pulled+1, pullErr)
		}
	}
	return nil
}

// extractBatch runs the algorithm over pages concurrently. Failures are kept
// per page so the caller reports the first one in page order.
func (d *Driver) extractBatch(pages []pdf.Page, workers int) []pageResult {
	results := make([]pageResult, len(pages))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			found, err := d.algorithm.Extract(page)
			results[i] = pageResult{number: page.GetPageNumber(), tables: found, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Query addresses one value in the grouped frames of a document. Pages
// limits the catalog to the first pages of the document; 0 reads them all.
type Query struct {
	Group  string
	Table  int
	Column string
	Line   int
	Pages  int
}

// Lookup validates cfg and resolves q against the configured document
func Lookup(ctx context.Context, cfg *config.Config, q Query, opts ...Option) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", newError(KindConfig, 0, err)
	}
	return New(cfg, opts...).Lookup(ctx, q)
}

// Lookup resolves q against the frames of the configured document. A query
// that matches nothing returns "".
func (d *Driver) Lookup(ctx context.Context, q Query) (string, error) {
	var catalog *tables.Catalog
	err := d.withDocument(func(doc pdf.Document) error {
		var err error
		catalog, err = d.Catalog(ctx, doc, q.Pages)
		return err
	})
	if err != nil {
		return "", err
	}
	return catalog.Value(q.Group, q.Table, q.Column, q.Line), nil
}

// Catalog extracts the tables of doc and groups their frames under the
// configured group names. With pages <= 0 every page is read; otherwise
// the first pages are read under the configured exhaustion policy.
func (d *Driver) Catalog(ctx context.Context, doc pdf.Document, pages int) (*tables.Catalog, error) {
	limit, exhaustion := doc.PageCount(), pdf.ExhaustionStop
	if pages > 0 {
		limit, exhaustion = pages, d.cfg.Exhaustion
	}

	var found []*tables.Table
	err := d.forEachPage(ctx, doc, limit, exhaustion, func(_ int, pageTables []*tables.Table) error {
		found = append(found, pageTables...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	catalog := tables.GroupFrames(tables.NewFrames(found), d.cfg.Groups)
	for _, name := range catalog.Names() {
		d.logger.Debug("table group", zap.String("group", name), zap.Int("frames", len(catalog.Group(name))))
	}
	return catalog, nil
}
