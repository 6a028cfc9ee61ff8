package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pyhub-apps/pdfsheet/internal/config"
	"github.com/pyhub-apps/pdfsheet/pkg/tables"
)

// renderer writes the tables of one page at a time
type renderer interface {
	page(pageNumber int, tables []*tables.Table) error
	close() error
}

func newRenderer(format config.Format, w io.Writer) (renderer, error) {
	switch format {
	case config.FormatPipe, "":
		return &pipeRenderer{w: w}, nil
	case config.FormatJSON:
		return &jsonRenderer{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// CleanText replaces every line separator of a cell with a single space
func CleanText(s string) string {
	return strings.ReplaceAll(s, tables.LineSeparator, " ")
}

// pipeRenderer writes each row on its own line with every cell followed by
// "|"
type pipeRenderer struct {
	w io.Writer
}

func (r *pipeRenderer) page(_ int, pageTables []*tables.Table) error {
	var b strings.Builder
	for _, t := range pageTables {
		for _, row := range t.Texts() {
			for _, text := range row {
				b.WriteString(CleanText(text))
				b.WriteByte('|')
			}
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *pipeRenderer) close() error {
	return nil
}

// TableRecord is one table in JSON output
type TableRecord struct {
	Page  int        `json:"page"`
	Table int        `json:"table"`
	Rows  [][]string `json:"rows"`
}

// jsonRenderer streams a JSON array of TableRecord. The array is closed
// even when a later page fails, so partial output stays parseable.
type jsonRenderer struct {
	w     io.Writer
	count int
}

func (r *jsonRenderer) page(pageNumber int, pageTables []*tables.Table) error {
	for i, t := range pageTables {
		texts := t.Texts()
		for _, row := range texts {
			for j := range row {
				row[j] = CleanText(row[j])
			}
		}
		data, err := json.Marshal(TableRecord{Page: pageNumber, Table: i, Rows: texts})
		if err != nil {
			return err
		}

		sep := ",\n"
		if r.count == 0 {
			sep = "[\n"
		}
		if _, err := io.WriteString(r.w, sep); err != nil {
			return err
		}
		if _, err := r.w.Write(data); err != nil {
			return err
		}
		r.count++
	}
	return nil
}

func (r *jsonRenderer) close() error {
	end := "\n]\n"
	if r.count == 0 {
		end = "[]\n"
	}
	_, err := io.WriteString(r.w, end)
	return err
}
