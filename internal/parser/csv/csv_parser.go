// Package csv parses delimited text with a header row into records.Set
// values. It is strict: a malformed row aborts the parse and the error
// carries the line number, so callers can decide whether to fail the run or
// skip the whole entry.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"campaignetl/pkg/records"
)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// LazyQuotes relaxes quote handling the same way encoding/csv does.
	LazyQuotes bool

	// HeaderMap renames source header names before they are used as keys.
	HeaderMap map[string]string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// ErrNoHeader is returned when the input has no header row at all.
var ErrNoHeader = errors.New("csv: missing header row")

// Parse consumes r and returns one record per data row, keyed by header.
//
// Rows shorter than the header are padded with missing values; rows longer
// than the header are an error. Empty cells are missing, not "".
func (p *Parser) Parse(r io.Reader) (*records.Set, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	headers := normalizeHeaders(h, p.opt)

	set := &records.Set{Columns: headers}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(row) > len(headers) {
			return nil, fmt.Errorf("csv line %d: %d fields, header has %d", line, len(row), len(headers))
		}

		rec := make(records.Record, len(headers))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			if val == "" {
				continue
			}
			rec[headers[i]] = records.String(val)
		}
		set.Rows = append(set.Rows, rec)
	}
	return set, nil
}

// normalizeHeaders applies HeaderMap, trims whitespace, strips a leading
// BOM and names blank header cells "col_N". Case is preserved; source
// aliases are matched exactly.
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if m, ok := opt.HeaderMap[c]; ok {
			c = m
		}
		if c == "" {
			c = fmt.Sprintf("col_%d", i)
		}
		res[i] = c
	}
	return res
}
