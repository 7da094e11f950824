// Package csvimport reads bulk upload files (meter readings) row by row and collects per-row errors.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultMaxRows caps the data rows accepted from a single file
const DefaultMaxRows = 5000

// CSVParser reads a CSV file with a header row. Header names are matched case-insensitively.
type CSVParser struct {
	reader    *csv.Reader
	headers   []string
	headerMap map[string]int
	line      int
	rows      int
	maxRows   int
}

// ParserOption configures a CSVParser
type ParserOption func(*CSVParser, *csv.Reader)

// WithDelimiter sets the field delimiter (default ',')
func WithDelimiter(d rune) ParserOption {
	return func(_ *CSVParser, r *csv.Reader) {
		r.Comma = d
	}
}

// WithMaxRows sets the data row limit; ReadRow fails with ErrTooManyRows beyond it
func WithMaxRows(n int) ParserOption {
	return func(p *CSVParser, _ *csv.Reader) {
		if n > 0 {
			p.maxRows = n
		}
	}
}

// NewCSVParser strips a UTF-8 BOM, checks the encoding and reads the header row
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = br.Discard(3)
		head = head[3:]
	}
	if len(strings.TrimSpace(string(head))) == 0 {
		return nil, ErrEmptyFile
	}
	if !validUTF8Prefix(head) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	p := &CSVParser{
		reader:    cr,
		headerMap: make(map[string]int),
		maxRows:   DefaultMaxRows,
	}
	for _, opt := range opts {
		opt(p, cr)
	}

	if err := p.readHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// validUTF8Prefix tolerates a multi-byte rune cut off at the end of the peeked window
func validUTF8Prefix(b []byte) bool {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}

func (p *CSVParser) readHeader() error {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	p.line = 1

	p.headers = make([]string, len(record))
	for i, h := range record {
		name := normalizeHeader(h)
		p.headers[i] = name
		if name != "" {
			p.headerMap[name] = i
		}
	}
	if len(p.headerMap) == 0 {
		return ErrMissingHeader
	}
	return nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

// Headers returns the normalized header names in file order
func (p *CSVParser) Headers() []string {
	return p.headers
}

// MissingHeaders returns the required columns absent from the header row
func (p *CSVParser) MissingHeaders(required ...string) []string {
	var missing []string
	for _, h := range required {
		if _, ok := p.headerMap[normalizeHeader(h)]; !ok {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is one data line. LineNumber counts the header as line 1.
type Row struct {
	LineNumber int
	values     map[string]string
}

// Get returns the trimmed value of a column, or "" when the column is absent
func (r *Row) Get(column string) string {
	return r.values[normalizeHeader(column)]
}

// IsEmpty reports whether every field of the row is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.values {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow returns the next non-blank row, or io.EOF
func (p *CSVParser) ReadRow() (*Row, error) {
	for {
		record, err := p.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		p.line++
		if err != nil {
			return nil, NewRowError(p.line, "", ErrCodeImportMalformedRow, err.Error())
		}

		row := &Row{LineNumber: p.line, values: make(map[string]string, len(p.headers))}
		for i, name := range p.headers {
			if name == "" || i >= len(record) {
				continue
			}
			row.values[name] = strings.TrimSpace(record[i])
		}
		if row.IsEmpty() {
			continue
		}

		p.rows++
		if p.rows > p.maxRows {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, p.maxRows)
		}
		return row, nil
	}
}

// ReadAllRows reads every remaining non-blank row
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

// TotalRows returns the number of data rows read so far
func (p *CSVParser) TotalRows() int {
	return p.rows
}
