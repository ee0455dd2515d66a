package errors

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	ical "github.com/emersion/go-ical"
)

// StreamingCSVParser reads CSV rows one at a time. Header names are
// lower-cased and trimmed so lookups are insensitive to spreadsheet styling.
type StreamingCSVParser struct {
	reader  *csv.Reader
	headers []string
	lineNum int
}

func NewStreamingCSVParser(r io.Reader) (*StreamingCSVParser, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err != nil {
		return nil, &ParseError{File: "csv", Line: 1, Message: "failed to read header", Err: err}
	}

	for i := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(headers[i]))
	}

	return &StreamingCSVParser{
		reader:  cr,
		headers: headers,
		lineNum: 1,
	}, nil
}

func (p *StreamingCSVParser) Headers() []string {
	return p.headers
}

// HasColumn reports whether name appears in the header row.
func (p *StreamingCSVParser) HasColumn(name string) bool {
	name = strings.ToLower(name)
	for _, h := range p.headers {
		if h == name {
			return true
		}
	}
	return false
}

// Alias renames the first header found in names to canonical, unless a
// canonical column already exists. It reports whether canonical is present
// afterwards.
func (p *StreamingCSVParser) Alias(canonical string, names ...string) bool {
	canonical = strings.ToLower(canonical)
	if p.HasColumn(canonical) {
		return true
	}
	for _, name := range names {
		name = strings.ToLower(name)
		for i, h := range p.headers {
			if h == name {
				p.headers[i] = canonical
				return true
			}
		}
	}
	return false
}

// Next returns the next row keyed by header, its line number, or io.EOF when done.
func (p *StreamingCSVParser) Next() (map[string]string, int, error) {
	record, err := p.reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, p.lineNum, err
		}
		p.lineNum++
		return nil, p.lineNum, &ParseError{File: "csv", Line: p.lineNum, Message: "malformed row", Err: err}
	}
	p.lineNum++

	row := make(map[string]string, len(p.headers))
	for i, h := range p.headers {
		if i < len(record) {
			row[h] = strings.TrimSpace(record[i])
		}
	}
	return row, p.lineNum, nil
}

// StreamingICSParser decodes one VCALENDAR at a time.
type StreamingICSParser struct {
	decoder *ical.Decoder
	count   int
}

func NewStreamingICSParser(r io.Reader) *StreamingICSParser {
	return &StreamingICSParser{
		decoder: ical.NewDecoder(bufio.NewReader(r)),
	}
}

// Next returns the next calendar, or io.EOF when done.
func (p *StreamingICSParser) Next() (*ical.Calendar, error) {
	cal, err := p.decoder.Decode()
	if err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, &ParseError{File: "ics", Message: fmt.Sprintf("calendar %d", p.count+1), Err: err}
	}
	p.count++
	return cal, nil
}
