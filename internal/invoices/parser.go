package invoices

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one data record keyed by header name.
type Row struct {
	Line   int // 1-based line in the file where the record starts
	Fields map[string]string
}

// Get returns the trimmed value of column, or "" when absent.
func (r Row) Get(column string) string {
	return r.Fields[column]
}

// Table is a parsed CSV file.
type Table struct {
	Header []string
	Rows   []Row
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// ParseCSV turns bytes with a header row into rows in file order. Values are
// trimmed, blank lines and all-blank records are skipped, and nothing is
// coerced.
func ParseCSV(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return nil, &MalformedInputError{Msg: "input is not UTF-8 text"}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := readHeader(reader)
	if err != nil {
		return nil, err
	}

	table := &Table{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		if isRecordEmpty(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(record) != len(header) {
			return nil, &MalformedInputError{
				Line: line,
				Msg:  fmt.Sprintf("expected %d fields, got %d", len(header), len(record)),
			}
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			fields[name] = strings.TrimSpace(record[i])
		}
		table.Rows = append(table.Rows, Row{Line: line, Fields: fields})
	}

	return table, nil
}

func readHeader(reader *csv.Reader) ([]string, error) {
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, &MalformedInputError{Msg: "header row is missing"}
		}
		if err != nil {
			return nil, csvError(err)
		}
		if isRecordEmpty(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		header := make([]string, len(record))
		seen := make(map[string]bool, len(record))
		for i, name := range record {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, &MalformedInputError{Line: line, Msg: fmt.Sprintf("header column %d is empty", i+1)}
			}
			if seen[name] {
				return nil, &MalformedInputError{Line: line, Msg: fmt.Sprintf("duplicate header column %q", name)}
			}
			seen[name] = true
			header[i] = name
		}
		return header, nil
	}
}

func csvError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &MalformedInputError{Line: parseErr.StartLine, Msg: parseErr.Err.Error()}
	}
	return &MalformedInputError{Msg: "failed to read csv", Err: err}
}

func isRecordEmpty(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
