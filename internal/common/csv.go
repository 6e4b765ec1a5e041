// Package common provides shared functionality across different parsers.
package common

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// Delimiter is the field separator of every statement CSV.
const Delimiter = ','

func newReader(r io.Reader, fieldsPerRecord int) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = Delimiter
	reader.FieldsPerRecord = fieldsPerRecord
	return reader
}

// ReadCSV decodes header-mapped CSV into a slice of TCSVRow using gocsv.
// Columns are matched through the struct's csv tags. Empty input yields no rows.
func ReadCSV[TCSVRow any](r io.Reader) ([]TCSVRow, error) {
	var rows []TCSVRow
	if err := gocsv.UnmarshalCSV(newReader(r, 0), &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []TCSVRow{}, nil
		}
		return nil, err
	}
	return rows, nil
}

// ReadCSVWithoutHeaders decodes headerless CSV, mapping fields to TCSVRow by
// position. Every record must have exactly fieldsPerRecord fields.
func ReadCSVWithoutHeaders[TCSVRow any](r io.Reader, fieldsPerRecord int) ([]TCSVRow, error) {
	var rows []TCSVRow
	if err := gocsv.UnmarshalCSVWithoutHeaders(newReader(r, fieldsPerRecord), &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []TCSVRow{}, nil
		}
		return nil, err
	}
	return rows, nil
}

// ReadHeader returns the first record of a CSV stream.
func ReadHeader(r io.Reader) ([]string, error) {
	reader := newReader(r, -1)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	return header, nil
}

// MissingColumns lists the required columns absent from header, in order.
func MissingColumns(header, required []string) []string {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// ErrorLocation describes where a CSV decoding error occurred, or returns
// an empty string when err carries no position.
func ErrorLocation(err error) string {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("line %d", parseErr.Line)
	}
	return ""
}
