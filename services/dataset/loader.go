// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Limits bounds the accepted table dimensions. Zero values mean
// unlimited.
type Limits struct {
	MaxRows int
	MaxCols int
}

// Load parses an uploaded file into a Dataset. The format is chosen from
// the filename extension: .xls and .xlsx go through excelize, .csv and
// extensionless names through the CSV reader with delimiter sniffing.
// Any other extension is rejected with ErrUnsupportedFileType before the
// content is touched.
func Load(content []byte, filename string, limits Limits) (*Dataset, error) {
	name := baseName(filename)
	var (
		columns []string
		rows    [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls", ".xlsx":
		columns, rows, err = readExcel(content)
	case ".csv", "":
		columns, rows, err = readCSV(content)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	d := New(name, columns, rows)
	if (limits.MaxRows > 0 && d.NumRows() > limits.MaxRows) ||
		(limits.MaxCols > 0 && d.NumCols() > limits.MaxCols) {
		return nil, &DimensionLimitError{
			Name:    name,
			Rows:    d.NumRows(),
			Cols:    d.NumCols(),
			MaxRows: limits.MaxRows,
			MaxCols: limits.MaxCols,
		}
	}
	return d, nil
}

func baseName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readExcel(content []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrEmptyFile
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(all) == 0 {
		return nil, nil, ErrEmptyFile
	}
	return all[0], all[1:], nil
}

func readCSV(content []byte) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = sniffDelimiter(content)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var header []string
	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		if header == nil {
			header = record
			continue
		}
		rows = append(rows, record)
	}
	if header == nil {
		return nil, nil, ErrEmptyFile
	}
	return header, rows, nil
}

// sniffDelimiter counts candidate separators in the first kilobyte and
// picks the most frequent one. French exports use semicolons; comma is
// the fallback.
func sniffDelimiter(content []byte) rune {
	sample := content
	if len(sample) > 1024 {
		sample = sample[:1024]
	}
	if i := bytes.IndexByte(sample, '\n'); i > 0 {
		sample = sample[:i]
	}
	best := ','
	bestCount := 0
	for _, cand := range []rune{';', ',', '|', '\t'} {
		if n := bytes.Count(sample, []byte(string(cand))); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}
