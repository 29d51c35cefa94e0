// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dataset

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFileType is returned when an upload's extension is not
// one of .csv, .xls or .xlsx.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ErrEmptyFile is returned when an upload has no header row.
var ErrEmptyFile = errors.New("empty file")

// DimensionLimitError reports a table exceeding the configured row or
// column ceiling.
type DimensionLimitError struct {
	Name    string
	Rows    int
	Cols    int
	MaxRows int
	MaxCols int
}

func (e *DimensionLimitError) Error() string {
	return fmt.Sprintf("dataset %q exceeds limits: %d rows x %d columns (max %d x %d)",
		e.Name, e.Rows, e.Cols, e.MaxRows, e.MaxCols)
}
