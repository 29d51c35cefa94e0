// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dataset

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadCSVComma(t *testing.T) {
	d, err := Load([]byte("ID,Age\n1,34\n2,41\n"), "hr.csv", Limits{})
	require.NoError(t, err)
	assert.Equal(t, "hr", d.Name)
	assert.Equal(t, []string{"ID", "Age"}, d.Columns)
	assert.Equal(t, 2, d.NumRows())
}

func TestLoadCSVSemicolon(t *testing.T) {
	d, err := Load([]byte("ID;Sexe;Age\n1;Femme;34\n"), "export.csv", Limits{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Sexe", "Age"}, d.Columns)
	assert.Equal(t, "Femme", d.Rows[0][1])
}

func TestLoadCSVRaggedRows(t *testing.T) {
	d, err := Load([]byte("ID,Age,Sexe\n1,34\n2,41,M,extra\n"), "hr.csv", Limits{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "34", ""}, d.Rows[0])
	assert.Equal(t, []string{"2", "41", "M"}, d.Rows[1])
}

func TestLoadNoExtensionDefaultsToCSV(t *testing.T) {
	d, err := Load([]byte("ID,Age\n1,34\n"), "upload", Limits{})
	require.NoError(t, err)
	assert.Equal(t, "upload", d.Name)
	assert.Equal(t, 1, d.NumRows())
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load([]byte("whatever"), "data.parquet", Limits{})
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestLoadEmptyCSV(t *testing.T) {
	_, err := Load([]byte(""), "empty.csv", Limits{})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLoadDimensionLimits(t *testing.T) {
	_, err := Load([]byte("ID,Age\n1,34\n2,41\n"), "hr.csv", Limits{MaxRows: 1, MaxCols: 20})
	var dle *DimensionLimitError
	require.True(t, errors.As(err, &dle))
	assert.Equal(t, 2, dle.Rows)
	assert.Equal(t, 1, dle.MaxRows)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"ID", "Age"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, 34}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	d, err := Load(buf.Bytes(), "hr.xlsx", Limits{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Age"}, d.Columns)
	require.Equal(t, 1, d.NumRows())
	assert.Equal(t, "34", d.Rows[0][1])
}

func TestLoadXLSGarbage(t *testing.T) {
	_, err := Load([]byte("not a workbook"), "legacy.xls", Limits{})
	assert.Error(t, err)
}
