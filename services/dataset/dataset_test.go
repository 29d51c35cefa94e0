// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPadsAndTrims(t *testing.T) {
	d := New("t", []string{" ID ", "Age"}, [][]string{
		{" 1 ", "34", "extra"},
		{"2"},
	})
	assert.Equal(t, []string{"ID", "Age"}, d.Columns)
	require.Equal(t, 2, d.NumRows())
	assert.Equal(t, []string{"1", "34"}, d.Rows[0])
	assert.Equal(t, []string{"2", ""}, d.Rows[1])
}

func TestColumnAccess(t *testing.T) {
	d := New("t", []string{"ID", "Age"}, [][]string{{"1", "34"}, {"2", "41"}})
	assert.True(t, d.HasColumn("Age"))
	assert.False(t, d.HasColumn("age"))
	assert.Equal(t, []string{"34", "41"}, d.Column("Age"))
	assert.Nil(t, d.Column("Missing"))
}

func TestNumericColumn(t *testing.T) {
	d := New("t", []string{"Age"}, [][]string{{"34"}, {"3,5"}, {""}, {"abc"}})
	vals, ok := d.NumericColumn("Age")
	require.Len(t, vals, 4)
	assert.Equal(t, 34.0, vals[0])
	assert.True(t, ok[0])
	assert.Equal(t, 3.5, vals[1])
	assert.True(t, ok[1])
	assert.False(t, ok[2])
	assert.False(t, ok[3])

	assert.False(t, d.IsNumericColumn("Age"))
	d2 := New("t", []string{"Age", "Nom"}, [][]string{{"34", "a"}, {"", "b"}})
	assert.True(t, d2.IsNumericColumn("Age"))
	assert.False(t, d2.IsNumericColumn("Nom"))
	assert.Equal(t, []string{"Age"}, d2.NumericColumns())
}

func TestFilterCopies(t *testing.T) {
	d := New("t", []string{"Sexe"}, [][]string{{"F"}, {"M"}, {"F"}})
	f := d.Filter(func(row []string) bool { return row[0] == "F" })
	assert.Equal(t, 2, f.NumRows())
	assert.Equal(t, 3, d.NumRows())
}

func TestWithColumn(t *testing.T) {
	d := New("t", []string{"Age"}, [][]string{{"25"}, {"45"}})
	d2 := d.WithColumn("AgeClasse", []string{"Moins de 30 ans", "40 - 49 ans"})
	assert.Equal(t, []string{"Age", "AgeClasse"}, d2.Columns)
	assert.Equal(t, "Moins de 30 ans", d2.Rows[0][1])
	assert.Equal(t, []string{"Age"}, d.Columns)
}

func TestIdentity(t *testing.T) {
	d := New("hr", []string{"ID", "Age"}, [][]string{{"1", "30"}})
	id := d.Identity()
	assert.Equal(t, "hr", id.Name)
	assert.Equal(t, 1, id.Rows)
	assert.Equal(t, 2, id.Cols)
	assert.Equal(t, []string{"ID", "Age"}, id.Columns)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3.5", 3.5, true},
		{"3,5", 3.5, true},
		{" 4 ", 4, true},
		{"", 0, false},
		{"1,2,3", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		v, ok := ParseNumber(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, v, tc.in)
		}
	}
}
