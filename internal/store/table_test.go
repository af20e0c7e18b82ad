package store

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relgraph/internal/ir"
)

func TestCellValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want ir.Value
	}{
		{"nil", nil, ir.Null{}},
		{"int64", int64(7), ir.Int(7)},
		{"float64", 1.25, ir.Double(1.25)},
		{"string", "x", ir.String("x")},
		{"bytes", []byte("raw"), ir.String("raw")},
		{"bool", true, ir.Boolean(true)},
		{"small uint64", uint64(5), ir.Int(5)},
		{"huge uint64", uint64(math.MaxUint64), ir.Double(float64(uint64(math.MaxUint64)))},
		{"time", ts, ir.String("2024-03-01T12:00:00Z")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cellValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCellValue_RejectsNested(t *testing.T) {
	_, err := cellValue(map[string]any{"a": 1})
	assert.Error(t, err)

	_, err = cellValue([]any{1})
	assert.Error(t, err)
}

func TestCellNative(t *testing.T) {
	for _, tt := range []struct {
		in   ir.Value
		want any
	}{
		{ir.Null{}, nil},
		{nil, nil},
		{ir.Int(3), int64(3)},
		{ir.Double(0.5), 0.5},
		{ir.String("s"), "s"},
		{ir.Boolean(false), false},
	} {
		got, err := cellNative(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := cellNative(ir.Array{ir.Int(1)})
	assert.Error(t, err)
}

func TestTableObjects(t *testing.T) {
	table := &Table{
		Columns: []string{"a", "b"},
		Rows: [][]ir.Value{
			{ir.Int(1), ir.String("x")},
			{ir.Int(2)},
			{nil, ir.Boolean(true)},
		},
	}
	assert.Equal(t, []ir.Object{
		{"a": ir.Int(1), "b": ir.String("x")},
		{"a": ir.Int(2), "b": ir.Null{}},
		{"a": ir.Null{}, "b": ir.Boolean(true)},
	}, table.Objects())

	var nilTable *Table
	assert.Nil(t, nilTable.Objects())
}
