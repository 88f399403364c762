package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emiscli/internal/errors"
)

func TestTable_Validate(t *testing.T) {
	tests := []struct {
		name        string
		columns     []string
		wantErr     bool
		wantErrType errors.ErrorType
		wantMsg     string
	}{
		{
			name:    "valid table",
			columns: []string{"Area", "Item", "Element", "Unit", "Y2010", "Y2011"},
		},
		{
			name:        "one missing column",
			columns:     []string{"Area", "Element", "Y2010"},
			wantErr:     true,
			wantErrType: errors.ErrTypeSchema,
			wantMsg:     "input is missing required columns: Item",
		},
		{
			name:        "all identifier columns missing reported together",
			columns:     []string{"Country", "Y2010"},
			wantErr:     true,
			wantErrType: errors.ErrTypeSchema,
			wantMsg:     "input is missing required columns: Area, Item, Element",
		},
		{
			name:        "no year columns",
			columns:     []string{"Area", "Item", "Element", "Unit"},
			wantErr:     true,
			wantErrType: errors.ErrTypeSchema,
			wantMsg:     "no year columns found (expected names like 'Y2010', 'Y2018')",
		},
		{
			name:        "year-like names that do not match",
			columns:     []string{"Area", "Item", "Element", "Year2010", "2011", "Y2012F"},
			wantErr:     true,
			wantErrType: errors.ErrTypeSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable(tt.columns, nil)
			err := table.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantErrType))
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestTable_YearColumns(t *testing.T) {
	table := NewTable([]string{"Area", "Item", "Element", "Y2010", "Note", "Y2018", "Y1990"}, nil)

	cols := table.YearColumns()
	require.Len(t, cols, 3)
	assert.Equal(t, YearColumn{Name: "Y2010", Year: 2010}, cols[0])
	assert.Equal(t, YearColumn{Name: "Y2018", Year: 2018}, cols[1])
	assert.Equal(t, YearColumn{Name: "Y1990", Year: 1990}, cols[2])
}

func TestTable_Cell(t *testing.T) {
	table := NewTable([]string{"Area", "Item", "Y2010"}, nil)

	full := []string{"Austria", "Cattle", "100"}
	ragged := []string{"Austria"}

	assert.Equal(t, "Cattle", table.Cell(full, "Item"))
	assert.Equal(t, "100", table.Cell(full, "Y2010"))
	assert.Equal(t, "", table.Cell(ragged, "Item"), "ragged rows resolve to empty cells")
	assert.Equal(t, "", table.Cell(full, "Element"), "absent columns resolve to empty cells")
}

func TestTable_ColumnIndex(t *testing.T) {
	table := NewTable([]string{"Area", "Item"}, nil)
	assert.Equal(t, 0, table.ColumnIndex("Area"))
	assert.Equal(t, 1, table.ColumnIndex("Item"))
	assert.Equal(t, -1, table.ColumnIndex("Element"))
}
