package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("name,category_id,price\nBurger,1,9.99\n,2,5.00\nFries,1,3.50\n"))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Burger", rows[0]["name"])
	require.Equal(t, "", rows[1]["name"])
	require.Equal(t, "5.00", rows[1]["price"])
}

func TestParseCSVEmptyPayload(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	rows, err := ParseJSON([]byte(`[{"name":"Soda","category_id":1,"price":1.50}]`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Soda", rows[0]["name"])
}

func TestParseJSONRejectsTopLevelObject(t *testing.T) {
	_, err := ParseJSON([]byte(`{"name":"x"}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "JSON array")
}

func TestDecodeRow(t *testing.T) {
	tests := []struct {
		name    string
		row     Row
		wantErr string
		check   func(t *testing.T, item decodedItem)
	}{
		{
			name: "csv strings",
			row:  Row{"name": "Burger", "category_id": "1", "price": "9.99"},
			check: func(t *testing.T, item decodedItem) {
				require.Equal(t, "Burger", item.Name)
				require.Equal(t, uint(1), item.CategoryID)
				require.InDelta(t, 9.99, item.Price, 1e-9)
				require.True(t, item.IsAvailable)
				require.False(t, item.IsVegetarian)
				require.Nil(t, item.PrepMinutes)
			},
		},
		{
			name: "json native types",
			row:  Row{"name": "Soda", "category_id": float64(2), "price": float64(1.5), "is_vegetarian": true, "preparation_time_minutes": float64(10)},
			check: func(t *testing.T, item decodedItem) {
				require.Equal(t, uint(2), item.CategoryID)
				require.True(t, item.IsVegetarian)
				require.NotNil(t, item.PrepMinutes)
				require.Equal(t, 10, *item.PrepMinutes)
			},
		},
		{
			name:    "missing name",
			row:     Row{"category_id": "2", "price": "5.00"},
			wantErr: `missing required field "name"`,
		},
		{
			name:    "empty name",
			row:     Row{"name": "", "category_id": "2", "price": "5.00"},
			wantErr: `missing required field "name"`,
		},
		{
			name:    "bad category",
			row:     Row{"name": "x", "category_id": "abc", "price": "1"},
			wantErr: `field "category_id" must be an integer`,
		},
		{
			name:    "bad price",
			row:     Row{"name": "x", "category_id": "1", "price": "cheap"},
			wantErr: `field "price" must be a number`,
		},
		{
			name:    "negative price",
			row:     Row{"name": "x", "category_id": "1", "price": "-1"},
			wantErr: "price must be >= 0",
		},
		{
			name:    "fractional category id",
			row:     Row{"name": "x", "category_id": float64(1.5), "price": float64(1)},
			wantErr: `field "category_id" must be an integer`,
		},
		{
			name:    "bad boolean",
			row:     Row{"name": "x", "category_id": "1", "price": "1", "is_available": "maybe"},
			wantErr: `field "is_available" must be a boolean`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := decodeRow(tt.row)
			if tt.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, item)
		})
	}
}

func TestRowSnapshotDropsEmptyValues(t *testing.T) {
	row := Row{"name": "", "category_id": "2", "price": "5.00", "count": float64(3)}
	snap := row.snapshot()
	require.Equal(t, map[string]string{"category_id": "2", "price": "5.00", "count": "3"}, snap)
}
