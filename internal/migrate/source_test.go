package migrate

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readAll(t *testing.T, src Source) []Row {
	t.Helper()
	it, err := src.Open(context.Background())
	require.NoError(t, err)
	defer it.Close()

	var rows []Row
	for {
		row, err := it.Next()
		if err == io.EOF {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestCSVSource(t *testing.T) {
	path := writeCSV(t, "\ufeffsku;name\nA-1; Lamp \n\n;\nA-2;Chair;extra\nA-3\n")

	src, err := NewCSVSource(map[string]any{"path": path, "delimiter": ";", "ids": []any{"sku"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"sku"}, src.IDs())

	rows := readAll(t, src)
	require.Len(t, rows, 3)
	assert.Equal(t, Row{"sku": "A-1", "name": "Lamp"}, rows[0])
	assert.Equal(t, Row{"sku": "A-2", "name": "Chair"}, rows[1])
	assert.Equal(t, Row{"sku": "A-3", "name": ""}, rows[2])
}

func TestCSVSource_Config(t *testing.T) {
	_, err := NewCSVSource(map[string]any{"ids": []any{"sku"}})
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	_, err = NewCSVSource(map[string]any{"path": "x.csv"})
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	_, err = NewCSVSource(map[string]any{"path": "x.csv", "ids": "sku", "delimiter": ";;"})
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestCSVSource_EmptyFile(t *testing.T) {
	src, err := NewCSVSource(map[string]any{"path": writeCSV(t, ""), "ids": []any{"sku"}})
	require.NoError(t, err)

	_, err = src.Open(context.Background())
	assert.Error(t, err)
}

func TestXLSXSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"sku", "name"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"A-1", "Lamp"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"A-2", "Chair"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	src, err := NewXLSXSource(map[string]any{"path": path, "ids": []any{"sku"}})
	require.NoError(t, err)

	rows := readAll(t, src)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"sku": "A-2", "name": "Chair"}, rows[1])
}
