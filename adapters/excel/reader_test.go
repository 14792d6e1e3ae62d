package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gochart/domain/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFrameFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	content := "Region,Revenue,Order Date\nNorth,100,2024-01-01\nSouth,200.5,2024-01-02\nEast,,2024-01-03\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := NewDataReader(path, DefaultExcelConfig()).ReadFrame(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Region", "Revenue", "Order Date"}, f.Columns)
	require.Equal(t, 3, f.Len())
	assert.Equal(t, "North", f.Rows[0][0])
	assert.Equal(t, int64(100), f.Rows[0][1])
	assert.Equal(t, 200.5, f.Rows[1][1])
	assert.Nil(t, f.Rows[2][1])
}

func TestWriteTableThenReadSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.xlsx")
	rows := []map[string]any{
		{"Region": "North", "Revenue": 100},
		{"Region": "South", "Revenue": 200},
		{"Region": "East", "Revenue": 150},
		{"Region": "West", "Revenue": 50},
	}
	require.NoError(t, WriteTable(path, "", []string{"Region", "Revenue"}, rows))

	summary, f, err := NewDataReader(path, DefaultExcelConfig()).ReadSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, f.Len())
	assert.Equal(t, "regions", summary.TableDescription)
	assert.Equal(t, schema.TribeCategorical, summary.Tribes["Region"])
	assert.Equal(t, schema.TribeNumerical, summary.Tribes["Revenue"])
}

func TestReadDataMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.xlsx"), DefaultExcelConfig()).ReadData()
	assert.Error(t, err)
}
