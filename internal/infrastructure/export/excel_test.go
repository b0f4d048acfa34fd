package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcelExporter_RoundTrip(t *testing.T) {
	exporter := NewExcelExporter()

	data, err := exporter.Export(context.Background(), "Rankings",
		[]string{"Rank", "Class", "Total Points"},
		[][]string{
			{"1", "7A1", "100.00"},
			{"2", "6A1", "92.50"},
		},
	)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Rankings"}, f.GetSheetList())

	header, err := f.GetCellValue("Rankings", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Rank", header)

	class, err := f.GetCellValue("Rankings", "B2")
	require.NoError(t, err)
	assert.Equal(t, "7A1", class)

	points, err := f.GetCellValue("Rankings", "C3")
	require.NoError(t, err)
	assert.Equal(t, "92.50", points)
}

func TestExcelExporter_DefaultSheetName(t *testing.T) {
	exporter := NewExcelExporter()

	data, err := exporter.Export(context.Background(), "", []string{"Only"}, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Report"}, f.GetSheetList())
}

func TestExcelExporter_CancelledContext(t *testing.T) {
	exporter := NewExcelExporter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exporter.Export(ctx, "Report", []string{"A"}, [][]string{{"1"}})
	assert.ErrorIs(t, err, context.Canceled)
}
