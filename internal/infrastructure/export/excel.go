// Package export renders report tables into Excel workbooks.
package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXCEL EXPORTER
// ══════════════════════════════════════════════════════════════════════════════

// ExcelExporter renders rows into a single-sheet .xlsx workbook.
// Satisfies the query layer's RowExporter port.
type ExcelExporter struct{}

// NewExcelExporter creates an ExcelExporter.
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Export writes a header row in bold followed by the data rows and
// returns the workbook bytes.
func (e *ExcelExporter) Export(ctx context.Context, sheet string, headers []string, rows [][]string) ([]byte, error) {
	if sheet == "" {
		sheet = "Report"
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("excel: create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("excel: remove default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("excel: header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("excel: write header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("excel: style header: %w", err)
		}
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("excel: data cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("excel: write cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
