// Package excel renders a user's analysis history as a spreadsheet for
// download.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/antonvlasov/documind/internal/core/domain"
)

const sheetName = "History"

var header = []string{"Timestamp", "Filename", "Category", "Summary"}

// BuildHistoryWorkbook lays the records out one per row, newest first,
// exactly in the order the store returned them.
func BuildHistoryWorkbook(records []domain.AnalysisRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, rec := range records {
		row := i + 2
		values := []any{
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.Filename,
			rec.Category,
			rec.Summary,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("write record row %d: %w", row, err)
			}
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 20); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "D", "D", 60); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	return f, nil
}
