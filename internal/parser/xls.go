package parser

import (
	"fmt"

	"github.com/extrame/xls"
)

// ReadXLSGrid loads the first sheet of a legacy .xls workbook into a Grid.
func ReadXLSGrid(path string) (Grid, error) {
	workbook, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}

	if workbook.NumSheets() == 0 {
		return nil, fmt.Errorf("xls has no sheets")
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("failed to read xls sheet")
	}

	grid := make(Grid, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for col := 0; col < row.LastCol(); col++ {
			cells[col] = row.Col(col)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}
