package converter

import (
	"fmt"

	"github.com/nconklindev/bronze/internal/types"

	"github.com/xuri/excelize/v2"
)

// ReadGrid loads one sheet of an xlsx workbook as a rectangular grid of raw
// cell values. An empty sheet name selects the first sheet.
func ReadGrid(path, sheet string) (*types.Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, err
	}

	grid := &types.Grid{Rows: rows}
	for _, mc := range merges {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, err
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, err
		}
		grid.Merged = append(grid.Merged, types.MergedRange{
			StartRow: startRow - 1,
			StartCol: startCol - 1,
			EndRow:   endRow - 1,
			EndCol:   endCol - 1,
			Value:    mc.GetCellValue(),
		})
	}

	padGrid(grid)
	return grid, nil
}

// padGrid makes every row as wide as the widest row or merged range.
// excelize trims trailing empty cells, so rows come back ragged.
func padGrid(grid *types.Grid) {
	width := 0
	for _, row := range grid.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for _, mr := range grid.Merged {
		if mr.EndCol+1 > width {
			width = mr.EndCol + 1
		}
		for len(grid.Rows) <= mr.StartRow {
			grid.Rows = append(grid.Rows, nil)
		}
	}

	for i, row := range grid.Rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			grid.Rows[i] = padded
		}
	}
}
