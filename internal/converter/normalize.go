package converter

import (
	"strings"

	"github.com/nconklindev/bronze/internal/types"
)

// ExpandMerged copies each merged year label across the blank cells of its
// top row, so a year spanning its month columns appears in every one.
// Merged text (titles, source notes) is left where it is, and rows below a
// vertical merge stay blank.
func ExpandMerged(grid *types.Grid) {
	for _, mr := range grid.Merged {
		if mr.StartRow < 0 || mr.StartRow >= len(grid.Rows) {
			continue
		}
		row := grid.Rows[mr.StartRow]

		value := mr.Value
		if mr.StartCol < len(row) && !isBlank(row[mr.StartCol]) {
			value = row[mr.StartCol]
		}
		if _, ok := parseInt(value); !ok {
			continue
		}

		for c := mr.StartCol; c <= mr.EndCol && c < len(row); c++ {
			if isBlank(row[c]) {
				row[c] = value
			}
		}
	}
}

// DropEmptyRows removes rows whose every cell is blank.
func DropEmptyRows(rows [][]string) [][]string {
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		for _, cell := range row {
			if !isBlank(cell) {
				kept = append(kept, row)
				break
			}
		}
	}
	return kept
}

// FillMissing replaces every blank cell with sentinel, in place.
func FillMissing(rows [][]string, sentinel string) {
	for _, row := range rows {
		for i, cell := range row {
			if isBlank(cell) {
				row[i] = sentinel
			}
		}
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
