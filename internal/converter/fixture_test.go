package converter

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// sheetLayout describes a test workbook: rows of cell values (nil leaves the
// cell empty) and merged ranges such as {"B2", "N2"}.
type sheetLayout struct {
	rows   [][]interface{}
	merges [][2]string
}

func writeWorkbook(t *testing.T, dir, name string, layout sheetLayout) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range layout.rows {
		for c, val := range row {
			if val == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				t.Fatal(err)
			}
		}
	}
	for _, m := range layout.merges {
		if err := f.MergeCell(sheet, m[0], m[1]); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	return path
}

// yearBlock returns twelve month values starting at first, then their total.
func yearBlock(first int) []interface{} {
	out := make([]interface{}, 0, blockWidth)
	sum := 0
	for m := 0; m < monthsPerYear; m++ {
		out = append(out, first+m)
		sum += first + m
	}
	return append(out, sum)
}

func concat(parts ...[]interface{}) []interface{} {
	var out []interface{}
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func monthLabels() []interface{} {
	names := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Total"}
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

// twoYearSheet is laid out like the published tables: a merged title, a
// year row merged over each block, a month row, countries, then a Total row
// and footnotes.
func twoYearSheet() sheetLayout {
	yearRow := concat([]interface{}{"Country of Citizenship", 2021}, make([]interface{}, 12), []interface{}{2022})
	monthRow := concat([]interface{}{nil}, monthLabels(), monthLabels())

	france := concat([]interface{}{"France"}, yearBlock(100), yearBlock(200))
	france[3] = nil // a gap inside the data

	return sheetLayout{
		rows: [][]interface{}{
			{"Table 1: Admissions by country of citizenship"},
			yearRow,
			monthRow,
			concat([]interface{}{"Canada"}, yearBlock(1), yearBlock(13)),
			france,
			{},
			concat([]interface{}{"Total"}, yearBlock(101), yearBlock(213)),
			{"Source: Immigration statistics"},
			{"Data are preliminary and subject to change"},
		},
		merges: [][2]string{
			{"A1", "AA1"},
			{"A2", "A3"},
			{"B2", "N2"},
			{"O2", "AA2"},
		},
	}
}

// partialYearSheet has one full year and a last year cut off after March.
func partialYearSheet() sheetLayout {
	yearRow := concat([]interface{}{nil, 2023}, make([]interface{}, 12), []interface{}{2024})
	partial := []interface{}{7, 8, 9, 24}

	return sheetLayout{
		rows: [][]interface{}{
			yearRow,
			concat([]interface{}{"Chile"}, yearBlock(1), partial),
			{"Belgium"},
			concat([]interface{}{"Total"}, yearBlock(1), partial),
			{"Source: Immigration statistics"},
		},
		merges: [][2]string{
			{"B1", "N1"},
			{"O1", "R1"},
		},
	}
}

func monthHeader(fromYear, years, extraMonths int) []string {
	h := []string{CountryColumn}
	for y := 0; y < years; y++ {
		for m := 1; m <= 12; m++ {
			h = append(h, fmt.Sprintf("%d-%02d", fromYear+y, m))
		}
	}
	for m := 1; m <= extraMonths; m++ {
		h = append(h, fmt.Sprintf("%d-%02d", fromYear+years, m))
	}
	return h
}
