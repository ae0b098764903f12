package converter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	CountryColumn = "Country"
	TotalColumn   = "Total"

	monthsPerYear = 12
	// blockWidth is one year of months plus its Total column.
	blockWidth = monthsPerYear + 1

	minYearLabel = 1000
	maxYearLabel = 9999
)

// YearMarker locates the row carrying the first year of the dataset.
type YearMarker struct {
	Row  int
	Year int
}

// FindYearMarker scans rows top to bottom, cells left to right, and returns
// the first integer cell in [minYear, maxYear] together with its row. A
// maxYear of zero leaves the range open. Only rows whose integers are all
// four-digit labels or zero filler are considered, so counts in data rows
// are never taken for a year.
func FindYearMarker(rows [][]string, minYear, maxYear int) (YearMarker, bool) {
	for r, row := range rows {
		if !isYearRow(row) {
			continue
		}
		for _, cell := range row {
			v, ok := parseInt(cell)
			if !ok {
				continue
			}
			if v >= minYear && (maxYear == 0 || v <= maxYear) {
				return YearMarker{Row: r, Year: v}, true
			}
		}
	}
	return YearMarker{}, false
}

func isYearRow(row []string) bool {
	for _, cell := range row {
		v, ok := parseInt(cell)
		if !ok || v == 0 {
			continue
		}
		if v < minYearLabel || v > maxYearLabel {
			return false
		}
	}
	return true
}

// BuildHeader lays out "Country" followed by one "YYYY-MM" label per month
// column starting at January of startYear, with a "Total" label after each
// December. With trailingTotal the final column is taken to be the Total of
// a partial last year.
func BuildHeader(startYear, width int, trailingTotal bool) []string {
	header := []string{CountryColumn}

	bound := width
	if trailingTotal {
		bound = width - 1
	}

	year, month := startYear, 1
	for i := 1; i < bound; {
		header = append(header, fmt.Sprintf("%d-%02d", year, month))
		i++
		month++

		if month > monthsPerYear {
			header = append(header, TotalColumn)
			year++
			month = 1
			i++
		}
	}

	if trailingTotal {
		header = append(header, TotalColumn)
	}

	return header
}

// HasTrailingTotal reports whether a sheet of the given width ends in a
// partial year. Full years fill the data columns in blocks of thirteen.
func HasTrailingTotal(width int) bool {
	return width > 1 && (width-1)%blockWidth != 0
}

// parseInt accepts whole numbers, including integral floats such as "2021.0"
// which is how some workbooks store year labels.
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}
