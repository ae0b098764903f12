package converter

import (
	"math"
	"strconv"
	"strings"

	"github.com/nconklindev/bronze/internal/config"
	"github.com/nconklindev/bronze/internal/types"

	"github.com/montanaflynn/stats"
)

// totalTolerance absorbs float noise in sheets that store counts as decimals.
const totalTolerance = 1e-6

// PruneRows drops rows that carry no country data: sentinel countries,
// annotation rows ("Total", "Source", ...) and, when enabled, rows whose
// every value is the sentinel. It returns the number of rows dropped.
func PruneRows(table *types.Table, rules config.Rules) int {
	kept := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		if len(row) == 0 {
			continue
		}
		country := row[0]

		if isSentinelCountry(country, rules) || isAnnotation(country, rules) {
			continue
		}
		if rules.PruneMissingRows && allSentinel(row[1:], rules.Sentinel) {
			continue
		}

		kept = append(kept, row)
	}

	dropped := len(table.Rows) - len(kept)
	table.Rows = kept
	return dropped
}

func isSentinelCountry(country string, rules config.Rules) bool {
	if rules.NumericSentinel() {
		return strings.TrimSpace(country) == rules.Sentinel
	}
	return strings.HasPrefix(country, rules.Sentinel)
}

func isAnnotation(country string, rules config.Rules) bool {
	for _, marker := range rules.Markers {
		if rules.MarkerMatch == config.MatchPrefix {
			if strings.HasPrefix(country, marker) {
				return true
			}
		} else if strings.Contains(country, marker) {
			return true
		}
	}
	return false
}

func allSentinel(cells []string, sentinel string) bool {
	for _, cell := range cells {
		if cell != sentinel {
			return false
		}
	}
	return true
}

// DropColumns removes every column whose header equals name.
func DropColumns(table *types.Table, name string) {
	keep := make([]int, 0, len(table.Headers))
	for i, h := range table.Headers {
		if h != name {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(table.Headers) {
		return
	}

	table.Headers = pick(table.Headers, keep)
	for i, row := range table.Rows {
		table.Rows[i] = pick(row, keep)
	}
}

func pick(row []string, idx []int) []string {
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		if i < len(row) {
			out = append(out, row[i])
		}
	}
	return out
}

// CheckTotals compares each Total cell against the sum of the month cells
// since the previous Total and returns how many disagree. Rows or blocks
// holding non-numeric cells are not checked.
func CheckTotals(table *types.Table) int {
	mismatches := 0
	for _, row := range table.Rows {
		var block stats.Float64Data
		numeric := true

		for i := 1; i < len(table.Headers) && i < len(row); i++ {
			if table.Headers[i] != TotalColumn {
				v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
				if err != nil {
					numeric = false
					continue
				}
				block = append(block, v)
				continue
			}

			total, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err == nil && numeric && len(block) > 0 {
				sum, err := stats.Sum(block)
				if err == nil && math.Abs(sum-total) > totalTolerance {
					mismatches++
				}
			}

			block = block[:0]
			numeric = true
		}
	}
	return mismatches
}
