package types

type ConversionResult struct {
	InputFile       string
	OutputFile      string
	StartYear       int
	Columns         []string
	RowsProcessed   int
	RowsDropped     int
	TotalMismatches int
}

// Grid is a rectangular sheet as read from the workbook, one string per cell.
type Grid struct {
	Rows   [][]string
	Merged []MergedRange
}

// MergedRange holds 0-based inclusive bounds of a merged cell block.
type MergedRange struct {
	StartRow, StartCol int
	EndRow, EndCol     int
	Value              string
}

type Table struct {
	Headers []string
	Rows    [][]string
}

type BatchResult struct {
	Results []*ConversionResult
	Skipped []string
}
