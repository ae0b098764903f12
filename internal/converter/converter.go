package converter

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nconklindev/bronze/internal/config"
	"github.com/nconklindev/bronze/internal/types"
)

// Converter turns the workbooks of one input directory into CSV files.
type Converter struct {
	cfg    *config.Config
	rules  config.Rules
	logger *slog.Logger
}

// New creates a Converter. A nil logger falls back to slog.Default.
func New(cfg *config.Config, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		cfg:    cfg,
		rules:  cfg.Rules(),
		logger: logger,
	}
}

// Run converts every eligible workbook in the input directory, one at a
// time. The first failure stops the run unless KeepGoing is set, in which
// case the file is logged, listed in Skipped and the run continues.
// Progress is reported as the fraction of files finished; sends never block.
func (c *Converter) Run(ctx context.Context, progressChan chan<- float64) (*types.BatchResult, error) {
	names, err := ListInputs(c.cfg.InputDir)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Workbooks discovered",
		slog.String("input_dir", c.cfg.InputDir),
		slog.Int("count", len(names)))

	if c.cfg.CreateOutputDir {
		if err := os.MkdirAll(c.cfg.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	batch := &types.BatchResult{}
	total := len(names)

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		inputFile := filepath.Join(c.cfg.InputDir, name)
		outputFile := filepath.Join(c.cfg.OutputDir, OutputName(name))

		c.logger.Info("Converting workbook",
			slog.String("input", name),
			slog.String("output", filepath.Base(outputFile)))

		result, err := c.ConvertFile(inputFile, outputFile)
		if err != nil {
			if !c.cfg.KeepGoing {
				return batch, err
			}
			c.logger.Error("Skipping workbook", slog.String("input", name), slog.String("error", err.Error()))
			batch.Skipped = append(batch.Skipped, inputFile)
		} else {
			batch.Results = append(batch.Results, result)
		}

		if progressChan != nil && total > 0 {
			select {
			case progressChan <- float64(i+1) / float64(total):
			default:
			}
		}
	}

	return batch, nil
}

// ConvertFile reshapes a single workbook and writes the result to outputFile.
func (c *Converter) ConvertFile(inputFile, outputFile string) (*types.ConversionResult, error) {
	grid, err := ReadGrid(inputFile, c.cfg.Sheet)
	if err != nil {
		return nil, stageError(inputFile, "read", err)
	}

	out, err := c.Transform(grid)
	if err != nil {
		stage := "detect"
		if errors.Is(err, ErrHeaderMismatch) {
			stage = "header"
		}
		return nil, stageError(inputFile, stage, err)
	}

	c.checkEndMonth(inputFile, out.Table.Headers)

	if err := WriteCSV(outputFile, &out.Table); err != nil {
		return nil, stageError(inputFile, "write", err)
	}

	if out.Mismatches > 0 {
		c.logger.Warn("Total columns disagree with month sums",
			slog.String("input", filepath.Base(inputFile)),
			slog.Int("mismatches", out.Mismatches))
	}

	c.logger.Debug("Workbook converted",
		slog.String("input", filepath.Base(inputFile)),
		slog.Int("start_year", out.Marker.Year),
		slog.Int("rows", len(out.Table.Rows)),
		slog.Int("rows_dropped", out.Dropped))

	return &types.ConversionResult{
		InputFile:       inputFile,
		OutputFile:      outputFile,
		StartYear:       out.Marker.Year,
		Columns:         out.Table.Headers,
		RowsProcessed:   len(out.Table.Rows),
		RowsDropped:     out.Dropped,
		TotalMismatches: out.Mismatches,
	}, nil
}

// Transformed is the in-memory result of cleaning one grid.
type Transformed struct {
	Table      types.Table
	Marker     YearMarker
	Dropped    int
	Mismatches int
}

// Transform applies the cleaning pipeline to a grid in memory. The grid's
// rows are modified.
func (c *Converter) Transform(grid *types.Grid) (*Transformed, error) {
	ExpandMerged(grid)
	rows := DropEmptyRows(grid.Rows)
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	FillMissing(rows, c.rules.Sentinel)

	marker, ok := FindYearMarker(rows, c.cfg.StartYear, c.cfg.EndYear)
	if !ok {
		return nil, fmt.Errorf("%w: no year label >= %d", ErrNoYearMarker, c.cfg.StartYear)
	}

	width := len(rows[marker.Row])
	header := BuildHeader(marker.Year, width, c.trailingTotal(width))
	if len(header) != width {
		return nil, fmt.Errorf("%w: built %d columns for %d", ErrHeaderMismatch, len(header), width)
	}

	// Rows down to the marker only describe the layout we just rebuilt.
	out := &Transformed{
		Table:   types.Table{Headers: header, Rows: rows[marker.Row+1:]},
		Marker:  marker,
		Dropped: marker.Row + 1,
	}
	out.Dropped += PruneRows(&out.Table, c.rules)

	if c.cfg.CheckTotals {
		out.Mismatches = CheckTotals(&out.Table)
	}

	DropColumns(&out.Table, TotalColumn)

	return out, nil
}

func (c *Converter) trailingTotal(width int) bool {
	switch c.rules.TotalLayout {
	case config.LayoutTrailing:
		return true
	case config.LayoutPerYear:
		return false
	default:
		return HasTrailingTotal(width)
	}
}

// checkEndMonth warns when the last month column is not the configured end.
func (c *Converter) checkEndMonth(inputFile string, headers []string) {
	if c.cfg.EndYear == 0 || c.cfg.EndMonth == 0 || len(headers) < 2 {
		return
	}
	want := fmt.Sprintf("%d-%02d", c.cfg.EndYear, c.cfg.EndMonth)
	if got := headers[len(headers)-1]; got != want {
		c.logger.Warn("Last month column differs from configured end",
			slog.String("input", filepath.Base(inputFile)),
			slog.String("last_column", got),
			slog.String("expected", want))
	}
}

// WriteCSV writes the table with its header row, replacing any existing file.
func WriteCSV(outputFile string, table *types.Table) error {
	outFile, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer outFile.Close()

	writer := csv.NewWriter(outFile)

	if err := writer.Write(table.Headers); err != nil {
		return err
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return err
	}

	return outFile.Close()
}
