package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/nconklindev/bronze/internal/config"
	"github.com/nconklindev/bronze/internal/converter"
	"github.com/nconklindev/bronze/internal/logging"
	"github.com/nconklindev/bronze/internal/types"
	"github.com/nconklindev/bronze/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type flags struct {
	configPath  string
	inputDir    string
	outputDir   string
	startYear   int
	endYear     int
	endMonth    int
	profile     string
	totalLayout string
	sheet       string
	keepGoing   bool
	interactive bool
	logLevel    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	rootCmd := &cobra.Command{
		Use:   "bronze",
		Short: "Reshape monthly-by-country workbooks into flat CSV files",
		Long: `bronze reads every .xlsx workbook in the input directory, rebuilds a
"Country, YYYY-MM, ..." header from the merged year cells, drops yearly
Total columns and footnote rows, and writes one CSV per workbook.`,
		Version:       fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd, f)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			return err
		},
	}

	fl := rootCmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML config file (default: ./bronze.yaml if present)")
	fl.StringVarP(&f.inputDir, "in", "i", "", "input directory of .xlsx files")
	fl.StringVarP(&f.outputDir, "out", "o", "", "output directory for .csv files")
	fl.IntVar(&f.startYear, "start-year", 0, "first year of the dataset; the year marker must be >= this")
	fl.IntVar(&f.endYear, "end-year", 0, "expected last year, used to warn about short sheets")
	fl.IntVar(&f.endMonth, "end-month", 0, "expected last month of the last year")
	fl.StringVar(&f.profile, "profile", "", "cleaning profile: zero or missing")
	fl.StringVar(&f.totalLayout, "total-layout", "", "Total column layout: per-year, trailing or auto")
	fl.StringVar(&f.sheet, "sheet", "", "sheet to read (default: first sheet)")
	fl.BoolVar(&f.keepGoing, "keep-going", false, "skip workbooks that fail instead of stopping")
	fl.BoolVar(&f.interactive, "interactive", isatty.IsTerminal(os.Stdout.Fd()), "show a progress view instead of log lines")
	fl.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")

	return rootCmd
}

func run(cmd *cobra.Command, f flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, f)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, f.interactive)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	conv := converter.New(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if f.interactive {
		return runInteractive(ctx, cfg, conv)
	}

	batch, err := conv.Run(ctx, nil)
	if err != nil {
		return err
	}
	logSummary(logger, batch)
	return nil
}

func runInteractive(ctx context.Context, cfg *config.Config, conv *converter.Converter) error {
	model := ui.InitialModel(cfg.InputDir, cfg.OutputDir, conv.Run)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}

	_, runErr := final.(ui.Model).Result()
	return runErr
}

// applyFlags lets explicitly set flags win over file and environment values.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f flags) {
	changed := cmd.Flags().Changed

	if changed("in") {
		cfg.InputDir = f.inputDir
	}
	if changed("out") {
		cfg.OutputDir = f.outputDir
	}
	if changed("start-year") {
		cfg.StartYear = f.startYear
	}
	if changed("end-year") {
		cfg.EndYear = f.endYear
	}
	if changed("end-month") {
		cfg.EndMonth = f.endMonth
	}
	if changed("profile") {
		cfg.Profile = f.profile
	}
	if changed("total-layout") {
		cfg.TotalLayout = f.totalLayout
	}
	if changed("sheet") {
		cfg.Sheet = f.sheet
	}
	if changed("keep-going") {
		cfg.KeepGoing = f.keepGoing
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
}

func logSummary(logger *slog.Logger, batch *types.BatchResult) {
	rows, mismatches := 0, 0
	for _, r := range batch.Results {
		rows += r.RowsProcessed
		mismatches += r.TotalMismatches
	}

	logger.Info("Conversion finished",
		slog.Int("files", len(batch.Results)),
		slog.Int("skipped", len(batch.Skipped)),
		slog.Int("rows", rows),
		slog.Int("total_mismatches", mismatches))
}
